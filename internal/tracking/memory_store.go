package tracking

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps records in process. It backs tests and local runs
// without a database.
type MemoryStore struct {
	mu      sync.RWMutex
	records []Record
	last    time.Time
	now     func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

// Insert appends rec. CreatedAt is strictly increasing across inserts even
// when the clock does not advance between calls.
func (s *MemoryStore) Insert(ctx context.Context, rec Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC().Truncate(time.Microsecond)
	if !now.After(s.last) {
		now = s.last.Add(time.Microsecond)
	}
	s.last = now

	rec.ID = uuid.New()
	rec.CreatedAt = now
	rec.Metadata = maps.Clone(rec.Metadata)
	s.records = append(s.records, rec)
	return rec, nil
}

func (s *MemoryStore) FindSent(ctx context.Context, trackingID string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.records {
		if rec.TrackingID == trackingID && rec.Status == StatusSent {
			rec.Metadata = maps.Clone(rec.Metadata)
			return rec, nil
		}
	}
	return Record{}, ErrNotFound
}

func (s *MemoryStore) List(ctx context.Context, filter ListFilter) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, 0, len(s.records))
	for i := len(s.records) - 1; i >= 0; i-- {
		rec := s.records[i]
		if !filter.match(rec.CreatedAt) {
			continue
		}
		rec.Metadata = maps.Clone(rec.Metadata)
		out = append(out, rec)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return slices.Clip(out), nil
}
