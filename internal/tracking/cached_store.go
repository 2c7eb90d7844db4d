package tracking

import (
	"context"
	"maps"
	"time"

	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/cache"
)

// CachedStore keeps recent "sent" records in memory in front of another
// Store. Sent rows are never updated, so a cached row stays correct until
// it is evicted. Misses are not cached: the sent row may land later.
type CachedStore struct {
	Store
	sent *cache.LRU[string, Record]
}

// NewCachedStore caches up to size sent records for ttl each.
func NewCachedStore(next Store, size int, ttl time.Duration) *CachedStore {
	return &CachedStore{Store: next, sent: cache.NewLRU[string, Record](size, ttl)}
}

func (s *CachedStore) Insert(ctx context.Context, rec Record) (Record, error) {
	out, err := s.Store.Insert(ctx, rec)
	if err == nil && out.Status == StatusSent {
		s.sent.Add(out.TrackingID, cloneRecord(out))
	}
	return out, err
}

func (s *CachedStore) FindSent(ctx context.Context, trackingID string) (Record, error) {
	if rec, ok := s.sent.Get(trackingID); ok {
		return cloneRecord(rec), nil
	}
	rec, err := s.Store.FindSent(ctx, trackingID)
	if err != nil {
		return Record{}, err
	}
	s.sent.Add(trackingID, cloneRecord(rec))
	return rec, nil
}

func cloneRecord(r Record) Record {
	r.Metadata = maps.Clone(r.Metadata)
	return r
}
