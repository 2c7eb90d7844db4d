package signup

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store persists signups. Create methods fill ID and CreatedAt and return
// ErrDuplicate when the email is already on that list.
type Store interface {
	CreateWaitlistEntry(ctx context.Context, e *WaitlistEntry) error
	CreateBetaApplication(ctx context.Context, a *BetaApplication) error
}

// MemoryStore keeps signups in process.
type MemoryStore struct {
	mu       sync.Mutex
	waitlist map[string]WaitlistEntry
	beta     map[string]BetaApplication
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		waitlist: make(map[string]WaitlistEntry),
		beta:     make(map[string]BetaApplication),
	}
}

func (s *MemoryStore) CreateWaitlistEntry(ctx context.Context, e *WaitlistEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.waitlist[e.Email]; ok {
		return ErrDuplicate
	}
	e.ID = uuid.New()
	e.CreatedAt = time.Now().UTC()
	stored := *e
	stored.Interests = slices.Clone(e.Interests)
	s.waitlist[e.Email] = stored
	return nil
}

func (s *MemoryStore) CreateBetaApplication(ctx context.Context, a *BetaApplication) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.beta[a.Email]; ok {
		return ErrDuplicate
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now().UTC()
	stored := *a
	stored.Activities = slices.Clone(a.Activities)
	s.beta[a.Email] = stored
	return nil
}

// Counts reports how many signups each list holds.
func (s *MemoryStore) Counts() (waitlist, beta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.waitlist), len(s.beta)
}
