package tracking

import (
	"context"
	"time"
)

// Store is the append-only tracking record log.
type Store interface {
	// Insert appends rec. The store assigns ID and CreatedAt.
	Insert(ctx context.Context, rec Record) (Record, error)
	// FindSent returns the "sent" record for trackingID or ErrNotFound.
	FindSent(ctx context.Context, trackingID string) (Record, error)
	// List returns records newest first.
	List(ctx context.Context, filter ListFilter) ([]Record, error)
}

// ListFilter bounds List. Zero values mean unbounded.
type ListFilter struct {
	Since time.Time // inclusive
	Until time.Time // exclusive
	Limit int
}

func (f ListFilter) match(t time.Time) bool {
	if !f.Since.IsZero() && t.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && !t.Before(f.Until) {
		return false
	}
	return true
}
