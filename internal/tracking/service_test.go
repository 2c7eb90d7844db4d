package tracking

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubStore delegates to a MemoryStore unless a hook is set.
type stubStore struct {
	*MemoryStore
	insert   func(ctx context.Context, rec Record) (Record, error)
	findSent func(ctx context.Context, id string) (Record, error)
	inserts  atomic.Int32
	lookups  atomic.Int32
}

func newStubStore() *stubStore {
	return &stubStore{MemoryStore: NewMemoryStore()}
}

func (s *stubStore) Insert(ctx context.Context, rec Record) (Record, error) {
	s.inserts.Add(1)
	if s.insert != nil {
		return s.insert(ctx, rec)
	}
	return s.MemoryStore.Insert(ctx, rec)
}

func (s *stubStore) FindSent(ctx context.Context, id string) (Record, error) {
	s.lookups.Add(1)
	if s.findSent != nil {
		return s.findSent(ctx, id)
	}
	return s.MemoryStore.FindSent(ctx, id)
}

func testConfig() Config {
	return Config{
		LookupTimeout:    50 * time.Millisecond,
		WriteTimeout:     50 * time.Millisecond,
		SentWriteRetries: 1,
		RecentLimit:      2,
	}
}

func mustID(t *testing.T, typ EmailType) string {
	t.Helper()
	id, err := NewID(typ)
	require.NoError(t, err)
	return id
}

func TestRecordSent(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	svc := NewService(store, testConfig())
	ctx := context.Background()

	first, err := svc.RecordSent(ctx, mustID(t, EmailTypeBeta), EmailTypeBeta, Metadata{MetaTemplate: "beta"})
	require.NoError(t, err)
	second, err := svc.RecordSent(ctx, mustID(t, EmailTypeWaitlist), EmailTypeWaitlist, nil)
	require.NoError(t, err)

	assert.Equal(t, StatusSent, first.Status)
	assert.NotEqual(t, first.ID, second.ID)
	assert.True(t, second.CreatedAt.After(first.CreatedAt))
}

func TestRecordSentRetriesOnce(t *testing.T) {
	t.Parallel()

	store := newStubStore()
	store.insert = func(ctx context.Context, rec Record) (Record, error) {
		if store.inserts.Load() == 1 {
			return Record{}, errors.New("connection reset")
		}
		return store.MemoryStore.Insert(ctx, rec)
	}
	svc := NewService(store, testConfig(), WithLogger(slog.New(slog.DiscardHandler)))

	_, err := svc.RecordSent(context.Background(), mustID(t, EmailTypeBeta), EmailTypeBeta, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, store.inserts.Load())
}

func TestRecordSentDeadLetter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	store := newStubStore()
	store.insert = func(context.Context, Record) (Record, error) {
		return Record{}, errors.New("database is down")
	}
	svc := NewService(store, testConfig(), WithLogger(log), WithMetrics(metrics))

	id := mustID(t, EmailTypeWaitlist)
	_, err := svc.RecordSent(context.Background(), id, EmailTypeWaitlist, nil)
	require.ErrorIs(t, err, ErrPersistence)
	assert.EqualValues(t, 2, store.inserts.Load())

	assert.Contains(t, buf.String(), `"event":"tracking_dead_letter"`)
	assert.Contains(t, buf.String(), id)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.writeFailures.WithLabelValues("sent")), 0)
}

func TestRecordSentInvalid(t *testing.T) {
	t.Parallel()

	store := newStubStore()
	svc := NewService(store, testConfig())

	_, err := svc.RecordSent(context.Background(), "", EmailTypeBeta, nil)
	assert.ErrorIs(t, err, ErrInvalidRecord)
	_, err = svc.RecordSent(context.Background(), "x", "promo", nil)
	assert.ErrorIs(t, err, ErrInvalidRecord)
	assert.Zero(t, store.inserts.Load())
}

func TestRecordOpenAndClick(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	svc := NewService(store, testConfig(), WithMetrics(metrics))
	ctx := context.Background()

	id := mustID(t, EmailTypeBeta)
	_, err := svc.RecordSent(ctx, id, EmailTypeBeta, nil)
	require.NoError(t, err)

	for range 3 {
		rec, err := svc.RecordOpen(ctx, id, Metadata{MetaUserAgent: "Mail/1.0"})
		require.NoError(t, err)
		assert.Equal(t, EmailTypeBeta, rec.EmailType)
		assert.Equal(t, StatusOpened, rec.Status)
	}

	rec, err := svc.RecordClick(ctx, id, "https://example.com/x", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/x", rec.Destination())

	records, err := store.List(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, records, 5)
	assert.InDelta(t, 3, testutil.ToFloat64(metrics.events.WithLabelValues("beta", "opened")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.events.WithLabelValues("beta", "clicked")), 0)
}

func TestRecordOpenUnknownID(t *testing.T) {
	t.Parallel()

	store := newStubStore()
	svc := NewService(store, testConfig())
	ctx := context.Background()

	_, err := svc.RecordOpen(ctx, mustID(t, EmailTypeBeta), nil)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualValues(t, 1, store.lookups.Load())

	_, err = svc.RecordOpen(ctx, "not-a-tracking-id", nil)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualValues(t, 1, store.lookups.Load(), "malformed ids never reach the store")

	assert.Zero(t, store.inserts.Load())
}

func TestRecordClickLookupFailure(t *testing.T) {
	t.Parallel()

	store := newStubStore()
	store.findSent = func(ctx context.Context, _ string) (Record, error) {
		<-ctx.Done()
		return Record{}, ctx.Err()
	}
	svc := NewService(store, testConfig())

	_, err := svc.RecordClick(context.Background(), mustID(t, EmailTypeBeta), "https://example.com", nil)
	require.ErrorIs(t, err, ErrLookup)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Zero(t, store.inserts.Load())
}

func TestRecordOpenWriteFailure(t *testing.T) {
	t.Parallel()

	store := newStubStore()
	svc := NewService(store, testConfig())
	ctx := context.Background()

	id := mustID(t, EmailTypeWaitlist)
	_, err := svc.RecordSent(ctx, id, EmailTypeWaitlist, nil)
	require.NoError(t, err)

	store.insert = func(context.Context, Record) (Record, error) {
		return Record{}, errors.New("disk full")
	}
	_, err = svc.RecordOpen(ctx, id, nil)
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestServiceStats(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	svc := NewService(store, testConfig())
	ctx := context.Background()

	for _, rec := range fixtureRecords() {
		_, err := store.Insert(ctx, rec)
		require.NoError(t, err)
	}

	st, err := svc.Stats(ctx, StatsQuery{})
	require.NoError(t, err)
	assert.Equal(t, 3, st.TotalSent)
	assert.Equal(t, 2, st.TotalOpened)
	assert.Equal(t, 1, st.TotalClicked)
	require.Len(t, st.Recent, 2)
	assert.Equal(t, StatusClicked, st.Recent[0].Status)
}

func TestServiceStatsTimeWindow(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	store := NewMemoryStore()
	store.now = func() time.Time { return clock }
	svc := NewService(store, testConfig())
	ctx := context.Background()

	for i, rec := range fixtureRecords() {
		clock = base.Add(time.Duration(i) * time.Hour)
		_, err := store.Insert(ctx, rec)
		require.NoError(t, err)
	}

	// Hours 3 and 4: the two opens.
	st, err := svc.Stats(ctx, StatsQuery{Since: base.Add(3 * time.Hour), Until: base.Add(5 * time.Hour)})
	require.NoError(t, err)
	assert.Zero(t, st.TotalSent)
	assert.Equal(t, 2, st.TotalOpened)
	assert.Zero(t, st.TotalClicked)
}
