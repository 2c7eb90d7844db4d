package mailer

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Sick-Day-Sports-Club/websitev1-sub000/internal/tracking"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/async"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/email"
)

// fakeSender records messages and fails while fail returns an error.
type fakeSender struct {
	mu    sync.Mutex
	sent  []email.SendEmailParams
	calls atomic.Int32
	fail  func(call int32) error
}

func (s *fakeSender) SendEmail(ctx context.Context, p email.SendEmailParams) error {
	n := s.calls.Add(1)
	if s.fail != nil {
		if err := s.fail(n); err != nil {
			return err
		}
	}
	s.mu.Lock()
	s.sent = append(s.sent, p)
	s.mu.Unlock()
	return nil
}

type mockRecorder struct{ mock.Mock }

func (m *mockRecorder) RecordSent(ctx context.Context, id string, t tracking.EmailType, meta tracking.Metadata) (tracking.Record, error) {
	args := m.Called(ctx, id, t, meta)
	return args.Get(0).(tracking.Record), args.Error(1)
}

type orchestratorFixture struct {
	sender *fakeSender
	store  *tracking.MemoryStore
	reg    *prometheus.Registry
	orch   *Orchestrator
}

func testMailerConfig() Config {
	return Config{
		BaseURL:      testBaseURL,
		SendAttempts: 3,
		SendTimeout:  50 * time.Millisecond,
		RetryBackoff: time.Millisecond,
	}
}

func newOrchestratorFixture(t *testing.T, cfg Config) *orchestratorFixture {
	t.Helper()

	log := slog.New(slog.DiscardHandler)
	composer, err := NewComposer(cfg)
	require.NoError(t, err)

	store := tracking.NewMemoryStore()
	reg := prometheus.NewRegistry()
	metrics := tracking.NewMetrics(reg)
	svc := tracking.NewService(store, tracking.Config{}, tracking.WithLogger(log), tracking.WithMetrics(metrics))
	sender := &fakeSender{}

	return &orchestratorFixture{
		sender: sender,
		store:  store,
		reg:    reg,
		orch:   NewOrchestrator(sender, composer, svc, cfg, WithLogger(log), WithMetrics(metrics)),
	}
}

func (f *orchestratorFixture) records(t *testing.T) []tracking.Record {
	t.Helper()
	recs, err := f.store.List(context.Background(), tracking.ListFilter{})
	require.NoError(t, err)
	return recs
}

func TestSend(t *testing.T) {
	t.Parallel()

	f := newOrchestratorFixture(t, testMailerConfig())

	res, err := f.orch.Send(context.Background(), SendParams{
		Type:      tracking.EmailTypeBeta,
		Email:     "ana@example.com",
		FirstName: "Ana",
		Amount:    50,
	})
	require.NoError(t, err)
	assert.True(t, res.Recorded)
	assert.Equal(t, tracking.EmailTypeBeta, res.EmailType)
	assert.True(t, strings.HasPrefix(res.TrackingID, "beta_"))

	require.Len(t, f.sender.sent, 1)
	msg := f.sender.sent[0]
	assert.Equal(t, "ana@example.com", msg.SendTo)
	assert.Equal(t, res.TrackingID, msg.Tag)
	assert.Contains(t, msg.BodyHTML, "/tracking/pixel/"+res.TrackingID)

	recs := f.records(t)
	require.Len(t, recs, 1)
	assert.Equal(t, tracking.StatusSent, recs[0].Status)
	assert.Equal(t, res.TrackingID, recs[0].TrackingID)
	assert.Equal(t, true, recs[0].Metadata[tracking.MetaHasAmount])
	assert.InDelta(t, 50.0, recs[0].Metadata[tracking.MetaAmount], 0)
}

func TestSendCreatedAtIncreases(t *testing.T) {
	t.Parallel()

	f := newOrchestratorFixture(t, testMailerConfig())
	ctx := context.Background()

	for _, typ := range []tracking.EmailType{tracking.EmailTypeWaitlist, tracking.EmailTypeBeta, tracking.EmailTypeWaitlist} {
		_, err := f.orch.Send(ctx, SendParams{Type: typ, Email: "ana@example.com"})
		require.NoError(t, err)
	}

	recs := f.records(t) // newest first
	require.Len(t, recs, 3)
	for i := 1; i < len(recs); i++ {
		assert.True(t, recs[i-1].CreatedAt.After(recs[i].CreatedAt))
	}
}

func TestSendRetriesThenSucceeds(t *testing.T) {
	t.Parallel()

	f := newOrchestratorFixture(t, testMailerConfig())
	f.sender.fail = func(call int32) error {
		if call < 3 {
			return errors.New("provider 503")
		}
		return nil
	}

	res, err := f.orch.Send(context.Background(), SendParams{Type: tracking.EmailTypeWaitlist, Email: "ana@example.com"})
	require.NoError(t, err)
	assert.True(t, res.Recorded)
	assert.EqualValues(t, 3, f.sender.calls.Load())
	assert.Len(t, f.records(t), 1)
}

func TestSendDeliveryFailure(t *testing.T) {
	t.Parallel()

	f := newOrchestratorFixture(t, testMailerConfig())
	f.sender.fail = func(int32) error { return errors.New("provider down") }

	res, err := f.orch.Send(context.Background(), SendParams{Type: tracking.EmailTypeBeta, Email: "ana@example.com"})
	require.ErrorIs(t, err, ErrEmailDeliveryFailed)
	assert.NotEmpty(t, res.TrackingID)
	assert.False(t, res.Recorded)
	assert.EqualValues(t, 3, f.sender.calls.Load())
	assert.Empty(t, f.records(t))

	expected := `
# HELP email_delivery_failures_total Emails the provider did not accept after all attempts, by email type.
# TYPE email_delivery_failures_total counter
email_delivery_failures_total{email_type="beta"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(f.reg, strings.NewReader(expected), "email_delivery_failures_total"))
}

func TestSendInvalidParamsNotRetried(t *testing.T) {
	t.Parallel()

	f := newOrchestratorFixture(t, testMailerConfig())
	f.sender.fail = func(int32) error { return email.ErrInvalidParams }

	_, err := f.orch.Send(context.Background(), SendParams{Type: tracking.EmailTypeBeta, Email: "not-an-email"})
	require.ErrorIs(t, err, ErrEmailDeliveryFailed)
	assert.EqualValues(t, 1, f.sender.calls.Load())
}

func TestSendTimeout(t *testing.T) {
	t.Parallel()

	cfg := testMailerConfig()
	cfg.SendAttempts = 1
	cfg.SendTimeout = 10 * time.Millisecond
	f := newOrchestratorFixture(t, cfg)

	composer, err := NewComposer(cfg)
	require.NoError(t, err)
	orch := NewOrchestrator(blockingSender{}, composer, tracking.NewService(f.store, tracking.Config{}), cfg,
		WithLogger(slog.New(slog.DiscardHandler)))

	_, err = orch.Send(context.Background(), SendParams{Type: tracking.EmailTypeBeta, Email: "ana@example.com"})
	require.ErrorIs(t, err, ErrEmailDeliveryFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, f.records(t))
}

type blockingSender struct{}

func (blockingSender) SendEmail(ctx context.Context, _ email.SendEmailParams) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestSendRecordFailureIsNotAnError(t *testing.T) {
	t.Parallel()

	cfg := testMailerConfig()
	composer, err := NewComposer(cfg)
	require.NoError(t, err)

	rec := &mockRecorder{}
	rec.On("RecordSent", mock.Anything, mock.AnythingOfType("string"), tracking.EmailTypeWaitlist, mock.Anything).
		Return(tracking.Record{}, tracking.ErrPersistence).Once()

	sender := &fakeSender{}
	orch := NewOrchestrator(sender, composer, rec, cfg, WithLogger(slog.New(slog.DiscardHandler)))

	res, err := orch.Send(context.Background(), SendParams{Type: tracking.EmailTypeWaitlist, Email: "ana@example.com"})
	require.NoError(t, err)
	assert.False(t, res.Recorded)
	assert.Len(t, sender.sent, 1)
	rec.AssertExpectations(t)
}

func TestSendValidation(t *testing.T) {
	t.Parallel()

	f := newOrchestratorFixture(t, testMailerConfig())
	_, err := f.orch.Send(context.Background(), SendParams{Type: "promo", Email: "ana@example.com"})
	assert.ErrorIs(t, err, ErrInvalidParams)
	_, err = f.orch.Send(context.Background(), SendParams{Type: tracking.EmailTypeBeta, Email: "  "})
	assert.ErrorIs(t, err, ErrInvalidParams)
	assert.Zero(t, f.sender.calls.Load())
}

func TestSendConcurrentSameRecipient(t *testing.T) {
	t.Parallel()

	f := newOrchestratorFixture(t, testMailerConfig())
	p := SendParams{Type: tracking.EmailTypeWaitlist, Email: "ana@example.com", FirstName: "Ana"}

	futures := []*async.Future[SendResult]{
		async.Go(nil, context.Background(), p, f.orch.Send),
		async.Go(nil, context.Background(), p, f.orch.Send),
	}
	results, err := async.WaitAll(futures...)
	require.NoError(t, err)
	assert.NotEqual(t, results[0].TrackingID, results[1].TrackingID)

	recs := f.records(t)
	require.Len(t, recs, 2)
	ids := map[string]bool{recs[0].TrackingID: true, recs[1].TrackingID: true}
	assert.True(t, ids[results[0].TrackingID])
	assert.True(t, ids[results[1].TrackingID])
}

func TestDispatchSurvivesCancelledRequest(t *testing.T) {
	t.Parallel()

	f := newOrchestratorFixture(t, testMailerConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fut := f.orch.Dispatch(ctx, SendParams{Type: tracking.EmailTypeBeta, Email: "ana@example.com"})
	require.NoError(t, f.orch.Wait(context.Background()))

	res, err := fut.Await()
	require.NoError(t, err)
	assert.True(t, res.Recorded)
	assert.Len(t, f.records(t), 1)
}

func TestDispatchFailureIsContained(t *testing.T) {
	t.Parallel()

	f := newOrchestratorFixture(t, testMailerConfig())
	f.sender.fail = func(int32) error { return errors.New("provider down") }

	fut := f.orch.Dispatch(context.Background(), SendParams{Type: tracking.EmailTypeWaitlist, Email: "ana@example.com"})
	_, err := fut.Await()
	assert.ErrorIs(t, err, ErrEmailDeliveryFailed)
	require.NoError(t, f.orch.Wait(context.Background()))
}
