package tracking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/logger"
)

// Config tunes store access and the click allowlist.
type Config struct {
	AllowedHosts  []string      `env:"TRACKING_ALLOWED_HOSTS" envSeparator:","`
	LookupTimeout time.Duration `env:"TRACKING_LOOKUP_TIMEOUT" envDefault:"2s"`
	WriteTimeout  time.Duration `env:"TRACKING_WRITE_TIMEOUT" envDefault:"3s"`
	StatsTimeout  time.Duration `env:"TRACKING_STATS_TIMEOUT" envDefault:"10s"`
	// SentWriteRetries is how many extra attempts a failed "sent" write gets
	// before it goes to the dead-letter log.
	SentWriteRetries int `env:"TRACKING_SENT_WRITE_RETRIES" envDefault:"1"`
	RecentLimit      int `env:"TRACKING_STATS_RECENT" envDefault:"25"`
	// SentCacheSize bounds the in-memory cache of sent rows; 0 disables it.
	SentCacheSize int           `env:"TRACKING_SENT_CACHE_SIZE" envDefault:"10000"`
	SentCacheTTL  time.Duration `env:"TRACKING_SENT_CACHE_TTL" envDefault:"1h"`
}

func (c Config) withDefaults() Config {
	if c.LookupTimeout <= 0 {
		c.LookupTimeout = 2 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 3 * time.Second
	}
	if c.StatsTimeout <= 0 {
		c.StatsTimeout = 10 * time.Second
	}
	if c.SentWriteRetries < 0 {
		c.SentWriteRetries = 0
	}
	return c
}

// Service appends lifecycle events and computes stats.
type Service struct {
	store   Store
	cfg     Config
	log     *slog.Logger
	metrics *Metrics
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a tracking service over store.
func NewService(store Store, cfg Config, opts ...Option) *Service {
	s := &Service{store: store, cfg: cfg.withDefaults(), log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("tracking"))
	return s
}

// RecordSent appends the "sent" anchor for a freshly delivered email. A
// failed write is retried SentWriteRetries times; after that the record is
// written to the log as a dead letter and an error wrapping ErrPersistence
// is returned.
func (s *Service) RecordSent(ctx context.Context, trackingID string, t EmailType, meta Metadata) (Record, error) {
	rec := Record{TrackingID: trackingID, EmailType: t, Status: StatusSent, Metadata: meta}
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}

	var err error
	for attempt := range s.cfg.SentWriteRetries + 1 {
		var out Record
		if out, err = s.insert(ctx, rec); err == nil {
			return out, nil
		}
		if ctx.Err() != nil {
			break
		}
		s.log.WarnContext(ctx, "sent record write failed",
			logger.TrackingID(trackingID),
			logger.Attempt(attempt+1),
			logger.Error(err),
		)
	}

	s.metrics.recordWriteFailure(StatusSent)
	s.log.ErrorContext(ctx, "tracking record dead letter",
		logger.Event("tracking_dead_letter"),
		logger.TrackingID(rec.TrackingID),
		logger.EmailType(string(rec.EmailType)),
		logger.Status(string(rec.Status)),
		slog.Any("metadata", rec.Metadata),
		slog.Time("occurred_at", time.Now().UTC()),
		logger.Error(err),
	)
	return Record{}, errors.Join(ErrPersistence, err)
}

// RecordOpen appends an "opened" event for a sent email.
func (s *Service) RecordOpen(ctx context.Context, trackingID string, meta Metadata) (Record, error) {
	return s.appendEvent(ctx, trackingID, StatusOpened, meta)
}

// RecordClick appends a "clicked" event carrying destination.
func (s *Service) RecordClick(ctx context.Context, trackingID, destination string, meta Metadata) (Record, error) {
	m := make(Metadata, len(meta)+1)
	for k, v := range meta {
		m[k] = v
	}
	m[MetaDestination] = destination
	return s.appendEvent(ctx, trackingID, StatusClicked, m)
}

// appendEvent looks up the sent anchor and appends an event copying its
// email type. Errors: ErrNotFound when there is no anchor (nothing written),
// ErrLookup when the anchor could not be read (nothing written),
// ErrPersistence when the append itself failed.
func (s *Service) appendEvent(ctx context.Context, trackingID string, status Status, meta Metadata) (Record, error) {
	if _, _, err := ParseID(trackingID); err != nil {
		return Record{}, errors.Join(ErrNotFound, err)
	}

	sent, err := s.findSent(ctx, trackingID)
	if err != nil {
		return Record{}, err
	}

	out, err := s.insert(ctx, Record{
		TrackingID: trackingID,
		EmailType:  sent.EmailType,
		Status:     status,
		Metadata:   meta,
	})
	if err != nil {
		s.metrics.recordWriteFailure(status)
		return Record{}, err
	}
	return out, nil
}

func (s *Service) findSent(ctx context.Context, trackingID string) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.LookupTimeout)
	defer cancel()

	rec, err := s.store.FindSent(ctx, trackingID)
	switch {
	case err == nil:
		return rec, nil
	case errors.Is(err, ErrNotFound):
		return Record{}, ErrNotFound
	case errors.Is(err, ErrLookup):
		return Record{}, err
	default:
		return Record{}, errors.Join(ErrLookup, err)
	}
}

func (s *Service) insert(ctx context.Context, rec Record) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.WriteTimeout)
	defer cancel()

	out, err := s.store.Insert(ctx, rec)
	if err != nil {
		if errors.Is(err, ErrPersistence) || errors.Is(err, ErrInvalidRecord) {
			return Record{}, err
		}
		return Record{}, errors.Join(ErrPersistence, err)
	}
	s.metrics.recordEvent(out.EmailType, out.Status)
	return out, nil
}

// StatsQuery bounds the records Stats reads. Zero times mean unbounded.
type StatsQuery struct {
	Since time.Time
	Until time.Time
}

// Stats reads all matching records and aggregates them. The newest
// RecentLimit records are attached for display.
func (s *Service) Stats(ctx context.Context, q StatsQuery) (Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StatsTimeout)
	defer cancel()

	records, err := s.store.List(ctx, ListFilter{Since: q.Since, Until: q.Until})
	if err != nil {
		if errors.Is(err, ErrLookup) {
			return Stats{}, err
		}
		return Stats{}, errors.Join(ErrLookup, err)
	}

	st := Aggregate(records)
	if n := min(s.cfg.RecentLimit, len(records)); n > 0 {
		st.Recent = records[:n]
	}
	return st, nil
}
