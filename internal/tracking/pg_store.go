package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/pg"
)

const recordsTable = "email_tracking"

var recordColumns = []string{"id", "tracking_id", "email_type", "status", "metadata", "created_at"}

// PGStore stores records in the email_tracking table.
type PGStore struct {
	db pg.Querier
}

// NewPGStore creates a postgres-backed store.
func NewPGStore(db pg.Querier) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Insert(ctx context.Context, rec Record) (Record, error) {
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}

	var meta []byte
	if len(rec.Metadata) > 0 {
		var err error
		if meta, err = json.Marshal(rec.Metadata); err != nil {
			return Record{}, fmt.Errorf("%w: encode metadata: %v", ErrInvalidRecord, err)
		}
	}

	query, args, err := pg.Builder().
		Insert(recordsTable).
		Columns("tracking_id", "email_type", "status", "metadata").
		Values(rec.TrackingID, string(rec.EmailType), string(rec.Status), meta).
		Suffix("RETURNING " + columnList()).
		ToSql()
	if err != nil {
		return Record{}, fmt.Errorf("tracking: build insert: %w", err)
	}

	out, err := scanRecord(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		return Record{}, errors.Join(ErrPersistence, err)
	}
	return out, nil
}

func (s *PGStore) FindSent(ctx context.Context, trackingID string) (Record, error) {
	query, args, err := pg.Builder().
		Select(recordColumns...).
		From(recordsTable).
		Where(sq.Eq{"tracking_id": trackingID, "status": string(StatusSent)}).
		OrderBy("created_at ASC").
		Limit(1).
		ToSql()
	if err != nil {
		return Record{}, fmt.Errorf("tracking: build select: %w", err)
	}

	rec, err := scanRecord(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if pg.IsNotFoundError(err) {
			return Record{}, ErrNotFound
		}
		return Record{}, errors.Join(ErrLookup, err)
	}
	return rec, nil
}

func (s *PGStore) List(ctx context.Context, filter ListFilter) ([]Record, error) {
	qb := pg.Builder().
		Select(recordColumns...).
		From(recordsTable).
		OrderBy("created_at DESC")
	if !filter.Since.IsZero() {
		qb = qb.Where(sq.GtOrEq{"created_at": filter.Since})
	}
	if !filter.Until.IsZero() {
		qb = qb.Where(sq.Lt{"created_at": filter.Until})
	}
	if filter.Limit > 0 {
		qb = qb.Limit(uint64(filter.Limit))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("tracking: build list: %w", err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Join(ErrLookup, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, errors.Join(ErrLookup, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrLookup, err)
	}
	return out, nil
}

func columnList() string {
	return strings.Join(recordColumns, ", ")
}

func scanRecord(row pgx.Row) (Record, error) {
	var (
		rec       Record
		emailType string
		status    string
		meta      []byte
		createdAt time.Time
		id        string
	)
	if err := row.Scan(&id, &rec.TrackingID, &emailType, &status, &meta, &createdAt); err != nil {
		return Record{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Record{}, fmt.Errorf("decode id: %w", err)
	}
	rec.ID = parsed
	rec.EmailType = EmailType(emailType)
	rec.Status = Status(status)
	rec.CreatedAt = createdAt
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &rec.Metadata); err != nil {
			return Record{}, fmt.Errorf("decode metadata: %w", err)
		}
	}
	return rec, nil
}
