package signup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/pg"
)

const (
	waitlistTable = "waitlist"
	betaTable     = "beta_applications"
)

// PGStore stores signups in postgres. Emails are unique per table.
type PGStore struct {
	db pg.Querier
}

func NewPGStore(db pg.Querier) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) CreateWaitlistEntry(ctx context.Context, e *WaitlistEntry) error {
	query, args, err := pg.Builder().
		Insert(waitlistTable).
		Columns("email", "first_name", "last_name", "location", "interests").
		Values(e.Email, e.FirstName, e.LastName, nullIfEmpty(e.Location), e.Interests).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("signup: build waitlist insert: %w", err)
	}
	e.ID, e.CreatedAt, err = s.insert(ctx, query, args)
	return err
}

func (s *PGStore) CreateBetaApplication(ctx context.Context, a *BetaApplication) error {
	var deposit any
	if a.DepositAmount > 0 {
		deposit = a.DepositAmount
	}
	query, args, err := pg.Builder().
		Insert(betaTable).
		Columns("email", "first_name", "last_name", "phone", "experience_level", "activities", "deposit_amount").
		Values(a.Email, a.FirstName, a.LastName, nullIfEmpty(a.Phone), string(a.ExperienceLevel), a.Activities, deposit).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("signup: build beta insert: %w", err)
	}
	a.ID, a.CreatedAt, err = s.insert(ctx, query, args)
	return err
}

func (s *PGStore) insert(ctx context.Context, query string, args []any) (uuid.UUID, time.Time, error) {
	var (
		id        string
		createdAt time.Time
	)
	if err := s.db.QueryRow(ctx, query, args...).Scan(&id, &createdAt); err != nil {
		if pg.IsDuplicateKeyError(err) {
			return uuid.Nil, time.Time{}, ErrDuplicate
		}
		return uuid.Nil, time.Time{}, errors.Join(ErrPersistence, err)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, time.Time{}, errors.Join(ErrPersistence, err)
	}
	return parsed, createdAt, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
