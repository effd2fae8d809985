package profiles

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/rotisserie/eris"
)

// PGRepo stores profiles as JSONB documents in PostgreSQL.
type PGRepo struct {
	DB *sql.DB
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *PGRepo) Get(ctx context.Context, userID string) (BusinessProfile, error) {
	p, err := getProfile(ctx, r.DB, `SELECT profile FROM business_profiles WHERE user_id = $1`, userID)
	if err != nil {
		return BusinessProfile{}, err
	}
	return p, nil
}

func (r *PGRepo) Upsert(ctx context.Context, userID string, patch Patch, now time.Time) (BusinessProfile, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return BusinessProfile{}, eris.Wrap(err, "profiles: begin tx")
	}
	defer tx.Rollback()

	// Serialize writers for this user across processes, including the first insert.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, userID); err != nil {
		return BusinessProfile{}, eris.Wrap(err, "profiles: lock")
	}

	p, err := getProfile(ctx, tx, `SELECT profile FROM business_profiles WHERE user_id = $1`, userID)
	exists := err == nil
	if err != nil && !errors.Is(err, ErrNotFound) {
		return BusinessProfile{}, err
	}
	if !exists {
		p = BusinessProfile{UserID: userID, CreatedAt: now}
	}
	if !Apply(&p, patch) && exists {
		if err := tx.Commit(); err != nil {
			return BusinessProfile{}, eris.Wrap(err, "profiles: commit")
		}
		return p, nil
	}
	p.UpdatedAt = now

	doc, err := marshalJSONB(p)
	if err != nil {
		return BusinessProfile{}, err
	}
	const query = `
INSERT INTO business_profiles (user_id, profile, created_at, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id) DO UPDATE SET
  profile = EXCLUDED.profile,
  updated_at = EXCLUDED.updated_at`
	if _, err := tx.ExecContext(ctx, query, userID, doc, p.CreatedAt, p.UpdatedAt); err != nil {
		return BusinessProfile{}, eris.Wrap(err, "profiles: upsert")
	}
	if err := tx.Commit(); err != nil {
		return BusinessProfile{}, eris.Wrap(err, "profiles: commit")
	}
	return p, nil
}

func getProfile(ctx context.Context, q queryer, query, userID string) (BusinessProfile, error) {
	var raw []byte
	if err := q.QueryRowContext(ctx, query, userID).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return BusinessProfile{}, ErrNotFound
		}
		return BusinessProfile{}, eris.Wrap(err, "profiles: select")
	}
	var p BusinessProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return BusinessProfile{}, eris.Wrap(err, "profiles: decode document")
	}
	p.UserID = userID
	return p, nil
}

func marshalJSONB(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, eris.Wrap(err, "profiles: encode document")
	}
	return data, nil
}

var _ Repo = (*PGRepo)(nil)
