package profiles

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rotisserie/eris"
)

// SQLiteRepo stores profiles as JSON text in an embedded SQLite database.
type SQLiteRepo struct {
	DB *sql.DB
}

func (r *SQLiteRepo) Get(ctx context.Context, userID string) (BusinessProfile, error) {
	return getProfile(ctx, r.DB, `SELECT profile FROM business_profiles WHERE user_id = ?`, userID)
}

func (r *SQLiteRepo) Upsert(ctx context.Context, userID string, patch Patch, now time.Time) (BusinessProfile, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return BusinessProfile{}, eris.Wrap(err, "profiles: begin tx")
	}
	defer tx.Rollback()

	p, err := getProfile(ctx, tx, `SELECT profile FROM business_profiles WHERE user_id = ?`, userID)
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
VALUES (?, ?, ?, ?)
ON CONFLICT (user_id) DO UPDATE SET
  profile = excluded.profile,
  updated_at = excluded.updated_at`
	if _, err := tx.ExecContext(ctx, query, userID, string(doc), formatTime(p.CreatedAt), formatTime(p.UpdatedAt)); err != nil {
		return BusinessProfile{}, eris.Wrap(err, "profiles: upsert")
	}
	if err := tx.Commit(); err != nil {
		return BusinessProfile{}, eris.Wrap(err, "profiles: commit")
	}
	return p, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

var _ Repo = (*SQLiteRepo)(nil)
