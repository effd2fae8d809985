package assessments

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/rotisserie/eris"
)

// PGRepo stores history rows in PostgreSQL.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Append(ctx context.Context, entry Entry) (Entry, error) {
	doc, err := json.Marshal(entry.Record)
	if err != nil {
		return Entry{}, eris.Wrap(err, "assessments: encode record")
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return Entry{}, eris.Wrap(err, "assessments: begin tx")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "assessment_history:"+entry.UserID); err != nil {
		return Entry{}, eris.Wrap(err, "assessments: lock")
	}
	var last int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM assessment_history WHERE user_id = $1`, entry.UserID).Scan(&last); err != nil {
		return Entry{}, eris.Wrap(err, "assessments: next seq")
	}
	entry.Seq = last + 1

	const query = `
INSERT INTO assessment_history (id, user_id, seq, country, variant, overall_score, record, prompt_hash, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := tx.ExecContext(ctx, query,
		entry.ID, entry.UserID, entry.Seq, entry.Country, string(entry.Record.Variant),
		overallColumn(entry.Record), doc, entry.PromptHash, entry.CreatedAt,
	); err != nil {
		return Entry{}, eris.Wrap(err, "assessments: insert")
	}
	if err := tx.Commit(); err != nil {
		return Entry{}, eris.Wrap(err, "assessments: commit")
	}
	return entry, nil
}

func (r *PGRepo) List(ctx context.Context, userID string) ([]Entry, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT id, seq, country, record, prompt_hash, created_at
FROM assessment_history
WHERE user_id = $1
ORDER BY seq ASC`, userID)
	if err != nil {
		return nil, eris.Wrap(err, "assessments: list")
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e   Entry
			doc []byte
		)
		if err := rows.Scan(&e.ID, &e.Seq, &e.Country, &doc, &e.PromptHash, &e.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "assessments: scan")
		}
		if err := json.Unmarshal(doc, &e.Record); err != nil {
			return nil, eris.Wrap(err, "assessments: decode record")
		}
		e.UserID = userID
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "assessments: rows")
	}
	return out, nil
}

// overallColumn is the nullable overall_score value kept for querying.
func overallColumn(rec Record) any {
	if overall, ok := rec.Overall(); ok {
		return int64(overall)
	}
	return nil
}

var _ HistoryRepo = (*PGRepo)(nil)
