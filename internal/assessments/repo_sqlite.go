package assessments

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
)

// SQLiteRepo stores history rows in an embedded SQLite database. The
// connection pool is expected to hold a single connection, which
// serializes appends.
type SQLiteRepo struct {
	DB *sql.DB
}

func (r *SQLiteRepo) Append(ctx context.Context, entry Entry) (Entry, error) {
	doc, err := json.Marshal(entry.Record)
	if err != nil {
		return Entry{}, eris.Wrap(err, "assessments: encode record")
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return Entry{}, eris.Wrap(err, "assessments: begin tx")
	}
	defer tx.Rollback()

	var last int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM assessment_history WHERE user_id = ?`, entry.UserID).Scan(&last); err != nil {
		return Entry{}, eris.Wrap(err, "assessments: next seq")
	}
	entry.Seq = last + 1

	const query = `
INSERT INTO assessment_history (id, user_id, seq, country, variant, overall_score, record, prompt_hash, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, query,
		entry.ID, entry.UserID, entry.Seq, entry.Country, string(entry.Record.Variant),
		overallColumn(entry.Record), string(doc), entry.PromptHash, entry.CreatedAt.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return Entry{}, eris.Wrap(err, "assessments: insert")
	}
	if err := tx.Commit(); err != nil {
		return Entry{}, eris.Wrap(err, "assessments: commit")
	}
	return entry, nil
}

func (r *SQLiteRepo) List(ctx context.Context, userID string) ([]Entry, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT id, seq, country, record, prompt_hash, created_at
FROM assessment_history
WHERE user_id = ?
ORDER BY seq ASC`, userID)
	if err != nil {
		return nil, eris.Wrap(err, "assessments: list")
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e       Entry
			doc     string
			created string
		)
		if err := rows.Scan(&e.ID, &e.Seq, &e.Country, &doc, &e.PromptHash, &created); err != nil {
			return nil, eris.Wrap(err, "assessments: scan")
		}
		if err := json.Unmarshal([]byte(doc), &e.Record); err != nil {
			return nil, eris.Wrap(err, "assessments: decode record")
		}
		ts, err := time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, eris.Wrap(err, "assessments: parse created_at")
		}
		e.CreatedAt = ts
		e.UserID = userID
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "assessments: rows")
	}
	return out, nil
}

var _ HistoryRepo = (*SQLiteRepo)(nil)
