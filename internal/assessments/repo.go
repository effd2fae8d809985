package assessments

import "context"

// HistoryRepo persists the append-only assessment history. Append assigns
// the next per-user sequence number; List returns entries in sequence order.
type HistoryRepo interface {
	Append(ctx context.Context, entry Entry) (Entry, error)
	List(ctx context.Context, userID string) ([]Entry, error)
}
