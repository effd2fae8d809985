package profiles

import (
	"context"
	"time"
)

// Repo persists profiles. Upsert merges patch into the stored profile,
// creating it when absent, and returns the result. Get returns ErrNotFound
// for unknown users.
type Repo interface {
	Get(ctx context.Context, userID string) (BusinessProfile, error)
	Upsert(ctx context.Context, userID string, patch Patch, now time.Time) (BusinessProfile, error)
}
