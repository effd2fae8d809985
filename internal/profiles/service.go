package profiles

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/keylock"
)

// Service serializes profile writes per user on top of a Repo.
type Service struct {
	Repo  Repo
	Now   func() time.Time
	locks *keylock.Map
}

// NewService wraps repo.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo, Now: time.Now, locks: keylock.New()}
}

// Get returns the user's profile or ErrNotFound.
func (s *Service) Get(ctx context.Context, userID string) (BusinessProfile, error) {
	if strings.TrimSpace(userID) == "" {
		return BusinessProfile{}, ErrNotFound
	}
	return s.Repo.Get(ctx, userID)
}

// Upsert merges patch into the user's profile, creating it if needed.
func (s *Service) Upsert(ctx context.Context, userID string, patch Patch) (BusinessProfile, error) {
	if strings.TrimSpace(userID) == "" {
		return BusinessProfile{}, eris.Wrap(ErrInvalidPatch, "user id is required")
	}
	unlock := s.locks.Lock(userID)
	defer unlock()

	p, err := s.Repo.Upsert(ctx, userID, patch, s.now())
	if err != nil {
		return BusinessProfile{}, err
	}
	return p, nil
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}
