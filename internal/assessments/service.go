package assessments

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/keylock"
)

// Service appends and lists assessment history with per-user serialization.
type Service struct {
	Repo  HistoryRepo
	Now   func() time.Time
	NewID func() string
	locks *keylock.Map
}

// NewService wraps repo.
func NewService(repo HistoryRepo) *Service {
	return &Service{
		Repo:  repo,
		Now:   time.Now,
		NewID: func() string { return uuid.NewString() },
		locks: keylock.New(),
	}
}

// Append records an assessment for the user and returns the stored entry.
func (s *Service) Append(ctx context.Context, userID, country string, rec Record, promptHash string) (Entry, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(country) == "" {
		return Entry{}, eris.Wrap(ErrInvalidEntry, "user id and country are required")
	}
	unlock := s.locks.Lock(userID)
	defer unlock()

	entry := Entry{
		ID:         s.NewID(),
		UserID:     userID,
		Country:    country,
		CreatedAt:  s.Now().UTC(),
		Record:     rec,
		PromptHash: promptHash,
	}
	stored, err := s.Repo.Append(ctx, entry)
	if err != nil {
		return Entry{}, err
	}
	return stored, nil
}

// List returns the user's history, oldest first.
func (s *Service) List(ctx context.Context, userID string) ([]Entry, error) {
	return s.Repo.List(ctx, userID)
}

// LatestStructured returns the most recent structured entry for country.
func (s *Service) LatestStructured(ctx context.Context, userID, country string) (Entry, bool, error) {
	entries, err := s.Repo.List(ctx, userID)
	if err != nil {
		return Entry{}, false, err
	}
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Country == country && entries[i].Record.Structured() {
			return entries[i], true, nil
		}
	}
	return Entry{}, false, nil
}
