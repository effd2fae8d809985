package profiles

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo keeps profiles in process memory.
type MemoryRepo struct {
	mu       sync.RWMutex
	profiles map[string]BusinessProfile
}

// NewMemoryRepo returns an empty MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{profiles: make(map[string]BusinessProfile)}
}

func (r *MemoryRepo) Get(ctx context.Context, userID string) (BusinessProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[userID]
	if !ok {
		return BusinessProfile{}, ErrNotFound
	}
	return clone(p), nil
}

func (r *MemoryRepo) Upsert(ctx context.Context, userID string, patch Patch, now time.Time) (BusinessProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		p = BusinessProfile{UserID: userID, CreatedAt: now}
	} else {
		p = clone(p)
	}
	if Apply(&p, patch) || !ok {
		p.UpdatedAt = now
	}
	r.profiles[userID] = p
	return clone(p), nil
}

func clone(p BusinessProfile) BusinessProfile {
	p.ExportInterest.TargetCountries = append([]string(nil), p.ExportInterest.TargetCountries...)
	p.ExportInterest.CurrentMarkets = append([]string(nil), p.ExportInterest.CurrentMarkets...)
	p.ExportInterest.Certifications = append([]string(nil), p.ExportInterest.Certifications...)
	p.ExportInterest.Challenges = append([]string(nil), p.ExportInterest.Challenges...)
	return p
}

var _ Repo = (*MemoryRepo)(nil)
