package assessments

import (
	"context"
	"sync"
)

// MemoryRepo keeps history in process memory.
type MemoryRepo struct {
	mu      sync.RWMutex
	entries map[string][]Entry
}

// NewMemoryRepo returns an empty MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{entries: make(map[string][]Entry)}
}

func (r *MemoryRepo) Append(ctx context.Context, entry Entry) (Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.entries[entry.UserID]
	entry.Seq = int64(len(list)) + 1
	entry.Record = cloneRecord(entry.Record)
	r.entries[entry.UserID] = append(list, entry)
	out := entry
	out.Record = cloneRecord(entry.Record)
	return out, nil
}

func (r *MemoryRepo) List(ctx context.Context, userID string) ([]Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored := r.entries[userID]
	out := make([]Entry, len(stored))
	for i, e := range stored {
		e.Record = cloneRecord(e.Record)
		out[i] = e
	}
	return out, nil
}

// cloneRecord copies every pointer and slice so stored history cannot be
// changed through a returned entry.
func cloneRecord(r Record) Record {
	if r.OverallScore != nil {
		v := *r.OverallScore
		r.OverallScore = &v
	}
	if r.Scores != nil {
		v := *r.Scores
		r.Scores = &v
	}
	if r.DeclaredOverall != nil {
		v := *r.DeclaredOverall
		r.DeclaredOverall = &v
	}
	if r.Commentary != nil {
		v := Commentary{MentionedScores: copySlice(r.Commentary.MentionedScores)}
		r.Commentary = &v
	}
	r.Certifications = copySlice(r.Certifications)
	r.Gaps = copySlice(r.Gaps)
	r.Recommendations = copySlice(r.Recommendations)
	r.ActionItems = copySlice(r.ActionItems)
	r.CompetitiveAdvantages = copySlice(r.CompetitiveAdvantages)
	r.PotentialChallenges = copySlice(r.PotentialChallenges)
	return r
}

func copySlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

var _ HistoryRepo = (*MemoryRepo)(nil)
