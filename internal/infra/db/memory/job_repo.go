package memory

import (
	"context"
	"sort"
	"sync"

	domain "github.com/bryanwahyu/automaton-trust/internal/domain/assessment"
)

// JobRepository keeps terminal snapshots in process memory. It is the default
// when no database is configured.
type JobRepository struct {
	mu   sync.RWMutex
	jobs map[domain.JobID]domain.Job
}

func NewJobRepository() *JobRepository {
	return &JobRepository{jobs: make(map[domain.JobID]domain.Job)}
}

// Save insert/update snapshot
func (r *JobRepository) Save(_ context.Context, j *domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[j.ID] = *j
	return nil
}

// Get returns nil, nil when id is unknown.
func (r *JobRepository) Get(_ context.Context, id domain.JobID) (*domain.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, nil
	}
	return &j, nil
}

// Latest returns up to limit snapshots, newest first.
func (r *JobRepository) Latest(_ context.Context, limit int) ([]*domain.Job, error) {
	if limit <= 0 {
		limit = 20
	}
	r.mu.RLock()
	out := make([]*domain.Job, 0, len(r.jobs))
	for _, j := range r.jobs {
		j := j
		out = append(out, &j)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, k int) bool {
		if out[i].UpdatedAt.Equal(out[k].UpdatedAt) {
			return out[i].ID > out[k].ID
		}
		return out[i].UpdatedAt.After(out[k].UpdatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
