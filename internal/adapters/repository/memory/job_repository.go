package memory

import (
	"context"

	"github.com/ogurasousui/shop-crew-clock/internal/core/timeclock"
)

// JobRepository は timeclock.JobLookup のメモリ実装です。
type JobRepository struct {
	store *Store
}

// NewJobRepository は JobRepository を生成します。
func NewJobRepository(store *Store) *JobRepository {
	return &JobRepository{store: store}
}

// FindJobByID は ID で作業を取得します。
func (r *JobRepository) FindJobByID(ctx context.Context, id string) (*timeclock.Job, error) {
	var found *timeclock.Job
	err := r.store.view(ctx, func(state *State) error {
		for _, j := range state.Jobs {
			if j.ID == id {
				found = cloneJob(j)
				return nil
			}
		}
		return timeclock.ErrJobNotFound
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}
