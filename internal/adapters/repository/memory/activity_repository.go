package memory

import (
	"context"

	"github.com/ogurasousui/shop-crew-clock/internal/core/activity"
)

// ActivityRepository は activity.Repository のメモリ実装です。
type ActivityRepository struct {
	store *Store
}

// NewActivityRepository は ActivityRepository を生成します。
func NewActivityRepository(store *Store) *ActivityRepository {
	return &ActivityRepository{store: store}
}

// Append は先頭に記録を追加し、activity.MaxEntries 件を超えた古い記録を捨てます。
func (r *ActivityRepository) Append(ctx context.Context, entry *activity.Entry) error {
	return r.store.update(ctx, func(state *State) error {
		record := cloneActivity(entry)
		record.ID = r.store.newID()
		state.Activities = append([]*activity.Entry{record}, state.Activities...)
		if len(state.Activities) > activity.MaxEntries {
			state.Activities = state.Activities[:activity.MaxEntries]
		}
		return nil
	})
}

// ListRecent は新しい順に最大 limit 件を返します。
func (r *ActivityRepository) ListRecent(ctx context.Context, limit int) ([]*activity.Entry, error) {
	var entries []*activity.Entry
	err := r.store.view(ctx, func(state *State) error {
		for _, a := range state.Activities {
			if limit > 0 && len(entries) >= limit {
				break
			}
			entries = append(entries, cloneActivity(a))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
