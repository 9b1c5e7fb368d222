package memory

import (
	"context"
	"sort"

	"github.com/ogurasousui/shop-crew-clock/internal/core/timeclock"
)

// TimeEntryRepository は timeclock.Repository のメモリ実装です。
// クルーごとに未締めの打刻は 1 件までしか保持しません。
type TimeEntryRepository struct {
	store *Store
}

// NewTimeEntryRepository は TimeEntryRepository を生成します。
func NewTimeEntryRepository(store *Store) *TimeEntryRepository {
	return &TimeEntryRepository{store: store}
}

// Create は打刻を登録します。
func (r *TimeEntryRepository) Create(ctx context.Context, entry *timeclock.TimeEntry) (*timeclock.TimeEntry, error) {
	var created *timeclock.TimeEntry
	err := r.store.update(ctx, func(state *State) error {
		if entry.IsOpen() && hasOtherOpenEntry(state, entry.CrewID, "") {
			return timeclock.ErrAlreadyClockedIn
		}
		record := cloneEntry(entry)
		record.ID = r.store.newID()
		state.TimeEntries = append(state.TimeEntries, record)
		created = cloneEntry(record)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update は打刻を更新します。
func (r *TimeEntryRepository) Update(ctx context.Context, entry *timeclock.TimeEntry) (*timeclock.TimeEntry, error) {
	var updated *timeclock.TimeEntry
	err := r.store.update(ctx, func(state *State) error {
		idx := indexOfEntry(state, entry.ID)
		if idx < 0 {
			return timeclock.ErrTimeEntryNotFound
		}
		if entry.IsOpen() && hasOtherOpenEntry(state, entry.CrewID, entry.ID) {
			return timeclock.ErrAlreadyClockedIn
		}
		record := cloneEntry(entry)
		record.CreatedAt = state.TimeEntries[idx].CreatedAt
		state.TimeEntries[idx] = record
		updated = cloneEntry(record)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete は打刻を削除します。
func (r *TimeEntryRepository) Delete(ctx context.Context, id string) error {
	return r.store.update(ctx, func(state *State) error {
		idx := indexOfEntry(state, id)
		if idx < 0 {
			return timeclock.ErrTimeEntryNotFound
		}
		state.TimeEntries = append(state.TimeEntries[:idx], state.TimeEntries[idx+1:]...)
		return nil
	})
}

// FindByID は ID で打刻を取得します。
func (r *TimeEntryRepository) FindByID(ctx context.Context, id string) (*timeclock.TimeEntry, error) {
	var found *timeclock.TimeEntry
	err := r.store.view(ctx, func(state *State) error {
		idx := indexOfEntry(state, id)
		if idx < 0 {
			return timeclock.ErrTimeEntryNotFound
		}
		found = cloneEntry(state.TimeEntries[idx])
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// List は出勤時刻の昇順で打刻を返します。
func (r *TimeEntryRepository) List(ctx context.Context, filter timeclock.ListFilter) ([]*timeclock.TimeEntry, error) {
	var entries []*timeclock.TimeEntry
	err := r.store.view(ctx, func(state *State) error {
		for _, e := range state.TimeEntries {
			if filter.CrewID != nil && e.CrewID != *filter.CrewID {
				continue
			}
			if filter.ClockInFrom != nil && e.ClockIn.Before(*filter.ClockInFrom) {
				continue
			}
			if filter.ClockInTo != nil && e.ClockIn.After(*filter.ClockInTo) {
				continue
			}
			if filter.OpenOnly && !e.IsOpen() {
				continue
			}
			entries = append(entries, cloneEntry(e))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ClockIn.Before(entries[j].ClockIn)
	})
	return entries, nil
}

func indexOfEntry(state *State, id string) int {
	for idx, e := range state.TimeEntries {
		if e.ID == id {
			return idx
		}
	}
	return -1
}

func hasOtherOpenEntry(state *State, crewID, exceptID string) bool {
	for _, e := range state.TimeEntries {
		if e.CrewID == crewID && e.ID != exceptID && e.IsOpen() {
			return true
		}
	}
	return false
}
