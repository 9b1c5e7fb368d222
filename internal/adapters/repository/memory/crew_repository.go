package memory

import (
	"context"
	"strings"

	"github.com/ogurasousui/shop-crew-clock/internal/core/crew"
)

// CrewRepository は crew.Repository のメモリ実装です。
type CrewRepository struct {
	store *Store
}

// NewCrewRepository は CrewRepository を生成します。
func NewCrewRepository(store *Store) *CrewRepository {
	return &CrewRepository{store: store}
}

// Create はクルーを登録します。
func (r *CrewRepository) Create(ctx context.Context, member *crew.CrewMember) (*crew.CrewMember, error) {
	var created *crew.CrewMember
	err := r.store.update(ctx, func(state *State) error {
		if usernameTaken(state, member.Username, "") {
			return crew.ErrDuplicateUsername
		}
		record := cloneCrew(member)
		record.ID = r.store.newID()
		state.Crew = append(state.Crew, record)
		created = cloneCrew(record)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update はクルーを更新します。
func (r *CrewRepository) Update(ctx context.Context, member *crew.CrewMember) (*crew.CrewMember, error) {
	var updated *crew.CrewMember
	err := r.store.update(ctx, func(state *State) error {
		idx := indexOfCrew(state, member.ID)
		if idx < 0 {
			return crew.ErrCrewNotFound
		}
		if usernameTaken(state, member.Username, member.ID) {
			return crew.ErrDuplicateUsername
		}
		record := cloneCrew(member)
		record.CreatedAt = state.Crew[idx].CreatedAt
		state.Crew[idx] = record
		updated = cloneCrew(record)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete はクルーを削除します。
func (r *CrewRepository) Delete(ctx context.Context, id string) error {
	return r.store.update(ctx, func(state *State) error {
		idx := indexOfCrew(state, id)
		if idx < 0 {
			return crew.ErrCrewNotFound
		}
		state.Crew = append(state.Crew[:idx], state.Crew[idx+1:]...)
		return nil
	})
}

// FindByID は ID でクルーを取得します。
func (r *CrewRepository) FindByID(ctx context.Context, id string) (*crew.CrewMember, error) {
	var found *crew.CrewMember
	err := r.store.view(ctx, func(state *State) error {
		idx := indexOfCrew(state, id)
		if idx < 0 {
			return crew.ErrCrewNotFound
		}
		found = cloneCrew(state.Crew[idx])
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// FindByUsername はユーザー名を大文字小文字を区別せずに検索します。
func (r *CrewRepository) FindByUsername(ctx context.Context, username string) (*crew.CrewMember, error) {
	var found *crew.CrewMember
	err := r.store.view(ctx, func(state *State) error {
		for _, m := range state.Crew {
			if m.Username != nil && strings.EqualFold(*m.Username, username) {
				found = cloneCrew(m)
				return nil
			}
		}
		return crew.ErrCrewNotFound
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// List は登録順にクルーを返します。
func (r *CrewRepository) List(ctx context.Context, filter crew.ListFilter) ([]*crew.CrewMember, error) {
	var members []*crew.CrewMember
	err := r.store.view(ctx, func(state *State) error {
		for _, m := range state.Crew {
			if filter.Status != nil && m.Status != *filter.Status {
				continue
			}
			if filter.ClockedIn != nil && m.CurrentlyClocked != *filter.ClockedIn {
				continue
			}
			members = append(members, cloneCrew(m))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return members, nil
}

func indexOfCrew(state *State, id string) int {
	for idx, m := range state.Crew {
		if m.ID == id {
			return idx
		}
	}
	return -1
}

func usernameTaken(state *State, username *string, exceptID string) bool {
	if username == nil {
		return false
	}
	for _, m := range state.Crew {
		if m.ID != exceptID && m.Username != nil && strings.EqualFold(*m.Username, *username) {
			return true
		}
	}
	return false
}
