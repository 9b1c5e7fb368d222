package memory

import (
	"context"
	"sort"

	"github.com/ogurasousui/shop-crew-clock/internal/core/invitation"
)

// InvitationRepository は invitation.Repository のメモリ実装です。
type InvitationRepository struct {
	store *Store
}

// NewInvitationRepository は InvitationRepository を生成します。
func NewInvitationRepository(store *Store) *InvitationRepository {
	return &InvitationRepository{store: store}
}

// Create は招待を登録します。
func (r *InvitationRepository) Create(ctx context.Context, inv *invitation.Invitation) (*invitation.Invitation, error) {
	var created *invitation.Invitation
	err := r.store.update(ctx, func(state *State) error {
		if indexOfCode(state, inv.Code) >= 0 {
			return invitation.ErrDuplicateCode
		}
		record := cloneInvitation(inv)
		record.ID = r.store.newID()
		state.Invitations = append(state.Invitations, record)
		created = cloneInvitation(record)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update は招待を更新します。コードと作成日時は変更しません。
func (r *InvitationRepository) Update(ctx context.Context, inv *invitation.Invitation) (*invitation.Invitation, error) {
	var updated *invitation.Invitation
	err := r.store.update(ctx, func(state *State) error {
		idx := indexOfInvitation(state, inv.ID)
		if idx < 0 {
			return invitation.ErrInvitationNotFound
		}
		record := cloneInvitation(inv)
		record.Code = state.Invitations[idx].Code
		record.CreatedAt = state.Invitations[idx].CreatedAt
		state.Invitations[idx] = record
		updated = cloneInvitation(record)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// FindByID は ID で招待を取得します。
func (r *InvitationRepository) FindByID(ctx context.Context, id string) (*invitation.Invitation, error) {
	var found *invitation.Invitation
	err := r.store.view(ctx, func(state *State) error {
		idx := indexOfInvitation(state, id)
		if idx < 0 {
			return invitation.ErrInvitationNotFound
		}
		found = cloneInvitation(state.Invitations[idx])
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// FindByCode はコードで招待を取得します。
func (r *InvitationRepository) FindByCode(ctx context.Context, code string) (*invitation.Invitation, error) {
	var found *invitation.Invitation
	err := r.store.view(ctx, func(state *State) error {
		idx := indexOfCode(state, code)
		if idx < 0 {
			return invitation.ErrInvitationNotFound
		}
		found = cloneInvitation(state.Invitations[idx])
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// List は作成日時の新しい順に招待を返します。
func (r *InvitationRepository) List(ctx context.Context) ([]*invitation.Invitation, error) {
	var invitations []*invitation.Invitation
	err := r.store.view(ctx, func(state *State) error {
		for idx := len(state.Invitations) - 1; idx >= 0; idx-- {
			invitations = append(invitations, cloneInvitation(state.Invitations[idx]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(invitations, func(i, j int) bool {
		return invitations[i].CreatedAt.After(invitations[j].CreatedAt)
	})
	return invitations, nil
}

func indexOfInvitation(state *State, id string) int {
	for idx, inv := range state.Invitations {
		if inv.ID == id {
			return idx
		}
	}
	return -1
}

func indexOfCode(state *State, code string) int {
	for idx, inv := range state.Invitations {
		if inv.Code == code {
			return idx
		}
	}
	return -1
}
