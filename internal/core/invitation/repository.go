package invitation

import "context"

// Repository は招待永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, invitation *Invitation) (*Invitation, error)
	Update(ctx context.Context, invitation *Invitation) (*Invitation, error)
	FindByID(ctx context.Context, id string) (*Invitation, error)
	FindByCode(ctx context.Context, code string) (*Invitation, error)
	// List は作成日時の新しい順に返します。
	List(ctx context.Context) ([]*Invitation, error)
}
