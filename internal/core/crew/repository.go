package crew

import "context"

// Repository はクルー永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, member *CrewMember) (*CrewMember, error)
	Update(ctx context.Context, member *CrewMember) (*CrewMember, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*CrewMember, error)
	// FindByUsername は大文字小文字を区別せずに検索します。
	FindByUsername(ctx context.Context, username string) (*CrewMember, error)
	List(ctx context.Context, filter ListFilter) ([]*CrewMember, error)
}

// ListFilter は一覧取得用フィルタです。
type ListFilter struct {
	Status    *Status
	ClockedIn *bool
}
