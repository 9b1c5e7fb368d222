package activity

import "context"

// Repository はアクティビティ永続化の抽象です。
// Append は新しい順に MaxEntries 件を超えた古い記録を切り詰めます。
type Repository interface {
	Append(ctx context.Context, entry *Entry) error
	ListRecent(ctx context.Context, limit int) ([]*Entry, error)
}
