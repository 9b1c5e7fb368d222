package timeclock

import (
	"context"
	"time"
)

// Repository は打刻永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, entry *TimeEntry) (*TimeEntry, error)
	Update(ctx context.Context, entry *TimeEntry) (*TimeEntry, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*TimeEntry, error)
	List(ctx context.Context, filter ListFilter) ([]*TimeEntry, error)
}

// ListFilter は打刻一覧取得用フィルタです。ClockInFrom と ClockInTo は両端を含みます。
type ListFilter struct {
	CrewID      *string
	ClockInFrom *time.Time
	ClockInTo   *time.Time
	OpenOnly    bool
}

// JobLookup は作業の参照を解決します。存在しない場合は ErrJobNotFound を返します。
type JobLookup interface {
	FindJobByID(ctx context.Context, id string) (*Job, error)
}
