package timesheet

import (
	"context"
	"time"

	"github.com/ogurasousui/shop-crew-clock/internal/core/crew"
	"github.com/ogurasousui/shop-crew-clock/internal/core/session"
	"github.com/ogurasousui/shop-crew-clock/internal/core/timeclock"
)

const (
	defaultRangeDays   = 7
	defaultHistoryDays = 30
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// Service は勤務表の参照ユースケースをまとめます。状態は変更しません。
type Service struct {
	crews    crew.Repository
	entries  timeclock.Repository
	identity session.IdentitySource
	clock    Clock
	tx       TransactionManager
	loc      *time.Location
}

// UseCase は勤務表ユースケースの公開インターフェースです。
type UseCase interface {
	Aggregate(ctx context.Context, in AggregateInput) ([]*CrewSheet, error)
	TodayLog(ctx context.Context, in TodayLogInput) (*CrewSheet, error)
	CrewHistory(ctx context.Context, in CrewHistoryInput) (*CrewSheet, error)
}

// NewService は Service を生成します。loc は暦日の境界に用いるタイムゾーンです。
func NewService(crews crew.Repository, entries timeclock.Repository, identity session.IdentitySource, clock Clock, tx TransactionManager, loc *time.Location) *Service {
	if identity == nil {
		identity = session.ContextIdentity{}
	}
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{crews: crews, entries: entries, identity: identity, clock: clock, tx: tx, loc: loc}
}

// AggregateInput は期間集計の入力です。日付が未指定の場合は直近 7 日間を対象とします。
type AggregateInput struct {
	StartDate time.Time
	EndDate   time.Time
	CrewID    *string
}

// TodayLogInput は当日の勤務記録の入力です。CrewID が空の場合は操作中のクルーを対象とします。
type TodayLogInput struct {
	CrewID string
}

// CrewHistoryInput はクルー別履歴の入力です。Days が 0 の場合は 30 日間を対象とします。
type CrewHistoryInput struct {
	CrewID string
	Days   int
}

// Aggregate は期間内の打刻をクルーごとに集計します。
func (s *Service) Aggregate(ctx context.Context, in AggregateInput) ([]*CrewSheet, error) {
	now := s.clock.Now()
	end := in.EndDate
	if end.IsZero() {
		end = now
	}
	start := in.StartDate
	if start.IsZero() {
		start = end.AddDate(0, 0, -defaultRangeDays)
	}
	if startOfDay(end, s.loc).Before(startOfDay(start, s.loc)) {
		return nil, ErrInvalidDateRange
	}

	return s.load(ctx, Range{Start: start, End: end, CrewID: in.CrewID}, now)
}

// TodayLog は当日に出勤した打刻を 1 人分まとめて返します。
func (s *Service) TodayLog(ctx context.Context, in TodayLogInput) (*CrewSheet, error) {
	crewID, err := session.Resolve(ctx, s.identity, in.CrewID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	return s.single(ctx, crewID, now, now, now)
}

// CrewHistory は直近 Days 日間の打刻を 1 人分まとめて返します。
func (s *Service) CrewHistory(ctx context.Context, in CrewHistoryInput) (*CrewSheet, error) {
	if in.Days < 0 {
		return nil, ErrInvalidDays
	}
	days := in.Days
	if days == 0 {
		days = defaultHistoryDays
	}

	crewID, err := session.Resolve(ctx, s.identity, in.CrewID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	return s.single(ctx, crewID, now.AddDate(0, 0, -days), now, now)
}

func (s *Service) single(ctx context.Context, crewID string, start, end, now time.Time) (*CrewSheet, error) {
	var member *crew.CrewMember
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.crews.FindByID(txCtx, crewID)
		if err != nil {
			return err
		}
		member = found
		return nil
	}); err != nil {
		return nil, err
	}

	sheets, err := s.load(ctx, Range{Start: start, End: end, CrewID: &crewID}, now)
	if err != nil {
		return nil, err
	}
	if len(sheets) == 0 {
		return &CrewSheet{CrewID: member.ID, CrewName: member.Name, HourlyRate: member.HourlyRate}, nil
	}
	return sheets[0], nil
}

func (s *Service) load(ctx context.Context, r Range, now time.Time) ([]*CrewSheet, error) {
	from, to := Bounds(r.Start, r.End, s.loc)

	var (
		entries []*timeclock.TimeEntry
		members []*crew.CrewMember
	)
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.entries.List(txCtx, timeclock.ListFilter{CrewID: r.CrewID, ClockInFrom: &from, ClockInTo: &to})
		if err != nil {
			return err
		}
		entries = found

		crews, err := s.crews.List(txCtx, crew.ListFilter{})
		if err != nil {
			return err
		}
		members = crews
		return nil
	}); err != nil {
		return nil, err
	}

	return Aggregate(entries, members, r, now, s.loc), nil
}
