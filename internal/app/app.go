package app

import (
	"context"
	"time"

	"github.com/ogurasousui/shop-crew-clock/internal/adapters/grpc/handler"
	"github.com/ogurasousui/shop-crew-clock/internal/core/activity"
	"github.com/ogurasousui/shop-crew-clock/internal/core/crew"
	"github.com/ogurasousui/shop-crew-clock/internal/core/invitation"
	"github.com/ogurasousui/shop-crew-clock/internal/core/session"
	"github.com/ogurasousui/shop-crew-clock/internal/core/timeclock"
	"github.com/ogurasousui/shop-crew-clock/internal/core/timesheet"
	"github.com/ogurasousui/shop-crew-clock/internal/platform/server"
)

// TransactionManager は各ユースケースが共有するトランザクション制御です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

// Clock は現在時刻を提供します。nil の場合は各サービスの既定値を用います。
type Clock interface {
	Now() time.Time
}

// Storage は永続化方式ごとのリポジトリ一式です。
type Storage struct {
	Crew        crew.Repository
	TimeEntries timeclock.Repository
	Invitations invitation.Repository
	Activities  activity.Repository
	Jobs        timeclock.JobLookup
	Tx          TransactionManager
}

// Options はユースケースの動作設定です。
type Options struct {
	Location   *time.Location
	Invitation invitation.Options
	Clock      Clock
}

// Services は組み立て済みのユースケースです。
type Services struct {
	Crew       *crew.Service
	TimeClock  *timeclock.Service
	Timesheet  *timesheet.Service
	Invitation *invitation.Service
	Activity   *activity.Service
}

// Build はリポジトリからユースケースを組み立てます。
func Build(st Storage, opts Options) *Services {
	clock := opts.Clock
	identity := session.ContextIdentity{}

	activitySvc := activity.NewService(st.Activities, clock)
	return &Services{
		Crew:       crew.NewService(st.Crew, clock, st.Tx, activitySvc),
		TimeClock:  timeclock.NewService(st.Crew, st.TimeEntries, st.Jobs, identity, clock, st.Tx, activitySvc),
		Timesheet:  timesheet.NewService(st.Crew, st.TimeEntries, identity, clock, st.Tx, opts.Location),
		Invitation: invitation.NewService(st.Invitations, st.Crew, clock, st.Tx, activitySvc, opts.Invitation),
		Activity:   activitySvc,
	}
}

// Handlers は gRPC サーバーに登録するハンドラを生成します。
func (s *Services) Handlers(loc *time.Location) server.Services {
	return server.Services{
		Crew:       handler.NewCrewGrpcHandler(s.Crew),
		TimeClock:  handler.NewTimeClockGrpcHandler(s.TimeClock),
		Timesheet:  handler.NewTimesheetGrpcHandler(s.Timesheet, loc),
		Invitation: handler.NewInvitationGrpcHandler(s.Invitation),
		Activity:   handler.NewActivityGrpcHandler(s.Activity),
	}
}
