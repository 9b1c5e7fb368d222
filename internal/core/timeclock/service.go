package timeclock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ogurasousui/shop-crew-clock/internal/core/activity"
	"github.com/ogurasousui/shop-crew-clock/internal/core/crew"
	"github.com/ogurasousui/shop-crew-clock/internal/core/session"
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

// Service は出退勤と作業の紐付けに関するユースケースをまとめます。
type Service struct {
	crews    crew.Repository
	entries  Repository
	jobs     JobLookup
	identity session.IdentitySource
	clock    Clock
	tx       TransactionManager
	activity activity.Recorder
}

// UseCase は打刻ユースケースの公開インターフェースです。
type UseCase interface {
	ClockIn(ctx context.Context, in ClockInInput) (*TimeEntry, error)
	ClockOut(ctx context.Context, in ClockOutInput) (*TimeEntry, error)
	SetCurrentJob(ctx context.Context, in SetCurrentJobInput) (*TimeEntry, error)
	EditTimeEntry(ctx context.Context, in EditTimeEntryInput) (*TimeEntry, error)
	DeleteTimeEntry(ctx context.Context, in DeleteTimeEntryInput) error
	GetTimeEntry(ctx context.Context, in GetTimeEntryInput) (*TimeEntry, error)
}

// NewService は Service を生成します。identity が nil の場合はコンテキストのクルー ID を利用します。
func NewService(crews crew.Repository, entries Repository, jobs JobLookup, identity session.IdentitySource, clock Clock, tx TransactionManager, recorder activity.Recorder) *Service {
	if identity == nil {
		identity = session.ContextIdentity{}
	}
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	if recorder == nil {
		recorder = activity.Discard
	}
	return &Service{
		crews:    crews,
		entries:  entries,
		jobs:     jobs,
		identity: identity,
		clock:    clock,
		tx:       tx,
		activity: recorder,
	}
}

// ClockInInput は出勤時の入力です。CrewID が空の場合は操作中のクルーを対象とします。
type ClockInInput struct {
	CrewID string
}

// ClockOutInput は退勤時の入力です。CrewID が空の場合は操作中のクルーを対象とします。
type ClockOutInput struct {
	CrewID string
}

// EditTimeEntryInput は打刻の管理者編集の入力です。
// ClockOut が nil の場合は勤務中に戻し、JobID が nil の場合は作業を解除します。
type EditTimeEntryInput struct {
	ID       string
	ClockIn  time.Time
	ClockOut *time.Time
	JobID    *string
}

// DeleteTimeEntryInput は打刻削除時の入力です。
type DeleteTimeEntryInput struct {
	ID string
}

// GetTimeEntryInput は打刻取得時の入力です。
type GetTimeEntryInput struct {
	ID string
}

// ClockIn はクルーを出勤させ、新しい打刻を作成します。
func (s *Service) ClockIn(ctx context.Context, in ClockInInput) (*TimeEntry, error) {
	crewID, err := session.Resolve(ctx, s.identity, in.CrewID)
	if err != nil {
		return nil, err
	}

	var (
		created *TimeEntry
		name    string
	)
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		member, err := s.crews.FindByID(txCtx, crewID)
		if err != nil {
			return err
		}
		if member.CurrentlyClocked {
			return ErrAlreadyClockedIn
		}

		now := s.clock.Now()
		entry, err := s.entries.Create(txCtx, &TimeEntry{
			CrewID:    member.ID,
			CrewName:  member.Name,
			ClockIn:   now,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return err
		}

		entryID := entry.ID
		member.CurrentlyClocked = true
		member.CurrentTimeEntryID = &entryID
		member.UpdatedAt = now
		if _, err := s.crews.Update(txCtx, member); err != nil {
			return err
		}

		created = entry
		name = member.Name
		return nil
	}); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, "%s clocked in", name)
	return created, nil
}

// ClockOut は勤務中の打刻を締め、クルーの打刻状態を解除します。
// 追跡中の打刻が見つからない場合もクルーの状態は解除し、nil を返します。
func (s *Service) ClockOut(ctx context.Context, in ClockOutInput) (*TimeEntry, error) {
	crewID, err := session.Resolve(ctx, s.identity, in.CrewID)
	if err != nil {
		return nil, err
	}

	var (
		closed *TimeEntry
		name   string
	)
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		member, err := s.crews.FindByID(txCtx, crewID)
		if err != nil {
			return err
		}
		if !member.CurrentlyClocked {
			return ErrNotClockedIn
		}

		now := s.clock.Now()
		if member.CurrentTimeEntryID != nil {
			entry, err := s.entries.FindByID(txCtx, *member.CurrentTimeEntryID)
			switch {
			case errors.Is(err, ErrTimeEntryNotFound):
				zerolog.Ctx(ctx).Warn().Str("crew_id", member.ID).Str("time_entry_id", *member.CurrentTimeEntryID).Msg("tracked time entry is missing")
			case err != nil:
				return err
			case entry.IsOpen():
				entry.Close(now)
				entry.UpdatedAt = now
				updated, err := s.entries.Update(txCtx, entry)
				if err != nil {
					return err
				}
				closed = updated
			default:
				closed = entry
			}
		}

		member.ClockOff()
		member.UpdatedAt = now
		if _, err := s.crews.Update(txCtx, member); err != nil {
			return err
		}

		name = member.Name
		return nil
	}); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, "%s clocked out", name)
	return closed, nil
}

// EditTimeEntry は打刻を書き換え、追跡中の打刻であればクルーの打刻状態を同期します。
func (s *Service) EditTimeEntry(ctx context.Context, in EditTimeEntryInput) (*TimeEntry, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}
	if in.ClockIn.IsZero() {
		return nil, ErrInvalidClockIn
	}
	if in.ClockOut != nil && !in.ClockOut.After(in.ClockIn) {
		return nil, ErrInvalidRange
	}

	var jobID string
	if in.JobID != nil {
		jobID = strings.TrimSpace(*in.JobID)
	}

	var edited *TimeEntry
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		entry, err := s.entries.FindByID(txCtx, id)
		if err != nil {
			return err
		}

		var job *Job
		if jobID != "" {
			found, err := s.jobs.FindJobByID(txCtx, jobID)
			if err != nil {
				return err
			}
			job = found
		}

		now := s.clock.Now()
		entry.ClockIn = in.ClockIn
		if in.ClockOut != nil {
			entry.Close(*in.ClockOut)
		} else {
			entry.Reopen()
		}
		entry.BindJob(job)
		entry.UpdatedAt = now

		if err := s.syncCrewState(txCtx, entry, now); err != nil {
			return err
		}

		updated, err := s.entries.Update(txCtx, entry)
		if err != nil {
			return err
		}
		edited = updated
		return nil
	}); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, "Updated time entry for %s", edited.CrewName)
	return edited, nil
}

// syncCrewState は編集後の打刻に合わせてクルーの打刻状態を揃えます。
func (s *Service) syncCrewState(ctx context.Context, entry *TimeEntry, now time.Time) error {
	member, err := s.crews.FindByID(ctx, entry.CrewID)
	if err != nil {
		if errors.Is(err, crew.ErrCrewNotFound) && !entry.IsOpen() {
			return nil
		}
		return err
	}

	tracked := member.TracksEntry(entry.ID)
	switch {
	case entry.IsOpen() && tracked:
		member.CurrentlyClocked = true
		member.CurrentJobID = cloneString(entry.JobID)
	case entry.IsOpen() && member.CurrentlyClocked:
		return ErrAlreadyClockedIn
	case entry.IsOpen():
		entryID := entry.ID
		member.CurrentlyClocked = true
		member.CurrentTimeEntryID = &entryID
		member.CurrentJobID = cloneString(entry.JobID)
	case tracked:
		member.ClockOff()
	default:
		return nil
	}

	member.UpdatedAt = now
	_, err = s.crews.Update(ctx, member)
	return err
}

// DeleteTimeEntry は打刻を削除します。勤務中の打刻は削除できません。
func (s *Service) DeleteTimeEntry(ctx context.Context, in DeleteTimeEntryInput) error {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}

	var crewName string
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		entry, err := s.entries.FindByID(txCtx, id)
		if err != nil {
			return err
		}

		member, err := s.crews.FindByID(txCtx, entry.CrewID)
		switch {
		case errors.Is(err, crew.ErrCrewNotFound):
		case err != nil:
			return err
		case member.TracksEntry(entry.ID):
			return ErrEntryInUse
		}

		crewName = entry.CrewName
		return s.entries.Delete(txCtx, id)
	}); err != nil {
		return err
	}

	s.activity.Record(ctx, "Deleted time entry for %s", crewName)
	return nil
}

// GetTimeEntry は打刻を取得します。
func (s *Service) GetTimeEntry(ctx context.Context, in GetTimeEntryInput) (*TimeEntry, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var result *TimeEntry
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.entries.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}
	return result, nil
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
