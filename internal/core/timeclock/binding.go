package timeclock

import (
	"context"
	"strings"

	"github.com/ogurasousui/shop-crew-clock/internal/core/session"
)

const noJobLabel = "None"

// SetCurrentJobInput は作業切り替え時の入力です。JobID が nil または空の場合は作業を解除します。
type SetCurrentJobInput struct {
	CrewID string
	JobID  *string
}

// SetCurrentJob は勤務中のクルーの作業を切り替えます。打刻は締めずに作業名を記録し直します。
func (s *Service) SetCurrentJob(ctx context.Context, in SetCurrentJobInput) (*TimeEntry, error) {
	crewID, err := session.Resolve(ctx, s.identity, in.CrewID)
	if err != nil {
		return nil, err
	}

	var jobID string
	if in.JobID != nil {
		jobID = strings.TrimSpace(*in.JobID)
	}

	var (
		bound *TimeEntry
		name  string
		label = noJobLabel
	)
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		member, err := s.crews.FindByID(txCtx, crewID)
		if err != nil {
			return err
		}
		if !member.CurrentlyClocked || member.CurrentTimeEntryID == nil {
			return ErrNotClockedIn
		}

		var job *Job
		if jobID != "" {
			found, err := s.jobs.FindJobByID(txCtx, jobID)
			if err != nil {
				return err
			}
			job = found
			label = found.Title
		}

		entry, err := s.entries.FindByID(txCtx, *member.CurrentTimeEntryID)
		if err != nil {
			return err
		}
		if !entry.IsOpen() {
			return ErrNotClockedIn
		}

		now := s.clock.Now()
		entry.BindJob(job)
		entry.UpdatedAt = now
		updated, err := s.entries.Update(txCtx, entry)
		if err != nil {
			return err
		}

		member.CurrentJobID = cloneString(entry.JobID)
		member.UpdatedAt = now
		if _, err := s.crews.Update(txCtx, member); err != nil {
			return err
		}

		bound = updated
		name = member.Name
		return nil
	}); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, "%s switched to job: %s", name, label)
	return bound, nil
}
