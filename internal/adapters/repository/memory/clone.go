package memory

import (
	"time"

	"github.com/ogurasousui/shop-crew-clock/internal/core/activity"
	"github.com/ogurasousui/shop-crew-clock/internal/core/crew"
	"github.com/ogurasousui/shop-crew-clock/internal/core/invitation"
	"github.com/ogurasousui/shop-crew-clock/internal/core/timeclock"
)

func cloneCrew(m *crew.CrewMember) *crew.CrewMember {
	if m == nil {
		return nil
	}
	out := *m
	out.Username = cloneString(m.Username)
	out.Password = cloneString(m.Password)
	out.CurrentJobID = cloneString(m.CurrentJobID)
	out.CurrentTimeEntryID = cloneString(m.CurrentTimeEntryID)
	return &out
}

func cloneEntry(e *timeclock.TimeEntry) *timeclock.TimeEntry {
	if e == nil {
		return nil
	}
	out := *e
	out.ClockOut = cloneTime(e.ClockOut)
	out.JobID = cloneString(e.JobID)
	out.JobTitle = cloneString(e.JobTitle)
	return &out
}

func cloneInvitation(inv *invitation.Invitation) *invitation.Invitation {
	if inv == nil {
		return nil
	}
	out := *inv
	out.UsedBy = cloneString(inv.UsedBy)
	out.UsedAt = cloneTime(inv.UsedAt)
	return &out
}

func cloneJob(j *timeclock.Job) *timeclock.Job {
	if j == nil {
		return nil
	}
	out := *j
	return &out
}

func cloneActivity(a *activity.Entry) *activity.Entry {
	if a == nil {
		return nil
	}
	out := *a
	return &out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
