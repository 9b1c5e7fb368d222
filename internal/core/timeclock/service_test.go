package timeclock_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/ogurasousui/shop-crew-clock/internal/adapters/repository/memory"
	"github.com/ogurasousui/shop-crew-clock/internal/core/activity"
	"github.com/ogurasousui/shop-crew-clock/internal/core/crew"
	"github.com/ogurasousui/shop-crew-clock/internal/core/session"
	"github.com/ogurasousui/shop-crew-clock/internal/core/timeclock"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type fixture struct {
	store    *memory.Store
	clock    *stubClock
	crews    *memory.CrewRepository
	entries  *memory.TimeEntryRepository
	activity *activity.Service
	svc      *timeclock.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store, err := memory.NewStore()
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	clk := &stubClock{now: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)}
	crews := memory.NewCrewRepository(store)
	entries := memory.NewTimeEntryRepository(store)
	recorder := activity.NewService(memory.NewActivityRepository(store), clk)
	svc := timeclock.NewService(crews, entries, memory.NewJobRepository(store), nil, clk, memory.NewTransactionManager(store), recorder)

	if err := store.SeedJobs(context.Background(),
		&timeclock.Job{ID: "job-a", Title: "A"},
		&timeclock.Job{ID: "job-b", Title: "B"},
	); err != nil {
		t.Fatalf("failed to seed jobs: %v", err)
	}

	return &fixture{store: store, clock: clk, crews: crews, entries: entries, activity: recorder, svc: svc}
}

func (f *fixture) addCrew(t *testing.T, name string) *crew.CrewMember {
	t.Helper()
	member, err := f.crews.Create(context.Background(), &crew.CrewMember{Name: name, PIN: "1234", Status: crew.StatusActive, HourlyRate: 20})
	if err != nil {
		t.Fatalf("failed to create crew member: %v", err)
	}
	return member
}

func (f *fixture) member(t *testing.T, id string) *crew.CrewMember {
	t.Helper()
	member, err := f.crews.FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("failed to load crew member: %v", err)
	}
	return member
}

// assertClockConsistency は CurrentlyClocked と未締め打刻の対応を検証します。
func (f *fixture) assertClockConsistency(t *testing.T) {
	t.Helper()

	state := f.store.Snapshot()
	for _, m := range state.Crew {
		var open []*timeclock.TimeEntry
		for _, e := range state.TimeEntries {
			if e.CrewID == m.ID && e.IsOpen() {
				open = append(open, e)
			}
		}
		if m.CurrentlyClocked != (len(open) == 1) || len(open) > 1 {
			t.Fatalf("crew %s: clocked=%v with %d open entries", m.Name, m.CurrentlyClocked, len(open))
		}
		if m.CurrentlyClocked && !m.TracksEntry(open[0].ID) {
			t.Fatalf("crew %s does not track its open entry", m.Name)
		}
		if !m.CurrentlyClocked && m.CurrentTimeEntryID != nil {
			t.Fatalf("crew %s tracks an entry while clocked out", m.Name)
		}
	}
}

func (f *fixture) messages(t *testing.T) []string {
	t.Helper()
	entries, err := f.activity.ListRecent(context.Background(), activity.MaxEntries)
	if err != nil {
		t.Fatalf("failed to list activity: %v", err)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Message)
	}
	return out
}

func strPtr(s string) *string {
	return &s
}

func TestService_FullShiftWithJobSwitches(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	member := f.addCrew(t, "Jane")
	ctx := context.Background()
	day := f.clock.now

	entry, err := f.svc.ClockIn(ctx, timeclock.ClockInInput{CrewID: member.ID})
	if err != nil {
		t.Fatalf("ClockIn returned error: %v", err)
	}
	if !entry.IsOpen() || entry.JobID != nil || entry.CrewName != "Jane" {
		t.Fatalf("unexpected open entry: %+v", entry)
	}

	f.clock.now = day.Add(5 * time.Minute)
	if _, err := f.svc.SetCurrentJob(ctx, timeclock.SetCurrentJobInput{CrewID: member.ID, JobID: strPtr("job-a")}); err != nil {
		t.Fatalf("SetCurrentJob(A) returned error: %v", err)
	}

	f.clock.now = day.Add(2 * time.Hour)
	bound, err := f.svc.SetCurrentJob(ctx, timeclock.SetCurrentJobInput{CrewID: member.ID, JobID: strPtr("job-b")})
	if err != nil {
		t.Fatalf("SetCurrentJob(B) returned error: %v", err)
	}
	if bound.ID != entry.ID {
		t.Fatalf("job switch must not create a new entry")
	}
	if current := f.member(t, member.ID); current.CurrentJobID == nil || *current.CurrentJobID != "job-b" {
		t.Fatalf("expected crew current job B, got %+v", current.CurrentJobID)
	}

	f.clock.now = day.Add(8 * time.Hour)
	closed, err := f.svc.ClockOut(ctx, timeclock.ClockOutInput{CrewID: member.ID})
	if err != nil {
		t.Fatalf("ClockOut returned error: %v", err)
	}

	if closed.ID != entry.ID || closed.ClockOut == nil || !closed.ClockOut.Equal(day.Add(8*time.Hour)) {
		t.Fatalf("unexpected closed entry: %+v", closed)
	}
	if math.Abs(closed.Duration-8.0) > 1e-9 {
		t.Fatalf("expected duration 8.0, got %v", closed.Duration)
	}
	if closed.JobTitle == nil || *closed.JobTitle != "B" {
		t.Fatalf("expected final job title B, got %+v", closed.JobTitle)
	}
	if got := len(f.store.Snapshot().TimeEntries); got != 1 {
		t.Fatalf("expected exactly one entry, got %d", got)
	}

	after := f.member(t, member.ID)
	if after.CurrentlyClocked || after.CurrentJobID != nil || after.CurrentTimeEntryID != nil {
		t.Fatalf("expected clock state reset, got %+v", after)
	}
	f.assertClockConsistency(t)

	want := []string{
		"Jane clocked out",
		"Jane switched to job: B",
		"Jane switched to job: A",
		"Jane clocked in",
	}
	got := f.messages(t)
	if len(got) != len(want) {
		t.Fatalf("unexpected activity: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("activity[%d]: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestService_ClockInTwiceFails(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	member := f.addCrew(t, "Pat")
	ctx := context.Background()

	if _, err := f.svc.ClockIn(ctx, timeclock.ClockInInput{CrewID: member.ID}); err != nil {
		t.Fatalf("ClockIn returned error: %v", err)
	}
	if _, err := f.svc.ClockIn(ctx, timeclock.ClockInInput{CrewID: member.ID}); !errors.Is(err, timeclock.ErrAlreadyClockedIn) {
		t.Fatalf("expected ErrAlreadyClockedIn, got %v", err)
	}
	if got := len(f.store.Snapshot().TimeEntries); got != 1 {
		t.Fatalf("expected no second entry, got %d entries", got)
	}
	f.assertClockConsistency(t)
}

func TestService_ImmediateClockOut(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	member := f.addCrew(t, "Quick")
	ctx := context.Background()

	if _, err := f.svc.ClockIn(ctx, timeclock.ClockInInput{CrewID: member.ID}); err != nil {
		t.Fatalf("ClockIn returned error: %v", err)
	}
	closed, err := f.svc.ClockOut(ctx, timeclock.ClockOutInput{CrewID: member.ID})
	if err != nil {
		t.Fatalf("ClockOut returned error: %v", err)
	}
	if closed.Duration != 0 || closed.IsOpen() {
		t.Fatalf("expected closed entry with zero duration, got %+v", closed)
	}
	f.assertClockConsistency(t)
}

func TestService_ClockOutWhenNotClockedIn(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	member := f.addCrew(t, "Idle")

	if _, err := f.svc.ClockOut(context.Background(), timeclock.ClockOutInput{CrewID: member.ID}); !errors.Is(err, timeclock.ErrNotClockedIn) {
		t.Fatalf("expected ErrNotClockedIn, got %v", err)
	}
	if len(f.messages(t)) != 0 {
		t.Fatalf("failed operation must not record activity")
	}
}

func TestService_ClockInUnknownCrew(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	if _, err := f.svc.ClockIn(context.Background(), timeclock.ClockInInput{CrewID: "missing"}); !errors.Is(err, crew.ErrCrewNotFound) {
		t.Fatalf("expected ErrCrewNotFound, got %v", err)
	}
}

func TestService_SelfServiceUsesSession(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	member := f.addCrew(t, "Self")

	if _, err := f.svc.ClockIn(context.Background(), timeclock.ClockInInput{}); !errors.Is(err, session.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}

	ctx := session.WithCrewID(context.Background(), member.ID)
	entry, err := f.svc.ClockIn(ctx, timeclock.ClockInInput{})
	if err != nil {
		t.Fatalf("ClockIn returned error: %v", err)
	}
	if entry.CrewID != member.ID {
		t.Fatalf("expected entry for acting crew member, got %s", entry.CrewID)
	}
}

func TestService_SetCurrentJobErrors(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	member := f.addCrew(t, "Binder")
	ctx := context.Background()

	if _, err := f.svc.SetCurrentJob(ctx, timeclock.SetCurrentJobInput{CrewID: member.ID, JobID: strPtr("job-a")}); !errors.Is(err, timeclock.ErrNotClockedIn) {
		t.Fatalf("expected ErrNotClockedIn, got %v", err)
	}

	if _, err := f.svc.ClockIn(ctx, timeclock.ClockInInput{CrewID: member.ID}); err != nil {
		t.Fatalf("ClockIn returned error: %v", err)
	}
	if _, err := f.svc.SetCurrentJob(ctx, timeclock.SetCurrentJobInput{CrewID: member.ID, JobID: strPtr("job-x")}); !errors.Is(err, timeclock.ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}

	if _, err := f.svc.SetCurrentJob(ctx, timeclock.SetCurrentJobInput{CrewID: member.ID, JobID: strPtr("job-a")}); err != nil {
		t.Fatalf("SetCurrentJob returned error: %v", err)
	}
	unbound, err := f.svc.SetCurrentJob(ctx, timeclock.SetCurrentJobInput{CrewID: member.ID})
	if err != nil {
		t.Fatalf("SetCurrentJob(nil) returned error: %v", err)
	}
	if unbound.JobID != nil || unbound.JobTitle != nil {
		t.Fatalf("expected job to be cleared, got %+v", unbound)
	}
	if msgs := f.messages(t); msgs[0] != "Binder switched to job: None" {
		t.Fatalf("unexpected activity: %v", msgs)
	}
}

func TestService_JobTitleIsSnapshot(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	member := f.addCrew(t, "Snap")
	ctx := context.Background()

	entry, err := f.svc.ClockIn(ctx, timeclock.ClockInInput{CrewID: member.ID})
	if err != nil {
		t.Fatalf("ClockIn returned error: %v", err)
	}
	if _, err := f.svc.SetCurrentJob(ctx, timeclock.SetCurrentJobInput{CrewID: member.ID, JobID: strPtr("job-a")}); err != nil {
		t.Fatalf("SetCurrentJob returned error: %v", err)
	}
	if err := f.store.SeedJobs(ctx, &timeclock.Job{ID: "job-a", Title: "Renamed"}); err != nil {
		t.Fatalf("failed to rename job: %v", err)
	}

	got, err := f.svc.GetTimeEntry(ctx, timeclock.GetTimeEntryInput{ID: entry.ID})
	if err != nil {
		t.Fatalf("GetTimeEntry returned error: %v", err)
	}
	if got.JobTitle == nil || *got.JobTitle != "A" {
		t.Fatalf("expected title captured at binding time, got %+v", got.JobTitle)
	}
}

func TestService_EditReopenAndCloseResyncsCrew(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	member := f.addCrew(t, "Edit")
	ctx := context.Background()
	day := f.clock.now

	entry, err := f.svc.ClockIn(ctx, timeclock.ClockInInput{CrewID: member.ID})
	if err != nil {
		t.Fatalf("ClockIn returned error: %v", err)
	}
	f.clock.now = day.Add(4 * time.Hour)
	if _, err := f.svc.ClockOut(ctx, timeclock.ClockOutInput{CrewID: member.ID}); err != nil {
		t.Fatalf("ClockOut returned error: %v", err)
	}

	reopened, err := f.svc.EditTimeEntry(ctx, timeclock.EditTimeEntryInput{ID: entry.ID, ClockIn: day, JobID: strPtr("job-b")})
	if err != nil {
		t.Fatalf("EditTimeEntry(reopen) returned error: %v", err)
	}
	if !reopened.IsOpen() || reopened.Duration != 0 {
		t.Fatalf("expected entry to be reopened, got %+v", reopened)
	}
	current := f.member(t, member.ID)
	if !current.CurrentlyClocked || !current.TracksEntry(entry.ID) {
		t.Fatalf("expected crew to track reopened entry, got %+v", current)
	}
	if current.CurrentJobID == nil || *current.CurrentJobID != "job-b" {
		t.Fatalf("expected crew current job to follow the entry")
	}
	f.assertClockConsistency(t)

	clockOut := day.Add(6 * time.Hour)
	closed, err := f.svc.EditTimeEntry(ctx, timeclock.EditTimeEntryInput{ID: entry.ID, ClockIn: day, ClockOut: &clockOut})
	if err != nil {
		t.Fatalf("EditTimeEntry(close) returned error: %v", err)
	}
	if math.Abs(closed.Duration-6.0) > 1e-9 || closed.JobID != nil {
		t.Fatalf("unexpected closed entry: %+v", closed)
	}
	current = f.member(t, member.ID)
	if current.CurrentlyClocked || current.CurrentTimeEntryID != nil {
		t.Fatalf("expected crew to be clocked out, got %+v", current)
	}
	f.assertClockConsistency(t)

	if msgs := f.messages(t); msgs[0] != "Updated time entry for Edit" {
		t.Fatalf("unexpected activity: %v", msgs)
	}
}

func TestService_EditReopenWhileTrackingAnotherEntryFails(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	member := f.addCrew(t, "Busy")
	ctx := context.Background()
	day := f.clock.now

	first, err := f.svc.ClockIn(ctx, timeclock.ClockInInput{CrewID: member.ID})
	if err != nil {
		t.Fatalf("ClockIn returned error: %v", err)
	}
	f.clock.now = day.Add(time.Hour)
	if _, err := f.svc.ClockOut(ctx, timeclock.ClockOutInput{CrewID: member.ID}); err != nil {
		t.Fatalf("ClockOut returned error: %v", err)
	}
	f.clock.now = day.Add(2 * time.Hour)
	second, err := f.svc.ClockIn(ctx, timeclock.ClockInInput{CrewID: member.ID})
	if err != nil {
		t.Fatalf("second ClockIn returned error: %v", err)
	}

	_, err = f.svc.EditTimeEntry(ctx, timeclock.EditTimeEntryInput{ID: first.ID, ClockIn: day})
	if !errors.Is(err, timeclock.ErrAlreadyClockedIn) {
		t.Fatalf("expected ErrAlreadyClockedIn, got %v", err)
	}

	unchanged, err := f.svc.GetTimeEntry(ctx, timeclock.GetTimeEntryInput{ID: first.ID})
	if err != nil {
		t.Fatalf("GetTimeEntry returned error: %v", err)
	}
	if unchanged.IsOpen() {
		t.Fatalf("failed edit must not reopen the entry")
	}
	if !f.member(t, member.ID).TracksEntry(second.ID) {
		t.Fatalf("crew must keep tracking the current shift")
	}
	f.assertClockConsistency(t)
}

func TestService_EditValidation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	member := f.addCrew(t, "Range")
	ctx := context.Background()

	entry, err := f.svc.ClockIn(ctx, timeclock.ClockInInput{CrewID: member.ID})
	if err != nil {
		t.Fatalf("ClockIn returned error: %v", err)
	}

	same := entry.ClockIn
	if _, err := f.svc.EditTimeEntry(ctx, timeclock.EditTimeEntryInput{ID: entry.ID, ClockIn: entry.ClockIn, ClockOut: &same}); !errors.Is(err, timeclock.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
	if _, err := f.svc.EditTimeEntry(ctx, timeclock.EditTimeEntryInput{ID: entry.ID}); !errors.Is(err, timeclock.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange for missing clock in, got %v", err)
	}
	if _, err := f.svc.EditTimeEntry(ctx, timeclock.EditTimeEntryInput{ID: entry.ID, ClockIn: entry.ClockIn, JobID: strPtr("job-x")}); !errors.Is(err, timeclock.ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
	if _, err := f.svc.EditTimeEntry(ctx, timeclock.EditTimeEntryInput{ID: "missing", ClockIn: entry.ClockIn}); !errors.Is(err, timeclock.ErrTimeEntryNotFound) {
		t.Fatalf("expected ErrTimeEntryNotFound, got %v", err)
	}
	f.assertClockConsistency(t)
}

func TestService_DeleteTimeEntry(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	member := f.addCrew(t, "Deleter")
	ctx := context.Background()

	entry, err := f.svc.ClockIn(ctx, timeclock.ClockInInput{CrewID: member.ID})
	if err != nil {
		t.Fatalf("ClockIn returned error: %v", err)
	}

	err = f.svc.DeleteTimeEntry(ctx, timeclock.DeleteTimeEntryInput{ID: entry.ID})
	if !errors.Is(err, timeclock.ErrEntryInUse) || !errors.Is(err, crew.ErrEntryInUse) {
		t.Fatalf("expected ErrEntryInUse, got %v", err)
	}

	f.clock.now = f.clock.now.Add(time.Hour)
	if _, err := f.svc.ClockOut(ctx, timeclock.ClockOutInput{CrewID: member.ID}); err != nil {
		t.Fatalf("ClockOut returned error: %v", err)
	}
	if err := f.svc.DeleteTimeEntry(ctx, timeclock.DeleteTimeEntryInput{ID: entry.ID}); err != nil {
		t.Fatalf("DeleteTimeEntry returned error: %v", err)
	}
	if _, err := f.svc.GetTimeEntry(ctx, timeclock.GetTimeEntryInput{ID: entry.ID}); !errors.Is(err, timeclock.ErrTimeEntryNotFound) {
		t.Fatalf("expected ErrTimeEntryNotFound, got %v", err)
	}
	if msgs := f.messages(t); msgs[0] != "Deleted time entry for Deleter" {
		t.Fatalf("unexpected activity: %v", msgs)
	}
}
