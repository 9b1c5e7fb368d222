package activity

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type fakeActivityRepo struct {
	entries   []*Entry
	appendErr error
	sequence  int
}

func (r *fakeActivityRepo) Append(_ context.Context, e *Entry) error {
	if r.appendErr != nil {
		return r.appendErr
	}
	r.sequence++
	clone := *e
	clone.ID = fmt.Sprintf("act-%d", r.sequence)
	r.entries = append([]*Entry{&clone}, r.entries...)
	if len(r.entries) > MaxEntries {
		r.entries = r.entries[:MaxEntries]
	}
	return nil
}

func (r *fakeActivityRepo) ListRecent(_ context.Context, limit int) ([]*Entry, error) {
	if limit > len(r.entries) {
		limit = len(r.entries)
	}
	return r.entries[:limit], nil
}

func TestService_Record_NewestFirstAndCapped(t *testing.T) {
	t.Parallel()

	repo := &fakeActivityRepo{}
	svc := NewService(repo, &stubClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)})

	for i := 0; i < MaxEntries+5; i++ {
		svc.Record(context.Background(), "event %d", i)
	}

	entries, err := svc.ListRecent(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListRecent returned error: %v", err)
	}
	if len(entries) != MaxEntries {
		t.Fatalf("expected %d entries, got %d", MaxEntries, len(entries))
	}
	if entries[0].Message != fmt.Sprintf("event %d", MaxEntries+4) {
		t.Fatalf("expected newest entry first, got %q", entries[0].Message)
	}
}

func TestService_Record_SwallowsErrors(t *testing.T) {
	t.Parallel()

	repo := &fakeActivityRepo{appendErr: errors.New("disk full")}
	svc := NewService(repo, nil)

	svc.Record(context.Background(), "crew clocked in")

	if len(repo.entries) != 0 {
		t.Fatalf("expected nothing stored")
	}
}

func TestService_Record_SkipsBlankMessage(t *testing.T) {
	t.Parallel()

	repo := &fakeActivityRepo{}
	svc := NewService(repo, nil)

	svc.Record(context.Background(), "   ")

	if len(repo.entries) != 0 {
		t.Fatalf("expected blank message to be ignored")
	}
}

type limitRecordingRepo struct {
	fakeActivityRepo
	limits []int
}

func (r *limitRecordingRepo) ListRecent(ctx context.Context, limit int) ([]*Entry, error) {
	r.limits = append(r.limits, limit)
	return r.fakeActivityRepo.ListRecent(ctx, limit)
}

func TestService_ListRecent_ClampsLimit(t *testing.T) {
	t.Parallel()

	repo := &limitRecordingRepo{}
	svc := NewService(repo, nil)

	for _, limit := range []int{-1, 0, 5, MaxEntries, MaxEntries + 1} {
		if _, err := svc.ListRecent(context.Background(), limit); err != nil {
			t.Fatalf("ListRecent(%d) returned error: %v", limit, err)
		}
	}

	want := []int{MaxEntries, MaxEntries, 5, MaxEntries, MaxEntries}
	if len(repo.limits) != len(want) {
		t.Fatalf("unexpected calls: %v", repo.limits)
	}
	for i := range want {
		if repo.limits[i] != want[i] {
			t.Fatalf("call %d: expected limit %d, got %d", i, want[i], repo.limits[i])
		}
	}
}
