package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/ogurasousui/shop-crew-clock/internal/core/timeclock"
)

var timeEntryColumnNames = []string{
	"id", "crew_id", "crew_name", "clock_in", "clock_out", "job_id", "job_title", "duration_hours", "created_at", "updated_at",
}

func TestTranslateTimeEntryPgError(t *testing.T) {
	t.Parallel()

	open := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: openTimeEntryConstraint}
	if !errors.Is(translateTimeEntryPgError(open), timeclock.ErrAlreadyClockedIn) {
		t.Fatalf("expected open entry violation to map to ErrAlreadyClockedIn")
	}

	other := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "something_else"}
	if translateTimeEntryPgError(other) != other {
		t.Fatalf("unexpected translation for unrelated unique violation")
	}

	malformed := &pgconn.PgError{Code: invalidTextRepresentCode}
	if !errors.Is(translateTimeEntryPgError(malformed), timeclock.ErrTimeEntryNotFound) {
		t.Fatalf("expected malformed id to map to not found")
	}
}

func TestTimeEntryRepository_Create_SecondOpenEntry(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewTimeEntryRepository(mock)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO time_entries`)).
		WithArgs("crew-1", "Mike Torres", now, nil, nil, nil, 0.0, now, now).
		WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: openTimeEntryConstraint})

	_, err = repo.Create(context.Background(), &timeclock.TimeEntry{
		CrewID:    "crew-1",
		CrewName:  "Mike Torres",
		ClockIn:   now,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if !errors.Is(err, timeclock.ErrAlreadyClockedIn) {
		t.Fatalf("expected ErrAlreadyClockedIn, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTimeEntryRepository_List_WithRangeAndCrew(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewTimeEntryRepository(mock)
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 1, 23, 59, 59, 0, time.UTC)
	crewID := "crew-1"

	query := regexp.QuoteMeta(`FROM time_entries WHERE crew_id = $1 AND clock_in >= $2 AND clock_in <= $3 ORDER BY clock_in, id`)

	clockIn := from.Add(9 * time.Hour)
	clockOut := clockIn.Add(8 * time.Hour)
	jobID := "job-b"
	jobTitle := "B"
	rows := pgxmock.NewRows(timeEntryColumnNames).
		AddRow("entry-1", crewID, "Mike Torres", clockIn, &clockOut, &jobID, &jobTitle, 8.0, clockIn, clockOut).
		AddRow("entry-2", crewID, "Mike Torres", clockOut.Add(time.Hour), nil, nil, nil, 0.0, clockOut, clockOut)

	mock.ExpectQuery(query).
		WithArgs(crewID, from, to).
		WillReturnRows(rows)

	entries, err := repo.List(context.Background(), timeclock.ListFilter{CrewID: &crewID, ClockInFrom: &from, ClockInTo: &to})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].IsOpen() || entries[0].Duration != 8.0 || *entries[0].JobTitle != "B" {
		t.Fatalf("unexpected closed entry %+v", entries[0])
	}
	if !entries[1].IsOpen() || entries[1].JobID != nil {
		t.Fatalf("unexpected open entry %+v", entries[1])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTimeEntryRepository_List_OpenOnly(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewTimeEntryRepository(mock)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM time_entries WHERE clock_out IS NULL ORDER BY clock_in, id`)).
		WillReturnRows(pgxmock.NewRows(timeEntryColumnNames))

	entries, err := repo.List(context.Background(), timeclock.ListFilter{OpenOnly: true})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTimeEntryRepository_Delete_NotFound(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewTimeEntryRepository(mock)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM time_entries WHERE id = $1`)).
		WithArgs("entry-x").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	if err := repo.Delete(context.Background(), "entry-x"); !errors.Is(err, timeclock.ErrTimeEntryNotFound) {
		t.Fatalf("expected ErrTimeEntryNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
