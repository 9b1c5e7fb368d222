package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/ogurasousui/shop-crew-clock/internal/core/activity"
	"github.com/ogurasousui/shop-crew-clock/internal/core/timeclock"
)

func TestActivityRepository_Append_PrunesOldEntries(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewActivityRepository(mock)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO activities (message, created_at) VALUES ($1, $2)`)).
		WithArgs("Mike Torres clocked in", now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM activities WHERE seq NOT IN`)).
		WithArgs(activity.MaxEntries).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	if err := repo.Append(context.Background(), &activity.Entry{Message: "Mike Torres clocked in", CreatedAt: now}); err != nil {
		t.Fatalf("Append returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestActivityRepository_ListRecent_ClampsLimit(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewActivityRepository(mock)
	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "message", "created_at"}).
		AddRow("act-2", "Mike Torres clocked out", now).
		AddRow("act-1", "Mike Torres clocked in", now.Add(-time.Hour))

	mock.ExpectQuery(regexp.QuoteMeta(`FROM activities ORDER BY seq DESC LIMIT $1`)).
		WithArgs(activity.MaxEntries).
		WillReturnRows(rows)

	entries, err := repo.ListRecent(context.Background(), 500)
	if err != nil {
		t.Fatalf("ListRecent returned error: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != "act-2" {
		t.Fatalf("unexpected entries %+v", entries)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestJobRepository_FindJobByID(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewJobRepository(mock)
	query := regexp.QuoteMeta(`FROM jobs WHERE id = $1 LIMIT 1`)

	mock.ExpectQuery(query).
		WithArgs("job-a").
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "equipment", "status", "priority"}).
			AddRow("job-a", "Weld frame", "Welder", "in_progress", "high"))
	mock.ExpectQuery(query).
		WithArgs("job-x").
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "equipment", "status", "priority"}))

	job, err := repo.FindJobByID(context.Background(), "job-a")
	if err != nil {
		t.Fatalf("FindJobByID returned error: %v", err)
	}
	if job.Title != "Weld frame" {
		t.Fatalf("unexpected job %+v", job)
	}

	if _, err := repo.FindJobByID(context.Background(), "job-x"); !errors.Is(err, timeclock.ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
