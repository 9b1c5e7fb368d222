package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ogurasousui/shop-crew-clock/internal/core/timeclock"
	pgdb "github.com/ogurasousui/shop-crew-clock/internal/platform/db/postgres"
)

const timeEntryColumns = `id, crew_id, crew_name, clock_in, clock_out, job_id, job_title, duration_hours, created_at, updated_at`

// TimeEntryRepository は PostgreSQL を利用した打刻永続化の実装です。
// クルーごとの未締め打刻は部分一意インデックスで 1 件に制限されます。
type TimeEntryRepository struct {
	pool pgdb.Queryer
}

// NewTimeEntryRepository は TimeEntryRepository を生成します。
func NewTimeEntryRepository(pool pgdb.Queryer) *TimeEntryRepository {
	return &TimeEntryRepository{pool: pool}
}

// Create は打刻を新規作成します。
func (r *TimeEntryRepository) Create(ctx context.Context, e *timeclock.TimeEntry) (*timeclock.TimeEntry, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO time_entries (crew_id, crew_name, clock_in, clock_out, job_id, job_title, duration_hours, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING `+timeEntryColumns,
		e.CrewID,
		e.CrewName,
		e.ClockIn.UTC(),
		nullableTimestamp(e.ClockOut),
		nullableString(e.JobID),
		nullableString(e.JobTitle),
		e.Duration,
		e.CreatedAt,
		e.UpdatedAt,
	)

	created, err := scanTimeEntry(row)
	if err != nil {
		return nil, translateTimeEntryPgError(err)
	}
	return created, nil
}

// Update は打刻を更新します。crew_id と crew_name は変更しません。
func (r *TimeEntryRepository) Update(ctx context.Context, e *timeclock.TimeEntry) (*timeclock.TimeEntry, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE time_entries
           SET clock_in = $1,
               clock_out = $2,
               job_id = $3,
               job_title = $4,
               duration_hours = $5,
               updated_at = $6
         WHERE id = $7
        RETURNING `+timeEntryColumns,
		e.ClockIn.UTC(),
		nullableTimestamp(e.ClockOut),
		nullableString(e.JobID),
		nullableString(e.JobTitle),
		e.Duration,
		e.UpdatedAt,
		e.ID,
	)

	updated, err := scanTimeEntry(row)
	if err != nil {
		return nil, translateTimeEntryPgError(err)
	}
	return updated, nil
}

// Delete は打刻を削除します。
func (r *TimeEntryRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM time_entries WHERE id = $1`, id)
	if err != nil {
		return translateTimeEntryPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return timeclock.ErrTimeEntryNotFound
	}
	return nil
}

// FindByID は ID で打刻を取得します。
func (r *TimeEntryRepository) FindByID(ctx context.Context, id string) (*timeclock.TimeEntry, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+timeEntryColumns+`
          FROM time_entries
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanTimeEntry(row)
	if err != nil {
		return nil, translateTimeEntryPgError(err)
	}
	return found, nil
}

// List は条件に一致する打刻を出勤時刻の昇順で取得します。
func (r *TimeEntryRepository) List(ctx context.Context, filter timeclock.ListFilter) ([]*timeclock.TimeEntry, error) {
	args := make([]any, 0, 3)
	conditions := make([]string, 0, 4)

	if filter.CrewID != nil {
		args = append(args, *filter.CrewID)
		conditions = append(conditions, "crew_id = $"+strconv.Itoa(len(args)))
	}
	if filter.ClockInFrom != nil {
		args = append(args, filter.ClockInFrom.UTC())
		conditions = append(conditions, "clock_in >= $"+strconv.Itoa(len(args)))
	}
	if filter.ClockInTo != nil {
		args = append(args, filter.ClockInTo.UTC())
		conditions = append(conditions, "clock_in <= $"+strconv.Itoa(len(args)))
	}
	if filter.OpenOnly {
		conditions = append(conditions, "clock_out IS NULL")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := `
        SELECT ` + timeEntryColumns + `
          FROM time_entries` + whereClause + `
         ORDER BY clock_in, id
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translateTimeEntryPgError(err)
	}
	defer rows.Close()

	var entries []*timeclock.TimeEntry
	for rows.Next() {
		e, err := scanTimeEntry(rows)
		if err != nil {
			return nil, translateTimeEntryPgError(err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, translateTimeEntryPgError(err)
	}
	return entries, nil
}

func scanTimeEntry(row pgx.Row) (*timeclock.TimeEntry, error) {
	var (
		e         timeclock.TimeEntry
		clockIn   time.Time
		clockOut  *time.Time
		jobID     *string
		jobTitle  *string
		createdAt time.Time
		updatedAt time.Time
	)

	if err := row.Scan(
		&e.ID,
		&e.CrewID,
		&e.CrewName,
		&clockIn,
		&clockOut,
		&jobID,
		&jobTitle,
		&e.Duration,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, timeclock.ErrTimeEntryNotFound
		}
		return nil, err
	}

	e.ClockIn = clockIn.UTC()
	e.ClockOut = timePtr(clockOut)
	e.JobID = jobID
	e.JobTitle = jobTitle
	e.CreatedAt = createdAt.UTC()
	e.UpdatedAt = updatedAt.UTC()
	return &e, nil
}

func translateTimeEntryPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) || isMalformedID(err) {
		return timeclock.ErrTimeEntryNotFound
	}

	if pgErr, ok := pgErrorFrom(err); ok && pgErr.Code == uniqueViolationCode && pgErr.ConstraintName == openTimeEntryConstraint {
		return timeclock.ErrAlreadyClockedIn
	}

	return err
}
