package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ogurasousui/shop-crew-clock/internal/core/crew"
	pgdb "github.com/ogurasousui/shop-crew-clock/internal/platform/db/postgres"
)

const crewColumns = `id, name, employee_id, position, hourly_rate, phone, email, status, username, password, pin,
               currently_clocked, current_job_id, current_time_entry_id, registered_via_invite, created_at, updated_at`

// CrewRepository は PostgreSQL を利用したクルー永続化の実装です。
type CrewRepository struct {
	pool pgdb.Queryer
}

// NewCrewRepository は CrewRepository を生成します。
func NewCrewRepository(pool pgdb.Queryer) *CrewRepository {
	return &CrewRepository{pool: pool}
}

// Create はクルーを新規作成します。
func (r *CrewRepository) Create(ctx context.Context, m *crew.CrewMember) (*crew.CrewMember, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO crew_members (name, employee_id, position, hourly_rate, phone, email, status, username, password, pin,
                                  currently_clocked, current_job_id, current_time_entry_id, registered_via_invite, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
        RETURNING `+crewColumns,
		m.Name,
		m.EmployeeID,
		m.Position,
		m.HourlyRate,
		m.Phone,
		m.Email,
		string(m.Status),
		nullableString(m.Username),
		nullableString(m.Password),
		m.PIN,
		m.CurrentlyClocked,
		nullableString(m.CurrentJobID),
		nullableString(m.CurrentTimeEntryID),
		m.RegisteredViaInvite,
		m.CreatedAt,
		m.UpdatedAt,
	)

	created, err := scanCrewMember(row)
	if err != nil {
		return nil, translateCrewPgError(err)
	}
	return created, nil
}

// Update はクルー情報と打刻状態を更新します。
func (r *CrewRepository) Update(ctx context.Context, m *crew.CrewMember) (*crew.CrewMember, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE crew_members
           SET name = $1,
               employee_id = $2,
               position = $3,
               hourly_rate = $4,
               phone = $5,
               email = $6,
               status = $7,
               username = $8,
               password = $9,
               pin = $10,
               currently_clocked = $11,
               current_job_id = $12,
               current_time_entry_id = $13,
               updated_at = $14
         WHERE id = $15
        RETURNING `+crewColumns,
		m.Name,
		m.EmployeeID,
		m.Position,
		m.HourlyRate,
		m.Phone,
		m.Email,
		string(m.Status),
		nullableString(m.Username),
		nullableString(m.Password),
		m.PIN,
		m.CurrentlyClocked,
		nullableString(m.CurrentJobID),
		nullableString(m.CurrentTimeEntryID),
		m.UpdatedAt,
		m.ID,
	)

	updated, err := scanCrewMember(row)
	if err != nil {
		return nil, translateCrewPgError(err)
	}
	return updated, nil
}

// Delete はクルーを削除します。
func (r *CrewRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM crew_members WHERE id = $1`, id)
	if err != nil {
		return translateCrewPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return crew.ErrCrewNotFound
	}
	return nil
}

// FindByID は ID でクルーを取得します。
func (r *CrewRepository) FindByID(ctx context.Context, id string) (*crew.CrewMember, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+crewColumns+`
          FROM crew_members
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanCrewMember(row)
	if err != nil {
		return nil, translateCrewPgError(err)
	}
	return found, nil
}

// FindByUsername はユーザー名を大文字小文字を区別せずに検索します。
func (r *CrewRepository) FindByUsername(ctx context.Context, username string) (*crew.CrewMember, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+crewColumns+`
          FROM crew_members
         WHERE lower(username) = lower($1)
         LIMIT 1
    `, username)

	found, err := scanCrewMember(row)
	if err != nil {
		return nil, translateCrewPgError(err)
	}
	return found, nil
}

// List はクルーの一覧を登録順に取得します。
func (r *CrewRepository) List(ctx context.Context, filter crew.ListFilter) ([]*crew.CrewMember, error) {
	args := make([]any, 0, 2)
	conditions := make([]string, 0, 2)

	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conditions = append(conditions, "status = $"+strconv.Itoa(len(args)))
	}
	if filter.ClockedIn != nil {
		args = append(args, *filter.ClockedIn)
		conditions = append(conditions, "currently_clocked = $"+strconv.Itoa(len(args)))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := `
        SELECT ` + crewColumns + `
          FROM crew_members` + whereClause + `
         ORDER BY created_at, id
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translateCrewPgError(err)
	}
	defer rows.Close()

	var members []*crew.CrewMember
	for rows.Next() {
		m, err := scanCrewMember(rows)
		if err != nil {
			return nil, translateCrewPgError(err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, translateCrewPgError(err)
	}
	return members, nil
}

func scanCrewMember(row pgx.Row) (*crew.CrewMember, error) {
	var (
		m            crew.CrewMember
		status       string
		username     *string
		password     *string
		currentJobID *string
		currentEntry *string
		createdAt    time.Time
		updatedAt    time.Time
	)

	if err := row.Scan(
		&m.ID,
		&m.Name,
		&m.EmployeeID,
		&m.Position,
		&m.HourlyRate,
		&m.Phone,
		&m.Email,
		&status,
		&username,
		&password,
		&m.PIN,
		&m.CurrentlyClocked,
		&currentJobID,
		&currentEntry,
		&m.RegisteredViaInvite,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, crew.ErrCrewNotFound
		}
		return nil, err
	}

	m.Status = crew.Status(status)
	m.Username = username
	m.Password = password
	m.CurrentJobID = currentJobID
	m.CurrentTimeEntryID = currentEntry
	m.CreatedAt = createdAt.UTC()
	m.UpdatedAt = updatedAt.UTC()
	return &m, nil
}

func translateCrewPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) || isMalformedID(err) {
		return crew.ErrCrewNotFound
	}

	if pgErr, ok := pgErrorFrom(err); ok {
		switch pgErr.Code {
		case uniqueViolationCode:
			if pgErr.ConstraintName == crewUsernameConstraint {
				return crew.ErrDuplicateUsername
			}
		case checkViolationCode:
			return crew.ErrValidationFailed
		}
	}

	return err
}
