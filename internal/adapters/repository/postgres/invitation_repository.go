package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ogurasousui/shop-crew-clock/internal/core/invitation"
	pgdb "github.com/ogurasousui/shop-crew-clock/internal/platform/db/postgres"
)

const invitationColumns = `id, code, position, hourly_rate, created_at, expires_at, status, used_by, used_at`

// InvitationRepository は PostgreSQL を利用した招待永続化の実装です。
type InvitationRepository struct {
	pool pgdb.Queryer
}

// NewInvitationRepository は InvitationRepository を生成します。
func NewInvitationRepository(pool pgdb.Queryer) *InvitationRepository {
	return &InvitationRepository{pool: pool}
}

// Create は招待を新規作成します。
func (r *InvitationRepository) Create(ctx context.Context, inv *invitation.Invitation) (*invitation.Invitation, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO invitations (code, position, hourly_rate, created_at, expires_at, status, used_by, used_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING `+invitationColumns,
		inv.Code,
		inv.Position,
		inv.HourlyRate,
		inv.CreatedAt,
		inv.ExpiresAt,
		string(inv.Status),
		nullableString(inv.UsedBy),
		nullableTimestamp(inv.UsedAt),
	)

	created, err := scanInvitation(row)
	if err != nil {
		return nil, translateInvitationPgError(err)
	}
	return created, nil
}

// Update は招待の状態を更新します。
func (r *InvitationRepository) Update(ctx context.Context, inv *invitation.Invitation) (*invitation.Invitation, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE invitations
           SET position = $1,
               hourly_rate = $2,
               expires_at = $3,
               status = $4,
               used_by = $5,
               used_at = $6
         WHERE id = $7
        RETURNING `+invitationColumns,
		inv.Position,
		inv.HourlyRate,
		inv.ExpiresAt,
		string(inv.Status),
		nullableString(inv.UsedBy),
		nullableTimestamp(inv.UsedAt),
		inv.ID,
	)

	updated, err := scanInvitation(row)
	if err != nil {
		return nil, translateInvitationPgError(err)
	}
	return updated, nil
}

// FindByID は ID で招待を取得します。
func (r *InvitationRepository) FindByID(ctx context.Context, id string) (*invitation.Invitation, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+invitationColumns+`
          FROM invitations
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanInvitation(row)
	if err != nil {
		return nil, translateInvitationPgError(err)
	}
	return found, nil
}

// FindByCode はコードで招待を取得します。
func (r *InvitationRepository) FindByCode(ctx context.Context, code string) (*invitation.Invitation, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+invitationColumns+`
          FROM invitations
         WHERE code = $1
         LIMIT 1
    `, code)

	found, err := scanInvitation(row)
	if err != nil {
		return nil, translateInvitationPgError(err)
	}
	return found, nil
}

// List は招待を新しい順に取得します。
func (r *InvitationRepository) List(ctx context.Context) ([]*invitation.Invitation, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+invitationColumns+`
          FROM invitations
         ORDER BY created_at DESC, id DESC
    `)
	if err != nil {
		return nil, translateInvitationPgError(err)
	}
	defer rows.Close()

	var invitations []*invitation.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, translateInvitationPgError(err)
		}
		invitations = append(invitations, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, translateInvitationPgError(err)
	}
	return invitations, nil
}

func scanInvitation(row pgx.Row) (*invitation.Invitation, error) {
	var (
		inv       invitation.Invitation
		status    string
		createdAt time.Time
		expiresAt time.Time
		usedBy    *string
		usedAt    *time.Time
	)

	if err := row.Scan(
		&inv.ID,
		&inv.Code,
		&inv.Position,
		&inv.HourlyRate,
		&createdAt,
		&expiresAt,
		&status,
		&usedBy,
		&usedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, invitation.ErrInvitationNotFound
		}
		return nil, err
	}

	inv.Status = invitation.Status(status)
	inv.CreatedAt = createdAt.UTC()
	inv.ExpiresAt = expiresAt.UTC()
	inv.UsedBy = usedBy
	inv.UsedAt = timePtr(usedAt)
	return &inv, nil
}

func translateInvitationPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) || isMalformedID(err) {
		return invitation.ErrInvitationNotFound
	}

	if pgErr, ok := pgErrorFrom(err); ok && pgErr.Code == uniqueViolationCode && pgErr.ConstraintName == invitationCodeConstraint {
		return invitation.ErrDuplicateCode
	}

	return err
}
