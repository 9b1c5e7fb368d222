package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/ogurasousui/shop-crew-clock/internal/core/invitation"
)

var invitationColumnNames = []string{
	"id", "code", "position", "hourly_rate", "created_at", "expires_at", "status", "used_by", "used_at",
}

func TestTranslateInvitationPgError(t *testing.T) {
	t.Parallel()

	dup := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: invitationCodeConstraint}
	if !errors.Is(translateInvitationPgError(dup), invitation.ErrDuplicateCode) {
		t.Fatalf("expected duplicate code mapping")
	}

	otherErr := errors.New("random")
	if translateInvitationPgError(otherErr) != otherErr {
		t.Fatalf("unexpected translation for generic error")
	}
}

func TestInvitationRepository_FindByCode(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewInvitationRepository(mock)
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	usedAt := created.Add(time.Hour)
	usedBy := "crew-9"

	rows := pgxmock.NewRows(invitationColumnNames).
		AddRow("inv-1", "INV-ABC123DEF0", "Welder", 30.0, created, created.Add(72*time.Hour), string(invitation.StatusUsed), &usedBy, &usedAt)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM invitations WHERE code = $1 LIMIT 1`)).
		WithArgs("INV-ABC123DEF0").
		WillReturnRows(rows)

	inv, err := repo.FindByCode(context.Background(), "INV-ABC123DEF0")
	if err != nil {
		t.Fatalf("FindByCode returned error: %v", err)
	}
	if inv.Status != invitation.StatusUsed || inv.UsedBy == nil || *inv.UsedBy != "crew-9" {
		t.Fatalf("unexpected invitation %+v", inv)
	}
	if inv.UsedAt == nil || !inv.UsedAt.Equal(usedAt) {
		t.Fatalf("expected used_at %v, got %v", usedAt, inv.UsedAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInvitationRepository_FindByCode_NotFound(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewInvitationRepository(mock)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM invitations WHERE code = $1 LIMIT 1`)).
		WithArgs("INV-NOPE").
		WillReturnRows(pgxmock.NewRows(invitationColumnNames))

	if _, err := repo.FindByCode(context.Background(), "INV-NOPE"); !errors.Is(err, invitation.ErrInvitationNotFound) {
		t.Fatalf("expected ErrInvitationNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInvitationRepository_List_NewestFirst(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewInvitationRepository(mock)
	now := time.Now().UTC()
	rows := pgxmock.NewRows(invitationColumnNames).
		AddRow("inv-2", "INV-2", "Painter", 22.0, now, now.Add(time.Hour), string(invitation.StatusPending), nil, nil).
		AddRow("inv-1", "INV-1", "Welder", 30.0, now.Add(-time.Hour), now, string(invitation.StatusPending), nil, nil)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM invitations ORDER BY created_at DESC, id DESC`)).
		WillReturnRows(rows)

	invitations, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(invitations) != 2 || invitations[0].ID != "inv-2" {
		t.Fatalf("unexpected list %+v", invitations)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
