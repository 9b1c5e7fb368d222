package postgres

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolationCode      = "23505"
	checkViolationCode       = "23514"
	invalidTextRepresentCode = "22P02"

	crewUsernameConstraint   = "crew_members_username_lower_key"
	openTimeEntryConstraint  = "time_entries_open_crew_key"
	invitationCodeConstraint = "invitations_code_key"
)

func pgErrorFrom(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// isMalformedID は UUID として解釈できない ID を渡した場合のエラーかを判定します。
func isMalformedID(err error) bool {
	pgErr, ok := pgErrorFrom(err)
	return ok && pgErr.Code == invalidTextRepresentCode
}

func nullableString(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullableTimestamp(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC()
}

func timePtr(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	v := value.UTC()
	return &v
}
