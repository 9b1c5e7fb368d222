package crew

import (
	"context"
	"errors"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minUsernameLength = 3
	minPasswordLength = 6
)

var pinPattern = regexp.MustCompile(`^\d{4}$`)

// ValidatePIN は PIN が数字 4 桁であることを検証します。
func ValidatePIN(pin string) error {
	if !pinPattern.MatchString(pin) {
		return ErrInvalidPIN
	}
	return nil
}

// NormalizeUsername はユーザー名を整形し長さを検証します。
func NormalizeUsername(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if utf8.RuneCountInString(trimmed) < minUsernameLength {
		return "", ErrInvalidUsername
	}
	return trimmed, nil
}

// ValidatePassword はパスワードの長さを検証します。
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return ErrInvalidPassword
	}
	return nil
}

// ValidatePasswordConfirmation は確認用パスワードとの一致を検証します。
func ValidatePasswordConfirmation(password, confirm string) error {
	if password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}

// ValidateHourlyRate は時給が 0 以上の有限値であることを検証します。
func ValidateHourlyRate(rate float64) error {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate < 0 {
		return ErrInvalidHourlyRate
	}
	return nil
}

// EnsureUsernameAvailable はユーザー名が他のクルーに使われていないことを確認します。
// exceptID に一致するクルーは重複とみなしません。
func EnsureUsernameAvailable(ctx context.Context, repo Repository, username, exceptID string) error {
	found, err := repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrCrewNotFound) {
			return nil
		}
		return err
	}
	if found != nil && found.ID != exceptID {
		return ErrDuplicateUsername
	}
	return nil
}
