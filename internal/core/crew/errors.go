package crew

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidID          = errors.New("crew: invalid id")
	ErrCrewNotFound       = errors.New("crew: not found")
	ErrDuplicateUsername  = errors.New("crew: username already taken")
	ErrInvalidCredentials = errors.New("crew: invalid username or password")
	ErrInactiveMember     = errors.New("crew: account is inactive")
	ErrEntryInUse         = errors.New("crew: entry in use")
	ErrInvalidStatus      = errors.New("crew: invalid status")

	// ErrValidationFailed は入力ポリシー違反の親エラーです。
	ErrValidationFailed = errors.New("crew: validation failed")
)

var (
	ErrInvalidName       = fmt.Errorf("%w: name is required", ErrValidationFailed)
	ErrInvalidHourlyRate = fmt.Errorf("%w: hourly rate must be a non-negative number", ErrValidationFailed)
	ErrInvalidPIN        = fmt.Errorf("%w: pin must be exactly 4 digits", ErrValidationFailed)
	ErrInvalidUsername   = fmt.Errorf("%w: username must be at least 3 characters", ErrValidationFailed)
	ErrInvalidPassword   = fmt.Errorf("%w: password must be at least 6 characters", ErrValidationFailed)
	ErrPasswordMismatch  = fmt.Errorf("%w: passwords do not match", ErrValidationFailed)

	// ErrMemberClockedIn は出勤中のクルーを削除しようとした場合に返却されます。
	ErrMemberClockedIn = fmt.Errorf("%w: crew member is clocked in", ErrEntryInUse)
)
