package timeclock

import (
	"errors"
	"fmt"

	"github.com/ogurasousui/shop-crew-clock/internal/core/crew"
)

var (
	ErrInvalidID         = errors.New("timeclock: invalid id")
	ErrTimeEntryNotFound = errors.New("timeclock: time entry not found")
	ErrJobNotFound       = errors.New("timeclock: job not found")
	ErrAlreadyClockedIn  = errors.New("timeclock: crew member is already clocked in")
	ErrNotClockedIn      = errors.New("timeclock: crew member is not clocked in")
	ErrInvalidRange      = errors.New("timeclock: clock out must be after clock in")

	// ErrInvalidClockIn は出勤時刻が指定されていない場合に返却されます。
	ErrInvalidClockIn = fmt.Errorf("%w: clock in is required", ErrInvalidRange)

	// ErrEntryInUse は勤務中の打刻を削除しようとした場合に返却されます。
	ErrEntryInUse = fmt.Errorf("%w: time entry is an active shift", crew.ErrEntryInUse)
)
