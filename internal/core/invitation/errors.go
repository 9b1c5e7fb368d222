package invitation

import (
	"errors"
	"fmt"

	"github.com/ogurasousui/shop-crew-clock/internal/core/crew"
)

var (
	ErrInvalidID          = errors.New("invitation: invalid id")
	ErrInvitationNotFound = errors.New("invitation: not found")
	ErrInvalidCode        = errors.New("invitation: invalid invitation code")
	ErrExpired            = errors.New("invitation: invitation has expired")
	ErrAlreadyConsumed    = errors.New("invitation: invitation has already been used or expired")
	ErrNotPending         = errors.New("invitation: invitation is not pending")
	ErrDuplicateCode      = errors.New("invitation: code already exists")
	ErrCodeGeneration     = errors.New("invitation: could not generate a unique code")

	// ErrInvalidPosition は職種が指定されていない場合に返却されます。
	ErrInvalidPosition = fmt.Errorf("%w: position is required", crew.ErrValidationFailed)
	// ErrInvalidExpiry は有効時間が上限を超える場合に返却されます。
	ErrInvalidExpiry = fmt.Errorf("%w: expiry hours must not exceed one year", crew.ErrValidationFailed)
)
