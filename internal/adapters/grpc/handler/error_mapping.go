package handler

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ogurasousui/shop-crew-clock/internal/core/crew"
	"github.com/ogurasousui/shop-crew-clock/internal/core/invitation"
	"github.com/ogurasousui/shop-crew-clock/internal/core/session"
	"github.com/ogurasousui/shop-crew-clock/internal/core/timeclock"
	"github.com/ogurasousui/shop-crew-clock/internal/core/timesheet"
)

func toStatusError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	case errors.Is(err, errInvalidField),
		errors.Is(err, crew.ErrValidationFailed),
		errors.Is(err, crew.ErrInvalidID),
		errors.Is(err, crew.ErrInvalidStatus),
		errors.Is(err, timeclock.ErrInvalidID),
		errors.Is(err, timeclock.ErrInvalidRange),
		errors.Is(err, invitation.ErrInvalidID),
		errors.Is(err, timesheet.ErrInvalidDateRange),
		errors.Is(err, timesheet.ErrInvalidDays):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, crew.ErrDuplicateUsername), errors.Is(err, invitation.ErrDuplicateCode):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, crew.ErrCrewNotFound),
		errors.Is(err, timeclock.ErrTimeEntryNotFound),
		errors.Is(err, timeclock.ErrJobNotFound),
		errors.Is(err, invitation.ErrInvitationNotFound),
		errors.Is(err, invitation.ErrInvalidCode):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, timeclock.ErrAlreadyClockedIn),
		errors.Is(err, timeclock.ErrNotClockedIn),
		errors.Is(err, crew.ErrEntryInUse),
		errors.Is(err, invitation.ErrExpired),
		errors.Is(err, invitation.ErrAlreadyConsumed),
		errors.Is(err, invitation.ErrNotPending):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, session.ErrNoSession),
		errors.Is(err, crew.ErrInvalidCredentials),
		errors.Is(err, crew.ErrInactiveMember):
		return status.Error(codes.Unauthenticated, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
