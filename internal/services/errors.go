// internal/services/errors.go
package services

import "errors"

// Business-rule violations surfaced to handlers, which map them to HTTP
// statuses with errors.Is. None of these indicate an infrastructure failure.
var (
	ErrDuplicateOwnership   = errors.New("ownership already exists for this course and owner")
	ErrOwnershipNotFound    = errors.New("ownership not found")
	ErrDuplicateActiveGrant = errors.New("an active access grant already exists for this recipient")
	ErrGrantNotFound        = errors.New("access grant not found")
	ErrInvalidExpiry        = errors.New("expiry must be in the future")
	ErrInvalidDuration      = errors.New("duration must be between 1 and 90 days")
	ErrRequestNotFound      = errors.New("access request not found")
	ErrInvalidTransition    = errors.New("request status can only move from pending to approved or rejected")
	ErrOwnerNotFound        = errors.New("no registered user for the owner address")
	ErrOwnershipMissing     = errors.New("the owner does not hold an ownership for this course")
	ErrSelfRequest          = errors.New("cannot request access to your own course")
	ErrInvalidWallet        = errors.New("invalid wallet address")
	ErrCourseNotFound       = errors.New("course not found")
	ErrUserNotFound         = errors.New("user not found")
)
