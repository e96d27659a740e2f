// Package services holds the business logic of the tutor: conversations and
// messages, profiles and plans, learning progress and review ranking.
//
// This file centralizes the service-level errors. Handlers translate them
// into HTTP statuses; nothing here knows about transport.
package services

import (
	"errors"
	"fmt"
)

var (
	// ErrConversationNotFound covers both a missing conversation and one
	// owned by someone else, so existence never leaks.
	ErrConversationNotFound = errors.New("conversation not found or no permission")

	// ErrPlanRestricted means the requested mode is not part of the caller's plan.
	ErrPlanRestricted = errors.New("mode not available on current plan")

	// ErrEmptyMessage is returned for blank message content.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrTooLong is returned when message content exceeds the rune limit.
	ErrTooLong = errors.New("message too long")

	// ErrUpstreamTimeout means the tutor model did not answer in time.
	ErrUpstreamTimeout = errors.New("tutor did not answer in time")

	// ErrUpstream means the tutor model failed or answered with garbage.
	ErrUpstream = errors.New("tutor is unavailable")

	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidFeedback is returned when a feedback value is not -1 or 1.
	ErrInvalidFeedback = errors.New("feedback value must be -1 or 1")

	// ErrMessageNotFound indicates that the message does not exist or is not
	// visible to the current user.
	ErrMessageNotFound = errors.New("message not found")

	// ErrForbiddenFeedback is returned for feedback on a non-assistant message.
	ErrForbiddenFeedback = errors.New("cannot leave feedback on this message")

	// ErrDuplicateFeedback is returned when the user already rated the message.
	ErrDuplicateFeedback = errors.New("feedback already exists")
)

// ValidationError describes one rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) hold.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, reason string) error { return &ValidationError{Field: field, Reason: reason} }
