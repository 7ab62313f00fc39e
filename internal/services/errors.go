// Package services implements the application-level use cases of the rewards
// engine, chiefly the feedback submission pipeline. This file centralizes
// common service-level error values so that they can be consistently returned
// by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages or HTTP status codes is performed at the handler
// layer.
package services

import "errors"

var (
	// ErrEmptyContent is returned when a submission contains no feedback
	// text. Rejected before any persistence attempt.
	ErrEmptyContent = errors.New("feedback content is empty")

	// ErrContentTooLong is returned when a submission exceeds the maximum
	// configured content length.
	ErrContentTooLong = errors.New("feedback content too long")

	// ErrMissingProject is returned when a submission does not reference a
	// project.
	ErrMissingProject = errors.New("project reference is required")
)
