// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file centralizes the repository-level error sentinels
// and the driver-agnostic detection of unique-constraint violations.
package repo

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicate indicates that a row with the same unique key already exists
// (e.g. an ActivityRecord with the same correlation key, or an
// AchievementAward for the same (user, achievement) pair).
var ErrDuplicate = errors.New("duplicate")

// IsUniqueViolation reports whether err is a unique constraint violation.
// glebarez/sqlite often returns plain-text errors for UNIQUE violations, so
// string matching supplements gorm's sentinel.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, ErrDuplicate) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique") ||
		strings.Contains(low, "duplicate key")
}
