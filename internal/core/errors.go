package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyID              = errors.New("empty id")
	ErrEmptyName            = errors.New("empty name")
	ErrEmptyEmail           = errors.New("empty email")
	ErrEmptyTitle           = errors.New("empty title")
	ErrInvalidIncome        = errors.New("monthly income must be a positive number")
	ErrInvalidBudget        = errors.New("monthly budget must be a positive number")
	ErrBudgetExceedsIncome  = errors.New("monthly budget cannot be greater than monthly income")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidCategory      = errors.New("invalid category")
	ErrEmptyDescription     = errors.New("empty description")
	ErrDescriptionTooLong   = fmt.Errorf("description too long (max %d characters)", MaxDescriptionLength)
	ErrZeroDate             = errors.New("date cannot be zero")
	ErrNegativePoints       = errors.New("points cannot be negative")
	ErrInvalidLevel         = errors.New("level must be at least 1")
	ErrDuplicateBadge       = errors.New("duplicate badge id")
	ErrInvalidBadgeCategory = errors.New("invalid badge category")
	ErrInvalidChallengeType = errors.New("invalid challenge type")
	ErrInvalidTarget        = errors.New("challenge target must be positive")
	ErrInvalidWindow        = errors.New("end date must be after start date")
)

// ValidationError reports malformed input for a single field. It never
// accompanies a state change.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	msg := e.Err.Error()
	// Sentinels such as ErrInvalidAmount already name the field.
	if strings.HasPrefix(msg, "invalid "+e.Field) {
		return msg
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, msg)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// CorruptStateError reports persisted payloads that were discarded on load.
type CorruptStateError struct {
	Keys []string
	Err  error
}

func (e *CorruptStateError) Error() string {
	return fmt.Sprintf("corrupt state in %s (discarded): %v", strings.Join(e.Keys, ", "), e.Err)
}

func (e *CorruptStateError) Unwrap() error {
	return e.Err
}

// PersistenceError reports a failed store write. The in-memory mutation that
// triggered the write has already been applied and is kept.
type PersistenceError struct {
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsPersistence reports whether err carries a PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
