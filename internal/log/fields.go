package log

import "github.com/shopspring/decimal"

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldProfileID   = "profile_id"
	FieldExpenseID   = "expense_id"
	FieldAmount      = "amount"
	FieldCategory    = "category"
	FieldPoints      = "points"
	FieldLevel       = "level"
	FieldChallengeID = "challenge_id"
	FieldBadgeID     = "badge_id"
	FieldGoalID      = "goal_id"
	FieldStoreKey    = "store_key"
	FieldBackend     = "backend"
)

// Components defines standard component names
const (
	ComponentApp          = "app"
	ComponentSession      = "session"
	ComponentStorage      = "storage"
	ComponentCache        = "cache"
	ComponentGamification = "gamification"
	ComponentAMQP         = "amqp"
	ComponentBackend      = "backend"
	ComponentConfig       = "config"
	ComponentCLI          = "cli"
)

// Operations defines standard operation names
const (
	OpLoad       = "load"
	OpCreate     = "create"
	OpAppend     = "append"
	OpUpdate     = "update"
	OpRefresh    = "refresh"
	OpJoin       = "join"
	OpContribute = "contribute"
	OpReset      = "reset"
	OpPersist    = "persist"
	OpRender     = "render"
	OpShutdown   = "shutdown"
	OpStartup    = "startup"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeCorruptState  = "corrupt_state_error"
	ErrorTypePersistence   = "persistence_error"
	ErrorTypeNotFound      = "not_found_error"
	ErrorTypeConflict      = "conflict_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithExpense adds expense-related fields
func (f LogFields) WithExpense(id string, amount decimal.Decimal, category string) LogFields {
	f[FieldExpenseID] = id
	f[FieldAmount] = amount.String()
	f[FieldCategory] = category
	return f
}

// WithScore adds the profile's points and level.
func (f LogFields) WithScore(points, level int) LogFields {
	f[FieldPoints] = points
	f[FieldLevel] = level
	return f
}

func (f LogFields) WithChallenge(id string) LogFields {
	f[FieldChallengeID] = id
	return f
}

func (f LogFields) WithBadge(id string) LogFields {
	f[FieldBadgeID] = id
	return f
}

func (f LogFields) WithStoreKey(key string) LogFields {
	f[FieldStoreKey] = key
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
