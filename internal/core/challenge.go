package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DailyBudget    ChallengeType = "daily_budget"
	WeeklySavings  ChallengeType = "weekly_savings"
	ExpenseLogging ChallengeType = "expense_logging"
	CategoryLimit  ChallengeType = "category_limit"
	NoSpendDay     ChallengeType = "no_spend_day"
)

const (
	ChallengeActive    ChallengeStatus = "active"
	ChallengeCompleted ChallengeStatus = "completed"
	ChallengeExpired   ChallengeStatus = "expired"
)

type (
	ChallengeType   string
	ChallengeStatus string

	// ChallengeDefinition is a catalog entry; joining one creates a Challenge.
	ChallengeDefinition struct {
		ID           string
		Title        string
		Description  string
		Type         ChallengeType
		Target       decimal.Decimal
		PointsReward int
		Category     ExpenseCategory // category_limit only
		Duration     time.Duration
	}

	Challenge struct {
		ID              string          `json:"id"`
		DefinitionID    string          `json:"definitionId"`
		Title           string          `json:"title"`
		Description     string          `json:"description"`
		Type            ChallengeType   `json:"type"`
		Category        ExpenseCategory `json:"category,omitempty"`
		Target          decimal.Decimal `json:"target"`
		CurrentProgress decimal.Decimal `json:"currentProgress"`
		PointsReward    int             `json:"pointsReward"`
		StartDate       time.Time       `json:"startDate"`
		EndDate         time.Time       `json:"endDate"`
		IsCompleted     bool            `json:"isCompleted"`
		IsActive        bool            `json:"isActive"`
		CompletedAt     *time.Time      `json:"completedAt,omitempty"`
	}
)

func (t ChallengeType) IsValid() bool {
	switch t {
	case DailyBudget, WeeklySavings, ExpenseLogging, CategoryLimit, NoSpendDay:
		return true
	default:
		return false
	}
}

// CountsUp is true for types that complete when progress reaches the target.
// category_limit is a cap and completes only if the window ends under it.
func (t ChallengeType) CountsUp() bool {
	return t != CategoryLimit
}

func (d ChallengeDefinition) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return &ValidationError{Field: "challenge.id", Err: ErrEmptyID}
	}
	if strings.TrimSpace(d.Title) == "" {
		return &ValidationError{Field: "challenge.title", Err: ErrEmptyTitle}
	}
	if !d.Type.IsValid() {
		return &ValidationError{Field: "challenge.type", Err: ErrInvalidChallengeType}
	}
	if !d.Target.IsPositive() {
		return &ValidationError{Field: "challenge.target", Err: ErrInvalidTarget}
	}
	if d.PointsReward < 0 {
		return &ValidationError{Field: "challenge.pointsReward", Err: ErrNegativePoints}
	}
	if d.Type == CategoryLimit && !d.Category.IsValid() {
		return &ValidationError{Field: "challenge.category", Err: ErrInvalidCategory}
	}
	if d.Duration <= 0 {
		return &ValidationError{Field: "challenge.duration", Err: ErrInvalidWindow}
	}
	return nil
}

// Start instantiates the definition with a window beginning at now.
func (d ChallengeDefinition) Start(now time.Time) Challenge {
	return Challenge{
		ID:              newID(),
		DefinitionID:    d.ID,
		Title:           d.Title,
		Description:     d.Description,
		Type:            d.Type,
		Category:        d.Category,
		Target:          d.Target,
		CurrentProgress: decimal.Zero,
		PointsReward:    d.PointsReward,
		StartDate:       now,
		EndDate:         now.Add(d.Duration),
		IsActive:        true,
	}
}

func (c Challenge) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return &ValidationError{Field: "challenge.id", Err: ErrEmptyID}
	}
	if !c.Type.IsValid() {
		return &ValidationError{Field: "challenge.type", Err: ErrInvalidChallengeType}
	}
	if !c.Target.IsPositive() {
		return &ValidationError{Field: "challenge.target", Err: ErrInvalidTarget}
	}
	if c.Type == CategoryLimit && !c.Category.IsValid() {
		return &ValidationError{Field: "challenge.category", Err: ErrInvalidCategory}
	}
	if c.StartDate.IsZero() || c.EndDate.IsZero() {
		return &ValidationError{Field: "challenge.window", Err: ErrZeroDate}
	}
	if !c.EndDate.After(c.StartDate) {
		return &ValidationError{Field: "challenge.window", Err: ErrInvalidWindow}
	}
	return nil
}

// IsExpired is true once the window has closed without completion.
func (c Challenge) IsExpired(now time.Time) bool {
	return !c.IsCompleted && now.After(c.EndDate)
}

func (c Challenge) Status(now time.Time) ChallengeStatus {
	switch {
	case c.IsCompleted:
		return ChallengeCompleted
	case !c.IsActive || c.IsExpired(now):
		return ChallengeExpired
	default:
		return ChallengeActive
	}
}
