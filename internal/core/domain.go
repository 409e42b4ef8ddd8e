package core

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	Food          ExpenseCategory = "food"
	Transport     ExpenseCategory = "transport"
	Entertainment ExpenseCategory = "entertainment"
	Shopping      ExpenseCategory = "shopping"
	Bills         ExpenseCategory = "bills"
	Health        ExpenseCategory = "health"
	Education     ExpenseCategory = "education"
	Other         ExpenseCategory = "other"
)

const (
	BadgeStreak      BadgeCategory = "streak"
	BadgeSavings     BadgeCategory = "savings"
	BadgeConsistency BadgeCategory = "consistency"
	BadgeMilestone   BadgeCategory = "milestone"
	BadgeChallenge   BadgeCategory = "challenge"
)

// MaxDescriptionLength is counted in characters, not bytes.
const MaxDescriptionLength = 100

type (
	ExpenseCategory string
	BadgeCategory   string

	Profile struct {
		ID            string          `json:"id"`
		Name          string          `json:"name"`
		Email         string          `json:"email"`
		MonthlyIncome decimal.Decimal `json:"monthlyIncome"`
		MonthlyBudget decimal.Decimal `json:"monthlyBudget"`
		Points        int             `json:"points"`
		Level         int             `json:"level"`
		Badges        []Badge         `json:"badges"`
		SavingsGoals  []SavingsGoal   `json:"savingsGoals"`
		CreatedAt     time.Time       `json:"createdAt"`
	}

	Expense struct {
		ID          string          `json:"id"`
		Amount      decimal.Decimal `json:"amount"`
		Category    ExpenseCategory `json:"category"`
		Description string          `json:"description"`
		Date        time.Time       `json:"date"`
		IsRecurring bool            `json:"isRecurring,omitempty"`
	}

	SavingsGoal struct {
		ID            string          `json:"id"`
		Title         string          `json:"title"`
		TargetAmount  decimal.Decimal `json:"targetAmount"`
		CurrentAmount decimal.Decimal `json:"currentAmount"`
		TargetDate    time.Time       `json:"targetDate"`
		IsCompleted   bool            `json:"isCompleted"`
		CreatedAt     time.Time       `json:"createdAt"`
	}

	Badge struct {
		ID          string        `json:"id"`
		Name        string        `json:"name"`
		Description string        `json:"description"`
		Icon        string        `json:"icon"`
		EarnedAt    time.Time     `json:"earnedAt"`
		Category    BadgeCategory `json:"category"`
	}
)

// AllExpenseCategories returns the closed set of expense categories in display order.
func AllExpenseCategories() []ExpenseCategory {
	return []ExpenseCategory{Food, Transport, Entertainment, Shopping, Bills, Health, Education, Other}
}

func (c ExpenseCategory) IsValid() bool {
	switch c {
	case Food, Transport, Entertainment, Shopping, Bills, Health, Education, Other:
		return true
	default:
		return false
	}
}

func (c ExpenseCategory) String() string {
	return string(c)
}

// ParseExpenseCategory rejects anything outside the enumerated set.
func ParseExpenseCategory(s string) (ExpenseCategory, error) {
	c := ExpenseCategory(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", &ValidationError{Field: "category", Err: ErrInvalidCategory}
	}
	return c, nil
}

func (c BadgeCategory) IsValid() bool {
	switch c {
	case BadgeStreak, BadgeSavings, BadgeConsistency, BadgeMilestone, BadgeChallenge:
		return true
	default:
		return false
	}
}

// NewProfile builds a profile from onboarding input. Nothing is returned
// unless every field passes validation.
func NewProfile(name, email string, monthlyIncome, monthlyBudget decimal.Decimal, now time.Time) (Profile, error) {
	p := Profile{
		ID:            newID(),
		Name:          strings.TrimSpace(name),
		Email:         strings.TrimSpace(email),
		MonthlyIncome: monthlyIncome,
		MonthlyBudget: monthlyBudget,
		Points:        0,
		Level:         1,
		Badges:        []Badge{},
		SavingsGoals:  []SavingsGoal{},
		CreatedAt:     now,
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// ValidateFinancials checks the income/budget pair on its own so updates can
// reuse it before touching a profile.
func ValidateFinancials(monthlyIncome, monthlyBudget decimal.Decimal) error {
	if !monthlyIncome.IsPositive() {
		return &ValidationError{Field: "monthlyIncome", Err: ErrInvalidIncome}
	}
	if !monthlyBudget.IsPositive() {
		return &ValidationError{Field: "monthlyBudget", Err: ErrInvalidBudget}
	}
	if monthlyBudget.GreaterThan(monthlyIncome) {
		return &ValidationError{Field: "monthlyBudget", Err: ErrBudgetExceedsIncome}
	}
	return nil
}

func (p Profile) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return &ValidationError{Field: "id", Err: ErrEmptyID}
	}
	if strings.TrimSpace(p.Name) == "" {
		return &ValidationError{Field: "name", Err: ErrEmptyName}
	}
	if strings.TrimSpace(p.Email) == "" {
		return &ValidationError{Field: "email", Err: ErrEmptyEmail}
	}
	if err := ValidateFinancials(p.MonthlyIncome, p.MonthlyBudget); err != nil {
		return err
	}
	if p.Points < 0 {
		return &ValidationError{Field: "points", Err: ErrNegativePoints}
	}
	if p.Level < 1 {
		return &ValidationError{Field: "level", Err: ErrInvalidLevel}
	}
	if p.CreatedAt.IsZero() {
		return &ValidationError{Field: "createdAt", Err: ErrZeroDate}
	}
	seen := make(map[string]struct{}, len(p.Badges))
	for _, b := range p.Badges {
		if err := b.Validate(); err != nil {
			return err
		}
		if _, dup := seen[b.ID]; dup {
			return &ValidationError{Field: "badges", Err: ErrDuplicateBadge}
		}
		seen[b.ID] = struct{}{}
	}
	for _, g := range p.SavingsGoals {
		if err := g.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// HasBadge reports whether a badge with the given id was already earned.
func (p Profile) HasBadge(id string) bool {
	for _, b := range p.Badges {
		if b.ID == id {
			return true
		}
	}
	return false
}

// SavingsRate is the share of income not allotted to the monthly budget, in percent.
func (p Profile) SavingsRate() float64 {
	if !p.MonthlyIncome.IsPositive() {
		return 0
	}
	rate, _ := p.MonthlyIncome.Sub(p.MonthlyBudget).Div(p.MonthlyIncome).Mul(decimal.NewFromInt(100)).Float64()
	return rate
}

// newID returns a time-ordered UUIDv7, so ids sort by creation.
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// NewExpense validates raw input and stamps the entry with a fresh id and
// the creation instant.
func NewExpense(amount decimal.Decimal, category ExpenseCategory, description string, now time.Time) (Expense, error) {
	e := Expense{
		ID:          newID(),
		Amount:      amount,
		Category:    category,
		Description: strings.TrimSpace(description),
		Date:        now,
	}
	if err := e.Validate(); err != nil {
		return Expense{}, err
	}
	return e, nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return &ValidationError{Field: "id", Err: ErrEmptyID}
	}
	if !e.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	if !e.Category.IsValid() {
		return &ValidationError{Field: "category", Err: ErrInvalidCategory}
	}
	desc := strings.TrimSpace(e.Description)
	if desc == "" {
		return &ValidationError{Field: "description", Err: ErrEmptyDescription}
	}
	if utf8.RuneCountInString(desc) > MaxDescriptionLength {
		return &ValidationError{Field: "description", Err: ErrDescriptionTooLong}
	}
	if e.Date.IsZero() {
		return &ValidationError{Field: "date", Err: ErrZeroDate}
	}
	return nil
}

// NewSavingsGoal starts a goal with nothing saved yet.
func NewSavingsGoal(title string, target decimal.Decimal, targetDate, now time.Time) (SavingsGoal, error) {
	g := SavingsGoal{
		ID:            newID(),
		Title:         strings.TrimSpace(title),
		TargetAmount:  target,
		CurrentAmount: decimal.Zero,
		TargetDate:    targetDate,
		CreatedAt:     now,
	}
	if err := g.Validate(); err != nil {
		return SavingsGoal{}, err
	}
	return g, nil
}

func (g SavingsGoal) Validate() error {
	if strings.TrimSpace(g.ID) == "" {
		return &ValidationError{Field: "savingsGoal.id", Err: ErrEmptyID}
	}
	if strings.TrimSpace(g.Title) == "" {
		return &ValidationError{Field: "savingsGoal.title", Err: ErrEmptyTitle}
	}
	if !g.TargetAmount.IsPositive() {
		return &ValidationError{Field: "savingsGoal.targetAmount", Err: ErrInvalidAmount}
	}
	if g.CurrentAmount.IsNegative() {
		return &ValidationError{Field: "savingsGoal.currentAmount", Err: ErrInvalidAmount}
	}
	if g.TargetDate.IsZero() {
		return &ValidationError{Field: "savingsGoal.targetDate", Err: ErrZeroDate}
	}
	return nil
}

// Reached is the derived completion state; IsCompleted mirrors it on write.
func (g SavingsGoal) Reached() bool {
	return g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount)
}

func (b Badge) Validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return &ValidationError{Field: "badge.id", Err: ErrEmptyID}
	}
	if !b.Category.IsValid() {
		return &ValidationError{Field: "badge.category", Err: ErrInvalidBadgeCategory}
	}
	return nil
}
