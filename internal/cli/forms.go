package cli

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/shopspring/decimal"

	"spendwise/internal/core"
)

// ErrAborted is returned when the user cancels a form.
var ErrAborted = errors.New("aborted")

// OnboardInput is the raw onboarding answers.
type OnboardInput struct {
	Name          string
	Email         string
	MonthlyIncome string
	MonthlyBudget string
}

// Parse converts the answers into amounts. Field rules are left to the
// domain model.
func (in OnboardInput) Parse() (income, monthlyBudget decimal.Decimal, err error) {
	if income, err = core.ParseAmount(in.MonthlyIncome); err != nil {
		return decimal.Zero, decimal.Zero, &core.ValidationError{Field: "monthlyIncome", Err: core.ErrInvalidIncome}
	}
	if monthlyBudget, err = core.ParseAmount(in.MonthlyBudget); err != nil {
		return decimal.Zero, decimal.Zero, &core.ValidationError{Field: "monthlyBudget", Err: core.ErrInvalidBudget}
	}
	return income, monthlyBudget, nil
}

// ExpenseInput is the raw answers of the expense form.
type ExpenseInput struct {
	Amount      string
	Category    string
	Description string
}

// Parse converts the answers into an amount and a category.
func (in ExpenseInput) Parse() (decimal.Decimal, core.ExpenseCategory, error) {
	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return decimal.Zero, "", &core.ValidationError{Field: "amount", Err: err}
	}
	category, err := core.ParseExpenseCategory(in.Category)
	if err != nil {
		return decimal.Zero, "", err
	}
	return amount, category, nil
}

// GoalInput is the raw answers of the savings goal form.
type GoalInput struct {
	Title      string
	Target     string
	TargetDate string
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(field + " is required")
		}
		return nil
	}
}

func amount(s string) error {
	_, err := core.ParseAmount(s)
	return err
}

func run(form *huh.Form) error {
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrAborted
		}
		return err
	}
	return nil
}

// OnboardForm asks for the profile fields, starting from in.
func OnboardForm(in OnboardInput) (OnboardInput, error) {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to SpendWise").
				Description("Set up your monthly budget to start earning points."),
			huh.NewInput().Title("Name").Value(&in.Name).Validate(required("name")),
			huh.NewInput().Title("Email").Value(&in.Email).Validate(required("email")),
			huh.NewInput().Title("Monthly income").Value(&in.MonthlyIncome).Validate(amount),
			huh.NewInput().Title("Monthly budget").Value(&in.MonthlyBudget).Validate(amount),
		),
	)
	return in, run(form)
}

// ExpenseForm asks for one expense, starting from in.
func ExpenseForm(in ExpenseInput) (ExpenseInput, error) {
	if in.Category == "" {
		in.Category = string(core.Food)
	}
	options := make([]huh.Option[string], 0, len(core.AllExpenseCategories()))
	for _, c := range core.AllExpenseCategories() {
		options = append(options, huh.NewOption(c.String(), string(c)))
	}
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Amount").Value(&in.Amount).Validate(amount),
			huh.NewSelect[string]().Title("Category").Options(options...).Value(&in.Category),
			huh.NewInput().
				Title("Description").
				CharLimit(core.MaxDescriptionLength).
				Value(&in.Description).
				Validate(required("description")),
		),
	)
	return in, run(form)
}

// GoalForm asks for a savings goal, starting from in.
func GoalForm(in GoalInput) (GoalInput, error) {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Goal").Value(&in.Title).Validate(required("title")),
			huh.NewInput().Title("Target amount").Value(&in.Target).Validate(amount),
			huh.NewInput().
				Title("Target date").
				Placeholder("2006-01-02").
				Value(&in.TargetDate).
				Validate(func(s string) error {
					_, err := ParseDate(s, time.Local)
					return err
				}),
		),
	)
	return in, run(form)
}

// ConfirmForm asks a yes/no question.
func ConfirmForm(title string) (bool, error) {
	var ok bool
	form := huh.NewForm(huh.NewGroup(huh.NewConfirm().Title(title).Value(&ok)))
	if err := run(form); err != nil {
		return false, err
	}
	return ok, nil
}

// ParseDate parses YYYY-MM-DD as the end of that day in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, errors.New("date must be YYYY-MM-DD")
	}
	return d.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
}
