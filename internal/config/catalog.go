package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"

	"spendwise/internal/core"
)

// catalogFile is the TOML layout of a challenge catalog:
//
//	[[challenge]]
//	id = "food_budget"
//	title = "Food Budget Challenge"
//	type = "category_limit"
//	target = 70000
//	points_reward = 40
//	category = "food"
//	duration_days = 7
type catalogFile struct {
	Challenges []challengeEntry `toml:"challenge"`
}

type challengeEntry struct {
	ID           string `toml:"id"`
	Title        string `toml:"title"`
	Description  string `toml:"description"`
	Type         string `toml:"type"`
	Target       any    `toml:"target"` // integer, float or decimal string
	PointsReward int    `toml:"points_reward"`
	Category     string `toml:"category,omitempty"`
	DurationDays int    `toml:"duration_days"`
}

const day = 24 * time.Hour

// DefaultChallengeCatalog is the built-in set of joinable challenges.
func DefaultChallengeCatalog() []core.ChallengeDefinition {
	return []core.ChallengeDefinition{
		{
			ID:           "budget_streak",
			Title:        "Budget Streak",
			Description:  "Stay under your daily budget for 7 days in a row",
			Type:         core.DailyBudget,
			Target:       decimal.NewFromInt(7),
			PointsReward: 50,
			Duration:     7 * day,
		},
		{
			ID:           "expense_logger",
			Title:        "Expense Logger",
			Description:  "Log at least one expense every day for a week",
			Type:         core.ExpenseLogging,
			Target:       decimal.NewFromInt(7),
			PointsReward: 30,
			Duration:     7 * day,
		},
		{
			ID:           "food_budget",
			Title:        "Food Budget Challenge",
			Description:  "Spend less than UGX 70,000 on food this week",
			Type:         core.CategoryLimit,
			Target:       decimal.NewFromInt(70000),
			PointsReward: 40,
			Category:     core.Food,
			Duration:     7 * day,
		},
		{
			ID:           "no_spend_day",
			Title:        "No Spend Day",
			Description:  "Have a complete no-spend day",
			Type:         core.NoSpendDay,
			Target:       decimal.NewFromInt(1),
			PointsReward: 25,
			Duration:     1 * day,
		},
	}
}

// LoadChallengeCatalog reads a TOML catalog. An empty path returns the
// built-in catalog. Every entry must validate and ids must be unique.
func LoadChallengeCatalog(path string) ([]core.ChallengeDefinition, error) {
	if path == "" {
		return DefaultChallengeCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading challenge catalog: %w", err)
	}
	return ParseChallengeCatalog(data)
}

func ParseChallengeCatalog(data []byte) ([]core.ChallengeDefinition, error) {
	var f catalogFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing challenge catalog: %w", err)
	}
	if len(f.Challenges) == 0 {
		return nil, fmt.Errorf("challenge catalog is empty")
	}

	defs := make([]core.ChallengeDefinition, 0, len(f.Challenges))
	seen := make(map[string]struct{}, len(f.Challenges))
	for i, e := range f.Challenges {
		def, err := e.definition()
		if err != nil {
			return nil, fmt.Errorf("challenge %d (%s): %w", i+1, e.ID, err)
		}
		if _, dup := seen[def.ID]; dup {
			return nil, fmt.Errorf("challenge %d: duplicate id %q", i+1, def.ID)
		}
		seen[def.ID] = struct{}{}
		defs = append(defs, def)
	}
	return defs, nil
}

func (e challengeEntry) definition() (core.ChallengeDefinition, error) {
	target, err := decimal.NewFromString(fmt.Sprint(e.Target))
	if e.Target == nil || err != nil {
		return core.ChallengeDefinition{}, &core.ValidationError{Field: "challenge.target", Err: core.ErrInvalidTarget}
	}
	def := core.ChallengeDefinition{
		ID:           e.ID,
		Title:        e.Title,
		Description:  e.Description,
		Type:         core.ChallengeType(e.Type),
		Target:       target,
		PointsReward: e.PointsReward,
		Duration:     time.Duration(e.DurationDays) * day,
	}
	if e.Category != "" {
		c, err := core.ParseExpenseCategory(e.Category)
		if err != nil {
			return core.ChallengeDefinition{}, err
		}
		def.Category = c
	}
	return def, def.Validate()
}
