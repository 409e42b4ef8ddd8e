package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"spendwise/internal/budget"
	"spendwise/internal/cli"
	"spendwise/internal/core"
	"spendwise/internal/kv"
	"spendwise/internal/kv/memory"
	"spendwise/internal/notify"
	"spendwise/internal/session"
)

var (
	flagDemoDays    int
	flagDemoSeed    int64
	flagDemoPersist bool
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Generate a sample profile with a few weeks of expenses",
	Long: "Builds a fake profile, joins two challenges and logs random expenses over the last days, " +
		"then shows the resulting dashboard. Nothing is saved unless --persist is given.",
	RunE: runDemo,
}

func init() {
	demoCmd.Flags().IntVar(&flagDemoDays, "days", 14, "Days of history to generate")
	demoCmd.Flags().Int64Var(&flagDemoSeed, "seed", 0, "Random seed (0 picks one)")
	demoCmd.Flags().BoolVar(&flagDemoPersist, "persist", false, "Write the sample data to the configured store")
	rootCmd.AddCommand(demoCmd)
}

var demoDescriptions = map[core.ExpenseCategory][]string{
	core.Food:          {"Lunch", "Groceries", "Rolex at the stage", "Coffee", "Dinner out", "Fruit market"},
	core.Transport:     {"Boda boda", "Taxi fare", "Fuel", "Bus ticket"},
	core.Entertainment: {"Cinema", "Football match", "Streaming subscription", "Concert"},
	core.Shopping:      {"Shoes", "Phone case", "Kitchen supplies", "Shirt"},
	core.Bills:         {"Electricity", "Water bill", "Internet bundle", "Airtime"},
	core.Health:        {"Pharmacy", "Clinic visit", "Gym"},
	core.Education:     {"Books", "Online course", "School fees"},
	core.Other:         {"Gift", "Donation", "Haircut"},
}

// demoClock lets the seeder stamp expenses in the past.
type demoClock struct{ t time.Time }

func (c *demoClock) Now() time.Time { return c.t }

func runDemo(cmd *cobra.Command, _ []string) error {
	a := current
	ctx := cmd.Context()

	var store kv.Store = memory.New()
	if flagDemoPersist {
		if a.ctrl.HasProfile() {
			return fmt.Errorf("a profile already exists, run `spendwise reset --yes` before seeding")
		}
		store = a.backend.Store
	}

	seed := flagDemoSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	now := time.Now()
	clock := &demoClock{t: now}
	recorder := &notify.Recorder{}
	ctrl := session.New(store,
		session.WithClock(clock.Now),
		session.WithLogger(a.logger),
		session.WithNotifier(recorder),
		session.WithCatalog(a.ctrl.Catalog()))

	if err := seedDemo(ctx, ctrl, clock, gofakeit.New(seed), flagDemoDays, now); err != nil {
		return saveFailed(cmd, err)
	}

	d, err := ctrl.DashboardView(now)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprint(out, cli.RenderDashboard(d, a.cfg.Currency))
	fmt.Fprintln(out)
	fmt.Fprint(out, cli.RenderChallenges(ctrl.ChallengeViews(now), ctrl.Catalog(), now))
	fmt.Fprintf(out, "\n  %d expenses generated with seed %d, %d achievements unlocked.\n",
		len(ctrl.Expenses()), seed, len(recorder.Events()))
	return nil
}

// seedDemo onboards a fake user days before now, joins the first two
// catalog challenges and logs up to three expenses per day until now.
func seedDemo(ctx context.Context, ctrl *session.Controller, clock *demoClock, f *gofakeit.Faker, days int, now time.Time) error {
	if days < 1 {
		days = 1
	}
	start := now.AddDate(0, 0, -days)
	clock.t = start

	income := decimal.NewFromInt(int64(f.IntRange(1000, 5000)) * 1000)
	share := decimal.NewFromInt(int64(f.IntRange(60, 85))).Div(decimal.NewFromInt(100))
	monthlyBudget := income.Mul(share).Round(-3)
	if _, err := ctrl.CreateProfile(ctx, f.Name(), f.Email(), income, monthlyBudget); err != nil {
		return err
	}

	for i, def := range ctrl.Catalog() {
		if i == 2 {
			break
		}
		if _, err := ctrl.JoinChallenge(ctx, def.ID); err != nil {
			return err
		}
	}

	daily, _ := budget.DailyBudget(monthlyBudget).Float64()
	categories := core.AllExpenseCategories()
	for day := 0; day <= days; day++ {
		date := start.AddDate(0, 0, day)
		hours := make([]int, f.IntRange(0, 3))
		for j := range hours {
			hours[j] = f.IntRange(7, 21)
		}
		sort.Ints(hours)

		for _, h := range hours {
			at := time.Date(date.Year(), date.Month(), date.Day(), h, f.IntRange(0, 59), 0, 0, now.Location())
			if at.After(now) {
				at = now
			}
			if at.Before(start) {
				at = start
			}
			clock.t = at

			category := categories[f.IntRange(0, len(categories)-1)]
			amount, err := core.AmountFromFloat(f.Price(daily*0.05, daily*0.6))
			amount = amount.Round(-2)
			if err != nil || !amount.IsPositive() {
				amount = decimal.NewFromInt(100)
			}
			desc := f.RandomString(demoDescriptions[category])
			if _, err := ctrl.AppendExpense(ctx, amount, category, desc); err != nil {
				return err
			}
		}
	}

	clock.t = now
	_, err := ctrl.Refresh(ctx, now)
	return err
}
