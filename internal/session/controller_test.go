package session

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/budget"
	"spendwise/internal/core"
	"spendwise/internal/gamification"
	"spendwise/internal/kv/memory"
	"spendwise/internal/notify"
	"spendwise/internal/state"
)

var kampala = time.FixedZone("EAT", 3*60*60)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func (c *clock) set(day, hour int) { c.t = time.Date(2025, 3, day, hour, 0, 0, 0, kampala) }

// flakyStore fails writes to failKeys and reads of failReads.
type flakyStore struct {
	*memory.Store
	failKeys  map[string]bool
	failReads map[string]bool
}

func (f *flakyStore) Get(ctx context.Context, key string) ([]byte, error) {
	if f.failReads[key] {
		return nil, errors.New("i/o error")
	}
	return f.Store.Get(ctx, key)
}

func (f *flakyStore) Set(ctx context.Context, key string, value []byte) error {
	if f.failKeys[key] {
		return errors.New("disk full")
	}
	return f.Store.Set(ctx, key, value)
}

var testCatalog = []core.ChallengeDefinition{
	{ID: "food_budget", Title: "Food Budget Challenge", Type: core.CategoryLimit, Target: d("70000"),
		PointsReward: 40, Category: core.Food, Duration: 7 * 24 * time.Hour},
	{ID: "logger", Title: "Expense Logger", Type: core.ExpenseLogging, Target: d("2"),
		PointsReward: 30, Duration: 7 * 24 * time.Hour},
}

func newController(t *testing.T, store *memory.Store, clk *clock, opts ...Option) *Controller {
	t.Helper()
	opts = append([]Option{WithClock(clk.now), WithCatalog(testCatalog)}, opts...)
	c := New(store, opts...)
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return c
}

func onboard(t *testing.T, c *Controller) core.Profile {
	t.Helper()
	p, err := c.CreateProfile(context.Background(), "Amina", "amina@example.com", d("2000000"), d("1500000"))
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return p
}

func TestOnboardingPersistsAcrossSessions(t *testing.T) {
	store := memory.New()
	clk := &clock{}
	clk.set(14, 9)

	c := newController(t, store, clk)
	if c.HasProfile() {
		t.Fatalf("fresh store must have no profile")
	}
	if _, err := c.Profile(); !errors.Is(err, ErrNoProfile) {
		t.Fatalf("expected ErrNoProfile, got %v", err)
	}
	p := onboard(t, c)

	if _, err := c.CreateProfile(context.Background(), "B", "b@c", d("2"), d("1")); !errors.Is(err, ErrProfileExists) {
		t.Fatalf("expected ErrProfileExists, got %v", err)
	}

	again := newController(t, store, clk)
	got, err := again.Profile()
	if err != nil {
		t.Fatalf("reloaded profile: %v", err)
	}
	if got.ID != p.ID || !got.MonthlyBudget.Equal(d("1500000")) || got.Level != 1 {
		t.Fatalf("reloaded profile mismatch: %+v", got)
	}
}

func TestCreateProfileValidation(t *testing.T) {
	store := memory.New()
	clk := &clock{}
	clk.set(14, 9)
	c := newController(t, store, clk)

	_, err := c.CreateProfile(context.Background(), "Amina", "a@b.c", d("100"), d("200"))
	if !errors.Is(err, core.ErrBudgetExceedsIncome) || !core.IsValidation(err) {
		t.Fatalf("expected budget validation error, got %v", err)
	}
	if c.HasProfile() || len(store.Keys()) != 0 {
		t.Fatalf("failed validation must not change state")
	}
}

func TestLunchScenario(t *testing.T) {
	clk := &clock{}
	clk.set(14, 12)
	// Bonus already taken today, so only the logging point applies.
	store := memory.New()
	c := newController(t, store, clk)
	onboard(t, c)
	if err := store.Set(context.Background(), state.KeyBonusMarker, []byte("2025-03-14")); err != nil {
		t.Fatal(err)
	}
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	before, _ := c.Profile()

	if _, err := c.AppendExpense(context.Background(), d("15000"), core.Food, "Lunch"); err != nil {
		t.Fatalf("append: %v", err)
	}
	after, _ := c.Profile()
	if after.Points != before.Points+1 {
		t.Fatalf("expected points %d, got %d", before.Points+1, after.Points)
	}

	dash, err := c.DashboardView(clk.now())
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if !dash.TotalSpentThisMonth.Equal(d("15000")) {
		t.Fatalf("total = %s", dash.TotalSpentThisMonth)
	}
	if !dash.Remaining.Equal(d("1485000")) {
		t.Fatalf("remaining = %s", dash.Remaining)
	}
	if math.Abs(dash.PercentageUsed-1.0) > 1e-9 {
		t.Fatalf("percentage = %v", dash.PercentageUsed)
	}
	if dash.StatusBand != budget.OnTrack || !dash.IsUnderDailyBudget || !dash.TodaySpent.Equal(d("15000")) {
		t.Fatalf("unexpected dashboard %+v", dash)
	}
	if len(dash.TopCategories) != 1 || dash.TopCategories[0].Category != core.Food {
		t.Fatalf("top categories = %v", dash.TopCategories)
	}
}

func TestDailyBonusAwardedOncePerDay(t *testing.T) {
	store := memory.New()
	clk := &clock{}
	clk.set(14, 8)
	rec := &notify.Recorder{}
	c := newController(t, store, clk, WithNotifier(rec))
	onboard(t, c)
	ctx := context.Background()

	clk.set(14, 9)
	if _, err := c.AppendExpense(ctx, d("10000"), core.Food, "Breakfast"); err != nil {
		t.Fatal(err)
	}
	clk.set(14, 13)
	if _, err := c.AppendExpense(ctx, d("15000"), core.Transport, "Boda"); err != nil {
		t.Fatal(err)
	}

	dash, _ := c.DashboardView(clk.now())
	if !dash.IsUnderDailyBudget {
		t.Fatalf("25,000 is under the 50,000 daily budget")
	}

	clk.set(14, 20)
	if _, err := c.AppendExpense(ctx, d("1000"), core.Other, "Airtime"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Refresh(ctx, clk.now()); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Refresh(ctx, clk.now()); err != nil {
		t.Fatal(err)
	}

	p, _ := c.Profile()
	if want := 3*gamification.ExpenseLoggedPoints + gamification.DailyBonusPoints; p.Points != want {
		t.Fatalf("expected %d points, got %d", want, p.Points)
	}
	bonuses := 0
	for _, e := range rec.Events() {
		if e.Kind == notify.KindDailyBonus {
			bonuses++
		}
	}
	if bonuses != 1 {
		t.Fatalf("expected exactly one bonus event, got %d", bonuses)
	}
	if c.LastBonusDay() != "2025-03-14" {
		t.Fatalf("marker = %q", c.LastBonusDay())
	}

	// The marker survives a restart, so a reload on the same day cannot re-award.
	again := newController(t, store, clk)
	if _, err := again.Refresh(ctx, clk.now()); err != nil {
		t.Fatal(err)
	}
	if p2, _ := again.Profile(); p2.Points != p.Points {
		t.Fatalf("reload re-awarded the bonus: %d vs %d", p2.Points, p.Points)
	}
}

func TestCorruptProfileFallsBackToOnboarding(t *testing.T) {
	store := memory.NewSeeded(map[string][]byte{
		state.KeyProfile: []byte("\x00\x01 not json"),
		state.KeyLedger:  []byte("[]"),
	})
	clk := &clock{}
	clk.set(14, 9)
	c := New(store, WithClock(clk.now))

	err := c.Load(context.Background())
	var cse *core.CorruptStateError
	if !errors.As(err, &cse) {
		t.Fatalf("expected CorruptStateError, got %v", err)
	}
	if c.HasProfile() || len(c.Expenses()) != 0 {
		t.Fatalf("corrupt load must leave an empty state")
	}
	if keys := store.Keys(); len(keys) != 0 {
		t.Fatalf("corrupt keys should be discarded, still have %v", keys)
	}

	if _, err := c.CreateProfile(context.Background(), "Amina", "amina@example.com", d("2000000"), d("1500000")); err != nil {
		t.Fatalf("create after corrupt load: %v", err)
	}
}

func TestCorruptLedgerDiscardsProfileToo(t *testing.T) {
	store := memory.New()
	clk := &clock{}
	clk.set(14, 9)
	c := newController(t, store, clk)
	onboard(t, c)
	_ = store.Set(context.Background(), state.KeyLedger, []byte(`[{"id":"x"}]`))

	err := New(store, WithClock(clk.now)).Load(context.Background())
	var cse *core.CorruptStateError
	if !errors.As(err, &cse) || len(cse.Keys) != 2 {
		t.Fatalf("expected both keys discarded, got %v", err)
	}
	if _, err := store.Get(context.Background(), state.KeyProfile); err == nil {
		t.Fatalf("profile should have been discarded with the ledger")
	}
}

func TestCorruptChallengesKeepProfile(t *testing.T) {
	store := memory.New()
	clk := &clock{}
	clk.set(14, 9)
	c := newController(t, store, clk)
	onboard(t, c)
	_ = store.Set(context.Background(), state.KeyChallenges, []byte(`{`))

	again := New(store, WithClock(clk.now))
	err := again.Load(context.Background())
	var cse *core.CorruptStateError
	if !errors.As(err, &cse) || len(cse.Keys) != 1 || cse.Keys[0] != state.KeyChallenges {
		t.Fatalf("expected only challenges discarded, got %v", err)
	}
	if !again.HasProfile() {
		t.Fatalf("profile should survive a bad challenges payload")
	}
}

func TestLedgerWithoutProfileIsIgnored(t *testing.T) {
	store := memory.NewSeeded(map[string][]byte{
		state.KeyLedger: []byte(`[{"id":"e1","amount":"5","category":"food","description":"x","date":"2025-03-14T00:00:00Z"}]`),
	})
	clk := &clock{}
	clk.set(14, 9)
	c := newController(t, store, clk)
	if c.HasProfile() || len(c.Expenses()) != 0 {
		t.Fatalf("expected empty state")
	}
	onboard(t, c)
	if len(c.Expenses()) != 0 {
		t.Fatalf("a new profile starts with an empty ledger")
	}
}

func TestPersistenceFailureKeepsInMemoryState(t *testing.T) {
	store := &flakyStore{Store: memory.New(), failKeys: map[string]bool{}}
	clk := &clock{}
	clk.set(14, 9)
	c := New(store, WithClock(clk.now))
	if err := c.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := c.CreateProfile(context.Background(), "Amina", "amina@example.com", d("2000000"), d("1500000")); err != nil {
		t.Fatal(err)
	}

	store.failKeys[state.KeyLedger] = true
	e, err := c.AppendExpense(context.Background(), d("15000"), core.Food, "Lunch")
	if !core.IsPersistence(err) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	var pe *core.PersistenceError
	if !errors.As(err, &pe) || pe.Key != state.KeyLedger {
		t.Fatalf("expected failure on ledger key, got %v", err)
	}
	if e.ID == "" || len(c.Expenses()) != 1 {
		t.Fatalf("expense must be kept in memory")
	}
	if p, _ := c.Profile(); p.Points == 0 {
		t.Fatalf("points must be kept in memory")
	}

	// Once the store recovers the next write catches up.
	store.failKeys[state.KeyLedger] = false
	if _, err := c.AppendExpense(context.Background(), d("1000"), core.Other, "Airtime"); err != nil {
		t.Fatalf("append after recovery: %v", err)
	}
	ledger, err := state.NewRepository(store).LoadLedger(context.Background())
	if err != nil || len(ledger) != 2 {
		t.Fatalf("expected 2 persisted entries, got %d err=%v", len(ledger), err)
	}
}

func TestLoadReadFailureLeavesNoPartialState(t *testing.T) {
	for _, key := range []string{state.KeyBonusMarker, state.KeyChallenges} {
		t.Run(key, func(t *testing.T) {
			store := &flakyStore{Store: memory.New(), failReads: map[string]bool{}}
			clk := &clock{}
			clk.set(14, 9)
			onboard(t, newController(t, store.Store, clk))

			store.failReads[key] = true
			c := New(store, WithClock(clk.now))
			if err := c.Load(context.Background()); err == nil {
				t.Fatalf("expected a read error")
			}
			if c.HasProfile() || len(c.Expenses()) != 0 || len(c.Challenges()) != 0 {
				t.Fatalf("failed load left state behind")
			}
			if _, err := c.Profile(); !errors.Is(err, ErrNoProfile) {
				t.Fatalf("expected ErrNoProfile, got %v", err)
			}
		})
	}
}

func TestUpdateProfile(t *testing.T) {
	store := memory.New()
	clk := &clock{}
	clk.set(14, 9)
	c := newController(t, store, clk)
	onboard(t, c)
	ctx := context.Background()

	over := d("3000000")
	if _, err := c.UpdateProfile(ctx, ProfileUpdate{MonthlyBudget: &over}); !errors.Is(err, core.ErrBudgetExceedsIncome) {
		t.Fatalf("expected ErrBudgetExceedsIncome, got %v", err)
	}
	if p, _ := c.Profile(); !p.MonthlyBudget.Equal(d("1500000")) {
		t.Fatalf("failed update changed the budget to %s", p.MonthlyBudget)
	}

	name := "  Amina N. "
	income, budgetAmt := d("3000000"), d("2500000")
	p, err := c.UpdateProfile(ctx, ProfileUpdate{Name: &name, MonthlyIncome: &income, MonthlyBudget: &budgetAmt})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if p.Name != "Amina N." || !p.MonthlyBudget.Equal(budgetAmt) {
		t.Fatalf("unexpected profile %+v", p)
	}
	reloaded, _ := newController(t, store, clk).Profile()
	if reloaded.Name != "Amina N." {
		t.Fatalf("update not persisted: %+v", reloaded)
	}
}

func TestCategoryLimitOverCapGetsNoReward(t *testing.T) {
	store := memory.New()
	clk := &clock{}
	clk.set(10, 8)
	c := newController(t, store, clk)
	onboard(t, c)
	ctx := context.Background()

	if _, err := c.JoinChallenge(ctx, "food_budget"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := c.JoinChallenge(ctx, "food_budget"); !errors.Is(err, ErrAlreadyJoined) {
		t.Fatalf("expected ErrAlreadyJoined, got %v", err)
	}
	if _, err := c.JoinChallenge(ctx, "nope"); !errors.Is(err, ErrUnknownChallenge) {
		t.Fatalf("expected ErrUnknownChallenge, got %v", err)
	}

	clk.set(11, 12)
	c.AppendExpense(ctx, d("40000"), core.Food, "Groceries")
	clk.set(13, 12)
	c.AppendExpense(ctx, d("31000"), core.Food, "Dinner out")
	before, _ := c.Profile()

	clk.set(18, 9)
	if _, err := c.Refresh(ctx, clk.now()); err != nil {
		t.Fatal(err)
	}
	after, _ := c.Profile()
	if after.Points != before.Points {
		t.Fatalf("over-cap challenge awarded points: %d -> %d", before.Points, after.Points)
	}

	views := c.ChallengeViews(clk.now())
	if len(views) != 1 {
		t.Fatalf("expected 1 view, got %d", len(views))
	}
	v := views[0]
	if v.IsCompleted || !v.IsExpired || !v.CurrentProgress.Equal(d("71000")) || v.Status != core.ChallengeExpired {
		t.Fatalf("unexpected view %+v", v)
	}

	// The finished instance no longer blocks joining again.
	if _, err := c.JoinChallenge(ctx, "food_budget"); err != nil {
		t.Fatalf("rejoin after expiry: %v", err)
	}
}

func TestCompletedChallengeRewardsOnce(t *testing.T) {
	store := memory.New()
	clk := &clock{}
	clk.set(10, 8)
	rec := &notify.Recorder{}
	c := newController(t, store, clk, WithNotifier(rec))
	onboard(t, c)
	ctx := context.Background()

	if _, err := c.JoinChallenge(ctx, "logger"); err != nil {
		t.Fatal(err)
	}
	clk.set(10, 9)
	c.AppendExpense(ctx, d("1000"), core.Food, "Tea")
	clk.set(11, 9)
	c.AppendExpense(ctx, d("1000"), core.Food, "Tea")

	p, _ := c.Profile()
	// two expenses, two daily bonuses, one challenge reward
	if want := 2 + 10 + 30; p.Points != want {
		t.Fatalf("expected %d points, got %d", want, p.Points)
	}
	if !p.HasBadge("challenge_logger") {
		t.Fatalf("expected challenge badge, got %+v", p.Badges)
	}

	clk.set(12, 9)
	c.Refresh(ctx, clk.now())
	if p2, _ := c.Profile(); p2.Points != p.Points {
		t.Fatalf("completion rewarded twice")
	}
	completed := 0
	for _, e := range rec.Events() {
		if e.Kind == notify.KindChallengeCompleted {
			completed++
		}
	}
	if completed != 1 {
		t.Fatalf("expected one completion event, got %d", completed)
	}
}

func TestPointsAreMonotonic(t *testing.T) {
	store := memory.New()
	clk := &clock{}
	clk.set(1, 8)
	c := newController(t, store, clk)
	onboard(t, c)
	ctx := context.Background()
	c.JoinChallenge(ctx, "logger")
	c.JoinChallenge(ctx, "food_budget")

	last := 0
	check := func(step string) {
		t.Helper()
		p, _ := c.Profile()
		if p.Points < last {
			t.Fatalf("%s: points decreased %d -> %d", step, last, p.Points)
		}
		if p.Level != gamification.LevelForPoints(p.Points) {
			t.Fatalf("%s: level %d out of sync with %d points", step, p.Level, p.Points)
		}
		last = p.Points
	}

	amounts := []string{"1000", "80000", "25000", "3000", "60000", "500"}
	for day := 1; day <= 20; day++ {
		clk.set(day, 10)
		c.AppendExpense(ctx, d(amounts[day%len(amounts)]), core.AllExpenseCategories()[day%8], "entry")
		check("append")
		if day == 5 {
			lower := d("900000")
			c.UpdateProfile(ctx, ProfileUpdate{MonthlyBudget: &lower})
			check("update")
		}
		clk.set(day, 22)
		c.Refresh(ctx, clk.now())
		check("refresh")
	}
	if last < 20 {
		t.Fatalf("expected at least one point per expense, got %d", last)
	}
}

func TestSavingsGoalBadgeOnce(t *testing.T) {
	store := memory.New()
	clk := &clock{}
	clk.set(14, 9)
	c := newController(t, store, clk)
	onboard(t, c)
	ctx := context.Background()

	g, err := c.AddSavingsGoal(ctx, "Laptop", d("500000"), clk.now().AddDate(0, 6, 0))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.ContributeToGoal(ctx, g.ID, d("0")); !core.IsValidation(err) {
		t.Fatalf("expected validation error for zero contribution, got %v", err)
	}
	if _, err := c.ContributeToGoal(ctx, "missing", d("1")); !errors.Is(err, ErrUnknownGoal) {
		t.Fatalf("expected ErrUnknownGoal, got %v", err)
	}

	g, _ = c.ContributeToGoal(ctx, g.ID, d("300000"))
	if g.IsCompleted {
		t.Fatalf("goal should not be complete yet")
	}
	g, _ = c.ContributeToGoal(ctx, g.ID, d("250000"))
	if !g.IsCompleted || !g.CurrentAmount.Equal(d("550000")) {
		t.Fatalf("unexpected goal %+v", g)
	}
	g, _ = c.ContributeToGoal(ctx, g.ID, d("1000"))

	p, _ := c.Profile()
	count := 0
	for _, b := range p.Badges {
		if b.ID == "goal_"+g.ID {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected one goal badge, got %d", count)
	}
}

func TestReset(t *testing.T) {
	store := memory.New()
	clk := &clock{}
	clk.set(14, 9)
	c := newController(t, store, clk)
	onboard(t, c)
	c.AppendExpense(context.Background(), d("100"), core.Food, "Tea")

	if err := c.Reset(context.Background()); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if c.HasProfile() || len(c.Expenses()) != 0 || len(store.Keys()) != 0 {
		t.Fatalf("reset left state behind: %v", store.Keys())
	}
}

func TestOperationsRequireProfile(t *testing.T) {
	clk := &clock{}
	clk.set(14, 9)
	c := newController(t, memory.New(), clk)
	ctx := context.Background()

	if _, err := c.AppendExpense(ctx, d("1"), core.Food, "x"); !errors.Is(err, ErrNoProfile) {
		t.Fatalf("append: %v", err)
	}
	if _, err := c.DashboardView(clk.now()); !errors.Is(err, ErrNoProfile) {
		t.Fatalf("dashboard: %v", err)
	}
	if _, err := c.JoinChallenge(ctx, "logger"); !errors.Is(err, ErrNoProfile) {
		t.Fatalf("join: %v", err)
	}
	if events, err := c.Refresh(ctx, clk.now()); err != nil || events != nil {
		t.Fatalf("refresh without profile should be a no-op")
	}
}
