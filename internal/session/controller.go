// Package session owns the authoritative in-memory profile, ledger and
// challenge state for one user and funnels every mutation through a
// Controller. Each mutation validates first, then applies, then re-runs
// the reward rules, then writes the changed keys to the store.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/core"
	"spendwise/internal/gamification"
	"spendwise/internal/kv"
	"spendwise/internal/log"
	"spendwise/internal/notify"
	"spendwise/internal/state"
)

var (
	ErrNoProfile        = errors.New("no profile: onboarding required")
	ErrProfileExists    = errors.New("a profile already exists")
	ErrUnknownChallenge = errors.New("unknown challenge")
	ErrAlreadyJoined    = errors.New("challenge already active")
	ErrUnknownGoal      = errors.New("unknown savings goal")
)

type Controller struct {
	repo     *state.Repository
	now      func() time.Time
	logger   *log.Logger
	notifier notify.Notifier
	catalog  []core.ChallengeDefinition

	profile    *core.Profile
	ledger     []core.Expense
	marker     string
	challenges []core.Challenge
}

type Option func(*Controller)

// WithClock replaces time.Now. Calendar days follow the clock's location.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) { c.logger = logger.WithComponent(log.ComponentSession) }
}

func WithNotifier(n notify.Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

// WithCatalog sets the challenges a user can join.
func WithCatalog(defs []core.ChallengeDefinition) Option {
	return func(c *Controller) { c.catalog = append([]core.ChallengeDefinition(nil), defs...) }
}

// New returns a controller with empty state. Call Load to read the store.
func New(store kv.Store, opts ...Option) *Controller {
	c := &Controller{
		repo:     state.NewRepository(store),
		now:      time.Now,
		logger:   log.Discard().WithComponent(log.ComponentSession),
		notifier: notify.Nop{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.clear()
	return c
}

func (c *Controller) clear() {
	c.profile = nil
	c.ledger = []core.Expense{}
	c.marker = ""
	c.challenges = []core.Challenge{}
}

// Load replaces the in-memory state with what the store holds.
//
// An unparsable or invalid profile or ledger discards both keys and leaves
// the controller without a profile. A bad challenges payload discards only
// that key. Either case returns a *core.CorruptStateError and the
// controller stays usable. A ledger saved without a profile is ignored.
// Any other read failure is returned with the controller left empty.
func (c *Controller) Load(ctx context.Context) error {
	c.clear()

	profile, perr := c.repo.LoadProfile(ctx)
	ledger, lerr := c.repo.LoadLedger(ctx)
	if err := readFailure(perr, lerr); err != nil {
		return err
	}

	var corrupt []string
	var causes []error
	if perr != nil || lerr != nil {
		if err := c.repo.Discard(ctx, state.KeyProfile, state.KeyLedger); err != nil {
			c.logger.WarnContext(ctx, "Failed to discard corrupt state", log.FieldError, err)
		}
		corrupt = append(corrupt, state.KeyProfile, state.KeyLedger)
		causes = append(causes, perr, lerr)
		profile = nil
	}

	if profile != nil {
		c.profile = profile
		c.ledger = ledger
		// Level is derived; heal a stored value that drifted.
		c.profile.Level = gamification.LevelForPoints(c.profile.Points)

		marker, err := c.repo.LoadMarker(ctx)
		if err != nil {
			c.clear()
			return err
		}
		c.marker = marker

		challenges, err := c.repo.LoadChallenges(ctx)
		var de *state.DecodeError
		switch {
		case errors.As(err, &de):
			if derr := c.repo.Discard(ctx, state.KeyChallenges); derr != nil {
				c.logger.WarnContext(ctx, "Failed to discard corrupt challenges", log.FieldError, derr)
			}
			corrupt = append(corrupt, state.KeyChallenges)
			causes = append(causes, err)
		case err != nil:
			c.clear()
			return err
		default:
			c.challenges = challenges
		}
	}

	if len(corrupt) > 0 {
		cerr := &core.CorruptStateError{Keys: corrupt, Err: errors.Join(causes...)}
		c.logger.WarnContext(ctx, "Discarded corrupt state", log.FieldOperation, log.OpLoad, log.FieldError, cerr)
		return cerr
	}

	if c.profile != nil {
		c.logger.DebugContext(ctx, "State loaded",
			log.FieldProfileID, c.profile.ID,
			"expenses", len(c.ledger),
			"challenges", len(c.challenges))
	}
	return nil
}

// readFailure returns the first error that is a store failure rather than
// a bad payload.
func readFailure(errs ...error) error {
	for _, err := range errs {
		var de *state.DecodeError
		if err != nil && !errors.As(err, &de) {
			return err
		}
	}
	return nil
}

func (c *Controller) HasProfile() bool {
	return c.profile != nil
}

// Profile returns a copy of the current profile.
func (c *Controller) Profile() (core.Profile, error) {
	if c.profile == nil {
		return core.Profile{}, ErrNoProfile
	}
	return cloneProfile(*c.profile), nil
}

// Expenses returns a copy of the ledger in insertion order.
func (c *Controller) Expenses() []core.Expense {
	return append([]core.Expense{}, c.ledger...)
}

// Challenges returns a copy of every joined challenge, finished ones included.
func (c *Controller) Challenges() []core.Challenge {
	return append([]core.Challenge{}, c.challenges...)
}

// LastBonusDay is the calendar day of the last daily bonus, or "".
func (c *Controller) LastBonusDay() string {
	return c.marker
}

func (c *Controller) Catalog() []core.ChallengeDefinition {
	return append([]core.ChallengeDefinition{}, c.catalog...)
}

// CreateProfile onboards a new user. Any ledger, challenges or bonus marker
// left from a previous profile are cleared.
func (c *Controller) CreateProfile(ctx context.Context, name, email string, monthlyIncome, monthlyBudget decimal.Decimal) (core.Profile, error) {
	if c.profile != nil {
		return core.Profile{}, ErrProfileExists
	}
	p, err := core.NewProfile(name, email, monthlyIncome, monthlyBudget, c.now())
	if err != nil {
		return core.Profile{}, err
	}

	c.clear()
	c.profile = &p
	c.logger.InfoContext(ctx, "Profile created", log.FieldProfileID, p.ID)

	perr := c.persist(ctx, state.KeyProfile, state.KeyLedger, state.KeyChallenges, state.KeyBonusMarker)
	return cloneProfile(p), perr
}

// AppendExpense validates and records an expense stamped with the current
// time, credits the logging point and re-runs the reward rules.
func (c *Controller) AppendExpense(ctx context.Context, amount decimal.Decimal, category core.ExpenseCategory, description string) (core.Expense, error) {
	if c.profile == nil {
		return core.Expense{}, ErrNoProfile
	}
	now := c.now()
	e, err := core.NewExpense(amount, category, description, now)
	if err != nil {
		return core.Expense{}, err
	}

	c.ledger = append(c.ledger, e)
	var events []notify.Event
	events = c.award(events, gamification.ExpenseLoggedPoints, now)

	dirty := keySet{state.KeyLedger: true, state.KeyProfile: true}
	events = c.recompute(ctx, now, dirty, events)

	c.logger.WithFields(log.NewFields().
		WithExpense(e.ID, e.Amount, string(e.Category)).
		WithScore(c.profile.Points, c.profile.Level)).
		InfoContext(ctx, "Expense appended")

	perr := c.persist(ctx, dirty.keys()...)
	c.dispatch(ctx, events)
	return e, perr
}

// ProfileUpdate carries the fields to change; nil fields are kept.
// Points, level and badges are not editable.
type ProfileUpdate struct {
	Name          *string
	Email         *string
	MonthlyIncome *decimal.Decimal
	MonthlyBudget *decimal.Decimal
}

// UpdateProfile applies u atomically: if the result does not validate,
// nothing changes.
func (c *Controller) UpdateProfile(ctx context.Context, u ProfileUpdate) (core.Profile, error) {
	if c.profile == nil {
		return core.Profile{}, ErrNoProfile
	}
	next := cloneProfile(*c.profile)
	if u.Name != nil {
		next.Name = trim(*u.Name)
	}
	if u.Email != nil {
		next.Email = trim(*u.Email)
	}
	if u.MonthlyIncome != nil {
		next.MonthlyIncome = *u.MonthlyIncome
	}
	if u.MonthlyBudget != nil {
		next.MonthlyBudget = *u.MonthlyBudget
	}
	if err := next.Validate(); err != nil {
		return core.Profile{}, err
	}

	c.profile = &next
	now := c.now()
	dirty := keySet{state.KeyProfile: true}
	events := c.recompute(ctx, now, dirty, nil)

	c.logger.InfoContext(ctx, "Profile updated", log.FieldProfileID, next.ID)
	perr := c.persist(ctx, dirty.keys()...)
	c.dispatch(ctx, events)
	return cloneProfile(*c.profile), perr
}

// Refresh re-runs the reward rules at now and persists whatever changed.
// It is safe to call repeatedly; rewards already granted are never granted
// again.
func (c *Controller) Refresh(ctx context.Context, now time.Time) ([]notify.Event, error) {
	if c.profile == nil {
		return nil, nil
	}
	dirty := keySet{}
	events := c.recompute(ctx, now, dirty, nil)
	perr := c.persist(ctx, dirty.keys()...)
	c.dispatch(ctx, events)
	return events, perr
}

// Reset deletes all persisted state and returns the controller to the
// no-profile state. The in-memory state is cleared even if a delete fails.
func (c *Controller) Reset(ctx context.Context) error {
	c.clear()
	c.logger.InfoContext(ctx, "State reset", log.FieldOperation, log.OpReset)
	return c.repo.Discard(ctx, state.AllKeys()...)
}

// recompute applies every reward rule at now, adding touched keys to dirty.
func (c *Controller) recompute(ctx context.Context, now time.Time, dirty keySet, events []notify.Event) []notify.Event {
	p := c.profile

	bonus := gamification.CheckDailyBonus(c.ledger, p.MonthlyBudget, c.marker, now)
	if bonus.Award {
		c.marker = bonus.Marker
		events = c.award(events, gamification.DailyBonusPoints, now)
		events = append(events, c.event(notify.KindDailyBonus, "Daily budget bonus", now))
		dirty.add(state.KeyProfile, state.KeyBonusMarker)
		c.logger.InfoContext(ctx, "Daily bonus awarded", "day", bonus.Marker, log.FieldPoints, p.Points)
	}

	for i, ch := range c.challenges {
		out, err := gamification.EvaluateChallenge(ch, c.ledger, p.MonthlyBudget, now)
		if err != nil {
			c.logger.WarnContext(ctx, "Skipping challenge", log.FieldChallengeID, ch.ID, log.FieldError, err)
			continue
		}
		if !out.Challenge.CurrentProgress.Equal(ch.CurrentProgress) || out.Completed || out.Expired {
			dirty.add(state.KeyChallenges)
		}
		c.challenges[i] = out.Challenge

		switch {
		case out.Completed:
			events = c.award(events, ch.PointsReward, now)
			e := c.event(notify.KindChallengeCompleted, ch.Title, now)
			e.ChallengeID = ch.DefinitionID
			events = append(events, e)
			events = c.grant(events, gamification.ChallengeBadge(out.Challenge, now))
			dirty.add(state.KeyProfile)
			c.logger.InfoContext(ctx, "Challenge completed", log.FieldChallengeID, ch.ID, log.FieldPoints, p.Points)
		case out.Expired:
			e := c.event(notify.KindChallengeExpired, ch.Title, now)
			e.ChallengeID = ch.DefinitionID
			events = append(events, e)
		}
	}

	for _, b := range gamification.NewBadges(*p, c.ledger, now) {
		events = c.grant(events, b)
		dirty.add(state.KeyProfile)
	}

	if lvl := gamification.LevelForPoints(p.Points); lvl != p.Level {
		p.Level = lvl
		dirty.add(state.KeyProfile)
	}
	return events
}

// award credits points and reports a level-up if one happened.
func (c *Controller) award(events []notify.Event, points int, now time.Time) []notify.Event {
	if gamification.AddPoints(c.profile, points) {
		events = append(events, c.event(notify.KindLevelUp, fmt.Sprintf("Level %d", c.profile.Level), now))
	}
	return events
}

func (c *Controller) grant(events []notify.Event, b core.Badge) []notify.Event {
	if !gamification.GrantBadge(c.profile, b) {
		return events
	}
	e := c.event(notify.KindBadge, b.Name, b.EarnedAt)
	e.BadgeID = b.ID
	return append(events, e)
}

func (c *Controller) event(kind notify.Kind, title string, at time.Time) notify.Event {
	return notify.Event{
		Kind:      kind,
		ProfileID: c.profile.ID,
		Title:     title,
		Points:    c.profile.Points,
		Level:     c.profile.Level,
		At:        at,
	}
}

// dispatch hands events to the notifier. Delivery failures are logged and
// never affect the operation's result.
func (c *Controller) dispatch(ctx context.Context, events []notify.Event) {
	for _, e := range events {
		if err := c.notifier.Notify(ctx, e); err != nil {
			c.logger.WarnContext(ctx, "Failed to deliver event", "kind", string(e.Kind), log.FieldError, err)
		}
	}
}

// persist writes the given keys from in-memory state. Every key is
// attempted; failures are returned as joined *core.PersistenceError values.
func (c *Controller) persist(ctx context.Context, keys ...string) error {
	var errs []error
	for _, k := range keys {
		var err error
		switch k {
		case state.KeyProfile:
			if c.profile != nil {
				err = c.repo.SaveProfile(ctx, *c.profile)
			}
		case state.KeyLedger:
			err = c.repo.SaveLedger(ctx, c.ledger)
		case state.KeyChallenges:
			err = c.repo.SaveChallenges(ctx, c.challenges)
		case state.KeyBonusMarker:
			if c.marker == "" {
				err = c.repo.Discard(ctx, state.KeyBonusMarker)
			} else {
				err = c.repo.SaveMarker(ctx, c.marker)
			}
		}
		if err != nil {
			if !core.IsPersistence(err) {
				err = &core.PersistenceError{Key: k, Err: err}
			}
			c.logger.ErrorContext(ctx, "Failed to persist state", log.FieldStoreKey, k, log.FieldError, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// keySet records which store keys a mutation touched.
type keySet map[string]bool

func (s keySet) add(keys ...string) {
	for _, k := range keys {
		s[k] = true
	}
}

// keys lists members in a fixed write order: ledger, profile, marker, challenges.
func (s keySet) keys() []string {
	var out []string
	for _, k := range []string{state.KeyLedger, state.KeyProfile, state.KeyBonusMarker, state.KeyChallenges} {
		if s[k] {
			out = append(out, k)
		}
	}
	return out
}
