// Package notify fans out achievement events raised by the session.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"spendwise/internal/amqp"
)

type Kind string

const (
	KindLevelUp            Kind = "level_up"
	KindBadge              Kind = "badge"
	KindDailyBonus         Kind = "daily_bonus"
	KindChallengeCompleted Kind = "challenge_completed"
	KindChallengeExpired   Kind = "challenge_expired"
	KindGoalReached        Kind = "goal_reached"
)

// Event describes one reward or state change worth announcing.
type Event struct {
	Kind        Kind
	ProfileID   string
	Title       string
	Points      int // profile total after the event
	Level       int
	BadgeID     string
	ChallengeID string
	At          time.Time
}

type Notifier interface {
	Notify(ctx context.Context, e Event) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Notify(context.Context, Event) error { return nil }

// Log writes events to a slog logger.
type Log struct {
	Logger *slog.Logger
}

func (l Log) Notify(ctx context.Context, e Event) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "Achievement",
		"kind", string(e.Kind),
		"title", e.Title,
		"points", e.Points,
		"level", e.Level,
		"badge_id", e.BadgeID,
		"challenge_id", e.ChallengeID)
	return nil
}

// Recorder keeps events in memory; the CLI uses it to print what a
// command unlocked.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Notify(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// Events returns a copy of the recorded events in arrival order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Multi forwards to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, e Event) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Publisher is the subset of amqp.Client used for delivery.
type Publisher interface {
	PublishAchievement(ctx context.Context, msg *amqp.AchievementMessage) error
}

// AMQP publishes events as achievement messages.
type AMQP struct {
	Publisher Publisher
}

func (a AMQP) Notify(ctx context.Context, e Event) error {
	msg := amqp.NewAchievementMessage(string(e.Kind), e.ProfileID, e.Title, e.Points, e.Level)
	msg.BadgeID = e.BadgeID
	msg.ChallengeID = e.ChallengeID
	if !e.At.IsZero() {
		msg.Timestamp = e.At
	}
	return a.Publisher.PublishAchievement(ctx, msg)
}
