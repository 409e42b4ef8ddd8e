package amqp

import (
	"time"

	"github.com/goccy/go-json"
)

// AchievementMessage announces a reward earned by a profile: a badge, a
// level-up, a daily bonus or a completed challenge.
type AchievementMessage struct {
	Kind        string    `json:"kind"`
	ProfileID   string    `json:"profileId"`
	Title       string    `json:"title"`
	Points      int       `json:"points"`
	Level       int       `json:"level"`
	BadgeID     string    `json:"badgeId,omitempty"`
	ChallengeID string    `json:"challengeId,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewAchievementMessage stamps the message with the current time.
func NewAchievementMessage(kind, profileID, title string, points, level int) *AchievementMessage {
	return &AchievementMessage{
		Kind:      kind,
		ProfileID: profileID,
		Title:     title,
		Points:    points,
		Level:     level,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *AchievementMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
