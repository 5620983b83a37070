package domain

import (
	"encoding/json"
	"time"
)

// QuizQuestionRaw is a quiz row as stored. Options and CorrectOptionIndex keep
// their stored JSON untouched because their shape is not trusted.
type QuizQuestionRaw struct {
	ID                 string          `json:"id"`
	Question           string          `json:"question"`
	Options            json.RawMessage `json:"options"`
	CorrectOptionIndex json.RawMessage `json:"correct_option_index"`
}

// QuizQuestion is a canonical question: at least two options and an index
// inside them.
type QuizQuestion struct {
	ID                 string   `json:"id"`
	Question           string   `json:"question"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correctOptionIndex"`
}

// Valid reports whether q satisfies the canonical bounds.
func (q QuizQuestion) Valid() bool {
	if q.ID == "" || q.Question == "" || len(q.Options) < 2 {
		return false
	}
	return q.CorrectOptionIndex >= 0 && q.CorrectOptionIndex < len(q.Options)
}

// LeaderboardEntry is one persisted result of a completed session.
type LeaderboardEntry struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	Score            int        `json:"score"`
	TotalQuestions   int        `json:"total_questions"`
	TimeSpentSeconds int        `json:"time_spent"`
	CompletedAt      *time.Time `json:"completed_at"`
	DisplayName      string     `json:"display_name,omitempty"`
	Email            string     `json:"email,omitempty"`
}

// LeaderboardSubmission is a validated result waiting to be persisted.
type LeaderboardSubmission struct {
	UserID           string `json:"userId"`
	Score            int    `json:"score"`
	TotalQuestions   int    `json:"totalQuestions"`
	TimeSpentSeconds int    `json:"timeSpent"`
}

// Leaderboard is a ranked snapshot pushed to live subscribers.
type Leaderboard struct {
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// Profile holds the public account data used to label leaderboard rows.
type Profile struct {
	UserID    string    `json:"userId"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email,omitempty"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GeneratedQuestion is a question produced by the quiz-generation webhook.
type GeneratedQuestion struct {
	ID            int      `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}
