package http

import (
	"time"

	"scisoc-quiz-service/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

type gameResponse struct {
	Quizzes []domain.QuizQuestion `json:"quizzes"`
}

type leaderboardResponse struct {
	Entries []domain.LeaderboardEntry `json:"entries"`
}

type submitResponse struct {
	Entry domain.LeaderboardEntry `json:"entry"`
}

type syncUserRequest struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	FullName  string `json:"fullName"`
	AvatarURL string `json:"avatarUrl"`
}

type syncedUser struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	FullName  string `json:"fullName"`
	AvatarURL string `json:"avatarUrl"`
	IsNewUser bool   `json:"isNewUser"`
}

type syncUserResponse struct {
	User syncedUser `json:"user"`
}

type generateQuizRequest struct {
	Text string `json:"text"`
}

type generateQuizResponse struct {
	Success   bool                       `json:"success"`
	Quizzes   []domain.GeneratedQuestion `json:"quizzes"`
	Timestamp time.Time                  `json:"timestamp"`
}
