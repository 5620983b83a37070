package app

import (
	"math"
	"time"

	"scisoc-quiz-service/internal/domain"
)

// SessionState is the lifecycle position of a play session.
type SessionState string

const (
	StateLoading    SessionState = "loading"
	StateInProgress SessionState = "in_progress"
	StateFinished   SessionState = "finished"
	StateError      SessionState = "error"
)

// Unanswered marks a question with no recorded answer.
const Unanswered = -1

// Session is one playthrough of a sampled question set. It is a plain value
// so it can be stored, serialized and driven directly; it is not safe for
// concurrent use.
type Session struct {
	State            SessionState          `json:"state"`
	Questions        []domain.QuizQuestion `json:"questions"`
	Answers          []int                 `json:"answers"`
	CurrentIndex     int                   `json:"currentIndex"`
	StartedAt        time.Time             `json:"startedAt"`
	FinishedAt       time.Time             `json:"finishedAt"`
	Score            int                   `json:"score"`
	TimeSpentSeconds int                   `json:"timeSpent"`
	Error            string                `json:"error,omitempty"`
}

// SessionResult is what a finished session reports to the leaderboard.
type SessionResult struct {
	Score            int `json:"score"`
	TotalQuestions   int `json:"totalQuestions"`
	TimeSpentSeconds int `json:"timeSpent"`
}

// NewSession returns a session waiting for its questions.
func NewSession() *Session {
	return &Session{State: StateLoading}
}

// Start moves a loading session into play. An empty question set moves it to
// the error state and returns domain.ErrNoQuestions.
func (s *Session) Start(questions []domain.QuizQuestion, now time.Time) error {
	if err := s.require(StateLoading); err != nil {
		return err
	}
	if len(questions) == 0 {
		s.Fail(domain.ErrNoQuestions)
		return domain.ErrNoQuestions
	}

	s.Questions = questions
	s.Answers = make([]int, len(questions))
	for i := range s.Answers {
		s.Answers[i] = Unanswered
	}
	s.CurrentIndex = 0
	s.StartedAt = now
	s.State = StateInProgress
	return nil
}

// Fail records a loading or transport failure. Terminal sessions are left as they are.
func (s *Session) Fail(err error) {
	if s.State != StateLoading && s.State != StateInProgress {
		return
	}
	s.State = StateError
	if err != nil {
		s.Error = err.Error()
	}
}

// Current returns the question being answered.
func (s *Session) Current() (domain.QuizQuestion, bool) {
	if s.State != StateInProgress || s.CurrentIndex >= len(s.Questions) {
		return domain.QuizQuestion{}, false
	}
	return s.Questions[s.CurrentIndex], true
}

// Selected returns the recorded answer for the current question, or Unanswered.
func (s *Session) Selected() int {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Answers) {
		return Unanswered
	}
	return s.Answers[s.CurrentIndex]
}

// Select records option as the answer for the current question, replacing
// any earlier choice.
func (s *Session) Select(option int) error {
	if err := s.require(StateInProgress); err != nil {
		return err
	}
	if option < 0 || option >= len(s.Questions[s.CurrentIndex].Options) {
		return domain.ErrOptionOutOfRange
	}
	s.Answers[s.CurrentIndex] = option
	return nil
}

// Next advances to the following question, or finishes the session on the
// last one. The current question must have an answer.
func (s *Session) Next(now time.Time) error {
	if err := s.require(StateInProgress); err != nil {
		return err
	}
	if s.Answers[s.CurrentIndex] == Unanswered {
		return domain.ErrNoSelection
	}
	if s.CurrentIndex+1 < len(s.Questions) {
		s.CurrentIndex++
		return nil
	}

	s.FinishedAt = now
	s.Score = ScoreAnswers(s.Questions, s.Answers)
	s.TimeSpentSeconds = elapsedSeconds(s.StartedAt, now)
	s.State = StateFinished
	return nil
}

// Back returns to the previous question; its recorded answer is kept.
func (s *Session) Back() error {
	if err := s.require(StateInProgress); err != nil {
		return err
	}
	if s.CurrentIndex == 0 {
		return domain.ErrInvalidTransition
	}
	s.CurrentIndex--
	return nil
}

// Result reports the outcome of a finished session.
func (s *Session) Result() (SessionResult, error) {
	if s.State != StateFinished {
		return SessionResult{}, domain.ErrInvalidTransition
	}
	return SessionResult{
		Score:            s.Score,
		TotalQuestions:   len(s.Questions),
		TimeSpentSeconds: s.TimeSpentSeconds,
	}, nil
}

func (s *Session) require(state SessionState) error {
	if s.State == StateFinished {
		return domain.ErrSessionFinished
	}
	if s.State != state {
		return domain.ErrInvalidTransition
	}
	return nil
}

// ScoreAnswers counts positions whose answer matches the question's correct
// index. Unanswered and missing positions never count.
func ScoreAnswers(questions []domain.QuizQuestion, answers []int) int {
	score := 0
	for i, q := range questions {
		if i < len(answers) && answers[i] != Unanswered && answers[i] == q.CorrectOptionIndex {
			score++
		}
	}
	return score
}

func elapsedSeconds(start, end time.Time) int {
	seconds := math.Round(end.Sub(start).Seconds())
	if seconds < 0 {
		return 0
	}
	return int(seconds)
}
