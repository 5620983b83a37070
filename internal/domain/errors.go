package domain

import "errors"

var (
	// ErrNoQuestions is returned when no valid question survives normalization.
	ErrNoQuestions = errors.New("no questions available")
	// ErrInvalidSubmission indicates a leaderboard result with missing or invalid fields.
	ErrInvalidSubmission = errors.New("invalid leaderboard submission")
	// ErrSessionFinished is returned for any mutation of a completed session.
	ErrSessionFinished = errors.New("quiz session already finished")
	// ErrInvalidTransition is returned when an action does not apply to the session state.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrNoSelection is returned when advancing without choosing an option.
	ErrNoSelection = errors.New("no option selected")
	// ErrOptionOutOfRange indicates a selected option index outside the question's options.
	ErrOptionOutOfRange = errors.New("option out of range")
	// ErrInvalidProfile indicates a profile sync request without user id or email.
	ErrInvalidProfile = errors.New("userId and email are required")
	// ErrEmptyPrompt is returned when quiz generation is asked for with blank text.
	ErrEmptyPrompt = errors.New("prompt must not be empty")
	// ErrGeneratorUnavailable indicates no quiz-generation webhook is configured.
	ErrGeneratorUnavailable = errors.New("quiz generator not configured")
)
