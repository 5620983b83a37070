package http

import (
	"errors"
	"io"
	"net/http"
	"time"

	"scisoc-quiz-service/internal/app"
	"scisoc-quiz-service/internal/domain"
	"scisoc-quiz-service/internal/logging"
)

// API serves the quiz game, leaderboard, profile and generation endpoints.
type API struct {
	game        *app.GameService
	leaderboard *app.LeaderboardService
	profiles    *app.ProfileService
	generator   *app.GeneratorService
	now         func() time.Time
}

func NewAPI(game *app.GameService, leaderboard *app.LeaderboardService, profiles *app.ProfileService, generator *app.GeneratorService) *API {
	if generator == nil {
		generator = app.NewGeneratorService(nil)
	}
	return &API{
		game:        game,
		leaderboard: leaderboard,
		profiles:    profiles,
		generator:   generator,
		now:         time.Now,
	}
}

// HandleGame draws a fresh question set for one session.
func (a *API) HandleGame(w http.ResponseWriter, r *http.Request) {
	count := app.ParseCount(r.URL.Query().Get("count"))
	questions, err := a.game.DrawQuestions(r.Context(), count)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, gameResponse{Quizzes: questions})
}

func (a *API) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := app.ParseLimit(r.URL.Query().Get("limit"))
	entries, err := a.leaderboard.Top(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{Entries: entries})
}

// HandleSubmitResult stores a finished session.
func (a *API) HandleSubmitResult(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, errInvalidJSON.Error())
		return
	}
	submission, err := parseSubmission(body)
	if errors.Is(err, errInvalidJSON) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	entry, err := a.leaderboard.Submit(r.Context(), submission)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	logging.FromContext(r.Context()).
		WithField("user_id", entry.UserID).
		WithField("score", entry.Score).
		Info("leaderboard result stored")
	writeJSON(w, http.StatusCreated, submitResponse{Entry: entry})
}

// HandleSyncUser creates the caller's profile on first login.
func (a *API) HandleSyncUser(w http.ResponseWriter, r *http.Request) {
	var req syncUserRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidJSON.Error())
		return
	}
	profile, created, err := a.profiles.Sync(r.Context(), req.UserID, req.Email, req.FullName, req.AvatarURL)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, syncUserResponse{User: syncedUser{
		UserID:    profile.UserID,
		Email:     profile.Email,
		FullName:  profile.FullName,
		AvatarURL: profile.AvatarURL,
		IsNewUser: created,
	}})
}

// HandleGenerateQuiz forwards study text to the generation workflow.
func (a *API) HandleGenerateQuiz(w http.ResponseWriter, r *http.Request) {
	var req generateQuizRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidJSON.Error())
		return
	}
	quizzes, err := a.generator.Generate(r.Context(), req.Text)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrEmptyPrompt), errors.Is(err, domain.ErrGeneratorUnavailable):
		writeServiceError(w, r, err)
		return
	default:
		logging.FromContext(r.Context()).WithError(err).Warn("quiz generation failed")
		writeError(w, http.StatusBadGateway, "quiz generation failed")
		return
	}
	if quizzes == nil {
		quizzes = []domain.GeneratedQuestion{}
	}
	writeJSON(w, http.StatusOK, generateQuizResponse{
		Success:   true,
		Quizzes:   quizzes,
		Timestamp: a.now().UTC(),
	})
}
