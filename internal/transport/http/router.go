package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"scisoc-quiz-service/internal/logging"
)

type RouterConfig struct {
	API         *API
	WS          *WSHandler
	Log         logrus.FieldLogger
	CORSOrigins []string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(cfg.Log))
	r.Use(middleware.Recoverer)
	r.Use(cors(cfg.CORSOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/game", cfg.API.HandleGame)
		r.Get("/leaderboard", cfg.API.HandleLeaderboard)
		r.Post("/leaderboard", cfg.API.HandleSubmitResult)
		r.Post("/users/sync", cfg.API.HandleSyncUser)
		r.Post("/quiz", cfg.API.HandleGenerateQuiz)
	})

	if cfg.WS != nil {
		r.Get("/ws/leaderboard", cfg.WS.ServeWS)
	}
	return r
}

// cors allows the listed origins, or any origin when the list is empty or
// contains "*".
func cors(origins []string) func(http.Handler) http.Handler {
	allowAll := len(origins) == 0
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "*" {
			allowAll = true
		}
		allowed[o] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" {
				if _, ok := allowed[origin]; ok || allowAll {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
					w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
					w.Header().Add("Vary", "Origin")
				}
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
