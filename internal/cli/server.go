package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"scisoc-quiz-service/internal/app"
	"scisoc-quiz-service/internal/config"
	"scisoc-quiz-service/internal/domain"
	"scisoc-quiz-service/internal/infra/memory"
	"scisoc-quiz-service/internal/infra/postgres"
	infraredis "scisoc-quiz-service/internal/infra/redis"
	"scisoc-quiz-service/internal/infra/webhook"
	"scisoc-quiz-service/internal/logging"
	transport "scisoc-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// stores is the storage wiring picked from configuration: Postgres when a
// URL is set, else Redis, else process memory.
type stores struct {
	questions   app.QuestionSource
	leaderboard app.LeaderboardStore
	profiles    interface {
		app.ProfileStore
		app.ProfileDirectory
	}
	close func()
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Format)

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	hub := app.NewLeaderboardHub()
	game := app.NewGameService(st.questions, app.NewSampler(), cfg.Quiz.FetchLimit, log)
	leaderboard := app.NewLeaderboardService(st.leaderboard, st.profiles, hub, log)
	profiles := app.NewProfileService(st.profiles)

	var generator app.QuizGenerator
	if cfg.Generator.WebhookURL != "" {
		generator = webhook.NewGenerator(cfg.Generator.WebhookURL, nil, config.TTLDuration(cfg.Generator.Timeout, 60*time.Second))
	}

	handler := transport.NewRouter(transport.RouterConfig{
		API:         transport.NewAPI(game, leaderboard, profiles, app.NewGeneratorService(generator)),
		WS:          transport.NewWSHandler(leaderboard),
		Log:         log,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	server := &http.Server{
		Addr:              ":" + finalPort,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
	}

	go func() {
		log.WithField("port", finalPort).Info("starting quiz service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server...")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openStores(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (stores, error) {
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	closers := []func(){}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	if redisClient != nil {
		closers = append(closers, func() { _ = redisClient.Close() })
	}

	var st stores
	var loader infraredis.QuestionLoader

	switch {
	case cfg.Postgres.URL != "":
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			closeAll()
			return stores{}, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			closeAll()
			return stores{}, err
		}
		db := postgres.OpenBun(cfg.Postgres.URL)
		closers = append(closers, pool.Close, func() { _ = db.Close() })

		loader = postgres.NewQuestionSource(pool)
		st.leaderboard = postgres.NewLeaderboardStore(db)
		st.profiles = postgres.NewProfileStore(pool)
		log.Info("using postgres storage")
	default:
		rows, err := seedRows(cfg.Quiz.SeedFile, log)
		if err != nil {
			closeAll()
			return stores{}, err
		}
		loader = memory.NewStaticQuestionSource(rows)
		if redisClient != nil {
			st.leaderboard = infraredis.NewLeaderboardStore(redisClient)
			log.Info("using redis leaderboard with in-memory questions")
		} else {
			st.leaderboard = memory.NewLeaderboardStore()
			log.Info("using in-memory storage")
		}
		st.profiles = memory.NewProfileStore()
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 5*time.Minute)
	if redisClient != nil {
		st.questions = infraredis.NewQuestionCache(redisClient, loader, quizTTL)
	} else {
		st.questions = memory.NewQuestionCache(loader, quizTTL)
	}
	st.close = closeAll
	return st, nil
}

// seedRows reads the configured seed file, falling back to a small built-in set.
func seedRows(path string, log logrus.FieldLogger) ([]domain.QuizQuestionRaw, error) {
	if path == "" {
		return builtinQuestions(), nil
	}
	rows, err := memory.ReadQuestionFile(path, log)
	if errors.Is(err, os.ErrNotExist) {
		log.WithField("file", path).Warn("seed file not found, using built-in questions")
		return builtinQuestions(), nil
	}
	return rows, err
}

func builtinQuestions() []domain.QuizQuestionRaw {
	return []domain.QuizQuestionRaw{
		{
			ID:                 "builtin-1",
			Question:           "Ai là những người sáng lập chủ nghĩa xã hội khoa học?",
			Options:            json.RawMessage(`["C. Mác và Ph. Ăngghen","Xanh Ximông và Phuriê","Rôbớt Ôoen"]`),
			CorrectOptionIndex: json.RawMessage(`0`),
		},
		{
			ID:                 "builtin-2",
			Question:           "Tuyên ngôn của Đảng Cộng sản được công bố năm nào?",
			Options:            json.RawMessage(`"1844, 1848, 1867"`),
			CorrectOptionIndex: json.RawMessage(`1`),
		},
	}
}
