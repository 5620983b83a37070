package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"scisoc-quiz-service/internal/config"
	"scisoc-quiz-service/internal/infra/memory"
	"scisoc-quiz-service/internal/infra/postgres"
	"scisoc-quiz-service/internal/logging"
)

// NewSeedCmd loads raw quiz rows from a JSON file into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert raw quiz rows from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log := logging.New(cfg.Log.Level, cfg.Log.Format)
			if file == "" {
				file = cfg.Quiz.SeedFile
			}
			if file == "" {
				return fmt.Errorf("no seed file given")
			}

			rows, err := memory.ReadQuestionFile(file, log)
			if err != nil {
				return err
			}
			if err := runMigrationsWithConfig(cmd.Context(), cfg, log); err != nil {
				return err
			}

			db := postgres.OpenBun(cfg.Postgres.URL)
			defer db.Close()
			n, err := postgres.SeedQuestions(cmd.Context(), db, rows)
			if err != nil {
				return err
			}
			log.WithField("rows", n).WithField("file", file).Info("quiz rows seeded")
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "JSON file of raw quiz rows (defaults to quiz.seedFile)")
	return cmd
}
