package cli

import (
	"time"

	"github.com/spf13/cobra"

	"scisoc-quiz-service/internal/config"
	"scisoc-quiz-service/internal/gameclient"
	"scisoc-quiz-service/internal/logging"
)

// NewPlayCmd runs the terminal quiz client against a running server.
func NewPlayCmd(configPath *string) *cobra.Command {
	var (
		userID    string
		serverURL string
		count     int
		limit     int
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a quiz round in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if serverURL == "" {
				serverURL = cfg.Client.ServerURL
			}
			return gameclient.Run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), gameclient.Config{
				UserID:           userID,
				ServerURL:        serverURL,
				QuestionCount:    count,
				LeaderboardLimit: limit,
				HTTPTimeout:      config.TTLDuration(cfg.Client.Timeout, 5*time.Second),
				Log:              logging.New(cfg.Log.Level, cfg.Log.Format),
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id to rank results under (guest when empty)")
	cmd.Flags().StringVar(&serverURL, "server", "", "quiz server URL (defaults to client.serverURL)")
	cmd.Flags().IntVar(&count, "count", 0, "questions per round")
	cmd.Flags().IntVar(&limit, "limit", 0, "leaderboard entries to show")
	return cmd
}
