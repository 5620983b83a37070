package gameclient

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"scisoc-quiz-service/internal/app"
	"scisoc-quiz-service/internal/domain"
)

const defaultHTTPTimeout = 5 * time.Second

type Config struct {
	UserID           string
	ServerURL        string
	QuestionCount    int
	LeaderboardLimit int
	HTTPTimeout      time.Duration
	Log              logrus.FieldLogger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Run plays quiz rounds on the terminal until the user quits or in is
// exhausted. Results are submitted only when cfg.UserID is set.
func Run(ctx context.Context, in io.Reader, out io.Writer, cfg Config) error {
	serverURL := strings.TrimSpace(cfg.ServerURL)
	if serverURL == "" {
		serverURL = defaultServer
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	log := cfg.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	client := NewHTTPClient(serverURL, &http.Client{Timeout: timeout})
	submitter := NewSubmitter(client, cfg.LeaderboardLimit, log)
	reader := bufio.NewReader(in)

	fmt.Fprintf(out, "scisoc-quiz\nserver=%s\n", serverURL)
	if cfg.UserID == "" {
		fmt.Fprintln(out, "playing as guest, results will not be ranked")
	}

	for {
		session := app.NewSession()
		questions, err := client.FetchQuestions(ctx, cfg.QuestionCount)
		if err != nil {
			session.Fail(err)
			fmt.Fprintln(out, describeClientError(err, serverURL))
			retry, promptErr := promptYesNo(reader, out, "Try again? (yes/no): ")
			if promptErr != nil || !retry {
				return ignoreEOF(promptErr)
			}
			continue
		}
		if err := session.Start(questions, now()); err != nil {
			return err
		}

		quit, err := playSession(reader, out, session, now)
		if err != nil || quit {
			return ignoreEOF(err)
		}

		result, err := session.Result()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nScore: %d/%d in %ds\n", result.Score, result.TotalQuestions, result.TimeSpentSeconds)

		if cfg.UserID != "" {
			entries, err := submitter.Finish(ctx, cfg.UserID, result)
			if err != nil {
				fmt.Fprintf(out, "leaderboard unavailable: %v\n", describeClientError(err, serverURL))
			} else {
				printLeaderboard(out, entries, cfg.UserID)
			}
		}

		again, err := promptYesNo(reader, out, "Play again? (yes/no): ")
		if err != nil || !again {
			return ignoreEOF(err)
		}
	}
}

// playSession drives one session until it finishes. quit is true when the
// user leaves mid-session.
func playSession(reader *bufio.Reader, out io.Writer, session *app.Session, now func() time.Time) (bool, error) {
	for session.State == app.StateInProgress {
		question, _ := session.Current()
		printQuestion(out, session, question)

		line, err := promptLine(reader, out, len(question.Options))
		if err != nil {
			return false, err
		}

		switch input := strings.ToUpper(line); {
		case input == "Q":
			return true, nil
		case input == "<":
			if err := session.Back(); err != nil {
				fmt.Fprintln(out, "Already at the first question.")
			}
		case input == "":
			// Keep the recorded answer, typically after going back.
			if err := session.Next(now()); errors.Is(err, domain.ErrNoSelection) {
				fmt.Fprintln(out, "Choose an answer first.")
			}
		case len(input) == 1 && input[0] >= 'A' && input[0] <= 'Z':
			if err := session.Select(int(input[0] - 'A')); err != nil {
				fmt.Fprintln(out, "Invalid option.")
				continue
			}
			if err := session.Next(now()); err != nil {
				return false, err
			}
		default:
			fmt.Fprintln(out, "Invalid input.")
		}
	}
	return false, nil
}

func printQuestion(out io.Writer, session *app.Session, question domain.QuizQuestion) {
	fmt.Fprintf(out, "\nQuestion %d/%d\n%s\n\n", session.CurrentIndex+1, len(session.Questions), question.Question)
	selected := session.Selected()
	for i, option := range question.Options {
		marker := " "
		if i == selected {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %c. %s\n", marker, 'A'+i, option)
	}
	fmt.Fprintln(out)
}

func promptLine(reader *bufio.Reader, out io.Writer, optionCount int) (string, error) {
	fmt.Fprintf(out, "Your answer (A-%c, < back, q quit): ", 'A'+optionCount-1)
	line, err := reader.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func printLeaderboard(out io.Writer, entries []domain.LeaderboardEntry, userID string) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "No leaderboard entries yet.")
		return
	}
	fmt.Fprintln(out, "Leaderboard:")
	for i, e := range entries {
		marker := ""
		if e.UserID == userID {
			marker = " (you)"
		}
		fmt.Fprintf(out, "%d. %s %d/%d %ds%s\n", i+1, e.DisplayName, e.Score, e.TotalQuestions, e.TimeSpentSeconds, marker)
	}
}

func promptYesNo(reader *bufio.Reader, out io.Writer, prompt string) (bool, error) {
	for {
		fmt.Fprint(out, prompt)
		line, err := reader.ReadString('\n')
		if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		default:
			if err != nil {
				return false, err
			}
			fmt.Fprintln(out, "Please answer yes or no.")
		}
	}
}

func describeClientError(err error, serverURL string) error {
	switch {
	case errors.Is(err, ErrServiceUnavailable):
		return fmt.Errorf("quiz service unavailable at %s", serverURL)
	case errors.Is(err, domain.ErrNoQuestions):
		return errors.New("no questions available yet")
	}
	return err
}

func ignoreEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
