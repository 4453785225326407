package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"dotnet-quiz-service/internal/app"
	"dotnet-quiz-service/internal/bank"
	"dotnet-quiz-service/internal/client"
	"dotnet-quiz-service/internal/config"
	"dotnet-quiz-service/internal/domain"
	"dotnet-quiz-service/internal/infra/memory"
	"github.com/spf13/cobra"
)

var errQuit = errors.New("quiz abandoned")

// NewPlayCmd runs a timed quiz in the terminal against a server or a local bank file.
func NewPlayCmd(configPath *string) *cobra.Command {
	var (
		topic     string
		slug      string
		count     int
		serverURL string
		bankPath  string
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Take a timed quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			quiz := domain.QuizConfiguration{Topic: topic, QuestionCount: domain.ClampQuestionCount(count)}
			if slug != "" {
				label, ok := domain.TopicForSlug(slug)
				if !ok {
					return domain.ErrInvalidTopic
				}
				quiz = domain.QuizConfiguration{Topic: label, QuestionCount: domain.TopicPageQuestionCount}
			}

			var source app.QuestionSelector
			if serverURL != "" {
				source = client.New(serverURL)
			} else {
				if bankPath == "" {
					bankPath = cfg.Bank.Path
				}
				b, err := bank.LoadFile(bankPath)
				if err != nil {
					return err
				}
				repo := memory.NewBankRepository(bank.NewLoader(b), time.Hour)
				source = app.NewQuestionProvider(repo)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			service := app.NewQuizService(source, memory.NewHandoffStore(config.TTLDuration(cfg.Quiz.HandoffTTL, time.Hour)))
			_, err = runPlay(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), service, quiz)
			return err
		},
	}
	cmd.Flags().StringVar(&topic, "topic", "C# Basics", "topic label")
	cmd.Flags().StringVar(&slug, "slug", "", "topic page slug; asks for 10 questions")
	cmd.Flags().IntVar(&count, "count", domain.DefaultQuestionCount, "number of questions (5-50)")
	cmd.Flags().StringVar(&serverURL, "server", "", "quiz service base URL; uses the local bank when empty")
	cmd.Flags().StringVar(&bankPath, "bank", "", "local question bank JSON (defaults to bank.path)")
	return cmd
}

// runPlay hosts one attempt like the websocket handler does: Begin records the
// configuration, Complete hands the result off and the review is printed from
// the handed-off copy.
func runPlay(ctx context.Context, in io.Reader, out io.Writer, service *app.QuizService, quiz domain.QuizConfiguration, opts ...app.DriverOption) (domain.QuizResult, error) {
	attempt, err := service.Begin(ctx, quiz)
	if err != nil {
		return domain.QuizResult{}, err
	}
	session := attempt.Session
	quiz = session.Config()
	total := session.View().Total

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	driver := app.NewDriver(session, opts...)
	go func() { _ = driver.Run(ctx) }()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()

	fmt.Fprintf(out, "%s: %d questions, %ds each. Keys: 1-4 select, n next, p previous, s skip, q quit.\n",
		quiz.Topic, total, domain.QuestionTimeLimitSeconds)

	r := renderer{out: out, index: -1}
	events := driver.Events()
	for {
		select {
		case <-ctx.Done():
			return domain.QuizResult{}, ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return domain.QuizResult{}, domain.ErrSessionNotActive
			}
			if ev.Type == app.EventCompleted && ev.Result != nil {
				return finishPlay(ctx, out, service, attempt.ID, *ev.Result)
			}
			r.render(ev.View)
		case line, ok := <-lines:
			if !ok {
				// Input closed; the countdown finishes the quiz.
				lines = nil
				continue
			}
			if err := playCommand(ctx, driver, line); err != nil {
				if errors.Is(err, errQuit) {
					fmt.Fprintln(out, "Quiz abandoned.")
					return domain.QuizResult{}, err
				}
				fmt.Fprintf(out, "! %v\n", err)
			}
		}
	}
}

func finishPlay(ctx context.Context, out io.Writer, service *app.QuizService, attemptID string, result domain.QuizResult) (domain.QuizResult, error) {
	if err := service.Complete(ctx, attemptID, result); err != nil {
		return result, err
	}
	stored, err := service.TakeResult(ctx, attemptID)
	if err != nil {
		return result, err
	}
	printReview(out, stored)
	return stored, nil
}

func playCommand(ctx context.Context, driver *app.Driver, line string) error {
	switch strings.ToLower(line) {
	case "":
		return nil
	case "n", "next":
		return driver.Next(ctx)
	case "p", "prev", "previous":
		return driver.Previous(ctx)
	case "s", "skip":
		return driver.Skip(ctx)
	case "q", "quit":
		return errQuit
	}
	n, err := strconv.Atoi(line)
	if err != nil {
		return fmt.Errorf("unknown command %q", line)
	}
	return driver.Select(ctx, n-1)
}

type renderer struct {
	out      io.Writer
	index    int
	selected int
}

func (r *renderer) render(v app.SessionView) {
	if v.Index != r.index {
		r.index, r.selected = v.Index, domain.NoSelection
		fmt.Fprintf(r.out, "\nQuestion %d/%d\n%s\n", v.Index+1, v.Total, v.Question)
		for i, opt := range v.Options {
			fmt.Fprintf(r.out, "  %d) %s\n", i+1, opt)
		}
		if v.Selected != domain.NoSelection {
			r.selected = v.Selected
			fmt.Fprintf(r.out, "Selected: %d\n", v.Selected+1)
		}
		return
	}
	if v.Selected != r.selected {
		r.selected = v.Selected
		fmt.Fprintf(r.out, "Selected: %d\n", v.Selected+1)
		return
	}
	switch v.RemainingSeconds {
	case 10, 5:
		fmt.Fprintf(r.out, "%ds left\n", v.RemainingSeconds)
	}
}

func printReview(w io.Writer, result domain.QuizResult) {
	fmt.Fprintf(w, "\n%s\nScore: %d/%d (%d%%)\n\n", result.Message(), result.Score, result.TotalQuestions, result.Percentage())
	for i, q := range result.Questions {
		a := result.Answers[i]
		mark := "x"
		if a.Correct(q) {
			mark = "ok"
		}
		yours := "no answer"
		if a.SelectedOption != domain.NoSelection {
			yours = optionText(q, a.SelectedOption)
		}
		fmt.Fprintf(w, "[%s] %d. %s\n     yours: %s | correct: %s | %ds\n", mark, i+1, q.Text, yours, optionText(q, q.CorrectIndex), a.TimeSpentSeconds)
		if q.Explanation != "" {
			fmt.Fprintf(w, "     %s\n", q.Explanation)
		}
	}
}

func optionText(q domain.Question, i int) string {
	if i < 0 || i >= len(q.Options) {
		return "?"
	}
	return q.Options[i]
}
