package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dotnet-quiz-service/internal/app"
	"dotnet-quiz-service/internal/bank"
	"dotnet-quiz-service/internal/config"
	"dotnet-quiz-service/internal/domain"
	"dotnet-quiz-service/internal/infra/memory"
	"github.com/alicebob/miniredis/v2"
)

type stillTicker struct{}

func (stillTicker) C() <-chan time.Time { return nil }
func (stillTicker) Stop()               {}

func neverTicks(time.Duration) app.Ticker { return stillTicker{} }

func writeBankFile(t *testing.T, n int) string {
	t.Helper()
	questions := make([]domain.Question, n)
	for i := range questions {
		questions[i] = domain.Question{
			Text:         fmt.Sprintf("question %d", i),
			Options:      []string{"Alpha", "Bravo", "Charlie", "Delta"},
			CorrectIndex: i % domain.OptionCount,
			Explanation:  "explained here",
		}
	}
	data, err := json.Marshal(map[string]any{
		"author":        "quiz team",
		"csharp_basics": questions,
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "questions.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestValidateReportsIssues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.json")
	doc := `{"csharp_basics":[{"q":"Hi","options":["a","b"],"answer":5,"explanation":""}],"built":"today"}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var out bytes.Buffer
	cmd := NewValidateCmd(new(string))
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("validate without --strict should not fail: %v", err)
	}
	if !strings.Contains(out.String(), "csharp_basics[0]:") {
		t.Fatalf("expected issue location in output, got %q", out.String())
	}
	if !strings.Contains(out.String(), "Topics without questions:") || !strings.Contains(out.String(), "  - C# LINQ") {
		t.Fatalf("expected empty topics listed, got %q", out.String())
	}

	cmd = NewValidateCmd(new(string))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--strict", path})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected --strict to fail")
	}
}

func TestValidateCleanBank(t *testing.T) {
	path := filepath.Join("..", "..", "data", "questions.json")
	var out bytes.Buffer
	cmd := NewValidateCmd(new(string))
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--strict", path})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out.String(), "No issues found") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestValidateStrictFailsOnEmptyTopics(t *testing.T) {
	// Every question is well formed, but only one topic is present.
	path := writeBankFile(t, 5)
	var out bytes.Buffer
	cmd := NewValidateCmd(new(string))
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--strict", path})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected --strict to fail on empty topics")
	}
	if strings.Contains(out.String(), "Issues found:") {
		t.Fatalf("expected no per-question issues, got %q", out.String())
	}
}

func TestPlaySkippingEverything(t *testing.T) {
	b, err := bank.LoadFile(writeBankFile(t, 6))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	handoff := memory.NewHandoffStore(time.Hour)
	service := app.NewQuizService(app.NewQuestionProvider(bankRepo{b}), handoff)

	var out bytes.Buffer
	in := strings.NewReader(strings.Repeat("s\n", 5))
	result, err := runPlay(context.Background(), in, &out, service,
		domain.QuizConfiguration{Topic: "C# Basics", QuestionCount: 5}, app.WithTicker(neverTicks))
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if result.Score != 0 || result.TotalQuestions != 5 {
		t.Fatalf("unexpected result %+v", result)
	}
	if !strings.Contains(out.String(), "Don't Give Up!") || !strings.Contains(out.String(), "Score: 0/5 (0%)") {
		t.Fatalf("missing summary in output %q", out.String())
	}
	// The review is read back through the handoff, which clears both entries.
	if n := handoff.Len(); n != 0 {
		t.Fatalf("expected handoff entries consumed, %d left", n)
	}
}

func TestPlayRejectsBadInputAndQuits(t *testing.T) {
	b, err := bank.LoadFile(writeBankFile(t, 6))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	handoff := memory.NewHandoffStore(time.Hour)
	service := app.NewQuizService(app.NewQuestionProvider(bankRepo{b}), handoff)

	var out bytes.Buffer
	in := strings.NewReader("n\n9\nwat\nq\n")
	_, err = runPlay(context.Background(), in, &out, service,
		domain.QuizConfiguration{Topic: "C# Basics", QuestionCount: 5}, app.WithTicker(neverTicks))
	if err != errQuit {
		t.Fatalf("expected quit, got %v", err)
	}
	// Begin recorded the configuration even though the attempt was abandoned.
	if n := handoff.Len(); n != 1 {
		t.Fatalf("expected the attempt configuration in the handoff, got %d entries", n)
	}
	for _, want := range []string{domain.ErrNoOptionSelected.Error(), domain.ErrOptionOutOfRange.Error(), `unknown command "wat"`} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("expected %q in output %q", want, out.String())
		}
	}
}

func TestSeedSQLiteAndServeFromIt(t *testing.T) {
	ctx := context.Background()
	b, err := bank.LoadFile(writeBankFile(t, 7))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	cfg := config.Default()
	cfg.Bank.Source = config.BankSourceSQLite
	cfg.Bank.SQLite = filepath.Join(t.TempDir(), "bank.db")

	n, err := seedBank(ctx, cfg, config.BankSourceSQLite, b)
	if err != nil || n != 1 {
		t.Fatalf("seed: %d topics, %v", n, err)
	}

	service, cleanup, err := buildService(ctx, cfg)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer cleanup()

	got, err := service.Questions(ctx, "C# Basics", 7)
	if err != nil || len(got) != 7 {
		t.Fatalf("expected 7 questions from sqlite, got %d (%v)", len(got), err)
	}
}

func TestBuildServiceWithRedis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	cfg := config.Default()
	cfg.Bank.Path = writeBankFile(t, 6)
	cfg.Redis.Addr = mr.Addr()

	service, cleanup, err := buildService(ctx, cfg)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer cleanup()

	attempt, err := service.Begin(ctx, domain.QuizConfiguration{Topic: "C# Basics", QuestionCount: 5})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if !mr.Exists("quiz:bank:csharp_basics") {
		t.Fatalf("expected bank cached in redis, keys %v", mr.Keys())
	}
	if !mr.Exists("quiz:" + attempt.ID + ":quizConfig") {
		t.Fatalf("expected handoff config in redis, keys %v", mr.Keys())
	}
}

func TestSeedRejectsFileTarget(t *testing.T) {
	if _, err := seedBank(context.Background(), config.Default(), config.BankSourceFile, bank.Bank{}); err == nil {
		t.Fatalf("expected error seeding a file source")
	}
}

type bankRepo struct{ b bank.Bank }

func (r bankRepo) Questions(ctx context.Context, key string) ([]domain.Question, error) {
	return bank.NewLoader(r.b).LoadTopic(ctx, key)
}
