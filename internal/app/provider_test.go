package app_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"dotnet-quiz-service/internal/app"
	"dotnet-quiz-service/internal/domain"
)

func TestSelectQuestionsBoundsAndDistinct(t *testing.T) {
	repo := &stubBank{topics: map[string][]domain.Question{"csharp_basics": makeQuestions(12)}}
	provider := app.NewQuestionProviderWithRand(repo, rand.New(rand.NewSource(1)))

	for _, count := range []int{0, 1, 5, 12, 13, 50} {
		got, err := provider.SelectQuestions(context.Background(), "C# Basics", count)
		if err != nil {
			t.Fatalf("count %d: %v", count, err)
		}
		want := count
		if want > 12 {
			want = 12
		}
		if len(got) != want {
			t.Fatalf("count %d: expected %d questions, got %d", count, want, len(got))
		}
		seen := map[string]bool{}
		for _, q := range got {
			if seen[q.Text] {
				t.Fatalf("count %d: duplicate question %q", count, q.Text)
			}
			seen[q.Text] = true
		}
	}

	got, err := provider.SelectQuestions(context.Background(), "C# Basics", -3)
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty draw for negative count, got %d (%v)", len(got), err)
	}
}

func TestSelectQuestionsDoesNotMutateBank(t *testing.T) {
	original := makeQuestions(6)
	repo := &stubBank{topics: map[string][]domain.Question{"csharp_linq": original}}
	provider := app.NewQuestionProviderWithRand(repo, rand.New(rand.NewSource(7)))

	for i := 0; i < 20; i++ {
		if _, err := provider.SelectQuestions(context.Background(), "C# LINQ", 6); err != nil {
			t.Fatalf("select: %v", err)
		}
	}
	for i, q := range original {
		if q.Text != fmt.Sprintf("question %d", i) {
			t.Fatalf("bank order changed at %d: %q", i, q.Text)
		}
	}
}

func TestSelectQuestionsIsUniform(t *testing.T) {
	const (
		size  = 4
		draws = 4000
	)
	repo := &stubBank{topics: map[string][]domain.Question{"csharp_core": makeQuestions(size)}}
	provider := app.NewQuestionProviderWithRand(repo, rand.New(rand.NewSource(42)))

	counts := map[string][size]int{}
	for i := 0; i < draws; i++ {
		got, err := provider.SelectQuestions(context.Background(), "C# Core", size)
		if err != nil {
			t.Fatalf("select: %v", err)
		}
		for pos, q := range got {
			c := counts[q.Text]
			c[pos]++
			counts[q.Text] = c
		}
	}

	expected := draws / size
	for text, positions := range counts {
		for pos, n := range positions {
			if n < expected*85/100 || n > expected*115/100 {
				t.Fatalf("%s appeared %d times at position %d, expected about %d", text, n, pos, expected)
			}
		}
	}
}

func TestSelectQuestionsInvalidTopicSkipsLookup(t *testing.T) {
	repo := &stubBank{topics: map[string][]domain.Question{"csharp_basics": makeQuestions(3)}}
	provider := app.NewQuestionProvider(repo)

	_, err := provider.SelectQuestions(context.Background(), "Not A Real Topic", 10)
	if !errors.Is(err, domain.ErrInvalidTopic) {
		t.Fatalf("expected invalid topic, got %v", err)
	}
	if repo.calls != 0 {
		t.Fatalf("expected no bank lookup, got %d", repo.calls)
	}
}

func TestSelectQuestionsEmptyTopic(t *testing.T) {
	repo := &stubBank{topics: map[string][]domain.Question{}}
	provider := app.NewQuestionProvider(repo)

	_, err := provider.SelectQuestions(context.Background(), "C# Classes", 10)
	if !errors.Is(err, domain.ErrNoQuestionsAvailable) {
		t.Fatalf("expected no questions error, got %v", err)
	}
	if repo.lastKey != "csharp_classes" {
		t.Fatalf("expected lookup by normalized key, got %q", repo.lastKey)
	}
}

func TestSelectQuestionsWrapsBankErrors(t *testing.T) {
	boom := errors.New("connection refused")
	provider := app.NewQuestionProvider(&stubBank{err: boom})

	_, err := provider.SelectQuestions(context.Background(), "C# Basics", 10)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped bank error, got %v", err)
	}
}

type stubBank struct {
	topics  map[string][]domain.Question
	err     error
	calls   int
	lastKey string
}

func (b *stubBank) Questions(_ context.Context, topicKey string) ([]domain.Question, error) {
	b.calls++
	b.lastKey = topicKey
	if b.err != nil {
		return nil, b.err
	}
	return b.topics[topicKey], nil
}

func makeQuestions(n int) []domain.Question {
	questions := make([]domain.Question, n)
	for i := range questions {
		questions[i] = domain.Question{
			Text:         fmt.Sprintf("question %d", i),
			Options:      []string{"A", "B", "C", "D"},
			CorrectIndex: i % domain.OptionCount,
			Explanation:  "because",
		}
	}
	return questions
}
