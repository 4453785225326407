package app

import (
	"context"
	"fmt"
	"log/slog"

	"dotnet-quiz-service/internal/domain"
	"github.com/google/uuid"
)

// HandoffStore carries a quiz configuration and its completed result between
// the quiz host and whatever renders the review. TakeResult clears the entry.
type HandoffStore interface {
	SaveConfig(ctx context.Context, attemptID string, cfg domain.QuizConfiguration) error
	LoadConfig(ctx context.Context, attemptID string) (domain.QuizConfiguration, error)
	SaveResult(ctx context.Context, attemptID string, result domain.QuizResult) error
	TakeResult(ctx context.Context, attemptID string) (domain.QuizResult, error)
}

// QuestionSelector draws questions for a topic. QuestionProvider is the local
// implementation; the API client serves remote draws.
type QuestionSelector interface {
	SelectQuestions(ctx context.Context, topic string, count int) ([]domain.Question, error)
}

// QuizService hosts quiz attempts: it fetches questions once, starts the
// session and hands the result off when the session completes.
type QuizService struct {
	provider QuestionSelector
	handoff  HandoffStore
	newID    func() string
}

func NewQuizService(provider QuestionSelector, handoff HandoffStore) *QuizService {
	return &QuizService{provider: provider, handoff: handoff, newID: uuid.NewString}
}

// Attempt is a started session together with its handoff identifier.
type Attempt struct {
	ID      string
	Session *Session
}

// Questions exposes the provider for hosts that only need a draw.
func (s *QuizService) Questions(ctx context.Context, topic string, count int) ([]domain.Question, error) {
	return s.provider.SelectQuestions(ctx, topic, count)
}

// Begin draws questions for cfg and starts a session. Nothing is persisted
// and no session exists when the draw fails.
func (s *QuizService) Begin(ctx context.Context, cfg domain.QuizConfiguration) (*Attempt, error) {
	cfg.QuestionCount = domain.ClampQuestionCount(cfg.QuestionCount)

	questions, err := s.provider.SelectQuestions(ctx, cfg.Topic, cfg.QuestionCount)
	if err != nil {
		return nil, err
	}

	id := s.newID()
	if err := s.handoff.SaveConfig(ctx, id, cfg); err != nil {
		return nil, fmt.Errorf("save quiz config: %w", err)
	}

	session := NewSession(cfg)
	if err := session.Start(questions); err != nil {
		return nil, err
	}
	slog.Info("quiz attempt started", "attempt", id, "topic", cfg.Topic, "questions", len(questions))
	return &Attempt{ID: id, Session: session}, nil
}

// Complete stores the final result for the review screen.
func (s *QuizService) Complete(ctx context.Context, attemptID string, result domain.QuizResult) error {
	if err := s.handoff.SaveResult(ctx, attemptID, result); err != nil {
		return fmt.Errorf("save quiz result: %w", err)
	}
	slog.Info("quiz attempt completed", "attempt", attemptID, "score", result.Score, "total", result.TotalQuestions)
	return nil
}

// TakeResult returns the stored result for attemptID and clears it.
func (s *QuizService) TakeResult(ctx context.Context, attemptID string) (domain.QuizResult, error) {
	return s.handoff.TakeResult(ctx, attemptID)
}
