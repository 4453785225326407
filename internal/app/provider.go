package app

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"dotnet-quiz-service/internal/domain"
)

// BankRepository returns the questions stored under a normalized topic key.
// A key with no questions yields an empty slice, not an error.
type BankRepository interface {
	Questions(ctx context.Context, topicKey string) ([]domain.Question, error)
}

// QuestionProvider draws random question subsets for a topic.
type QuestionProvider struct {
	bank BankRepository

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuestionProvider(bank BankRepository) *QuestionProvider {
	return NewQuestionProviderWithRand(bank, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewQuestionProviderWithRand is used by tests that need a reproducible draw.
func NewQuestionProviderWithRand(bank BankRepository, rnd *rand.Rand) *QuestionProvider {
	return &QuestionProvider{bank: bank, rnd: rnd}
}

// SelectQuestions returns min(count, available) distinct questions for topic in random order.
func (p *QuestionProvider) SelectQuestions(ctx context.Context, topic string, count int) ([]domain.Question, error) {
	if !domain.IsSupportedTopic(topic) {
		return nil, domain.ErrInvalidTopic
	}

	all, err := p.bank.Questions(ctx, domain.TopicKey(topic))
	if err != nil {
		return nil, fmt.Errorf("load topic %q: %w", topic, err)
	}
	if len(all) == 0 {
		return nil, domain.ErrNoQuestionsAvailable
	}

	if count < 0 {
		count = 0
	}
	if count > len(all) {
		count = len(all)
	}

	shuffled := make([]domain.Question, len(all))
	copy(shuffled, all)

	p.mu.Lock()
	p.rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	p.mu.Unlock()

	return shuffled[:count:count], nil
}
