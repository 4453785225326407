package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dotnet-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	configKey = "quizConfig"
	resultKey = "quizResult"
)

// HandoffStore keeps quiz configurations and results in Redis under
// quiz:{attemptID}:quizConfig and quiz:{attemptID}:quizResult. Entries expire
// after ttl so abandoned attempts do not accumulate.
type HandoffStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewHandoffStore(client *redis.Client, ttl time.Duration) *HandoffStore {
	return &HandoffStore{client: client, ttl: ttl}
}

func (s *HandoffStore) SaveConfig(ctx context.Context, attemptID string, cfg domain.QuizConfiguration) error {
	return s.put(ctx, s.key(attemptID, configKey), cfg)
}

func (s *HandoffStore) LoadConfig(ctx context.Context, attemptID string) (domain.QuizConfiguration, error) {
	var cfg domain.QuizConfiguration
	data, err := s.client.Get(ctx, s.key(attemptID, configKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return cfg, domain.ErrConfigNotFound
	}
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decode quiz config: %w", err)
	}
	return cfg, nil
}

func (s *HandoffStore) SaveResult(ctx context.Context, attemptID string, result domain.QuizResult) error {
	return s.put(ctx, s.key(attemptID, resultKey), result)
}

func (s *HandoffStore) TakeResult(ctx context.Context, attemptID string) (domain.QuizResult, error) {
	var result domain.QuizResult
	data, err := s.client.GetDel(ctx, s.key(attemptID, resultKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return result, domain.ErrResultNotFound
	}
	if err != nil {
		return result, err
	}
	_ = s.client.Del(ctx, s.key(attemptID, configKey)).Err()
	if err := json.Unmarshal(data, &result); err != nil {
		return result, fmt.Errorf("decode quiz result: %w", err)
	}
	return result, nil
}

func (s *HandoffStore) put(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, s.ttl).Err()
}

func (s *HandoffStore) key(attemptID, name string) string {
	return "quiz:" + attemptID + ":" + name
}
