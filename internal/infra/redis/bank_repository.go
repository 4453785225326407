package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"dotnet-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// TopicLoader fetches one topic's questions from a backing store.
type TopicLoader interface {
	LoadTopic(ctx context.Context, topicKey string) ([]domain.Question, error)
}

// BankRepository caches each topic's question list in Redis as a JSON string
// and falls back to a loader on cache miss:
//
//	SET quiz:bank:{topicKey} [{"q":...},...] EX ttl
type BankRepository struct {
	client *redis.Client
	loader TopicLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewBankRepository(client *redis.Client, loader TopicLoader, ttl time.Duration) *BankRepository {
	return &BankRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *BankRepository) Questions(ctx context.Context, topicKey string) ([]domain.Question, error) {
	if questions, ok := r.cached(ctx, topicKey); ok {
		return questions, nil
	}

	result, err, _ := r.sf.Do(topicKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if questions, ok := r.cached(ctx, topicKey); ok {
			return questions, nil
		}

		questions, err := r.loader.LoadTopic(ctx, topicKey)
		if err != nil {
			return nil, err
		}

		// Empty topics are not cached so a later seed becomes visible immediately.
		if len(questions) > 0 {
			if data, err := json.Marshal(questions); err == nil {
				if err := r.client.Set(ctx, r.key(topicKey), data, r.ttlWithJitter()).Err(); err != nil {
					slog.Warn("cache question bank", "topic", topicKey, "err", err)
				}
			}
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (r *BankRepository) cached(ctx context.Context, topicKey string) ([]domain.Question, bool) {
	data, err := r.client.Get(ctx, r.key(topicKey)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("read cached question bank", "topic", topicKey, "err", err)
		}
		return nil, false
	}
	var questions []domain.Question
	if err := json.Unmarshal(data, &questions); err != nil || len(questions) == 0 {
		return nil, false
	}
	return questions, true
}

func (r *BankRepository) key(topicKey string) string {
	return "quiz:bank:" + topicKey
}

func (r *BankRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
