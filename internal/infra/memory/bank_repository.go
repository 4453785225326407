package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"dotnet-quiz-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// TopicLoader fetches one topic's questions from a backing store (file, Postgres, SQLite).
type TopicLoader interface {
	LoadTopic(ctx context.Context, topicKey string) ([]domain.Question, error)
}

// BankRepository caches topic question lists with a TTL so the backing store
// is read once per topic per expiry window.
type BankRepository struct {
	loader TopicLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rndMu  sync.Mutex
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedTopic
}

type cachedTopic struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewBankRepository(loader TopicLoader, ttl time.Duration) *BankRepository {
	return &BankRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedTopic),
	}
}

func (r *BankRepository) Questions(ctx context.Context, topicKey string) ([]domain.Question, error) {
	if questions, ok := r.lookup(topicKey); ok {
		return questions, nil
	}

	result, err, _ := r.sf.Do(topicKey, func() (interface{}, error) {
		if questions, ok := r.lookup(topicKey); ok {
			return questions, nil
		}

		questions, err := r.loader.LoadTopic(ctx, topicKey)
		if err != nil {
			return nil, err
		}

		if r.ttl > 0 {
			expiresAt := r.clock().Add(r.ttlWithJitter())
			r.mu.Lock()
			r.cache[topicKey] = cachedTopic{questions: questions, expiresAt: expiresAt}
			r.mu.Unlock()
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (r *BankRepository) lookup(topicKey string) ([]domain.Question, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[topicKey]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return nil, false
	}
	return entry.questions, true
}

func (r *BankRepository) ttlWithJitter() time.Duration {
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
