package memory

import (
	"context"
	"sync"
	"time"

	"dotnet-quiz-service/internal/domain"
)

type handoffEntry[T any] struct {
	value     T
	expiresAt time.Time
}

// HandoffStore is an in-memory implementation of app.HandoffStore. Entries
// expire after ttl; a non-positive ttl keeps them until taken.
type HandoffStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	clock   func() time.Time
	configs map[string]handoffEntry[domain.QuizConfiguration]
	results map[string]handoffEntry[domain.QuizResult]
}

func NewHandoffStore(ttl time.Duration) *HandoffStore {
	return &HandoffStore{
		ttl:     ttl,
		clock:   time.Now,
		configs: make(map[string]handoffEntry[domain.QuizConfiguration]),
		results: make(map[string]handoffEntry[domain.QuizResult]),
	}
}

func (s *HandoffStore) SaveConfig(_ context.Context, attemptID string, cfg domain.QuizConfiguration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
	s.configs[attemptID] = handoffEntry[domain.QuizConfiguration]{value: cfg, expiresAt: s.expiry()}
	return nil
}

func (s *HandoffStore) LoadConfig(_ context.Context, attemptID string) (domain.QuizConfiguration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.configs[attemptID]
	if !ok || s.expired(entry.expiresAt) {
		delete(s.configs, attemptID)
		return domain.QuizConfiguration{}, domain.ErrConfigNotFound
	}
	return entry.value, nil
}

func (s *HandoffStore) SaveResult(_ context.Context, attemptID string, result domain.QuizResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
	s.results[attemptID] = handoffEntry[domain.QuizResult]{value: result, expiresAt: s.expiry()}
	return nil
}

func (s *HandoffStore) TakeResult(_ context.Context, attemptID string) (domain.QuizResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.results[attemptID]
	delete(s.results, attemptID)
	delete(s.configs, attemptID)
	if !ok || s.expired(entry.expiresAt) {
		return domain.QuizResult{}, domain.ErrResultNotFound
	}
	return entry.value, nil
}

// Len reports how many entries are held, expired or not.
func (s *HandoffStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.configs) + len(s.results)
}

func (s *HandoffStore) expiry() time.Time {
	if s.ttl <= 0 {
		return time.Time{}
	}
	return s.clock().Add(s.ttl)
}

func (s *HandoffStore) expired(expiresAt time.Time) bool {
	return !expiresAt.IsZero() && !expiresAt.After(s.clock())
}

// pruneLocked drops expired entries so abandoned attempts do not accumulate.
func (s *HandoffStore) pruneLocked() {
	for id, entry := range s.configs {
		if s.expired(entry.expiresAt) {
			delete(s.configs, id)
		}
	}
	for id, entry := range s.results {
		if s.expired(entry.expiresAt) {
			delete(s.results, id)
		}
	}
}
