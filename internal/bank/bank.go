package bank

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"dotnet-quiz-service/internal/domain"
)

// MetaKeys are reserved top-level keys in the question bank file that carry no questions.
var MetaKeys = []string{"author", "site", "built", "credit", "keywords"}

// Bank maps topic keys to their questions.
type Bank map[string][]domain.Question

// IsMetaKey reports whether key is a reserved metadata key.
func IsMetaKey(key string) bool {
	for _, k := range MetaKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Parse decodes a question bank document, skipping metadata keys.
func Parse(data []byte) (Bank, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode question bank: %w", err)
	}
	b := make(Bank, len(raw))
	for key, value := range raw {
		if IsMetaKey(key) {
			continue
		}
		var questions []domain.Question
		if err := json.Unmarshal(value, &questions); err != nil {
			return nil, fmt.Errorf("decode topic %q: %w", key, err)
		}
		b[key] = questions
	}
	return b, nil
}

// LoadFile reads and parses a question bank file.
func LoadFile(path string) (Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}
	return Parse(data)
}

// Keys returns the topic keys in sorted order.
func (b Bank) Keys() []string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MissingTopics lists the supported topic labels that have no questions in b.
func (b Bank) MissingTopics() []string {
	var missing []string
	for _, t := range domain.Topics() {
		if len(b[t.Key]) == 0 {
			missing = append(missing, t.Label)
		}
	}
	return missing
}

// Loader serves topics from a bank held in memory. Unknown topics yield no questions.
type Loader struct {
	bank Bank
}

func NewLoader(b Bank) *Loader {
	return &Loader{bank: b}
}

func (l *Loader) LoadTopic(_ context.Context, key string) ([]domain.Question, error) {
	return l.bank[key], nil
}
