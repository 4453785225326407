package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"dotnet-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// BankLoader loads a topic's question list from the question_banks JSONB column.
type BankLoader struct {
	pool *pgxpool.Pool
}

func NewBankLoader(pool *pgxpool.Pool) *BankLoader {
	return &BankLoader{pool: pool}
}

// LoadTopic returns no questions (and no error) for an unknown topic key.
func (l *BankLoader) LoadTopic(ctx context.Context, topicKey string) ([]domain.Question, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT questions FROM question_banks WHERE topic_key=$1`, topicKey).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load topic: %w", err)
	}
	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("unmarshal topic: %w", err)
	}
	return questions, nil
}
