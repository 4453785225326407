package postgres

import (
	"context"
	"fmt"
	"time"

	"dotnet-quiz-service/internal/bank"
	"dotnet-quiz-service/internal/domain"
	"github.com/uptrace/bun"
)

// QuestionBankRow is the bun model for one topic in question_banks.
type QuestionBankRow struct {
	bun.BaseModel `bun:"table:question_banks"`

	TopicKey  string            `bun:"topic_key,pk"`
	Questions []domain.Question `bun:"questions,type:jsonb"`
	UpdatedAt time.Time         `bun:"updated_at,notnull"`
}

// Seed upserts every topic of b into question_banks and returns the number of topics written.
func Seed(ctx context.Context, db *bun.DB, b bank.Bank) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	rows := make([]QuestionBankRow, 0, len(b))
	for _, key := range b.Keys() {
		rows = append(rows, QuestionBankRow{TopicKey: key, Questions: b[key], UpdatedAt: now})
	}

	_, err := db.NewInsert().
		Model(&rows).
		On("CONFLICT (topic_key) DO UPDATE").
		Set("questions = EXCLUDED.questions").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed question banks: %w", err)
	}
	return len(rows), nil
}
