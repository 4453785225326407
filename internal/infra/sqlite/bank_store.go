package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"dotnet-quiz-service/internal/bank"
	"dotnet-quiz-service/internal/domain"
	_ "github.com/mattn/go-sqlite3"
)

// BankStore keeps the question bank in a SQLite file, one row per question.
type BankStore struct {
	db *sql.DB
}

func NewBankStore(path string) (*BankStore, error) {
	if strings.TrimSpace(path) == "" {
		path = "questions.db"
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	store := &BankStore{db: db}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *BankStore) Close() error {
	return s.db.Close()
}

func (s *BankStore) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS questions (
			topic_key TEXT NOT NULL,
			position INTEGER NOT NULL,
			prompt TEXT NOT NULL,
			options_json TEXT NOT NULL,
			correct_index INTEGER NOT NULL,
			explanation TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (topic_key, position)
		);`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Seed replaces the stored questions of every topic present in b.
func (s *BankStore) Seed(ctx context.Context, b bank.Bank) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	for _, key := range b.Keys() {
		if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE topic_key = ?`, key); err != nil {
			return 0, err
		}
		for pos, q := range b[key] {
			options, err := json.Marshal(q.Options)
			if err != nil {
				return 0, err
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO questions (topic_key, position, prompt, options_json, correct_index, explanation) VALUES (?, ?, ?, ?, ?, ?)`,
				key, pos, q.Text, string(options), q.CorrectIndex, q.Explanation,
			)
			if err != nil {
				return 0, fmt.Errorf("insert %s[%d]: %w", key, pos, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(b), nil
}

func (s *BankStore) LoadTopic(ctx context.Context, topicKey string) ([]domain.Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT prompt, options_json, correct_index, explanation FROM questions WHERE topic_key = ? ORDER BY position`,
		topicKey,
	)
	if err != nil {
		return nil, fmt.Errorf("load topic: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var (
			q       domain.Question
			options string
		)
		if err := rows.Scan(&q.Text, &options, &q.CorrectIndex, &q.Explanation); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(options), &q.Options); err != nil {
			return nil, fmt.Errorf("decode options: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
