package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"flashquiz/internal/domain"
)

// BankLoader loads the full question bank from Postgres at startup. Each row
// of the topics table holds one topic's question list as JSONB.
type BankLoader struct {
	pool *pgxpool.Pool
}

func NewBankLoader(pool *pgxpool.Pool) *BankLoader {
	return &BankLoader{pool: pool}
}

// LoadBank fetches and validates every topic. The bank is immutable
// afterwards; a failed load aborts startup.
func (l *BankLoader) LoadBank(ctx context.Context, minPerTopic int) (domain.Bank, error) {
	rows, err := l.pool.Query(ctx, `SELECT topic, data FROM topics`)
	if err != nil {
		return nil, fmt.Errorf("load topics: %w", err)
	}
	defer rows.Close()

	bank := make(domain.Bank)
	for rows.Next() {
		var topic string
		var raw []byte
		if err := rows.Scan(&topic, &raw); err != nil {
			return nil, fmt.Errorf("scan topic row: %w", err)
		}
		var questions []domain.Question
		if err := json.Unmarshal(raw, &questions); err != nil {
			return nil, fmt.Errorf("unmarshal topic %q: %w", topic, err)
		}
		bank[topic] = questions
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate topics: %w", err)
	}

	if err := bank.Validate(minPerTopic); err != nil {
		return nil, err
	}
	return bank, nil
}
