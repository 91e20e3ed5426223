package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// SlotStore keeps named blobs in the slots table. Read on a missing key
// returns an error wrapping sql.ErrNoRows.
type SlotStore struct {
	DB *sqlx.DB
}

type slotRow struct {
	Key       string `db:"key"`
	Value     []byte `db:"value"`
	CreatedAt int64  `db:"created_at"`
	UpdatedAt int64  `db:"updated_at"`
}

func NewSlotStore(db *sqlx.DB) *SlotStore {
	return &SlotStore{DB: db}
}

func (s *SlotStore) Read(ctx context.Context, key string) ([]byte, error) {
	var row slotRow
	if err := s.DB.GetContext(ctx, &row, "SELECT key, value, created_at, updated_at FROM slots WHERE key = ?", key); err != nil {
		return nil, fmt.Errorf("read slot %q: %w", key, err)
	}
	return row.Value, nil
}

func (s *SlotStore) Write(ctx context.Context, key string, data []byte) error {
	now := time.Now().UnixNano()
	_, err := s.DB.NamedExecContext(ctx, `
		INSERT INTO slots (key, value, created_at, updated_at)
		VALUES (:key, :value, :created_at, :updated_at)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		slotRow{Key: key, Value: data, CreatedAt: now, UpdatedAt: now},
	)
	if err != nil {
		return fmt.Errorf("write slot %q: %w", key, err)
	}
	return nil
}

func (s *SlotStore) Delete(ctx context.Context, key string) error {
	if _, err := s.DB.ExecContext(ctx, "DELETE FROM slots WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete slot %q: %w", key, err)
	}
	return nil
}

func (s *SlotStore) Keys(ctx context.Context) ([]string, error) {
	keys := []string{}
	if err := s.DB.SelectContext(ctx, &keys, "SELECT key FROM slots ORDER BY key"); err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return keys, nil
}
