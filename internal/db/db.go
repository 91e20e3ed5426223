package db

import (
	"context"
	"embed"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaFS embed.FS

const (
	busyTimeout  = 5000 // milliseconds
	maxOpenConns = 4
	pingRetries  = 3
	pingWait     = 100 * time.Millisecond
)

func Open(path string) (*sqlx.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("db path is required")
	}

	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)", path, busyTimeout)
	}

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if path == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(maxOpenConns)
	}

	ctx := context.Background()
	if err := ping(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := applySchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func ping(ctx context.Context, db *sqlx.DB) error {
	var err error
	for attempt := 0; attempt < pingRetries; attempt++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		time.Sleep(pingWait * time.Duration(attempt+1))
	}
	return fmt.Errorf("ping database: %w", err)
}

func applySchema(ctx context.Context, db *sqlx.DB) error {
	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}

	if _, err := db.ExecContext(ctx, string(schemaSQL)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	return nil
}
