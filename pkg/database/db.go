package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"taskboard/config"

	_ "github.com/lib/pq"
)

// Connect - opens the PostgreSQL pool and checks it is reachable
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Connected to PostgreSQL %s:%s/%s", cfg.Host, cfg.Port, cfg.Name)
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id              SERIAL PRIMARY KEY,
		username        VARCHAR(255) NOT NULL UNIQUE,
		email           VARCHAR(255) NOT NULL UNIQUE,
		name            VARCHAR(255) NOT NULL DEFAULT '',
		hashed_password VARCHAR(255) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id       SERIAL PRIMARY KEY,
		text     TEXT NOT NULL CHECK (text <> ''),
		owner_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS tasks_owner_id_idx ON tasks (owner_id)`,
}

// Migrate - creates the tables if they do not exist yet. Safe to run on every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	log.Println("Database schema is up to date")
	return nil
}
