package store

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS sections (
		id INT PRIMARY KEY,
		course TEXT NOT NULL,
		section TEXT NOT NULL,
		domain TEXT NOT NULL DEFAULT '',
		code TEXT NOT NULL,
		title TEXT NOT NULL,
		more TEXT NOT NULL DEFAULT '',
		view_grid JSONB NOT NULL DEFAULT '{}'::jsonb
	)`,
	`CREATE TABLE IF NOT EXISTS leclabs (
		section_id INT NOT NULL REFERENCES sections(id) ON DELETE CASCADE,
		position INT NOT NULL,
		title TEXT NOT NULL,
		kind TEXT NOT NULL,
		professor TEXT NOT NULL DEFAULT '',
		times JSONB NOT NULL DEFAULT '{}'::jsonb,
		PRIMARY KEY (section_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS ratings (
		professor TEXT PRIMARY KEY,
		score DOUBLE PRECISION NOT NULL,
		avg DOUBLE PRECISION NOT NULL,
		num_ratings INT NOT NULL,
		take_again INT NOT NULL,
		difficulty DOUBLE PRECISION NOT NULL,
		status TEXT NOT NULL,
		pid TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS professor_pids (
		professor TEXT PRIMARY KEY,
		pid TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS leclabs_professor_idx ON leclabs (professor)`,
}

// Bootstrap creates the tables if they do not exist.
func Bootstrap(ctx context.Context, db *DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap schema: %w", err)
		}
	}
	return nil
}
