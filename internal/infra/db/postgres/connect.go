package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
)

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS assessment_jobs (
  id          VARCHAR(64)  PRIMARY KEY,
  status      VARCHAR(16)  NOT NULL,
  github_url  VARCHAR(512) NOT NULL DEFAULT '',
  trust_score INTEGER      NULL,
  error       TEXT         NULL,
  polls       INTEGER      NOT NULL DEFAULT 0,
  result_json JSONB        NULL,
  updated_at  TIMESTAMPTZ  NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_assessment_jobs_updated ON assessment_jobs (updated_at DESC);`

// Migrate creates the snapshot table when missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
