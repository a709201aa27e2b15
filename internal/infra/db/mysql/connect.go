package mysql

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Connect opens a pool and pings it. The DSN must carry parseTime=true.
func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	// test ping
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
  id          VARCHAR(64)  NOT NULL PRIMARY KEY,
  status      VARCHAR(16)  NOT NULL,
  github_url  VARCHAR(512) NOT NULL DEFAULT '',
  trust_score INT          NULL,
  error       TEXT         NULL,
  polls       INT          NOT NULL DEFAULT 0,
  result_json JSON         NULL,
  updated_at  DATETIME(6)  NOT NULL,
  INDEX idx_assessment_jobs_updated (updated_at)
)`

// Migrate creates the snapshot table when missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
