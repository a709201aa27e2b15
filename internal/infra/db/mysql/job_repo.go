package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	domain "github.com/bryanwahyu/automaton-trust/internal/domain/assessment"
)

type JobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Save insert/update snapshot
func (r *JobRepository) Save(ctx context.Context, j *domain.Job) error {
	const q = `
INSERT INTO assessment_jobs
(id, status, github_url, trust_score, error, polls, result_json, updated_at)
VALUES (?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 status=VALUES(status), github_url=VALUES(github_url), trust_score=VALUES(trust_score),
 error=VALUES(error), polls=VALUES(polls), result_json=VALUES(result_json),
 updated_at=VALUES(updated_at);
`
	body, score, url, err := encodeResult(j.Result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	updated := j.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	_, err = r.db.ExecContext(ctx, q,
		j.ID, stringOrDash(string(j.Status)), url, score,
		sql.NullString{String: j.Error, Valid: j.Error != ""},
		j.Polls, body, updated.UTC(),
	)
	return err
}

// Get returns nil, nil when id is unknown.
func (r *JobRepository) Get(ctx context.Context, id domain.JobID) (*domain.Job, error) {
	const q = `
SELECT id, status, error, polls, result_json, updated_at
FROM assessment_jobs
WHERE id=? LIMIT 1;
`
	j, err := scanJob(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return j, err
}

// Latest snapshots, newest first
func (r *JobRepository) Latest(ctx context.Context, limit int) ([]*domain.Job, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, status, error, polls, result_json, updated_at
FROM assessment_jobs
ORDER BY updated_at DESC, id DESC LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*domain.Job, error) {
	var (
		j       domain.Job
		errText sql.NullString
		body    sql.NullString
	)
	if err := row.Scan(&j.ID, &j.Status, &errText, &j.Polls, &body, &j.UpdatedAt); err != nil {
		return nil, err
	}
	j.Error = errText.String
	res, err := decodeResult(body)
	if err != nil {
		return nil, fmt.Errorf("decode result %s: %w", j.ID, err)
	}
	j.Result = res
	return &j, nil
}
