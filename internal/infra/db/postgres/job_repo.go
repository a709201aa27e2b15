package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	domain "github.com/bryanwahyu/automaton-trust/internal/domain/assessment"
)

type JobRepository struct{ db *sql.DB }

func NewJobRepository(db *sql.DB) *JobRepository { return &JobRepository{db: db} }

// Save insert/update snapshot
func (r *JobRepository) Save(ctx context.Context, j *domain.Job) error {
	const q = `
INSERT INTO assessment_jobs
(id, status, github_url, trust_score, error, polls, result_json, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO UPDATE SET
 status = EXCLUDED.status,
 github_url = EXCLUDED.github_url,
 trust_score = EXCLUDED.trust_score,
 error = EXCLUDED.error,
 polls = EXCLUDED.polls,
 result_json = EXCLUDED.result_json,
 updated_at = EXCLUDED.updated_at;`

	args, err := saveArgs(j, time.Now())
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q, args...)
	return err
}

// Get returns nil, nil when id is unknown.
func (r *JobRepository) Get(ctx context.Context, id domain.JobID) (*domain.Job, error) {
	const q = `
SELECT id, status, error, polls, result_json, updated_at
FROM assessment_jobs
WHERE id=$1
LIMIT 1;`
	j, err := scanJob(r.db.QueryRowContext(ctx, q, string(id)))
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
ORDER BY updated_at DESC, id DESC
LIMIT $1;`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func scanJob(row interface{ Scan(...any) error }) (*domain.Job, error) {
	var (
		j       domain.Job
		errText sql.NullString
		body    []byte
	)
	if err := row.Scan(&j.ID, &j.Status, &errText, &j.Polls, &body, &j.UpdatedAt); err != nil {
		return nil, err
	}
	j.Error = errText.String
	p, err := decodeResult(body)
	if err != nil {
		return nil, fmt.Errorf("decode result %s: %w", j.ID, err)
	}
	j.Result = p
	return &j, nil
}
