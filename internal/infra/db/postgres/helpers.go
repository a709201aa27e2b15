package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	domain "github.com/bryanwahyu/automaton-trust/internal/domain/assessment"
)

// saveArgs maps a snapshot onto the $1..$8 placeholders of the upsert.
func saveArgs(j *domain.Job, now time.Time) ([]any, error) {
	var (
		body  sql.NullString
		score sql.NullInt64
		url   string
	)
	if j.Result != nil {
		b, err := json.Marshal(j.Result)
		if err != nil {
			return nil, fmt.Errorf("encode result: %w", err)
		}
		body = sql.NullString{String: string(b), Valid: true}
		score = sql.NullInt64{Int64: int64(j.Result.TrustScore), Valid: true}
		url = j.Result.GithubURL
	}
	updated := j.UpdatedAt
	if updated.IsZero() {
		updated = now
	}
	return []any{
		string(j.ID), string(j.Status), url, score,
		sql.NullString{String: j.Error, Valid: j.Error != ""},
		j.Polls, body, updated,
	}, nil
}

// decodeResult turns a jsonb column back into a payload; NULL yields nil.
func decodeResult(body []byte) (*domain.Payload, error) {
	if len(body) == 0 {
		return nil, nil
	}
	var p domain.Payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
