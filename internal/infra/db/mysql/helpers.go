package mysql

import (
	"database/sql"
	"encoding/json"
	"strings"

	domain "github.com/bryanwahyu/automaton-trust/internal/domain/assessment"
)

// stringOrDash returns "-" when the input is empty/whitespace
func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// encodeResult flattens the payload into nullable columns.
func encodeResult(p *domain.Payload) (body sql.NullString, score sql.NullInt64, url string, err error) {
	if p == nil {
		return body, score, "", nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return body, score, "", err
	}
	return sql.NullString{String: string(b), Valid: true},
		sql.NullInt64{Int64: int64(p.TrustScore), Valid: true},
		p.GithubURL, nil
}

func decodeResult(body sql.NullString) (*domain.Payload, error) {
	if !body.Valid || body.String == "" {
		return nil, nil
	}
	var p domain.Payload
	if err := json.Unmarshal([]byte(body.String), &p); err != nil {
		return nil, err
	}
	return &p, nil
}
