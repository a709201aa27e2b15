package assessment

import (
	"context"
	"io"
)

// Submission is a validated assessment request.
type Submission struct {
	GithubURL string
	FileName  string
	File      io.Reader
}

// SubmitResponse body dari POST /api/v1/assess
type SubmitResponse struct {
	JobID  JobID  `json:"job_id"`
	Status string `json:"status"`
}

// PollResponse is one observation of a job. Ready is false for HTTP 202.
type PollResponse struct {
	Ready  bool     `json:"-"`
	JobID  JobID    `json:"job_id"`
	Status Status   `json:"status"`
	Result *Payload `json:"result,omitempty"`
}

// Transport port (interface ke assessment service upstream).
// Live HTTP and mock implementations live under infra.
type Transport interface {
	Submit(ctx context.Context, s Submission) (SubmitResponse, error)
	Poll(ctx context.Context, id JobID) (PollResponse, error)
}

// Repository port untuk snapshot job yang sudah terminal
type Repository interface {
	Save(ctx context.Context, j *Job) error
	Get(ctx context.Context, id JobID) (*Job, error)
	Latest(ctx context.Context, limit int) ([]*Job, error)
}

// ReportArchive port untuk menyimpan raw result JSON
type ReportArchive interface {
	Put(ctx context.Context, key string, body []byte) (string, error)
}
