package mock

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/google/uuid"

	domain "github.com/bryanwahyu/automaton-trust/internal/domain/assessment"
)

// DefaultProcessingPolls is how many polls answer 202 before the canned result.
const DefaultProcessingPolls = 2

// Transport is a scripted stand-in for the assessment service. Every job
// answers ProcessingPolls times with 202 and then Complete with Result.
type Transport struct {
	ProcessingPolls int
	Result          func(sub domain.Submission) *domain.Payload

	mu   sync.Mutex
	jobs map[domain.JobID]*mockJob
}

type mockJob struct {
	polls   int
	payload *domain.Payload
}

func New(processingPolls int) *Transport {
	if processingPolls < 0 {
		processingPolls = DefaultProcessingPolls
	}
	return &Transport{ProcessingPolls: processingPolls}
}

// Submit drains the upload and returns a mock-job-xxxxxxxx id.
func (t *Transport) Submit(ctx context.Context, s domain.Submission) (domain.SubmitResponse, error) {
	if err := ctx.Err(); err != nil {
		return domain.SubmitResponse{}, &domain.TransportError{Err: err}
	}
	if s.File != nil {
		if _, err := io.Copy(io.Discard, s.File); err != nil {
			return domain.SubmitResponse{}, fmt.Errorf("read upload: %w", err)
		}
	}
	id := domain.JobID("mock-job-" + uuid.NewString()[:8])

	build := t.Result
	if build == nil {
		build = CannedPayload
	}
	t.mu.Lock()
	if t.jobs == nil {
		t.jobs = make(map[domain.JobID]*mockJob)
	}
	t.jobs[id] = &mockJob{payload: build(s)}
	t.mu.Unlock()

	return domain.SubmitResponse{JobID: id, Status: string(domain.StatusProcessing)}, nil
}

func (t *Transport) Poll(ctx context.Context, id domain.JobID) (domain.PollResponse, error) {
	if err := ctx.Err(); err != nil {
		return domain.PollResponse{}, &domain.TransportError{Err: err}
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	j, ok := t.jobs[id]
	if !ok {
		return domain.PollResponse{}, &domain.TransportError{StatusCode: http.StatusNotFound, Detail: "Job not found"}
	}
	j.polls++
	if j.polls <= t.ProcessingPolls {
		return domain.PollResponse{Ready: false, JobID: id, Status: domain.StatusProcessing}, nil
	}
	return domain.PollResponse{Ready: true, JobID: id, Status: domain.StatusComplete, Result: j.payload}, nil
}

// CannedPayload is a denied assessment scoring 45: one high risk and two
// hardcoded secrets.
func CannedPayload(s domain.Submission) *domain.Payload {
	allow := false
	return &domain.Payload{
		TrustScore: 45,
		Decision:   "deny",
		GithubURL:  s.GithubURL,
		CodeMetadata: &domain.CodeMetadata{
			FilesCount:   42,
			SecretsFound: 2,
			Extensions:   map[string]int{".py": 30, ".ts": 12},
		},
		PDFAnalysis: &domain.PDFAnalysis{
			ProjectPurpose: "Customer support chatbot that answers billing questions.",
			DataTypesUsed:  []string{"personal data", "payment history"},
			PotentialRisks: []string{"PII exposure in logs"},
			Source:         "mock",
		},
		Risks: []domain.RiskFinding{
			{Category: "Data Privacy", Severity: "High", Reason: "Personal data is stored without encryption at rest."},
			{Category: "Transparency", Severity: "Low", Reason: "Model limitations are not documented for end users."},
		},
		PoliciesMatched: []string{
			"Personal data must be encrypted at rest and in transit.",
			"Systems must document known model limitations for end users.",
		},
		OPAResult: &domain.OPAResult{
			Allow:       &allow,
			DenyReasons: []string{"Hardcoded secrets detected in repository"},
		},
	}
}
