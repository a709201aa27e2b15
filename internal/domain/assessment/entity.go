package assessment

import (
	"strings"
	"time"
)

// JobID identifier yang diberikan server upstream
type JobID string

// Status enum
type Status string

const (
	StatusProcessing Status = "Processing"
	StatusComplete   Status = "Complete"
	StatusFailed     Status = "Failed"
)

// Terminal reports whether no further transition can happen from s.
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusFailed
}

// Severity enum untuk RiskFinding
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// ParseSeverity is case-insensitive; anything unrecognised is low.
func ParseSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return SeverityHigh
	case "medium":
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// RiskFinding is one risk flagged by the upstream LLM stage.
type RiskFinding struct {
	Category string `json:"category"`
	Severity string `json:"severity"`
	Reason   string `json:"reason"`
}

// Level returns the normalised severity of the finding.
func (r RiskFinding) Level() Severity { return ParseSeverity(r.Severity) }

// CodeMetadata value object dari git scanner
type CodeMetadata struct {
	FilesCount   int            `json:"files_count,omitempty"`
	SecretsFound int            `json:"secrets_found,omitempty"`
	Extensions   map[string]int `json:"extensions,omitempty"`
}

// PDFAnalysis value object dari PDF parser
type PDFAnalysis struct {
	ProjectPurpose string   `json:"project_purpose,omitempty"`
	DataTypesUsed  []string `json:"data_types_used,omitempty"`
	PotentialRisks []string `json:"potential_risks,omitempty"`
	Source         string   `json:"source,omitempty"`
	FallbackUsed   bool     `json:"fallback_used,omitempty"`
}

// OPAResult is the policy engine verdict embedded in the payload.
// Allow is a pointer because an absent verdict must not read as deny.
type OPAResult struct {
	Allow          *bool    `json:"allow,omitempty"`
	DenyReasons    []string `json:"deny_reasons,omitempty"`
	OPAUnavailable bool     `json:"opa_unavailable,omitempty"`
}

// Payload is the result object of a terminal job. For Failed jobs only Error is
// usually populated.
type Payload struct {
	TrustScore      int           `json:"trust_score"`
	Decision        string        `json:"decision,omitempty"`
	GithubURL       string        `json:"github_url,omitempty"`
	CodeMetadata    *CodeMetadata `json:"code_metadata,omitempty"`
	PDFAnalysis     *PDFAnalysis  `json:"pdf_analysis,omitempty"`
	Risks           []RiskFinding `json:"risks,omitempty"`
	PoliciesMatched []string      `json:"policies_matched,omitempty"`
	OPAResult       *OPAResult    `json:"opa_result,omitempty"`
	Error           string        `json:"error,omitempty"`
}

// SecretsFound returns code_metadata.secrets_found, zero when absent.
func (p *Payload) SecretsFound() int {
	if p == nil || p.CodeMetadata == nil {
		return 0
	}
	return p.CodeMetadata.SecretsFound
}

// Aggregate Root: Job
type Job struct {
	ID        JobID     `json:"job_id"`
	Status    Status    `json:"status"`
	Result    *Payload  `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
	Polls     int       `json:"polls"`
	UpdatedAt time.Time `json:"updated_at"`
}
