package assessment

import (
	"errors"
	"fmt"
	"testing"
)

func TestBuildReportFull(t *testing.T) {
	p := &Payload{
		TrustScore: 45,
		GithubURL:  "https://github.com/acme/widget",
		CodeMetadata: &CodeMetadata{
			FilesCount:   12,
			SecretsFound: 1,
		},
		PDFAnalysis: &PDFAnalysis{ProjectPurpose: "chatbot", FallbackUsed: true},
		Risks: []RiskFinding{
			{Category: "Privacy", Severity: "high", Reason: "Personal data retained"},
			{Category: "Transparency", Severity: "medium", Reason: "No disclosure"},
		},
		PoliciesMatched: testPolicies,
		OPAResult: &OPAResult{
			Allow:          boolPtr(false),
			DenyReasons:    []string{"secrets present"},
			OPAUnavailable: true,
		},
	}

	r := BuildReport(p)
	if r.Ledger.FinalScore != 50 {
		t.Errorf("expected ledger 50, got %d", r.Ledger.FinalScore)
	}
	if r.LedgerAgrees {
		t.Error("ledger 50 should not agree with server score 45")
	}
	if r.Decision != DecisionDeny || r.Band != BandBlocked {
		t.Errorf("expected deny/Blocked, got %s/%s", r.Decision, r.Band)
	}
	if len(r.Matches) != 2 {
		t.Errorf("expected 2 matches, got %d", len(r.Matches))
	}
	if len(r.Caveats) != 2 {
		t.Errorf("expected 2 caveats, got %v", r.Caveats)
	}
	if len(r.DenyReasons) != 1 {
		t.Errorf("expected deny reasons to be carried, got %v", r.DenyReasons)
	}
	if r.Gates[0].Passed || r.Gates[1].Passed {
		t.Errorf("both gates should fail: %+v", r.Gates)
	}
}

func TestBuildReportMinimal(t *testing.T) {
	r := BuildReport(&Payload{TrustScore: 100})
	if !r.LedgerAgrees {
		t.Error("empty payload with score 100 should agree")
	}
	if r.Decision != DecisionAllow || r.Band != BandHigh {
		t.Errorf("expected allow/High Trust, got %s/%s", r.Decision, r.Band)
	}
	if len(r.Caveats) != 0 || len(r.Matches) != 0 {
		t.Errorf("unexpected caveats or matches: %+v", r)
	}
	for _, g := range r.Gates {
		if !g.Passed {
			t.Errorf("gate %q should pass", g.Label)
		}
	}

	nilReport := BuildReport(nil)
	if nilReport.Decision != DecisionDeny {
		t.Errorf("nil payload should be deny, got %s", nilReport.Decision)
	}
}

func TestFailureMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"detail wins", &TransportError{StatusCode: 500, Detail: "PDF unreadable", Err: errors.New("boom")}, "PDF unreadable"},
		{"raw error", &TransportError{Err: errors.New("connection refused")}, "connection refused"},
		{"wrapped", fmt.Errorf("poll: %w", &TransportError{Detail: "gone"}), "gone"},
		{"status only", &TransportError{StatusCode: 404}, "Request failed with status code 404"},
		{"empty", &TransportError{}, FallbackTransportMessage},
		{"plain error", errors.New("dial tcp"), "dial tcp"},
		{"nil", nil, FallbackTransportMessage},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := FailureMessage(tc.err); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFailedResultMessage(t *testing.T) {
	if got := FailedResultMessage(&Payload{Error: "clone failed"}); got != "clone failed" {
		t.Errorf("got %q", got)
	}
	if got := FailedResultMessage(nil); got != FallbackFailedMessage {
		t.Errorf("got %q", got)
	}
}
