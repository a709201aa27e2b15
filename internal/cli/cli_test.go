package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestCmd() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	return cmd, &buf
}

func TestRunLedgerEnvelope(t *testing.T) {
	ledgerResult = writeFile(t, "poll.json", `{
  "job_id": "j1",
  "status": "Complete",
  "result": {
    "trust_score": 50,
    "github_url": "https://github.com/acme/widget",
    "code_metadata": {"secrets_found": 1},
    "risks": [
      {"category": "Privacy", "severity": "HIGH", "reason": "Stores personal data unencrypted"},
      {"category": "Bias", "severity": "medium", "reason": "Training data imbalance"},
      {"category": "Docs", "severity": "low", "reason": "Sparse readme"}
    ],
    "policies_matched": ["Personal data must be encrypted at rest."],
    "opa_result": {"opa_unavailable": true}
  }
}`)
	ledgerFormat = "text"
	cmd, out := newTestCmd()

	if err := runLedger(cmd, nil); err != nil {
		t.Fatalf("runLedger: %v", err)
	}
	got := out.String()
	for _, want := range []string{
		"Trust score 50/100  Blocked  (deny)",
		"High Severity Risk: Privacy",
		"Medium Severity Risk: Bias",
		"Hardcoded Secrets Found (1)",
		"policy: Personal data must be encrypted at rest.",
		"[fail] Zero Hardcoded Secrets",
		"Policy engine was unavailable",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Severity Risk: Docs") {
		t.Error("low severity risk must not appear in the ledger")
	}
}

func TestRunLedgerBarePayloadJSON(t *testing.T) {
	ledgerResult = writeFile(t, "payload.json", `{"trust_score": 90, "decision": "allow"}`)
	ledgerFormat = "json"
	cmd, out := newTestCmd()

	if err := runLedger(cmd, nil); err != nil {
		t.Fatalf("runLedger: %v", err)
	}
	if !strings.Contains(out.String(), `"band": "High Trust"`) {
		t.Errorf("unexpected json output:\n%s", out.String())
	}
}

func TestDecodePayloadRejectsProcessing(t *testing.T) {
	if _, err := decodePayload([]byte(`{"job_id":"j1","status":"Processing"}`)); err == nil {
		t.Fatal("expected error for non-complete envelope")
	}
	if _, err := decodePayload([]byte(`not json`)); err == nil {
		t.Fatal("expected error for malformed json")
	}
}

func TestRunSubmitValidation(t *testing.T) {
	useMock = true
	submitURL = "https://github.com/acme/widget"
	submitFile = ""
	submitWatch = false
	cmd, _ := newTestCmd()

	err := runSubmit(cmd, nil)
	if err == nil || err.Error() != "Please upload a PDF document." {
		t.Fatalf("expected missing file error, got %v", err)
	}
}

func TestRunSubmitWatchMock(t *testing.T) {
	useMock = true
	pollInterval = 5 * time.Millisecond
	submitURL = "https://github.com/acme/widget"
	submitFile = writeFile(t, "design.pdf", "%PDF-1.7")
	submitWatch = true
	cmd, out := newTestCmd()

	if err := runSubmit(cmd, nil); err != nil {
		t.Fatalf("runSubmit: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "Job mock-job-") || !strings.Contains(got, "Trust score 45/100  Blocked  (deny)") {
		t.Errorf("unexpected output:\n%s", got)
	}
}
