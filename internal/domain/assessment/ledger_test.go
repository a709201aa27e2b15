package assessment

import (
	"reflect"
	"testing"
)

func TestComputeLedgerEmpty(t *testing.T) {
	l := ComputeLedger(nil, 0)
	if len(l.Entries) != 0 {
		t.Fatalf("expected no entries, got %v", l.Entries)
	}
	if l.FinalScore != 100 {
		t.Errorf("expected 100, got %d", l.FinalScore)
	}
	if l.Base != BaseScore {
		t.Errorf("expected base %d, got %d", BaseScore, l.Base)
	}
}

func TestComputeLedgerSingleHigh(t *testing.T) {
	l := ComputeLedger([]RiskFinding{{Category: "X", Severity: "high", Reason: "r"}}, 0)
	if l.FinalScore != 75 {
		t.Errorf("expected 75, got %d", l.FinalScore)
	}
	want := []Deduction{{Label: "High Severity Risk: X", Amount: 25}}
	if !reflect.DeepEqual(l.Entries, want) {
		t.Errorf("entries = %v, want %v", l.Entries, want)
	}
}

func TestComputeLedgerMediumWithSecrets(t *testing.T) {
	l := ComputeLedger([]RiskFinding{{Category: "X", Severity: "medium", Reason: "r"}}, 2)
	if l.FinalScore != 60 {
		t.Errorf("expected 60, got %d", l.FinalScore)
	}
	want := []Deduction{
		{Label: "Medium Severity Risk: X", Amount: 10},
		{Label: "Hardcoded Secrets Found (2)", Amount: 30},
	}
	if !reflect.DeepEqual(l.Entries, want) {
		t.Errorf("entries = %v, want %v", l.Entries, want)
	}
}

func TestComputeLedgerOrderAndSkipsLow(t *testing.T) {
	risks := []RiskFinding{
		{Category: "Privacy", Severity: "Medium"},
		{Category: "Logging", Severity: "low"},
		{Category: "Bias", Severity: "HIGH"},
		{Category: "Other", Severity: "critical"},
	}
	l := ComputeLedger(risks, 1)
	labels := make([]string, 0, len(l.Entries))
	for _, e := range l.Entries {
		labels = append(labels, e.Label)
		if e.Amount <= 0 {
			t.Errorf("entry %q has non-positive amount %d", e.Label, e.Amount)
		}
	}
	want := []string{
		"Medium Severity Risk: Privacy",
		"High Severity Risk: Bias",
		"Hardcoded Secrets Found (1)",
	}
	if !reflect.DeepEqual(labels, want) {
		t.Errorf("labels = %v, want %v", labels, want)
	}
	if l.FinalScore != 50 {
		t.Errorf("expected 50, got %d", l.FinalScore)
	}
}

func TestComputeLedgerNegativeSecretsIgnored(t *testing.T) {
	l := ComputeLedger(nil, -3)
	if len(l.Entries) != 0 || l.FinalScore != 100 {
		t.Errorf("unexpected ledger for negative secrets: %+v", l)
	}
}

func TestComputeLedgerScoreRange(t *testing.T) {
	sev := []string{"high", "medium", "low", "", "bogus"}
	for n := 0; n < 12; n++ {
		for s := 0; s < 10; s++ {
			risks := make([]RiskFinding, n)
			for i := range risks {
				risks[i] = RiskFinding{Category: "c", Severity: sev[(i+n)%len(sev)]}
			}
			l := ComputeLedger(risks, s)
			if l.FinalScore < 0 || l.FinalScore > 100 {
				t.Fatalf("score %d out of range for n=%d s=%d", l.FinalScore, n, s)
			}
		}
	}
}

func TestComputeLedgerIdempotent(t *testing.T) {
	risks := []RiskFinding{
		{Category: "A", Severity: "high", Reason: "a"},
		{Category: "B", Severity: "medium", Reason: "b"},
	}
	before := append([]RiskFinding(nil), risks...)

	first := ComputeLedger(risks, 3)
	second := ComputeLedger(risks, 3)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("ledger differs between calls: %+v vs %+v", first, second)
	}
	if !reflect.DeepEqual(risks, before) {
		t.Error("ComputeLedger mutated its input")
	}
}

// serverCases are outputs of the backend's calculate_trust_score for the same
// inputs. The client ledger has to land on the identical number.
var serverCases = []struct {
	name    string
	risks   []RiskFinding
	secrets int
	server  int
}{
	{"perfect", nil, 0, 100},
	{"mixed", []RiskFinding{{Severity: "Medium"}}, 1, 75},
	{"floor", []RiskFinding{{Severity: "High"}, {Severity: "High"}, {Severity: "High"}, {Severity: "High"}, {Severity: "High"}}, 0, 0},
	{"secrets only", nil, 4, 40},
	{"many secrets", nil, 7, 0},
	{"high and medium", []RiskFinding{{Severity: "high"}, {Severity: "medium"}, {Severity: "Low"}}, 0, 65},
	{"exact zero", []RiskFinding{{Severity: "High"}, {Severity: "High"}, {Severity: "High"}}, 1, 10},
	{"odd casing", []RiskFinding{{Severity: "hIGH"}, {Severity: "MEDIUM"}}, 2, 35},
}

func TestComputeLedgerServerParity(t *testing.T) {
	for _, tc := range serverCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeLedger(tc.risks, tc.secrets).FinalScore
			if got != tc.server {
				t.Errorf("client %d != server %d", got, tc.server)
			}
		})
	}
}
