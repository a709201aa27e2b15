package assessment

import "fmt"

const (
	BaseScore          = 100
	DeductionHigh      = 25
	DeductionMedium    = 10
	DeductionPerSecret = 15
)

// Deduction is one row of the score ledger. Amount is always positive.
type Deduction struct {
	Label  string `json:"label"`
	Amount int    `json:"amount"`
}

// Ledger is the client-side reconstruction of the trust score.
type Ledger struct {
	Base       int         `json:"base"`
	Entries    []Deduction `json:"entries"`
	FinalScore int         `json:"final_score"`
}

// Total returns the sum of all deductions.
func (l Ledger) Total() int {
	sum := 0
	for _, d := range l.Entries {
		sum += d.Amount
	}
	return sum
}

// ComputeLedger rebuilds the deduction ledger from the risk list and the secret
// count. Entries follow risk order with the aggregated secrets row last; low and
// unknown severities produce no row. It must agree with the server's scoring.
func ComputeLedger(risks []RiskFinding, secrets int) Ledger {
	entries := make([]Deduction, 0, len(risks)+1)
	for _, r := range risks {
		switch r.Level() {
		case SeverityHigh:
			entries = append(entries, Deduction{
				Label:  "High Severity Risk: " + r.Category,
				Amount: DeductionHigh,
			})
		case SeverityMedium:
			entries = append(entries, Deduction{
				Label:  "Medium Severity Risk: " + r.Category,
				Amount: DeductionMedium,
			})
		}
	}
	if secrets > 0 {
		entries = append(entries, Deduction{
			Label:  fmt.Sprintf("Hardcoded Secrets Found (%d)", secrets),
			Amount: secrets * DeductionPerSecret,
		})
	}

	l := Ledger{Base: BaseScore, Entries: entries}
	l.FinalScore = BaseScore - l.Total()
	if l.FinalScore < 0 {
		l.FinalScore = 0
	}
	return l
}
