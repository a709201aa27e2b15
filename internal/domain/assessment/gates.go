package assessment

import "fmt"

// GateCheck is one row of the policy rule checklist.
type GateCheck struct {
	Label  string `json:"label"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// Caveat is a non-fatal note about a degraded payload.
type Caveat string

const (
	CaveatOPAUnavailable Caveat = "Policy engine was unavailable; the policy verdict was not evaluated."
	CaveatPDFFallback    Caveat = "Document analysis used a fallback; extracted details may be incomplete."
)

// CheckGates mirrors the two deterministic rules the policy engine enforces so
// the reader can see which one tripped.
func CheckGates(p *Payload) []GateCheck {
	secrets := p.SecretsFound()
	high := 0
	if p != nil {
		for _, r := range p.Risks {
			if r.Level() == SeverityHigh {
				high++
			}
		}
	}

	secretsGate := GateCheck{Label: "Zero Hardcoded Secrets", Passed: secrets == 0}
	if secrets > 0 {
		secretsGate.Detail = fmt.Sprintf("%d hardcoded secret(s) detected in the repository.", secrets)
	} else {
		secretsGate.Detail = "No hardcoded secrets were found in the repository."
	}

	riskGate := GateCheck{Label: "No High-Severity Risks", Passed: high == 0}
	if high > 0 {
		riskGate.Detail = fmt.Sprintf("%d high-severity risk(s) identified by the LLM.", high)
	} else {
		riskGate.Detail = "No high-severity risks were flagged during analysis."
	}

	return []GateCheck{secretsGate, riskGate}
}

// Caveats lists the degraded-payload notes. The assessment is still complete.
func Caveats(p *Payload) []Caveat {
	var out []Caveat
	if p == nil {
		return out
	}
	if p.OPAResult != nil && p.OPAResult.OPAUnavailable {
		out = append(out, CaveatOPAUnavailable)
	}
	if p.PDFAnalysis != nil && p.PDFAnalysis.FallbackUsed {
		out = append(out, CaveatPDFFallback)
	}
	return out
}
