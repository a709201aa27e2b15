package assessment

// Report is the display-ready view of a completed assessment. It is derived
// fresh from the raw payload every time and never stored on its own.
type Report struct {
	GithubURL    string        `json:"github_url,omitempty"`
	TrustScore   int           `json:"trust_score"`
	Ledger       Ledger        `json:"ledger"`
	LedgerAgrees bool          `json:"ledger_agrees"`
	Decision     Decision      `json:"decision"`
	Band         Band          `json:"band"`
	Matches      []PolicyMatch `json:"matches"`
	Gates        []GateCheck   `json:"gates"`
	DenyReasons  []string      `json:"deny_reasons,omitempty"`
	Caveats      []Caveat      `json:"caveats,omitempty"`
	CodeMetadata CodeMetadata  `json:"code_metadata"`
	PDFAnalysis  PDFAnalysis   `json:"pdf_analysis"`
}

// BuildReport derives every display value from p. Missing optional fields
// default to empty values.
func BuildReport(p *Payload) Report {
	if p == nil {
		p = &Payload{}
	}
	ledger := ComputeLedger(p.Risks, p.SecretsFound())
	decision := ResolvePayloadDecision(p)

	r := Report{
		GithubURL:    p.GithubURL,
		TrustScore:   p.TrustScore,
		Ledger:       ledger,
		LedgerAgrees: ledger.FinalScore == p.TrustScore,
		Decision:     decision,
		Band:         BandFor(p.TrustScore, decision),
		Matches:      GroundRisks(p.Risks, p.PoliciesMatched),
		Gates:        CheckGates(p),
		Caveats:      Caveats(p),
	}
	if p.OPAResult != nil {
		r.DenyReasons = p.OPAResult.DenyReasons
	}
	if p.CodeMetadata != nil {
		r.CodeMetadata = *p.CodeMetadata
	}
	if p.PDFAnalysis != nil {
		r.PDFAnalysis = *p.PDFAnalysis
	}
	return r
}
