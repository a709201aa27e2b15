package assessment

import "strings"

// Decision enum
type Decision string

const (
	DecisionAllow Decision = "allow"
	DecisionDeny  Decision = "deny"
)

// ParseDecision returns nil for anything other than allow/deny.
func ParseDecision(s string) *Decision {
	var d Decision
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "allow":
		d = DecisionAllow
	case "deny":
		d = DecisionDeny
	default:
		return nil
	}
	return &d
}

// ResolveDecision picks the final verdict. An explicit decision wins, then the
// policy engine verdict, and only then the score threshold.
func ResolveDecision(score int, explicit *Decision, policyAllow *bool) Decision {
	if explicit != nil {
		return *explicit
	}
	if policyAllow != nil {
		if *policyAllow {
			return DecisionAllow
		}
		return DecisionDeny
	}
	if exceeds(score, MediumTrustBoundary) {
		return DecisionAllow
	}
	return DecisionDeny
}

// ResolvePayloadDecision applies ResolveDecision to the fields of a payload.
func ResolvePayloadDecision(p *Payload) Decision {
	if p == nil {
		return ResolveDecision(0, nil, nil)
	}
	var allow *bool
	if p.OPAResult != nil {
		allow = p.OPAResult.Allow
	}
	return ResolveDecision(p.TrustScore, ParseDecision(p.Decision), allow)
}
