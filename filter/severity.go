package filter

import "github.com/jward/checkwalk/check"

// SeverityMatch keeps violations by severity. With AcceptOnMatch set only
// violations of Severity survive; with it cleared they are the ones
// dropped.
type SeverityMatch struct {
	Severity      check.Severity `mapstructure:"severity"`
	AcceptOnMatch bool           `mapstructure:"acceptOnMatch"`
}

// NewSeverityMatch returns a filter keeping only error violations.
func NewSeverityMatch() *SeverityMatch {
	return &SeverityMatch{Severity: check.SeverityError, AcceptOnMatch: true}
}

func (s *SeverityMatch) Decide(v check.Violation, _ *check.File) Decision {
	if (v.Severity == s.Severity) == s.AcceptOnMatch {
		return Accept
	}
	return Reject
}
