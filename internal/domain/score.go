package domain

// Verdict is the three-level risk bucket derived from a score.
type Verdict string

const (
	VerdictOK      Verdict = "OK"
	VerdictCaution Verdict = "CAUTION"
	VerdictRisky   Verdict = "RISKY"
)

// String returns the string representation of Verdict.
func (v Verdict) String() string {
	return string(v)
}

// IsValid checks if the verdict is a valid value.
func (v Verdict) IsValid() bool {
	return v == VerdictOK || v == VerdictCaution || v == VerdictRisky
}

// ScoreResult is the scorer's output for one token.
type ScoreResult struct {
	Score   int     `json:"score"` // always within [0,100]
	Verdict Verdict `json:"verdict"`
	Flags   []Flag  `json:"flags"` // deduplicated, order not significant
}

// HasFlag reports whether f was raised.
func (r ScoreResult) HasFlag(f Flag) bool {
	for _, x := range r.Flags {
		if x == f {
			return true
		}
	}
	return false
}
