package domain

// RiskLevel classifies treasury risk severity.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Valid reports whether the level is one of the known severities.
func (l RiskLevel) Valid() bool {
	switch l {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// Risk score thresholds: scores below these bound the MEDIUM and HIGH buckets.
const (
	scoreHighBelow   = 40
	scoreMediumBelow = 70
)

// LevelForScore buckets a 0-100 risk score into a severity level.
func LevelForScore(score float64) RiskLevel {
	if score < scoreHighBelow {
		return RiskHigh
	}
	if score < scoreMediumBelow {
		return RiskMedium
	}
	return RiskLow
}

// RiskResult is the outcome of scoring a treasury snapshot.
type RiskResult struct {
	Level  RiskLevel `json:"level"`
	Score  float64   `json:"score"`
	Issues []string  `json:"issues"`
}

// Validate checks the structural invariants of a risk result. The score/level
// relationship is deliberately not checked here: results produced by the model
// path are trusted for shape only, consistency is the scorer fallback's job.
func (r RiskResult) Validate() error {
	if !r.Level.Valid() {
		return ErrInvalidRiskLevel
	}
	if r.Issues == nil {
		return ErrMissingIssues
	}
	return nil
}
