package domain

import "time"

// ScanResult aggregates the output of one full pipeline run. It is the only
// shape exposed to API consumers. Snapshot is nil only in the emergency
// result produced when the snapshot read itself failed.
type ScanResult struct {
	ID         string             `json:"id"`
	Address    string             `json:"address"`
	Timestamp  time.Time          `json:"timestamp"`
	Snapshot   *TreasurySnapshot  `json:"snapshot"`
	Risk       RiskResult         `json:"risk"`
	Plan       ProtectionPlan     `json:"plan"`
	Governance GovernanceDecision `json:"governance"`
}
