package domain

// GovernanceDecision is the final approve/block verdict for a protection plan
// together with the subset of actions actually sanctioned for execution.
type GovernanceDecision struct {
	Approved        bool               `json:"approved"`
	Reason          string             `json:"reason"`
	EnforcedActions []ProtectionAction `json:"enforcedActions"`
}

// Validate checks the structural shape of a decision. Enforced actions are
// expected to be normalized by the caller before validation.
func (d GovernanceDecision) Validate() error {
	if d.Reason == "" {
		return ErrEmptyMessage
	}
	if d.EnforcedActions == nil {
		return ErrInvalidActionType
	}
	for _, a := range d.EnforcedActions {
		if !a.Type.Valid() {
			return ErrInvalidActionType
		}
	}
	return nil
}
