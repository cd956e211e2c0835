package domain

// ActionType is the kind of protective action the planner can propose.
type ActionType string

const (
	ActionAlert     ActionType = "ALERT"
	ActionReduce    ActionType = "REDUCE"
	ActionDiversify ActionType = "DIVERSIFY"
)

// Valid reports whether the type is a member of the closed action set.
func (t ActionType) Valid() bool {
	switch t {
	case ActionAlert, ActionReduce, ActionDiversify:
		return true
	}
	return false
}

// NormalizeActionType maps arbitrary input to a member of the closed action
// set. Anything outside the set becomes ALERT: external output is never
// allowed to extend the action vocabulary, and actions are never dropped.
func NormalizeActionType(raw string) ActionType {
	switch ActionType(raw) {
	case ActionReduce:
		return ActionReduce
	case ActionDiversify:
		return ActionDiversify
	default:
		return ActionAlert
	}
}

// ProtectionAction is a single typed recommendation with a human-readable message.
type ProtectionAction struct {
	Type    ActionType `json:"type"`
	Message string     `json:"message"`
}

// ProtectionPlan is an ordered list of protection actions. Order matters for
// display only.
type ProtectionPlan struct {
	Actions []ProtectionAction `json:"actions"`
}

// Validate checks that every action in the plan carries a known type.
func (p ProtectionPlan) Validate() error {
	if p.Actions == nil {
		return ErrInvalidActionType
	}
	for _, a := range p.Actions {
		if !a.Type.Valid() {
			return ErrInvalidActionType
		}
	}
	return nil
}
