package workflow

// Action represents an event that drives an instance transition
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// IsValid returns true if the action is a known workflow action
func (a Action) IsValid() bool {
	return a == ActionApprove || a == ActionReject
}

// String returns the string representation of the action
func (a Action) String() string {
	return string(a)
}
