package entity

import "time"

// WorkflowTemplate is a reusable ordered definition of a multi-step approval process.
// Templates are immutable after creation apart from appending steps.
type WorkflowTemplate struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`

	// Steps is populated only by hydrating reads, sorted by Order ascending
	// with ties broken by insertion order.
	Steps []*WorkflowStep `json:"steps,omitempty"`
}

// WorkflowStep is one position in a template. Order is a caller-supplied sort
// key: ties and gaps are allowed and must not break ordering. A nil AssigneeID
// means any authenticated actor may act on the step.
type WorkflowStep struct {
	ID          string    `json:"id"`
	TemplateID  string    `json:"template_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Order       int       `json:"order"`
	AssigneeID  *string   `json:"assignee_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
