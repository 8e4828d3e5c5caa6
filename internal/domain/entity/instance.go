package entity

import "time"

// WorkflowInstance is one running execution of a template.
//
// CurrentStepID is meaningful only while Status is in_progress. On approval of
// the last step it is cleared; on rejection it is retained as a pointer to the
// step the instance was rejected at.
type WorkflowInstance struct {
	ID            string    `json:"id"`
	TemplateID    string    `json:"template_id"`
	CurrentStepID *string   `json:"current_step_id,omitempty"`
	Status        string    `json:"status"`
	CreatedByID   string    `json:"created_by_id"`
	Version       int64     `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// InstanceView is the fully hydrated snapshot returned by every engine
// operation: the instance plus all relations resolved in one explicit read.
type InstanceView struct {
	WorkflowInstance

	Template    *WorkflowTemplate `json:"template,omitempty"`
	CurrentStep *WorkflowStep     `json:"current_step,omitempty"`
	CreatedBy   *User             `json:"created_by,omitempty"`
	History     []*HistoryRecord  `json:"history"`
	Attachments []*Attachment     `json:"attachments"`
}
