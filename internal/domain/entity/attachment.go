package entity

import "time"

// Attachment represents uploaded file metadata. The bytes live in the object
// store under StoragePath; InstanceID is nil until the attachment is bound to
// an instance.
type Attachment struct {
	ID           string    `json:"id"`
	FileName     string    `json:"filename"`
	ContentType  string    `json:"content_type"`
	StoragePath  string    `json:"storage_path"`
	UploadedByID string    `json:"uploaded_by_id"`
	InstanceID   *string   `json:"instance_id,omitempty"`
	UploadedAt   time.Time `json:"uploaded_at"`
}
