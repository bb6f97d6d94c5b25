package generation

import "time"

// Document is one generated PDF recorded in the index.
type Document struct {
	ID          string    `json:"id"`
	StepKey     string    `json:"stepKey"`
	StepSlug    string    `json:"stepSlug"`
	EmployeeKey string    `json:"employeeKey,omitempty"`
	FileName    string    `json:"fileName"`
	StorageKey  string    `json:"storageKey"`
	CreatedAt   time.Time `json:"createdAt"`
}
