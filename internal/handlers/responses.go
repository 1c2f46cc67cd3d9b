package handlers

import "github.com/ateliervote/concours/internal/models"

// PhaseResponse is the response for the current phase
type PhaseResponse struct {
	Phase string `json:"phase"`
}

// SubmissionResponse is the response for an accepted entry
type SubmissionResponse struct {
	Index int `json:"index"`
}

// WithdrawalResponse is the response for a withdrawn entry
type WithdrawalResponse struct {
	Entry models.Submission `json:"entry"`
}

// ExportResponse wraps the audit export rows
type ExportResponse struct {
	Rows []models.ExportRow `json:"rows"`
}

// LoginResponse is the response for a successful admin login
type LoginResponse struct {
	Message string `json:"message"`
}
