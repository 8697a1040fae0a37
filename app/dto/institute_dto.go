// Package dto contains Data Transfer Objects for API request and response structures
package dto

// SubmitVerificationRequest opens an institute verification review
type SubmitVerificationRequest struct {
	DocumentURL string `json:"document_url" validate:"required,url,max=500"`
	Message     string `json:"message" validate:"omitempty,max=500"`
}

// InstituteVerificationDTO represents a verification request for API responses
type InstituteVerificationDTO struct {
	UUID        string  `json:"uuid"`
	UserID      int64   `json:"user_id"`
	DocumentURL string  `json:"document_url"`
	Message     string  `json:"message,omitempty"`
	Status      string  `json:"status"`
	ReviewNotes *string `json:"review_notes,omitempty"`
	CreatedAt   string  `json:"created_at"`
	ReviewedAt  *string `json:"reviewed_at,omitempty"`
}

// ReviewVerificationRequest approves or rejects a verification request (admin)
type ReviewVerificationRequest struct {
	Approve     bool   `json:"approve"`
	ReviewNotes string `json:"review_notes" validate:"omitempty,max=500"`
}
