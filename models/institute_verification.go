package models

import (
	"time"

	"github.com/google/uuid"
)

// Institute verification status constants
const (
	InstituteVerificationPending  = "pending"
	InstituteVerificationApproved = "approved"
	InstituteVerificationRejected = "rejected"
)

// InstituteVerification tracks the review of an institute account's bulk-buyer
// credentials. One open (pending) request per user at a time.
type InstituteVerification struct {
	UUID uuid.UUID `gorm:"type:uuid;primaryKey" json:"uuid"`

	// UserID is the institute user's sequential id.
	UserID int64 `gorm:"not null;index:idx_institute_verifications_user_id" json:"user_id"`

	DocumentURL string  `gorm:"size:512;not null" json:"document_url"`
	Message     *string `gorm:"type:text" json:"message,omitempty"`

	Status       string  `gorm:"type:institute_verification_status_enum;default:pending;index:idx_institute_verifications_status" json:"status"`
	ReviewedByID *uint   `gorm:"index:idx_institute_verifications_reviewed_by" json:"reviewed_by_id,omitempty"`
	ReviewNotes  *string `gorm:"type:text" json:"review_notes,omitempty"`

	CreatedAt  time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_institute_verifications_created_at" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
}

func (InstituteVerification) TableName() string {
	return "institute_verifications"
}

func (v *InstituteVerification) IsPending() bool {
	return v.Status == InstituteVerificationPending
}

// InstituteVerificationFilter represents filter criteria for verification queries
type InstituteVerificationFilter struct {
	UUID          *uuid.UUID
	UserID        *int64
	Status        *string
	ReviewedByID  *uint
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
