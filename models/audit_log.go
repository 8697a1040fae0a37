package models

import (
	"time"

	"github.com/google/uuid"
)

// Audit action constants
const (
	AuditActionSignupInitiated       = "signup_initiated"
	AuditActionSignupCompleted       = "signup_completed"
	AuditActionSignupFailed          = "signup_failed"
	AuditActionOTPVerificationFailed = "otp_verification_failed"
	AuditActionOTPResent             = "otp_resent"
	AuditActionOTPResendFailed       = "otp_resend_failed"
	AuditActionOTPEmailFailed        = "otp_email_failed"
	AuditActionLoginSucceeded        = "login_succeeded"
	AuditActionLoginFailed           = "login_failed"
	AuditActionLogout                = "logout"
	AuditActionPasswordResetRequest  = "password_reset_requested"
	AuditActionPasswordResetDone     = "password_reset_completed"
	AuditActionOrderPlaced           = "order_placed"
	AuditActionOrderPlacementFailed  = "order_placement_failed"
	AuditActionOrderCancelled        = "order_cancelled"
	AuditActionOrderStatusChanged    = "order_status_changed"
	AuditActionInstituteSubmitted    = "institute_verification_submitted"
	AuditActionInstituteReviewed     = "institute_verification_reviewed"
)

type AuditLog struct {
	ID       uint       `gorm:"primaryKey" json:"id"`
	UserUUID *uuid.UUID `gorm:"type:uuid;index:idx_audit_logs_user_uuid" json:"user_uuid,omitempty"`
	User     *User      `gorm:"foreignKey:UserUUID;references:UUID" json:"user,omitempty"`

	Action      string  `gorm:"size:64;not null;index:idx_audit_logs_action" json:"action"`
	Description *string `gorm:"type:text" json:"description,omitempty"`

	Success      *bool   `gorm:"default:false" json:"success"`
	ErrorMessage *string `gorm:"type:text" json:"error_message,omitempty"`

	IPAddress *string `gorm:"type:inet" json:"ip_address,omitempty"`
	UserAgent *string `gorm:"type:text" json:"user_agent,omitempty"`
	RequestID *string `gorm:"size:64" json:"request_id,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_audit_logs_created_at" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// AuditLogFilter represents filter criteria for audit log queries
type AuditLogFilter struct {
	ID            *uint
	UserUUID      *uuid.UUID
	Action        *string
	Success       *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
