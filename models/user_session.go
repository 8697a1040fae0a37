package models

import (
	"time"

	"github.com/google/uuid"
)

type UserSession struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CorrelationID uuid.UUID `gorm:"type:uuid;not null;index:idx_sessions_correlation_id" json:"correlation_id"`
	UserUUID      uuid.UUID `gorm:"type:uuid;not null;index:idx_sessions_user_uuid" json:"user_uuid"`
	User          User      `gorm:"foreignKey:UserUUID;references:UUID" json:"user,omitempty"`

	SessionToken string  `gorm:"size:512;not null;uniqueIndex:uk_sessions_token" json:"-"`
	RefreshToken *string `gorm:"size:512" json:"-"`

	IPAddress *string `gorm:"type:inet" json:"ip_address,omitempty"`
	UserAgent *string `gorm:"type:text" json:"user_agent,omitempty"`

	IsActive *bool `gorm:"default:true;index:idx_sessions_is_active" json:"is_active"`

	CreatedAt      time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	ExpiresAt      time.Time  `gorm:"not null;index:idx_sessions_expires_at" json:"expires_at"`
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty"`
	RevokedAt      *time.Time `json:"revoked_at,omitempty"`
}

func (UserSession) TableName() string {
	return "user_sessions"
}

// UserSessionFilter represents filter criteria for session queries
type UserSessionFilter struct {
	ID            *uint
	UserUUID      *uuid.UUID
	SessionToken  *string
	IsActive      *bool
	ExpiresAfter  *time.Time
	ExpiresBefore *time.Time
}

func (s *UserSession) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

func (s *UserSession) IsRevoked() bool {
	return s.RevokedAt != nil
}
