package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/smart-stationery/backend/utils"
)

// User is an identified entity: the UUID is the storage-native key assigned at
// insert, the integer ID is drawn from the userId sequence and stamped before
// the creating transaction commits. The integer id is what cross-references
// and URLs use; the UUID never leaves the storage layer's identifier space.
type User struct {
	UUID uuid.UUID `gorm:"type:uuid;primaryKey" json:"uuid"`
	ID   int64     `gorm:"index:uk_users_seq_id,unique,where:id > 0" json:"id"`

	AccountTypeID uint        `gorm:"not null;index:idx_users_account_type_id" json:"account_type_id"`
	AccountType   AccountType `gorm:"foreignKey:AccountTypeID;references:ID" json:"account_type,omitempty"`

	FirstName string `gorm:"size:100;not null" json:"first_name"`
	LastName  string `gorm:"size:100;not null" json:"last_name"`
	Email     string `gorm:"size:255;not null;uniqueIndex:uk_users_email" json:"email"`
	Mobile    string `gorm:"size:15;not null" json:"mobile"`

	PasswordHash string `gorm:"size:255;not null" json:"-"` // Never serialize password hash

	// Default shipping address
	Address    *string `gorm:"size:255" json:"address,omitempty"`
	City       *string `gorm:"size:100" json:"city,omitempty"`
	PostalCode *string `gorm:"size:10" json:"postal_code,omitempty"`

	// Institute fields (required for institute accounts)
	InstituteName      *string `gorm:"size:120" json:"institute_name,omitempty"`
	RegistrationNumber *string `gorm:"size:20" json:"registration_number,omitempty"`
	ContactPhone       *string `gorm:"size:20" json:"contact_phone,omitempty"`

	// Status and verification
	IsEmailVerified     *bool `gorm:"default:false" json:"is_email_verified"`
	IsInstituteVerified *bool `gorm:"default:false" json:"is_institute_verified"`
	IsActive            *bool `gorm:"default:true;index:idx_users_is_active" json:"is_active"`

	// Timestamps
	CreatedAt       time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_users_created_at" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	LastLoginAt     *time.Time `gorm:"index:idx_users_last_login_at" json:"last_login_at,omitempty"`

	// Relations
	OTPVerifications []OTPVerification `gorm:"foreignKey:UserUUID;references:UUID" json:"-"`
	Sessions         []UserSession     `gorm:"foreignKey:UserUUID;references:UUID" json:"-"`
	AuditLogs        []AuditLog        `gorm:"foreignKey:UserUUID;references:UUID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) SequenceName() string     { return utils.SequenceUserID }
func (u *User) SequentialID() int64      { return u.ID }
func (u *User) SetSequentialID(id int64) { u.ID = id }

// UserFilter represents filter criteria for user queries
type UserFilter struct {
	UUID                *uuid.UUID
	ID                  *int64
	AccountTypeID       *uint
	AccountTypeName     *string
	Email               *string
	Mobile              *string
	RegistrationNumber  *string
	IsEmailVerified     *bool
	IsInstituteVerified *bool
	IsActive            *bool
	CreatedAfter        *time.Time
	CreatedBefore       *time.Time
	LastLoginAfter      *time.Time
	LastLoginBefore     *time.Time
}

func (u *User) IsPersonal() bool {
	return u.AccountType.TypeName == AccountTypePersonal
}

func (u *User) IsInstitute() bool {
	return u.AccountType.TypeName == AccountTypeInstitute
}

// RequiresInstituteFields reports whether institute-only fields must be present.
func (u *User) RequiresInstituteFields() bool {
	return u.IsInstitute()
}
