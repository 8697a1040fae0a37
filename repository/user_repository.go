// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smart-stationery/backend/models"
	"github.com/smart-stationery/backend/utils"
)

// UserRepositoryImpl implements UserRepository interface
type UserRepositoryImpl struct {
	*BaseRepository[models.User, models.UserFilter]
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &UserRepositoryImpl{
		BaseRepository: NewBaseRepository[models.User, models.UserFilter](db, applyUserFilter),
	}
}

func applyUserFilter(db *gorm.DB, filter models.UserFilter) *gorm.DB {
	if filter.UUID != nil {
		db = db.Where("users.uuid = ?", *filter.UUID)
	}
	if filter.ID != nil {
		db = db.Where("users.id = ? AND users.id > 0", *filter.ID)
	}
	if filter.AccountTypeID != nil {
		db = db.Where("account_type_id = ?", *filter.AccountTypeID)
	}
	if filter.AccountTypeName != nil {
		db = db.Joins("JOIN account_types ON users.account_type_id = account_types.id").
			Where("account_types.type_name = ?", *filter.AccountTypeName)
	}
	if filter.Email != nil {
		db = db.Where("email = ?", *filter.Email)
	}
	if filter.Mobile != nil {
		db = db.Where("mobile = ?", *filter.Mobile)
	}
	if filter.RegistrationNumber != nil {
		db = db.Where("registration_number = ?", *filter.RegistrationNumber)
	}
	if filter.IsEmailVerified != nil {
		db = db.Where("is_email_verified = ?", *filter.IsEmailVerified)
	}
	if filter.IsInstituteVerified != nil {
		db = db.Where("is_institute_verified = ?", *filter.IsInstituteVerified)
	}
	if filter.IsActive != nil {
		db = db.Where("is_active = ?", *filter.IsActive)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("users.created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("users.created_at <= ?", *filter.CreatedBefore)
	}
	return db
}

// ByEmail retrieves a user by email address
func (r *UserRepositoryImpl) ByEmail(ctx context.Context, email string) (*models.User, error) {
	users, err := r.ByFilter(ctx, models.UserFilter{Email: &email}, "", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	if len(users) == 0 {
		return nil, nil
	}

	return users[0], nil
}

// UpdatePassword sets a new password hash for the user
func (r *UserRepositoryImpl) UpdatePassword(ctx context.Context, userUUID uuid.UUID, passwordHash string) error {
	db := r.getDB(ctx)

	err := db.Model(&models.User{}).
		Where("uuid = ?", userUUID).
		Updates(map[string]any{
			"password_hash": passwordHash,
			"updated_at":    utils.UTCNow(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

// UpdateEmailVerification marks the user's email address verified
func (r *UserRepositoryImpl) UpdateEmailVerification(ctx context.Context, userUUID uuid.UUID, verifiedAt *time.Time) error {
	db := r.getDB(ctx)

	err := db.Model(&models.User{}).
		Where("uuid = ?", userUUID).
		Updates(map[string]any{
			"is_email_verified": true,
			"email_verified_at": verifiedAt,
			"updated_at":        utils.UTCNow(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update email verification: %w", err)
	}

	return nil
}

// SetInstituteVerified toggles the institute verification flag
func (r *UserRepositoryImpl) SetInstituteVerified(ctx context.Context, userUUID uuid.UUID, verified bool) error {
	db := r.getDB(ctx)

	err := db.Model(&models.User{}).
		Where("uuid = ?", userUUID).
		Updates(map[string]any{
			"is_institute_verified": verified,
			"updated_at":            utils.UTCNow(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update institute verification: %w", err)
	}

	return nil
}

// SetActive toggles the account's active flag
func (r *UserRepositoryImpl) SetActive(ctx context.Context, userUUID uuid.UUID, active bool) error {
	db := r.getDB(ctx)

	err := db.Model(&models.User{}).
		Where("uuid = ?", userUUID).
		Updates(map[string]any{
			"is_active":  active,
			"updated_at": utils.UTCNow(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update active flag: %w", err)
	}

	return nil
}

// UpdateLastLogin records a successful login time
func (r *UserRepositoryImpl) UpdateLastLogin(ctx context.Context, userUUID uuid.UUID, at time.Time) error {
	db := r.getDB(ctx)

	err := db.Model(&models.User{}).
		Where("uuid = ?", userUUID).
		Update("last_login_at", at).Error
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}

	return nil
}
