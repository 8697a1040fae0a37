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

// OTPVerificationRepositoryImpl implements OTPVerificationRepository interface
type OTPVerificationRepositoryImpl struct {
	*BaseRepository[models.OTPVerification, models.OTPVerificationFilter]
}

// NewOTPVerificationRepository creates a new OTP verification repository
func NewOTPVerificationRepository(db *gorm.DB) OTPVerificationRepository {
	return &OTPVerificationRepositoryImpl{
		BaseRepository: NewBaseRepository[models.OTPVerification, models.OTPVerificationFilter](db, applyOTPFilter),
	}
}

func applyOTPFilter(db *gorm.DB, filter models.OTPVerificationFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UserUUID != nil {
		db = db.Where("user_uuid = ?", *filter.UserUUID)
	}
	if filter.OTPType != nil {
		db = db.Where("otp_type = ?", *filter.OTPType)
	}
	if filter.TargetValue != nil {
		db = db.Where("target_value = ?", *filter.TargetValue)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at <= ?", *filter.CreatedBefore)
	}
	if filter.IsActive != nil && *filter.IsActive {
		db = db.Where("status = ? AND expires_at > ?", models.OTPStatusPending, time.Now())
	}
	return db
}

// ListActiveOTPs retrieves all pending, non-expired OTPs for a user
func (r *OTPVerificationRepositoryImpl) ListActiveOTPs(ctx context.Context, userUUID uuid.UUID) ([]*models.OTPVerification, error) {
	return r.ByFilter(ctx, models.OTPVerificationFilter{
		UserUUID: &userUUID,
		Status:   utils.ToPtr(models.OTPStatusPending),
		IsActive: utils.ToPtr(true),
	}, "created_at DESC", 0, 0)
}

// ExpireOldOTPs marks every pending OTP of the given type expired
func (r *OTPVerificationRepositoryImpl) ExpireOldOTPs(ctx context.Context, userUUID uuid.UUID, otpType string) error {
	db := r.getDB(ctx)

	err := db.Model(&models.OTPVerification{}).
		Where("user_uuid = ? AND otp_type = ? AND status = ?", userUUID, otpType, models.OTPStatusPending).
		Update("status", models.OTPStatusExpired).Error
	if err != nil {
		return fmt.Errorf("failed to expire old OTPs: %w", err)
	}

	return nil
}

// CleanupExpired marks pending OTPs past their expiry as expired
func (r *OTPVerificationRepositoryImpl) CleanupExpired(ctx context.Context) error {
	db := r.getDB(ctx)

	err := db.Model(&models.OTPVerification{}).
		Where("status = ? AND expires_at <= ?", models.OTPStatusPending, time.Now()).
		Update("status", models.OTPStatusExpired).Error
	if err != nil {
		return fmt.Errorf("failed to cleanup expired OTPs: %w", err)
	}

	return nil
}
