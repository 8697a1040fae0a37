// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/smart-stationery/backend/models"
	"github.com/smart-stationery/backend/utils"
)

// InstituteVerificationRepositoryImpl implements InstituteVerificationRepository
type InstituteVerificationRepositoryImpl struct {
	*BaseRepository[models.InstituteVerification, models.InstituteVerificationFilter]
}

// NewInstituteVerificationRepository creates a new institute verification repository
func NewInstituteVerificationRepository(db *gorm.DB) InstituteVerificationRepository {
	return &InstituteVerificationRepositoryImpl{
		BaseRepository: NewBaseRepository[models.InstituteVerification, models.InstituteVerificationFilter](db, applyInstituteVerificationFilter),
	}
}

func applyInstituteVerificationFilter(db *gorm.DB, filter models.InstituteVerificationFilter) *gorm.DB {
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.UserID != nil {
		db = db.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	if filter.ReviewedByID != nil {
		db = db.Where("reviewed_by_id = ?", *filter.ReviewedByID)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at <= ?", *filter.CreatedBefore)
	}
	return db
}

// PendingByUser retrieves the user's open verification request, if any
func (r *InstituteVerificationRepositoryImpl) PendingByUser(ctx context.Context, userID int64) (*models.InstituteVerification, error) {
	requests, err := r.ByFilter(ctx, models.InstituteVerificationFilter{
		UserID: &userID,
		Status: utils.ToPtr(models.InstituteVerificationPending),
	}, "created_at DESC", 1, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find pending verification: %w", err)
	}

	if len(requests) == 0 {
		return nil, nil
	}

	return requests[0], nil
}

// ListByStatus retrieves verification requests in a given status, oldest first
func (r *InstituteVerificationRepositoryImpl) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*models.InstituteVerification, error) {
	return r.ByFilter(ctx, models.InstituteVerificationFilter{Status: &status}, "created_at ASC", limit, offset)
}
