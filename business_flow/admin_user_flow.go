// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/smart-stationery/backend/app/dto"
	"github.com/smart-stationery/backend/models"
	"github.com/smart-stationery/backend/repository"
	"github.com/smart-stationery/backend/utils"
	"gorm.io/gorm"
)

// AdminUserFlow manages user accounts and institute reviews from the back office
type AdminUserFlow interface {
	ListUsers(ctx context.Context, req *dto.AdminListUsersRequest) (*dto.AdminListUsersResponse, error)
	GetUser(ctx context.Context, raw string) (*dto.UserDTO, error)
	SetUserActive(ctx context.Context, raw string, req *dto.SetUserActiveRequest, metadata *ClientMetadata) (*dto.UserDTO, error)
	ListVerifications(ctx context.Context, status string, page, pageSize int) ([]dto.InstituteVerificationDTO, error)
	ReviewVerification(ctx context.Context, admin *models.Admin, verificationUUID string, req *dto.ReviewVerificationRequest, metadata *ClientMetadata) (*dto.InstituteVerificationDTO, error)
}

// AdminUserFlowImpl implements the back-office user flow
type AdminUserFlowImpl struct {
	userRepo         repository.UserRepository
	verificationRepo repository.InstituteVerificationRepository
	auditRepo        repository.AuditLogRepository
	db               *gorm.DB
}

// NewAdminUserFlow creates a new back-office user flow instance
func NewAdminUserFlow(
	userRepo repository.UserRepository,
	verificationRepo repository.InstituteVerificationRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
) AdminUserFlow {
	return &AdminUserFlowImpl{
		userRepo:         userRepo,
		verificationRepo: verificationRepo,
		auditRepo:        auditRepo,
		db:               db,
	}
}

// ListUsers returns a filtered page of users, newest first
func (auf *AdminUserFlowImpl) ListUsers(ctx context.Context, req *dto.AdminListUsersRequest) (*dto.AdminListUsersResponse, error) {
	page, pageSize, err := normalizePage(req.Page, req.PageSize)
	if err != nil {
		return nil, NewBusinessError("USER_LIST_VALIDATION_FAILED", "User listing validation failed", err)
	}

	filter := models.UserFilter{
		AccountTypeName: req.AccountType,
		IsActive:        req.IsActive,
	}

	total, err := auf.userRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("USER_LIST_FAILED", "Failed to list users", err)
	}

	users, err := auf.userRepo.ByFilter(ctx, filter, "created_at DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("USER_LIST_FAILED", "Failed to list users", err)
	}

	out := &dto.AdminListUsersResponse{
		Users:    make([]dto.UserDTO, 0, len(users)),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
	for _, user := range users {
		out.Users = append(out.Users, ToUserDTO(*user))
	}

	return out, nil
}

// GetUser resolves a user by sequential id or storage key
func (auf *AdminUserFlowImpl) GetUser(ctx context.Context, raw string) (*dto.UserDTO, error) {
	user, err := auf.userRepo.ByAnyID(ctx, raw)
	if err != nil {
		return nil, NewBusinessError("USER_LOOKUP_FAILED", "Failed to lookup user", err)
	}
	if user == nil {
		return nil, NewBusinessError("USER_NOT_FOUND", "User not found", ErrUserNotFound)
	}

	out := ToUserDTO(*user)
	return &out, nil
}

// SetUserActive activates or deactivates a user account
func (auf *AdminUserFlowImpl) SetUserActive(ctx context.Context, raw string, req *dto.SetUserActiveRequest, metadata *ClientMetadata) (*dto.UserDTO, error) {
	user, err := auf.userRepo.ByAnyID(ctx, raw)
	if err != nil {
		return nil, NewBusinessError("USER_LOOKUP_FAILED", "Failed to lookup user", err)
	}
	if user == nil {
		return nil, NewBusinessError("USER_NOT_FOUND", "User not found", ErrUserNotFound)
	}

	if err := auf.userRepo.SetActive(ctx, user.UUID, req.IsActive); err != nil {
		return nil, NewBusinessError("USER_UPDATE_FAILED", "Failed to update user", err)
	}

	user.IsActive = utils.ToPtr(req.IsActive)
	out := ToUserDTO(*user)
	return &out, nil
}

// ListVerifications returns institute verification requests by status
func (auf *AdminUserFlowImpl) ListVerifications(ctx context.Context, status string, page, pageSize int) ([]dto.InstituteVerificationDTO, error) {
	page, pageSize, err := normalizePage(page, pageSize)
	if err != nil {
		return nil, NewBusinessError("VERIFICATION_LIST_VALIDATION_FAILED", "Verification listing validation failed", err)
	}
	if status == "" {
		status = models.InstituteVerificationPending
	}

	verifications, err := auf.verificationRepo.ListByStatus(ctx, status, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("VERIFICATION_LIST_FAILED", "Failed to list verifications", err)
	}

	out := make([]dto.InstituteVerificationDTO, 0, len(verifications))
	for _, v := range verifications {
		out = append(out, ToInstituteVerificationDTO(*v))
	}

	return out, nil
}

// ReviewVerification closes a pending request. Approval marks the institute
// account verified; rejection leaves the account unverified and lets the user
// submit again.
func (auf *AdminUserFlowImpl) ReviewVerification(ctx context.Context, admin *models.Admin, verificationUUID string, req *dto.ReviewVerificationRequest, metadata *ClientMetadata) (*dto.InstituteVerificationDTO, error) {
	verification, err := auf.verificationByUUID(ctx, verificationUUID)
	if err != nil {
		return nil, err
	}
	if !verification.IsPending() {
		return nil, NewBusinessError("VERIFICATION_ALREADY_CLOSED", "Verification request already reviewed", ErrVerificationAlreadyClosed)
	}

	user, err := auf.userRepo.BySequentialID(ctx, verification.UserID)
	if err != nil {
		return nil, NewBusinessError("VERIFICATION_REVIEW_FAILED", "Verification review failed", err)
	}
	if user == nil {
		return nil, NewBusinessError("USER_NOT_FOUND", "User not found", ErrUserNotFound)
	}

	err = repository.WithTransaction(ctx, auf.db, func(txCtx context.Context) error {
		verification.Status = models.InstituteVerificationRejected
		if req.Approve {
			verification.Status = models.InstituteVerificationApproved
		}
		if admin != nil {
			verification.ReviewedByID = &admin.ID
		}
		if req.ReviewNotes != "" {
			verification.ReviewNotes = &req.ReviewNotes
		}
		verification.ReviewedAt = utils.UTCNowPtr()

		if err := auf.verificationRepo.Update(txCtx, verification); err != nil {
			return err
		}

		if req.Approve {
			return auf.userRepo.SetInstituteVerified(txCtx, user.UUID, true)
		}
		return nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Verification review failed: %s", err.Error())
		_ = createAuditLog(ctx, auf.auditRepo, user, models.AuditActionInstituteReviewed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("VERIFICATION_REVIEW_FAILED", "Verification review failed", err)
	}

	msg := fmt.Sprintf("Verification reviewed for user %d: %s", user.ID, verification.Status)
	_ = createAuditLog(ctx, auf.auditRepo, user, models.AuditActionInstituteReviewed, msg, true, nil, metadata)

	out := ToInstituteVerificationDTO(*verification)
	return &out, nil
}

func (auf *AdminUserFlowImpl) verificationByUUID(ctx context.Context, raw string) (*models.InstituteVerification, error) {
	key, err := uuid.Parse(raw)
	if err != nil {
		return nil, NewBusinessError("VERIFICATION_NOT_FOUND", "Verification request not found", ErrVerificationNotFound)
	}

	verification, err := auf.verificationRepo.ByUUID(ctx, key)
	if err != nil {
		return nil, NewBusinessError("VERIFICATION_FETCH_FAILED", "Failed to fetch verification", err)
	}
	if verification == nil {
		return nil, NewBusinessError("VERIFICATION_NOT_FOUND", "Verification request not found", ErrVerificationNotFound)
	}

	return verification, nil
}
