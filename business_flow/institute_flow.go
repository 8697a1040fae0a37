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

// InstituteFlow handles institute verification requests from the user side
type InstituteFlow interface {
	SubmitVerification(ctx context.Context, user *models.User, req *dto.SubmitVerificationRequest, metadata *ClientMetadata) (*dto.InstituteVerificationDTO, error)
	GetVerification(ctx context.Context, user *models.User) (*dto.InstituteVerificationDTO, error)
}

// InstituteFlowImpl implements the institute verification flow
type InstituteFlowImpl struct {
	verificationRepo repository.InstituteVerificationRepository
	auditRepo        repository.AuditLogRepository
	db               *gorm.DB
}

// NewInstituteFlow creates a new institute flow instance
func NewInstituteFlow(verificationRepo repository.InstituteVerificationRepository, auditRepo repository.AuditLogRepository, db *gorm.DB) InstituteFlow {
	return &InstituteFlowImpl{
		verificationRepo: verificationRepo,
		auditRepo:        auditRepo,
		db:               db,
	}
}

// SubmitVerification opens a verification request; only one may be pending
func (inf *InstituteFlowImpl) SubmitVerification(ctx context.Context, user *models.User, req *dto.SubmitVerificationRequest, metadata *ClientMetadata) (*dto.InstituteVerificationDTO, error) {
	if !user.IsInstitute() {
		return nil, NewBusinessError("NOT_INSTITUTE_ACCOUNT", "Account is not an institute account", ErrNotInstituteAccount)
	}
	if utils.IsTrue(user.IsInstituteVerified) {
		return nil, NewBusinessError("ALREADY_VERIFIED", "Institute is already verified", ErrInstituteAlreadyVerified)
	}

	var verification *models.InstituteVerification

	err := repository.WithTransaction(ctx, inf.db, func(txCtx context.Context) error {
		pending, err := inf.verificationRepo.PendingByUser(txCtx, user.ID)
		if err != nil {
			return err
		}
		if pending != nil {
			return ErrVerificationAlreadyOpen
		}

		verification = &models.InstituteVerification{
			UUID:        uuid.New(),
			UserID:      user.ID,
			DocumentURL: req.DocumentURL,
			Status:      models.InstituteVerificationPending,
		}
		if req.Message != "" {
			verification.Message = &req.Message
		}

		return inf.verificationRepo.Save(txCtx, verification)
	})

	if err != nil {
		errMsg := fmt.Sprintf("Verification submission failed: %s", err.Error())
		_ = createAuditLog(ctx, inf.auditRepo, user, models.AuditActionInstituteSubmitted, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("VERIFICATION_SUBMISSION_FAILED", "Verification submission failed", err)
	}

	msg := fmt.Sprintf("Verification submitted: %d", user.ID)
	_ = createAuditLog(ctx, inf.auditRepo, user, models.AuditActionInstituteSubmitted, msg, true, nil, metadata)

	out := ToInstituteVerificationDTO(*verification)
	return &out, nil
}

// GetVerification returns the user's most recent verification request
func (inf *InstituteFlowImpl) GetVerification(ctx context.Context, user *models.User) (*dto.InstituteVerificationDTO, error) {
	if !user.IsInstitute() {
		return nil, NewBusinessError("NOT_INSTITUTE_ACCOUNT", "Account is not an institute account", ErrNotInstituteAccount)
	}

	filter := models.InstituteVerificationFilter{UserID: &user.ID}
	verifications, err := inf.verificationRepo.ByFilter(ctx, filter, "created_at DESC", 1, 0)
	if err != nil {
		return nil, NewBusinessError("VERIFICATION_FETCH_FAILED", "Failed to fetch verification", err)
	}
	if len(verifications) == 0 {
		return nil, NewBusinessError("VERIFICATION_NOT_FOUND", "Verification request not found", ErrVerificationNotFound)
	}

	out := ToInstituteVerificationDTO(*verifications[0])
	return &out, nil
}
