// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/smart-stationery/backend/app/dto"
	businessflow "github.com/smart-stationery/backend/business_flow"
)

// InstituteHandlerInterface defines the contract for institute verification handlers
type InstituteHandlerInterface interface {
	SubmitVerification(c fiber.Ctx) error
	GetVerification(c fiber.Ctx) error
}

// InstituteHandler handles institute verification HTTP requests
type InstituteHandler struct {
	instituteFlow businessflow.InstituteFlow
	validator     *validator.Validate
}

// NewInstituteHandler creates a new institute handler
func NewInstituteHandler(instituteFlow businessflow.InstituteFlow) *InstituteHandler {
	return &InstituteHandler{
		instituteFlow: instituteFlow,
		validator:     validator.New(),
	}
}

// SubmitVerification opens an institute verification review for the user
// @Summary Submit Institute Verification
// @Tags Institute
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SubmitVerificationRequest true "Verification document"
// @Success 201 {object} dto.APIResponse{data=dto.InstituteVerificationDTO} "Verification submitted"
// @Failure 403 {object} dto.APIResponse "Not an institute account"
// @Failure 409 {object} dto.APIResponse "A verification request is already open"
// @Router /api/v1/institute/verification [post]
func (h *InstituteHandler) SubmitVerification(c fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return nil
	}

	var req dto.SubmitVerificationRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	verification, err := h.instituteFlow.SubmitVerification(requestContext(c), user, &req, clientMetadata(c))
	if err != nil {
		if errors.Is(err, businessflow.ErrNotInstituteAccount) {
			return errorResponse(c, fiber.StatusForbidden, "Account is not an institute account", "NOT_INSTITUTE_ACCOUNT", nil)
		}
		if errors.Is(err, businessflow.ErrInstituteAlreadyVerified) {
			return errorResponse(c, fiber.StatusConflict, "Institute is already verified", "ALREADY_VERIFIED", nil)
		}
		if businessflow.IsVerificationAlreadyOpen(err) {
			return errorResponse(c, fiber.StatusConflict, "A verification request is already open", "VERIFICATION_ALREADY_OPEN", nil)
		}

		log.Println("Verification submit failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to submit verification", "VERIFICATION_SUBMIT_FAILED", nil)
	}

	return successResponse(c, fiber.StatusCreated, "Verification submitted", verification)
}

// GetVerification returns the user's latest verification request
// @Summary Get Institute Verification
// @Tags Institute
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.InstituteVerificationDTO} "Verification"
// @Failure 404 {object} dto.APIResponse "No verification request found"
// @Router /api/v1/institute/verification [get]
func (h *InstituteHandler) GetVerification(c fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return nil
	}

	verification, err := h.instituteFlow.GetVerification(requestContext(c), user)
	if err != nil {
		if errors.Is(err, businessflow.ErrNotInstituteAccount) {
			return errorResponse(c, fiber.StatusForbidden, "Account is not an institute account", "NOT_INSTITUTE_ACCOUNT", nil)
		}
		if businessflow.IsVerificationNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "No verification request found", "VERIFICATION_NOT_FOUND", nil)
		}

		log.Println("Verification fetch failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to fetch verification", "VERIFICATION_FETCH_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Verification retrieved successfully", verification)
}
