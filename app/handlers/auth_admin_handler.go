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

// AdminAuthHandlerInterface defines the contract for admin authentication handlers
type AdminAuthHandlerInterface interface {
	InitCaptcha(c fiber.Ctx) error
	Login(c fiber.Ctx) error
}

// AdminAuthHandler handles the captcha-protected admin login
type AdminAuthHandler struct {
	adminAuthFlow businessflow.AdminAuthFlow
	validator     *validator.Validate
}

// NewAdminAuthHandler creates a new admin auth handler
func NewAdminAuthHandler(adminAuthFlow businessflow.AdminAuthFlow) *AdminAuthHandler {
	return &AdminAuthHandler{
		adminAuthFlow: adminAuthFlow,
		validator:     validator.New(),
	}
}

// InitCaptcha issues a rotate captcha challenge for the admin login page
// @Summary Init Admin Captcha
// @Tags AdminAuth
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.CaptchaResponse} "Captcha challenge"
// @Router /api/v1/admin/auth/captcha [post]
func (h *AdminAuthHandler) InitCaptcha(c fiber.Ctx) error {
	challenge, err := h.adminAuthFlow.InitCaptcha(requestContext(c))
	if err != nil {
		log.Println("Captcha generation failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to generate captcha", "CAPTCHA_INIT_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Captcha generated", challenge)
}

// Login authenticates an administrator
// @Summary Admin Login
// @Tags AdminAuth
// @Accept json
// @Produce json
// @Param request body dto.AdminLoginRequest true "Credentials with captcha solution"
// @Success 200 {object} dto.APIResponse{data=dto.AdminLoginResponse} "Login successful"
// @Failure 401 {object} dto.APIResponse "Invalid credentials or captcha"
// @Router /api/v1/admin/auth/login [post]
func (h *AdminAuthHandler) Login(c fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	result, err := h.adminAuthFlow.Login(requestContext(c), &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsCaptchaFailed(err) {
			return errorResponse(c, fiber.StatusUnauthorized, "Captcha verification failed", "CAPTCHA_FAILED", nil)
		}
		// Unknown admin and wrong password map to the same response.
		if errors.Is(err, businessflow.ErrAdminNotFound) || businessflow.IsIncorrectPassword(err) {
			return errorResponse(c, fiber.StatusUnauthorized, "Invalid username or password", "INVALID_CREDENTIALS", nil)
		}
		if businessflow.IsAccountInactive(err) {
			return errorResponse(c, fiber.StatusForbidden, "Account is inactive", "ACCOUNT_INACTIVE", nil)
		}

		log.Println("Admin login failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Login failed", "LOGIN_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Login successful", result)
}
