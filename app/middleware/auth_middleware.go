// Package middleware contains HTTP middleware functions for request processing
package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/smart-stationery/backend/app/dto"
	"github.com/smart-stationery/backend/app/services"
	"github.com/smart-stationery/backend/repository"
	"github.com/smart-stationery/backend/utils"
)

// AuthMiddleware handles JWT token validation for protected endpoints. User
// tokens are additionally checked against the session store so revocation
// takes effect immediately.
type AuthMiddleware struct {
	tokenService services.TokenService
	userRepo     repository.UserRepository
	sessionRepo  repository.UserSessionRepository
	adminRepo    repository.AdminRepository
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(
	tokenService services.TokenService,
	userRepo repository.UserRepository,
	sessionRepo repository.UserSessionRepository,
	adminRepo repository.AdminRepository,
) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
		userRepo:     userRepo,
		sessionRepo:  sessionRepo,
		adminRepo:    adminRepo,
	}
}

// Authenticate is the middleware function that validates user JWT tokens
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, errResp := bearerToken(c)
		if errResp != nil {
			return errResp(c)
		}

		claims, err := m.tokenService.ValidateToken(token)
		if err != nil {
			return unauthorized(c, tokenErrorCode(err), tokenErrorMessage(err))
		}

		// The token must still back an active, unexpired session
		session, err := m.sessionRepo.BySessionToken(c.Context(), token)
		if err != nil {
			return unauthorized(c, "SESSION_LOOKUP_FAILED", "Session validation failed")
		}
		if session == nil || !utils.IsTrue(session.IsActive) || session.IsExpired() {
			return unauthorized(c, "SESSION_EXPIRED", "Session has expired or was revoked")
		}

		user, err := m.userRepo.ByUUID(c.Context(), claims.UserUUID)
		if err != nil || user == nil {
			return unauthorized(c, "USER_NOT_FOUND", "User not found")
		}
		if !utils.IsTrue(user.IsActive) {
			return unauthorized(c, "ACCOUNT_INACTIVE", "Account is inactive")
		}

		// Store user information in context for downstream handlers
		c.Locals("user", user)
		c.Locals("user_uuid", claims.UserUUID)
		c.Locals("token_id", claims.TokenID)

		// Store RequestID for audit logging
		if requestID := c.Get("X-Request-ID"); requestID != "" {
			c.Locals("request_id", requestID)
		}

		return c.Next()
	}
}

// AdminAuthenticate validates admin JWT tokens and loads the admin record
func (m *AuthMiddleware) AdminAuthenticate() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, errResp := bearerToken(c)
		if errResp != nil {
			return errResp(c)
		}

		claims, err := m.tokenService.ValidateAdminToken(token)
		if err != nil {
			return unauthorized(c, tokenErrorCode(err), tokenErrorMessage(err))
		}

		admin, err := m.adminRepo.ByID(c.Context(), claims.AdminID)
		if err != nil || admin == nil {
			return unauthorized(c, "ADMIN_NOT_FOUND", "Admin not found")
		}
		if !utils.IsTrue(admin.IsActive) {
			return unauthorized(c, "ADMIN_INACTIVE", "Admin account is inactive")
		}

		c.Locals("admin", admin)
		c.Locals("admin_id", claims.AdminID)
		c.Locals("token_id", claims.TokenID)

		if requestID := c.Get("X-Request-ID"); requestID != "" {
			c.Locals("request_id", requestID)
		}

		return c.Next()
	}
}

func bearerToken(c fiber.Ctx) (string, fiber.Handler) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", func(c fiber.Ctx) error {
			return unauthorized(c, "MISSING_AUTHORIZATION_HEADER", "Authorization header is required")
		}
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", func(c fiber.Ctx) error {
			return unauthorized(c, "INVALID_AUTHORIZATION_FORMAT", "Invalid authorization header format. Expected 'Bearer <token>'")
		}
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", func(c fiber.Ctx) error {
			return unauthorized(c, "MISSING_ACCESS_TOKEN", "Access token is required")
		}
	}
	return token, nil
}

func unauthorized(c fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error:   dto.ErrorDetail{Code: code},
	})
}

func tokenErrorCode(err error) string {
	switch {
	case errors.Is(err, services.ErrTokenExpired):
		return "TOKEN_EXPIRED"
	case errors.Is(err, services.ErrTokenInvalid):
		return "TOKEN_INVALID"
	default:
		return "TOKEN_VALIDATION_FAILED"
	}
}

func tokenErrorMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrTokenExpired):
		return "Access token has expired"
	case errors.Is(err, services.ErrTokenInvalid):
		return "Invalid access token"
	default:
		return "Token validation failed"
	}
}
