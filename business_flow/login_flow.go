// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/google/uuid"
	"github.com/smart-stationery/backend/app/dto"
	"github.com/smart-stationery/backend/app/services"
	"github.com/smart-stationery/backend/models"
	"github.com/smart-stationery/backend/repository"
	"github.com/smart-stationery/backend/utils"
	"gorm.io/gorm"
)

// LoginFlow handles authentication of existing users
type LoginFlow interface {
	Login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error)
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest, metadata *ClientMetadata) (*dto.LoginResponse, error)
	Logout(ctx context.Context, sessionToken string, metadata *ClientMetadata) error
	ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest, metadata *ClientMetadata) (*dto.OTPResendResponse, error)
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest, metadata *ClientMetadata) error
}

// LoginFlowImpl implements the login business flow
type LoginFlowImpl struct {
	userRepo        repository.UserRepository
	otpRepo         repository.OTPVerificationRepository
	sessionRepo     repository.UserSessionRepository
	auditRepo       repository.AuditLogRepository
	tokenService    services.TokenService
	notificationSvc services.NotificationService
	db              *gorm.DB
}

// NewLoginFlow creates a new login flow instance
func NewLoginFlow(
	userRepo repository.UserRepository,
	otpRepo repository.OTPVerificationRepository,
	sessionRepo repository.UserSessionRepository,
	auditRepo repository.AuditLogRepository,
	tokenService services.TokenService,
	notificationSvc services.NotificationService,
	db *gorm.DB,
) LoginFlow {
	return &LoginFlowImpl{
		userRepo:        userRepo,
		otpRepo:         otpRepo,
		sessionRepo:     sessionRepo,
		auditRepo:       auditRepo,
		tokenService:    tokenService,
		notificationSvc: notificationSvc,
		db:              db,
	}
}

// Login verifies the credentials and issues a fresh session
func (lf *LoginFlowImpl) Login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error) {
	user, err := lf.userRepo.ByEmail(ctx, req.Email)
	if err != nil {
		return nil, NewBusinessError("LOGIN_FAILED", "Login failed", err)
	}
	if user == nil {
		return nil, NewBusinessError("LOGIN_FAILED", "Login failed", ErrUserNotFound)
	}

	if err := lf.validateLoginAttempt(user, req.Password); err != nil {
		errMsg := fmt.Sprintf("Login failed: %s", err.Error())
		_ = createAuditLog(ctx, lf.auditRepo, user, models.AuditActionLoginFailed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("LOGIN_FAILED", "Login failed", err)
	}

	var session *models.UserSession

	err = repository.WithTransaction(ctx, lf.db, func(txCtx context.Context) error {
		accessToken, refreshToken, err := lf.tokenService.GenerateTokens(user.UUID)
		if err != nil {
			return err
		}

		if err := createSession(txCtx, lf.sessionRepo, user.UUID, accessToken, refreshToken, metadata); err != nil {
			return err
		}

		session, err = lf.sessionRepo.BySessionToken(txCtx, accessToken)
		if err != nil {
			return err
		}

		return lf.userRepo.UpdateLastLogin(txCtx, user.UUID, utils.UTCNow())
	})

	if err != nil {
		errMsg := fmt.Sprintf("Login failed: %s", err.Error())
		_ = createAuditLog(ctx, lf.auditRepo, user, models.AuditActionLoginFailed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("LOGIN_FAILED", "Login failed", err)
	}

	msg := fmt.Sprintf("Login succeeded: %d", user.ID)
	_ = createAuditLog(ctx, lf.auditRepo, user, models.AuditActionLoginSucceeded, msg, true, nil, metadata)

	return &dto.LoginResponse{
		Message: "Login successful",
		User:    ToUserDTO(*user),
		Session: ToSessionDTO(*session),
	}, nil
}

// RefreshToken rotates an active session's token pair
func (lf *LoginFlowImpl) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest, metadata *ClientMetadata) (*dto.LoginResponse, error) {
	var user *models.User
	var session *models.UserSession

	err := repository.WithTransaction(ctx, lf.db, func(txCtx context.Context) error {
		oldSession, err := lf.sessionRepo.ByRefreshToken(txCtx, req.RefreshToken)
		if err != nil {
			return err
		}
		if oldSession == nil || !utils.IsTrue(oldSession.IsActive) {
			return ErrSessionExpired
		}
		if oldSession.IsExpired() {
			return ErrSessionExpired
		}

		user, err = lf.userRepo.ByUUID(txCtx, oldSession.UserUUID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}
		if !utils.IsTrue(user.IsActive) {
			return ErrAccountInactive
		}

		accessToken, refreshToken, err := lf.tokenService.RefreshToken(req.RefreshToken)
		if err != nil {
			return err
		}

		// Revoke the old session before issuing the replacement
		if err := lf.sessionRepo.RevokeSession(txCtx, oldSession.ID); err != nil {
			return err
		}

		if err := createSession(txCtx, lf.sessionRepo, user.UUID, accessToken, refreshToken, metadata); err != nil {
			return err
		}

		session, err = lf.sessionRepo.BySessionToken(txCtx, accessToken)
		return err
	})

	if err != nil {
		return nil, NewBusinessError("TOKEN_REFRESH_FAILED", "Token refresh failed", err)
	}

	return &dto.LoginResponse{
		Message: "Token refreshed successfully",
		User:    ToUserDTO(*user),
		Session: ToSessionDTO(*session),
	}, nil
}

// Logout revokes the session behind the presented token
func (lf *LoginFlowImpl) Logout(ctx context.Context, sessionToken string, metadata *ClientMetadata) error {
	session, err := lf.sessionRepo.BySessionToken(ctx, sessionToken)
	if err != nil {
		return NewBusinessError("LOGOUT_FAILED", "Logout failed", err)
	}
	if session == nil {
		return NewBusinessError("LOGOUT_FAILED", "Logout failed", ErrSessionExpired)
	}

	if err := lf.sessionRepo.RevokeSession(ctx, session.ID); err != nil {
		return NewBusinessError("LOGOUT_FAILED", "Logout failed", err)
	}

	user, _ := lf.userRepo.ByUUID(ctx, session.UserUUID)
	msg := "Logout succeeded"
	_ = createAuditLog(ctx, lf.auditRepo, user, models.AuditActionLogout, msg, true, nil, metadata)

	return nil
}

// ForgotPassword sends a password reset OTP to the account email
func (lf *LoginFlowImpl) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest, metadata *ClientMetadata) (*dto.OTPResendResponse, error) {
	user, err := lf.userRepo.ByEmail(ctx, req.Email)
	if err != nil {
		return nil, NewBusinessError("FORGOT_PASSWORD_FAILED", "Password reset request failed", err)
	}
	if user == nil {
		return nil, NewBusinessError("FORGOT_PASSWORD_FAILED", "Password reset request failed", ErrUserNotFound)
	}
	if !utils.IsTrue(user.IsActive) {
		return nil, NewBusinessError("FORGOT_PASSWORD_FAILED", "Password reset request failed", ErrAccountInactive)
	}

	err = repository.WithTransaction(ctx, lf.db, func(txCtx context.Context) error {
		if err := lf.otpRepo.ExpireOldOTPs(txCtx, user.UUID, models.OTPTypePasswordReset); err != nil {
			return err
		}

		otpCode, err := lf.generateAndSaveOTP(txCtx, user.UUID, user.Email, models.OTPTypePasswordReset, metadata)
		if err != nil {
			return err
		}

		message := fmt.Sprintf("Your password reset code is: %s. Valid for 5 minutes.", otpCode)
		return lf.notificationSvc.SendEmail(user.Email, "Password Reset Code", message)
	})

	if err != nil {
		errMsg := fmt.Sprintf("Password reset request failed: %s", err.Error())
		_ = createAuditLog(ctx, lf.auditRepo, user, models.AuditActionPasswordResetRequest, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("FORGOT_PASSWORD_FAILED", "Password reset request failed", err)
	}

	msg := fmt.Sprintf("Password reset requested: %d", user.ID)
	_ = createAuditLog(ctx, lf.auditRepo, user, models.AuditActionPasswordResetRequest, msg, true, nil, metadata)

	return &dto.OTPResendResponse{
		Message:         "Password reset code sent",
		OTPSent:         true,
		MaskedOTPTarget: maskEmail(user.Email),
	}, nil
}

// ResetPassword verifies the reset OTP, stores the new hash and revokes all sessions
func (lf *LoginFlowImpl) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest, metadata *ClientMetadata) error {
	user, err := lf.userRepo.ByAnyID(ctx, req.User)
	if err != nil {
		return NewBusinessError("RESET_PASSWORD_FAILED", "Password reset failed", err)
	}
	if user == nil {
		return NewBusinessError("RESET_PASSWORD_FAILED", "Password reset failed", ErrUserNotFound)
	}

	err = repository.WithTransaction(ctx, lf.db, func(txCtx context.Context) error {
		if err := lf.verifyOTPCode(txCtx, user.UUID, req.OTPCode, models.OTPTypePasswordReset); err != nil {
			return err
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		if err := lf.userRepo.UpdatePassword(txCtx, user.UUID, string(hashedPassword)); err != nil {
			return err
		}

		// All outstanding sessions become invalid on password change
		return lf.sessionRepo.RevokeAllUserSessions(txCtx, user.UUID)
	})

	if err != nil {
		errMsg := fmt.Sprintf("Password reset failed: %s", err.Error())
		_ = createAuditLog(ctx, lf.auditRepo, user, models.AuditActionPasswordResetDone, errMsg, false, &errMsg, metadata)

		return NewBusinessError("RESET_PASSWORD_FAILED", "Password reset failed", err)
	}

	msg := fmt.Sprintf("Password reset completed: %d", user.ID)
	_ = createAuditLog(ctx, lf.auditRepo, user, models.AuditActionPasswordResetDone, msg, true, nil, metadata)

	return nil
}

// Private helper methods

func (lf *LoginFlowImpl) validateLoginAttempt(user *models.User, password string) error {
	if !utils.IsTrue(user.IsActive) {
		return ErrAccountInactive
	}
	if !utils.IsTrue(user.IsEmailVerified) {
		return ErrEmailNotVerified
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return ErrIncorrectPassword
	}
	return nil
}

func (lf *LoginFlowImpl) generateAndSaveOTP(ctx context.Context, userUUID uuid.UUID, target, otpType string, metadata *ClientMetadata) (string, error) {
	otpCode, err := GenerateOTP()
	if err != nil {
		return "", err
	}

	otp := &models.OTPVerification{
		CorrelationID: uuid.New(),
		UserUUID:      userUUID,
		OTPCode:       otpCode,
		OTPType:       otpType,
		TargetValue:   target,
		Status:        models.OTPStatusPending,
		AttemptsCount: 0,
		MaxAttempts:   3,
		ExpiresAt:     utils.UTCNowAdd(utils.OTPExpiry),
	}
	if metadata != nil {
		otp.IPAddress = &metadata.IPAddress
		otp.UserAgent = &metadata.UserAgent
	}

	if err := lf.otpRepo.Save(ctx, otp); err != nil {
		return "", err
	}

	return otpCode, nil
}

func (lf *LoginFlowImpl) verifyOTPCode(ctx context.Context, userUUID uuid.UUID, code, otpType string) error {
	otps, err := lf.otpRepo.ListActiveOTPs(ctx, userUUID)
	if err != nil {
		return err
	}

	var validOTP *models.OTPVerification
	for _, otp := range otps {
		if otp.OTPType == otpType && otp.Status == models.OTPStatusPending && otp.CanAttempt() {
			validOTP = otp
			break
		}
	}

	if validOTP == nil {
		return ErrNoValidOTPFound
	}

	if validOTP.OTPCode != code {
		failedOTP := *validOTP
		failedOTP.ID = 0
		failedOTP.CorrelationID = validOTP.CorrelationID // Use same correlation ID
		failedOTP.AttemptsCount++
		failedOTP.Status = models.OTPStatusFailed
		_ = lf.otpRepo.Save(ctx, &failedOTP)

		return ErrInvalidOTPCode
	}

	usedOTP := *validOTP
	usedOTP.ID = 0
	usedOTP.CorrelationID = validOTP.CorrelationID // Use same correlation ID
	usedOTP.Status = models.OTPStatusUsed
	usedOTP.VerifiedAt = utils.UTCNowPtr()

	return lf.otpRepo.Save(ctx, &usedOTP)
}
