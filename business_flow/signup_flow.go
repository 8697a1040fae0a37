// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/google/uuid"
	"github.com/smart-stationery/backend/app/dto"
	"github.com/smart-stationery/backend/app/services"
	"github.com/smart-stationery/backend/models"
	"github.com/smart-stationery/backend/repository"
	"github.com/smart-stationery/backend/utils"
	"gorm.io/gorm"
)

// SignupFlow handles the complete signup business logic
type SignupFlow interface {
	Signup(ctx context.Context, req *dto.SignupRequest, metadata *ClientMetadata) (*dto.SignupResponse, error)
	VerifyOTP(ctx context.Context, req *dto.OTPVerificationRequest, metadata *ClientMetadata) (*dto.OTPVerificationResponse, error)
	ResendOTP(ctx context.Context, req *dto.OTPResendRequest, metadata *ClientMetadata) (*dto.OTPResendResponse, error)
}

// SignupFlowImpl implements the signup business flow
type SignupFlowImpl struct {
	userRepo        repository.UserRepository
	accountTypeRepo repository.AccountTypeRepository
	sequenceRepo    repository.SequenceRepository
	otpRepo         repository.OTPVerificationRepository
	sessionRepo     repository.UserSessionRepository
	auditRepo       repository.AuditLogRepository
	tokenService    services.TokenService
	notificationSvc services.NotificationService
	db              *gorm.DB
}

// NewSignupFlow creates a new signup flow instance
func NewSignupFlow(
	userRepo repository.UserRepository,
	accountTypeRepo repository.AccountTypeRepository,
	sequenceRepo repository.SequenceRepository,
	otpRepo repository.OTPVerificationRepository,
	sessionRepo repository.UserSessionRepository,
	auditRepo repository.AuditLogRepository,
	tokenService services.TokenService,
	notificationSvc services.NotificationService,
	db *gorm.DB,
) SignupFlow {
	return &SignupFlowImpl{
		userRepo:        userRepo,
		accountTypeRepo: accountTypeRepo,
		sequenceRepo:    sequenceRepo,
		otpRepo:         otpRepo,
		sessionRepo:     sessionRepo,
		auditRepo:       auditRepo,
		tokenService:    tokenService,
		notificationSvc: notificationSvc,
		db:              db,
	}
}

// Signup creates the user, stamps its sequential id and sends the email OTP
func (s *SignupFlowImpl) Signup(ctx context.Context, req *dto.SignupRequest, metadata *ClientMetadata) (*dto.SignupResponse, error) {
	// Validate business rules
	if err := s.validateSignupRequest(ctx, req); err != nil {
		return nil, NewBusinessError("SIGNUP_VALIDATION_FAILED", "Signup validation failed", err)
	}

	// Use transaction for atomicity
	var user *models.User
	var otpCode string

	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		// Create user
		var err error
		user, err = s.createUser(txCtx, req)
		if err != nil {
			return err
		}

		// Generate and save OTP
		otpCode, err = s.generateAndSaveOTP(txCtx, user.UUID, user.Email, models.OTPTypeEmail, metadata)
		if err != nil {
			return err
		}

		return nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Signup initiation failed: %s", err.Error())
		_ = createAuditLog(ctx, s.auditRepo, user, models.AuditActionSignupFailed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("SIGNUP_FAILED", "Signup failed", err)
	} else {
		msg := fmt.Sprintf("Signup initiated successfully: %d", user.ID)
		_ = createAuditLog(ctx, s.auditRepo, user, models.AuditActionSignupInitiated, msg, true, nil, metadata)
	}

	// Send OTP via email (outside transaction to avoid rollback on delivery failure)
	go func() {
		message := fmt.Sprintf("Your verification code is: %s. Valid for 5 minutes.", otpCode)
		err := s.notificationSvc.SendEmail(user.Email, "Verification Code", message)
		if err != nil {
			errMsg := fmt.Sprintf("Failed to send email: %v", err)
			_ = createAuditLog(context.Background(), s.auditRepo, user, models.AuditActionOTPEmailFailed, errMsg, false, &errMsg, metadata)
		}
	}()

	return &dto.SignupResponse{
		Message:   "Signup initiated successfully. OTP sent to your email address.",
		UserID:    user.ID,
		OTPSent:   true,
		OTPTarget: maskEmail(user.Email),
	}, nil
}

// VerifyOTP handles OTP verification and completes signup
func (s *SignupFlowImpl) VerifyOTP(ctx context.Context, req *dto.OTPVerificationRequest, metadata *ClientMetadata) (*dto.OTPVerificationResponse, error) {
	// Validate business rules
	user, err := s.validateOTPVerificationRequest(ctx, req)
	if err != nil {
		return nil, NewBusinessError("OTP_VERIFICATION_VALIDATION_FAILED", "OTP verification validation failed", err)
	}

	var tokens struct {
		access  string
		refresh string
	}

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		// Verify OTP
		if err := s.verifyOTPCode(txCtx, user.UUID, req.OTPCode, req.OTPType); err != nil {
			return err
		}

		// Mark the email as verified
		if err := s.userRepo.UpdateEmailVerification(txCtx, user.UUID, utils.UTCNowPtr()); err != nil {
			return err
		}

		// Generate tokens
		var err error
		tokens.access, tokens.refresh, err = s.tokenService.GenerateTokens(user.UUID)
		if err != nil {
			return err
		}

		// Create session
		if err := createSession(txCtx, s.sessionRepo, user.UUID, tokens.access, tokens.refresh, metadata); err != nil {
			return err
		}

		// Get the user again with the updated verification status
		user, err = s.userRepo.ByUUID(txCtx, user.UUID)
		if err != nil {
			return err
		}

		return nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("OTP verification failed: %s", err.Error())
		_ = createAuditLog(ctx, s.auditRepo, user, models.AuditActionOTPVerificationFailed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("OTP_VERIFICATION_FAILED", "OTP verification failed", err)
	} else {
		msg := fmt.Sprintf("Signup completed successfully: %d", user.ID)
		_ = createAuditLog(ctx, s.auditRepo, user, models.AuditActionSignupCompleted, msg, true, nil, metadata)
	}

	return &dto.OTPVerificationResponse{
		Message:      "Signup completed successfully!",
		Token:        tokens.access,
		RefreshToken: tokens.refresh,
		User:         ToUserDTO(*user),
	}, nil
}

// ResendOTP generates and sends a new OTP
func (s *SignupFlowImpl) ResendOTP(ctx context.Context, req *dto.OTPResendRequest, metadata *ClientMetadata) (*dto.OTPResendResponse, error) {
	// Validate business rules
	user, err := s.validateOTPResendRequest(ctx, req)
	if err != nil {
		return nil, NewBusinessError("OTP_RESEND_VALIDATION_FAILED", "OTP resend validation failed", err)
	}

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		// Enforce the resend cooldown against the most recent pending OTP
		otps, err := s.otpRepo.ListActiveOTPs(txCtx, user.UUID)
		if err != nil {
			return err
		}
		for _, otp := range otps {
			if otp.OTPType == req.OTPType && utils.UTCNow().Sub(otp.CreatedAt.UTC()) < utils.OTPResendCooldown {
				return ErrOTPResendCooldown
			}
		}

		// Expire old OTPs
		if err := s.otpRepo.ExpireOldOTPs(txCtx, user.UUID, req.OTPType); err != nil {
			return err
		}

		// Generate new OTP
		otpCode, err := s.generateAndSaveOTP(txCtx, user.UUID, user.Email, req.OTPType, metadata)
		if err != nil {
			return err
		}

		// Send notification
		message := fmt.Sprintf("Your new verification code is: %s. Valid for 5 minutes.", otpCode)
		return s.notificationSvc.SendEmail(user.Email, "Verification Code", message)
	})

	if err != nil {
		errMsg := fmt.Sprintf("Resend OTP failed: %s", err.Error())
		_ = createAuditLog(ctx, s.auditRepo, user, models.AuditActionOTPResendFailed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("RESEND_OTP_FAILED", "Resend OTP failed", err)
	} else {
		msg := fmt.Sprintf("OTP resent successfully: %d", user.ID)
		_ = createAuditLog(ctx, s.auditRepo, user, models.AuditActionOTPResent, msg, true, nil, metadata)
	}

	return &dto.OTPResendResponse{
		Message:         "OTP resent successfully",
		OTPSent:         true,
		MaskedOTPTarget: maskEmail(user.Email),
	}, nil
}

// Private helper methods

func (s *SignupFlowImpl) validateSignupRequest(ctx context.Context, req *dto.SignupRequest) error {
	// Check if email already exists
	existingUser, err := s.userRepo.ByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	if existingUser != nil {
		return ErrEmailAlreadyExists
	}

	// Validate institute fields for institute accounts
	if req.AccountType == models.AccountTypeInstitute {
		if req.InstituteName == nil || req.RegistrationNumber == nil || req.ContactPhone == nil {
			return ErrInstituteFieldsRequired
		}
	}

	return nil
}

func (s *SignupFlowImpl) createUser(ctx context.Context, req *dto.SignupRequest) (*models.User, error) {
	// Get account type
	accountType, err := s.accountTypeRepo.ByTypeName(ctx, req.AccountType)
	if err != nil {
		return nil, err
	}
	if accountType == nil {
		return nil, ErrAccountTypeNotFound
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		UUID:                uuid.New(),
		AccountTypeID:       accountType.ID,
		AccountType:         *accountType,
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		Email:               req.Email,
		Mobile:              req.Mobile,
		PasswordHash:        string(hashedPassword),
		PostalCode:          req.PostalCode,
		InstituteName:       req.InstituteName,
		RegistrationNumber:  req.RegistrationNumber,
		ContactPhone:        req.ContactPhone,
		IsEmailVerified:     utils.ToPtr(false),
		IsInstituteVerified: utils.ToPtr(false),
		IsActive:            utils.ToPtr(true),
	}

	// Insert the user and stamp its sequential id in the same transaction
	err = s.userRepo.SaveWithSequentialID(ctx, user, s.sequenceRepo)
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (s *SignupFlowImpl) generateAndSaveOTP(ctx context.Context, userUUID uuid.UUID, target, otpType string, metadata *ClientMetadata) (string, error) {
	// Generate 6-digit OTP
	otpCode, err := GenerateOTP()
	if err != nil {
		return "", err
	}

	// Create OTP record
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

	err = s.otpRepo.Save(ctx, otp)
	if err != nil {
		return "", err
	}

	return otpCode, nil
}

func (s *SignupFlowImpl) verifyOTPCode(ctx context.Context, userUUID uuid.UUID, code, otpType string) error {
	// Find active OTP
	otps, err := s.otpRepo.ListActiveOTPs(ctx, userUUID)
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
		// Create failed attempt record with correlation ID
		failedOTP := *validOTP
		failedOTP.ID = 0
		failedOTP.CorrelationID = validOTP.CorrelationID // Use same correlation ID
		failedOTP.AttemptsCount++
		failedOTP.Status = models.OTPStatusFailed
		_ = s.otpRepo.Save(ctx, &failedOTP)

		return ErrInvalidOTPCode
	}

	// Create verified OTP record with correlation ID
	verifiedOTP := *validOTP
	verifiedOTP.ID = 0
	verifiedOTP.CorrelationID = validOTP.CorrelationID // Use same correlation ID
	verifiedOTP.Status = models.OTPStatusVerified
	verifiedOTP.VerifiedAt = utils.UTCNowPtr()

	return s.otpRepo.Save(ctx, &verifiedOTP)
}

func (s *SignupFlowImpl) validateOTPVerificationRequest(ctx context.Context, req *dto.OTPVerificationRequest) (*models.User, error) {
	// Resolve the user by sequential id or storage key
	user, err := s.userRepo.ByAnyID(ctx, req.User)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	// Validate OTP type
	if req.OTPType != models.OTPTypeEmail {
		return nil, ErrInvalidOTPType
	}

	// Check if the email is already verified
	if utils.IsTrue(user.IsEmailVerified) {
		return nil, ErrAlreadyVerified
	}

	return user, nil
}

func (s *SignupFlowImpl) validateOTPResendRequest(ctx context.Context, req *dto.OTPResendRequest) (*models.User, error) {
	user, err := s.userRepo.ByAnyID(ctx, req.User)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if req.OTPType != models.OTPTypeEmail && req.OTPType != models.OTPTypePasswordReset {
		return nil, ErrInvalidOTPType
	}

	if req.OTPType == models.OTPTypeEmail && utils.IsTrue(user.IsEmailVerified) {
		return nil, ErrAlreadyVerified
	}

	return user, nil
}

// GenerateOTP returns a secure 6-digit code using crypto/rand
func GenerateOTP() (string, error) {
	max := big.NewInt(999999)
	min := big.NewInt(100000)

	n, err := rand.Int(rand.Reader, new(big.Int).Sub(max, min))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%06d", new(big.Int).Add(n, min).Int64()), nil
}

// createSession persists a new active session for the issued token pair
func createSession(ctx context.Context, sessionRepo repository.UserSessionRepository, userUUID uuid.UUID, accessToken, refreshToken string, metadata *ClientMetadata) error {
	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	session := &models.UserSession{
		CorrelationID: uuid.New(),
		UserUUID:      userUUID,
		SessionToken:  accessToken,
		RefreshToken:  &refreshToken,
		IPAddress:     &ipAddress,
		UserAgent:     &userAgent,
		IsActive:      utils.ToPtr(true),
		ExpiresAt:     utils.UTCNowAdd(utils.SessionTimeout),
	}

	return sessionRepo.Save(ctx, session)
}

// createAuditLog records an audit entry; failures are ignored by callers
func createAuditLog(ctx context.Context, auditRepo repository.AuditLogRepository, user *models.User, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
	var userUUID *uuid.UUID
	if user != nil {
		userUUID = &user.UUID
	}

	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		UserUUID:     userUUID,
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errorMsg,
	}

	// Extract request ID from context if available
	requestID := ctx.Value(RequestIDKey)
	if requestID != nil {
		requestIDStr, ok := requestID.(string)
		if ok {
			audit.RequestID = &requestIDStr
		}
	}

	return auditRepo.Save(ctx, audit)
}

func maskEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 1 {
		return email
	}
	// Show a****z@example.com format
	return email[:1] + "****" + email[at-1:]
}
