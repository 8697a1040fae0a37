// Package dto contains Data Transfer Objects for API request and response structures
package dto

// SignupRequest represents the signup form data
type SignupRequest struct {
	// Account type selection
	AccountType string `json:"account_type" validate:"required,oneof=personal institute"`

	// Institute fields (required for institute accounts)
	InstituteName      *string `json:"institute_name,omitempty" validate:"omitempty,max=120"`
	RegistrationNumber *string `json:"registration_number,omitempty" validate:"omitempty,max=32"`
	ContactPhone       *string `json:"contact_phone,omitempty" validate:"omitempty,min=8,max=20"`
	PostalCode         *string `json:"postal_code,omitempty" validate:"omitempty,max=16"`

	// Personal fields (required for all types)
	FirstName string `json:"first_name" validate:"required,max=120"`
	LastName  string `json:"last_name" validate:"required,max=120"`
	Mobile    string `json:"mobile" validate:"required,min=8,max=20"`

	// Common fields
	Email           string `json:"email" validate:"required,email,max=255"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// SignupResponse represents the response after successful signup initiation
type SignupResponse struct {
	Message   string `json:"message"`
	UserID    int64  `json:"user_id"`
	OTPSent   bool   `json:"otp_sent"`
	OTPTarget string `json:"otp_target"` // Email address (masked for security)
}

// OTPVerificationRequest represents the OTP verification request
type OTPVerificationRequest struct {
	User    string `json:"user" validate:"required"` // sequential id or storage key
	OTPCode string `json:"otp_code" validate:"required,len=6,numeric"`
	OTPType string `json:"otp_type" validate:"required,oneof=email password_reset"`
}

// OTPVerificationResponse represents the response after successful OTP verification
type OTPVerificationResponse struct {
	Message      string  `json:"message"`
	Token        string  `json:"token"`
	RefreshToken string  `json:"refresh_token"`
	User         UserDTO `json:"user"`
}

// OTPResendRequest represents the OTP resend request
type OTPResendRequest struct {
	User    string `json:"user" validate:"required"`
	OTPType string `json:"otp_type" validate:"required,oneof=email password_reset"`
}

// OTPResendResponse represents the response after an OTP resend
type OTPResendResponse struct {
	Message         string `json:"message"`
	OTPSent         bool   `json:"otp_sent"`
	MaskedOTPTarget string `json:"masked_otp_target"`
}

// LoginRequest represents the login form data
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents the response after a successful login
type LoginResponse struct {
	Message string     `json:"message"`
	User    UserDTO    `json:"user"`
	Session SessionDTO `json:"session"`
}

// RefreshTokenRequest represents a token refresh request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// ForgotPasswordRequest starts the password reset OTP flow
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest completes the password reset with a verified OTP
type ResetPasswordRequest struct {
	User            string `json:"user" validate:"required"`
	OTPCode         string `json:"otp_code" validate:"required,len=6,numeric"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

// UserDTO represents user data for API responses
type UserDTO struct {
	ID                  int64   `json:"id"`
	UUID                string  `json:"uuid"`
	AccountType         string  `json:"account_type"`
	FirstName           string  `json:"first_name"`
	LastName            string  `json:"last_name"`
	Mobile              string  `json:"mobile"`
	Email               string  `json:"email"`
	InstituteName       *string `json:"institute_name,omitempty"`
	RegistrationNumber  *string `json:"registration_number,omitempty"`
	ContactPhone        *string `json:"contact_phone,omitempty"`
	PostalCode          *string `json:"postal_code,omitempty"`
	IsEmailVerified     *bool   `json:"is_email_verified"`
	IsInstituteVerified *bool   `json:"is_institute_verified,omitempty"`
	IsActive            *bool   `json:"is_active"`
	CreatedAt           string  `json:"created_at"`
}

// SessionDTO represents an issued token pair
type SessionDTO struct {
	SessionToken string `json:"session_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
	CreatedAt    string `json:"created_at"`
}
