// Package businessflow contains the business logic for the application.
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// User-related errors
	ErrUserNotFound        = errors.New("user not found")
	ErrAccountInactive     = errors.New("account is inactive")
	ErrAccountTypeNotFound = errors.New("account type not found")
	ErrIncorrectPassword   = errors.New("incorrect password")
	ErrEmailAlreadyExists  = errors.New("email already exists")
	ErrEmailNotVerified    = errors.New("email is not verified")

	// Institute account errors
	ErrInstituteFieldsRequired   = errors.New("institute fields are required for institute accounts")
	ErrNotInstituteAccount       = errors.New("account is not an institute account")
	ErrVerificationAlreadyOpen   = errors.New("a verification request is already open")
	ErrVerificationNotFound      = errors.New("verification request not found")
	ErrVerificationAlreadyClosed = errors.New("verification request already reviewed")
	ErrInstituteAlreadyVerified  = errors.New("institute is already verified")
	ErrInstituteNotVerified      = errors.New("institute account is not verified")

	// OTP-related errors
	ErrNoValidOTPFound = errors.New("no valid OTP found")
	ErrInvalidOTPCode  = errors.New("invalid OTP code")
	ErrInvalidOTPType  = errors.New("invalid OTP type")
	ErrOTPExpired      = errors.New("OTP has expired")
	ErrAlreadyVerified = errors.New("already verified")

	ErrOTPResendCooldown = errors.New("please wait before requesting another OTP")

	// Admin errors
	ErrAdminNotFound  = errors.New("admin not found")
	ErrCaptchaFailed  = errors.New("captcha verification failed")
	ErrSessionExpired = errors.New("session has expired")

	// Catalog errors
	ErrCategoryNotFound  = errors.New("category not found")
	ErrSlugAlreadyExists = errors.New("category slug already exists")
	ErrProductNotFound   = errors.New("product not found")
	ErrProductInactive   = errors.New("product is not available")

	// Cart errors
	ErrCartEmpty          = errors.New("cart is empty")
	ErrCartItemNotFound   = errors.New("cart item not found")
	ErrQuantityOutOfRange = errors.New("quantity is out of range")
	ErrInsufficientStock  = errors.New("insufficient stock")

	// Wishlist errors
	ErrWishlistItemNotFound = errors.New("wishlist item not found")
	ErrAlreadyInWishlist    = errors.New("product is already in the wishlist")

	// Order errors
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderAccessDenied   = errors.New("order access denied")
	ErrOrderNotCancellable = errors.New("order can no longer be cancelled")
	ErrInvalidStatusChange = errors.New("invalid order status change")
	ErrCacheNotAvailable   = errors.New("cache not available")

	// Filter errors
	ErrInvalidPage     = errors.New("page must be at least 1")
	ErrInvalidPageSize = errors.New("page size must be between 1 and 100")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

func IsAccountInactive(err error) bool {
	return errors.Is(err, ErrAccountInactive)
}

func IsAccountTypeNotFound(err error) bool {
	return errors.Is(err, ErrAccountTypeNotFound)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsEmailAlreadyExists(err error) bool {
	return errors.Is(err, ErrEmailAlreadyExists)
}

func IsEmailNotVerified(err error) bool {
	return errors.Is(err, ErrEmailNotVerified)
}

func IsInstituteFieldsRequired(err error) bool {
	return errors.Is(err, ErrInstituteFieldsRequired)
}

func IsNoValidOTPFound(err error) bool {
	return errors.Is(err, ErrNoValidOTPFound)
}

func IsInvalidOTPCode(err error) bool {
	return errors.Is(err, ErrInvalidOTPCode)
}

func IsOTPExpired(err error) bool {
	return errors.Is(err, ErrOTPExpired)
}

func IsAlreadyVerified(err error) bool {
	return errors.Is(err, ErrAlreadyVerified)
}

func IsOTPResendCooldown(err error) bool {
	return errors.Is(err, ErrOTPResendCooldown)
}

func IsCaptchaFailed(err error) bool {
	return errors.Is(err, ErrCaptchaFailed)
}

func IsCategoryNotFound(err error) bool {
	return errors.Is(err, ErrCategoryNotFound)
}

func IsProductNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound)
}

func IsCartEmpty(err error) bool {
	return errors.Is(err, ErrCartEmpty)
}

func IsInsufficientStock(err error) bool {
	return errors.Is(err, ErrInsufficientStock)
}

func IsOrderNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound)
}

func IsOrderAccessDenied(err error) bool {
	return errors.Is(err, ErrOrderAccessDenied)
}

func IsOrderNotCancellable(err error) bool {
	return errors.Is(err, ErrOrderNotCancellable)
}

func IsInvalidStatusChange(err error) bool {
	return errors.Is(err, ErrInvalidStatusChange)
}

func IsVerificationAlreadyOpen(err error) bool {
	return errors.Is(err, ErrVerificationAlreadyOpen)
}

func IsVerificationNotFound(err error) bool {
	return errors.Is(err, ErrVerificationNotFound)
}
