// Package dto contains Data Transfer Objects for API request and response structures
package dto

// CaptchaResponse returns a rotate captcha challenge for the admin login page
type CaptchaResponse struct {
	ChallengeID       string `json:"challenge_id"`
	MasterImageBase64 string `json:"master_image_base64"`
	ThumbImageBase64  string `json:"thumb_image_base64"`
}

// AdminLoginRequest represents the captcha-protected admin login form
type AdminLoginRequest struct {
	Username    string  `json:"username" validate:"required,max=64"`
	Password    string  `json:"password" validate:"required"`
	ChallengeID string  `json:"challenge_id" validate:"required"`
	Angle       float64 `json:"angle" validate:"required"`
}

// AdminLoginResponse represents the response after a successful admin login
type AdminLoginResponse struct {
	Message      string `json:"message"`
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	Username     string `json:"username"`
}

// AdminListUsersRequest filters the back-office user listing
type AdminListUsersRequest struct {
	AccountType *string `json:"account_type,omitempty" query:"account_type" validate:"omitempty,oneof=personal institute"`
	IsActive    *bool   `json:"is_active,omitempty" query:"is_active"`
	Page        int     `json:"page" query:"page" validate:"omitempty,min=1"`
	PageSize    int     `json:"page_size" query:"page_size" validate:"omitempty,min=1,max=100"`
}

// AdminListUsersResponse is a page of users
type AdminListUsersResponse struct {
	Users    []UserDTO `json:"users"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}

// SetUserActiveRequest activates or deactivates a user account
type SetUserActiveRequest struct {
	IsActive bool `json:"is_active"`
}
