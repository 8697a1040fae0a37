// Package businessflow contains the business logic for the application.
package businessflow

import (
	"time"

	"github.com/smart-stationery/backend/app/dto"
	"github.com/smart-stationery/backend/models"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds all client-related information for audit logging and session tracking
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	RequestID  string            `json:"request_id,omitempty"`
	SessionID  string            `json:"session_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Additional: make(map[string]string),
	}
}

// AddAdditional adds additional custom information to the metadata
func (cm *ClientMetadata) AddAdditional(key, value string) {
	if cm.Additional == nil {
		cm.Additional = make(map[string]string)
	}
	cm.Additional[key] = value
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// SetSessionID sets the session ID
func (cm *ClientMetadata) SetSessionID(sessionID string) {
	cm.SessionID = sessionID
}

// ToUserDTO converts a user model to UserDTO for API responses
func ToUserDTO(user models.User) dto.UserDTO {
	return dto.UserDTO{
		ID:                  user.ID,
		UUID:                user.UUID.String(),
		AccountType:         user.AccountType.TypeName,
		FirstName:           user.FirstName,
		LastName:            user.LastName,
		Mobile:              user.Mobile,
		Email:               user.Email,
		InstituteName:       user.InstituteName,
		RegistrationNumber:  user.RegistrationNumber,
		ContactPhone:        user.ContactPhone,
		PostalCode:          user.PostalCode,
		IsEmailVerified:     user.IsEmailVerified,
		IsInstituteVerified: user.IsInstituteVerified,
		IsActive:            user.IsActive,
		CreatedAt:           user.CreatedAt.Format(time.RFC3339),
	}
}

// ToSessionDTO converts a session model to SessionDTO
func ToSessionDTO(session models.UserSession) dto.SessionDTO {
	refreshToken := ""
	if session.RefreshToken != nil {
		refreshToken = *session.RefreshToken
	}
	return dto.SessionDTO{
		SessionToken: session.SessionToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(time.Until(session.ExpiresAt).Seconds()),
		TokenType:    "Bearer",
		CreatedAt:    session.CreatedAt.Format(time.RFC3339),
	}
}

// ToCategoryDTO converts a category model to CategoryDTO
func ToCategoryDTO(category models.Category) dto.CategoryDTO {
	description := ""
	if category.Description != nil {
		description = *category.Description
	}
	return dto.CategoryDTO{
		ID:          category.ID,
		UUID:        category.UUID.String(),
		Name:        category.Name,
		Slug:        category.Slug,
		Description: description,
	}
}

// ToProductDTO converts a product model to ProductDTO
func ToProductDTO(product models.Product) dto.ProductDTO {
	out := dto.ProductDTO{
		ID:         product.ID,
		UUID:       product.UUID.String(),
		CategoryID: product.CategoryID,
		Name:       product.Name,
		UnitPrice:  product.UnitPrice,
		Stock:      product.Stock,
		InStock:    product.InStock(1),
		IsActive:   product.IsActive,
	}
	if product.Description != nil {
		out.Description = *product.Description
	}
	if product.Brand != nil {
		out.Brand = *product.Brand
	}
	if product.ImageURL != nil {
		out.ImageURL = *product.ImageURL
	}
	if len(product.Tags) > 0 {
		out.Tags = []string(product.Tags)
	}
	return out
}

// ToOrderItemDTO converts an order line to OrderItemDTO
func ToOrderItemDTO(item models.OrderItem) dto.OrderItemDTO {
	return dto.OrderItemDTO{
		UUID:        item.UUID.String(),
		ProductRef:  item.ProductRef.Value,
		ProductName: item.ProductName,
		UnitPrice:   item.UnitPrice,
		Quantity:    item.Quantity,
		LineTotal:   item.UnitPrice * int64(item.Quantity),
	}
}

// ToOrderDTO converts an order model (with items) to OrderDTO
func ToOrderDTO(order models.Order) dto.OrderDTO {
	out := dto.OrderDTO{
		ID:              order.ID,
		UUID:            order.UUID.String(),
		Status:          order.Status,
		TotalItems:      order.TotalItems,
		TotalAmount:     order.TotalAmount,
		RecipientName:   order.RecipientName,
		ShippingAddress: order.ShippingAddress,
		ShippingCity:    order.ShippingCity,
		CreatedAt:       order.CreatedAt.Format(time.RFC3339),
	}
	if order.PostalCode != nil {
		out.PostalCode = *order.PostalCode
	}
	if order.Note != nil {
		out.Note = *order.Note
	}
	if order.ConfirmedAt != nil {
		s := order.ConfirmedAt.Format(time.RFC3339)
		out.ConfirmedAt = &s
	}
	if order.CancelledAt != nil {
		s := order.CancelledAt.Format(time.RFC3339)
		out.CancelledAt = &s
	}
	for _, item := range order.Items {
		out.Items = append(out.Items, ToOrderItemDTO(item))
	}
	return out
}

// ToInstituteVerificationDTO converts a verification model to its DTO
func ToInstituteVerificationDTO(v models.InstituteVerification) dto.InstituteVerificationDTO {
	out := dto.InstituteVerificationDTO{
		UUID:        v.UUID.String(),
		UserID:      v.UserID,
		DocumentURL: v.DocumentURL,
		Status:      v.Status,
		ReviewNotes: v.ReviewNotes,
		CreatedAt:   v.CreatedAt.Format(time.RFC3339),
	}
	if v.Message != nil {
		out.Message = *v.Message
	}
	if v.ReviewedAt != nil {
		s := v.ReviewedAt.Format(time.RFC3339)
		out.ReviewedAt = &s
	}
	return out
}
