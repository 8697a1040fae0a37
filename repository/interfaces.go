// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/smart-stationery/backend/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByUUID(ctx context.Context, key uuid.UUID) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Update(ctx context.Context, entity *T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// IdentifiedRepository adds the dual-identifier operations shared by every
// entity type that carries a sequential integer id next to its storage key.
type IdentifiedRepository[T any, F any] interface {
	Repository[T, F]
	BySequentialID(ctx context.Context, id int64) (*T, error)
	ByAnyID(ctx context.Context, raw string) (*T, error)
	ByRef(ctx context.Context, ref models.EntityRef) (*T, error)
	SaveWithSequentialID(ctx context.Context, entity *T, sequences SequenceRepository) error
	ListUnstamped(ctx context.Context) ([]*T, error)
	MaxSequentialID(ctx context.Context) (int64, error)
	StampSequentialID(ctx context.Context, entity *T, sequences SequenceRepository) error
}

// SequenceRepository is the keyed counter store behind sequential ids.
type SequenceRepository interface {
	Allocate(ctx context.Context, name string) (int64, error)
	Current(ctx context.Context, name string) (int64, error)
	Reset(ctx context.Context, name string, value int64) error
}

// AccountTypeRepository defines operations for account types
type AccountTypeRepository interface {
	Repository[models.AccountType, models.AccountTypeFilter]
	ByTypeName(ctx context.Context, typeName string) (*models.AccountType, error)
}

// UserRepository defines operations for users
type UserRepository interface {
	IdentifiedRepository[models.User, models.UserFilter]
	ByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, userUUID uuid.UUID, passwordHash string) error
	UpdateEmailVerification(ctx context.Context, userUUID uuid.UUID, verifiedAt *time.Time) error
	SetInstituteVerified(ctx context.Context, userUUID uuid.UUID, verified bool) error
	SetActive(ctx context.Context, userUUID uuid.UUID, active bool) error
	UpdateLastLogin(ctx context.Context, userUUID uuid.UUID, at time.Time) error
}

// AdminRepository defines operations for back-office admins
type AdminRepository interface {
	Repository[models.Admin, models.AdminFilter]
	ByID(ctx context.Context, id uint) (*models.Admin, error)
	ByUsername(ctx context.Context, username string) (*models.Admin, error)
	UpdateLastLogin(ctx context.Context, adminID uint, at time.Time) error
}

// CategoryRepository defines operations for categories
type CategoryRepository interface {
	IdentifiedRepository[models.Category, models.CategoryFilter]
	BySlug(ctx context.Context, slug string) (*models.Category, error)
	List(ctx context.Context) ([]*models.Category, error)
}

// ProductRepository defines operations for products
type ProductRepository interface {
	IdentifiedRepository[models.Product, models.ProductFilter]
	// DecrementStock atomically reduces stock, failing when the remaining
	// stock does not cover the quantity.
	DecrementStock(ctx context.Context, productUUID uuid.UUID, quantity int) error
	IncrementStock(ctx context.Context, productUUID uuid.UUID, quantity int) error
	Delete(ctx context.Context, productUUID uuid.UUID) error
}

// CartItemRepository defines operations for cart lines
type CartItemRepository interface {
	Repository[models.CartItem, models.CartItemFilter]
	ListByUser(ctx context.Context, userID int64) ([]*models.CartItem, error)
	ByUserAndRef(ctx context.Context, userID int64, ref models.EntityRef) (*models.CartItem, error)
	UpdateQuantity(ctx context.Context, itemUUID uuid.UUID, quantity int) error
	Delete(ctx context.Context, itemUUID uuid.UUID) error
	ClearUser(ctx context.Context, userID int64) error
	PruneDeactivated(ctx context.Context) (int64, error)
	ListLegacyRefs(ctx context.Context) ([]*models.CartItem, error)
}

// OrderRepository defines operations for orders and their line items
type OrderRepository interface {
	IdentifiedRepository[models.Order, models.OrderFilter]
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*models.Order, error)
	ItemsByOrder(ctx context.Context, orderUUID uuid.UUID) ([]*models.OrderItem, error)
	SaveItems(ctx context.Context, items []*models.OrderItem) error
	UpdateStatus(ctx context.Context, orderUUID uuid.UUID, status string, at time.Time) error
	ListAwaitingVerificationBefore(ctx context.Context, cutoff time.Time) ([]*models.Order, error)
	ListLegacyRefs(ctx context.Context) ([]*models.Order, error)
	ListLegacyItemRefs(ctx context.Context) ([]*models.OrderItem, error)
	UpdateItem(ctx context.Context, item *models.OrderItem) error
}

// WishlistRepository defines operations for wishlist entries
type WishlistRepository interface {
	Repository[models.WishlistItem, models.WishlistItemFilter]
	ListByUser(ctx context.Context, userID int64) ([]*models.WishlistItem, error)
	ByUserAndRef(ctx context.Context, userID int64, ref models.EntityRef) (*models.WishlistItem, error)
	Delete(ctx context.Context, itemUUID uuid.UUID) error
	ListLegacyRefs(ctx context.Context) ([]*models.WishlistItem, error)
}

// OTPVerificationRepository defines operations for OTP verifications
type OTPVerificationRepository interface {
	Repository[models.OTPVerification, models.OTPVerificationFilter]
	ListActiveOTPs(ctx context.Context, userUUID uuid.UUID) ([]*models.OTPVerification, error)
	ExpireOldOTPs(ctx context.Context, userUUID uuid.UUID, otpType string) error
	CleanupExpired(ctx context.Context) error
}

// UserSessionRepository defines operations for user sessions
type UserSessionRepository interface {
	Repository[models.UserSession, models.UserSessionFilter]
	BySessionToken(ctx context.Context, token string) (*models.UserSession, error)
	ByRefreshToken(ctx context.Context, token string) (*models.UserSession, error)
	RevokeSession(ctx context.Context, sessionID uint) error
	RevokeAllUserSessions(ctx context.Context, userUUID uuid.UUID) error
	CleanupExpiredSessions(ctx context.Context) error
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	Repository[models.AuditLog, models.AuditLogFilter]
	ListByUser(ctx context.Context, userUUID uuid.UUID, limit, offset int) ([]*models.AuditLog, error)
	ListByAction(ctx context.Context, action string, limit, offset int) ([]*models.AuditLog, error)
}

// InstituteVerificationRepository defines operations for institute reviews
type InstituteVerificationRepository interface {
	Repository[models.InstituteVerification, models.InstituteVerificationFilter]
	PendingByUser(ctx context.Context, userID int64) (*models.InstituteVerification, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]*models.InstituteVerification, error)
}
