// Package testing provides test utilities and database setup for the platform test suites
package testing

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/smart-stationery/backend/models"
	"github.com/smart-stationery/backend/repository"
	"github.com/smart-stationery/backend/utils"
	"golang.org/x/crypto/bcrypt"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestUser creates a user of the given account type with a stamped
// sequential id. Institute users carry the required institute fields.
func (tf *TestFixtures) CreateTestUser(accountTypeName string) (*models.User, error) {
	var accountType models.AccountType
	err := tf.DB.DB.Where("type_name = ?", accountTypeName).Last(&accountType).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find account type %s: %w", accountTypeName, err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("TestPass123!"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	randomDigits := fmt.Sprintf("%09d", rand.Intn(900000000)+100000000)

	user := &models.User{
		UUID:            uuid.New(),
		AccountTypeID:   accountType.ID,
		FirstName:       "Sara",
		LastName:        "Mohammadi",
		Email:           fmt.Sprintf("sara.%d.%s@example.com", accountType.ID, randomDigits),
		Mobile:          fmt.Sprintf("+989%s", randomDigits),
		PasswordHash:    string(hashedPassword),
		IsActive:        utils.ToPtr(true),
		IsEmailVerified: utils.ToPtr(true),
	}

	if accountTypeName == models.AccountTypeInstitute {
		user.InstituteName = utils.ToPtr("Danesh Institute")
		user.RegistrationNumber = utils.ToPtr(fmt.Sprintf("%08d", rand.Intn(90000000)+10000000))
		user.ContactPhone = utils.ToPtr("02112345678")
		user.IsInstituteVerified = utils.ToPtr(false)
	}

	userRepo := repository.NewUserRepository(tf.DB.DB)
	seqRepo := repository.NewSequenceRepository(tf.DB.DB)
	if err := userRepo.SaveWithSequentialID(context.Background(), user, seqRepo); err != nil {
		return nil, fmt.Errorf("failed to create test user: %w", err)
	}

	user.AccountType = accountType
	return user, nil
}

// CreateTestAdmin creates an active back-office admin
func (tf *TestFixtures) CreateTestAdmin(username string) (*models.Admin, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("AdminPass123!"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	admin := &models.Admin{
		Username:     username,
		PasswordHash: string(hashedPassword),
		DisplayName:  "Test Admin",
		IsActive:     utils.ToPtr(true),
	}
	if err := tf.DB.DB.Create(admin).Error; err != nil {
		return nil, fmt.Errorf("failed to create test admin: %w", err)
	}
	return admin, nil
}

// CreateTestCategory creates a category with a stamped sequential id
func (tf *TestFixtures) CreateTestCategory(name, slug string) (*models.Category, error) {
	category := &models.Category{
		UUID: uuid.New(),
		Name: name,
		Slug: slug,
	}

	categoryRepo := repository.NewCategoryRepository(tf.DB.DB)
	seqRepo := repository.NewSequenceRepository(tf.DB.DB)
	if err := categoryRepo.SaveWithSequentialID(context.Background(), category, seqRepo); err != nil {
		return nil, fmt.Errorf("failed to create test category: %w", err)
	}
	return category, nil
}

// CreateTestProduct creates an active product in the given category with a
// stamped sequential id.
func (tf *TestFixtures) CreateTestProduct(categoryID int64, name string, unitPrice int64, stock int) (*models.Product, error) {
	product := &models.Product{
		UUID:       uuid.New(),
		CategoryID: categoryID,
		Name:       name,
		UnitPrice:  unitPrice,
		Stock:      stock,
		IsActive:   utils.ToPtr(true),
	}

	productRepo := repository.NewProductRepository(tf.DB.DB)
	seqRepo := repository.NewSequenceRepository(tf.DB.DB)
	if err := productRepo.SaveWithSequentialID(context.Background(), product, seqRepo); err != nil {
		return nil, fmt.Errorf("failed to create test product: %w", err)
	}
	return product, nil
}

// CreateTestCartItem puts a product into a user's cart
func (tf *TestFixtures) CreateTestCartItem(userID int64, productID int64, quantity int) (*models.CartItem, error) {
	item := &models.CartItem{
		UUID:       uuid.New(),
		UserID:     userID,
		ProductRef: models.NewIDRef(productID),
		Quantity:   quantity,
	}
	if err := tf.DB.DB.Create(item).Error; err != nil {
		return nil, fmt.Errorf("failed to create test cart item: %w", err)
	}
	return item, nil
}

// CreateLegacyCartItem puts a product into a user's cart using a key-kind
// reference, mimicking a row written before the id migration.
func (tf *TestFixtures) CreateLegacyCartItem(userID int64, productUUID uuid.UUID, quantity int) (*models.CartItem, error) {
	item := &models.CartItem{
		UUID:       uuid.New(),
		UserID:     userID,
		ProductRef: models.NewKeyRef(productUUID),
		Quantity:   quantity,
	}
	if err := tf.DB.DB.Create(item).Error; err != nil {
		return nil, fmt.Errorf("failed to create legacy cart item: %w", err)
	}
	return item, nil
}

// CreateTestOrder creates an order with one line per product, stamped with a
// sequential id.
func (tf *TestFixtures) CreateTestOrder(user *models.User, status string, products []*models.Product, quantity int) (*models.Order, error) {
	order := &models.Order{
		UUID:            uuid.New(),
		UserRef:         models.NewIDRef(user.ID),
		Status:          status,
		RecipientName:   user.FirstName + " " + user.LastName,
		ShippingAddress: "1 Enghelab Ave",
		ShippingCity:    "Tehran",
	}

	var items []*models.OrderItem
	for _, product := range products {
		order.TotalItems += quantity
		order.TotalAmount += product.UnitPrice * int64(quantity)
		items = append(items, &models.OrderItem{
			UUID:        uuid.New(),
			OrderUUID:   order.UUID,
			ProductRef:  models.NewIDRef(product.ID),
			ProductName: product.Name,
			UnitPrice:   product.UnitPrice,
			Quantity:    quantity,
		})
	}

	orderRepo := repository.NewOrderRepository(tf.DB.DB)
	seqRepo := repository.NewSequenceRepository(tf.DB.DB)
	ctx := context.Background()
	if err := orderRepo.SaveWithSequentialID(ctx, order, seqRepo); err != nil {
		return nil, fmt.Errorf("failed to create test order: %w", err)
	}
	if len(items) > 0 {
		if err := orderRepo.SaveItems(ctx, items); err != nil {
			return nil, fmt.Errorf("failed to create test order items: %w", err)
		}
		for _, item := range items {
			order.Items = append(order.Items, *item)
		}
	}
	return order, nil
}
