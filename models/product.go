package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/smart-stationery/backend/utils"
)

type Product struct {
	UUID uuid.UUID `gorm:"type:uuid;primaryKey" json:"uuid"`
	ID   int64     `gorm:"index:uk_products_seq_id,unique,where:id > 0" json:"id"`

	// CategoryID is the category's sequential id. Integrity is advisory: there
	// is no database foreign key, a dangling value resolves to not-found.
	CategoryID int64 `gorm:"not null;index:idx_products_category_id" json:"category_id"`

	Name        string  `gorm:"size:150;not null;index:idx_products_name" json:"name"`
	Brand       *string `gorm:"size:100;index:idx_products_brand" json:"brand,omitempty"`
	Description *string `gorm:"type:text" json:"description,omitempty"`

	// UnitPrice is in Tomans.
	UnitPrice int64 `gorm:"not null" json:"unit_price"`
	Stock     int   `gorm:"not null;default:0" json:"stock"`

	ImageURL *string        `gorm:"size:512" json:"image_url,omitempty"`
	Tags     pq.StringArray `gorm:"type:text[]" json:"tags,omitempty"`
	IsActive *bool          `gorm:"default:true;index:idx_products_is_active" json:"is_active"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_products_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

func (p *Product) SequenceName() string     { return utils.SequenceProductID }
func (p *Product) SequentialID() int64      { return p.ID }
func (p *Product) SetSequentialID(id int64) { p.ID = id }

func (p *Product) InStock(quantity int) bool {
	return p.Stock >= quantity
}

// ProductFilter represents filter criteria for product queries
type ProductFilter struct {
	UUID       *uuid.UUID
	ID         *int64
	CategoryID *int64
	Name       *string
	Brand      *string
	MinPrice   *int64
	MaxPrice   *int64
	IsActive   *bool
	InStock    *bool
}
