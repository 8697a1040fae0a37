package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/smart-stationery/backend/utils"
)

type Category struct {
	UUID uuid.UUID `gorm:"type:uuid;primaryKey" json:"uuid"`
	ID   int64     `gorm:"index:uk_categories_seq_id,unique,where:id > 0" json:"id"`

	Name        string  `gorm:"size:100;not null" json:"name"`
	Slug        string  `gorm:"size:100;not null;uniqueIndex:uk_categories_slug" json:"slug"`
	Description *string `gorm:"type:text" json:"description,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}

func (c *Category) SequenceName() string     { return utils.SequenceCategoryID }
func (c *Category) SequentialID() int64      { return c.ID }
func (c *Category) SetSequentialID(id int64) { c.ID = id }

// CategoryFilter represents filter criteria for category queries
type CategoryFilter struct {
	UUID *uuid.UUID
	ID   *int64
	Name *string
	Slug *string
}
