package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product statuses.
const (
	ProductStatusDraft    = "draft"
	ProductStatusActive   = "active"
	ProductStatusArchived = "archived"
)

type Category struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	CompanyID string    `gorm:"type:varchar(36);uniqueIndex:idx_category_slug;not null" json:"company_id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Slug      string    `gorm:"uniqueIndex:idx_category_slug;size:128;not null" json:"slug"`
	ParentID  *string   `gorm:"type:varchar(36);index" json:"parent_id"`
	SortOrder int       `gorm:"default:0" json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type Product struct {
	ID           string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	CompanyID    string          `gorm:"type:varchar(36);uniqueIndex:idx_product_sku;index;not null" json:"company_id"`
	CategoryID   *string         `gorm:"type:varchar(36);index" json:"category_id"`
	Category     *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	SKU          string          `gorm:"uniqueIndex:idx_product_sku;size:64;not null" json:"sku"`
	Name         string          `gorm:"size:256;not null" json:"name"`
	Description  string          `gorm:"type:text" json:"description"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	ComparePrice decimal.Decimal `gorm:"type:decimal(10,2)" json:"compare_price"`
	Stock        int             `gorm:"default:0" json:"stock"`
	Status       string          `gorm:"size:16;default:draft;index" json:"status"`
	PublishedAt  *time.Time      `json:"published_at"`
	Images       []ProductImage  `gorm:"foreignKey:ProductID" json:"images,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// InStock reports whether the requested quantity can be fulfilled.
func (p *Product) InStock(quantity int) bool {
	return p.Stock >= quantity
}

type ProductImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID string    `gorm:"type:varchar(36);index;not null" json:"product_id"`
	URL       string    `gorm:"size:512;not null" json:"url"`
	AltText   string    `gorm:"size:256" json:"alt_text"`
	SortOrder int       `gorm:"default:0" json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

func (ProductImage) TableName() string {
	return "product_images"
}
