package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Cart statuses.
const (
	CartStatusOpen      = "open"
	CartStatusConverted = "converted"
	CartStatusExpired   = "expired"
)

// Shipping methods.
const (
	ShippingStandard = "standard"
	ShippingExpress  = "express"
	ShippingSameDay  = "same_day"
	ShippingPudo     = "pudo"
)

// Cart is an open basket for one customer session within a company.
// ExpiresAt rolls forward on every mutation.
type Cart struct {
	ID         string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	CompanyID  string          `gorm:"type:varchar(36);index;not null" json:"company_id"`
	SessionKey string          `gorm:"size:64;index" json:"session_key"`
	UserID     *uint           `gorm:"index" json:"user_id"`
	Status     string          `gorm:"size:16;default:open;index" json:"status"`
	Items      []CartItem      `gorm:"foreignKey:CartID" json:"items,omitempty"`
	Discount   decimal.Decimal `gorm:"type:decimal(10,2)" json:"discount"`
	ExpiresAt  time.Time       `gorm:"index" json:"expires_at"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (Cart) TableName() string {
	return "carts"
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// IsExpired reports whether the cart has passed its rolling expiry.
func (c *Cart) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

type CartItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	CartID    string          `gorm:"type:varchar(36);uniqueIndex:idx_cart_product;not null" json:"cart_id"`
	ProductID string          `gorm:"type:varchar(36);uniqueIndex:idx_cart_product;not null" json:"product_id"`
	Product   *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// LineTotal is unit price times quantity.
func (i *CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CartTotals is the priced breakdown of a cart for a chosen shipping method.
type CartTotals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	VAT      decimal.Decimal `json:"vat"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}
