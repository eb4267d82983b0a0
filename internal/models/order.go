package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order statuses.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
	OrderStatusRefunded  = "refunded"
)

// Payment statuses.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
)

type Order struct {
	ID          string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	CompanyID   string          `gorm:"type:varchar(36);uniqueIndex:idx_order_number;index;not null" json:"company_id"`
	Number      string          `gorm:"uniqueIndex:idx_order_number;size:32;not null" json:"number"`
	UserID      *uint           `gorm:"index" json:"user_id"`
	CartID      *string         `gorm:"type:varchar(36)" json:"cart_id"`
	Status      string          `gorm:"size:16;default:pending;index" json:"status"`
	Items       []OrderItem     `gorm:"foreignKey:OrderID" json:"items,omitempty"`

	CustomerName  string `gorm:"size:128" json:"customer_name"`
	CustomerEmail string `gorm:"size:128" json:"customer_email"`
	CustomerPhone string `gorm:"size:32" json:"customer_phone"`

	ShippingMethod  string `gorm:"size:16" json:"shipping_method"`
	ShippingAddress string `gorm:"size:512" json:"shipping_address"`
	PudoLockerCode  string `gorm:"size:64" json:"pudo_locker_code"`
	TrackingNumber  string `gorm:"size:64" json:"tracking_number"`

	Subtotal decimal.Decimal `gorm:"type:decimal(10,2)" json:"subtotal"`
	Discount decimal.Decimal `gorm:"type:decimal(10,2)" json:"discount"`
	VAT      decimal.Decimal `gorm:"type:decimal(10,2)" json:"vat"`
	Shipping decimal.Decimal `gorm:"type:decimal(10,2)" json:"shipping"`
	Total    decimal.Decimal `gorm:"type:decimal(10,2)" json:"total"`

	PaymentStatus    string     `gorm:"size:16;default:pending" json:"payment_status"`
	YocoCheckoutID   string     `gorm:"size:128;index" json:"yoco_checkout_id"`
	YocoPaymentID    string     `gorm:"size:128" json:"yoco_payment_id"`
	PaidAt           *time.Time `json:"paid_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// TotalCents returns the order total in integer cents, as the payment
// gateway expects.
func (o *Order) TotalCents() int64 {
	return o.Total.Mul(decimal.NewFromInt(100)).IntPart()
}

type OrderItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     string          `gorm:"type:varchar(36);index;not null" json:"order_id"`
	ProductID   string          `gorm:"type:varchar(36);index" json:"product_id"`
	ProductName string          `gorm:"size:256;not null" json:"product_name"`
	SKU         string          `gorm:"size:64" json:"sku"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"line_total"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
