package services

import (
	"fmt"
	"time"

	"github.com/threepillars/storefront/internal/models"
	"github.com/threepillars/storefront/pkg/response"
	"gorm.io/gorm"
)

type OrderService struct {
	db      *gorm.DB
	cartSvc *CartService
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db, cartSvc: NewCartService(db)}
}

// nextOrderNumber allocates the next ORD-YYYY-NNNN number for a company.
// The sequence resets each calendar year and is per company. Must run
// inside the checkout transaction so concurrent checkouts cannot collide.
func (s *OrderService) nextOrderNumber(tx *gorm.DB, companyID string) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("ORD-%d-", year)

	var last models.Order
	err := tx.Where("company_id = ? AND number LIKE ?", companyID, prefix+"%").
		Order("number DESC").
		First(&last).Error

	seq := 1
	if err == nil {
		var lastSeq int
		if _, scanErr := fmt.Sscanf(last.Number, "ORD-%d-%04d", &year, &lastSeq); scanErr == nil {
			seq = lastSeq + 1
		}
	} else if err != gorm.ErrRecordNotFound {
		return "", err
	}

	return fmt.Sprintf("%s%04d", prefix, seq), nil
}

type CheckoutRequest struct {
	CustomerName    string `json:"customer_name" binding:"required"`
	CustomerEmail   string `json:"customer_email" binding:"required,email"`
	CustomerPhone   string `json:"customer_phone"`
	ShippingMethod  string `json:"shipping_method" binding:"required"`
	ShippingAddress string `json:"shipping_address"`
	PudoLockerCode  string `json:"pudo_locker_code"`
}

// Checkout converts an open cart into a pending order. Stock is decremented
// and the cart marked converted in one transaction.
func (s *OrderService) Checkout(cart *models.Cart, req *CheckoutRequest) (*models.Order, error) {
	if cart.Status != models.CartStatusOpen {
		return nil, response.NewConflict("cart is not open")
	}
	if cart.IsExpired(time.Now()) {
		return nil, response.NewConflict("cart has expired")
	}
	if req.ShippingMethod == models.ShippingPudo && req.PudoLockerCode == "" {
		return nil, response.NewBadRequest("pudo shipping requires a locker code")
	}
	if req.ShippingMethod != models.ShippingPudo && req.ShippingAddress == "" {
		return nil, response.NewBadRequest("shipping address is required")
	}

	var items []models.CartItem
	if err := s.db.Where("cart_id = ?", cart.ID).Find(&items).Error; err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, response.NewUnprocessable("cart is empty")
	}

	totals, err := s.cartSvc.Totals(cart, req.ShippingMethod)
	if err != nil {
		return nil, err
	}

	var order *models.Order
	err = s.db.Transaction(func(tx *gorm.DB) error {
		number, err := s.nextOrderNumber(tx, cart.CompanyID)
		if err != nil {
			return err
		}

		cartID := cart.ID
		order = &models.Order{
			CompanyID:       cart.CompanyID,
			Number:          number,
			UserID:          cart.UserID,
			CartID:          &cartID,
			Status:          models.OrderStatusPending,
			CustomerName:    req.CustomerName,
			CustomerEmail:   req.CustomerEmail,
			CustomerPhone:   req.CustomerPhone,
			ShippingMethod:  req.ShippingMethod,
			ShippingAddress: req.ShippingAddress,
			PudoLockerCode:  req.PudoLockerCode,
			Subtotal:        totals.Subtotal,
			Discount:        totals.Discount,
			VAT:             totals.VAT,
			Shipping:        totals.Shipping,
			Total:           totals.Total,
			PaymentStatus:   models.PaymentStatusPending,
		}
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		for i := range items {
			var product models.Product
			if err := tx.First(&product, "id = ?", items[i].ProductID).Error; err != nil {
				return err
			}
			if !product.InStock(items[i].Quantity) {
				return response.NewConflict(fmt.Sprintf(
					"insufficient stock for %s: %d left", product.Name, product.Stock))
			}
			if err := tx.Model(&product).
				Update("stock", product.Stock-items[i].Quantity).Error; err != nil {
				return err
			}

			line := models.OrderItem{
				OrderID:     order.ID,
				ProductID:   product.ID,
				ProductName: product.Name,
				SKU:         product.SKU,
				Quantity:    items[i].Quantity,
				UnitPrice:   items[i].UnitPrice,
				LineTotal:   items[i].LineTotal(),
			}
			if err := tx.Create(&line).Error; err != nil {
				return err
			}
		}

		return tx.Model(cart).Update("status", models.CartStatusConverted).Error
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) Get(companyID, orderID string) (*models.Order, error) {
	var order models.Order
	err := s.db.Preload("Items").
		Where("id = ? AND company_id = ?", orderID, companyID).
		First(&order).Error
	if err == gorm.ErrRecordNotFound {
		return nil, response.NewNotFound("order not found")
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *OrderService) GetByNumber(companyID, number string) (*models.Order, error) {
	var order models.Order
	err := s.db.Preload("Items").
		Where("number = ? AND company_id = ?", number, companyID).
		First(&order).Error
	if err == gorm.ErrRecordNotFound {
		return nil, response.NewNotFound("order not found")
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

type OrderFilter struct {
	Status   string
	Page     int
	PageSize int
}

type OrderPage struct {
	Items    []models.Order `json:"items"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

func (s *OrderService) List(companyID string, filter OrderFilter) (*OrderPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	query := s.db.Model(&models.Order{}).Where("company_id = ?", companyID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var orders []models.Order
	err := query.Order("created_at DESC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	return &OrderPage{Items: orders, Total: total, Page: filter.Page, PageSize: filter.PageSize}, nil
}

// Allowed order status transitions.
var orderTransitions = map[string][]string{
	models.OrderStatusPending:   {models.OrderStatusPaid, models.OrderStatusCancelled},
	models.OrderStatusPaid:      {models.OrderStatusShipped, models.OrderStatusRefunded},
	models.OrderStatusShipped:   {models.OrderStatusDelivered},
	models.OrderStatusDelivered: {},
	models.OrderStatusCancelled: {},
	models.OrderStatusRefunded:  {},
}

func (s *OrderService) SetStatus(order *models.Order, status string) error {
	allowed, ok := orderTransitions[order.Status]
	if !ok {
		return response.NewBadRequest(fmt.Sprintf("unknown order status %q", order.Status))
	}
	valid := false
	for _, next := range allowed {
		if next == status {
			valid = true
			break
		}
	}
	if !valid {
		return response.NewConflict(fmt.Sprintf(
			"cannot transition order from %s to %s", order.Status, status))
	}
	if err := s.db.Model(order).Update("status", status).Error; err != nil {
		return err
	}
	order.Status = status
	return nil
}

// MarkPaid records a successful payment against an order. Idempotent for
// repeated webhook deliveries carrying the same payment.
func (s *OrderService) MarkPaid(order *models.Order, paymentID string) error {
	if order.PaymentStatus == models.PaymentStatusSucceeded {
		return nil
	}
	now := time.Now()
	err := s.db.Model(order).Updates(map[string]interface{}{
		"status":          models.OrderStatusPaid,
		"payment_status":  models.PaymentStatusSucceeded,
		"yoco_payment_id": paymentID,
		"paid_at":         now,
	}).Error
	if err != nil {
		return err
	}
	order.Status = models.OrderStatusPaid
	order.PaymentStatus = models.PaymentStatusSucceeded
	order.YocoPaymentID = paymentID
	order.PaidAt = &now
	return nil
}

// MarkPaymentFailed records a failed payment attempt without touching the
// order status; the customer may retry.
func (s *OrderService) MarkPaymentFailed(order *models.Order) error {
	if order.PaymentStatus == models.PaymentStatusSucceeded {
		return response.NewConflict("order is already paid")
	}
	if err := s.db.Model(order).Update("payment_status", models.PaymentStatusFailed).Error; err != nil {
		return err
	}
	order.PaymentStatus = models.PaymentStatusFailed
	return nil
}

// SetTracking stores the courier tracking number on a shipped order.
func (s *OrderService) SetTracking(order *models.Order, trackingNumber string) error {
	if err := s.db.Model(order).Update("tracking_number", trackingNumber).Error; err != nil {
		return err
	}
	order.TrackingNumber = trackingNumber
	return nil
}

// FindByCheckoutID locates an order by the payment gateway checkout id,
// used by webhook processing where only the gateway reference is known.
func (s *OrderService) FindByCheckoutID(checkoutID string) (*models.Order, error) {
	var order models.Order
	err := s.db.Where("yoco_checkout_id = ?", checkoutID).First(&order).Error
	if err == gorm.ErrRecordNotFound {
		return nil, response.NewNotFound("order not found for checkout")
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}
