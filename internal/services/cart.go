package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/threepillars/storefront/internal/models"
	"github.com/threepillars/storefront/pkg/response"
	"gorm.io/gorm"
)

// VAT and shipping pricing. Amounts are ZAR.
var (
	vatRate               = decimal.NewFromFloat(0.15)
	freeShippingThreshold = decimal.NewFromInt(200)

	shippingRates = map[string]decimal.Decimal{
		models.ShippingStandard: decimal.NewFromInt(50),
		models.ShippingExpress:  decimal.NewFromInt(100),
		models.ShippingSameDay:  decimal.NewFromInt(150),
		models.ShippingPudo:     decimal.NewFromInt(40),
	}
)

// CartExpiryDays is the rolling idle window before an open cart expires.
const CartExpiryDays = 30

type CartService struct {
	db        *gorm.DB
	configSvc *SystemConfigService
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db, configSvc: NewSystemConfigService(db)}
}

func (s *CartService) expiryWindow() time.Duration {
	days := s.configSvc.GetInt("cart_expiry_days", CartExpiryDays)
	return time.Duration(days) * 24 * time.Hour
}

// GetOrCreate finds the open cart for a session within a company, creating
// one if absent. Expired carts are marked and replaced.
func (s *CartService) GetOrCreate(companyID, sessionKey string, userID *uint) (*models.Cart, error) {
	if sessionKey == "" {
		return nil, response.NewBadRequest("session key is required")
	}

	var cart models.Cart
	err := s.db.Preload("Items.Product").
		Where("company_id = ? AND session_key = ? AND status = ?",
			companyID, sessionKey, models.CartStatusOpen).
		First(&cart).Error
	if err == nil {
		if cart.IsExpired(time.Now()) {
			if err := s.db.Model(&cart).Update("status", models.CartStatusExpired).Error; err != nil {
				return nil, err
			}
		} else {
			return &cart, nil
		}
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	cart = models.Cart{
		CompanyID:  companyID,
		SessionKey: sessionKey,
		UserID:     userID,
		Status:     models.CartStatusOpen,
		ExpiresAt:  time.Now().Add(s.expiryWindow()),
	}
	if err := s.db.Create(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// touch rolls the cart expiry forward after a mutation.
func (s *CartService) touch(cart *models.Cart) error {
	cart.ExpiresAt = time.Now().Add(s.expiryWindow())
	return s.db.Model(cart).Update("expires_at", cart.ExpiresAt).Error
}

type AddItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// AddItem puts a product in the cart, merging quantity with any existing
// line for the same product. The unit price is snapshotted at add time.
func (s *CartService) AddItem(cart *models.Cart, req *AddItemRequest) (*models.CartItem, error) {
	var product models.Product
	err := s.db.Where("id = ? AND company_id = ?", req.ProductID, cart.CompanyID).
		First(&product).Error
	if err == gorm.ErrRecordNotFound {
		return nil, response.NewNotFound("product not found")
	}
	if err != nil {
		return nil, err
	}
	if product.Status != models.ProductStatusActive {
		return nil, response.NewUnprocessable("product is not available for sale")
	}

	var item models.CartItem
	err = s.db.Where("cart_id = ? AND product_id = ?", cart.ID, product.ID).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		if !product.InStock(req.Quantity) {
			return nil, response.NewConflict(fmt.Sprintf("only %d in stock", product.Stock))
		}
		item = models.CartItem{
			CartID:    cart.ID,
			ProductID: product.ID,
			Quantity:  req.Quantity,
			UnitPrice: product.Price,
		}
		if err := s.db.Create(&item).Error; err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	} else {
		newQty := item.Quantity + req.Quantity
		if !product.InStock(newQty) {
			return nil, response.NewConflict(fmt.Sprintf("only %d in stock", product.Stock))
		}
		if err := s.db.Model(&item).Update("quantity", newQty).Error; err != nil {
			return nil, err
		}
		item.Quantity = newQty
	}

	if err := s.touch(cart); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItemQuantity sets an absolute quantity; zero removes the line.
func (s *CartService) UpdateItemQuantity(cart *models.Cart, productID string, quantity int) error {
	if quantity < 0 {
		return response.NewBadRequest("quantity cannot be negative")
	}
	if quantity == 0 {
		return s.RemoveItem(cart, productID)
	}

	var item models.CartItem
	err := s.db.Where("cart_id = ? AND product_id = ?", cart.ID, productID).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return response.NewNotFound("item not in cart")
	}
	if err != nil {
		return err
	}

	var product models.Product
	if err := s.db.First(&product, "id = ?", productID).Error; err != nil {
		return err
	}
	if !product.InStock(quantity) {
		return response.NewConflict(fmt.Sprintf("only %d in stock", product.Stock))
	}

	if err := s.db.Model(&item).Update("quantity", quantity).Error; err != nil {
		return err
	}
	return s.touch(cart)
}

func (s *CartService) RemoveItem(cart *models.Cart, productID string) error {
	result := s.db.Where("cart_id = ? AND product_id = ?", cart.ID, productID).
		Delete(&models.CartItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return response.NewNotFound("item not in cart")
	}
	return s.touch(cart)
}

func (s *CartService) Clear(cart *models.Cart) error {
	if err := s.db.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	return s.touch(cart)
}

// Totals prices a cart for a shipping method: 15% VAT on the discounted
// subtotal, free standard shipping at or above the threshold.
func (s *CartService) Totals(cart *models.Cart, shippingMethod string) (*models.CartTotals, error) {
	rate, ok := shippingRates[shippingMethod]
	if !ok {
		return nil, response.NewBadRequest(fmt.Sprintf("unknown shipping method %q", shippingMethod))
	}

	var items []models.CartItem
	if err := s.db.Where("cart_id = ?", cart.ID).Find(&items).Error; err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	for i := range items {
		subtotal = subtotal.Add(items[i].LineTotal())
	}

	discount := cart.Discount
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	taxable := subtotal.Sub(discount)
	vat := taxable.Mul(vatRate).Round(2)

	shipping := rate
	if shippingMethod == models.ShippingStandard &&
		taxable.GreaterThanOrEqual(freeShippingThreshold) {
		shipping = decimal.Zero
	}

	return &models.CartTotals{
		Subtotal: subtotal,
		Discount: discount,
		VAT:      vat,
		Shipping: shipping,
		Total:    taxable.Add(vat).Add(shipping),
	}, nil
}

// ExpireStale marks open carts past their expiry. Returns the count expired.
func (s *CartService) ExpireStale() (int64, error) {
	result := s.db.Model(&models.Cart{}).
		Where("status = ? AND expires_at < ?", models.CartStatusOpen, time.Now()).
		Update("status", models.CartStatusExpired)
	return result.RowsAffected, result.Error
}
