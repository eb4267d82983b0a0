package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/threepillars/storefront/internal/middleware"
	"github.com/threepillars/storefront/internal/models"
	"github.com/threepillars/storefront/internal/services"
	"github.com/threepillars/storefront/pkg/response"
	"gorm.io/gorm"
)

// SessionKeyHeader carries the anonymous shopper session identifier.
const SessionKeyHeader = "X-Session-Key"

type CartHandler struct {
	cartService *services.CartService
}

func NewCartHandler(db *gorm.DB) *CartHandler {
	return &CartHandler{
		cartService: services.NewCartService(db),
	}
}

func (h *CartHandler) currentCart(c *gin.Context) (*models.Cart, error) {
	company := middleware.GetCompany(c)
	sessionKey := c.GetHeader(SessionKeyHeader)
	if sessionKey == "" {
		sessionKey = c.Query("session_key")
	}

	var userID *uint
	if id := middleware.GetUserID(c); id != 0 {
		userID = &id
	}

	return h.cartService.GetOrCreate(company.ID, sessionKey, userID)
}

// GetCart returns (creating if needed) the session's open cart with totals
// GET /api/shop/cart
func (h *CartHandler) GetCart(c *gin.Context) {
	cart, err := h.currentCart(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.respondWithTotals(c, cart)
}

// AddItem puts a product in the cart
// POST /api/shop/cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	var req services.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	cart, err := h.currentCart(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if _, err := h.cartService.AddItem(cart, &req); err != nil {
		response.Error(c, err)
		return
	}

	h.respondWithTotals(c, cart)
}

// UpdateItem sets an item's quantity; zero removes the line
// PUT /api/shop/cart/items/:product_id
func (h *CartHandler) UpdateItem(c *gin.Context) {
	var req struct {
		Quantity int `json:"quantity" binding:"min=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	cart, err := h.currentCart(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.cartService.UpdateItemQuantity(cart, c.Param("product_id"), req.Quantity); err != nil {
		response.Error(c, err)
		return
	}

	h.respondWithTotals(c, cart)
}

// RemoveItem deletes a cart line
// DELETE /api/shop/cart/items/:product_id
func (h *CartHandler) RemoveItem(c *gin.Context) {
	cart, err := h.currentCart(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.cartService.RemoveItem(cart, c.Param("product_id")); err != nil {
		response.Error(c, err)
		return
	}

	h.respondWithTotals(c, cart)
}

// Clear empties the cart
// DELETE /api/shop/cart
func (h *CartHandler) Clear(c *gin.Context) {
	cart, err := h.currentCart(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.cartService.Clear(cart); err != nil {
		response.Error(c, err)
		return
	}

	h.respondWithTotals(c, cart)
}

// GetTotals prices the cart for a given shipping method
// GET /api/shop/cart/totals?shipping_method=standard
func (h *CartHandler) GetTotals(c *gin.Context) {
	cart, err := h.currentCart(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	method := c.DefaultQuery("shipping_method", models.ShippingStandard)
	totals, err := h.cartService.Totals(cart, method)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"cart": cart, "totals": totals})
}

func (h *CartHandler) respondWithTotals(c *gin.Context, cart *models.Cart) {
	totals, err := h.cartService.Totals(cart, models.ShippingStandard)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"cart": cart, "totals": totals})
}
