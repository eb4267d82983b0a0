package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/threepillars/storefront/internal/middleware"
	"github.com/threepillars/storefront/internal/services"
	"github.com/threepillars/storefront/pkg/response"
	"gorm.io/gorm"
)

type OrderHandler struct {
	orderService *services.OrderService
	cartService  *services.CartService
}

func NewOrderHandler(db *gorm.DB) *OrderHandler {
	return &OrderHandler{
		orderService: services.NewOrderService(db),
		cartService:  services.NewCartService(db),
	}
}

// Checkout converts the session's cart into a pending order
// POST /api/shop/checkout
func (h *OrderHandler) Checkout(c *gin.Context) {
	var req services.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	company := middleware.GetCompany(c)
	sessionKey := c.GetHeader(SessionKeyHeader)
	if sessionKey == "" {
		sessionKey = c.Query("session_key")
	}

	var userID *uint
	if id := middleware.GetUserID(c); id != 0 {
		userID = &id
	}

	cart, err := h.cartService.GetOrCreate(company.ID, sessionKey, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	order, err := h.orderService.Checkout(cart, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, order)
}

// LookupOrder returns an order by number for the storefront customer
// GET /api/shop/orders/:number
func (h *OrderHandler) LookupOrder(c *gin.Context) {
	company := middleware.GetCompany(c)
	order, err := h.orderService.GetByNumber(company.ID, c.Param("number"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, order)
}

// List returns the company's orders
// GET /api/orders
func (h *OrderHandler) List(c *gin.Context) {
	company := middleware.GetCompany(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	filter := services.OrderFilter{
		Status:   c.Query("status"),
		Page:     page,
		PageSize: pageSize,
	}

	result, err := h.orderService.List(company.ID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Get returns a single order with its lines
// GET /api/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	company := middleware.GetCompany(c)
	order, err := h.orderService.Get(company.ID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, order)
}

// SetStatus transitions an order through its lifecycle
// PUT /api/orders/:id/status
func (h *OrderHandler) SetStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	company := middleware.GetCompany(c)
	order, err := h.orderService.Get(company.ID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.orderService.SetStatus(order, req.Status); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, order)
}

// SetTracking records a tracking number on an order
// PUT /api/orders/:id/tracking
func (h *OrderHandler) SetTracking(c *gin.Context) {
	var req struct {
		TrackingNumber string `json:"tracking_number" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	company := middleware.GetCompany(c)
	order, err := h.orderService.Get(company.ID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.orderService.SetTracking(order, req.TrackingNumber); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, order)
}
