package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/threepillars/storefront/internal/middleware"
	"github.com/threepillars/storefront/internal/services"
	"github.com/threepillars/storefront/pkg/logger"
	"github.com/threepillars/storefront/pkg/response"
	"gorm.io/gorm"
)

type YocoHandler struct {
	yocoService  *services.YocoService
	orderService *services.OrderService
}

func NewYocoHandler(db *gorm.DB) *YocoHandler {
	return &YocoHandler{
		yocoService:  services.NewYocoService(db),
		orderService: services.NewOrderService(db),
	}
}

// CreateCheckout starts a hosted payment for an order
// POST /api/shop/orders/:number/pay
func (h *YocoHandler) CreateCheckout(c *gin.Context) {
	var req struct {
		SuccessURL string `json:"success_url" binding:"required"`
		CancelURL  string `json:"cancel_url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	company := middleware.GetCompany(c)
	order, err := h.orderService.GetByNumber(company.ID, c.Param("number"))
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.yocoService.CreateCheckout(order, req.SuccessURL, req.CancelURL)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Webhook receives payment events from the Yoco gateway. The signature is
// verified against the webhook secret of whichever settings layer serves
// the order's company.
// POST /api/webhooks/yoco
func (h *YocoHandler) Webhook(c *gin.Context) {
	rawBody, err := c.GetRawData()
	if err != nil {
		response.BadRequest(c, "failed to read request body")
		return
	}

	signature := c.GetHeader(services.YocoSignatureHeader)
	if err := h.yocoService.ProcessWebhook(rawBody, signature); err != nil {
		logger.Errorf("yoco webhook rejected: %v", err)
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "ok"})
}

// GetPaymentStatus queries the gateway for a checkout's payment state
// GET /api/orders/:id/payment
func (h *YocoHandler) GetPaymentStatus(c *gin.Context) {
	company := middleware.GetCompany(c)
	order, err := h.orderService.Get(company.ID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	if order.YocoCheckoutID == "" {
		response.NotFound(c, "order has no payment checkout")
		return
	}

	status, err := h.yocoService.GetPaymentStatus(company.ID, order.YocoCheckoutID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, status)
}
