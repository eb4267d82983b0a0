package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/threepillars/storefront/internal/middleware"
	"github.com/threepillars/storefront/internal/services"
	"github.com/threepillars/storefront/pkg/response"
	"gorm.io/gorm"
)

type PushHandler struct {
	pushService *services.PushService
}

func NewPushHandler(db *gorm.DB) *PushHandler {
	return &PushHandler{
		pushService: services.NewPushService(db),
	}
}

// RegisterDevice upserts a device token for the storefront company
// POST /api/shop/push/devices
func (h *PushHandler) RegisterDevice(c *gin.Context) {
	var req services.RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	company := middleware.GetCompany(c)
	var userID *uint
	if id := middleware.GetUserID(c); id != 0 {
		userID = &id
	}

	device, err := h.pushService.RegisterDevice(company.ID, userID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, device)
}

// UnregisterDevice deactivates a device token
// DELETE /api/shop/push/devices/:token
func (h *PushHandler) UnregisterDevice(c *gin.Context) {
	company := middleware.GetCompany(c)
	if err := h.pushService.UnregisterDevice(company.ID, c.Param("token")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "device unregistered"})
}

// ListDevices returns the company's active device tokens
// GET /api/push/devices
func (h *PushHandler) ListDevices(c *gin.Context) {
	company := middleware.GetCompany(c)
	devices, err := h.pushService.ListDevices(company.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, devices)
}

// SendMessage queues a push notification to all company devices
// POST /api/push/messages
func (h *PushHandler) SendMessage(c *gin.Context) {
	var req services.SendPushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	company := middleware.GetCompany(c)
	msg, err := h.pushService.QueueMessage(company.ID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, msg)
}

// ListMessages returns the company's push history
// GET /api/push/messages
func (h *PushHandler) ListMessages(c *gin.Context) {
	company := middleware.GetCompany(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.pushService.ListMessages(company.ID, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
