package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/threepillars/storefront/internal/middleware"
	"github.com/threepillars/storefront/internal/services"
	"github.com/threepillars/storefront/pkg/response"
	"gorm.io/gorm"
)

type CourierHandler struct {
	courierService *services.CourierService
	orderService   *services.OrderService
}

func NewCourierHandler(db *gorm.DB) *CourierHandler {
	return &CourierHandler{
		courierService: services.NewCourierService(db),
		orderService:   services.NewOrderService(db),
	}
}

// SearchPudoLocations lists Pudo lockers matching the filters
// GET /api/shop/pudo/locations
func (h *CourierHandler) SearchPudoLocations(c *gin.Context) {
	company := middleware.GetCompany(c)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	search := services.PudoSearch{
		PostalCode: c.Query("postal_code"),
		City:       c.Query("city"),
		Province:   c.Query("province"),
		Limit:      limit,
	}

	locations, err := h.courierService.SearchPudoLocations(company.ID, search)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, locations)
}

// CreateShipment books a Courier Guy shipment for a paid order
// POST /api/orders/:id/shipment
func (h *CourierHandler) CreateShipment(c *gin.Context) {
	company := middleware.GetCompany(c)
	order, err := h.orderService.Get(company.ID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.courierService.CreateShipment(order)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// TrackShipment fetches tracking state for an order's waybill
// GET /api/orders/:id/tracking
func (h *CourierHandler) TrackShipment(c *gin.Context) {
	company := middleware.GetCompany(c)
	order, err := h.orderService.Get(company.ID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	if order.TrackingNumber == "" {
		response.NotFound(c, "order has no shipment yet")
		return
	}

	info, err := h.courierService.TrackShipment(company.ID, order.TrackingNumber)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, info)
}
