package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/threepillars/storefront/internal/models"
	"github.com/threepillars/storefront/pkg/logger"
	"github.com/threepillars/storefront/pkg/response"
	"gorm.io/gorm"
)

const courierBaseURL = "https://api.thecourierguy.co.za/api"

// CourierService talks to the Courier Guy API for shipments and Pudo
// locker lookups, using per-company or global credentials.
type CourierService struct {
	db       *gorm.DB
	credSvc  *CredentialService
	orderSvc *OrderService
	client   *http.Client
	baseURL  string
}

func NewCourierService(db *gorm.DB) *CourierService {
	return &CourierService{
		db:       db,
		credSvc:  NewCredentialService(db),
		orderSvc: NewOrderService(db),
		client:   &http.Client{Timeout: 30 * time.Second},
		baseURL:  courierBaseURL,
	}
}

func courierHeaders(req *http.Request, creds *models.IntegrationCredentials) {
	req.Header.Set("Authorization", "Bearer "+creds.CourierAPIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", creds.CourierAPIKey)
	req.Header.Set("X-API-Secret", creds.CourierAPISecret)
}

type PudoLocation struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Address    string  `json:"address"`
	City       string  `json:"city"`
	PostalCode string  `json:"postal_code"`
	Province   string  `json:"province"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Phone      string  `json:"phone"`
}

type PudoSearch struct {
	PostalCode string
	City       string
	Province   string
	Limit      int
}

// SearchPudoLocations lists Pudo lockers matching the search filters.
func (s *CourierService) SearchPudoLocations(companyID string, search PudoSearch) ([]PudoLocation, error) {
	creds, err := s.credSvc.ResolveCourier(companyID)
	if err != nil {
		return nil, err
	}

	if search.Limit < 1 || search.Limit > 100 {
		search.Limit = 20
	}
	params := url.Values{}
	if search.PostalCode != "" {
		params.Set("postal_code", search.PostalCode)
	}
	if search.City != "" {
		params.Set("city", search.City)
	}
	if search.Province != "" {
		params.Set("province", search.Province)
	}
	params.Set("limit", strconv.Itoa(search.Limit))

	req, err := http.NewRequest(http.MethodGet,
		s.baseURL+"/pudo/locations?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	courierHeaders(req, creds)

	resp, err := s.client.Do(req)
	if err != nil {
		logger.Error().Err(err).Msg("courier pudo search failed")
		return nil, response.NewServerError("courier service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, response.NewServerError(fmt.Sprintf(
			"courier service error (status %d)", resp.StatusCode))
	}

	var payload struct {
		Locations []PudoLocation `json:"locations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return payload.Locations, nil
}

type ShipmentResult struct {
	ShipmentID     string `json:"shipment_id"`
	WaybillNumber  string `json:"waybill_number"`
	TrackingNumber string `json:"tracking_number"`
	CollectionCode string `json:"collection_code"`
	LabelURL       string `json:"label_url"`
}

// CreateShipment books a shipment for a paid order and stores the tracking
// number on it.
func (s *CourierService) CreateShipment(order *models.Order) (*ShipmentResult, error) {
	if order.Status != models.OrderStatusPaid {
		return nil, response.NewConflict("shipments can only be created for paid orders")
	}

	creds, err := s.credSvc.ResolveCourier(order.CompanyID)
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"account_number":   creds.CourierAccountNumber,
		"order_number":     order.Number,
		"customer_name":    order.CustomerName,
		"customer_email":   order.CustomerEmail,
		"customer_phone":   order.CustomerPhone,
		"delivery_address": order.ShippingAddress,
		"delivery_method":  order.ShippingMethod,
		"parcel_value":     order.Total.InexactFloat64(),
	}
	if order.ShippingMethod == models.ShippingPudo {
		payload["pudo_pickup_point_id"] = order.PudoLockerCode
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, s.baseURL+"/shipments", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	courierHeaders(req, creds)

	resp, err := s.client.Do(req)
	if err != nil {
		logger.Error().Err(err).Str("order", order.Number).Msg("courier shipment request failed")
		return nil, response.NewServerError("courier service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, response.NewUnprocessable(fmt.Sprintf(
			"courier rejected shipment (status %d)", resp.StatusCode))
	}

	var data struct {
		ShipmentID     string `json:"shipment_id"`
		WaybillNumber  string `json:"waybill_number"`
		TrackingNumber string `json:"tracking_number"`
		CollectionCode string `json:"collection_code"`
		LabelURL       string `json:"label_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}

	tracking := data.TrackingNumber
	if tracking == "" {
		tracking = data.WaybillNumber
	}
	if err := s.orderSvc.SetTracking(order, tracking); err != nil {
		return nil, err
	}

	return &ShipmentResult{
		ShipmentID:     data.ShipmentID,
		WaybillNumber:  data.WaybillNumber,
		TrackingNumber: data.TrackingNumber,
		CollectionCode: data.CollectionCode,
		LabelURL:       data.LabelURL,
	}, nil
}

type TrackingInfo struct {
	WaybillNumber     string                   `json:"waybill_number"`
	Status            string                   `json:"status"`
	StatusDescription string                   `json:"status_description"`
	CurrentLocation   string                   `json:"current_location"`
	Events            []map[string]interface{} `json:"events"`
}

// TrackShipment fetches tracking state for a waybill.
func (s *CourierService) TrackShipment(companyID, waybillNumber string) (*TrackingInfo, error) {
	creds, err := s.credSvc.ResolveCourier(companyID)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodGet,
		s.baseURL+"/shipments/"+url.PathEscape(waybillNumber)+"/track", nil)
	if err != nil {
		return nil, err
	}
	courierHeaders(req, creds)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, response.NewServerError("courier service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, response.NewNotFound("shipment not found")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, response.NewServerError(fmt.Sprintf(
			"courier service error (status %d)", resp.StatusCode))
	}

	var data struct {
		Status            string                   `json:"status"`
		StatusDescription string                   `json:"status_description"`
		CurrentLocation   string                   `json:"current_location"`
		Events            []map[string]interface{} `json:"events"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}

	return &TrackingInfo{
		WaybillNumber:     waybillNumber,
		Status:            data.Status,
		StatusDescription: data.StatusDescription,
		CurrentLocation:   data.CurrentLocation,
		Events:            data.Events,
	}, nil
}
