package services

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/threepillars/storefront/internal/models"
	"github.com/threepillars/storefront/pkg/logger"
	"github.com/threepillars/storefront/pkg/response"
	"gorm.io/gorm"
)

// YocoSignatureHeader carries the webhook HMAC.
const YocoSignatureHeader = "X-Yoco-Signature"

const yocoBaseURL = "https://online.yoco.com/v1"

type YocoService struct {
	db       *gorm.DB
	credSvc  *CredentialService
	orderSvc *OrderService
	pushSvc  *PushService
	client   *http.Client
	baseURL  string
}

func NewYocoService(db *gorm.DB) *YocoService {
	return &YocoService{
		db:       db,
		credSvc:  NewCredentialService(db),
		orderSvc: NewOrderService(db),
		pushSvc:  NewPushService(db),
		client:   &http.Client{Timeout: 30 * time.Second},
		baseURL:  yocoBaseURL,
	}
}

type CheckoutResult struct {
	CheckoutID  string `json:"checkout_id"`
	RedirectURL string `json:"redirect_url"`
}

type yocoCheckoutRequest struct {
	Amount     int64             `json:"amount"`
	Currency   string            `json:"currency"`
	SuccessURL string            `json:"successUrl"`
	CancelURL  string            `json:"cancelUrl"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

type yocoCheckoutResponse struct {
	ID          string `json:"id"`
	RedirectURL string `json:"redirectUrl"`
}

// CreateCheckout opens a Yoco checkout session for a pending order and
// stores the checkout id on the order. Amounts are sent in integer cents.
func (s *YocoService) CreateCheckout(order *models.Order, successURL, cancelURL string) (*CheckoutResult, error) {
	if order.PaymentStatus == models.PaymentStatusSucceeded {
		return nil, response.NewConflict("order is already paid")
	}

	creds, err := s.credSvc.ResolveYoco(order.CompanyID)
	if err != nil {
		return nil, err
	}

	payload := yocoCheckoutRequest{
		Amount:     order.TotalCents(),
		Currency:   "ZAR",
		SuccessURL: successURL,
		CancelURL:  cancelURL,
		Metadata: map[string]string{
			"order_number": order.Number,
			"company_id":   order.CompanyID,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, s.baseURL+"/checkouts", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+creds.YocoSecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		logger.Error().Err(err).Str("order", order.Number).Msg("yoco checkout request failed")
		return nil, response.NewServerError("payment gateway unreachable")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Error().
			Int("status", resp.StatusCode).
			Str("order", order.Number).
			Msg("yoco checkout rejected")
		return nil, response.NewUnprocessable(fmt.Sprintf(
			"payment gateway rejected checkout (status %d)", resp.StatusCode))
	}

	var result yocoCheckoutResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, err
	}

	if err := s.db.Model(order).Update("yoco_checkout_id", result.ID).Error; err != nil {
		return nil, err
	}
	order.YocoCheckoutID = result.ID

	redirect := result.RedirectURL
	if redirect == "" {
		redirect = fmt.Sprintf("https://payments.yoco.com/checkout/%s", result.ID)
	}
	return &CheckoutResult{CheckoutID: result.ID, RedirectURL: redirect}, nil
}

// VerifyWebhookSignature checks the HMAC-SHA256 hex digest of the raw
// request body against the configured webhook secret.
func VerifyWebhookSignature(payload []byte, signature, webhookSecret string) bool {
	if webhookSecret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

type WebhookEvent struct {
	Event string          `json:"event"`
	Data  WebhookEventData `json:"data"`
}

type WebhookEventData struct {
	ID         string `json:"id"`
	CheckoutID string `json:"checkoutId"`
	Amount     int64  `json:"amount"` // cents
	CreatedAt  string `json:"createdAt"`
}

// Webhook event names.
const (
	EventPaymentSucceeded = "payment.succeeded"
	EventPaymentFailed    = "payment.failed"
)

// ProcessWebhook validates and applies a webhook event. The signature is
// verified against the credentials of the company that owns the referenced
// order; an invalid signature is rejected outright.
func (s *YocoService) ProcessWebhook(rawBody []byte, signature string) error {
	var event WebhookEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		return response.NewBadRequest("malformed webhook payload")
	}

	switch event.Event {
	case EventPaymentSucceeded, EventPaymentFailed:
	default:
		// Unknown events are acknowledged without action.
		return nil
	}

	order, err := s.orderSvc.FindByCheckoutID(event.Data.CheckoutID)
	if err != nil {
		return err
	}

	creds, err := s.credSvc.ResolveYoco(order.CompanyID)
	if err != nil {
		return err
	}
	if !VerifyWebhookSignature(rawBody, signature, creds.YocoWebhookSecret) {
		logger.Warn().
			Str("order", order.Number).
			Msg("yoco webhook signature verification failed")
		return response.NewUnauthorized("invalid webhook signature")
	}

	if event.Event == EventPaymentFailed {
		return s.orderSvc.MarkPaymentFailed(order)
	}

	if event.Data.Amount != order.TotalCents() {
		logger.Error().
			Str("order", order.Number).
			Int64("expected_cents", order.TotalCents()).
			Int64("received_cents", event.Data.Amount).
			Msg("yoco webhook amount mismatch")
		return response.NewBadRequest("payment amount does not match order total")
	}

	if err := s.orderSvc.MarkPaid(order, event.Data.ID); err != nil {
		return err
	}

	// Confirmation email goes out once payment is settled
	if queue := GetTaskQueue(); queue != nil {
		task := &DispatchTask{
			Kind:      DispatchOrderEmail,
			CompanyID: order.CompanyID,
			OrderID:   order.ID,
		}
		if err := queue.Enqueue(task); err != nil {
			logger.Errorf("failed to enqueue confirmation for %s: %v", order.Number, err)
		}
	}

	// Merchant devices get a paid-order notification
	_, err = s.pushSvc.QueueMessage(order.CompanyID, &SendPushRequest{
		Title: "Order paid",
		Body:  fmt.Sprintf("Order %s has been paid", order.Number),
		Data:  map[string]string{"order_id": order.ID, "order_number": order.Number},
	})
	if err != nil {
		logger.Errorf("failed to queue paid-order push for %s: %v", order.Number, err)
	}
	return nil
}

type yocoPaymentStatus struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Amount int64  `json:"amount"`
}

// GetPaymentStatus polls the gateway for a checkout's payment state.
func (s *YocoService) GetPaymentStatus(companyID, checkoutID string) (map[string]interface{}, error) {
	creds, err := s.credSvc.ResolveYoco(companyID)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodGet, s.baseURL+"/checkouts/"+checkoutID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+creds.YocoSecretKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, response.NewServerError("payment gateway unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, response.NewNotFound("checkout not found")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, response.NewServerError(fmt.Sprintf(
			"payment gateway error (status %d)", resp.StatusCode))
	}

	var status yocoPaymentStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"checkout_id": status.ID,
		"status":      status.Status,
		"amount":      status.Amount,
	}, nil
}
