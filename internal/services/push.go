package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/threepillars/storefront/internal/models"
	"github.com/threepillars/storefront/pkg/logger"
	"github.com/threepillars/storefront/pkg/response"
	"gorm.io/gorm"
)

const fcmSendURL = "https://fcm.googleapis.com/fcm/send"

// PushService manages the per-company device registry and dispatches
// notifications through FCM. Delivery runs through the task queue.
type PushService struct {
	db        *gorm.DB
	configSvc *SystemConfigService
	client    *http.Client
	sendURL   string
}

func NewPushService(db *gorm.DB) *PushService {
	return &PushService{
		db:        db,
		configSvc: NewSystemConfigService(db),
		client:    &http.Client{Timeout: 15 * time.Second},
		sendURL:   fcmSendURL,
	}
}

type RegisterDeviceRequest struct {
	Token    string `json:"token" binding:"required"`
	Platform string `json:"platform" binding:"required"`
}

// RegisterDevice upserts a device token. A token re-registered under a
// different company moves to the new company.
func (s *PushService) RegisterDevice(companyID string, userID *uint, req *RegisterDeviceRequest) (*models.PushDevice, error) {
	switch req.Platform {
	case models.PlatformAndroid, models.PlatformIOS, models.PlatformWeb:
	default:
		return nil, response.NewBadRequest(fmt.Sprintf("unknown platform %q", req.Platform))
	}

	now := time.Now()
	var device models.PushDevice
	err := s.db.Where("token = ?", req.Token).First(&device).Error
	if err == gorm.ErrRecordNotFound {
		device = models.PushDevice{
			CompanyID:  companyID,
			UserID:     userID,
			Token:      req.Token,
			Platform:   req.Platform,
			Active:     true,
			LastSeenAt: now,
		}
		if err := s.db.Create(&device).Error; err != nil {
			return nil, err
		}
		return &device, nil
	}
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"company_id":   companyID,
		"platform":     req.Platform,
		"active":       true,
		"last_seen_at": now,
	}
	if userID != nil {
		updates["user_id"] = *userID
	}
	if err := s.db.Model(&device).Updates(updates).Error; err != nil {
		return nil, err
	}
	device.CompanyID = companyID
	device.Platform = req.Platform
	device.Active = true
	device.LastSeenAt = now
	return &device, nil
}

// UnregisterDevice deactivates a token without deleting its history.
func (s *PushService) UnregisterDevice(companyID, token string) error {
	result := s.db.Model(&models.PushDevice{}).
		Where("company_id = ? AND token = ?", companyID, token).
		Update("active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return response.NewNotFound("device not found")
	}
	return nil
}

func (s *PushService) ListDevices(companyID string) ([]models.PushDevice, error) {
	var devices []models.PushDevice
	err := s.db.Where("company_id = ? AND active = ?", companyID, true).
		Order("last_seen_at DESC").
		Find(&devices).Error
	return devices, err
}

type SendPushRequest struct {
	Title string            `json:"title" binding:"required"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data"`
}

// QueueMessage records a push message and enqueues its delivery.
func (s *PushService) QueueMessage(companyID string, req *SendPushRequest) (*models.PushMessage, error) {
	dataJSON := ""
	if len(req.Data) > 0 {
		raw, err := json.Marshal(req.Data)
		if err != nil {
			return nil, err
		}
		dataJSON = string(raw)
	}

	msg := &models.PushMessage{
		CompanyID: companyID,
		Title:     req.Title,
		Body:      req.Body,
		Data:      dataJSON,
		Status:    models.PushStatusQueued,
	}
	if err := s.db.Create(msg).Error; err != nil {
		return nil, err
	}

	if queue := GetTaskQueue(); queue != nil {
		if err := queue.Enqueue(&DispatchTask{
			Kind:      DispatchPush,
			CompanyID: companyID,
			MessageID: msg.ID,
		}); err != nil {
			logger.Error().Err(err).Uint("message_id", msg.ID).Msg("failed to enqueue push delivery")
		}
	}
	return msg, nil
}

type fcmPayload struct {
	To           string            `json:"to"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Deliver sends a queued message to every active device of its company.
// Called by the task queue processor.
func (s *PushService) Deliver(ctx context.Context, messageID uint) error {
	var msg models.PushMessage
	if err := s.db.First(&msg, messageID).Error; err != nil {
		return err
	}
	if msg.Status == models.PushStatusSent {
		return nil
	}

	serverKey := s.configSvc.GetWithDefault("push_fcm_credentials", "")
	if serverKey == "" {
		s.db.Model(&msg).Updates(map[string]interface{}{
			"status":     models.PushStatusFailed,
			"last_error": "FCM credentials are not configured",
		})
		return response.NewUnprocessable("FCM credentials are not configured")
	}

	devices, err := s.ListDevices(msg.CompanyID)
	if err != nil {
		return err
	}

	var data map[string]string
	if msg.Data != "" {
		if err := json.Unmarshal([]byte(msg.Data), &data); err != nil {
			logger.Warn().Err(err).Uint("message_id", msg.ID).Msg("push data payload unreadable")
		}
	}

	sent, failed := 0, 0
	var lastErr string
	for i := range devices {
		if err := s.sendToToken(ctx, serverKey, devices[i].Token, &msg, data); err != nil {
			failed++
			lastErr = err.Error()
			logger.Warn().
				Err(err).
				Str("platform", devices[i].Platform).
				Msg("push delivery to device failed")
		} else {
			sent++
		}
	}

	now := time.Now()
	status := models.PushStatusSent
	if sent == 0 && failed > 0 {
		status = models.PushStatusFailed
	}
	return s.db.Model(&msg).Updates(map[string]interface{}{
		"status":     status,
		"sent_count": sent,
		"fail_count": failed,
		"sent_at":    now,
		"last_error": lastErr,
	}).Error
}

func (s *PushService) sendToToken(ctx context.Context, serverKey, token string, msg *models.PushMessage, data map[string]string) error {
	payload := fcmPayload{
		To: token,
		Notification: fcmNotification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: data,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.sendURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "key="+serverKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		// Token is dead; deactivate so we stop retrying it.
		s.db.Model(&models.PushDevice{}).Where("token = ?", token).Update("active", false)
		return fmt.Errorf("device token no longer valid")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("fcm returned status %d", resp.StatusCode)
	}
	return nil
}

type PushMessagePage struct {
	Items    []models.PushMessage `json:"items"`
	Total    int64                `json:"total"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"page_size"`
}

func (s *PushService) ListMessages(companyID string, page, pageSize int) (*PushMessagePage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	query := s.db.Model(&models.PushMessage{}).Where("company_id = ?", companyID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var messages []models.PushMessage
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return &PushMessagePage{Items: messages, Total: total, Page: page, PageSize: pageSize}, nil
}
