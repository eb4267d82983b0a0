package models

import "time"

// Device platforms.
const (
	PlatformAndroid = "android"
	PlatformIOS     = "ios"
	PlatformWeb     = "web"
)

// Push message states.
const (
	PushStatusQueued = "queued"
	PushStatusSent   = "sent"
	PushStatusFailed = "failed"
)

// PushDevice is a registered FCM token scoped to a company.
type PushDevice struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CompanyID  string    `gorm:"type:varchar(36);index;not null" json:"company_id"`
	UserID     *uint     `gorm:"index" json:"user_id"`
	Token      string    `gorm:"uniqueIndex;size:512;not null" json:"token"`
	Platform   string    `gorm:"size:16;not null" json:"platform"`
	Active     bool      `gorm:"default:true" json:"active"`
	LastSeenAt time.Time `json:"last_seen_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (PushDevice) TableName() string {
	return "push_devices"
}

// PushMessage records a notification dispatched to a company's devices.
type PushMessage struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	CompanyID  string     `gorm:"type:varchar(36);index;not null" json:"company_id"`
	Title      string     `gorm:"size:256;not null" json:"title"`
	Body       string     `gorm:"type:text" json:"body"`
	Data       string     `gorm:"type:text" json:"data"` // JSON payload
	Status     string     `gorm:"size:16;default:queued;index" json:"status"`
	SentCount  int        `gorm:"default:0" json:"sent_count"`
	FailCount  int        `gorm:"default:0" json:"fail_count"`
	SentAt     *time.Time `json:"sent_at"`
	LastError  string     `gorm:"size:512" json:"last_error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (PushMessage) TableName() string {
	return "push_messages"
}
