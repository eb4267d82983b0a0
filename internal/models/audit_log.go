package models

import "time"

// Audit log levels.
const (
	AuditLevelInfo  = "info"
	AuditLevelWarn  = "warn"
	AuditLevelError = "error"
)

// AuditLog is a persisted record of a notable action, scoped to a company
// when one was resolved for the request.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Level     string    `gorm:"size:8;index" json:"level"`
	Category  string    `gorm:"size:32;index" json:"category"`
	Message   string    `gorm:"size:256" json:"message"`
	Detail    string    `gorm:"type:text" json:"detail,omitempty"`
	CompanyID string    `gorm:"type:varchar(36);index" json:"company_id,omitempty"`
	UserID    uint      `gorm:"index" json:"user_id,omitempty"`
	Username  string    `gorm:"size:64" json:"username,omitempty"`
	IP        string    `gorm:"size:64" json:"ip,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
