package models

import "time"

// SystemConfig is a platform-level key/value setting row.
type SystemConfig struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:64;not null" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	Type      string    `gorm:"size:16;default:string" json:"type"` // string, int, bool
	Group     string    `gorm:"size:32;index" json:"group"`
	Label     string    `gorm:"size:128" json:"label"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SystemConfig) TableName() string {
	return "system_configs"
}
