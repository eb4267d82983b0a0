package models

import "time"

// User roles.
const (
	RoleAdmin = "admin" // platform superuser
	RoleUser  = "user"
)

type User struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Username  string     `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email     string     `gorm:"uniqueIndex;size:128" json:"email"`
	Password  string     `gorm:"size:128;not null" json:"-"`
	Role      string     `gorm:"size:16;default:user" json:"role"`
	IsActive  bool       `gorm:"default:true" json:"is_active"`
	LastLogin *time.Time `json:"last_login"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// IsSuperuser reports whether the user may act across companies.
func (u *User) IsSuperuser() bool {
	return u.Role == RoleAdmin
}
