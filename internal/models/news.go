package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Article statuses.
const (
	ArticleStatusDraft     = "draft"
	ArticleStatusPublished = "published"
)

type NewsCategory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CompanyID string    `gorm:"type:varchar(36);uniqueIndex:idx_news_cat_slug;not null" json:"company_id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Slug      string    `gorm:"uniqueIndex:idx_news_cat_slug;size:128;not null" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

func (NewsCategory) TableName() string {
	return "news_categories"
}

type Article struct {
	ID          string        `gorm:"type:varchar(36);primaryKey" json:"id"`
	CompanyID   string        `gorm:"type:varchar(36);uniqueIndex:idx_article_slug;index;not null" json:"company_id"`
	CategoryID  *uint         `gorm:"index" json:"category_id"`
	Category    *NewsCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	AuthorID    uint          `gorm:"index" json:"author_id"`
	Title       string        `gorm:"size:256;not null" json:"title"`
	Slug        string        `gorm:"uniqueIndex:idx_article_slug;size:256;not null" json:"slug"`
	Summary     string        `gorm:"size:512" json:"summary"`
	Body        string        `gorm:"type:text" json:"body"`
	CoverURL    string        `gorm:"size:512" json:"cover_url"`
	Status      string        `gorm:"size:16;default:draft;index" json:"status"`
	PublishedAt *time.Time    `json:"published_at"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (Article) TableName() string {
	return "articles"
}

func (a *Article) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
