package services

import (
	"fmt"
	"time"

	"github.com/threepillars/storefront/internal/models"
	"github.com/threepillars/storefront/internal/utils"
	"github.com/threepillars/storefront/pkg/response"
	"gorm.io/gorm"
)

type NewsService struct {
	db *gorm.DB
}

func NewNewsService(db *gorm.DB) *NewsService {
	return &NewsService{db: db}
}

type CreateArticleRequest struct {
	Title      string `json:"title" binding:"required"`
	Slug       string `json:"slug"`
	Summary    string `json:"summary"`
	Body       string `json:"body"`
	CoverURL   string `json:"cover_url"`
	CategoryID *uint  `json:"category_id"`
}

func (s *NewsService) CreateArticle(companyID string, authorID uint, req *CreateArticleRequest) (*models.Article, error) {
	slug := req.Slug
	if slug == "" {
		slug = utils.Slugify(req.Title)
	}

	var count int64
	s.db.Model(&models.Article{}).
		Where("company_id = ? AND slug = ?", companyID, slug).
		Count(&count)
	if count > 0 {
		return nil, response.NewConflict(fmt.Sprintf("article slug %q already exists", slug))
	}

	if req.CategoryID != nil {
		var cat models.NewsCategory
		err := s.db.Where("id = ? AND company_id = ?", *req.CategoryID, companyID).First(&cat).Error
		if err == gorm.ErrRecordNotFound {
			return nil, response.NewNotFound("news category not found")
		}
		if err != nil {
			return nil, err
		}
	}

	article := &models.Article{
		CompanyID:  companyID,
		CategoryID: req.CategoryID,
		AuthorID:   authorID,
		Title:      req.Title,
		Slug:       slug,
		Summary:    req.Summary,
		Body:       req.Body,
		CoverURL:   req.CoverURL,
		Status:     models.ArticleStatusDraft,
	}
	if err := s.db.Create(article).Error; err != nil {
		return nil, err
	}
	return article, nil
}

func (s *NewsService) GetArticle(companyID, idOrSlug string) (*models.Article, error) {
	var article models.Article
	err := s.db.Preload("Category").
		Where("company_id = ? AND (id = ? OR slug = ?)", companyID, idOrSlug, idOrSlug).
		First(&article).Error
	if err == gorm.ErrRecordNotFound {
		return nil, response.NewNotFound("article not found")
	}
	if err != nil {
		return nil, err
	}
	return &article, nil
}

type ArticleFilter struct {
	Status     string
	CategoryID string
	Page       int
	PageSize   int
}

type ArticlePage struct {
	Items    []models.Article `json:"items"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

func (s *NewsService) ListArticles(companyID string, filter ArticleFilter) (*ArticlePage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	query := s.db.Model(&models.Article{}).Where("company_id = ?", companyID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CategoryID != "" {
		query = query.Where("category_id = ?", filter.CategoryID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var articles []models.Article
	err := query.Preload("Category").
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&articles).Error
	if err != nil {
		return nil, err
	}
	return &ArticlePage{Items: articles, Total: total, Page: filter.Page, PageSize: filter.PageSize}, nil
}

type UpdateArticleRequest struct {
	Title      *string `json:"title"`
	Summary    *string `json:"summary"`
	Body       *string `json:"body"`
	CoverURL   *string `json:"cover_url"`
	CategoryID *uint   `json:"category_id"`
}

func (s *NewsService) UpdateArticle(article *models.Article, req *UpdateArticleRequest) error {
	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Summary != nil {
		updates["summary"] = *req.Summary
	}
	if req.Body != nil {
		updates["body"] = *req.Body
	}
	if req.CoverURL != nil {
		updates["cover_url"] = *req.CoverURL
	}
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}
	if len(updates) == 0 {
		return nil
	}
	return s.db.Model(article).Updates(updates).Error
}

// PublishArticle flips an article to published and stamps PublishedAt on
// first publication.
func (s *NewsService) PublishArticle(article *models.Article) error {
	if article.Status == models.ArticleStatusPublished {
		return nil
	}
	updates := map[string]interface{}{"status": models.ArticleStatusPublished}
	if article.PublishedAt == nil {
		now := time.Now()
		updates["published_at"] = now
		article.PublishedAt = &now
	}
	if err := s.db.Model(article).Updates(updates).Error; err != nil {
		return err
	}
	article.Status = models.ArticleStatusPublished
	return nil
}

func (s *NewsService) UnpublishArticle(article *models.Article) error {
	if err := s.db.Model(article).Update("status", models.ArticleStatusDraft).Error; err != nil {
		return err
	}
	article.Status = models.ArticleStatusDraft
	return nil
}

func (s *NewsService) DeleteArticle(companyID, articleID string) error {
	result := s.db.Where("id = ? AND company_id = ?", articleID, companyID).
		Delete(&models.Article{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return response.NewNotFound("article not found")
	}
	return nil
}

func (s *NewsService) CreateCategory(companyID, name, slug string) (*models.NewsCategory, error) {
	if slug == "" {
		slug = utils.Slugify(name)
	}
	var count int64
	s.db.Model(&models.NewsCategory{}).
		Where("company_id = ? AND slug = ?", companyID, slug).
		Count(&count)
	if count > 0 {
		return nil, response.NewConflict(fmt.Sprintf("news category slug %q already exists", slug))
	}
	category := &models.NewsCategory{CompanyID: companyID, Name: name, Slug: slug}
	if err := s.db.Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

func (s *NewsService) ListCategories(companyID string) ([]models.NewsCategory, error) {
	var categories []models.NewsCategory
	err := s.db.Where("company_id = ?", companyID).Order("name ASC").Find(&categories).Error
	return categories, err
}
