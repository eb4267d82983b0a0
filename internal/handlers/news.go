package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/threepillars/storefront/internal/middleware"
	"github.com/threepillars/storefront/internal/models"
	"github.com/threepillars/storefront/internal/services"
	"github.com/threepillars/storefront/pkg/response"
	"gorm.io/gorm"
)

type NewsHandler struct {
	newsService *services.NewsService
}

func NewNewsHandler(db *gorm.DB) *NewsHandler {
	return &NewsHandler{
		newsService: services.NewNewsService(db),
	}
}

// ListArticles returns the company's articles, filtered and paginated
// GET /api/news
func (h *NewsHandler) ListArticles(c *gin.Context) {
	company := middleware.GetCompany(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	filter := services.ArticleFilter{
		Status:     c.Query("status"),
		CategoryID: c.Query("category_id"),
		Page:       page,
		PageSize:   pageSize,
	}

	result, err := h.newsService.ListArticles(company.ID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListPublishedArticles returns only published articles for public readers
// GET /api/shop/news
func (h *NewsHandler) ListPublishedArticles(c *gin.Context) {
	company := middleware.GetCompany(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	filter := services.ArticleFilter{
		Status:     models.ArticleStatusPublished,
		CategoryID: c.Query("category_id"),
		Page:       page,
		PageSize:   pageSize,
	}

	result, err := h.newsService.ListArticles(company.ID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetArticle returns one article by id or slug
// GET /api/news/:id
func (h *NewsHandler) GetArticle(c *gin.Context) {
	company := middleware.GetCompany(c)
	article, err := h.newsService.GetArticle(company.ID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, article)
}

// CreateArticle creates a draft article
// POST /api/news
func (h *NewsHandler) CreateArticle(c *gin.Context) {
	var req services.CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	company := middleware.GetCompany(c)
	article, err := h.newsService.CreateArticle(company.ID, middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, article)
}

// UpdateArticle modifies article fields
// PUT /api/news/:id
func (h *NewsHandler) UpdateArticle(c *gin.Context) {
	var req services.UpdateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	company := middleware.GetCompany(c)
	article, err := h.newsService.GetArticle(company.ID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.newsService.UpdateArticle(article, &req); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, article)
}

// PublishArticle makes an article publicly visible
// POST /api/news/:id/publish
func (h *NewsHandler) PublishArticle(c *gin.Context) {
	company := middleware.GetCompany(c)
	article, err := h.newsService.GetArticle(company.ID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.newsService.PublishArticle(article); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, article)
}

// UnpublishArticle returns an article to draft
// POST /api/news/:id/unpublish
func (h *NewsHandler) UnpublishArticle(c *gin.Context) {
	company := middleware.GetCompany(c)
	article, err := h.newsService.GetArticle(company.ID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.newsService.UnpublishArticle(article); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, article)
}

// DeleteArticle removes an article
// DELETE /api/news/:id
func (h *NewsHandler) DeleteArticle(c *gin.Context) {
	company := middleware.GetCompany(c)
	if err := h.newsService.DeleteArticle(company.ID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "article deleted"})
}

// ListCategories returns the company's news categories
// GET /api/news-categories
func (h *NewsHandler) ListCategories(c *gin.Context) {
	company := middleware.GetCompany(c)
	categories, err := h.newsService.ListCategories(company.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, categories)
}

// CreateCategory creates a news category
// POST /api/news-categories
func (h *NewsHandler) CreateCategory(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
		Slug string `json:"slug"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	company := middleware.GetCompany(c)
	category, err := h.newsService.CreateCategory(company.ID, req.Name, req.Slug)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, category)
}
