package services

import (
	"testing"

	"github.com/threepillars/storefront/internal/models"
)

func TestCreateArticle_SlugFromTitle(t *testing.T) {
	db := setupTestDB(t)
	svc := NewNewsService(db)

	owner := createTestUser(t, db, "owner", models.RoleUser)
	company := createTestCompany(t, db, "acme", owner.ID)

	article, err := svc.CreateArticle(company.ID, owner.ID, &CreateArticleRequest{
		Title: "Winter Sale Starts Now!",
	})
	if err != nil {
		t.Fatalf("CreateArticle() error = %v", err)
	}
	if article.Slug != "winter-sale-starts-now" {
		t.Errorf("Slug = %q", article.Slug)
	}
	if article.Status != models.ArticleStatusDraft {
		t.Errorf("Status = %q, expected draft", article.Status)
	}

	_, err = svc.CreateArticle(company.ID, owner.ID, &CreateArticleRequest{
		Title: "Winter Sale Starts Now!",
	})
	assertAppErrorStatus(t, err, 409)
}

func TestPublishArticle(t *testing.T) {
	db := setupTestDB(t)
	svc := NewNewsService(db)

	owner := createTestUser(t, db, "owner", models.RoleUser)
	company := createTestCompany(t, db, "acme", owner.ID)
	article, _ := svc.CreateArticle(company.ID, owner.ID, &CreateArticleRequest{Title: "Hello"})

	if err := svc.PublishArticle(article); err != nil {
		t.Fatalf("PublishArticle() error = %v", err)
	}
	if article.PublishedAt == nil {
		t.Fatal("PublishedAt should be stamped on publish")
	}
	first := *article.PublishedAt

	svc.UnpublishArticle(article)
	if err := svc.PublishArticle(article); err != nil {
		t.Fatalf("PublishArticle() republish error = %v", err)
	}
	if !article.PublishedAt.Equal(first) {
		t.Error("PublishedAt must not change on republish")
	}
}

func TestListArticles_CompanyScoped(t *testing.T) {
	db := setupTestDB(t)
	svc := NewNewsService(db)

	owner := createTestUser(t, db, "owner", models.RoleUser)
	acme := createTestCompany(t, db, "acme", owner.ID)
	beta := createTestCompany(t, db, "beta", owner.ID)

	a, _ := svc.CreateArticle(acme.ID, owner.ID, &CreateArticleRequest{Title: "Acme News"})
	svc.PublishArticle(a)
	svc.CreateArticle(beta.ID, owner.ID, &CreateArticleRequest{Title: "Beta News"})

	page, err := svc.ListArticles(acme.ID, ArticleFilter{})
	if err != nil {
		t.Fatalf("ListArticles() error = %v", err)
	}
	if page.Total != 1 {
		t.Errorf("Total = %d, expected 1", page.Total)
	}

	published, _ := svc.ListArticles(acme.ID, ArticleFilter{Status: models.ArticleStatusPublished})
	if published.Total != 1 {
		t.Errorf("published Total = %d, expected 1", published.Total)
	}
}

func TestGetArticle_ByIDOrSlug(t *testing.T) {
	db := setupTestDB(t)
	svc := NewNewsService(db)

	owner := createTestUser(t, db, "owner", models.RoleUser)
	company := createTestCompany(t, db, "acme", owner.ID)
	article, _ := svc.CreateArticle(company.ID, owner.ID, &CreateArticleRequest{Title: "Hello World"})

	byID, err := svc.GetArticle(company.ID, article.ID)
	if err != nil {
		t.Fatalf("GetArticle(id) error = %v", err)
	}
	bySlug, err := svc.GetArticle(company.ID, "hello-world")
	if err != nil {
		t.Fatalf("GetArticle(slug) error = %v", err)
	}
	if byID.ID != bySlug.ID {
		t.Error("lookup by id and slug should return the same article")
	}

	_, err = svc.GetArticle(company.ID, "missing")
	assertAppErrorStatus(t, err, 404)
}
