package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/threepillars/storefront/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("test-secret-for-middleware-testing")
}

func protectedRouter(mw ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(mw...)
	router.GET("/protected", func(c *gin.Context) {
		c.JSON(200, gin.H{"user_id": GetUserID(c), "role": GetRole(c)})
	})
	return router
}

func TestAuthRequired_NoHeader(t *testing.T) {
	router := protectedRouter(AuthRequired())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/protected", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestAuthRequired_InvalidFormat(t *testing.T) {
	router := protectedRouter(AuthRequired())

	testCases := []string{
		"InvalidToken",
		"Basic token123",
		"Bearer",
	}

	for _, authHeader := range testCases {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", authHeader)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("header %q: expected status %d, got %d", authHeader, http.StatusUnauthorized, w.Code)
		}
	}
}

func TestAuthRequired_InvalidToken(t *testing.T) {
	router := protectedRouter(AuthRequired())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer invalid.jwt.token")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestAuthRequired_ValidToken(t *testing.T) {
	token, _ := utils.GenerateToken(42, "testuser", "admin", 24)
	router := protectedRouter(AuthRequired())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
}

func TestOptionalAuth_Anonymous(t *testing.T) {
	router := protectedRouter(OptionalAuth())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/protected", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("anonymous request should pass, got %d", w.Code)
	}
}

func TestOptionalAuth_ValidToken(t *testing.T) {
	token, _ := utils.GenerateToken(7, "shopper", "user", 24)

	var gotUserID uint
	router := gin.New()
	router.Use(OptionalAuth())
	router.GET("/protected", func(c *gin.Context) {
		gotUserID = GetUserID(c)
		c.JSON(200, gin.H{})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	if gotUserID != 7 {
		t.Errorf("GetUserID() = %d, expected 7", gotUserID)
	}
}

func TestAdminRequired(t *testing.T) {
	adminToken, _ := utils.GenerateToken(1, "admin", "admin", 24)
	userToken, _ := utils.GenerateToken(2, "user", "user", 24)

	router := protectedRouter(AuthRequired(), AdminRequired())

	tests := []struct {
		name     string
		token    string
		wantCode int
	}{
		{"admin allowed", adminToken, http.StatusOK},
		{"regular user forbidden", userToken, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			router.ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Errorf("expected status %d, got %d", tt.wantCode, w.Code)
			}
		})
	}
}
