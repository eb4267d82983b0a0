package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest("GET", "/test", nil)
	handler(c)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return resp
}

func TestSuccess(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		Success(c, map[string]string{"name": "test"})
	})

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	resp := parseResponse(t, w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
	if resp.Message != "ok" {
		t.Errorf("expected message 'ok', got %q", resp.Message)
	}
}

func TestCreated(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		Created(c, map[string]int{"id": 1})
	})

	if w.Code != http.StatusCreated {
		t.Errorf("expected status %d, got %d", http.StatusCreated, w.Code)
	}

	resp := parseResponse(t, w)
	if resp.Message != "created" {
		t.Errorf("expected message 'created', got %q", resp.Message)
	}
}

func TestError_AppError(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantStatus int
		wantCode   int
	}{
		{"bad request", NewBadRequest("bad input"), http.StatusBadRequest, 400},
		{"unauthorized", NewUnauthorized("login required"), http.StatusUnauthorized, 401},
		{"forbidden", NewForbidden("no access"), http.StatusForbidden, 403},
		{"not found", NewNotFound("missing"), http.StatusNotFound, 404},
		{"conflict", NewConflict("duplicate"), http.StatusConflict, 409},
		{"unprocessable", NewUnprocessable("not configured"), http.StatusUnprocessableEntity, 422},
		{"server error", NewServerError("boom"), http.StatusInternalServerError, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(func(c *gin.Context) {
				Error(c, tt.err)
			})

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			resp := parseResponse(t, w)
			if resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
			if resp.Message != tt.err.Message {
				t.Errorf("expected message %q, got %q", tt.err.Message, resp.Message)
			}
		})
	}
}

func TestError_WrappedAppError(t *testing.T) {
	wrapped := errorsJoin(NewNotFound("company not found"))

	w := performRequest(func(c *gin.Context) {
		Error(c, wrapped)
	})

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status %d for wrapped AppError, got %d", http.StatusNotFound, w.Code)
	}
}

// errorsJoin wraps an error one level deep so errors.As has to unwrap.
func errorsJoin(err error) error {
	return errors.Join(err)
}

func TestError_PlainError(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		Error(c, errors.New("unexpected failure"))
	})

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}

	resp := parseResponse(t, w)
	if resp.Code != 500 {
		t.Errorf("expected code 500, got %d", resp.Code)
	}
}

func TestAppError_ErrorString(t *testing.T) {
	err := NewForbidden("access denied to company")
	if err.Error() != "access denied to company" {
		t.Errorf("Error() = %q", err.Error())
	}
}
