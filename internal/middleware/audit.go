package middleware

import (
	"bytes"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/threepillars/storefront/internal/services"
)

// Audit records write operations (POST/PUT/PATCH/DELETE) to the audit trail,
// scoped to the resolved company when one is present.
func Audit() gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		if method != "POST" && method != "PUT" && method != "PATCH" && method != "DELETE" {
			c.Next()
			return
		}

		// Capture request body (up to 2000 chars of detail)
		var bodySnippet string
		if c.Request.Body != nil {
			bodyBytes, _ := io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			bodySnippet = string(bodyBytes)
			if len(bodySnippet) > 2000 {
				bodySnippet = bodySnippet[:2000] + "...[truncated]"
			}
			bodySnippet = maskSensitiveFields(bodySnippet)
		}

		c.Next()

		status := c.Writer.Status()
		companyID := ""
		if company := GetCompany(c); company != nil {
			companyID = company.ID
		}

		entry := services.AuditEntry{
			Category:  routeCategory(c.FullPath()),
			Message:   formatAuditMessage(GetUsername(c), method, c.Request.URL.Path, status),
			Detail:    bodySnippet,
			CompanyID: companyID,
			UserID:    GetUserID(c),
			Username:  GetUsername(c),
			IP:        c.ClientIP(),
		}
		if status >= 500 {
			services.AuditError(entry)
		} else if status >= 400 {
			services.AuditWarn(entry)
		} else {
			services.AuditInfo(entry)
		}
	}
}

// routeCategory extracts the first path segment after /api/ as the category,
// e.g. "/api/orders/:id" → "orders".
func routeCategory(fullPath string) string {
	path := strings.TrimPrefix(fullPath, "/api/")
	parts := strings.SplitN(path, "/", 2)
	if parts[0] == "" {
		return "unknown"
	}
	return parts[0]
}

func formatAuditMessage(username, method, path string, status int) string {
	if username == "" {
		username = "anonymous"
	}
	var b strings.Builder
	b.WriteString(username)
	b.WriteString(" ")
	b.WriteString(method)
	b.WriteString(" ")
	b.WriteString(path)
	if status >= 200 && status < 300 {
		b.WriteString(" ok")
	} else {
		b.WriteString(" failed")
	}
	return b.String()
}

// maskSensitiveFields replaces credential values in a JSON body snippet.
func maskSensitiveFields(body string) string {
	sensitiveKeys := []string{"password", "secret_key", "api_secret", "webhook_secret", "api_key", "token"}
	lower := strings.ToLower(body)
	for _, key := range sensitiveKeys {
		if strings.Contains(lower, key) {
			body = maskJSONValue(body, key)
		}
	}
	return body
}

// maskJSONValue does a best-effort mask of JSON string values whose key
// contains the given fragment.
func maskJSONValue(body, key string) string {
	out := body
	searchFrom := 0
	for {
		lower := strings.ToLower(out)
		idx := strings.Index(lower[searchFrom:], key)
		if idx == -1 {
			return out
		}
		idx += searchFrom

		colonIdx := strings.Index(out[idx:], ":")
		if colonIdx == -1 {
			return out
		}
		valueStart := idx + colonIdx + 1

		// Skip whitespace and opening quote
		rest := out[valueStart:]
		trimmed := strings.TrimLeft(rest, " \t")
		if !strings.HasPrefix(trimmed, "\"") {
			searchFrom = valueStart
			continue
		}
		quoteStart := valueStart + (len(rest) - len(trimmed)) + 1
		quoteEnd := strings.Index(out[quoteStart:], "\"")
		if quoteEnd == -1 {
			return out
		}
		out = out[:quoteStart] + "****" + out[quoteStart+quoteEnd:]
		searchFrom = quoteStart + 4
	}
}
