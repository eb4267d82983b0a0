package utils

import (
	"regexp"
	"strings"
)

// MaskSecret hides the middle of a credential, keeping the first and last
// four characters. Short values are fully masked.
func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return "********"
	}
	return secret[:4] + "****" + secret[len(secret)-4:]
}

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases a name and collapses runs of non-alphanumerics into
// single hyphens.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugInvalid.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
