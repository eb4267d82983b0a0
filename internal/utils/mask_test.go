package utils

import "testing"

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"short value", "abc123", "********"},
		{"eight chars", "12345678", "********"},
		{"long key", "sk_test_abcdefghijklmnop", "sk_t****mnop"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskSecret(tt.input); got != tt.expected {
				t.Errorf("MaskSecret(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "Acme Traders", "acme-traders"},
		{"punctuation", "Bob's Shop!", "bob-s-shop"},
		{"extra spaces", "  Two   Words  ", "two-words"},
		{"already clean", "widgets", "widgets"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.expected {
				t.Errorf("Slugify(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}
