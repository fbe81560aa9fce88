package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func newRequestWithHeaders(headers map[string]string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

func TestFormatRupees(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "₹0.00"},
		{5, "₹0.05"},
		{150, "₹1.50"},
		{123456, "₹1234.56"},
		{-50000, "-₹500.00"},
	}
	for _, tt := range tests {
		if got := formatRupees(tt.cents); got != tt.want {
			t.Errorf("formatRupees(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  hello  ", "hello"},
		{"with\x00control", "withcontrol"},
		{"tabs\tok", "tabs\tok"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.in); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := newRequestWithHeaders(map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"})
	if got := clientIP(req); got != "10.0.0.1" {
		t.Errorf("clientIP = %q, want 10.0.0.1", got)
	}
}
