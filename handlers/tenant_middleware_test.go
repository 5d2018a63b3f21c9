package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestSubdomainOf(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"acme.platform.com", "acme"},
		{"Acme.platform.com", "acme"},
		{"acme.platform.com:7790", "acme"},
		{"platform.com", ""},
		{"localhost", ""},
		{"localhost:7790", ""},
		{"www.platform.com", ""},
		{"localhost.platform.com", ""},
		{"deep.acme.platform.com", "deep"},
	}

	for _, tt := range tests {
		if got := subdomainOf(tt.host); got != tt.want {
			t.Fatalf("subdomainOf(%q) = %q, want %q", tt.host, got, tt.want)
		}
	}
}

func TestTenantIDDefaultsEmpty(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	if got := TenantID(c); got != "" {
		t.Fatalf("TenantID on bare context = %q, want empty", got)
	}
}

func TestResolveTenantHeaderWins(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ResolveTenant())

	var resolved string
	r.GET("/", func(c *gin.Context) {
		resolved = TenantID(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Tenant-ID", " tenant-123 ")
	req.Host = "acme.platform.com"
	r.ServeHTTP(httptest.NewRecorder(), req)

	if resolved != "tenant-123" {
		t.Fatalf("resolved = %q, want header id", resolved)
	}
}

func TestResolveTenantBareHostIsPlatformDefault(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ResolveTenant())

	var resolved string
	r.GET("/", func(c *gin.Context) {
		resolved = TenantID(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "localhost:7790"
	r.ServeHTTP(httptest.NewRecorder(), req)

	if resolved != "" {
		t.Fatalf("resolved = %q, want platform default", resolved)
	}
}
