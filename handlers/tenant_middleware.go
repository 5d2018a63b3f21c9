package handlers

import (
	"platconf/service"
	"strings"

	"github.com/gin-gonic/gin"
)

const tenantContextKey = "tenantID"

// TenantID returns the tenant identity resolved for this request; empty
// means the platform default.
func TenantID(c *gin.Context) string {
	if v, ok := c.Get(tenantContextKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// ResolveTenant derives the request's tenant identity from the X-Tenant-ID
// header, falling back to the first subdomain label of the Host. Unknown
// subdomains and bare hosts resolve to the platform default (empty id);
// explicit unknown header IDs are left as-is so downstream lookups surface
// not-found.
func ResolveTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := strings.TrimSpace(c.GetHeader("X-Tenant-ID")); id != "" {
			c.Set(tenantContextKey, id)
			c.Next()
			return
		}

		if sub := subdomainOf(c.Request.Host); sub != "" {
			if tenant, err := service.GlobalServices.Tenant.GetBySubdomain(sub); err == nil {
				c.Set(tenantContextKey, tenant.ID)
				c.Next()
				return
			}
		}

		c.Set(tenantContextKey, "")
		c.Next()
	}
}

// subdomainOf extracts the first label of a multi-label host, ignoring
// ports, bare domains, localhost and www.
func subdomainOf(host string) string {
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}

	parts := strings.Split(host, ".")
	if len(parts) < 3 {
		return ""
	}

	sub := strings.ToLower(parts[0])
	if sub == "www" || sub == "localhost" {
		return ""
	}
	return sub
}
