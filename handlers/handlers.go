package handlers

import (
	"errors"
	"io"
	"net/http"
	"platconf/database"
	"platconf/models"
	"platconf/service"
	"platconf/version"

	"github.com/gin-gonic/gin"
)

// ListSettings returns every setting, decrypted
func ListSettings(c *gin.Context) {
	settings, err := service.GlobalServices.Settings.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// ListSettingsByCategory returns the settings of one category
func ListSettingsByCategory(c *gin.Context) {
	settings, err := service.GlobalServices.Settings.ListByCategory(c.Param("category"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// GetSetting returns a single setting or 404
func GetSetting(c *gin.Context) {
	setting, ok, err := service.GlobalServices.Settings.Get(c.Param("key"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "setting not found"})
		return
	}
	c.JSON(http.StatusOK, setting)
}

// UpdateSetting writes a single setting
func UpdateSetting(c *gin.Context) {
	var req models.SettingUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	entry, err := service.GlobalServices.Settings.Upsert(c.Param("key"), req.Value, req.IsEncrypted)
	if err != nil {
		if errors.Is(err, service.ErrEmptySettingKey) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "key": entry.Key, "category": entry.Category})
}

// BulkUpdateSettings applies several setting writes in order
func BulkUpdateSettings(c *gin.Context) {
	var req models.BulkSettingsUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	req.Normalize()

	results, err := service.GlobalServices.Settings.BulkUpsert(req.Settings)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error(), "applied": results})
		return
	}
	c.JSON(http.StatusOK, results)
}

// DeleteSetting removes a setting
func DeleteSetting(c *gin.Context) {
	deleted, err := service.GlobalServices.Settings.Delete(c.Param("key"))
	if err != nil {
		if errors.Is(err, service.ErrEmptySettingKey) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// InitializeDefaultSettings seeds the default settings catalog
func InitializeDefaultSettings(c *gin.Context) {
	if err := service.GlobalServices.Settings.InitializeDefaults(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Default settings initialized"})
}

// GetPlatformConfig resolves the full bundle for the request's tenant
func GetPlatformConfig(c *gin.Context) {
	cfg, err := service.GlobalServices.TenantConfig.GetOrCreate(TenantID(c))
	if err != nil {
		respondConfigError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg.Read())
}

// GetBranding returns the branding sub-bundle
func GetBranding(c *gin.Context) {
	branding, err := service.GlobalServices.TenantConfig.GetBranding(TenantID(c))
	if err != nil {
		respondConfigError(c, err)
		return
	}
	c.JSON(http.StatusOK, branding)
}

// UpdateBranding shallow-merges a branding patch
func UpdateBranding(c *gin.Context) {
	var patch models.BrandingPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	cfg, err := service.GlobalServices.TenantConfig.UpdateBranding(TenantID(c), patch)
	if err != nil {
		respondConfigError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg.Read())
}

// GetFeatures returns the feature flag sub-bundle
func GetFeatures(c *gin.Context) {
	features, err := service.GlobalServices.TenantConfig.GetFeatures(TenantID(c))
	if err != nil {
		respondConfigError(c, err)
		return
	}
	c.JSON(http.StatusOK, features)
}

// UpdateFeatures shallow-merges a feature flag patch
func UpdateFeatures(c *gin.Context) {
	var patch models.FeaturesPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	cfg, err := service.GlobalServices.TenantConfig.UpdateFeatures(TenantID(c), patch)
	if err != nil {
		respondConfigError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg.Read())
}

// GetIntegrations returns the integration sub-bundle with credentials masked
func GetIntegrations(c *gin.Context) {
	integrations, err := service.GlobalServices.TenantConfig.GetIntegrationsMasked(TenantID(c))
	if err != nil {
		respondConfigError(c, err)
		return
	}
	c.JSON(http.StatusOK, integrations)
}

// UpdateIntegrations merges provider credential patches
func UpdateIntegrations(c *gin.Context) {
	var patch models.IntegrationsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	if _, err := service.GlobalServices.TenantConfig.UpdateIntegrations(TenantID(c), patch); err != nil {
		respondConfigError(c, err)
		return
	}

	// Respond with the masked view so raw credentials never echo back.
	masked, err := service.GlobalServices.TenantConfig.GetIntegrationsMasked(TenantID(c))
	if err != nil {
		respondConfigError(c, err)
		return
	}
	c.JSON(http.StatusOK, masked)
}

// UploadAsset stores a logo or favicon and records its URL
func UploadAsset(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "missing file"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	url, err := service.GlobalServices.TenantConfig.UploadAsset(TenantID(c), data, c.Param("type"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidAssetType) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}
		respondConfigError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// ListTenants lists all tenants
func ListTenants(c *gin.Context) {
	tenants, err := service.GlobalServices.Tenant.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tenants)
}

// CreateTenant registers a tenant
func CreateTenant(c *gin.Context) {
	var req models.TenantCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	tenant, err := service.GlobalServices.Tenant.Create(req)
	if err != nil {
		if errors.Is(err, service.ErrSubdomainTaken) {
			c.JSON(http.StatusConflict, gin.H{"detail": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "id": tenant.ID})
}

// GetTenant retrieves a tenant by ID
func GetTenant(c *gin.Context) {
	tenant, err := service.GlobalServices.Tenant.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrTenantNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tenant)
}

// DeleteTenant removes a tenant and its platform config
func DeleteTenant(c *gin.Context) {
	if err := service.GlobalServices.Tenant.Delete(c.Param("id")); err != nil {
		if errors.Is(err, service.ErrTenantNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// HealthCheck reports service health
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"version":        version.GetFullVersion(),
		"storage_errors": database.StorageErrorCount(),
	})
}

func respondConfigError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrTenantNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
}
