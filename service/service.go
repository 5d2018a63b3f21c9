package service

import (
	"platconf/hub"
	"platconf/secrets"
	"platconf/storage"

	"gorm.io/gorm"
)

// Services is the global service container
type Services struct {
	Settings     *SettingsService
	TenantConfig *TenantConfigService
	Tenant       *TenantService
}

// GlobalServices is the global service instance
var GlobalServices *Services

// InitServices initializes all services
func InitServices(db *gorm.DB, codec *secrets.Codec, events *hub.Hub, store storage.ObjectStore) {
	settingsSvc := NewSettingsService(db, codec, events)
	tenantSvc := NewTenantService(db)
	tenantConfigSvc := NewTenantConfigService(db, events, store)

	GlobalServices = &Services{
		Settings:     settingsSvc,
		TenantConfig: tenantConfigSvc,
		Tenant:       tenantSvc,
	}
}
