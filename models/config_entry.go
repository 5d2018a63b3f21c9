package models

import (
	"strings"
	"time"
)

// Setting categories used for grouped retrieval and default seeding.
const (
	CategorySystem   = "SYSTEM"
	CategoryEmail    = "EMAIL"
	CategoryStorage  = "STORAGE"
	CategorySecurity = "SECURITY"
	CategoryAPI      = "API"
	CategoryBranding = "BRANDING"
)

// ConfigEntry is a single namespaced key/value configuration row.
// When IsEncrypted is set, Value holds an "ivHex:cipherHex" label rather
// than the plaintext.
type ConfigEntry struct {
	Key         string    `gorm:"primaryKey;size:128" json:"key"`
	Value       string    `gorm:"type:text" json:"value"`
	Description string    `json:"description,omitempty"`
	IsEncrypted bool      `gorm:"default:false" json:"is_encrypted"`
	Category    string    `gorm:"index;default:'SYSTEM'" json:"category"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName keeps the table name stable regardless of pluralization rules.
func (ConfigEntry) TableName() string {
	return "config_entries"
}

// SettingRead is the response shape for setting reads; Value is already
// decrypted where applicable.
type SettingRead struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
	IsEncrypted bool   `json:"is_encrypted"`
}

// SettingUpdate is the request payload for writing a single setting.
type SettingUpdate struct {
	Value       string `json:"value"`
	IsEncrypted bool   `json:"is_encrypted"`
}

// BulkSettingItem is one element of a bulk settings write.
type BulkSettingItem struct {
	Key         string `json:"key" binding:"required"`
	Value       string `json:"value"`
	IsEncrypted bool   `json:"is_encrypted"`
}

// BulkSettingsUpdate is the request payload for writing several settings
// in one call. Writes are applied in order and are not transactional.
type BulkSettingsUpdate struct {
	Settings []BulkSettingItem `json:"settings" binding:"required"`
}

// Normalize trims whitespace from input fields
func (b *BulkSettingsUpdate) Normalize() {
	for i := range b.Settings {
		b.Settings[i].Key = strings.TrimSpace(b.Settings[i].Key)
	}
}
