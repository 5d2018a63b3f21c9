package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tenant statuses
const (
	TenantStatusActive    = "ACTIVE"
	TenantStatusSuspended = "SUSPENDED"
)

// Tenant is an isolated customer context. Only the fields the configuration
// substrate needs are modeled here; the wider platform owns the rest.
type Tenant struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Subdomain string    `gorm:"uniqueIndex;not null" json:"subdomain"`
	Name      string    `gorm:"not null" json:"name"`
	Status    string    `gorm:"default:'ACTIVE'" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate GORM hook - auto-generate an ID when missing
func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if strings.TrimSpace(t.ID) == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// TenantCreate request payload for registering a tenant
type TenantCreate struct {
	Subdomain string `json:"subdomain" binding:"required"`
	Name      string `json:"name" binding:"required"`
}

// Normalize trims whitespace from input fields
func (t *TenantCreate) Normalize() {
	t.Subdomain = strings.ToLower(strings.TrimSpace(t.Subdomain))
	t.Name = strings.TrimSpace(t.Name)
}
