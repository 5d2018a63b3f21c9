package service

import (
	"errors"
	"fmt"
	"platconf/models"
	"strings"

	"gorm.io/gorm"
)

// TenantService handles tenant registry plumbing. Removing a tenant
// cascades to its platform config bundle.
type TenantService struct {
	db *gorm.DB
}

// NewTenantService constructs a tenant service
func NewTenantService(db *gorm.DB) *TenantService {
	return &TenantService{db: db}
}

// Create registers a tenant; the subdomain must be unused.
func (s *TenantService) Create(req models.TenantCreate) (*models.Tenant, error) {
	req.Normalize()

	var existing models.Tenant
	err := s.db.First(&existing, "subdomain = ?", req.Subdomain).Error
	if err == nil {
		return nil, wrapSentinel(fmt.Sprintf("subdomain %s already exists", req.Subdomain), ErrSubdomainTaken)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	tenant := models.Tenant{
		Subdomain: req.Subdomain,
		Name:      req.Name,
		Status:    models.TenantStatusActive,
	}
	if err := s.db.Create(&tenant).Error; err != nil {
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}
	return &tenant, nil
}

// List returns all tenants
func (s *TenantService) List() ([]models.Tenant, error) {
	var tenants []models.Tenant
	if err := s.db.Order("created_at").Find(&tenants).Error; err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	return tenants, nil
}

// Get retrieves a tenant by ID
func (s *TenantService) Get(id string) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := s.db.First(&tenant, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, wrapSentinel(fmt.Sprintf("tenant %s not found", id), ErrTenantNotFound)
		}
		return nil, err
	}
	return &tenant, nil
}

// GetBySubdomain retrieves a tenant by its subdomain label
func (s *TenantService) GetBySubdomain(subdomain string) (*models.Tenant, error) {
	subdomain = strings.ToLower(strings.TrimSpace(subdomain))
	var tenant models.Tenant
	if err := s.db.First(&tenant, "subdomain = ?", subdomain).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, wrapSentinel(fmt.Sprintf("tenant %s not found", subdomain), ErrTenantNotFound)
		}
		return nil, err
	}
	return &tenant, nil
}

// Delete removes a tenant and its platform config bundle.
func (s *TenantService) Delete(id string) error {
	tenant, err := s.Get(id)
	if err != nil {
		return err
	}

	if err := s.db.Where("tenant_id = ?", tenant.ID).Delete(&models.TenantPlatformConfig{}).Error; err != nil {
		return fmt.Errorf("failed to delete tenant config: %w", err)
	}
	if err := s.db.Delete(&models.Tenant{}, "id = ?", tenant.ID).Error; err != nil {
		return fmt.Errorf("failed to delete tenant: %w", err)
	}
	return nil
}
