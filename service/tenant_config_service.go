package service

import (
	"errors"
	"fmt"
	"platconf/hub"
	"platconf/models"
	"platconf/storage"
	"strings"
	"time"

	"gorm.io/gorm"
)

// MaskLiteral replaces non-empty credential fields on masked reads.
const MaskLiteral = "***"

// platformDefaultID pins the canonical NULL-tenant row to a fixed primary
// key, so concurrent first resolutions of the platform default collide on
// the key instead of creating divergent rows.
const platformDefaultID = "00000000-0000-0000-0000-000000000000"

// Asset types accepted by UploadAsset.
const (
	AssetTypeLogo    = "logo"
	AssetTypeFavicon = "favicon"
)

// TenantConfigService resolves per-tenant configuration bundles with lazy
// defaulting. It is read/write-through to storage and independent of the
// settings registry and the codec.
type TenantConfigService struct {
	db     *gorm.DB
	events *hub.Hub
	store  storage.ObjectStore
}

// NewTenantConfigService constructs a tenant config service
func NewTenantConfigService(db *gorm.DB, events *hub.Hub, store storage.ObjectStore) *TenantConfigService {
	return &TenantConfigService{db: db, events: events, store: store}
}

// GetOrCreate resolves the bundle for a tenant, creating a default one on
// first access. An empty tenantID resolves the canonical platform-default
// row. A non-empty tenantID with no matching tenant record fails with
// ErrTenantNotFound. Two concurrent first accesses cannot diverge: the
// uniqueness constraint fails the loser, which then refetches the winner's
// row.
func (s *TenantConfigService) GetOrCreate(tenantID string) (*models.TenantPlatformConfig, error) {
	tenantID = strings.TrimSpace(tenantID)

	if tenantID == "" {
		var cfg models.TenantPlatformConfig
		err := s.db.First(&cfg, "tenant_id IS NULL").Error
		if err == nil {
			return &cfg, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		cfg = defaultBundle(nil, "")
		cfg.ID = platformDefaultID
		if err := s.db.Create(&cfg).Error; err != nil {
			return s.refetch("tenant_id IS NULL", nil, err)
		}
		return &cfg, nil
	}

	var cfg models.TenantPlatformConfig
	err := s.db.First(&cfg, "tenant_id = ?", tenantID).Error
	if err == nil {
		return &cfg, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var tenant models.Tenant
	if err := s.db.First(&tenant, "id = ?", tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, wrapSentinel(fmt.Sprintf("tenant %s not found", tenantID), ErrTenantNotFound)
		}
		return nil, err
	}

	cfg = defaultBundle(&tenantID, tenant.Name)
	if err := s.db.Create(&cfg).Error; err != nil {
		return s.refetch("tenant_id = ?", []interface{}{tenantID}, err)
	}
	return &cfg, nil
}

// refetch recovers from a lost first-write race: if a row now exists for
// the query, the concurrent creator won and its bundle is returned.
func (s *TenantConfigService) refetch(query string, args []interface{}, createErr error) (*models.TenantPlatformConfig, error) {
	var existing models.TenantPlatformConfig
	if err := s.db.First(&existing, append([]interface{}{query}, args...)...).Error; err == nil {
		return &existing, nil
	}
	return nil, fmt.Errorf("failed to create platform config: %w", createErr)
}

// UpdateBranding shallow-merges the patch into the branding sub-bundle.
// Fields absent from the patch are left untouched.
func (s *TenantConfigService) UpdateBranding(tenantID string, patch models.BrandingPatch) (*models.TenantPlatformConfig, error) {
	cfg, err := s.GetOrCreate(tenantID)
	if err != nil {
		return nil, err
	}

	branding := cfg.GetBranding()
	patch.Apply(&branding)
	cfg.SetBranding(branding)

	if err := s.db.Save(cfg).Error; err != nil {
		return nil, fmt.Errorf("failed to update branding: %w", err)
	}
	return cfg, nil
}

// UpdateFeatures shallow-merges the patch into the feature flags and emits
// one feature-flag-changed event per flag whose value actually changed.
func (s *TenantConfigService) UpdateFeatures(tenantID string, patch models.FeaturesPatch) (*models.TenantPlatformConfig, error) {
	cfg, err := s.GetOrCreate(tenantID)
	if err != nil {
		return nil, err
	}

	before := cfg.GetFeatures()
	after := before
	patch.Apply(&after)
	cfg.SetFeatures(after)

	if err := s.db.Save(cfg).Error; err != nil {
		return nil, fmt.Errorf("failed to update features: %w", err)
	}

	for _, change := range featureFlagDiff(before, after) {
		s.events.EmitFeatureFlagChanged(change.name, change.enabled)
	}
	return cfg, nil
}

// UpdateIntegrations merges each provider block independently; providers
// absent from the patch are untouched.
func (s *TenantConfigService) UpdateIntegrations(tenantID string, patch models.IntegrationsPatch) (*models.TenantPlatformConfig, error) {
	cfg, err := s.GetOrCreate(tenantID)
	if err != nil {
		return nil, err
	}

	integrations := cfg.GetIntegrations()
	patch.Apply(&integrations)
	cfg.SetIntegrations(integrations)

	if err := s.db.Save(cfg).Error; err != nil {
		return nil, fmt.Errorf("failed to update integrations: %w", err)
	}
	return cfg, nil
}

// UploadAsset stores a branding asset through the object-store collaborator
// and records the returned URL on the bundle.
func (s *TenantConfigService) UploadAsset(tenantID string, data []byte, assetType string) (string, error) {
	if assetType != AssetTypeLogo && assetType != AssetTypeFavicon {
		return "", wrapSentinel(fmt.Sprintf("asset type %q not supported", assetType), ErrInvalidAssetType)
	}

	cfg, err := s.GetOrCreate(tenantID)
	if err != nil {
		return "", err
	}

	url, err := s.store.Save(tenantID, data, assetType)
	if err != nil {
		return "", fmt.Errorf("failed to store %s asset: %w", assetType, err)
	}

	branding := cfg.GetBranding()
	if assetType == AssetTypeLogo {
		branding.Logo = url
	} else {
		branding.Favicon = url
	}
	cfg.SetBranding(branding)

	if err := s.db.Save(cfg).Error; err != nil {
		return "", fmt.Errorf("failed to record %s asset: %w", assetType, err)
	}
	return url, nil
}

// GetBranding resolves the bundle and returns its branding sub-bundle.
func (s *TenantConfigService) GetBranding(tenantID string) (models.Branding, error) {
	cfg, err := s.GetOrCreate(tenantID)
	if err != nil {
		return models.Branding{}, err
	}
	return cfg.GetBranding(), nil
}

// GetFeatures resolves the bundle and returns its feature flags.
func (s *TenantConfigService) GetFeatures(tenantID string) (models.Features, error) {
	cfg, err := s.GetOrCreate(tenantID)
	if err != nil {
		return models.Features{}, err
	}
	return cfg.GetFeatures(), nil
}

// GetIntegrationsMasked resolves the bundle and masks every non-empty
// credential field with the fixed mask literal. Empty credentials remain
// empty; enabled flags and non-secret identifiers pass through. This is the
// only integration read allowed past the service boundary.
func (s *TenantConfigService) GetIntegrationsMasked(tenantID string) (models.Integrations, error) {
	cfg, err := s.GetOrCreate(tenantID)
	if err != nil {
		return models.Integrations{}, err
	}

	i := cfg.GetIntegrations()
	maskField(&i.Stripe.SecretKey)
	maskField(&i.Sendgrid.APIKey)
	maskField(&i.AWS.AccessKeyID)
	maskField(&i.AWS.SecretAccessKey)
	maskField(&i.Google.ClientSecret)
	return i, nil
}

func maskField(field *string) {
	if *field != "" {
		*field = MaskLiteral
	}
}

// defaultBundle builds the first-access bundle: platform default branding
// with copy derived from the tenant name, all feature flags enabled, fixed
// limits, and every integration disabled with empty credentials.
func defaultBundle(tenantID *string, tenantName string) models.TenantPlatformConfig {
	name := strings.TrimSpace(tenantName)
	if name == "" {
		name = "Platform"
	}

	cfg := models.TenantPlatformConfig{TenantID: tenantID}
	cfg.SetBranding(models.Branding{
		PrimaryColor:   "#E1306C",
		SecondaryColor: "#5B51D8",
		AccentColor:    "#FD8D32",
		SuccessColor:   "#00D95F",
		WarningColor:   "#FFCC00",
		InfoColor:      "#0095F6",
		FontFamily:     "Inter, sans-serif",
		PlatformName:   name,
		Tagline:        "Connect. Collaborate. Succeed.",
		FooterText:     fmt.Sprintf("© %d %s. All rights reserved.", time.Now().Year(), name),
	})
	cfg.SetFeatures(models.Features{
		EnableCampaigns:      true,
		EnableMessaging:      true,
		EnableFeed:           true,
		EnableAIMatching:     true,
		EnableAnalytics:      true,
		EnableReviews:        true,
		EnableSearch:         true,
		EnableNotifications:  true,
		EnableCollaborations: true,
	})
	cfg.SetLimits(models.Limits{
		MaxUsersPerTenant:     1000,
		MaxCampaignsPerUser:   50,
		MaxMessagesPerDay:     500,
		MaxFileUploadSizeMB:   10,
		MaxStoragePerTenantGB: 100,
		MaxConnectionsPerUser: 500,
	})
	cfg.SetIntegrations(models.Integrations{})
	return cfg
}

type flagChange struct {
	name    string
	enabled bool
}

// featureFlagDiff lists the flags whose value changed, in declaration order.
func featureFlagDiff(before, after models.Features) []flagChange {
	pairs := []struct {
		name          string
		before, after bool
	}{
		{"enableCampaigns", before.EnableCampaigns, after.EnableCampaigns},
		{"enableMessaging", before.EnableMessaging, after.EnableMessaging},
		{"enableFeed", before.EnableFeed, after.EnableFeed},
		{"enableAIMatching", before.EnableAIMatching, after.EnableAIMatching},
		{"enableAnalytics", before.EnableAnalytics, after.EnableAnalytics},
		{"enableReviews", before.EnableReviews, after.EnableReviews},
		{"enableSearch", before.EnableSearch, after.EnableSearch},
		{"enableNotifications", before.EnableNotifications, after.EnableNotifications},
		{"enableCollaborations", before.EnableCollaborations, after.EnableCollaborations},
	}

	var changed []flagChange
	for _, p := range pairs {
		if p.before != p.after {
			changed = append(changed, flagChange{name: p.name, enabled: p.after})
		}
	}
	return changed
}
