package service

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"platconf/hub"
	"platconf/models"

	"gorm.io/gorm"
)

// recordingStore is an ObjectStore that fabricates URLs without touching
// the filesystem.
type recordingStore struct {
	saves int
}

func (r *recordingStore) Save(tenantID string, data []byte, assetType string) (string, error) {
	r.saves++
	return fmt.Sprintf("/uploads/test-%s-%d", assetType, r.saves), nil
}

func testTenantConfigService(t *testing.T) (*TenantConfigService, *gorm.DB) {
	t.Helper()
	db := testDB(t)
	return NewTenantConfigService(db, hub.New(), &recordingStore{}), db
}

func createTenant(t *testing.T, db *gorm.DB, name, subdomain string) *models.Tenant {
	t.Helper()
	tenant, err := NewTenantService(db).Create(models.TenantCreate{Name: name, Subdomain: subdomain})
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	return tenant
}

func TestGetOrCreatePlatformDefault(t *testing.T) {
	s, _ := testTenantConfigService(t)

	cfg, err := s.GetOrCreate("")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if cfg.TenantID != nil {
		t.Fatalf("platform default row has tenant id %v", *cfg.TenantID)
	}

	branding := cfg.GetBranding()
	if branding.PlatformName != "Platform" {
		t.Fatalf("platform name = %q, want Platform", branding.PlatformName)
	}
	if branding.Logo != "" || branding.Favicon != "" {
		t.Fatalf("fresh bundle carries assets: logo=%q favicon=%q", branding.Logo, branding.Favicon)
	}
	if branding.PrimaryColor != "#E1306C" {
		t.Fatalf("primary color = %q", branding.PrimaryColor)
	}

	features := cfg.GetFeatures()
	for name, enabled := range map[string]bool{
		"campaigns":      features.EnableCampaigns,
		"messaging":      features.EnableMessaging,
		"feed":           features.EnableFeed,
		"aiMatching":     features.EnableAIMatching,
		"analytics":      features.EnableAnalytics,
		"reviews":        features.EnableReviews,
		"search":         features.EnableSearch,
		"notifications":  features.EnableNotifications,
		"collaborations": features.EnableCollaborations,
	} {
		if !enabled {
			t.Fatalf("flag %s defaults to disabled", name)
		}
	}

	limits := cfg.GetLimits()
	if limits.MaxUsersPerTenant != 1000 || limits.MaxConnectionsPerUser != 500 {
		t.Fatalf("unexpected default limits: %+v", limits)
	}

	// Repeated resolution returns the same row.
	again, err := s.GetOrCreate("")
	if err != nil {
		t.Fatalf("GetOrCreate (second): %v", err)
	}
	if again.ID != cfg.ID {
		t.Fatalf("platform default diverged: %s vs %s", cfg.ID, again.ID)
	}
}

func TestGetOrCreateUnknownTenant(t *testing.T) {
	s, _ := testTenantConfigService(t)

	_, err := s.GetOrCreate("no-such-tenant")
	if !errors.Is(err, ErrTenantNotFound) {
		t.Fatalf("expected ErrTenantNotFound, got %v", err)
	}
}

func TestGetOrCreateUsesTenantName(t *testing.T) {
	s, db := testTenantConfigService(t)
	tenant := createTenant(t, db, "Acme Corp", "acme")

	cfg, err := s.GetOrCreate(tenant.ID)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	branding := cfg.GetBranding()
	if branding.PlatformName != "Acme Corp" {
		t.Fatalf("platform name = %q, want tenant name", branding.PlatformName)
	}
}

func TestGetOrCreateConcurrentFirstAccess(t *testing.T) {
	s, db := testTenantConfigService(t)
	tenant := createTenant(t, db, "Acme Corp", "acme")

	var wg sync.WaitGroup
	ids := make([]string, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cfg, err := s.GetOrCreate(tenant.ID)
			if err != nil {
				errs[i] = err
				return
			}
			ids[i] = cfg.ID
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("goroutine %d: %v", i, err)
		}
	}
	if ids[0] != ids[1] {
		t.Fatalf("concurrent first access diverged: %s vs %s", ids[0], ids[1])
	}

	var count int64
	db.Model(&models.TenantPlatformConfig{}).Where("tenant_id = ?", tenant.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected one bundle row, got %d", count)
	}
}

func TestUpdateFeaturesPartialMerge(t *testing.T) {
	s, db := testTenantConfigService(t)
	tenant := createTenant(t, db, "Acme Corp", "acme")

	off := false
	cfg, err := s.UpdateFeatures(tenant.ID, models.FeaturesPatch{
		EnableCampaigns: &off,
		EnableMessaging: &off,
	})
	if err != nil {
		t.Fatalf("UpdateFeatures: %v", err)
	}

	features := cfg.GetFeatures()
	if features.EnableCampaigns || features.EnableMessaging {
		t.Fatalf("patched flags still enabled: %+v", features)
	}
	if !features.EnableFeed || !features.EnableAnalytics || !features.EnableCollaborations {
		t.Fatalf("unpatched flags flipped: %+v", features)
	}
}

func TestUpdateBrandingPartialMerge(t *testing.T) {
	s, db := testTenantConfigService(t)
	tenant := createTenant(t, db, "Acme Corp", "acme")

	name := "Acme Renamed"
	primary := "#123456"
	cfg, err := s.UpdateBranding(tenant.ID, models.BrandingPatch{
		PlatformName: &name,
		PrimaryColor: &primary,
	})
	if err != nil {
		t.Fatalf("UpdateBranding: %v", err)
	}

	branding := cfg.GetBranding()
	if branding.PlatformName != "Acme Renamed" || branding.PrimaryColor != "#123456" {
		t.Fatalf("patched fields not applied: %+v", branding)
	}
	if branding.SecondaryColor != "#5B51D8" || branding.Tagline != "Connect. Collaborate. Succeed." {
		t.Fatalf("unpatched fields changed: %+v", branding)
	}
}

func TestUpdateIntegrationsProviderIsolation(t *testing.T) {
	s, db := testTenantConfigService(t)
	tenant := createTenant(t, db, "Acme Corp", "acme")

	on := true
	secret := "sk_live_abc"
	if _, err := s.UpdateIntegrations(tenant.ID, models.IntegrationsPatch{
		Stripe: &models.StripePatch{Enabled: &on, SecretKey: &secret},
	}); err != nil {
		t.Fatalf("UpdateIntegrations: %v", err)
	}

	// A later patch to a different provider leaves stripe untouched.
	key := "SG.xyz"
	cfg, err := s.UpdateIntegrations(tenant.ID, models.IntegrationsPatch{
		Sendgrid: &models.SendgridPatch{Enabled: &on, APIKey: &key},
	})
	if err != nil {
		t.Fatalf("UpdateIntegrations (second): %v", err)
	}

	integrations := cfg.GetIntegrations()
	if !integrations.Stripe.Enabled || integrations.Stripe.SecretKey != "sk_live_abc" {
		t.Fatalf("stripe block disturbed: %+v", integrations.Stripe)
	}
	if !integrations.Sendgrid.Enabled || integrations.Sendgrid.APIKey != "SG.xyz" {
		t.Fatalf("sendgrid patch not applied: %+v", integrations.Sendgrid)
	}
}

func TestGetIntegrationsMasked(t *testing.T) {
	s, db := testTenantConfigService(t)
	tenant := createTenant(t, db, "Acme Corp", "acme")

	on := true
	stripeSecret := "sk_live_abc"
	stripePublic := "pk_live_abc"
	awsAccess := "AKIAEXAMPLE"
	awsSecret := "aws-secret"
	bucket := "assets"
	if _, err := s.UpdateIntegrations(tenant.ID, models.IntegrationsPatch{
		Stripe: &models.StripePatch{Enabled: &on, PublicKey: &stripePublic, SecretKey: &stripeSecret},
		AWS:    &models.AWSPatch{Enabled: &on, AccessKeyID: &awsAccess, SecretAccessKey: &awsSecret, Bucket: &bucket},
	}); err != nil {
		t.Fatalf("UpdateIntegrations: %v", err)
	}

	masked, err := s.GetIntegrationsMasked(tenant.ID)
	if err != nil {
		t.Fatalf("GetIntegrationsMasked: %v", err)
	}

	if masked.Stripe.SecretKey != MaskLiteral {
		t.Fatalf("stripe secret = %q, want mask", masked.Stripe.SecretKey)
	}
	if masked.AWS.AccessKeyID != MaskLiteral || masked.AWS.SecretAccessKey != MaskLiteral {
		t.Fatalf("aws credentials not masked: %+v", masked.AWS)
	}
	// Non-secret fields pass through, and credentials never set stay empty.
	if masked.Stripe.PublicKey != "pk_live_abc" || masked.AWS.Bucket != "assets" {
		t.Fatalf("non-secret fields masked: %+v", masked)
	}
	if masked.Sendgrid.APIKey != "" || masked.Google.ClientSecret != "" {
		t.Fatalf("empty credentials masked: %+v", masked)
	}

	// Masking is a read-time view only; the stored values are intact.
	cfg, err := s.GetOrCreate(tenant.ID)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if cfg.GetIntegrations().Stripe.SecretKey != "sk_live_abc" {
		t.Fatalf("masking corrupted the stored secret")
	}
}

func TestUploadAsset(t *testing.T) {
	s, db := testTenantConfigService(t)
	tenant := createTenant(t, db, "Acme Corp", "acme")

	url, err := s.UploadAsset(tenant.ID, []byte("png-bytes"), AssetTypeLogo)
	if err != nil {
		t.Fatalf("UploadAsset: %v", err)
	}
	if url == "" {
		t.Fatalf("empty asset URL")
	}

	branding, err := s.GetBranding(tenant.ID)
	if err != nil {
		t.Fatalf("GetBranding: %v", err)
	}
	if branding.Logo != url {
		t.Fatalf("logo = %q, want %q", branding.Logo, url)
	}
	if branding.Favicon != "" {
		t.Fatalf("favicon set by logo upload: %q", branding.Favicon)
	}

	if _, err := s.UploadAsset(tenant.ID, []byte("x"), "banner"); !errors.Is(err, ErrInvalidAssetType) {
		t.Fatalf("expected ErrInvalidAssetType, got %v", err)
	}
}

func TestFeatureFlagDiff(t *testing.T) {
	before := models.Features{EnableCampaigns: true, EnableMessaging: true, EnableSearch: true}
	after := before
	after.EnableMessaging = false
	after.EnableAnalytics = true

	changes := featureFlagDiff(before, after)
	if len(changes) != 2 {
		t.Fatalf("got %d changes, want 2: %+v", len(changes), changes)
	}
	if changes[0].name != "enableMessaging" || changes[0].enabled {
		t.Fatalf("unexpected first change: %+v", changes[0])
	}
	if changes[1].name != "enableAnalytics" || !changes[1].enabled {
		t.Fatalf("unexpected second change: %+v", changes[1])
	}

	if diff := featureFlagDiff(before, before); len(diff) != 0 {
		t.Fatalf("identical flag sets produced changes: %+v", diff)
	}
}

func TestTenantDeleteCascadesBundle(t *testing.T) {
	s, db := testTenantConfigService(t)
	tenant := createTenant(t, db, "Acme Corp", "acme")

	if _, err := s.GetOrCreate(tenant.ID); err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	if err := NewTenantService(db).Delete(tenant.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var count int64
	db.Model(&models.TenantPlatformConfig{}).Where("tenant_id = ?", tenant.ID).Count(&count)
	if count != 0 {
		t.Fatalf("bundle survived tenant deletion")
	}
}
