package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Branding holds a tenant's visual identity and copy.
type Branding struct {
	Logo           string `json:"logo"`
	Favicon        string `json:"favicon"`
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
	AccentColor    string `json:"accentColor"`
	SuccessColor   string `json:"successColor"`
	WarningColor   string `json:"warningColor"`
	InfoColor      string `json:"infoColor"`
	FontFamily     string `json:"fontFamily"`
	PlatformName   string `json:"platformName"`
	Tagline        string `json:"tagline"`
	FooterText     string `json:"footerText"`
	CustomCSS      string `json:"customCSS"`
}

// Features holds the per-tenant feature flags.
type Features struct {
	EnableCampaigns      bool `json:"enableCampaigns"`
	EnableMessaging      bool `json:"enableMessaging"`
	EnableFeed           bool `json:"enableFeed"`
	EnableAIMatching     bool `json:"enableAIMatching"`
	EnableAnalytics      bool `json:"enableAnalytics"`
	EnableReviews        bool `json:"enableReviews"`
	EnableSearch         bool `json:"enableSearch"`
	EnableNotifications  bool `json:"enableNotifications"`
	EnableCollaborations bool `json:"enableCollaborations"`
}

// Limits holds per-tenant resource ceilings.
type Limits struct {
	MaxUsersPerTenant     int `json:"maxUsersPerTenant"`
	MaxCampaignsPerUser   int `json:"maxCampaignsPerUser"`
	MaxMessagesPerDay     int `json:"maxMessagesPerDay"`
	MaxFileUploadSizeMB   int `json:"maxFileUploadSize"`
	MaxStoragePerTenantGB int `json:"maxStoragePerTenant"`
	MaxConnectionsPerUser int `json:"maxConnectionsPerUser"`
}

// StripeIntegration third-party payment credentials
type StripeIntegration struct {
	Enabled   bool   `json:"enabled"`
	PublicKey string `json:"publicKey"`
	SecretKey string `json:"secretKey"`
}

// SendgridIntegration transactional email credentials
type SendgridIntegration struct {
	Enabled   bool   `json:"enabled"`
	APIKey    string `json:"apiKey"`
	FromEmail string `json:"fromEmail"`
	FromName  string `json:"fromName"`
}

// AWSIntegration object storage credentials
type AWSIntegration struct {
	Enabled         bool   `json:"enabled"`
	AccessKeyID     string `json:"accessKeyId"`
	SecretAccessKey string `json:"secretAccessKey"`
	Bucket          string `json:"bucket"`
	Region          string `json:"region"`
}

// GoogleIntegration OAuth credentials
type GoogleIntegration struct {
	Enabled      bool   `json:"enabled"`
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
}

// Integrations groups the four supported provider blocks.
type Integrations struct {
	Stripe   StripeIntegration   `json:"stripe"`
	Sendgrid SendgridIntegration `json:"sendgrid"`
	AWS      AWSIntegration      `json:"aws"`
	Google   GoogleIntegration   `json:"google"`
}

// EmailSettings is the optional per-tenant SMTP override.
type EmailSettings struct {
	SMTPHost     string `json:"smtpHost"`
	SMTPPort     int    `json:"smtpPort"`
	SMTPUser     string `json:"smtpUser"`
	SMTPPassword string `json:"smtpPassword"`
	SMTPSecure   bool   `json:"smtpSecure"`
}

// SEOSettings is the optional per-tenant SEO metadata.
type SEOSettings struct {
	MetaTitle       string   `json:"metaTitle"`
	MetaDescription string   `json:"metaDescription"`
	MetaKeywords    []string `json:"metaKeywords"`
	OGImage         string   `json:"ogImage"`
	TwitterCard     string   `json:"twitterCard"`
}

// TenantPlatformConfig is the per-tenant configuration bundle. A NULL
// TenantID marks the single canonical platform-default row. The sub-bundles
// are stored as JSON text columns and accessed through the Get/Set helpers.
type TenantPlatformConfig struct {
	ID               string    `gorm:"primaryKey;size:36" json:"id"`
	TenantID         *string   `gorm:"uniqueIndex;size:36" json:"tenant_id"`
	BrandingJSON     string    `gorm:"column:branding_json;type:text;default:'{}'" json:"-"`
	FeaturesJSON     string    `gorm:"column:features_json;type:text;default:'{}'" json:"-"`
	LimitsJSON       string    `gorm:"column:limits_json;type:text;default:'{}'" json:"-"`
	IntegrationsJSON string    `gorm:"column:integrations_json;type:text;default:'{}'" json:"-"`
	EmailJSON        string    `gorm:"column:email_settings_json;type:text" json:"-"`
	SEOJSON          string    `gorm:"column:seo_settings_json;type:text" json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName keeps the table name stable regardless of pluralization rules.
func (TenantPlatformConfig) TableName() string {
	return "tenant_platform_configs"
}

// BeforeCreate GORM hook - auto-generate an ID when missing
func (c *TenantPlatformConfig) BeforeCreate(tx *gorm.DB) error {
	if strings.TrimSpace(c.ID) == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// GetBranding returns the branding sub-bundle
func (c *TenantPlatformConfig) GetBranding() Branding {
	var b Branding
	if c.BrandingJSON != "" {
		_ = json.Unmarshal([]byte(c.BrandingJSON), &b)
	}
	return b
}

// SetBranding stores the branding sub-bundle as JSON
func (c *TenantPlatformConfig) SetBranding(b Branding) {
	data, _ := json.Marshal(b)
	c.BrandingJSON = string(data)
}

// GetFeatures returns the feature flag sub-bundle
func (c *TenantPlatformConfig) GetFeatures() Features {
	var f Features
	if c.FeaturesJSON != "" {
		_ = json.Unmarshal([]byte(c.FeaturesJSON), &f)
	}
	return f
}

// SetFeatures stores the feature flag sub-bundle as JSON
func (c *TenantPlatformConfig) SetFeatures(f Features) {
	data, _ := json.Marshal(f)
	c.FeaturesJSON = string(data)
}

// GetLimits returns the resource limit sub-bundle
func (c *TenantPlatformConfig) GetLimits() Limits {
	var l Limits
	if c.LimitsJSON != "" {
		_ = json.Unmarshal([]byte(c.LimitsJSON), &l)
	}
	return l
}

// SetLimits stores the resource limit sub-bundle as JSON
func (c *TenantPlatformConfig) SetLimits(l Limits) {
	data, _ := json.Marshal(l)
	c.LimitsJSON = string(data)
}

// GetIntegrations returns the integration credential sub-bundle
func (c *TenantPlatformConfig) GetIntegrations() Integrations {
	var i Integrations
	if c.IntegrationsJSON != "" {
		_ = json.Unmarshal([]byte(c.IntegrationsJSON), &i)
	}
	return i
}

// SetIntegrations stores the integration credential sub-bundle as JSON
func (c *TenantPlatformConfig) SetIntegrations(i Integrations) {
	data, _ := json.Marshal(i)
	c.IntegrationsJSON = string(data)
}

// GetEmailSettings returns the optional SMTP override, nil when unset
func (c *TenantPlatformConfig) GetEmailSettings() *EmailSettings {
	if c.EmailJSON == "" {
		return nil
	}
	var e EmailSettings
	if err := json.Unmarshal([]byte(c.EmailJSON), &e); err != nil {
		return nil
	}
	return &e
}

// SetEmailSettings stores the optional SMTP override as JSON
func (c *TenantPlatformConfig) SetEmailSettings(e *EmailSettings) {
	if e == nil {
		c.EmailJSON = ""
		return
	}
	data, _ := json.Marshal(e)
	c.EmailJSON = string(data)
}

// GetSEOSettings returns the optional SEO metadata, nil when unset
func (c *TenantPlatformConfig) GetSEOSettings() *SEOSettings {
	if c.SEOJSON == "" {
		return nil
	}
	var s SEOSettings
	if err := json.Unmarshal([]byte(c.SEOJSON), &s); err != nil {
		return nil
	}
	return &s
}

// SetSEOSettings stores the optional SEO metadata as JSON
func (c *TenantPlatformConfig) SetSEOSettings(s *SEOSettings) {
	if s == nil {
		c.SEOJSON = ""
		return
	}
	data, _ := json.Marshal(s)
	c.SEOJSON = string(data)
}

// PlatformConfigRead is the response shape for a resolved bundle.
type PlatformConfigRead struct {
	ID            string         `json:"id"`
	TenantID      *string        `json:"tenant_id"`
	Branding      Branding       `json:"branding"`
	Features      Features       `json:"features"`
	Limits        Limits         `json:"limits"`
	Integrations  Integrations   `json:"integrations"`
	EmailSettings *EmailSettings `json:"email_settings,omitempty"`
	SEOSettings   *SEOSettings   `json:"seo_settings,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// Read assembles the response shape from the stored JSON columns.
func (c *TenantPlatformConfig) Read() PlatformConfigRead {
	return PlatformConfigRead{
		ID:            c.ID,
		TenantID:      c.TenantID,
		Branding:      c.GetBranding(),
		Features:      c.GetFeatures(),
		Limits:        c.GetLimits(),
		Integrations:  c.GetIntegrations(),
		EmailSettings: c.GetEmailSettings(),
		SEOSettings:   c.GetSEOSettings(),
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

// BrandingPatch is a partial branding update; nil fields are left untouched.
type BrandingPatch struct {
	Logo           *string `json:"logo"`
	Favicon        *string `json:"favicon"`
	PrimaryColor   *string `json:"primaryColor"`
	SecondaryColor *string `json:"secondaryColor"`
	AccentColor    *string `json:"accentColor"`
	SuccessColor   *string `json:"successColor"`
	WarningColor   *string `json:"warningColor"`
	InfoColor      *string `json:"infoColor"`
	FontFamily     *string `json:"fontFamily"`
	PlatformName   *string `json:"platformName"`
	Tagline        *string `json:"tagline"`
	FooterText     *string `json:"footerText"`
	CustomCSS      *string `json:"customCSS"`
}

// Apply shallow-merges the patch into b.
func (p BrandingPatch) Apply(b *Branding) {
	setString(&b.Logo, p.Logo)
	setString(&b.Favicon, p.Favicon)
	setString(&b.PrimaryColor, p.PrimaryColor)
	setString(&b.SecondaryColor, p.SecondaryColor)
	setString(&b.AccentColor, p.AccentColor)
	setString(&b.SuccessColor, p.SuccessColor)
	setString(&b.WarningColor, p.WarningColor)
	setString(&b.InfoColor, p.InfoColor)
	setString(&b.FontFamily, p.FontFamily)
	setString(&b.PlatformName, p.PlatformName)
	setString(&b.Tagline, p.Tagline)
	setString(&b.FooterText, p.FooterText)
	setString(&b.CustomCSS, p.CustomCSS)
}

// FeaturesPatch is a partial feature flag update; nil fields are left untouched.
type FeaturesPatch struct {
	EnableCampaigns      *bool `json:"enableCampaigns"`
	EnableMessaging      *bool `json:"enableMessaging"`
	EnableFeed           *bool `json:"enableFeed"`
	EnableAIMatching     *bool `json:"enableAIMatching"`
	EnableAnalytics      *bool `json:"enableAnalytics"`
	EnableReviews        *bool `json:"enableReviews"`
	EnableSearch         *bool `json:"enableSearch"`
	EnableNotifications  *bool `json:"enableNotifications"`
	EnableCollaborations *bool `json:"enableCollaborations"`
}

// Apply shallow-merges the patch into f.
func (p FeaturesPatch) Apply(f *Features) {
	setBool(&f.EnableCampaigns, p.EnableCampaigns)
	setBool(&f.EnableMessaging, p.EnableMessaging)
	setBool(&f.EnableFeed, p.EnableFeed)
	setBool(&f.EnableAIMatching, p.EnableAIMatching)
	setBool(&f.EnableAnalytics, p.EnableAnalytics)
	setBool(&f.EnableReviews, p.EnableReviews)
	setBool(&f.EnableSearch, p.EnableSearch)
	setBool(&f.EnableNotifications, p.EnableNotifications)
	setBool(&f.EnableCollaborations, p.EnableCollaborations)
}

// StripePatch partial stripe provider update
type StripePatch struct {
	Enabled   *bool   `json:"enabled"`
	PublicKey *string `json:"publicKey"`
	SecretKey *string `json:"secretKey"`
}

// SendgridPatch partial sendgrid provider update
type SendgridPatch struct {
	Enabled   *bool   `json:"enabled"`
	APIKey    *string `json:"apiKey"`
	FromEmail *string `json:"fromEmail"`
	FromName  *string `json:"fromName"`
}

// AWSPatch partial aws provider update
type AWSPatch struct {
	Enabled         *bool   `json:"enabled"`
	AccessKeyID     *string `json:"accessKeyId"`
	SecretAccessKey *string `json:"secretAccessKey"`
	Bucket          *string `json:"bucket"`
	Region          *string `json:"region"`
}

// GooglePatch partial google provider update
type GooglePatch struct {
	Enabled      *bool   `json:"enabled"`
	ClientID     *string `json:"clientId"`
	ClientSecret *string `json:"clientSecret"`
}

// IntegrationsPatch carries per-provider partial updates. Providers absent
// from the patch are left untouched entirely.
type IntegrationsPatch struct {
	Stripe   *StripePatch   `json:"stripe"`
	Sendgrid *SendgridPatch `json:"sendgrid"`
	AWS      *AWSPatch      `json:"aws"`
	Google   *GooglePatch   `json:"google"`
}

// Apply merges each provider block independently.
func (p IntegrationsPatch) Apply(i *Integrations) {
	if p.Stripe != nil {
		setBool(&i.Stripe.Enabled, p.Stripe.Enabled)
		setString(&i.Stripe.PublicKey, p.Stripe.PublicKey)
		setString(&i.Stripe.SecretKey, p.Stripe.SecretKey)
	}
	if p.Sendgrid != nil {
		setBool(&i.Sendgrid.Enabled, p.Sendgrid.Enabled)
		setString(&i.Sendgrid.APIKey, p.Sendgrid.APIKey)
		setString(&i.Sendgrid.FromEmail, p.Sendgrid.FromEmail)
		setString(&i.Sendgrid.FromName, p.Sendgrid.FromName)
	}
	if p.AWS != nil {
		setBool(&i.AWS.Enabled, p.AWS.Enabled)
		setString(&i.AWS.AccessKeyID, p.AWS.AccessKeyID)
		setString(&i.AWS.SecretAccessKey, p.AWS.SecretAccessKey)
		setString(&i.AWS.Bucket, p.AWS.Bucket)
		setString(&i.AWS.Region, p.AWS.Region)
	}
	if p.Google != nil {
		setBool(&i.Google.Enabled, p.Google.Enabled)
		setString(&i.Google.ClientID, p.Google.ClientID)
		setString(&i.Google.ClientSecret, p.Google.ClientSecret)
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
