package service

import "platconf/models"

type defaultSetting struct {
	key         string
	value       string
	category    string
	description string
	encrypted   bool
}

// defaultSettings is the fixed catalog seeded by InitializeDefaults.
// Sensitive defaults carry encrypted=true and are stored as labels.
var defaultSettings = []defaultSetting{
	// Email
	{key: "email.smtp.host", value: "smtp.gmail.com", category: models.CategoryEmail, description: "SMTP server host"},
	{key: "email.smtp.port", value: "587", category: models.CategoryEmail, description: "SMTP server port"},
	{key: "email.smtp.secure", value: "false", category: models.CategoryEmail, description: "Use TLS/SSL"},
	{key: "email.smtp.user", value: "", category: models.CategoryEmail, description: "SMTP username"},
	{key: "email.smtp.password", value: "", category: models.CategoryEmail, description: "SMTP password", encrypted: true},
	{key: "email.from.name", value: "Platform Admin", category: models.CategoryEmail, description: "From name"},
	{key: "email.from.address", value: "noreply@platform.com", category: models.CategoryEmail, description: "From email address"},

	// Storage
	{key: "storage.type", value: "local", category: models.CategoryStorage, description: "Storage type (local, s3)"},
	{key: "storage.s3.bucket", value: "", category: models.CategoryStorage, description: "S3 bucket name"},
	{key: "storage.s3.region", value: "us-east-1", category: models.CategoryStorage, description: "S3 region"},
	{key: "storage.s3.accessKey", value: "", category: models.CategoryStorage, description: "S3 access key", encrypted: true},
	{key: "storage.s3.secretKey", value: "", category: models.CategoryStorage, description: "S3 secret key", encrypted: true},
	{key: "storage.maxFileSize", value: "10485760", category: models.CategoryStorage, description: "Max file size in bytes (10MB)"},

	// Security
	{key: "security.jwt.expiration", value: "24h", category: models.CategorySecurity, description: "JWT token expiration"},
	{key: "security.password.minLength", value: "8", category: models.CategorySecurity, description: "Minimum password length"},
	{key: "security.password.requireSpecialChar", value: "true", category: models.CategorySecurity, description: "Require special characters"},
	{key: "security.maxLoginAttempts", value: "5", category: models.CategorySecurity, description: "Max login attempts before lockout"},
	{key: "security.lockoutDuration", value: "900", category: models.CategorySecurity, description: "Lockout duration in seconds (15 min)"},

	// API
	{key: "api.rateLimit.enabled", value: "true", category: models.CategoryAPI, description: "Enable rate limiting"},
	{key: "api.rateLimit.maxRequests", value: "100", category: models.CategoryAPI, description: "Max requests per window"},
	{key: "api.rateLimit.windowMs", value: "900000", category: models.CategoryAPI, description: "Rate limit window in ms (15 min)"},
	{key: "api.cors.enabled", value: "true", category: models.CategoryAPI, description: "Enable CORS"},
	{key: "api.cors.origins", value: "http://localhost:5173", category: models.CategoryAPI, description: "Allowed CORS origins"},

	// Branding
	{key: "branding.platformName", value: "Platform", category: models.CategoryBranding, description: "Platform display name"},
	{key: "branding.colors.primary", value: "#E1306C", category: models.CategoryBranding, description: "Primary brand color"},

	// System
	{key: "system.maintenance.enabled", value: "false", category: models.CategorySystem, description: "Maintenance mode"},
	{key: "system.maintenance.message", value: "System under maintenance", category: models.CategorySystem, description: "Maintenance message"},
	{key: "system.backup.enabled", value: "true", category: models.CategorySystem, description: "Enable automatic backups"},
	{key: "system.backup.frequency", value: "daily", category: models.CategorySystem, description: "Backup frequency"},
	{key: "system.backup.retention", value: "30", category: models.CategorySystem, description: "Backup retention days"},
}
