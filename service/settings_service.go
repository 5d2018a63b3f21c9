package service

import (
	"errors"
	"fmt"
	"platconf/hub"
	"platconf/models"
	"platconf/secrets"
	"strings"

	"gorm.io/gorm"
)

// RedactedMarker replaces encrypted values in broadcast payloads.
const RedactedMarker = "[ENCRYPTED]"

// Maintenance-mode toggle and its companion message key.
const (
	MaintenanceEnabledKey = "system.maintenance.enabled"
	MaintenanceMessageKey = "system.maintenance.message"
)

const brandingPrefix = "branding."

// categoryRules maps key prefixes to categories, checked in order. Keys
// matching no rule fall back to SYSTEM. Kept separate from the category
// constants so the inference table stays auditable.
var categoryRules = []struct {
	prefix   string
	category string
}{
	{"email.", models.CategoryEmail},
	{"storage.", models.CategoryStorage},
	{"security.", models.CategorySecurity},
	{"api.", models.CategoryAPI},
	{brandingPrefix, models.CategoryBranding},
}

// CategoryForKey infers the category of a dotted-namespace key.
func CategoryForKey(key string) string {
	for _, rule := range categoryRules {
		if strings.HasPrefix(key, rule.prefix) {
			return rule.category
		}
	}
	return models.CategorySystem
}

// SettingsService is the source of truth for flat namespaced configuration.
// Values flagged encrypted pass through the codec transparently; every write
// is announced on the events hub.
type SettingsService struct {
	db     *gorm.DB
	codec  *secrets.Codec
	events *hub.Hub
}

// NewSettingsService constructs a settings service
func NewSettingsService(db *gorm.DB, codec *secrets.Codec, events *hub.Hub) *SettingsService {
	return &SettingsService{db: db, codec: codec, events: events}
}

// List returns every setting with encrypted values opportunistically
// decrypted. A value that fails to decrypt is returned as stored.
func (s *SettingsService) List() ([]models.SettingRead, error) {
	var entries []models.ConfigEntry
	if err := s.db.Order("key").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	return s.readAll(entries), nil
}

// ListByCategory returns the settings of one category, decrypted as in List.
func (s *SettingsService) ListByCategory(category string) ([]models.SettingRead, error) {
	category = strings.ToUpper(strings.TrimSpace(category))
	var entries []models.ConfigEntry
	if err := s.db.Order("key").Find(&entries, "category = ?", category).Error; err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	return s.readAll(entries), nil
}

// Get returns a single setting; ok is false when the key does not exist.
// A missing key is never an error.
func (s *SettingsService) Get(key string) (models.SettingRead, bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return models.SettingRead{}, false, ErrEmptySettingKey
	}

	var entry models.ConfigEntry
	if err := s.db.First(&entry, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.SettingRead{}, false, nil
		}
		return models.SettingRead{}, false, err
	}
	return s.read(entry), true, nil
}

// Upsert writes a setting, encrypting the value when flagged. A new key gets
// its category inferred from the prefix rules; an existing row is updated in
// place, keeping its creation timestamp and category. The write is announced
// to observers with the value redacted when encrypted, and triggers the
// branding and maintenance-mode side channels where applicable.
func (s *SettingsService) Upsert(key, value string, isEncrypted bool) (*models.ConfigEntry, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrEmptySettingKey
	}

	stored := value
	if isEncrypted {
		var err error
		stored, err = s.codec.Encrypt(value)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt setting %s: %w", key, err)
		}
	}

	var entry models.ConfigEntry
	err := s.db.First(&entry, "key = ?", key).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		entry = models.ConfigEntry{
			Key:         key,
			Value:       stored,
			IsEncrypted: isEncrypted,
			Category:    CategoryForKey(key),
		}
		if err := s.db.Create(&entry).Error; err != nil {
			return nil, fmt.Errorf("failed to create setting %s: %w", key, err)
		}
	case err != nil:
		return nil, err
	default:
		entry.Value = stored
		entry.IsEncrypted = isEncrypted
		if err := s.db.Save(&entry).Error; err != nil {
			return nil, fmt.Errorf("failed to update setting %s: %w", key, err)
		}
	}

	s.events.EmitSettingChanged(key, redact(value, isEncrypted), entry.Category)

	if entry.Category == models.CategoryBranding || strings.HasPrefix(key, brandingPrefix) {
		s.broadcastBranding()
	}
	if key == MaintenanceEnabledKey {
		s.broadcastMaintenanceMode(value)
	}

	return &entry, nil
}

// BulkUpsert applies the writes sequentially. It is not transactional: a
// mid-sequence failure leaves the earlier writes committed and suppresses
// the bulk event. On success one settings-changed event lists every key in
// input order.
func (s *SettingsService) BulkUpsert(items []models.BulkSettingItem) ([]hub.SettingChange, error) {
	results := make([]hub.SettingChange, 0, len(items))
	for _, item := range items {
		entry, err := s.Upsert(item.Key, item.Value, item.IsEncrypted)
		if err != nil {
			return results, fmt.Errorf("bulk update stopped at %s: %w", item.Key, err)
		}
		results = append(results, hub.SettingChange{
			Key:      item.Key,
			Value:    redact(item.Value, item.IsEncrypted),
			Category: entry.Category,
		})
	}

	s.events.EmitBulkSettingsChanged(results)
	return results, nil
}

// Delete removes a setting and reports whether a row was affected.
// Deletions are deliberately not broadcast; observers pick removals up on
// their next full fetch.
func (s *SettingsService) Delete(key string) (bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return false, ErrEmptySettingKey
	}

	res := s.db.Where("key = ?", key).Delete(&models.ConfigEntry{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete setting %s: %w", key, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// InitializeDefaults idempotently seeds the default settings catalog,
// inserting only keys that do not already exist. Sensitive defaults are
// encrypted before storage. Safe to call on every startup; seeding emits no
// per-key broadcasts.
func (s *SettingsService) InitializeDefaults() error {
	for _, def := range defaultSettings {
		var existing models.ConfigEntry
		err := s.db.First(&existing, "key = ?", def.key).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		value := def.value
		if def.encrypted {
			value, err = s.codec.Encrypt(def.value)
			if err != nil {
				return fmt.Errorf("failed to encrypt default %s: %w", def.key, err)
			}
		}

		entry := models.ConfigEntry{
			Key:         def.key,
			Value:       value,
			Description: def.description,
			IsEncrypted: def.encrypted,
			Category:    def.category,
		}
		if err := s.db.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to seed default %s: %w", def.key, err)
		}
	}
	return nil
}

func (s *SettingsService) read(entry models.ConfigEntry) models.SettingRead {
	value := entry.Value
	if entry.IsEncrypted {
		value = s.codec.Decrypt(entry.Value)
	}
	return models.SettingRead{
		Key:         entry.Key,
		Value:       value,
		Description: entry.Description,
		Category:    entry.Category,
		IsEncrypted: entry.IsEncrypted,
	}
}

func (s *SettingsService) readAll(entries []models.ConfigEntry) []models.SettingRead {
	out := make([]models.SettingRead, len(entries))
	for i, entry := range entries {
		out[i] = s.read(entry)
	}
	return out
}

// broadcastBranding assembles every BRANDING entry into one nested mapping
// (dot segments after the prefix become nested field names, values
// decrypted) and pushes it as a branding-changed event.
func (s *SettingsService) broadcastBranding() {
	var entries []models.ConfigEntry
	if err := s.db.Find(&entries, "category = ?", models.CategoryBranding).Error; err != nil {
		return
	}

	branding := make(map[string]interface{})
	for _, entry := range entries {
		value := entry.Value
		if entry.IsEncrypted {
			value = s.codec.Decrypt(entry.Value)
		}
		nestKey(branding, strings.TrimPrefix(entry.Key, brandingPrefix), value)
	}

	s.events.EmitBrandingChanged(branding)
}

// broadcastMaintenanceMode reads the companion message key and emits the
// maintenance-mode event with the new boolean.
func (s *SettingsService) broadcastMaintenanceMode(rawValue string) {
	enabled := rawValue == "true"

	message := ""
	var msg models.ConfigEntry
	if err := s.db.First(&msg, "key = ?", MaintenanceMessageKey).Error; err == nil {
		message = msg.Value
	}

	s.events.EmitMaintenanceMode(enabled, message)
}

// nestKey inserts value at the dotted path, creating intermediate maps.
// A segment that already holds a leaf is replaced by a map when a deeper
// key needs it.
func nestKey(root map[string]interface{}, path, value string) {
	segments := strings.Split(path, ".")
	node := root
	for i, seg := range segments {
		if i == len(segments)-1 {
			node[seg] = value
			return
		}
		child, ok := node[seg].(map[string]interface{})
		if !ok {
			child = make(map[string]interface{})
			node[seg] = child
		}
		node = child
	}
}

func redact(value string, isEncrypted bool) string {
	if isEncrypted {
		return RedactedMarker
	}
	return value
}
