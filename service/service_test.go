package service

import (
	"platconf/hub"
	"platconf/models"
	"platconf/secrets"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	// A single connection keeps the in-memory database alive and stable
	// under concurrent use.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.ConfigEntry{}, &models.Tenant{}, &models.TenantPlatformConfig{}); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

var (
	codecOnce   sync.Once
	sharedCodec *secrets.Codec
	codecErr    error
)

// testCodec derives the scrypt key once for the whole package; derivation
// is deliberately slow.
func testCodec(t *testing.T) *secrets.Codec {
	t.Helper()
	codecOnce.Do(func() {
		sharedCodec, codecErr = secrets.NewCodec("test-passphrase")
	})
	if codecErr != nil {
		t.Fatalf("NewCodec: %v", codecErr)
	}
	return sharedCodec
}

func testSettingsService(t *testing.T) *SettingsService {
	t.Helper()
	return NewSettingsService(testDB(t), testCodec(t), hub.New())
}
