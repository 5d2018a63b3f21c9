package config

import (
	"flag"
	"fmt"
	"os"
	"platconf/version"
	"strconv"
)

// Config holds platconf runtime configuration.
type Config struct {
	LogLevel    string
	LogFilePath string
	Port        int
	DatabaseURL string

	SQLitePragmasEnabled bool
	SQLiteBusyTimeoutMS  int
	SQLiteJournalMode    string
	SQLiteSynchronous    string
	SQLiteForeignKeys    bool
	SQLiteMaxOpenConns   int
	SQLiteMaxIdleConns   int
	SQLiteConnMaxIdleSec int
	SQLiteConnMaxLifeSec int

	// EncryptionKey is the process-wide secret protecting sensitive
	// configuration values at rest.
	EncryptionKey string

	// UploadDir is where the local object store writes branding assets.
	UploadDir string

	SeedDefaults bool

	CLIMode   bool
	CLIServer string // Server URL for CLI mode
}

// Settings is the global configuration instance populated from environment variables and flags.
var Settings *Config

func init() {
	Settings = &Config{
		LogLevel:    getEnv("LOG_LEVEL", "INFO"),
		LogFilePath: getEnv("LOG_FILE", "./platconf.log"),
		Port:        getEnvInt("PORT", 7790),
		DatabaseURL: getEnv("DATABASE_URL", "platconf.db"),

		SQLitePragmasEnabled: getEnvBool("SQLITE_PRAGMAS_ENABLED", true),
		SQLiteBusyTimeoutMS:  getEnvInt("SQLITE_BUSY_TIMEOUT_MS", 5000),
		SQLiteJournalMode:    getEnv("SQLITE_JOURNAL_MODE", "WAL"),
		SQLiteSynchronous:    getEnv("SQLITE_SYNCHRONOUS", "NORMAL"),
		SQLiteForeignKeys:    getEnvBool("SQLITE_FOREIGN_KEYS", true),
		SQLiteMaxOpenConns:   getEnvInt("SQLITE_MAX_OPEN_CONNS", 1),
		SQLiteMaxIdleConns:   getEnvInt("SQLITE_MAX_IDLE_CONNS", 1),
		SQLiteConnMaxIdleSec: getEnvInt("SQLITE_CONN_MAX_IDLE_SECONDS", 300),
		SQLiteConnMaxLifeSec: getEnvInt("SQLITE_CONN_MAX_LIFETIME_SECONDS", 0),

		EncryptionKey: getEnv("CONFIG_ENCRYPTION_KEY", "default-encryption-key-change-in-production"),
		UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
		SeedDefaults:  getEnvBool("SEED_DEFAULTS", true),
		CLIMode:       getEnvBool("CLI_MODE", false),
	}
}

// ParseFlags parses command-line flags, applies any overrides to the package-level Settings, and updates configuration accordingly.
// It also provides a custom usage message and handles --help (prints usage and exits) and --version (prints build info and exits).
func ParseFlags() {
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "platconf - multi-tenant platform configuration service\n\n")
		fmt.Fprintf(out, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintln(out, "Options:")
		flag.PrintDefaults()
		fmt.Fprintln(out, "\nEnvironment variables:")
		fmt.Fprintln(out, "  LOG_LEVEL                         Log level (DEBUG, INFO, WARN, ERROR)")
		fmt.Fprintln(out, "  LOG_FILE                          Log file path (default ./platconf.log)")
		fmt.Fprintln(out, "  PORT                              HTTP server port (default 7790)")
		fmt.Fprintln(out, "  DATABASE_URL                      SQLite database path (default platconf.db)")
		fmt.Fprintln(out, "  SQLITE_PRAGMAS_ENABLED            Enable SQLite PRAGMAs (true/false, default true)")
		fmt.Fprintln(out, "  SQLITE_BUSY_TIMEOUT_MS            SQLite busy_timeout in milliseconds (default 5000)")
		fmt.Fprintln(out, "  SQLITE_JOURNAL_MODE               SQLite journal_mode (default WAL)")
		fmt.Fprintln(out, "  SQLITE_SYNCHRONOUS                SQLite synchronous (default NORMAL)")
		fmt.Fprintln(out, "  SQLITE_FOREIGN_KEYS               Enable SQLite foreign_keys (true/false, default true)")
		fmt.Fprintln(out, "  SQLITE_MAX_OPEN_CONNS             SQLite MaxOpenConns (default 1)")
		fmt.Fprintln(out, "  SQLITE_MAX_IDLE_CONNS             SQLite MaxIdleConns (default 1)")
		fmt.Fprintln(out, "  SQLITE_CONN_MAX_IDLE_SECONDS      SQLite ConnMaxIdleTime in seconds (default 300)")
		fmt.Fprintln(out, "  SQLITE_CONN_MAX_LIFETIME_SECONDS  SQLite ConnMaxLifetime in seconds (default 0)")
		fmt.Fprintln(out, "  CONFIG_ENCRYPTION_KEY             Secret used to encrypt sensitive settings at rest")
		fmt.Fprintln(out, "  UPLOAD_DIR                        Directory for uploaded branding assets (default ./uploads)")
		fmt.Fprintln(out, "  SEED_DEFAULTS                     Seed the default settings catalog on startup (default true)")
	}

	port := flag.Int("port", Settings.Port, "HTTP server port (overrides PORT)")
	db := flag.String("db", Settings.DatabaseURL, "SQLite database path (overrides DATABASE_URL)")
	logLevel := flag.String("log-level", Settings.LogLevel, "Log level: DEBUG, INFO, WARN, ERROR (overrides LOG_LEVEL)")
	logFile := flag.String("log-file", Settings.LogFilePath, "Log file path (overrides LOG_FILE)")
	uploadDir := flag.String("upload-dir", Settings.UploadDir, "Directory for uploaded branding assets (overrides UPLOAD_DIR)")
	seedDefaults := flag.Bool("seed-defaults", Settings.SeedDefaults, "Seed the default settings catalog on startup (overrides SEED_DEFAULTS)")
	sqlitePragmasEnabled := flag.Bool("sqlite-pragmas", Settings.SQLitePragmasEnabled, "Enable SQLite PRAGMAs (overrides SQLITE_PRAGMAS_ENABLED)")
	sqliteBusyTimeoutMS := flag.Int("sqlite-busy-timeout-ms", Settings.SQLiteBusyTimeoutMS, "SQLite busy_timeout in milliseconds (overrides SQLITE_BUSY_TIMEOUT_MS)")
	sqliteJournalMode := flag.String("sqlite-journal-mode", Settings.SQLiteJournalMode, "SQLite journal_mode (overrides SQLITE_JOURNAL_MODE)")
	sqliteSynchronous := flag.String("sqlite-synchronous", Settings.SQLiteSynchronous, "SQLite synchronous (overrides SQLITE_SYNCHRONOUS)")
	sqliteForeignKeys := flag.Bool("sqlite-foreign-keys", Settings.SQLiteForeignKeys, "Enable SQLite foreign_keys PRAGMA (overrides SQLITE_FOREIGN_KEYS)")
	sqliteMaxOpenConns := flag.Int("sqlite-max-open-conns", Settings.SQLiteMaxOpenConns, "SQLite MaxOpenConns (overrides SQLITE_MAX_OPEN_CONNS)")
	sqliteMaxIdleConns := flag.Int("sqlite-max-idle-conns", Settings.SQLiteMaxIdleConns, "SQLite MaxIdleConns (overrides SQLITE_MAX_IDLE_CONNS)")
	sqliteConnMaxIdleSec := flag.Int("sqlite-conn-max-idle-seconds", Settings.SQLiteConnMaxIdleSec, "SQLite ConnMaxIdleTime in seconds (overrides SQLITE_CONN_MAX_IDLE_SECONDS)")
	sqliteConnMaxLifeSec := flag.Int("sqlite-conn-max-lifetime-seconds", Settings.SQLiteConnMaxLifeSec, "SQLite ConnMaxLifetime in seconds (overrides SQLITE_CONN_MAX_LIFETIME_SECONDS)")
	cliMode := flag.Bool("cli", Settings.CLIMode, "Run in CLI mode (HTTP client only, no database)")
	cliServer := flag.String("server", "http://localhost:7790", "Server URL for CLI mode")

	showHelp := flag.Bool("help", false, "Show help and exit")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Println(version.GetBuildInfo())
		os.Exit(0)
	}

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	Settings.Port = *port
	Settings.DatabaseURL = *db
	Settings.LogLevel = *logLevel
	Settings.LogFilePath = *logFile
	Settings.UploadDir = *uploadDir
	Settings.SeedDefaults = *seedDefaults
	Settings.SQLitePragmasEnabled = *sqlitePragmasEnabled
	Settings.SQLiteBusyTimeoutMS = *sqliteBusyTimeoutMS
	Settings.SQLiteJournalMode = *sqliteJournalMode
	Settings.SQLiteSynchronous = *sqliteSynchronous
	Settings.SQLiteForeignKeys = *sqliteForeignKeys
	Settings.SQLiteMaxOpenConns = *sqliteMaxOpenConns
	Settings.SQLiteMaxIdleConns = *sqliteMaxIdleConns
	Settings.SQLiteConnMaxIdleSec = *sqliteConnMaxIdleSec
	Settings.SQLiteConnMaxLifeSec = *sqliteConnMaxLifeSec
	Settings.CLIMode = *cliMode
	Settings.CLIServer = *cliServer
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
