package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	DataDir      string
	CSRFKey      []byte
	SessionKey   []byte
	CookieDomain string
	CookieSecure bool

	// Record store
	StoreDriver string // file|sqlite|postgres
	DBPath      string
	DatabaseURL string

	// Blob store
	BlobDriver  string // fs|s3
	BlobRoot    string
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3PathStyle bool

	// Chat
	GeminiAPIKey   string
	GeminiModel    string
	ChatTimeout    time.Duration
	TelegramToken  string
	TelegramChatID int64

	UploadMaxBytes   int64
	ImageMaxWidth    int
	SubmitRateWindow time.Duration
	MetricsEnabled   bool
}

// LoadConfig reads the configuration from the environment. A .env file in the
// working directory is loaded first when present; real env vars win.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Failed to read .env file", "error", err)
	}

	dataDir := getEnv("DATA_DIR", filepath.Join(xdg.DataHome, "if-fashion"))
	cfg := &Config{
		Port:         getEnv("PORT", "8585"),
		DataDir:      dataDir,
		CookieDomain: getEnv("COOKIE_DOMAIN", ""),
		CookieSecure: getEnv("COOKIE_SECURE", "false") == "true",

		StoreDriver: getEnv("STORE_DRIVER", "file"),
		DBPath:      getEnv("DB_PATH", filepath.Join(dataDir, "if-fashion.db")),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		BlobDriver:  getEnv("BLOB_DRIVER", "fs"),
		BlobRoot:    getEnv("BLOB_ROOT", filepath.Join(dataDir, "media")),
		S3Bucket:    getEnv("S3_BUCKET", ""),
		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		S3PathStyle: getEnv("S3_PATH_STYLE", "false") == "true",

		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash-lite"),
		ChatTimeout:   getDuration("CHAT_TIMEOUT", 20*time.Second),
		TelegramToken: getEnv("TELEGRAM_BOT_TOKEN", ""),

		UploadMaxBytes:   int64(getInt("UPLOAD_MAX_BYTES", 10<<20)),
		ImageMaxWidth:    getInt("IMAGE_MAX_WIDTH", 1600),
		SubmitRateWindow: getDuration("SUBMIT_RATE_WINDOW", 30*time.Second),
		MetricsEnabled:   getEnv("METRICS_ENABLED", "false") == "true",
	}

	if chatID := getEnv("TELEGRAM_CHAT_ID", ""); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", chatID, err)
		}
		cfg.TelegramChatID = id
	}

	cfg.CSRFKey = loadKey("CSRF_KEY", "PLEASE SET CSRF_KEY IN PRODUCTION!")
	cfg.SessionKey = loadKey("SESSION_KEY", "Sessions will be invalid on restart. PLEASE SET SESSION_KEY IN PRODUCTION!")

	// Make sure port is valid
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		slog.Error("Invalid PORT environment variable. Falling back to default.", "PORT", os.Getenv("PORT"))
		cfg.Port = "8585"
	}

	switch cfg.StoreDriver {
	case "file", "sqlite":
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	if cfg.BlobDriver == "s3" && cfg.S3Bucket == "" {
		return nil, errors.New("S3_BUCKET is required when BLOB_DRIVER=s3")
	}

	return cfg, nil
}

// StoreLocation is the directory, database path or DSN for StoreDriver.
func (c *Config) StoreLocation() string {
	switch c.StoreDriver {
	case "sqlite":
		return c.DBPath
	case "postgres":
		return c.DatabaseURL
	}
	return c.DataDir
}

// loadKey decodes a base64 key of at least 32 bytes from the environment,
// falling back to a random key for development.
func loadKey(name, advice string) []byte {
	value := os.Getenv(name)
	if value == "" {
		slog.Warn(name + " environment variable not set. Generating a random key for development. " + advice)
		return generateRandomBytes(32)
	}
	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil || len(decoded) < 32 {
		slog.Warn(name + " is invalid or too short (min 32 bytes recommended). Generating a random key for development. " + advice)
		return generateRandomBytes(32)
	}
	return decoded
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		slog.Error("Invalid integer environment variable. Falling back to default.", "key", key, "value", value)
		return defaultValue
	}
	return n
}

// getDuration accepts Go durations ("20s") or a bare number of seconds.
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	if secs, err := strconv.Atoi(value); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		slog.Error("Invalid duration environment variable. Falling back to default.", "key", key, "value", value)
		return defaultValue
	}
	return d
}

// generateRandomBytes generates a random byte slice of specified length
// Uses crypto/rand for secure random numbers.
func generateRandomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		slog.Error("Failed to read random bytes", "error", err)
		// Only here to avoid a nil key; never fit for production.
		fallbackKey := "fallback-insecure-key-" + strconv.FormatInt(time.Now().UnixNano(), 10)
		if len(fallbackKey) < n {
			paddedKey := make([]byte, n)
			copy(paddedKey, fallbackKey)
			return paddedKey
		}
		return []byte(fallbackKey)[:n]
	}
	return b
}
