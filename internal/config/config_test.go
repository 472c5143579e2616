package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no .env
	dir := t.TempDir()
	t.Setenv("DATA_DIR", dir)
	unset(t, "CSRF_KEY", "SESSION_KEY", "PORT", "STORE_DRIVER", "DB_PATH", "BLOB_DRIVER", "BLOB_ROOT", "CHAT_TIMEOUT", "TELEGRAM_CHAT_ID", "SUBMIT_RATE_WINDOW")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8585", cfg.Port)
	assert.Equal(t, "file", cfg.StoreDriver)
	assert.Equal(t, dir, cfg.StoreLocation())
	assert.Equal(t, filepath.Join(dir, "media"), cfg.BlobRoot)
	assert.Equal(t, 20*time.Second, cfg.ChatTimeout)
	assert.Equal(t, 30*time.Second, cfg.SubmitRateWindow)
	assert.Len(t, cfg.CSRFKey, 32)
	assert.Len(t, cfg.SessionKey, 32)
	assert.NotEqual(t, cfg.CSRFKey, cfg.SessionKey)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	key := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("k", 32)))
	t.Setenv("DATA_DIR", t.TempDir())
	t.Setenv("SESSION_KEY", key)
	t.Setenv("CSRF_KEY", key)
	t.Setenv("PORT", "not-a-port")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("DB_PATH", "/var/lib/iff/shop.db")
	t.Setenv("CHAT_TIMEOUT", "5")
	t.Setenv("SUBMIT_RATE_WINDOW", "1m")
	t.Setenv("TELEGRAM_CHAT_ID", "-100123")
	t.Setenv("METRICS_ENABLED", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8585", cfg.Port)
	assert.Equal(t, []byte(strings.Repeat("k", 32)), cfg.SessionKey)
	assert.Equal(t, "/var/lib/iff/shop.db", cfg.StoreLocation())
	assert.Equal(t, 5*time.Second, cfg.ChatTimeout)
	assert.Equal(t, time.Minute, cfg.SubmitRateWindow)
	assert.Equal(t, int64(-100123), cfg.TelegramChatID)
	assert.True(t, cfg.MetricsEnabled)
}

func TestLoadConfigRejectsBadDrivers(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATA_DIR", t.TempDir())

	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")
	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("STORE_DRIVER", "mongo")
	_, err = LoadConfig()
	assert.Error(t, err)

	t.Setenv("STORE_DRIVER", "file")
	t.Setenv("BLOB_DRIVER", "s3")
	t.Setenv("S3_BUCKET", "")
	_, err = LoadConfig()
	assert.Error(t, err)

	t.Setenv("BLOB_DRIVER", "fs")
	t.Setenv("TELEGRAM_CHAT_ID", "abc")
	_, err = LoadConfig()
	assert.Error(t, err)
}

// unset removes keys for the duration of the test.
func unset(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}
