package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, AppEnvDevelopment, cfg.App.Env)
	assert.False(t, cfg.App.IsProd())
	assert.Equal(t, "5000", cfg.App.Port)
	assert.Equal(t, []string{"*"}, cfg.App.CORSOrigins)
	assert.Equal(t, StoreDriverMongo, cfg.Store.Driver)
	assert.Equal(t, "mongodb://localhost:27017/wedding-invitation", cfg.Store.MongoURI)
	assert.Equal(t, 10*time.Second, cfg.Store.MongoTimeout)
	assert.False(t, cfg.Notify.Enabled())
	assert.Equal(t, "62", cfg.Notify.CountryCode)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "8081")
	t.Setenv("STORE_DRIVER", "FILE")
	t.Setenv("STORE_FILE", "/tmp/wedding.json")
	t.Setenv("NOTIFY_DRIVER", "whatsapp")
	t.Setenv("NOTIFY_TIMEOUT", "5s")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("BRIDE_NAME", "Sari")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.App.IsProd())
	assert.Equal(t, "8081", cfg.App.Port)
	assert.Equal(t, StoreDriverFile, cfg.Store.Driver)
	assert.Equal(t, "/tmp/wedding.json", cfg.Store.File)
	assert.True(t, cfg.Notify.Enabled())
	assert.Equal(t, NotifyDriverWhatsApp, cfg.Notify.Driver)
	assert.Equal(t, 5*time.Second, cfg.Notify.Timeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.App.CORSOrigins)
	assert.Equal(t, "Sari", cfg.Wedding.BrideName)
}

func TestLoad_RejectsUnknownDrivers(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("STORE_DRIVER", "file")
	t.Setenv("NOTIFY_DRIVER", "twilio")
	_, err = Load()
	require.Error(t, err)
}

func TestLoad_RejectsBadDuration(t *testing.T) {
	t.Setenv("NOTIFY_TIMEOUT", "soon")
	_, err := Load()
	require.Error(t, err)
}
