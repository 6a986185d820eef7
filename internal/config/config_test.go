package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(20_000_00), cfg.CreditCard.DefaultLimit)
	assert.Equal(t, 5, cfg.CreditCard.ExpYears)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, 3*time.Second, cfg.Health.CheckTimeout())
	assert.Equal(t, 2*time.Second, cfg.PhotoService.Timeout())
}

func TestLoadFileThenEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
app:
  name: cards
  port: "9000"
credit_card:
  default_limit: 1500000
  exp_years: 3
photo_service:
  url: http://photo.local
  timeout_seconds: 1.5
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("APP_PORT", "9100")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "cards", cfg.App.Name)
	assert.Equal(t, "9100", cfg.App.Port)
	assert.Equal(t, int64(1_500_000), cfg.CreditCard.DefaultLimit)
	assert.Equal(t, 3, cfg.CreditCard.ExpYears)
	assert.Equal(t, "http://photo.local", cfg.PhotoService.URL)
	assert.Equal(t, 1500*time.Millisecond, cfg.PhotoService.Timeout())
}

func TestLoadRejectsInvalidDefaultLimit(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("CREDIT_CARD_DEFAULT_LIMIT", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsNonPositiveRateLimit(t *testing.T) {
	for _, tc := range []struct{ key, value string }{
		{"RATE_LIMIT_LOGIN_ATTEMPTS", "0"},
		{"RATE_LIMIT_LOGIN_ATTEMPTS", "-3"},
		{"RATE_LIMIT_LOGIN_WINDOW_SECONDS", "0"},
	} {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			t.Setenv("CONFIG_PATH", "")
			t.Setenv(tc.key, tc.value)

			_, err := Load()
			assert.ErrorContains(t, err, "rate limit")
		})
	}
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("CREDIT_CARD_DEFAULT_LIMIT", "lots")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()
	assert.Error(t, err)
}
