package easyshop

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/easyshop/core/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"BOT_TOKEN", "ADMIN_IDS", "REDIS_URL", "DB_HOST", "YOOKASSA_SHOP_ID", "YOOKASSA_SECRET_KEY"} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_IDS", "1001, 1002")
	t.Setenv("DB_HOST", "db.local")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, coreconfig.AdminIDs{1001, 1002}, cfg.Telegram.AdminIDs)
	assert.Equal(t, coreconfig.DefaultRedisURL, cfg.Session.RedisURL)
	assert.Equal(t, "db.local", cfg.Database.Host)
	assert.True(t, cfg.Database.Enabled())
	assert.Len(t, cfg.Catalog, 3)
	assert.Same(t, &cfg.Config, cfg.CoreConfig())
}

func TestLoadConfigRequiresToken(t *testing.T) {
	clearEnv(t)
	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BOT_TOKEN")
}

func TestLoadConfigRejectsMalformedAdmins(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_IDS", "1001,admin")
	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfigCatalogFromYAML(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "from-env")
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
telegram:
  token: from-file
payment:
  currency: EUR
catalog:
  - id: 10
    title: Espresso
    price: 250
    active: true
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Telegram.Token)
	assert.Equal(t, "EUR", cfg.Payment.Currency)
	require.Len(t, cfg.Catalog, 1)
	assert.Equal(t, "Espresso", cfg.Catalog[0].Title)
}

func TestLoadConfigRejectsBadCatalog(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "123:abc")
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
catalog:
  - {id: 1, title: Tea, price: 100}
  - {id: 1, title: Coffee, price: 200}
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate id 1")
}
