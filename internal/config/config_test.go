package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withConfigFile(t *testing.T, path string) {
	t.Helper()
	prev := ConfigFile
	ConfigFile = path
	t.Cleanup(func() { ConfigFile = prev })
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  driver: mysql
  dsn: "shop:secret@tcp(127.0.0.1:3306)/ecommerce?parseTime=true"
  max_open_conns: 8
server:
  addr: ":9090"
export:
  dir: /tmp/out
log:
  level: debug
  format: json
`), 0o644))
	withConfigFile(t, path)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DriverMySQL, cfg.Store.Driver)
	assert.Equal(t, 8, cfg.Store.MaxOpenConns)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "/tmp/out", cfg.Export.Dir)
	assert.Equal(t, "csv_ecommerce_", cfg.Export.Prefix)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "data/ecommerce.sqlite", cfg.Store.DSN)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SHOPSTATS_STORE_DSN", "/var/lib/shop.sqlite")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/shop.sqlite", cfg.Store.DSN)
}

func TestLoadConfig_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store: [unterminated"), 0o644))
	withConfigFile(t, path)

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Config{Store: StoreConfig{Driver: "oracle", DSN: "x"}}
	assert.ErrorContains(t, cfg.Validate(), "unsupported store driver")

	cfg.Store.Driver = DriverPostgres
	cfg.Store.DSN = ""
	assert.ErrorContains(t, cfg.Validate(), "dsn")

	cfg.Store.DSN = "postgres://localhost/shop"
	assert.NoError(t, cfg.Validate())
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir for go < 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}
