package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icepolcka/icecat/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "icecat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
sync: true
recheck: true
products:
  wrf:
    data: /archive/wrf
    store: /var/icecat/wrf.yaml
  dwd:
    data: /archive/dwd
    store: /var/icecat/dwd.yaml
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Sync)
	assert.True(t, cfg.Recheck)
	assert.Equal(t, path, cfg.ConfigFile)
	assert.ElementsMatch(t, []string{"wrf", "dwd"}, cfg.Names())

	p, err := cfg.Product("wrf")
	require.NoError(t, err)
	assert.Equal(t, "/archive/wrf", p.Data)
	assert.Equal(t, "/var/icecat/wrf.yaml", p.Store)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "products: {}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Sync)
	assert.False(t, cfg.Recheck)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)

	var cfg *errors.ConfigError
	assert.True(t, errors.As(err, &cfg))
}

func TestProductValidation(t *testing.T) {
	path := writeConfig(t, `
products:
  wrf:
    data: /archive/wrf
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	_, err = cfg.Product("wrf")
	require.Error(t, err, "store path missing")

	_, err = cfg.Product("crsim")
	require.Error(t, err, "product not configured")
}
