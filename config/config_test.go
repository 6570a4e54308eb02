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
	base := t.TempDir()
	t.Setenv("PG_BASE_DIR", base)
	t.Setenv("PG_PROMPT_PATH", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, base, cfg.BaseDir)
	assert.Equal(t, filepath.Join(base, "mcp_config.json"), cfg.MCPConfigPath)
	assert.Equal(t, filepath.Join(base, "images"), cfg.ImagesDir)
	assert.Equal(t, filepath.Join(base, "audit.log"), cfg.Audit.Path)
	assert.Equal(t, filepath.Join(base, "prompts.json"), cfg.CatalogPath())
	assert.Equal(t, filepath.Join(base, "promptgen.log"), cfg.FormLogPath())
	assert.Equal(t, 30*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, 5*time.Minute, cfg.CallTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "promptgen", cfg.Metrics.Job)
	assert.False(t, cfg.Audit.Disabled)
}

func TestLoadSettingsFileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	settings := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(settings, []byte(`
base_dir: `+dir+`
images_dir: `+filepath.Join(dir, "out")+`
call_timeout: 90s
log:
  level: debug
  encoding: json
audit:
  disabled: true
metrics:
  pushgateway_url: http://localhost:9091
`), 0644))

	t.Setenv("PG_LOG_LEVEL", "warn")

	cfg, err := Load(settings)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.BaseDir)
	assert.Equal(t, filepath.Join(dir, "out"), cfg.ImagesDir)
	assert.Equal(t, 90*time.Second, cfg.CallTimeout)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Encoding)
	assert.True(t, cfg.Audit.Disabled)
	assert.Equal(t, "http://localhost:9091", cfg.Metrics.PushgatewayURL)
}

func TestLoadInvalidSettingsFile(t *testing.T) {
	settings := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(settings, []byte("log: [unclosed"), 0644))

	_, err := Load(settings)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse settings file")
}

func TestCatalogPathOverride(t *testing.T) {
	base := t.TempDir()
	override := filepath.Join(t.TempDir(), "custom.json")

	cfg := &Config{BaseDir: base, PromptPath: override}
	cfg.setDefaults()

	// Override is ignored until the file exists
	assert.Equal(t, filepath.Join(base, "prompts.json"), cfg.CatalogPath())

	require.NoError(t, os.WriteFile(override, []byte("{}"), 0644))
	assert.Equal(t, override, cfg.CatalogPath())
}

func TestExpandHomePath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, home, expandHomePath("~"))
	assert.Equal(t, filepath.Join(home, "prompt-generator"), expandHomePath("~/prompt-generator"))
	assert.Equal(t, "/abs/path", expandHomePath("/abs/path"))
	assert.Equal(t, "~user/x", expandHomePath("~user/x"))
	assert.Equal(t, "", expandHomePath(""))
}

func TestEnsureBaseDir(t *testing.T) {
	cfg := &Config{BaseDir: filepath.Join(t.TempDir(), "a", "b")}
	require.NoError(t, cfg.EnsureBaseDir())

	info, err := os.Stat(cfg.BaseDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
