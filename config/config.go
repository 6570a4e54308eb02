package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultBaseDir  = "~/prompt-generator"
	settingsFile    = "settings.yaml"
	catalogFile     = "prompts.json"
	mcpConfigFile   = "mcp_config.json"
	imagesDir       = "images"
	auditFile       = "audit.log"
	formLogFile     = "promptgen.log"
	defaultJob      = "promptgen"
	defaultLogLevel = "info"
)

// Load reads the optional YAML settings file, then applies environment
// variables (including a .env file in the working directory) and defaults.
// An empty path means <base dir>/settings.yaml; a missing file is not an error.
func Load(settingsPath string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	if settingsPath == "" {
		settingsPath = DefaultSettingsPath()
	}

	var cfg Config
	data, err := os.ReadFile(expandHomePath(settingsPath))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse settings file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	cfg.setDefaults()
	return &cfg, nil
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	var cfg Config
	cfg.setDefaults()
	return &cfg
}

// DefaultSettingsPath returns the settings file location, honoring PG_BASE_DIR
func DefaultSettingsPath() string {
	base := os.Getenv("PG_BASE_DIR")
	if base == "" {
		base = defaultBaseDir
	}
	return filepath.Join(expandHomePath(base), settingsFile)
}

func (c *Config) setDefaults() {
	if c.BaseDir == "" {
		c.BaseDir = defaultBaseDir
	}
	c.BaseDir = expandHomePath(c.BaseDir)

	if c.MCPConfigPath == "" {
		c.MCPConfigPath = filepath.Join(c.BaseDir, mcpConfigFile)
	}
	if c.ImagesDir == "" {
		c.ImagesDir = filepath.Join(c.BaseDir, imagesDir)
	}
	if c.Audit.Path == "" {
		c.Audit.Path = filepath.Join(c.BaseDir, auditFile)
	}
	c.PromptPath = expandHomePath(c.PromptPath)
	c.MCPConfigPath = expandHomePath(c.MCPConfigPath)
	c.ImagesDir = expandHomePath(c.ImagesDir)
	c.Audit.Path = expandHomePath(c.Audit.Path)
	c.Log.Path = expandHomePath(c.Log.Path)

	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = 30 * time.Second
	}
	if c.CallTimeout == 0 {
		c.CallTimeout = 5 * time.Minute
	}
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
	if c.Metrics.Job == "" {
		c.Metrics.Job = defaultJob
	}
}

// CatalogPath returns the catalog document location: the override when it is
// set and exists, otherwise <base dir>/prompts.json.
func (c *Config) CatalogPath() string {
	if c.PromptPath != "" {
		if _, err := os.Stat(c.PromptPath); err == nil {
			return c.PromptPath
		}
	}
	return filepath.Join(c.BaseDir, catalogFile)
}

// FormLogPath returns where the interactive form writes its log
func (c *Config) FormLogPath() string {
	if c.Log.Path != "" {
		return c.Log.Path
	}
	return filepath.Join(c.BaseDir, formLogFile)
}

// EnsureBaseDir creates the base directory if needed
func (c *Config) EnsureBaseDir() error {
	if err := os.MkdirAll(c.BaseDir, 0755); err != nil {
		return fmt.Errorf("failed to create base directory: %w", err)
	}
	return nil
}

// expandHomePath expands ~ to the user's home directory
func expandHomePath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path // Return unchanged if we can't get home dir
	}

	if len(path) == 1 {
		return homeDir
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}
	return path
}
