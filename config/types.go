package config

import (
	"time"
)

// Config represents the application configuration
type Config struct {
	BaseDir        string        `yaml:"base_dir" env:"PG_BASE_DIR"`
	PromptPath     string        `yaml:"prompt_path" env:"PG_PROMPT_PATH"` // Catalog override, used only if the file exists
	MCPConfigPath  string        `yaml:"mcp_config_path" env:"PG_MCP_CONFIG"`
	ImagesDir      string        `yaml:"images_dir" env:"PG_IMAGES_DIR"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"PG_CONNECT_TIMEOUT"`
	CallTimeout    time.Duration `yaml:"call_timeout" env:"PG_CALL_TIMEOUT"`
	Log            LogConfig     `yaml:"log"`
	Audit          AuditConfig   `yaml:"audit"`
	Metrics        MetricsConfig `yaml:"metrics"`
}

// LogConfig defines logger settings
type LogConfig struct {
	Level    string `yaml:"level" env:"PG_LOG_LEVEL"`       // debug, info, warn, error
	Encoding string `yaml:"encoding" env:"PG_LOG_ENCODING"` // json or console
	Path     string `yaml:"path" env:"PG_LOG_PATH"`         // empty = stderr for commands, log file for the form
}

// AuditConfig defines the generation audit log
type AuditConfig struct {
	Disabled bool   `yaml:"disabled" env:"PG_AUDIT_DISABLED"`
	Path     string `yaml:"path" env:"PG_AUDIT_PATH"`
}

// MetricsConfig defines where run metrics are pushed
type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgateway_url" env:"PG_PUSHGATEWAY_URL"`
	Job            string `yaml:"job" env:"PG_METRICS_JOB"`
}
