package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigDocument is written when the configuration file is missing
const DefaultConfigDocument = `{"mcpServers":{}}`

// LoadConfiguration reads the provider settings from path.
//
// A missing file is replaced by DefaultConfigDocument and then validated like
// any other document, so it fails on the absent provider entry. Every missing
// or malformed key yields a *ConfigurationError naming that key.
func LoadConfiguration(path string) (ServerConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return ServerConfig{}, &ConfigurationError{Path: path, Err: fmt.Errorf("failed to create directory: %w", err)}
		}
		data = []byte(DefaultConfigDocument)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return ServerConfig{}, &ConfigurationError{Path: path, Err: fmt.Errorf("failed to write default configuration: %w", err)}
		}
	} else if err != nil {
		return ServerConfig{}, &ConfigurationError{Path: path, Err: fmt.Errorf("failed to read configuration: %w", err)}
	}

	return parseConfiguration(path, data)
}

func parseConfiguration(path string, data []byte) (ServerConfig, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		return ServerConfig{}, &ConfigurationError{Path: path, Err: fmt.Errorf("failed to parse configuration: %w", err)}
	}

	rawServers, ok := root["mcpServers"]
	if !ok {
		return ServerConfig{}, missingKey(path, "mcpServers")
	}
	var servers map[string]json.RawMessage
	if err := json.Unmarshal(rawServers, &servers); err != nil || servers == nil {
		return ServerConfig{}, &ConfigurationError{Path: path, Key: "mcpServers", Err: errors.New("must be an object")}
	}

	key := "mcpServers." + ProviderName
	rawProvider, ok := servers[ProviderName]
	if !ok {
		return ServerConfig{}, missingKey(path, key)
	}
	var provider map[string]json.RawMessage
	if err := json.Unmarshal(rawProvider, &provider); err != nil || provider == nil {
		return ServerConfig{}, &ConfigurationError{Path: path, Key: key, Err: errors.New("must be an object")}
	}

	var cfg ServerConfig

	rawCommand, ok := provider["command"]
	if !ok {
		return ServerConfig{}, missingKey(path, key+".command")
	}
	if err := json.Unmarshal(rawCommand, &cfg.Command); err != nil || isNull(rawCommand) {
		return ServerConfig{}, &ConfigurationError{Path: path, Key: key + ".command", Err: errors.New("must be a string")}
	}
	if cfg.Command == "" {
		return ServerConfig{}, &ConfigurationError{Path: path, Key: key + ".command", Err: errors.New("must not be empty")}
	}

	rawArgs, ok := provider["args"]
	if !ok {
		return ServerConfig{}, missingKey(path, key+".args")
	}
	if err := json.Unmarshal(rawArgs, &cfg.Args); err != nil || isNull(rawArgs) {
		return ServerConfig{}, &ConfigurationError{Path: path, Key: key + ".args", Err: errors.New("must be an array of strings")}
	}

	if rawEnv, ok := provider["env"]; ok {
		if err := json.Unmarshal(rawEnv, &cfg.Env); err != nil {
			return ServerConfig{}, &ConfigurationError{Path: path, Key: key + ".env", Err: errors.New("must be an object of strings")}
		}
	}

	return cfg, nil
}
