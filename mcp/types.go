package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	// ProviderName is the server entry that must exist under mcpServers
	ProviderName = "genimage"
	// ToolName is the capability invoked on the provider
	ToolName = "generate_image"
	// PromptArgument is the single argument of ToolName
	PromptArgument = "prompt"
)

// ServerConfig represents the launch settings of the tool provider
type ServerConfig struct {
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env,omitempty"`
}

// State is a step of the session lifecycle
type State int

const (
	StateUnconfigured State = iota
	StateConfigLoaded
	StateConnected
	StateInvoking
	StateIdle
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnconfigured:
		return "unconfigured"
	case StateConfigLoaded:
		return "config_loaded"
	case StateConnected:
		return "connected"
	case StateInvoking:
		return "invoking"
	case StateIdle:
		return "idle"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Ready reports whether a session in this state accepts calls
func (s State) Ready() bool {
	return s == StateConnected || s == StateIdle
}

// ProviderInfo describes the server reported during the handshake
type ProviderInfo struct {
	Name            string
	Version         string
	ProtocolVersion string
}

func providerInfo(res *mcp.InitializeResult) ProviderInfo {
	if res == nil {
		return ProviderInfo{}
	}
	return ProviderInfo{
		Name:            res.ServerInfo.Name,
		Version:         res.ServerInfo.Version,
		ProtocolVersion: res.ProtocolVersion,
	}
}
