package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const (
	DefaultConnectTimeout = 30 * time.Second
	DefaultCallTimeout    = 5 * time.Minute
)

// ErrClosed is reported by a session after Close
var ErrClosed = errors.New("session closed")

// ToolCaller is the part of an MCP client the session needs.
// *client.Client from mcp-go satisfies it.
type ToolCaller interface {
	Initialize(ctx context.Context, request mcp.InitializeRequest) (*mcp.InitializeResult, error)
	CallTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
	Close() error
}

// Launcher starts the provider described by cfg and returns a client whose
// transport is running but not yet initialized.
type Launcher func(ctx context.Context, cfg ServerConfig) (ToolCaller, error)

// StdioLauncher spawns cfg.Command as a subprocess speaking MCP over stdio
func StdioLauncher(_ context.Context, cfg ServerConfig) (ToolCaller, error) {
	envVars := make([]string, 0, len(cfg.Env))
	for key, value := range cfg.Env {
		envVars = append(envVars, fmt.Sprintf("%s=%s", key, os.ExpandEnv(value)))
	}

	c, err := client.NewStdioMCPClient(cfg.Command, envVars, cfg.Args...)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Session owns the single connection to the tool provider. The zero value is
// not usable; create one with NewSession.
type Session struct {
	mu       sync.Mutex
	state    State
	config   ServerConfig
	lastErr  error
	client   ToolCaller
	provider ProviderInfo

	launch         Launcher
	calls          *semaphore.Weighted
	connectTimeout time.Duration
	callTimeout    time.Duration
	clientName     string
	clientVersion  string
	logger         *zap.Logger
}

// Option configures a Session
type Option func(*Session)

// WithLauncher replaces the stdio launcher
func WithLauncher(l Launcher) Option {
	return func(s *Session) { s.launch = l }
}

// WithLogger sets the session logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithConnectTimeout bounds launch plus handshake. Zero disables the bound.
func WithConnectTimeout(d time.Duration) Option {
	return func(s *Session) { s.connectTimeout = d }
}

// WithCallTimeout bounds a single tool call. Zero disables the bound.
func WithCallTimeout(d time.Duration) Option {
	return func(s *Session) { s.callTimeout = d }
}

// WithClientInfo sets the implementation name and version sent in the handshake
func WithClientInfo(name, version string) Option {
	return func(s *Session) {
		s.clientName = name
		s.clientVersion = version
	}
}

// NewSession creates an unconfigured session
func NewSession(opts ...Option) *Session {
	s := &Session{
		state:          StateUnconfigured,
		launch:         StdioLauncher,
		calls:          semaphore.NewWeighted(1),
		connectTimeout: DefaultConnectTimeout,
		callTimeout:    DefaultCallTimeout,
		clientName:     "promptgen",
		clientVersion:  "1.0.0",
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadConfiguration reads the provider settings. On error the session is
// failed and can never connect.
func (s *Session) LoadConfiguration(path string) error {
	cfg, err := LoadConfiguration(path)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateUnconfigured {
		return fmt.Errorf("configuration already loaded (state %s)", s.state)
	}
	if err != nil {
		s.fail(err)
		s.logger.Error("Tool provider configuration rejected", zap.String("path", path), zap.Error(err))
		return err
	}

	s.config = cfg
	s.state = StateConfigLoaded
	s.logger.Debug("Tool provider configured",
		zap.String("command", cfg.Command),
		zap.Strings("args", cfg.Args),
	)
	return nil
}

// configure loads provider settings directly, bypassing the document
func (s *Session) configure(cfg ServerConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateUnconfigured {
		return fmt.Errorf("configuration already loaded (state %s)", s.state)
	}
	if cfg.Command == "" {
		err := &ConfigurationError{Key: "mcpServers." + ProviderName + ".command", Err: errMissingKey}
		s.fail(err)
		return err
	}
	s.config = cfg
	s.state = StateConfigLoaded
	return nil
}

// Connect launches the provider and performs the initialize handshake. It is
// a no-op on a connected session. Failures are terminal for the session.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateConnected, StateIdle, StateInvoking:
		return nil
	case StateFailed:
		return s.lastErr
	case StateUnconfigured:
		return ErrNotConfigured
	}

	if s.connectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.connectTimeout)
		defer cancel()
	}

	log := s.logger.With(zap.String("command", s.config.Command))
	log.Info("Launching tool provider", zap.Strings("args", s.config.Args))

	c, err := s.launch(ctx, s.config)
	if err != nil {
		s.fail(&ConnectionError{Command: s.config.Command, Err: err})
		log.Error("Failed to launch tool provider", zap.Error(err))
		return s.lastErr
	}

	initReq := mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			ClientInfo: mcp.Implementation{
				Name:    s.clientName,
				Version: s.clientVersion,
			},
			Capabilities: mcp.ClientCapabilities{},
		},
	}

	res, err := c.Initialize(ctx, initReq)
	if err != nil {
		_ = c.Close()
		s.fail(&ConnectionError{Command: s.config.Command, Err: err})
		log.Error("Tool provider handshake failed", zap.Error(err))
		return s.lastErr
	}

	s.client = c
	s.provider = providerInfo(res)
	s.state = StateConnected
	log.Info("Connected to tool provider",
		zap.String("server", s.provider.Name),
		zap.String("version", s.provider.Version),
		zap.String("protocol", s.provider.ProtocolVersion),
	)
	return nil
}

// Invoke issues one generate_image call and returns the response content
// array serialized as JSON. It returns ErrNotReady when the session is not
// connected and ErrBusy when another call is in flight.
func (s *Session) Invoke(ctx context.Context, prompt string) (string, error) {
	if !s.calls.TryAcquire(1) {
		return "", ErrBusy
	}
	defer s.calls.Release(1)

	s.mu.Lock()
	if !s.state.Ready() || s.client == nil {
		s.mu.Unlock()
		return "", ErrNotReady
	}
	c := s.client
	s.state = StateInvoking
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.state == StateInvoking {
			s.state = StateIdle
		}
		s.mu.Unlock()
	}()

	if s.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.callTimeout)
		defer cancel()
	}

	log := s.logger.With(zap.String("tool", ToolName))
	log.Debug("Calling tool", zap.String("prompt", prompt))

	start := time.Now()
	result, err := c.CallTool(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name: ToolName,
			Arguments: map[string]interface{}{
				PromptArgument: prompt,
			},
		},
	})
	if err != nil {
		s.setLastErr(&CallError{Tool: ToolName, Err: err})
		log.Warn("Tool call failed", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return "", &CallError{Tool: ToolName, Err: err}
	}
	if result.IsError {
		log.Warn("Tool reported an error result", zap.Int("content_blocks", len(result.Content)))
	}

	content := result.Content
	if content == nil {
		content = []mcp.Content{}
	}
	data, err := json.Marshal(content)
	if err != nil {
		return "", &CallError{Tool: ToolName, Err: fmt.Errorf("failed to serialize content: %w", err)}
	}

	log.Debug("Tool call completed",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("bytes", len(data)),
	)
	return string(data), nil
}

// Close shuts the provider down. The session cannot be reused.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if s.client != nil {
		s.logger.Info("Closing connection to tool provider")
		err = s.client.Close()
		s.client = nil
	}
	if s.state != StateFailed {
		s.fail(ErrClosed)
	}
	return err
}

// State returns the current lifecycle state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Initialized reports whether a valid configuration was loaded
func (s *Session) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config.Command != "" && !errors.As(s.lastErr, new(*ConfigurationError))
}

// LastError returns the most recent failure, or nil
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// ErrorMessage returns the most recent failure as display text
func (s *Session) ErrorMessage() string {
	if err := s.LastError(); err != nil {
		return err.Error()
	}
	return ""
}

// Config returns the loaded provider settings
func (s *Session) Config() ServerConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// Provider returns the server identity reported during the handshake
func (s *Session) Provider() ProviderInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.provider
}

// fail must be called with mu held
func (s *Session) fail(err error) {
	s.state = StateFailed
	s.lastErr = err
}

func (s *Session) setLastErr(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}
