package setup

import (
	"context"

	"go.uber.org/zap"

	"promptgen/config"
	"promptgen/mcp"
)

// InitializeSession creates the tool session and loads its configuration.
// A rejected configuration leaves the session failed; the error is kept on
// the session for display.
func InitializeSession(cfg *config.Config, logger *zap.Logger, opts ...mcp.Option) *mcp.Session {
	opts = append([]mcp.Option{
		mcp.WithLogger(logger.Named("mcp")),
		mcp.WithConnectTimeout(cfg.ConnectTimeout),
		mcp.WithCallTimeout(cfg.CallTimeout),
	}, opts...)

	s := mcp.NewSession(opts...)
	if err := s.LoadConfiguration(cfg.MCPConfigPath); err != nil {
		logger.Warn("Image provider unavailable", zap.String("config", cfg.MCPConfigPath), zap.Error(err))
	}
	return s
}

// ConnectSession connects s and logs the provider it reached
func ConnectSession(ctx context.Context, s *mcp.Session, logger *zap.Logger) error {
	if err := s.Connect(ctx); err != nil {
		logger.Error("Failed to connect to image provider", zap.Error(err))
		return err
	}
	p := s.Provider()
	logger.Info("Connected to image provider",
		zap.String("server", p.Name),
		zap.String("version", p.Version),
	)
	return nil
}
