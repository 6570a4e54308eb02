package setup

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"promptgen/config"
	"promptgen/core/audit"
	"promptgen/gallery"
	"promptgen/generator"
	"promptgen/mcp"
	"promptgen/metrics"
	"promptgen/selection"
	"promptgen/session"
)

const (
	statusLogSize = 50
	pushTimeout   = 5 * time.Second
)

// Bootstrap contains all initialized components
type Bootstrap struct {
	Config     *config.Config
	Logger     *zap.Logger
	Catalog    *selection.Catalog
	CatalogErr error
	Selection  *selection.Model
	Session    *mcp.Session
	Gallery    *gallery.Gallery
	Audit      *audit.Log
	Metrics    *metrics.Recorder
	Status     *session.StatusLog
	Generator  *generator.Generator
}

// Initialize wires the prompt form and the tool session. Nothing here is
// fatal except failing to create the base directory: catalog and session
// problems are reported to the status log.
func Initialize(cfg *config.Config, logger *zap.Logger) (*Bootstrap, error) {
	if err := cfg.EnsureBaseDir(); err != nil {
		return nil, err
	}

	b := &Bootstrap{
		Config:  cfg,
		Logger:  logger,
		Status:  session.NewStatusLog(statusLogSize),
		Gallery: gallery.New(cfg.ImagesDir),
		Audit:   audit.New(cfg.Audit.Path, !cfg.Audit.Disabled),
		Metrics: metrics.NewRecorder(cfg.Metrics, logger),
	}

	b.Catalog, b.CatalogErr = InitializeCatalog(cfg, logger)
	if b.CatalogErr != nil {
		b.Status.AddError(b.CatalogErr)
	}
	b.Selection = selection.NewModel(b.Catalog)
	b.Selection.Subscribe(func(prompt string) {
		logger.Debug("Prompt recomposed", zap.String("prompt", prompt))
	})

	// configuration errors surface when the caller connects
	b.Session = InitializeSession(cfg, logger)

	b.Generator = generator.New(b.Session, b.Gallery, logger,
		generator.WithAudit(b.Audit),
		generator.WithMetrics(b.Metrics),
		generator.WithStatus(b.Status),
	)

	return b, nil
}

// InitializeCatalog loads the prompt catalog and logs its warnings
func InitializeCatalog(cfg *config.Config, logger *zap.Logger) (*selection.Catalog, error) {
	path := cfg.CatalogPath()
	cat, err := selection.LoadCatalog(path)
	if err != nil {
		logger.Warn("Failed to parse prompt catalog", zap.String("path", path), zap.Error(err))
	}
	for _, w := range cat.Warnings {
		logger.Warn("Prompt catalog warning", zap.String("path", path), zap.String("warning", w))
	}
	logger.Info("Prompt catalog loaded",
		zap.String("path", path),
		zap.Int("categories", len(cat.Categories)),
	)
	return cat, err
}

// Cleanup gracefully shuts down all components
func (b *Bootstrap) Cleanup() {
	if b.Session != nil {
		if err := b.Session.Close(); err != nil && !errors.Is(err, mcp.ErrClosed) {
			b.Logger.Warn("Failed to close tool session", zap.Error(err))
		}
	}
	if b.Metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		defer cancel()
		if err := b.Metrics.Push(ctx); err != nil {
			b.Logger.Warn("Failed to push metrics", zap.Error(err))
		}
	}
	_ = b.Logger.Sync()
}
