// Package generator runs one prompt through the tool provider and stores
// the resulting image.
package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"promptgen/core/audit"
	"promptgen/gallery"
	"promptgen/mcp"
	"promptgen/metrics"
	"promptgen/session"
)

// ErrImageSaveFailed wraps failures writing the decoded image
var ErrImageSaveFailed = errors.New("image save failed")

// Invoker issues the generate call. *mcp.Session satisfies it.
type Invoker interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

// Result describes a saved image
type Result struct {
	ID       string
	Path     string
	Bytes    int
	Duration time.Duration
}

// Generator ties the tool session to the gallery and reporting sinks
type Generator struct {
	invoker Invoker
	gallery *gallery.Gallery
	audit   *audit.Log
	metrics *metrics.Recorder
	status  *session.StatusLog
	logger  *zap.Logger
}

// Option configures a Generator
type Option func(*Generator)

// WithAudit records every attempt in log
func WithAudit(log *audit.Log) Option {
	return func(g *Generator) { g.audit = log }
}

// WithMetrics records every attempt in r
func WithMetrics(r *metrics.Recorder) Option {
	return func(g *Generator) { g.metrics = r }
}

// WithStatus reports outcomes as human-readable messages
func WithStatus(s *session.StatusLog) Option {
	return func(g *Generator) { g.status = s }
}

// New creates a generator saving into gal
func New(invoker Invoker, gal *gallery.Gallery, logger *zap.Logger, opts ...Option) *Generator {
	g := &Generator{
		invoker: invoker,
		gallery: gal,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate asks the provider for an image of prompt and saves it. The save
// path is fixed before the call so its timestamp marks the request.
func (g *Generator) Generate(ctx context.Context, prompt string) (*Result, error) {
	rec := audit.NewRecord(prompt)
	start := time.Now()
	path := g.gallery.PathFor(prompt)

	log := g.logger.With(zap.String("generation_id", rec.ID))
	log.Info("Generating image", zap.String("prompt", prompt))

	res, err := g.run(ctx, prompt, path)
	elapsed := time.Since(start)
	rec.DurationMS = elapsed.Milliseconds()

	if err != nil {
		rec.Outcome = audit.OutcomeFailed
		if errors.Is(err, mcp.ErrNotReady) {
			rec.Outcome = audit.OutcomeNotReady
		}
		rec.Reason = Reason(err)
		rec.Error = err.Error()
		log.Warn("Image generation failed", zap.String("reason", rec.Reason), zap.Error(err))
		g.report(rec, elapsed)
		if g.status != nil {
			g.status.AddError(err)
		}
		return nil, err
	}

	res.ID = rec.ID
	res.Duration = elapsed
	rec.Outcome = audit.OutcomeSaved
	rec.Path = res.Path
	rec.Bytes = res.Bytes
	log.Info("Image saved", zap.String("path", res.Path), zap.Int("size_bytes", res.Bytes), zap.Duration("elapsed", elapsed))
	g.report(rec, elapsed)
	if g.status != nil {
		g.status.AddMessage(fmt.Sprintf("Image saved to: %s", res.Path))
	}
	return res, nil
}

func (g *Generator) run(ctx context.Context, prompt, path string) (*Result, error) {
	response, err := g.invoker.Invoke(ctx, prompt)
	if err != nil {
		return nil, err
	}

	img, err := mcp.Decode(response)
	if err != nil {
		return nil, err
	}

	data, err := img.Bytes()
	if err != nil {
		return nil, err
	}

	if err := g.gallery.Save(path, data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageSaveFailed, err)
	}
	return &Result{Path: path, Bytes: len(data)}, nil
}

func (g *Generator) report(rec audit.Record, elapsed time.Duration) {
	if err := g.audit.Append(rec); err != nil {
		g.logger.Warn("Failed to write audit record", zap.Error(err))
	}
	if g.metrics != nil {
		g.metrics.ObserveGeneration(rec.Outcome, rec.Reason, elapsed)
	}
}

// Reason classifies a generation error for audit records and metrics
func Reason(err error) string {
	var envErr *mcp.EnvelopeError
	var callErr *mcp.CallError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, mcp.ErrNotReady):
		return "not_ready"
	case errors.Is(err, mcp.ErrBusy):
		return "busy"
	case errors.As(err, &envErr):
		return envErr.Reason.String()
	case errors.Is(err, mcp.ErrCorruptPayload):
		return "corrupt_payload"
	case errors.As(err, &callErr):
		return "call_error"
	case errors.Is(err, ErrImageSaveFailed):
		return "save_error"
	default:
		return "unknown"
	}
}
