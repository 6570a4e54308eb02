package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"promptgen/config"
	"promptgen/interface/form"
	"promptgen/logging"
	"promptgen/setup"
)

var settingsPath string

var rootCmd = &cobra.Command{
	Use:   "promptgen",
	Short: "Compose image prompts from a catalog and generate images",
	Long: `promptgen builds an image prompt from a free-text character field and
one choice per catalog sub-category, then asks the configured MCP
provider ("genimage") to render it.

Without a subcommand the interactive form is started.`,
	SilenceUsage: true,
	RunE:         runForm,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&settingsPath, "config", "", "settings file (default ~/prompt-generator/settings.yaml)")
	rootCmd.AddCommand(generateCmd, catalogCmd, historyCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads settings, falling back to defaults when they are unreadable
func loadConfig() *config.Config {
	cfg, err := config.Load(settingsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config, using defaults: %v\n", err)
		cfg = config.Default()
	}
	return cfg
}

// bootstrap wires components, logging to logPath (stderr when empty)
func bootstrap(cfg *config.Config, logPath string) (*setup.Bootstrap, error) {
	logger, err := logging.New(cfg.Log, logPath)
	if err != nil {
		return nil, err
	}

	b, err := setup.Initialize(cfg, logger)
	if err != nil {
		logger.Error("Startup failed", zap.Error(err))
		_ = logger.Sync()
		return nil, fmt.Errorf("startup failed: %w", err)
	}
	return b, nil
}

// runForm starts the interactive form. Logs go to a file so they do not
// garble the terminal.
func runForm(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()
	b, err := bootstrap(cfg, cfg.FormLogPath())
	if err != nil {
		return err
	}
	defer b.Cleanup()

	ctx := cmd.Context()
	m := form.New(ctx, b.Selection, b.Generator, sessionConnector{b}, b.Status)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("form exited: %w", err)
	}
	return nil
}

type sessionConnector struct{ b *setup.Bootstrap }

func (c sessionConnector) Connect(ctx context.Context) error {
	return setup.ConnectSession(ctx, c.b.Session, c.b.Logger)
}
