package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"promptgen/config"
	"promptgen/core/audit"
	"promptgen/logging"
	"promptgen/ui"
)

var historyLimit int

// historyCmd lists past generation attempts from the audit log
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent generation attempts",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of records to show (0 = all)")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()
	logger, err := newCommandLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	log := audit.New(cfg.Audit.Path, true)
	records, err := log.Recent(historyLimit)
	if err != nil {
		logger.Error("Failed to read audit log", zap.String("path", log.Path()), zap.Error(err))
		return err
	}

	ui.PrintHistory(cmd.OutOrStdout(), records)
	return nil
}

func newCommandLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(cfg.Log, cfg.Log.Path)
}
