package main

import (
	"github.com/spf13/cobra"

	"promptgen/selection"
	"promptgen/setup"
	"promptgen/ui"
)

// catalogCmd prints the form layout built from the prompt catalog
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Show the prompt catalog as the form renders it",
	Long: `Load the prompt catalog, print every category with its selection keys
and choices, and list warnings such as duplicate keys.

Selection keys shown here are the ones accepted by generate --select.`,
	RunE: runCatalog,
}

func runCatalog(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()
	logger, err := newCommandLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.EnsureBaseDir(); err != nil {
		return err
	}

	cat, err := setup.InitializeCatalog(cfg, logger)
	if err != nil {
		return err
	}

	ui.PrintCatalog(cmd.OutOrStdout(), selection.Render(cat), cat.Warnings)
	return nil
}
