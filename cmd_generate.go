package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"promptgen/selection"
	"promptgen/setup"
	"promptgen/ui"
)

var selectFlags []string

// generateCmd renders one image without the interactive form
var generateCmd = &cobra.Command{
	Use:   "generate [character...]",
	Short: "Generate one image from the command line",
	Long: `Compose a prompt from the character text and --select choices, send it
to the image provider and save the result under the images directory.

Choices are given as <Category>-<SubCategory>=<choice name>, for example
  promptgen generate "a knight" --select "Style-Lighting=Soft"`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringArrayVarP(&selectFlags, "select", "s", nil, "choice as key=name (repeatable)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	b, err := bootstrap(cfg, cfg.Log.Path)
	if err != nil {
		return err
	}
	defer b.Cleanup()

	if b.CatalogErr != nil && len(selectFlags) > 0 {
		return b.CatalogErr
	}

	b.Selection.OnSeedChanged(strings.Join(args, " "))
	for _, s := range selectFlags {
		if err := applySelect(b.Selection, s); err != nil {
			return err
		}
	}

	prompt := b.Selection.Prompt()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Prompt: %s\n", prompt)

	ctx := cmd.Context()
	status := ui.NewStatusLine()

	status.ShowWithSpinner("Connecting to image provider...")
	if err := setup.ConnectSession(ctx, b.Session, b.Logger); err != nil {
		status.Clear()
		return err
	}

	status.Update("Generating image...")
	res, err := b.Generator.Generate(ctx, prompt)
	status.Clear()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Image saved to: %s\n", res.Path)
	return nil
}

func applySelect(m *selection.Model, s string) error {
	key, label, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("invalid --select %q, expected key=name", s)
	}
	_, err := m.ChooseLabel(strings.TrimSpace(key), strings.TrimSpace(label))
	return err
}
