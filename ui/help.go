package ui

import (
	"fmt"
	"io"
	"strings"

	"promptgen/selection"
)

// PrintCatalog displays the rendered layout grouped by main category
func PrintCatalog(w io.Writer, layout selection.Layout, warnings []string) {
	if len(layout) == 0 {
		fmt.Fprintln(w, "Prompt catalog is empty")
	}

	for _, el := range layout {
		switch el.Kind {
		case selection.ElementHeader:
			fmt.Fprintf(w, "\n=== %s ===\n", el.Title)
		case selection.ElementRow:
			for _, widget := range el.Widgets {
				choices := make([]string, 0, len(widget.Options)-1)
				for _, opt := range widget.Options {
					if !opt.None {
						choices = append(choices, opt.Label)
					}
				}
				fmt.Fprintf(w, "  %-20s %-28s %s\n", widget.Label, "("+widget.Key+")", strings.Join(choices, " | "))
			}
		}
	}

	if len(warnings) > 0 {
		fmt.Fprintf(w, "\nWarnings (%d):\n", len(warnings))
		for _, warn := range warnings {
			fmt.Fprintf(w, "  - %s\n", warn)
		}
	}
	fmt.Fprintln(w)
}
