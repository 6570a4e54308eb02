package ui

import (
	"fmt"
	"io"
	"time"

	"promptgen/core/audit"
)

const maxPromptWidth = 60

// PrintHistory displays audit records, oldest first.
// Purely presentational: records are read by the caller.
func PrintHistory(w io.Writer, records []audit.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No generations recorded")
		return
	}

	for _, rec := range records {
		if rec.Outcome == audit.OutcomeSaved {
			printSaved(w, rec)
		} else {
			printFailed(w, rec)
		}
	}
}

func printSaved(w io.Writer, rec audit.Record) {
	fmt.Fprintf(w, "✓ %s %s  %s\n", shortenID(rec.ID), rec.Timestamp.Local().Format(time.DateTime), truncatePrompt(rec.Prompt))
	fmt.Fprintf(w, "   Saved: %s (%d bytes, %s)\n", rec.Path, rec.Bytes, time.Duration(rec.DurationMS)*time.Millisecond)
}

func printFailed(w io.Writer, rec audit.Record) {
	fmt.Fprintf(w, "✗ %s %s  %s\n", shortenID(rec.ID), rec.Timestamp.Local().Format(time.DateTime), truncatePrompt(rec.Prompt))
	fmt.Fprintf(w, "   %s: %s\n", rec.Reason, rec.Error)
}

// shortenID returns the first 8 characters of a generation ID for display
func shortenID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncatePrompt(prompt string) string {
	if prompt == "" {
		return "(empty prompt)"
	}
	r := []rune(prompt)
	if len(r) > maxPromptWidth {
		return string(r[:maxPromptWidth-3]) + "..."
	}
	return prompt
}
