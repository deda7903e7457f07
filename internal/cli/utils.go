// Package cli provides CLI utilities for Kotae.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hayasui/kotae/internal/models"
)

// OutputFormat is the format for answer output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// WriteAskResult writes an answer and its evidence to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteAskResult(w io.Writer, response *models.AskResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	default:
		writeAskResultText(w, response)
		return nil
	}
}

func writeAskResultText(w io.Writer, response *models.AskResponse) {
	fmt.Fprintf(w, "\n%s\n", response.Answer)
	if len(response.Evidence) == 0 {
		fmt.Fprintf(w, "\n(%dms, intent: %s)\n", response.QueryTime, response.Intent)
		return
	}
	fmt.Fprintf(w, "\n--- Evidence (%d fragments, %dms) ---\n", len(response.Evidence), response.QueryTime)
	for i, ev := range response.Evidence {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "[%d] %s p.%d | Score: %.4f\n", i+1, ev.SourceFile, ev.Page, ev.Score)
		fmt.Fprintf(w, "\n%s\n", Truncate(ev.Text, 200))
		fmt.Fprintln(w)
	}
}

// PrintAskResult prints an answer to stdout in text format.
func PrintAskResult(response *models.AskResponse) {
	_ = WriteAskResult(os.Stdout, response, OutputText)
}

// Truncate truncates s to maxLen and appends "..." if truncated.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// TruncateWords returns up to maxWords from the space-separated string.
func TruncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ") + "..."
}
