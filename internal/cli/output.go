// Package cli provides CLI output utilities for Kaiwa.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/driftlab/kaiwa/internal/models"
)

// OutputFormat is the format for query result output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// WriteQueryResult writes a query result to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteQueryResult(w io.Writer, result *models.QueryResult, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	default:
		writeQueryResultText(w, result)
		return nil
	}
}

func writeQueryResultText(w io.Writer, result *models.QueryResult) {
	fmt.Fprintf(w, "%s\n", result.Answer)
	if len(result.Sources) == 0 {
		return
	}
	fmt.Fprintf(w, "\n--- Sources (%d) ---\n", len(result.Sources))
	for _, src := range result.Sources {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "%s | chunk %d | score %.4f\n", src.FileName, src.Seq, src.Score)
		fmt.Fprintf(w, "\n%s\n", src.Content)
	}
}

// WriteIngestResult writes an ingestion summary to w in the given format.
func WriteIngestResult(w io.Writer, result *models.IngestResult, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	default:
		fmt.Fprintf(w, "Processed %d file(s), indexed %d chunk(s)\n",
			result.FilesProcessed, result.ChunksIndexed)
		return nil
	}
}
