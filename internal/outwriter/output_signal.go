package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/signalboard/internal/contract"
	"github.com/huangsam/signalboard/schema"
)

// PrintSignalResults outputs signal scores, dispatching on the configured output format.
func PrintSignalResults(results []schema.SignalResult, cfg *contract.Config, duration time.Duration) error {
	nf := newNumberFormat(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, schema.EnrichSignals(results))
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSignalCSV(w, results, nf)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return errParquetUnsupported("signal scores")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSignalTable(w, results, cfg, nf, duration)
		}, "Wrote table")
	}
}

// writeSignalTable generates the human-readable table.
func writeSignalTable(w io.Writer, results []schema.SignalResult, cfg *contract.Config, nf numberFormat, duration time.Duration) error {
	headers := []string{"Rank", "Account", "Project", "Window", "Score", "Band", "Posts"}
	idWidth := GetMaxTableIDWidth(cfg, len(headers)-2)

	data := make([][]string, 0, len(results))
	for i, r := range results {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncateText(r.AccountID, idWidth),
			contract.TruncateText(r.ProjectID, idWidth),
			string(r.Window),
			nf.num(r.Score),
			bandLabel(r.Band, cfg),
			nf.count(r.PostCount),
		})
	}
	if err := renderTable(w, headers, data); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Showing %d signal scores for window %s as of %s\n", len(results), cfg.Window, cfg.Date); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Computed in %v\n", duration)
	return err
}

// writeSignalCSV writes signal scores with their component breakdown.
func writeSignalCSV(w io.Writer, results []schema.SignalResult, nf numberFormat) error {
	header := []string{
		"rank", "account_id", "project_id", "window", "score", "trust_band", "label", "post_count",
		"engagement", "duplicate", "sentiment", "authenticity",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, r := range results {
			rec := []string{
				strconv.Itoa(i + 1),
				r.AccountID,
				r.ProjectID,
				string(r.Window),
				nf.num(r.Score),
				string(r.Band),
				contract.GetPlainLabel(r.Band),
				nf.count(r.PostCount),
				nf.num(r.Breakdown[schema.BreakdownEngagement]),
				nf.num(r.Breakdown[schema.BreakdownDuplicate]),
				nf.num(r.Breakdown[schema.BreakdownSentiment]),
				nf.num(r.Breakdown[schema.BreakdownAuthenticity]),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
