package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/signalboard/internal/contract"
	"github.com/huangsam/signalboard/internal/parquet"
	"github.com/huangsam/signalboard/schema"
)

// PrintMindshareResults outputs mindshare snapshots grouped by window.
// Windows are printed shortest first and projects keep their given order.
func PrintMindshareResults(byWindow map[schema.Window][]schema.MindshareSnapshot, cfg *contract.Config, duration time.Duration) error {
	nf := newNumberFormat(cfg.Precision)
	windows := orderedWindows(byWindow)

	switch cfg.Output {
	case schema.JSONOut:
		out := make(map[schema.Window][]schema.EnrichedMindshare, len(byWindow))
		for _, win := range windows {
			out[win] = schema.EnrichMindshare(byWindow[win])
		}
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, out)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMindshareCSV(w, byWindow, windows, nf)
		}, "Wrote CSV")
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return fmt.Errorf("--output-file is required for parquet output")
		}
		var all []schema.MindshareSnapshot
		for _, win := range windows {
			all = append(all, byWindow[win]...)
		}
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteRows(w, parquet.FromMindshareSnapshots(all))
		}, "Wrote Parquet")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMindshareTables(w, byWindow, windows, cfg, nf, duration)
		}, "Wrote table")
	}
}

// orderedWindows returns the windows present in byWindow, shortest first.
func orderedWindows(byWindow map[schema.Window][]schema.MindshareSnapshot) []schema.Window {
	var windows []schema.Window
	for _, win := range schema.AllWindows {
		if _, ok := byWindow[win]; ok {
			windows = append(windows, win)
		}
	}
	return windows
}

func writeMindshareTables(w io.Writer, byWindow map[schema.Window][]schema.MindshareSnapshot, windows []schema.Window, cfg *contract.Config, nf numberFormat, duration time.Duration) error {
	headers := []string{"Rank", "Project", "Share", "Bps", "Delta", "Attention"}
	idWidth := GetMaxTableIDWidth(cfg, len(headers)-1)

	for _, win := range windows {
		snaps := byWindow[win]
		if _, err := fmt.Fprintf(w, "Mindshare %s as of %s\n", win, cfg.Date); err != nil {
			return err
		}

		total := 0
		data := make([][]string, 0, len(snaps))
		for i, s := range snaps {
			total += s.Bps
			if cfg.ResultLimit > 0 && i >= cfg.ResultLimit {
				continue
			}
			data = append(data, []string{
				strconv.Itoa(i + 1),
				contract.TruncateText(s.ProjectID, idWidth),
				nf.num(float64(s.Bps)/100) + "%",
				nf.count(s.Bps),
				contract.FormatDelta(s.DeltaVsPrevious),
				nf.num(s.Attention),
			})
		}
		if err := renderTable(w, headers, data); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "Showing %d of %d projects (total %d bps)\n\n", len(data), len(snaps), total); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Computed in %v\n", duration)
	return err
}

func writeMindshareCSV(w io.Writer, byWindow map[schema.Window][]schema.MindshareSnapshot, windows []schema.Window, nf numberFormat) error {
	header := []string{"window", "rank", "project_id", "date", "mindshare_bps", "percent", "delta_vs_previous", "attention"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, win := range windows {
			for i, s := range byWindow[win] {
				delta := ""
				if s.DeltaVsPrevious != nil {
					delta = strconv.Itoa(*s.DeltaVsPrevious)
				}
				rec := []string{
					string(win),
					strconv.Itoa(i + 1),
					s.ProjectID,
					s.Date,
					nf.count(s.Bps),
					nf.num(float64(s.Bps) / 100),
					delta,
					nf.num(s.Attention),
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
