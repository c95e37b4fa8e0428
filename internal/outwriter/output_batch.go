package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/huangsam/signalboard/internal/contract"
	"github.com/huangsam/signalboard/schema"
)

// batchReportJSON flattens unit errors, which do not marshal on their own.
type batchReportJSON struct {
	*schema.BatchReport
	OK     bool              `json:"ok"`
	Failed []batchFailedJSON `json:"failed,omitempty"`
}

type batchFailedJSON struct {
	Unit  string `json:"unit"`
	Error string `json:"error"`
}

// PrintBatchReports outputs a summary row per batch run followed by any failed units.
func PrintBatchReports(reports []*schema.BatchReport, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		out := make([]batchReportJSON, 0, len(reports))
		for _, r := range reports {
			out = append(out, toBatchReportJSON(r))
		}
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, out)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBatchCSV(w, reports)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return errParquetUnsupported("batch reports")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBatchTable(w, reports, cfg)
		}, "Wrote table")
	}
}

func toBatchReportJSON(r *schema.BatchReport) batchReportJSON {
	out := batchReportJSON{BatchReport: r, OK: r.OK()}
	for _, f := range r.Failed {
		out.Failed = append(out.Failed, batchFailedJSON{Unit: f.Unit, Error: f.Err.Error()})
	}
	return out
}

func writeBatchTable(w io.Writer, reports []*schema.BatchReport, cfg *contract.Config) error {
	headers := []string{"Run", "Kind", "Date", "Units", "Failed", "Warnings", "Duration", "Status"}
	data := make([][]string, 0, len(reports))
	for _, r := range reports {
		data = append(data, []string{
			r.RunID,
			r.Kind,
			r.Date,
			strconv.Itoa(r.Units),
			strconv.Itoa(len(r.Failed)),
			strconv.Itoa(len(r.Warnings)),
			r.Duration.Round(time.Millisecond).String(),
			batchStatus(r, cfg.UseColors),
		})
	}
	if err := renderTable(w, headers, data); err != nil {
		return err
	}

	for _, r := range reports {
		for _, f := range r.Failed {
			if _, err := fmt.Fprintf(w, "  failed %s: %v\n", f.Unit, f.Err); err != nil {
				return err
			}
		}
		for _, msg := range r.Warnings {
			if _, err := fmt.Fprintf(w, "  warning %s: %s\n", r.Kind, msg); err != nil {
				return err
			}
		}
	}
	return nil
}

func batchStatus(r *schema.BatchReport, useColors bool) string {
	status := "ok"
	if !r.OK() {
		status = "partial"
	}
	if !useColors {
		return status
	}
	if r.OK() {
		return color.GreenString(status)
	}
	return color.RedString(status)
}

func writeBatchCSV(w io.Writer, reports []*schema.BatchReport) error {
	header := []string{"run_id", "kind", "date", "units", "failed", "failed_units", "warnings", "duration_ms"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range reports {
			units := make([]string, 0, len(r.Failed))
			for _, f := range r.Failed {
				units = append(units, f.Unit)
			}
			rec := []string{
				r.RunID,
				r.Kind,
				r.Date,
				strconv.Itoa(r.Units),
				strconv.Itoa(len(r.Failed)),
				strings.Join(units, ";"),
				strconv.Itoa(len(r.Warnings)),
				strconv.FormatInt(r.Duration.Milliseconds(), 10),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
