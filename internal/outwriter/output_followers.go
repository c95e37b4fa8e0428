package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/signalboard/internal/contract"
	"github.com/huangsam/signalboard/schema"
)

// PrintSmartFollowers outputs one account's Smart-Followers value and deltas.
func PrintSmartFollowers(report schema.SmartFollowersReport, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeFollowersCSV(w, report, cfg.Precision)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return errParquetUnsupported("smart followers")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeFollowersTable(w, report, cfg)
		}, "Wrote table")
	}
}

func writeFollowersTable(w io.Writer, report schema.SmartFollowersReport, cfg *contract.Config) error {
	headers := []string{"Account", "As Of", "Smart Followers", "Kind", "7d", "30d"}
	kind := contract.MissingValueStr
	if report.Current != nil {
		kind = report.Current.Kind()
	}
	data := [][]string{{
		contract.TruncateText(report.AccountID, GetMaxTableIDWidth(cfg, len(headers))),
		report.AsOf,
		contract.FormatSmartFollowers(report.Current, cfg.Precision),
		kind,
		contract.FormatDelta(report.Delta7d),
		contract.FormatDelta(report.Delta30d),
	}}
	if err := renderTable(w, headers, data); err != nil {
		return err
	}
	if schema.IsEstimate(report.Current) {
		_, err := fmt.Fprintln(w, "Estimated from high-trust engagers; the account is outside graph coverage")
		return err
	}
	return nil
}

func writeFollowersCSV(w io.Writer, report schema.SmartFollowersReport, precision int) error {
	header := []string{"account_id", "as_of", "smart_followers", "smart_followers_pct", "kind", "delta_7d", "delta_30d"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		count, pct, kind := "", "", ""
		if report.Current != nil {
			count = strconv.Itoa(report.Current.Count())
			pct = strconv.FormatFloat(report.Current.Pct(), 'f', precision, 64)
			kind = report.Current.Kind()
		}
		return cw.Write([]string{
			report.AccountID,
			report.AsOf,
			count,
			pct,
			kind,
			optionalInt(report.Delta7d),
			optionalInt(report.Delta30d),
		})
	})
}

// optionalInt renders nil as an empty CSV cell.
func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
