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

// PrintAuthorityResults outputs authority scores, highest first.
func PrintAuthorityResults(scores []schema.AuthorityScore, cfg *contract.Config, duration time.Duration) error {
	nf := newNumberFormat(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, scores)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeAuthorityCSV(w, scores, nf)
		}, "Wrote CSV")
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return fmt.Errorf("--output-file is required for parquet output")
		}
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteRows(w, parquet.FromAuthorityScores(scores))
		}, "Wrote Parquet")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeAuthorityTable(w, scores, cfg, nf, duration)
		}, "Wrote table")
	}
}

func writeAuthorityTable(w io.Writer, scores []schema.AuthorityScore, cfg *contract.Config, nf numberFormat, duration time.Duration) error {
	headers := []string{"Rank", "Account", "Authority", "Raw", "Bot Risk", "Organic", "Smart", "Smart Followers"}
	idWidth := GetMaxTableIDWidth(cfg, len(headers))

	smartCount := 0
	data := make([][]string, 0, len(scores))
	for i, s := range scores {
		smart := ""
		if s.IsSmart {
			smart = contract.SmartValue
			smartCount++
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncateText(s.AccountID, idWidth),
			nf.num(s.Score),
			nf.num(s.AuthorityRaw),
			nf.num(s.BotRisk),
			nf.num(s.AudienceOrganic),
			smart,
			contract.FormatSmartFollowers(s.SmartFollowers, cfg.Precision),
		})
	}
	if err := renderTable(w, headers, data); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Showing %d accounts as of %s (%d smart)\n", len(scores), cfg.Date, smartCount); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Computed in %v. Estimates are marked with %q\n", duration, contract.EstimateMarker)
	return err
}

func writeAuthorityCSV(w io.Writer, scores []schema.AuthorityScore, nf numberFormat) error {
	header := []string{
		"rank", "account_id", "date", "authority_score", "authority_raw", "bot_risk", "audience_organic",
		"is_smart", "smart_followers", "smart_followers_pct", "smart_followers_kind",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, s := range scores {
			count, pct, kind := "", "", ""
			if s.SmartFollowers != nil {
				count = strconv.Itoa(s.SmartFollowers.Count())
				pct = nf.num(s.SmartFollowers.Pct())
				kind = s.SmartFollowers.Kind()
			}
			rec := []string{
				strconv.Itoa(i + 1),
				s.AccountID,
				s.Date,
				nf.num(s.Score),
				nf.num(s.AuthorityRaw),
				nf.num(s.BotRisk),
				nf.num(s.AudienceOrganic),
				strconv.FormatBool(s.IsSmart),
				count,
				pct,
				kind,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
