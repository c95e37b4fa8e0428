package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/huangsam/signalboard/internal/contract"
	"github.com/huangsam/signalboard/schema"
)

// parameterRow is one named engine parameter in display form.
type parameterRow struct {
	Section string `json:"section"`
	Name    string `json:"name"`
	Value   string `json:"value"`
}

// getDisplayNameForSection returns the heading shown above a parameter group.
func getDisplayNameForSection(section string) string {
	switch section {
	case "decay":
		return "⏳ DECAY"
	case "signal":
		return "📡 SIGNAL"
	case "authority":
		return "🕸️  AUTHORITY"
	case "mindshare":
		return "🧠 MINDSHARE"
	case "leaderboard":
		return "🏆 LEADERBOARD"
	default:
		return strings.ToUpper(section)
	}
}

// buildParameterRows flattens the engine config into ordered display rows.
func buildParameterRows(engine schema.EngineConfig, nf numberFormat) []parameterRow {
	var rows []parameterRow
	add := func(section, name, value string) {
		rows = append(rows, parameterRow{Section: section, Name: name, Value: value})
	}
	bounds := func(b schema.Bounds) string {
		return fmt.Sprintf("[%s, %s]", nf.num(b.Floor), nf.num(b.Cap))
	}

	for _, w := range schema.AllWindows {
		add("decay", "half_life_"+string(w), fmt.Sprintf("%gh", engine.HalfLife(w)))
	}
	for _, ct := range schema.AllContentTypes {
		if v, ok := engine.Decay.ContentWeights[ct]; ok {
			add("decay", "content_weight_"+string(ct), nf.num(v))
		}
	}

	s := engine.Signal
	add("signal", "saturation_k", nf.num(s.SaturationK))
	add("signal", "duplicate_factor", nf.num(s.DuplicateFactor))
	add("signal", "sentiment_gain", nf.num(s.SentimentGain))
	add("signal", "sentiment", bounds(s.Sentiment))
	add("signal", "authenticity", bounds(s.Authenticity))
	add("signal", "smart_bonus", nf.num(s.SmartBonus))
	add("signal", "bands", fmt.Sprintf("A>=%s B>=%s C>=%s", nf.num(s.BandA), nf.num(s.BandB), nf.num(s.BandC)))

	a := engine.Authority
	add("authority", "damping", nf.num(a.Damping))
	add("authority", "tolerance", fmt.Sprintf("%g", a.Tolerance))
	add("authority", "max_iterations", fmt.Sprintf("%d", a.MaxIterations))
	add("authority", "smart_cutoff", fmt.Sprintf("min(top %d, top %s%%)", a.SmartTopN, nf.num(a.SmartTopPercent)))
	add("authority", "bot_risk_threshold", nf.num(a.BotRiskThreshold))
	add("authority", "bot_risk_cap", nf.num(a.BotRiskCap))
	add("authority", "new_account_days", fmt.Sprintf("%d", a.NewAccountDays))
	add("authority", "follow_ratio_threshold", nf.num(a.FollowRatioThreshold))
	add("authority", "risk_weights", fmt.Sprintf("%s*age+%s*ratio", nf.num(a.AgeRiskWeight), nf.num(a.RatioRiskWeight)))
	bands := make([]string, 0, len(a.EstimateBands))
	for _, b := range a.EstimateBands {
		bands = append(bands, string(b))
	}
	add("authority", "estimate_bands", strings.Join(bands, ","))
	add("authority", "delta_tolerance_days", fmt.Sprintf("%d", a.DeltaToleranceDays))

	m := engine.Mindshare
	keys := []schema.BreakdownKey{schema.BreakdownPosts, schema.BreakdownCreators, schema.BreakdownVolume, schema.BreakdownHeat}
	add("mindshare", "attention", formatWeights(m.Weights, keys))
	add("mindshare", "creator_auth", bounds(m.CreatorAuth))
	add("mindshare", "audience_auth", bounds(m.AudienceAuth))
	add("mindshare", "originality", bounds(m.Originality))
	add("mindshare", "sentiment_gain", nf.num(m.SentimentGain))
	add("mindshare", "sentiment", bounds(m.Sentiment))
	add("mindshare", "smart_boost_gain", nf.num(m.SmartBoostGain))
	add("mindshare", "smart_boost", bounds(m.SmartBoost))
	add("mindshare", "total_bps", fmt.Sprintf("%d", schema.TotalBasisPoints))

	add("leaderboard", "verified_multiplier", nf.num(engine.Leaderboard.VerifiedMultiplier))
	return rows
}

// formatWeights formats weights for display in formulas.
func formatWeights(weights map[schema.BreakdownKey]float64, keys []schema.BreakdownKey) string {
	var parts []string
	for _, key := range keys {
		if weight, ok := weights[key]; ok && weight > 0 {
			parts = append(parts, fmt.Sprintf("%.2f*%s", weight, key))
		}
	}
	return strings.Join(parts, "+")
}

// PrintEngineConfig displays the active engine parameters.
// This is a static display that does not require a dataset.
func PrintEngineConfig(engine schema.EngineConfig, cfg *contract.Config) error {
	nf := newNumberFormat(max(cfg.Precision, 2))
	rows := buildParameterRows(engine, nf)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, engine)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"section", "name", "value"}, func(cw *csv.Writer) error {
				for _, r := range rows {
					if err := cw.Write([]string{r.Section, r.Name, r.Value}); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV")
	case schema.ParquetOut:
		return errParquetUnsupported("engine parameters")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return printParametersText(w, rows)
		}, "Wrote text")
	}
}

// printParametersText prints one table per section in declaration order.
func printParametersText(w io.Writer, rows []parameterRow) error {
	var sections []string
	for _, r := range rows {
		if !slices.Contains(sections, r.Section) {
			sections = append(sections, r.Section)
		}
	}

	for _, section := range sections {
		if _, err := fmt.Fprintf(w, "%s\n", getDisplayNameForSection(section)); err != nil {
			return err
		}
		var data [][]string
		for _, r := range rows {
			if r.Section == section {
				data = append(data, []string{r.Name, r.Value})
			}
		}
		if err := renderTable(w, []string{"Parameter", "Value"}, data); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
