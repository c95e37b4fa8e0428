package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/huangsam/signalboard/internal/contract"
	"github.com/huangsam/signalboard/schema"
)

// PrintLeaderboards outputs one ranked table per arena, arenas ordered by id.
func PrintLeaderboards(boards map[string][]schema.LeaderboardEntry, cfg *contract.Config, duration time.Duration) error {
	nf := newNumberFormat(cfg.Precision)
	arenaIDs := slices.Sorted(maps.Keys(boards))

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, boards)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeLeaderboardCSV(w, boards, arenaIDs, nf)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return errParquetUnsupported("leaderboards")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeLeaderboardTables(w, boards, arenaIDs, cfg, nf, duration)
		}, "Wrote table")
	}
}

func writeLeaderboardTables(w io.Writer, boards map[string][]schema.LeaderboardEntry, arenaIDs []string, cfg *contract.Config, nf numberFormat, duration time.Duration) error {
	headers := []string{"Rank", "Account", "Base", "Multiplier", "Final", "Participant", "First Activity"}
	idWidth := GetMaxTableIDWidth(cfg, len(headers))

	for _, id := range arenaIDs {
		entries := boards[id]
		if _, err := fmt.Fprintf(w, "Arena %s\n", id); err != nil {
			return err
		}
		data := make([][]string, 0, len(entries))
		for i, e := range entries {
			if cfg.ResultLimit > 0 && i >= cfg.ResultLimit {
				break
			}
			participant := ""
			if e.IsParticipant {
				participant = "verified"
			}
			data = append(data, []string{
				nf.count(e.Rank),
				contract.TruncateText(e.AccountID, idWidth),
				nf.count(e.BasePoints),
				nf.num(e.Multiplier) + "x",
				nf.count(e.FinalScore),
				participant,
				e.FirstActivity.UTC().Format(contract.DateTimeFormat),
			})
		}
		if err := renderTable(w, headers, data); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "Showing %d of %d creators\n\n", len(data), len(entries)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Computed in %v\n", duration)
	return err
}

func writeLeaderboardCSV(w io.Writer, boards map[string][]schema.LeaderboardEntry, arenaIDs []string, nf numberFormat) error {
	header := []string{"arena_id", "rank", "account_id", "base_points", "multiplier", "final_score", "is_participant", "first_activity"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, id := range arenaIDs {
			for _, e := range boards[id] {
				rec := []string{
					id,
					nf.count(e.Rank),
					e.AccountID,
					nf.count(e.BasePoints),
					nf.num(e.Multiplier),
					nf.count(e.FinalScore),
					strconv.FormatBool(e.IsParticipant),
					e.FirstActivity.UTC().Format(contract.DateTimeFormat),
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
