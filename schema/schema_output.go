package schema

// EnrichedSignalResult adds presentation data to a SignalResult.
type EnrichedSignalResult struct {
	Rank int `json:"rank"`
	SignalResult
}

// EnrichedMindshare adds presentation data to a MindshareSnapshot.
type EnrichedMindshare struct {
	Rank    int     `json:"rank"`
	Percent float64 `json:"percent"` // Bps / 100
	MindshareSnapshot
}

// EnrichSignals adds rank to an already ordered list of signal results.
func EnrichSignals(results []SignalResult) []EnrichedSignalResult {
	output := make([]EnrichedSignalResult, len(results))
	for i, r := range results {
		output[i] = EnrichedSignalResult{
			Rank:         i + 1,
			SignalResult: r,
		}
	}
	return output
}

// EnrichMindshare adds rank and percent to an already ordered list of snapshots.
func EnrichMindshare(snapshots []MindshareSnapshot) []EnrichedMindshare {
	output := make([]EnrichedMindshare, len(snapshots))
	for i, s := range snapshots {
		output[i] = EnrichedMindshare{
			Rank:              i + 1,
			Percent:           float64(s.Bps) / 100,
			MindshareSnapshot: s,
		}
	}
	return output
}
