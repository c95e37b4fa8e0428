package parquet

import "time"

// SampleBatchRuns generates BatchRun data for demonstration.
func SampleBatchRuns() []BatchRun {
	started1 := time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC)
	ended1 := started1.Add(90 * time.Second)
	total1, failed1 := int32(1), int32(0)
	params1 := `{"workers":4,"now":"2026-03-02T00:00:00Z"}`

	started2 := started1.Add(2 * time.Minute)
	ended2 := started2.Add(40 * time.Second)
	total2, failed2 := int32(3), int32(1)
	params2 := `{"workers":4,"windows":["24h","7d","30d"]}`

	return []BatchRun{
		{
			RunID:        "0b6e2c1a-8f0e-4f3e-9a55-1d2f0c6a7b01",
			Kind:         "authority",
			SnapshotDate: "2026-03-01",
			StartedAt:    started1,
			EndedAt:      &ended1,
			UnitsTotal:   &total1,
			UnitsFailed:  &failed1,
			ConfigParams: &params1,
		},
		{
			RunID:        "0b6e2c1a-8f0e-4f3e-9a55-1d2f0c6a7b02",
			Kind:         "mindshare",
			SnapshotDate: "2026-03-01",
			StartedAt:    started2,
			EndedAt:      &ended2,
			UnitsTotal:   &total2,
			UnitsFailed:  &failed2,
			ConfigParams: &params2,
		},
		{
			// Still running: nullable columns stay empty
			RunID:        "0b6e2c1a-8f0e-4f3e-9a55-1d2f0c6a7b03",
			Kind:         "authority",
			SnapshotDate: "2026-03-02",
			StartedAt:    started1.Add(24 * time.Hour),
		},
	}
}

// SampleAuthoritySnapshots generates AuthoritySnapshot data for demonstration.
func SampleAuthoritySnapshots() []AuthoritySnapshot {
	count, pct := int32(42), 12.5
	estimate := int32(7)
	return []AuthoritySnapshot{
		{
			AccountID:         "alice",
			SnapshotDate:      "2026-03-01",
			AuthorityRaw:      1.84,
			BotRisk:           0.05,
			AuthorityScore:    1.748,
			IsSmart:           true,
			AudienceOrganic:   0.91,
			SmartFollowers:    &count,
			SmartFollowersPct: &pct,
		},
		{
			AccountID:              "bob",
			SnapshotDate:           "2026-03-01",
			AuthorityRaw:           0.72,
			BotRisk:                0.4,
			AuthorityScore:         0.432,
			AudienceOrganic:        0.6,
			SmartFollowers:         &estimate,
			SmartFollowersEstimate: true,
		},
		{
			AccountID:       "carol",
			SnapshotDate:    "2026-03-01",
			AuthorityRaw:    0.31,
			BotRisk:         0.9,
			AuthorityScore:  0.031,
			AudienceOrganic: 1,
		},
	}
}

// SampleMindshareSnapshots generates MindshareSnapshot data for demonstration.
func SampleMindshareSnapshots() []MindshareSnapshot {
	delta := int32(-120)
	return []MindshareSnapshot{
		{ProjectID: "alpha", WindowKey: "7d", SnapshotDate: "2026-03-01", MindshareBps: 6667, DeltaVsPrevious: &delta, Attention: 20},
		{ProjectID: "beta", WindowKey: "7d", SnapshotDate: "2026-03-01", MindshareBps: 3333, Attention: 10},
	}
}
