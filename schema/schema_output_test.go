package schema_test

import (
	"testing"

	"github.com/huangsam/signalboard/schema"
	"github.com/stretchr/testify/assert"
)

func TestEnrichSignals(t *testing.T) {
	results := []schema.SignalResult{
		{AccountID: "alice", Score: 85.0, Band: schema.BandA},
		{AccountID: "bob", Score: 65.0, Band: schema.BandB},
		{AccountID: "carol", Score: 20.0, Band: schema.BandD},
	}

	enriched := schema.EnrichSignals(results)

	assert.Len(t, enriched, 3)

	assert.Equal(t, 1, enriched[0].Rank)
	assert.Equal(t, "alice", enriched[0].AccountID)

	assert.Equal(t, 2, enriched[1].Rank)
	assert.Equal(t, schema.BandB, enriched[1].Band)

	assert.Equal(t, 3, enriched[2].Rank)
	assert.Equal(t, "carol", enriched[2].AccountID)
}

func TestEnrichMindshare(t *testing.T) {
	snaps := []schema.MindshareSnapshot{
		{ProjectID: "p1", Bps: 6667},
		{ProjectID: "p2", Bps: 3333},
	}

	enriched := schema.EnrichMindshare(snaps)

	assert.Len(t, enriched, 2)
	assert.Equal(t, 1, enriched[0].Rank)
	assert.InDelta(t, 66.67, enriched[0].Percent, 1e-9)
	assert.Equal(t, 2, enriched[1].Rank)
	assert.Equal(t, "p2", enriched[1].ProjectID)
}
