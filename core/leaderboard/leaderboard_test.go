package leaderboard

import (
	"testing"
	"time"

	"github.com/huangsam/signalboard/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	start = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	arena = schema.Arena{ID: "arena-1", ProjectID: "proj", StartsAt: start, EndsAt: start.Add(7 * 24 * time.Hour)}
)

func post(author string, at time.Duration, likes, replies, reposts int) schema.Post {
	return schema.Post{AuthorID: author, ProjectID: "proj", CreatedAt: start.Add(at), Likes: likes, Replies: replies, Reposts: reposts}
}

func byAccount(entries []schema.LeaderboardEntry) map[string]schema.LeaderboardEntry {
	out := make(map[string]schema.LeaderboardEntry, len(entries))
	for _, e := range entries {
		out[e.AccountID] = e
	}
	return out
}

func TestBuild_Multiplier(t *testing.T) {
	cfg := schema.DefaultEngineConfig()
	posts := []schema.Post{
		post("verified", time.Hour, 100, 0, 0),
		post("unverified", 2*time.Hour, 100, 0, 0),
		post("auto", 3*time.Hour, 50, 10, 10), // 50 + 20 + 30
	}
	participants := []schema.Participant{
		{AccountID: "verified", ArenaID: "arena-1", State: schema.ApprovedState, FollowVerified: true},
		{AccountID: "unverified", ArenaID: "arena-1", State: schema.ApprovedState},
	}

	entries := Build(arena, posts, participants, cfg)
	got := byAccount(entries)

	assert.Equal(t, 100, got["verified"].BasePoints)
	assert.Equal(t, 150, got["verified"].FinalScore)
	assert.Equal(t, 1.5, got["verified"].Multiplier)
	assert.True(t, got["verified"].IsParticipant)

	assert.Equal(t, 100, got["unverified"].FinalScore)
	assert.Equal(t, 1.0, got["unverified"].Multiplier)

	assert.Equal(t, 100, got["auto"].BasePoints, "linear, not log-scaled")
	assert.Equal(t, 100, got["auto"].FinalScore)
	assert.False(t, got["auto"].IsParticipant)

	require.Len(t, entries, 3)
	assert.Equal(t, "verified", entries[0].AccountID)
	assert.Equal(t, 1, entries[0].Rank)
	// unverified posted before auto, so it wins the tie.
	assert.Equal(t, "unverified", entries[1].AccountID)
	assert.Equal(t, "auto", entries[2].AccountID)
	assert.Equal(t, 3, entries[2].Rank)
}

func TestBuild_ManualAdjustmentIsAdditive(t *testing.T) {
	cfg := schema.DefaultEngineConfig()
	posts := []schema.Post{post("a", time.Hour, 10, 0, 0)}
	participants := []schema.Participant{
		{AccountID: "a", ProjectID: "proj", State: schema.ApprovedState, ManualPointAdjustment: 25, FollowVerified: true},
		{AccountID: "joiner", ProjectID: "proj", State: schema.ApprovedState, ManualPointAdjustment: 7, JoinedAt: start},
	}
	got := byAccount(Build(arena, posts, participants, cfg))

	assert.Equal(t, 35, got["a"].BasePoints)
	assert.Equal(t, 52, got["a"].FinalScore, "floor(35 * 1.5)")
	assert.Equal(t, 7, got["joiner"].FinalScore)
	assert.Equal(t, start, got["joiner"].FirstActivity, "no posts falls back to JoinedAt")
}

func TestBuild_DuplicateApprovedRowsKeepFirst(t *testing.T) {
	cfg := schema.DefaultEngineConfig()
	participants := []schema.Participant{
		{AccountID: "a", ArenaID: "arena-1", State: schema.ApprovedState, FollowVerified: true, ManualPointAdjustment: 100, JoinedAt: start},
		{AccountID: "a", ProjectID: "proj", State: schema.ApprovedState, JoinedAt: start},
	}
	entries := Build(arena, nil, participants, cfg)
	require.Len(t, entries, 1)
	assert.Equal(t, 100, entries[0].BasePoints)
	assert.Equal(t, 150, entries[0].FinalScore)
}

func TestBuild_OnlyApprovedParticipantsCount(t *testing.T) {
	cfg := schema.DefaultEngineConfig()
	posts := []schema.Post{
		post("pending", time.Hour, 100, 0, 0),
		post("rejected", time.Hour, 100, 0, 0),
		post("gone", time.Hour, 100, 0, 0),
	}
	participants := []schema.Participant{
		{AccountID: "pending", ArenaID: "arena-1", State: schema.PendingState, FollowVerified: true, ManualPointAdjustment: 50},
		{AccountID: "rejected", ArenaID: "arena-1", State: schema.RejectedState, FollowVerified: true},
		{AccountID: "gone", ArenaID: "arena-1", State: schema.ApprovedState, FollowVerified: true, Deactivated: true},
		{AccountID: "elsewhere", ArenaID: "arena-2", State: schema.ApprovedState, ManualPointAdjustment: 500},
		{AccountID: "invited", ArenaID: "arena-1", State: schema.InvitedState, ManualPointAdjustment: 500},
	}
	entries := Build(arena, posts, participants, cfg)
	require.Len(t, entries, 3)
	for _, e := range entries {
		assert.Equal(t, 100, e.FinalScore, e.AccountID)
		assert.Equal(t, 1.0, e.Multiplier, e.AccountID)
		assert.False(t, e.IsParticipant, e.AccountID)
	}
}

func TestBuild_TimeBoxAndProject(t *testing.T) {
	cfg := schema.DefaultEngineConfig()
	other := post("a", time.Hour, 1000, 0, 0)
	other.ProjectID = "other"
	posts := []schema.Post{
		post("a", -time.Hour, 1000, 0, 0),     // before start
		post("a", 7*24*time.Hour, 1000, 0, 0), // at end, excluded
		other,
		post("a", time.Hour, 3, 0, 0),
	}
	entries := Build(arena, posts, nil, cfg)
	require.Len(t, entries, 1)
	assert.Equal(t, 3, entries[0].FinalScore)
}

func TestBuild_TieBreaks(t *testing.T) {
	cfg := schema.DefaultEngineConfig()
	posts := []schema.Post{
		post("zed", time.Hour, 10, 0, 0),
		post("bob", time.Hour, 10, 0, 0),
		post("amy", 2*time.Hour, 10, 0, 0),
	}
	entries := Build(arena, posts, nil, cfg)
	ids := []string{entries[0].AccountID, entries[1].AccountID, entries[2].AccountID}
	assert.Equal(t, []string{"bob", "zed", "amy"}, ids)

	again := Build(arena, posts, nil, cfg)
	assert.Equal(t, entries, again)
}

func TestTop(t *testing.T) {
	entries := []schema.LeaderboardEntry{{AccountID: "a"}, {AccountID: "b"}, {AccountID: "c"}}
	assert.Len(t, Top(entries, 2), 2)
	assert.Len(t, Top(entries, 0), 3)
	assert.Len(t, Top(entries, 10), 3)
}
