// Package leaderboard merges auto-tracked engagement with arena participants
// into a ranked list.
package leaderboard

import (
	"math"
	"sort"
	"time"

	"github.com/huangsam/signalboard/core/algo"
	"github.com/huangsam/signalboard/schema"
)

type standing struct {
	accountID     string
	autoPoints    float64
	firstActivity time.Time
	participant   *schema.Participant
}

// Build ranks everyone active in an arena. Base points are the linear
// engagement earned on the arena project's posts inside the time box. Approved
// participants add their manual adjustment and, when follow-verified, get the
// verified multiplier. Other participant states rank as auto-tracked accounts.
func Build(arena schema.Arena, posts []schema.Post, participants []schema.Participant, cfg schema.EngineConfig) []schema.LeaderboardEntry {
	standings := make(map[string]*standing)
	get := func(id string) *standing {
		s, ok := standings[id]
		if !ok {
			s = &standing{accountID: id}
			standings[id] = s
		}
		return s
	}

	for _, p := range posts {
		if p.AuthorID == "" || p.ProjectID != arena.ProjectID || !arena.Contains(p.CreatedAt) {
			continue
		}
		s := get(p.AuthorID)
		s.autoPoints += algo.LinearEngagement(p.Likes, p.Replies, p.Reposts)
		if s.firstActivity.IsZero() || p.CreatedAt.Before(s.firstActivity) {
			s.firstActivity = p.CreatedAt
		}
	}

	for i := range participants {
		p := &participants[i]
		if !approvedIn(p, arena) {
			continue
		}
		s := get(p.AccountID)
		if s.participant != nil {
			continue // first approved row wins
		}
		s.participant = p
		if s.firstActivity.IsZero() {
			s.firstActivity = p.JoinedAt
		}
	}

	entries := make([]schema.LeaderboardEntry, 0, len(standings))
	for _, s := range standings {
		entries = append(entries, s.entry(arena.ID, cfg.Leaderboard))
	}
	sortEntries(entries)
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// approvedIn reports whether a participant counts toward this arena's
// adjustment and multiplier pools.
func approvedIn(p *schema.Participant, arena schema.Arena) bool {
	if p.State != schema.ApprovedState || p.Deactivated {
		return false
	}
	if p.ArenaID != "" {
		return p.ArenaID == arena.ID
	}
	return p.ProjectID == arena.ProjectID
}

func (s *standing) entry(arenaID string, cfg schema.LeaderboardConfig) schema.LeaderboardEntry {
	base := s.autoPoints
	multiplier := 1.0
	if s.participant != nil {
		base += float64(s.participant.ManualPointAdjustment)
		if s.participant.FollowVerified {
			multiplier = cfg.VerifiedMultiplier
		}
	}
	return schema.LeaderboardEntry{
		AccountID:     s.accountID,
		ArenaID:       arenaID,
		BasePoints:    int(math.Floor(base)),
		Multiplier:    multiplier,
		FinalScore:    int(math.Floor(base * multiplier)),
		FirstActivity: s.firstActivity,
		IsParticipant: s.participant != nil,
	}
}

func sortEntries(entries []schema.LeaderboardEntry) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.FinalScore != b.FinalScore {
			return a.FinalScore > b.FinalScore
		}
		if !a.FirstActivity.Equal(b.FirstActivity) {
			return a.FirstActivity.Before(b.FirstActivity)
		}
		return a.AccountID < b.AccountID
	})
}

// Top returns at most limit entries. A non-positive limit returns all.
func Top(entries []schema.LeaderboardEntry, limit int) []schema.LeaderboardEntry {
	if limit <= 0 || limit >= len(entries) {
		return entries
	}
	return entries[:limit]
}
