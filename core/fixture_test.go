package core

import (
	"time"

	"github.com/huangsam/signalboard/internal/contract"
	"github.com/huangsam/signalboard/schema"
)

var fixtureNow = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func testConfig() *contract.Config {
	return &contract.Config{
		Date:        "2026-03-01",
		Now:         fixtureNow,
		Window:      schema.Window7d,
		Windows:     schema.AllWindows,
		ResultLimit: 25,
		Workers:     2,
		Precision:   1,
		Output:      schema.JSONOut,
		LogLevel:    "error",
		Engine:      schema.DefaultEngineConfig(),
	}
}

func testDataset() *schema.Dataset {
	sentiment := 0.5
	at := func(hoursAgo int) time.Time { return fixtureNow.Add(-time.Duration(hoursAgo) * time.Hour) }
	return &schema.Dataset{
		Accounts: []schema.Account{
			{ID: "alice", Handle: "@alice", AccountAgeDays: 900, FollowerCount: 4, IsTracked: true, GraphCovered: true},
			{ID: "bob", Handle: "@bob", AccountAgeDays: 400, FollowerCount: 2, IsTracked: true, GraphCovered: true},
			{ID: "carol", Handle: "@carol", AccountAgeDays: 300, FollowerCount: 1, IsTracked: true},
			{ID: "dave", Handle: "@dave", AccountAgeDays: 5, IsTracked: true},
		},
		Edges: []schema.FollowEdge{
			{Src: "bob", Dst: "alice"},
			{Src: "carol", Dst: "alice"},
			{Src: "dave", Dst: "alice"},
			{Src: "alice", Dst: "bob"},
			{Src: "carol", Dst: "bob"},
		},
		Posts: []schema.Post{
			{ID: "p1", AuthorID: "alice", ProjectID: "alpha", CreatedAt: at(6), Likes: 40, Replies: 8, Reposts: 5, ContentType: schema.ThreadContent, Sentiment: &sentiment},
			{ID: "p2", AuthorID: "bob", ProjectID: "beta", CreatedAt: at(30), Likes: 10, Replies: 1, Reposts: 1, ContentType: schema.MemeContent},
			{ID: "p3", AuthorID: "carol", ProjectID: "alpha", CreatedAt: at(100), Likes: 5, ContentType: schema.RepostContent},
			{ID: "p4", AuthorID: "dave", ProjectID: "gamma", CreatedAt: at(400), Likes: 3, ContentType: schema.ReplyContent},
		},
		Engagements: []schema.Engagement{
			{EngagerID: "alice", TargetAccountID: "carol", PostID: "p3", Kind: "reply", At: at(90)},
		},
		Participants: []schema.Participant{
			{AccountID: "bob", ProjectID: "beta", ArenaID: "spring", FollowVerified: true, State: schema.ApprovedState},
		},
		Arenas: []schema.Arena{
			{ID: "spring", ProjectID: "beta", StartsAt: fixtureNow.AddDate(0, 0, -10)},
		},
	}
}

func sumBps(snaps []schema.MindshareSnapshot) int {
	total := 0
	for _, s := range snaps {
		total += s.Bps
	}
	return total
}
