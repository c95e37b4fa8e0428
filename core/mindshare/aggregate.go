package mindshare

import (
	"sort"
	"time"

	"github.com/huangsam/signalboard/core/algo"
	"github.com/huangsam/signalboard/core/signal"
	"github.com/huangsam/signalboard/schema"
)

// Aggregate builds per-project attention from the posts inside the window
// ending at now. Engagement volume is linear engagement weighted by content
// type and recency, so a thread outweighs a repost with the same counts.
// Heat comes from an external feed and may name projects without posts.
func Aggregate(posts []schema.Post, window schema.Window, cfg schema.EngineConfig, now time.Time, heat map[string]float64) []schema.ProjectAttention {
	type acc struct {
		attention schema.ProjectAttention
		creators  map[string]struct{}
	}
	byProject := make(map[string]*acc)
	get := func(id string) *acc {
		a, ok := byProject[id]
		if !ok {
			a = &acc{attention: schema.ProjectAttention{ProjectID: id}, creators: make(map[string]struct{})}
			byProject[id] = a
		}
		return a
	}

	start := now.Add(-window.Duration())
	halfLife := cfg.HalfLife(window)
	for _, p := range posts {
		if p.ProjectID == "" || p.CreatedAt.Before(start) || p.CreatedAt.After(now) {
			continue
		}
		a := get(p.ProjectID)
		a.attention.PostCount++
		a.creators[p.AuthorID] = struct{}{}
		a.attention.TotalEngagement += algo.LinearEngagement(p.Likes, p.Replies, p.Reposts) *
			algo.ContentTypeWeight(cfg.Decay.ContentWeights, p.ContentType) *
			algo.RecencyWeight(now.Sub(p.CreatedAt).Hours(), halfLife)
	}
	for id, h := range heat {
		if h > 0 && id != "" {
			get(id).attention.Heat = h
		}
	}

	out := make([]schema.ProjectAttention, 0, len(byProject))
	for _, a := range byProject {
		a.attention.UniqueCreatorCount = len(a.creators)
		out = append(out, a.attention)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProjectID < out[j].ProjectID })
	return out
}

// Qualities derives the quality signals of each project from its posts in the
// window and the authority of their creators. Creators without authority data
// are left out of the authority means; a project with none gets neutral values.
func Qualities(posts []schema.Post, authority map[string]*signal.Authenticity, window schema.Window, cfg schema.EngineConfig, now time.Time) map[string]Quality {
	type acc struct {
		posts, dups       int
		sentimentSum      float64
		sentimentN        int
		creators          map[string]struct{}
		authSum, audSum   float64
		authN, smartCount int
	}
	byProject := make(map[string]*acc)
	start := now.Add(-window.Duration())

	for _, p := range posts {
		if p.ProjectID == "" || p.CreatedAt.Before(start) || p.CreatedAt.After(now) {
			continue
		}
		a, ok := byProject[p.ProjectID]
		if !ok {
			a = &acc{creators: make(map[string]struct{})}
			byProject[p.ProjectID] = a
		}
		a.posts++
		if p.IsDuplicate {
			a.dups++
		}
		if p.Sentiment != nil {
			a.sentimentSum += algo.Clamp(*p.Sentiment, -1, 1)
			a.sentimentN++
		}
		if _, seen := a.creators[p.AuthorID]; seen {
			continue
		}
		a.creators[p.AuthorID] = struct{}{}
		if auth := authority[p.AuthorID]; auth != nil {
			a.authSum += 1 - algo.Clamp(auth.BotRisk, 0, 1)
			a.audSum += algo.Clamp(auth.AudienceOrganic, 0, 1)
			a.authN++
			if auth.IsSmart {
				a.smartCount++
			}
		}
	}

	m := cfg.Mindshare
	out := make(map[string]Quality, len(byProject))
	for id, a := range byProject {
		q := NeutralQuality()
		if a.posts > 0 {
			q.Originality = 1 - float64(a.dups)/float64(a.posts)
		}
		if a.sentimentN > 0 {
			q.Sentiment = 1 + m.SentimentGain*a.sentimentSum/float64(a.sentimentN)
		}
		if a.authN > 0 {
			q.CreatorAuth = a.authSum / float64(a.authN)
			q.AudienceAuth = a.audSum / float64(a.authN)
			q.SmartBoost = 1 + m.SmartBoostGain*float64(a.smartCount)/float64(len(a.creators))
		}
		out[id] = q
	}
	return out
}
