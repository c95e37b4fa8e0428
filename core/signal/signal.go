// Package signal computes the per-creator Signal Score and Trust Band.
package signal

import (
	"sort"
	"time"

	"github.com/huangsam/signalboard/core/algo"
	"github.com/huangsam/signalboard/schema"
)

// Authenticity carries the authority inputs of the scored account.
// A nil *Authenticity means no authority data exists and is neutral.
type Authenticity struct {
	BotRisk         float64
	AudienceOrganic float64 // share of the audience that looks organic, in [0, 1]
	IsSmart         bool
}

// AuthenticityFrom derives the signal inputs from an authority snapshot.
func AuthenticityFrom(a schema.AuthorityScore) *Authenticity {
	return &Authenticity{BotRisk: a.BotRisk, AudienceOrganic: a.AudienceOrganic, IsSmart: a.IsSmart}
}

// AuthenticityMap converts authority snapshots keyed by account id.
func AuthenticityMap(scores map[string]schema.AuthorityScore) map[string]*Authenticity {
	out := make(map[string]*Authenticity, len(scores))
	for id, a := range scores {
		out[id] = AuthenticityFrom(a)
	}
	return out
}

// ComputeSignalScore scores one (account, project, window) from its posts.
// Posts outside the window ending at now are ignored. An empty set yields
// score 0 and band D.
func ComputeSignalScore(posts []schema.Post, auth *Authenticity, cfg schema.EngineConfig, window schema.Window, now time.Time) schema.SignalResult {
	res := schema.SignalResult{Window: window, Band: schema.BandD, Breakdown: map[schema.BreakdownKey]float64{}}
	if len(posts) > 0 {
		res.AccountID = posts[0].AuthorID
		res.ProjectID = posts[0].ProjectID
	}

	halfLife := cfg.HalfLife(window)
	start := now.Add(-window.Duration())

	rawTotal, dupLoss, sentimentShift := 0.0, 0.0, 0.0
	for _, p := range posts {
		if p.CreatedAt.Before(start) || p.CreatedAt.After(now) {
			continue
		}
		res.PostCount++

		ageHours := now.Sub(p.CreatedAt).Hours()
		weighted := algo.EngagementLog(p.Likes, p.Replies, p.Reposts) *
			algo.ContentTypeWeight(cfg.Decay.ContentWeights, p.ContentType) *
			algo.RecencyWeight(ageHours, halfLife)

		if p.IsDuplicate {
			dupLoss += weighted * (1 - cfg.Signal.DuplicateFactor)
			weighted *= cfg.Signal.DuplicateFactor
		}

		sentiment := 1.0
		if p.Sentiment != nil {
			sentiment = algo.Clamp(1+cfg.Signal.SentimentGain*(*p.Sentiment), cfg.Signal.Sentiment.Floor, cfg.Signal.Sentiment.Cap)
		}
		sentimentShift += weighted * (sentiment - 1)
		rawTotal += weighted * sentiment
	}

	if res.PostCount == 0 {
		return res
	}
	res.HasData = true

	authMult := authenticityMultiplier(auth, cfg.Signal)
	rawTotal *= authMult

	res.Score = saturate(rawTotal, cfg.Signal.SaturationK)
	res.Band = TrustBandFor(res.Score, cfg.Signal)
	res.Breakdown[schema.BreakdownEngagement] = rawTotal
	res.Breakdown[schema.BreakdownDuplicate] = dupLoss
	res.Breakdown[schema.BreakdownSentiment] = sentimentShift
	res.Breakdown[schema.BreakdownAuthenticity] = authMult
	return res
}

// TrustBandFor maps a score to its band using the configured thresholds.
func TrustBandFor(score float64, cfg schema.SignalConfig) schema.TrustBand {
	switch {
	case score >= cfg.BandA:
		return schema.BandA
	case score >= cfg.BandB:
		return schema.BandB
	case score >= cfg.BandC:
		return schema.BandC
	default:
		return schema.BandD
	}
}

// ScoreAll groups posts by (author, project) and scores every pair.
// Results are sorted by score descending, then account and project id.
func ScoreAll(posts []schema.Post, authority map[string]*Authenticity, cfg schema.EngineConfig, window schema.Window, now time.Time) []schema.SignalResult {
	type pair struct{ account, project string }
	groups := make(map[pair][]schema.Post)
	for _, p := range posts {
		k := pair{p.AuthorID, p.ProjectID}
		groups[k] = append(groups[k], p)
	}

	results := make([]schema.SignalResult, 0, len(groups))
	for k, group := range groups {
		r := ComputeSignalScore(group, authority[k.account], cfg, window, now)
		if !r.HasData {
			continue
		}
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].AccountID != results[j].AccountID {
			return results[i].AccountID < results[j].AccountID
		}
		return results[i].ProjectID < results[j].ProjectID
	})
	return results
}

// BandsByAccount scores each author across all projects and returns their band.
// Used to grade engagers for the Smart-Followers estimate.
func BandsByAccount(posts []schema.Post, authority map[string]*Authenticity, cfg schema.EngineConfig, window schema.Window, now time.Time) map[string]schema.TrustBand {
	byAuthor := make(map[string][]schema.Post)
	for _, p := range posts {
		byAuthor[p.AuthorID] = append(byAuthor[p.AuthorID], p)
	}
	out := make(map[string]schema.TrustBand, len(byAuthor))
	for id, ps := range byAuthor {
		out[id] = ComputeSignalScore(ps, authority[id], cfg, window, now).Band
	}
	return out
}

func authenticityMultiplier(auth *Authenticity, cfg schema.SignalConfig) float64 {
	if auth == nil {
		return 1.0
	}
	v := (1 - algo.Clamp(auth.BotRisk, 0, 1)) * algo.Clamp(auth.AudienceOrganic, 0, 1)
	if auth.IsSmart {
		v += cfg.SmartBonus
	}
	return algo.Clamp(v, cfg.Authenticity.Floor, cfg.Authenticity.Cap)
}

// saturate maps [0, inf) onto [0, 100) with half-saturation at k.
func saturate(raw, k float64) float64 {
	if raw <= 0 {
		return 0
	}
	return 100 * raw / (raw + k)
}
