// Package authority computes graph authority, bot risk and Smart-Followers.
package authority

import (
	"math"

	"github.com/huangsam/signalboard/core/algo"
	"github.com/huangsam/signalboard/schema"
)

// GraphStats are the degree counts the bot-risk heuristics see for an account.
type GraphStats struct {
	Following int // out-degree within the tracked graph
	Followers int // max of reported followers and graph in-degree
}

// BotRiskFunc estimates the probability an account is automated or inauthentic.
// Implementations must return a value in [0, 1].
type BotRiskFunc func(a schema.Account, stats GraphStats, cfg schema.AuthorityConfig) float64

// Option customizes ComputeAuthority.
type Option func(*options)

type options struct {
	botRisk BotRiskFunc
	step    algo.StepFunc
}

// WithBotRisk replaces the default bot-risk heuristics.
func WithBotRisk(fn BotRiskFunc) Option {
	return func(o *options) { o.botRisk = fn }
}

// WithStep replaces the PageRank iteration step.
func WithStep(step algo.StepFunc) Option {
	return func(o *options) { o.step = step }
}

// Result is the outcome of one authority run.
type Result struct {
	Scores     map[string]schema.AuthorityScore
	Graph      *algo.Graph
	Iterations int
	Warning    *schema.NonConvergenceWarning // nil when PageRank converged
	threshold  float64
}

// ComputeAuthority runs PageRank over the tracked, active accounts and derives
// bot risk, authority score, smart classification and exact Smart-Followers.
// Smart-Followers is only set for graph-covered accounts; callers fill the rest
// with EstimateSmartFollowers.
func ComputeAuthority(accounts []schema.Account, edges []schema.FollowEdge, cfg schema.EngineConfig, date string, opts ...Option) Result {
	o := options{botRisk: DefaultBotRisk}
	for _, opt := range opts {
		opt(&o)
	}
	acfg := cfg.Authority

	byID := make(map[string]schema.Account, len(accounts))
	ids := make([]string, 0, len(accounts))
	for _, a := range accounts {
		if !a.IsTracked || a.Deactivated {
			continue
		}
		byID[a.ID] = a
		ids = append(ids, a.ID)
	}
	pairs := make([][2]string, 0, len(edges))
	for _, e := range edges {
		pairs = append(pairs, [2]string{e.Src, e.Dst})
	}
	g := algo.NewGraph(ids, pairs)

	pr := algo.PageRank(g, algo.PageRankOptions{
		Damping:       acfg.Damping,
		Tolerance:     acfg.Tolerance,
		MaxIterations: acfg.MaxIterations,
		Step:          o.step,
	})

	res := Result{
		Scores:     make(map[string]schema.AuthorityScore, g.Len()),
		Graph:      g,
		Iterations: pr.Iterations,
		threshold:  acfg.BotRiskThreshold,
	}
	if !pr.Converged {
		res.Warning = &schema.NonConvergenceWarning{Iterations: pr.Iterations, Delta: pr.Delta, Tolerance: acfg.Tolerance}
	}

	n := float64(g.Len())
	for i, id := range g.IDs {
		stats := GraphStats{
			Following: len(g.OutAdj[i]),
			Followers: max(byID[id].FollowerCount, len(g.InAdj[i])),
		}
		risk := algo.Clamp(o.botRisk(byID[id], stats, acfg), 0, 1)
		raw := algo.SafeNonNegative(pr.Ranks[i] * n)
		res.Scores[id] = schema.AuthorityScore{
			AccountID:    id,
			Date:         date,
			AuthorityRaw: raw,
			BotRisk:      risk,
			Score:        raw * (1 - risk),
		}
	}

	markSmart(&res, acfg)

	for i, id := range g.IDs {
		s := res.Scores[id]
		s.AudienceOrganic = res.AudienceOrganic(id)
		if byID[id].GraphCovered {
			s.SmartFollowers = res.exactSmartFollowers(i)
		}
		res.Scores[id] = s
	}
	return res
}

// markSmart flags the top accounts by authority score. The cutoff is the more
// restrictive of SmartTopN and SmartTopPercent of the graph.
func markSmart(res *Result, cfg schema.AuthorityConfig) {
	n := res.Graph.Len()
	limit := min(cfg.SmartTopN, int(math.Ceil(float64(n)*cfg.SmartTopPercent/100)))
	if limit <= 0 {
		return
	}

	eligible := make([]algo.Scored, 0, n)
	for id, s := range res.Scores {
		if s.BotRisk >= cfg.BotRiskThreshold || s.Score <= 0 {
			continue
		}
		eligible = append(eligible, algo.Scored{ID: id, Score: s.Score})
	}
	for _, top := range algo.RankScored(eligible, limit) {
		s := res.Scores[top.ID]
		s.IsSmart = true
		res.Scores[top.ID] = s
	}
}

func (r *Result) exactSmartFollowers(idx int) schema.Exact {
	followers := r.Graph.InAdj[idx]
	if len(followers) == 0 {
		return schema.Exact{}
	}
	smart := 0
	for _, f := range followers {
		if r.Scores[r.Graph.IDs[f]].IsSmart {
			smart++
		}
	}
	return schema.Exact{N: smart, Percent: 100 * float64(smart) / float64(len(followers))}
}

// SmartSet returns the ids of all smart accounts.
func (r *Result) SmartSet() map[string]bool {
	out := make(map[string]bool)
	for id, s := range r.Scores {
		if s.IsSmart {
			out[id] = true
		}
	}
	return out
}

// AudienceOrganic is the share of an account's graph followers whose bot risk
// is below the threshold. Accounts with no known followers are fully organic.
func (r *Result) AudienceOrganic(accountID string) float64 {
	idx, ok := r.Graph.Index[accountID]
	if !ok || len(r.Graph.InAdj[idx]) == 0 {
		return 1.0
	}
	organic := 0
	for _, f := range r.Graph.InAdj[idx] {
		if r.Scores[r.Graph.IDs[f]].BotRisk < r.threshold {
			organic++
		}
	}
	return float64(organic) / float64(len(r.Graph.InAdj[idx]))
}

// DefaultBotRisk blends a new-account signal with a following/follower ratio
// outlier signal, capped at BotRiskCap so it discounts rather than filters.
func DefaultBotRisk(a schema.Account, stats GraphStats, cfg schema.AuthorityConfig) float64 {
	ageRisk := 0.0
	if cfg.NewAccountDays > 0 && a.AccountAgeDays < cfg.NewAccountDays {
		ageRisk = 1 - float64(max(a.AccountAgeDays, 0))/float64(cfg.NewAccountDays)
	}

	ratioRisk := 0.0
	ratio := float64(stats.Following) / float64(max(stats.Followers, 1))
	if ratio > cfg.FollowRatioThreshold {
		ratioRisk = algo.Clamp((ratio-cfg.FollowRatioThreshold)/cfg.FollowRatioThreshold, 0, 1)
	}

	return algo.Clamp(cfg.AgeRiskWeight*ageRisk+cfg.RatioRiskWeight*ratioRisk, 0, cfg.BotRiskCap)
}
