package authority

import (
	"slices"
	"sort"
	"time"

	"github.com/huangsam/signalboard/schema"
)

// EstimateSmartFollowers approximates Smart-Followers for an account outside
// graph coverage from the accounts that engaged with its posts. An engager is
// high-trust when it is smart or its trust band is one of EstimateBands.
func EstimateSmartFollowers(account schema.Account, engagements []schema.Engagement, bands map[string]schema.TrustBand, smart map[string]bool, cfg schema.AuthorityConfig) schema.Estimate {
	distinct := make(map[string]struct{})
	high := 0
	for _, e := range engagements {
		if e.TargetAccountID != account.ID || e.EngagerID == account.ID {
			continue
		}
		if _, seen := distinct[e.EngagerID]; seen {
			continue
		}
		distinct[e.EngagerID] = struct{}{}
		if smart[e.EngagerID] || slices.Contains(cfg.EstimateBands, bands[e.EngagerID]) {
			high++
		}
	}
	if len(distinct) == 0 {
		return schema.Estimate{}
	}
	denom := max(account.FollowerCount, len(distinct))
	return schema.Estimate{N: high, Percent: 100 * float64(high) / float64(denom)}
}

// SmartFollowersAt reads the Smart-Followers value as of a date from an
// account's snapshot history, with 7 and 30 day deltas. The prior snapshot for
// a delta is the newest one at or before asOf minus the period, but no older
// than DeltaToleranceDays beyond it. It returns false when no snapshot exists
// at or before asOf. A delta is only taken between two exact counts or two
// estimates; mixing them leaves the delta nil.
func SmartFollowersAt(history []schema.AuthorityScore, asOf time.Time, cfg schema.AuthorityConfig) (schema.SmartFollowersReport, bool) {
	dated := make([]datedScore, 0, len(history))
	for _, h := range history {
		d, err := time.Parse(schema.SnapshotDateFormat, h.Date)
		if err != nil || h.SmartFollowers == nil {
			continue
		}
		dated = append(dated, datedScore{date: d, score: h})
	}
	sort.Slice(dated, func(i, j int) bool { return dated[i].date.Before(dated[j].date) })

	asOfDay := truncateDay(asOf)
	current, ok := latestAtOrBefore(dated, asOfDay, time.Time{})
	if !ok {
		return schema.SmartFollowersReport{}, false
	}

	report := schema.SmartFollowersReport{
		AccountID: current.score.AccountID,
		AsOf:      asOfDay.Format(schema.SnapshotDateFormat),
		Current:   current.score.SmartFollowers,
	}
	tolerance := time.Duration(cfg.DeltaToleranceDays) * 24 * time.Hour
	for _, period := range []struct {
		days int
		dst  **int
	}{
		{7, &report.Delta7d},
		{30, &report.Delta30d},
	} {
		target := asOfDay.AddDate(0, 0, -period.days)
		prior, found := latestAtOrBefore(dated, target, target.Add(-tolerance))
		if !found || !sameVariant(current.score.SmartFollowers, prior.score.SmartFollowers) {
			continue
		}
		delta := current.score.SmartFollowers.Count() - prior.score.SmartFollowers.Count()
		*period.dst = &delta
	}
	return report, true
}

func sameVariant(a, b schema.SmartFollowers) bool {
	switch a.(type) {
	case schema.Exact:
		_, ok := b.(schema.Exact)
		return ok
	case schema.Estimate:
		_, ok := b.(schema.Estimate)
		return ok
	}
	return false
}

type datedScore struct {
	date  time.Time
	score schema.AuthorityScore
}

// latestAtOrBefore scans a date-sorted slice for the newest entry in [floor, at].
// A zero floor means unbounded.
func latestAtOrBefore(dated []datedScore, at, floor time.Time) (datedScore, bool) {
	for i := len(dated) - 1; i >= 0; i-- {
		d := dated[i].date
		if d.After(at) {
			continue
		}
		if !floor.IsZero() && d.Before(floor) {
			return datedScore{}, false
		}
		return dated[i], true
	}
	return datedScore{}, false
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
