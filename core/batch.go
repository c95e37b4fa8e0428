package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/signalboard/core/authority"
	"github.com/huangsam/signalboard/core/leaderboard"
	"github.com/huangsam/signalboard/core/mindshare"
	"github.com/huangsam/signalboard/core/signal"
	"github.com/huangsam/signalboard/internal/contract"
	"github.com/huangsam/signalboard/internal/telemetry"
	"github.com/huangsam/signalboard/schema"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Batch kinds recorded on runs, reports and metrics.
const (
	AuthorityKind   = "authority"
	MindshareKind   = "mindshare"
	LeaderboardKind = "leaderboard"
)

// ErrUnknownArena is returned for leaderboard requests naming a missing arena.
var ErrUnknownArena = errors.New("unknown arena")

// normalize is swapped in tests to force invariant violations.
var normalize = mindshare.FromAdjusted

// Env bundles the collaborators a batch run reports to.
// A nil Store skips persistence; a nil Metrics records nothing.
type Env struct {
	Store   contract.SnapshotStore
	Logger  logrus.FieldLogger
	Metrics *telemetry.Metrics
}

// AuthorityRun is the outcome of RunAuthorityBatch.
type AuthorityRun struct {
	Report *schema.BatchReport
	Scores map[string]schema.AuthorityScore
}

// MindshareRun is the outcome of RunMindshareBatch.
type MindshareRun struct {
	Report    *schema.BatchReport
	Snapshots map[schema.Window][]schema.MindshareSnapshot
}

// LeaderboardRun is the outcome of BuildLeaderboards.
type LeaderboardRun struct {
	Report  *schema.BatchReport
	Entries map[string][]schema.LeaderboardEntry
}

// unit is one independent piece of batch work.
type unit struct {
	name string
	fn   func(ctx context.Context) error
}

// run tracks one batch invocation from BeginRun to EndRun.
type run struct {
	ctx     context.Context
	env     Env
	report  *schema.BatchReport
	start   time.Time
	tracked bool
	mu      sync.Mutex
}

// beginRun records the run in the store when there is one and attaches the
// run id and logger to the context.
func beginRun(ctx context.Context, env Env, kind string, cfg *contract.Config) *run {
	r := &run{env: env, start: time.Now()}
	if env.Logger == nil {
		r.env.Logger = logrus.StandardLogger()
	}

	runID := ""
	if env.Store != nil {
		params := map[string]any{
			"workers": cfg.Workers,
			"windows": cfg.Windows,
			"now":     cfg.Now.Format(contract.DateTimeFormat),
			"engine":  cfg.Engine,
		}
		id, err := env.Store.BeginRun(ctx, kind, cfg.Date, params)
		if err != nil {
			r.env.Logger.WithError(err).Warn("batch run tracking initialization failed")
		} else {
			runID, r.tracked = id, true
		}
	}
	if runID == "" {
		runID = uuid.NewString()
	}

	r.ctx = withRunID(withLogger(ctx, r.env.Logger), runID)
	r.report = &schema.BatchReport{RunID: runID, Kind: kind, Date: cfg.Date}
	loggerFrom(r.ctx).WithFields(logrus.Fields{"kind": kind, "date": cfg.Date}).Info("batch run started")
	return r
}

// runUnits runs units through a bounded pool. A failing unit is recorded in
// the report and never cancels the others.
func (r *run) runUnits(workers int, units []unit) {
	var g errgroup.Group
	g.SetLimit(max(workers, 1))
	for _, u := range units {
		g.Go(func() error {
			start := time.Now()
			err := r.ctx.Err()
			if err == nil {
				err = u.fn(r.ctx)
			}
			r.env.Metrics.ObserveUnit(r.report.Kind, time.Since(start))
			if err != nil {
				r.fail(u.name, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	r.mu.Lock()
	r.report.Units += len(units)
	r.mu.Unlock()
}

func (r *run) fail(name string, err error) {
	r.mu.Lock()
	r.report.Failed = append(r.report.Failed, schema.UnitError{Unit: name, Err: err})
	r.mu.Unlock()

	r.env.Metrics.IncFailedUnit(r.report.Kind)
	loggerFrom(r.ctx).WithField("unit", name).WithError(err).Error("batch unit failed")
}

func (r *run) warn(msg string) {
	r.mu.Lock()
	r.report.Warnings = append(r.report.Warnings, msg)
	r.mu.Unlock()
	loggerFrom(r.ctx).Warn(msg)
}

// finish closes the run record and stamps the duration.
func (r *run) finish() *schema.BatchReport {
	sort.Slice(r.report.Failed, func(i, j int) bool { return r.report.Failed[i].Unit < r.report.Failed[j].Unit })
	r.report.Duration = time.Since(r.start)

	if r.tracked {
		// The run context may already be cancelled; the record still needs closing.
		if err := r.env.Store.EndRun(context.WithoutCancel(r.ctx), r.report.RunID, r.report.Units, len(r.report.Failed)); err != nil {
			loggerFrom(r.ctx).WithError(err).Warn("failed to finalize batch run tracking")
		}
	}
	loggerFrom(r.ctx).WithFields(logrus.Fields{
		"units":    r.report.Units,
		"failed":   len(r.report.Failed),
		"duration": r.report.Duration.String(),
	}).Info("batch run finished")
	return r.report
}

// RunAuthorityBatch computes authority and Smart-Followers for cfg.Date and
// upserts the snapshots. Configuration errors fail before anything is written.
func RunAuthorityBatch(ctx context.Context, cfg *contract.Config, ds *schema.Dataset, env Env) (*AuthorityRun, error) {
	if err := cfg.Engine.Validate(); err != nil {
		return nil, fmt.Errorf("authority batch: %w", err)
	}

	r := beginRun(ctx, env, AuthorityKind, cfg)
	out := &AuthorityRun{Report: r.report}
	r.runUnits(1, []unit{{
		name: AuthorityKind + "/" + cfg.Date,
		fn: func(ctx context.Context) error {
			scores, warning := ComputeAuthorityScores(cfg, ds)
			if warning != nil {
				r.warn(warning.String())
				env.Metrics.IncNonConvergence()
			}
			out.Scores = scores
			if env.Store == nil {
				return nil
			}
			if err := env.Store.UpsertAuthority(ctx, SortedAuthority(scores)); err != nil {
				return fmt.Errorf("upserting authority snapshots: %w", err)
			}
			env.Metrics.AddSnapshots(AuthorityKind, len(scores))
			return nil
		},
	}})
	r.finish()
	return out, nil
}

// ComputeAuthorityScores runs the authority engine over the dataset and fills
// Smart-Followers estimates for accounts outside graph coverage.
func ComputeAuthorityScores(cfg *contract.Config, ds *schema.Dataset) (map[string]schema.AuthorityScore, *schema.NonConvergenceWarning) {
	res := authority.ComputeAuthority(ds.Accounts, ds.Edges, cfg.Engine, cfg.Date)
	fillEstimates(res.Scores, res.SmartSet(), ds, cfg)
	return res.Scores, res.Warning
}

// fillEstimates grades engagers by their 30d trust band and estimates
// Smart-Followers for every account still missing a value.
func fillEstimates(scores map[string]schema.AuthorityScore, smart map[string]bool, ds *schema.Dataset, cfg *contract.Config) {
	accounts := ds.AccountByID()
	bands := signal.BandsByAccount(ds.Posts, signal.AuthenticityMap(scores), cfg.Engine, schema.Window30d, cfg.Now)

	byTarget := make(map[string][]schema.Engagement)
	for _, e := range ds.Engagements {
		if e.At.After(cfg.Now) {
			continue
		}
		byTarget[e.TargetAccountID] = append(byTarget[e.TargetAccountID], e)
	}

	for id, s := range scores {
		if s.SmartFollowers != nil {
			continue
		}
		s.SmartFollowers = authority.EstimateSmartFollowers(accounts[id], byTarget[id], bands, smart, cfg.Engine.Authority)
		scores[id] = s
	}
}

// SortedAuthority orders scores by authority score descending, then account id.
func SortedAuthority(scores map[string]schema.AuthorityScore) []schema.AuthorityScore {
	out := make([]schema.AuthorityScore, 0, len(scores))
	for _, s := range scores {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].AccountID < out[j].AccountID
	})
	return out
}

// RunMindshareBatch normalizes mindshare for every configured window, one
// pool unit per window. When auth is nil the authority snapshot for the date
// is loaded from the store; without one the quality stages stay neutral.
func RunMindshareBatch(ctx context.Context, cfg *contract.Config, ds *schema.Dataset, env Env, auth map[string]schema.AuthorityScore) (*MindshareRun, error) {
	if err := cfg.Engine.Validate(); err != nil {
		return nil, fmt.Errorf("mindshare batch: %w", err)
	}

	r := beginRun(ctx, env, MindshareKind, cfg)
	if auth == nil {
		auth = loadAuthority(r.ctx, env.Store, cfg.Date)
	}
	authMap := signal.AuthenticityMap(auth)

	out := &MindshareRun{Report: r.report, Snapshots: make(map[schema.Window][]schema.MindshareSnapshot, len(cfg.Windows))}
	var mu sync.Mutex

	units := make([]unit, 0, len(cfg.Windows))
	for _, w := range cfg.Windows {
		units = append(units, unit{
			name: MindshareKind + "/" + string(w),
			fn: func(ctx context.Context) error {
				snaps, err := MindshareForWindow(ctx, cfg, ds, authMap, env.Store, w)
				if err != nil {
					var inv *schema.InvariantViolationError
					if errors.As(err, &inv) {
						env.Metrics.IncInvariantViolation(string(w))
					}
					return err
				}
				if env.Store != nil {
					if err := env.Store.UpsertMindshare(ctx, snaps); err != nil {
						return fmt.Errorf("upserting mindshare snapshots: %w", err)
					}
					env.Metrics.AddSnapshots(MindshareKind, len(snaps))
				}
				mu.Lock()
				out.Snapshots[w] = snaps
				mu.Unlock()
				return nil
			},
		})
	}
	r.runUnits(cfg.Workers, units)
	r.finish()
	return out, nil
}

// MindshareForWindow aggregates, adjusts and normalizes one window and
// attaches deltas against the previous stored snapshot.
func MindshareForWindow(ctx context.Context, cfg *contract.Config, ds *schema.Dataset, authMap map[string]*signal.Authenticity, store contract.SnapshotStore, w schema.Window) ([]schema.MindshareSnapshot, error) {
	attention := mindshare.Aggregate(ds.Posts, w, cfg.Engine, cfg.Now, ds.Heat[w])
	attention = append(attention, ds.Attention[w]...)
	quality := mindshare.Qualities(ds.Posts, authMap, w, cfg.Engine, cfg.Now)
	adjusted := mindshare.Adjust(attention, quality, cfg.Engine)

	bps, err := normalize(adjusted, w, cfg.Date)
	if err != nil {
		return nil, err
	}

	var previous map[string]int
	if store != nil {
		previous, err = store.PreviousMindshare(ctx, w, cfg.Date)
		if err != nil {
			return nil, fmt.Errorf("loading previous mindshare: %w", err)
		}
	}
	return mindshare.Snapshots(bps, adjusted, previous, w, cfg.Date), nil
}

// loadAuthority reads the authority snapshot for date. Missing data is not an
// error; callers fall back to neutral multipliers.
func loadAuthority(ctx context.Context, store contract.SnapshotStore, date string) map[string]schema.AuthorityScore {
	if store == nil {
		return nil
	}
	auth, err := store.AuthorityAt(ctx, date)
	if err != nil {
		loggerFrom(ctx).WithError(err).Warn("authority snapshots unavailable, using neutral multipliers")
		return nil
	}
	if len(auth) == 0 {
		loggerFrom(ctx).WithField("date", date).Warn("no authority snapshots, using neutral multipliers")
	}
	return auth
}

// ComputeSignals scores every (account, project) pair in the configured
// window, narrowed by cfg.AccountID and cfg.ProjectID when set.
func ComputeSignals(ctx context.Context, cfg *contract.Config, ds *schema.Dataset, auth map[string]schema.AuthorityScore) ([]schema.SignalResult, error) {
	if err := cfg.Engine.Validate(); err != nil {
		return nil, fmt.Errorf("signal scoring: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	posts := filterPosts(ds.Posts, cfg.AccountID, cfg.ProjectID)
	return signal.ScoreAll(posts, signal.AuthenticityMap(auth), cfg.Engine, cfg.Window, cfg.Now), nil
}

func filterPosts(posts []schema.Post, accountID, projectID string) []schema.Post {
	if accountID == "" && projectID == "" {
		return posts
	}
	out := make([]schema.Post, 0, len(posts))
	for _, p := range posts {
		if accountID != "" && p.AuthorID != accountID {
			continue
		}
		if projectID != "" && p.ProjectID != projectID {
			continue
		}
		out = append(out, p)
	}
	return out
}

// BuildLeaderboards computes one leaderboard per arena, each as its own pool
// unit. An empty arenaIDs means every arena in the dataset. Leaderboards are
// computed on read, so the run is not recorded in the store.
func BuildLeaderboards(ctx context.Context, cfg *contract.Config, ds *schema.Dataset, env Env, arenaIDs []string) (*LeaderboardRun, error) {
	if err := cfg.Engine.Validate(); err != nil {
		return nil, fmt.Errorf("leaderboard build: %w", err)
	}
	if len(arenaIDs) == 0 {
		for _, a := range ds.Arenas {
			arenaIDs = append(arenaIDs, a.ID)
		}
	}

	r := beginRun(ctx, Env{Logger: env.Logger, Metrics: env.Metrics}, LeaderboardKind, cfg)
	out := &LeaderboardRun{Report: r.report, Entries: make(map[string][]schema.LeaderboardEntry, len(arenaIDs))}
	var mu sync.Mutex

	units := make([]unit, 0, len(arenaIDs))
	for _, id := range arenaIDs {
		units = append(units, unit{
			name: LeaderboardKind + "/" + id,
			fn: func(context.Context) error {
				arena, ok := ds.ArenaByID(id)
				if !ok {
					return fmt.Errorf("arena '%s': %w", id, ErrUnknownArena)
				}
				entries := leaderboard.Build(arena, ds.Posts, ds.Participants, cfg.Engine)
				mu.Lock()
				out.Entries[id] = entries
				mu.Unlock()
				return nil
			},
		})
	}
	r.runUnits(cfg.Workers, units)
	r.finish()
	return out, nil
}

// RunAll runs authority for the date, then mindshare for every window using
// the fresh authority scores.
func RunAll(ctx context.Context, cfg *contract.Config, ds *schema.Dataset, env Env) ([]*schema.BatchReport, error) {
	authRun, err := RunAuthorityBatch(ctx, cfg, ds, env)
	if err != nil {
		return nil, err
	}
	auth := authRun.Scores
	if auth == nil {
		// authority unit failed; mindshare falls back to whatever is stored
		auth = loadAuthority(ctx, env.Store, cfg.Date)
	}
	msRun, err := RunMindshareBatch(ctx, cfg, ds, env, nonNil(auth))
	if err != nil {
		return []*schema.BatchReport{authRun.Report}, err
	}
	return []*schema.BatchReport{authRun.Report, msRun.Report}, nil
}

// nonNil keeps RunMindshareBatch from reloading the store for a known-empty map.
func nonNil(auth map[string]schema.AuthorityScore) map[string]schema.AuthorityScore {
	if auth == nil {
		return map[string]schema.AuthorityScore{}
	}
	return auth
}

// LookupSmartFollowers reads an account's Smart-Followers history from the
// store and returns the value as of cfg.Date with 7d and 30d deltas.
func LookupSmartFollowers(ctx context.Context, cfg *contract.Config, store contract.SnapshotStore, accountID string) (schema.SmartFollowersReport, bool, error) {
	asOf, err := time.Parse(schema.SnapshotDateFormat, cfg.Date)
	if err != nil {
		return schema.SmartFollowersReport{}, false, fmt.Errorf("invalid snapshot date: %w", err)
	}
	if store == nil {
		return schema.SmartFollowersReport{}, false, nil
	}
	from := asOf.AddDate(0, 0, -(30 + cfg.Engine.Authority.DeltaToleranceDays)).Format(schema.SnapshotDateFormat)
	history, err := store.AuthorityHistory(ctx, accountID, from, cfg.Date)
	if err != nil {
		return schema.SmartFollowersReport{}, false, fmt.Errorf("loading authority history: %w", err)
	}
	report, ok := authority.SmartFollowersAt(history, asOf, cfg.Engine.Authority)
	return report, ok, nil
}

// CurrentSmartFollowers computes the value from the dataset alone. Deltas
// stay nil because there is no history to compare against.
func CurrentSmartFollowers(cfg *contract.Config, ds *schema.Dataset, accountID string) (schema.SmartFollowersReport, bool) {
	scores, _ := ComputeAuthorityScores(cfg, ds)
	s, ok := scores[accountID]
	if !ok || s.SmartFollowers == nil {
		return schema.SmartFollowersReport{}, false
	}
	return schema.SmartFollowersReport{AccountID: accountID, AsOf: cfg.Date, Current: s.SmartFollowers}, true
}
