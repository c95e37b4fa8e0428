// Package core has batch orchestration and the command entry points over the engines.
package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/signalboard/internal/contract"
	"github.com/huangsam/signalboard/internal/dataset"
	"github.com/huangsam/signalboard/internal/outwriter"
	"github.com/huangsam/signalboard/internal/telemetry"
	"github.com/huangsam/signalboard/schema"
)

// ExecutorFunc defines the function signature for executing different commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error

// ErrNoSmartFollowers is returned when neither the store nor the dataset knows the account.
var ErrNoSmartFollowers = errors.New("no smart followers value for account")

// loadDataset is swapped in tests.
var loadDataset = dataset.Load

// writer is the shared output writer.
var writer = outwriter.NewOutWriter()

// ExecuteSignal scores every (account, project) pair of the dataset for the
// configured window and prints the ranked results.
func ExecuteSignal(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	ctx, cancel := withTimeout(ctx, cfg)
	defer cancel()

	ds, err := loadDataset(cfg.DataPath)
	if err != nil {
		return err
	}
	env := NewEnv(cfg, storeFrom(mgr))
	results, err := ComputeSignals(ctx, cfg, ds, AuthorityFor(ctx, cfg, ds, env))
	if err != nil {
		return err
	}
	return writer.WriteSignals(topN(results, cfg.ResultLimit), cfg, time.Since(start))
}

// AuthorityFor returns the stored authority snapshot for cfg.Date. When
// nothing is stored it is computed from the dataset's follow graph.
func AuthorityFor(ctx context.Context, cfg *contract.Config, ds *schema.Dataset, env Env) map[string]schema.AuthorityScore {
	auth := loadAuthority(withLogger(ctx, env.Logger), env.Store, cfg.Date)
	if len(auth) == 0 && len(ds.Edges) > 0 {
		auth, _ = ComputeAuthorityScores(cfg, ds)
	}
	return auth
}

// ExecuteAuthority computes authority and Smart-Followers for the snapshot
// date. Snapshots are written only with --persist.
func ExecuteAuthority(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	ctx, cancel := withTimeout(ctx, cfg)
	defer cancel()

	ds, err := loadDataset(cfg.DataPath)
	if err != nil {
		return err
	}
	env := NewEnv(cfg, persistingStore(cfg, storeFrom(mgr)))
	out, err := RunAuthorityBatch(ctx, cfg, ds, env)
	if err != nil {
		return err
	}
	if err := reportError(out.Report); err != nil {
		return err
	}

	scores := SortedAuthority(out.Scores)
	if cfg.AccountID != "" {
		scores = filterAccount(scores, cfg.AccountID)
	}
	return writer.WriteAuthority(topN(scores, cfg.ResultLimit), cfg, time.Since(start))
}

// ExecuteFollowers prints one account's Smart-Followers value with deltas.
// History comes from the store; without any, the dataset gives the current value.
func ExecuteFollowers(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	if cfg.AccountID == "" {
		return errors.New("--account is required")
	}
	ctx, cancel := withTimeout(ctx, cfg)
	defer cancel()

	report, ok, err := LookupSmartFollowers(ctx, cfg, storeFrom(mgr), cfg.AccountID)
	if err != nil {
		return err
	}
	if !ok && cfg.DataPath != "" {
		ds, err := loadDataset(cfg.DataPath)
		if err != nil {
			return err
		}
		report, ok = CurrentSmartFollowers(cfg, ds, cfg.AccountID)
	}
	if !ok {
		return fmt.Errorf("account '%s' as of %s: %w", cfg.AccountID, cfg.Date, ErrNoSmartFollowers)
	}
	return writer.WriteSmartFollowers(report, cfg)
}

// ExecuteMindshare normalizes mindshare for every configured window. Deltas
// are computed against stored history; snapshots are written only with --persist.
func ExecuteMindshare(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	ctx, cancel := withTimeout(ctx, cfg)
	defer cancel()

	ds, err := loadDataset(cfg.DataPath)
	if err != nil {
		return err
	}
	env := NewEnv(cfg, persistingStore(cfg, storeFrom(mgr)))
	out, err := RunMindshareBatch(ctx, cfg, ds, env, nil)
	if err != nil {
		return err
	}
	if err := reportError(out.Report); err != nil {
		return err
	}
	if cfg.ProjectID != "" {
		for w, snaps := range out.Snapshots {
			out.Snapshots[w] = filterProject(snaps, cfg.ProjectID)
		}
	}
	return writer.WriteMindshare(out.Snapshots, cfg, time.Since(start))
}

// ExecuteLeaderboard builds the leaderboard for --arena, or for every arena.
func ExecuteLeaderboard(ctx context.Context, cfg *contract.Config, _ contract.StoreManager) error {
	start := time.Now()
	ctx, cancel := withTimeout(ctx, cfg)
	defer cancel()

	ds, err := loadDataset(cfg.DataPath)
	if err != nil {
		return err
	}
	var arenaIDs []string
	if cfg.ArenaID != "" {
		arenaIDs = []string{cfg.ArenaID}
	}
	out, err := BuildLeaderboards(ctx, cfg, ds, NewEnv(cfg, nil), arenaIDs)
	if err != nil {
		return err
	}
	if err := reportError(out.Report); err != nil {
		return err
	}
	return writer.WriteLeaderboards(out.Entries, cfg, time.Since(start))
}

// ExecuteBatch runs authority then mindshare for the snapshot date and always
// persists. Partial failures are printed and returned as an error.
func ExecuteBatch(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	ctx, cancel := withTimeout(ctx, cfg)
	defer cancel()

	ds, err := loadDataset(cfg.DataPath)
	if err != nil {
		return err
	}
	reports, err := RunAll(ctx, cfg, ds, NewEnv(cfg, storeFrom(mgr)))
	if err != nil {
		return err
	}
	if err := writer.WriteBatchReports(reports, cfg); err != nil {
		return err
	}

	failed := 0
	for _, r := range reports {
		failed += len(r.Failed)
	}
	if failed > 0 {
		return fmt.Errorf("%d batch unit(s) failed", failed)
	}
	return nil
}

// ExecuteWeights prints the active engine parameters. No dataset is read.
func ExecuteWeights(_ context.Context, cfg *contract.Config, _ contract.StoreManager) error {
	return writer.WriteEngineConfig(cfg.Engine, cfg)
}

// withTimeout applies the configured deadline, if any.
func withTimeout(ctx context.Context, cfg *contract.Config) (context.Context, context.CancelFunc) {
	if cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, cfg.Timeout)
}

// NewEnv wires the logger for a command run. CLI runs record no metrics;
// long-running hosts set Env.Metrics themselves.
func NewEnv(cfg *contract.Config, store contract.SnapshotStore) Env {
	return Env{
		Store:  store,
		Logger: telemetry.NewLogger(cfg.LogLevel, cfg.LogFormat),
	}
}

// storeFrom returns the manager's store, or nil without a manager.
func storeFrom(mgr contract.StoreManager) contract.SnapshotStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetSnapshotStore()
}

// StoreView returns the manager's store, read-only unless cfg.Persist is set.
func StoreView(cfg *contract.Config, mgr contract.StoreManager) contract.SnapshotStore {
	return persistingStore(cfg, storeFrom(mgr))
}

// persistingStore keeps store writable only when --persist is set.
func persistingStore(cfg *contract.Config, store contract.SnapshotStore) contract.SnapshotStore {
	if store == nil || cfg.Persist {
		return store
	}
	return readOnlyStore{store}
}

// readOnlyStore serves reads from the wrapped store and drops every write.
type readOnlyStore struct {
	contract.SnapshotStore
}

func (readOnlyStore) BeginRun(context.Context, string, string, map[string]any) (string, error) {
	return "", nil
}

func (readOnlyStore) EndRun(context.Context, string, int, int) error { return nil }

func (readOnlyStore) UpsertAuthority(context.Context, []schema.AuthorityScore) error { return nil }

func (readOnlyStore) UpsertMindshare(context.Context, []schema.MindshareSnapshot) error { return nil }

// reportError turns failed units into one error for single-purpose commands.
func reportError(r *schema.BatchReport) error {
	if r.OK() {
		return nil
	}
	errs := make([]error, 0, len(r.Failed))
	for _, f := range r.Failed {
		errs = append(errs, f)
	}
	return errors.Join(errs...)
}

func topN[T any](items []T, limit int) []T {
	if limit <= 0 || limit >= len(items) {
		return items
	}
	return items[:limit]
}

func filterAccount(scores []schema.AuthorityScore, accountID string) []schema.AuthorityScore {
	out := make([]schema.AuthorityScore, 0, 1)
	for _, s := range scores {
		if s.AccountID == accountID {
			out = append(out, s)
		}
	}
	return out
}

func filterProject(snaps []schema.MindshareSnapshot, projectID string) []schema.MindshareSnapshot {
	out := make([]schema.MindshareSnapshot, 0, 1)
	for _, s := range snaps {
		if s.ProjectID == projectID {
			out = append(out, s)
		}
	}
	return out
}
