// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"

	"github.com/huangsam/signalboard/schema"
)

// StoreManager defines the interface for managing snapshot stores.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetSnapshotStore() SnapshotStore
}

// SnapshotStore defines the interface for persisting authority and mindshare
// snapshots along with the batch runs that produced them.
type SnapshotStore interface {
	// --- Run Tracking ---

	// BeginRun records the start of a batch run and returns its unique ID.
	BeginRun(ctx context.Context, kind string, date string, params map[string]any) (string, error)

	// EndRun records completion counts for a batch run.
	EndRun(ctx context.Context, runID string, units, failed int) error

	// --- Writes ---

	// UpsertAuthority writes authority snapshots. Rows are keyed by
	// (account, date), so re-running a date replaces its rows.
	UpsertAuthority(ctx context.Context, scores []schema.AuthorityScore) error

	// UpsertMindshare writes mindshare snapshots in one transaction. Rows are
	// keyed by (project, window, date).
	UpsertMindshare(ctx context.Context, snaps []schema.MindshareSnapshot) error

	// --- Reads ---

	// AuthorityAt returns the newest snapshot per account at or before date.
	AuthorityAt(ctx context.Context, date string) (map[string]schema.AuthorityScore, error)

	// AuthorityHistory returns an account's snapshots in [from, to], oldest first.
	AuthorityHistory(ctx context.Context, accountID, from, to string) ([]schema.AuthorityScore, error)

	// PreviousMindshare returns the newest bps per project strictly before date.
	PreviousMindshare(ctx context.Context, window schema.Window, before string) (map[string]int, error)

	// MindshareAt returns the snapshots of one (window, date).
	MindshareAt(ctx context.Context, window schema.Window, date string) ([]schema.MindshareSnapshot, error)

	// --- Maintenance ---

	// GetStatus returns status information about the store.
	GetStatus(ctx context.Context) (schema.SnapshotStatus, error)

	// ExportAll reads every stored row for export.
	ExportAll(ctx context.Context) (*schema.SnapshotExport, error)

	// Close closes the underlying connection.
	Close() error
}
