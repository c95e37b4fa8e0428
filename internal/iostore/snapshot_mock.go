package iostore

import (
	"context"

	"github.com/huangsam/signalboard/internal/contract"
	"github.com/huangsam/signalboard/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetSnapshotStore implements the StoreManager interface.
func (m *MockStoreManager) GetSnapshotStore() contract.SnapshotStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.SnapshotStore)
	return store
}

// MockSnapshotStore is a mock implementation of SnapshotStore for testing.
type MockSnapshotStore struct {
	mock.Mock
}

var _ contract.SnapshotStore = &MockSnapshotStore{} // Compile-time check

// BeginRun implements the SnapshotStore interface.
func (m *MockSnapshotStore) BeginRun(ctx context.Context, kind, date string, params map[string]any) (string, error) {
	args := m.Called(ctx, kind, date, params)
	return args.String(0), args.Error(1)
}

// EndRun implements the SnapshotStore interface.
func (m *MockSnapshotStore) EndRun(ctx context.Context, runID string, units, failed int) error {
	args := m.Called(ctx, runID, units, failed)
	return args.Error(0)
}

// UpsertAuthority implements the SnapshotStore interface.
func (m *MockSnapshotStore) UpsertAuthority(ctx context.Context, scores []schema.AuthorityScore) error {
	args := m.Called(ctx, scores)
	return args.Error(0)
}

// UpsertMindshare implements the SnapshotStore interface.
func (m *MockSnapshotStore) UpsertMindshare(ctx context.Context, snaps []schema.MindshareSnapshot) error {
	args := m.Called(ctx, snaps)
	return args.Error(0)
}

// AuthorityAt implements the SnapshotStore interface.
func (m *MockSnapshotStore) AuthorityAt(ctx context.Context, date string) (map[string]schema.AuthorityScore, error) {
	args := m.Called(ctx, date)
	scores, _ := args.Get(0).(map[string]schema.AuthorityScore)
	return scores, args.Error(1)
}

// AuthorityHistory implements the SnapshotStore interface.
func (m *MockSnapshotStore) AuthorityHistory(ctx context.Context, accountID, from, to string) ([]schema.AuthorityScore, error) {
	args := m.Called(ctx, accountID, from, to)
	history, _ := args.Get(0).([]schema.AuthorityScore)
	return history, args.Error(1)
}

// PreviousMindshare implements the SnapshotStore interface.
func (m *MockSnapshotStore) PreviousMindshare(ctx context.Context, window schema.Window, before string) (map[string]int, error) {
	args := m.Called(ctx, window, before)
	prev, _ := args.Get(0).(map[string]int)
	return prev, args.Error(1)
}

// MindshareAt implements the SnapshotStore interface.
func (m *MockSnapshotStore) MindshareAt(ctx context.Context, window schema.Window, date string) ([]schema.MindshareSnapshot, error) {
	args := m.Called(ctx, window, date)
	snaps, _ := args.Get(0).([]schema.MindshareSnapshot)
	return snaps, args.Error(1)
}

// GetStatus implements the SnapshotStore interface.
func (m *MockSnapshotStore) GetStatus(ctx context.Context) (schema.SnapshotStatus, error) {
	args := m.Called(ctx)
	status, _ := args.Get(0).(schema.SnapshotStatus)
	return status, args.Error(1)
}

// ExportAll implements the SnapshotStore interface.
func (m *MockSnapshotStore) ExportAll(ctx context.Context) (*schema.SnapshotExport, error) {
	args := m.Called(ctx)
	export, _ := args.Get(0).(*schema.SnapshotExport)
	return export, args.Error(1)
}

// Close implements the SnapshotStore interface.
func (m *MockSnapshotStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
