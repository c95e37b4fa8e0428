// Package iostore persists authority and mindshare snapshots.
package iostore

import (
	"sync"

	"github.com/huangsam/signalboard/internal/contract"
)

// SnapshotStoreManager manages the SnapshotStore instance.
type SnapshotStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	snapshots    contract.SnapshotStore
}

var _ contract.StoreManager = &SnapshotStoreManager{} // Compile-time check

// GetSnapshotStore returns the snapshot store.
func (mgr *SnapshotStoreManager) GetSnapshotStore() contract.SnapshotStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.snapshots
}
