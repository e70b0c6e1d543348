package ports

import "go.trai.ch/sema/internal/core/domain"

// Snapshotter captures and restores the mutable state set of a transaction.
// The mechanism is filesystem-copy based so it works whether or not the
// protected paths are themselves under version control.
//
//go:generate go run go.uber.org/mock/mockgen -source=snapshot.go -destination=mocks/mock_snapshot.go -package=mocks
type Snapshotter interface {
	// Capture records the current byte-for-byte state of the named paths
	// and returns a handle. A capture failure must abort the transaction
	// that requested it.
	Capture(paths []string) (domain.Snapshot, error)

	// Restore reverts exactly the captured paths to their captured state.
	// It is idempotent: calling it twice is safe.
	Restore(snapshot domain.Snapshot) error

	// Discard releases the snapshot's temporary storage.
	Discard(snapshot domain.Snapshot) error
}
