package domain

import "path/filepath"

const (
	// ManifestName is the configuration document filename.
	ManifestName = "sema.yaml"
	// LockName is the lock document filename.
	LockName = "sema.lock"
	// StateDirName is the engine-owned state directory.
	StateDirName = ".sema"
	// DepsDirName is the directory holding the flat set of checkouts.
	DepsDirName = "deps"
)

// Layout maps the well-known engine paths inside one consuming repository.
type Layout struct {
	// Root is the absolute path of the consuming repository.
	Root string
}

// NewLayout creates a Layout rooted at the given directory.
func NewLayout(root string) Layout {
	return Layout{Root: filepath.Clean(root)}
}

// LockPath returns the lock document path.
func (l Layout) LockPath() string {
	return filepath.Join(l.Root, LockName)
}

// ManifestPath returns the root configuration document path.
func (l Layout) ManifestPath() string {
	return filepath.Join(l.Root, ManifestName)
}

// DepsDir returns the directory holding dependency checkouts.
func (l Layout) DepsDir() string {
	return filepath.Join(l.Root, DepsDirName)
}

// CheckoutPath returns the checkout directory for a dependency name.
// Paths are stable: one directory per unique name, no per-branch nesting.
func (l Layout) CheckoutPath(name string) string {
	return filepath.Join(l.DepsDir(), name)
}

// StateDir returns the engine-owned state directory.
func (l Layout) StateDir() string {
	return filepath.Join(l.Root, StateDirName)
}

// SnapshotsDir returns the directory snapshots are captured into.
func (l Layout) SnapshotsDir() string {
	return filepath.Join(l.StateDir(), "snapshots")
}

// TxLockPath returns the advisory lock file guarding upgrade transactions.
func (l Layout) TxLockPath() string {
	return filepath.Join(l.StateDir(), "upgrade.lock")
}
