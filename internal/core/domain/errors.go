package domain

import "go.trai.ch/zerr"

var (
	// ErrFetchFailed is returned when a dependency cannot be cloned, fetched,
	// or its reference resolved. The whole resolution attempt aborts.
	ErrFetchFailed = zerr.New("fetch failed")

	// ErrParseFailed is returned when a configuration document in a transitive
	// dependency is malformed.
	ErrParseFailed = zerr.New("configuration parse failed")

	// ErrConflict is returned when two documents request the same dependency
	// name with an irreconcilable source or reference.
	ErrConflict = zerr.New("dependency conflict")

	// ErrIntegrityDrift is returned when the on-disk checkout state disagrees
	// with the lock document.
	ErrIntegrityDrift = zerr.New("integrity drift")

	// ErrCommandFailed is returned when a migration or verification command
	// exits non-zero or exceeds its timeout.
	ErrCommandFailed = zerr.New("command failed")

	// ErrSnapshotFailed is returned when capturing or restoring the
	// pre-transaction snapshot fails. It is always fatal.
	ErrSnapshotFailed = zerr.New("snapshot failed")

	// ErrUpgradeInProgress is returned when another upgrade transaction holds
	// the advisory lock for the same repository.
	ErrUpgradeInProgress = zerr.New("another upgrade is in progress")

	// ErrDependencyNotFound is returned when an operation targets a dependency
	// name that is not declared in the root manifest.
	ErrDependencyNotFound = zerr.New("dependency not found")

	// ErrUnknownCommand is returned when a declared change references a
	// command name that no manifest defines.
	ErrUnknownCommand = zerr.New("unknown command")

	// ErrDuplicateDependency is returned when a single manifest declares the
	// same dependency name twice.
	ErrDuplicateDependency = zerr.New("duplicate dependency")
)
