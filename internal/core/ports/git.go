// Package ports defines the core interfaces for the application.
package ports

import "context"

// Git is the abstract capability the engine uses for all repository
// operations. The engine never shells out to a specific tool directly.
//
//go:generate go run go.uber.org/mock/mockgen -source=git.go -destination=mocks/mock_git.go -package=mocks
type Git interface {
	// Clone creates a checkout of source at path.
	Clone(ctx context.Context, source, path string) error

	// Fetch updates the checkout at path from its origin and resolves
	// reference to a concrete commit hash.
	Fetch(ctx context.Context, path, reference string) (commit string, err error)

	// ResolveRef resolves reference to a commit hash using only local
	// state, without touching the network.
	ResolveRef(ctx context.Context, path, reference string) (commit string, err error)

	// Checkout moves the checkout at path to the given commit.
	Checkout(ctx context.Context, path, commit string) error

	// HeadCommit returns the commit hash the checkout at path is currently
	// at.
	HeadCommit(ctx context.Context, path string) (commit string, err error)

	// Commit stages all changes at path and records a commit with the
	// given message.
	Commit(ctx context.Context, path, message string) error
}
