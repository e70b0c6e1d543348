package ports

import (
	"context"

	"go.trai.ch/sema/internal/core/domain"
)

// LockStore persists and verifies the lock document.
//
//go:generate go run go.uber.org/mock/mockgen -source=lock.go -destination=mocks/mock_lock.go -package=mocks
type LockStore interface {
	// Read returns the previously persisted lock document.
	// Returns nil, nil if no lock document exists yet.
	Read() (*domain.Lockfile, error)

	// Write persists the full lock document atomically: a reader never
	// observes a partial write.
	Write(lf *domain.Lockfile) error

	// VerifyIntegrity compares each entry's commit against the actual
	// checkout state, returning one report per entry in lock order.
	VerifyIntegrity(ctx context.Context, lf *domain.Lockfile) ([]domain.IntegrityReport, error)
}
