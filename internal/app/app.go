// Package app implements the application layer for sema.
package app

import (
	"context"
	"time"

	"go.trai.ch/sema/internal/core/domain"
	"go.trai.ch/sema/internal/core/ports"
	"go.trai.ch/sema/internal/engine/resolver"
	"go.trai.ch/sema/internal/engine/upgrade"
	"go.trai.ch/zerr"
)

// App represents the main application logic. Every public operation returns
// a domain.Result; the CLI maps outcomes to exit codes and output.
type App struct {
	layout   domain.Layout
	resolver *resolver.Resolver
	upgrader *upgrade.Orchestrator
	locks    ports.LockStore
	loader   ports.ConfigLoader
	logger   ports.Logger
}

// New creates a new App instance operating on the repository at layout.Root.
func New(
	layout domain.Layout,
	res *resolver.Resolver,
	upgrader *upgrade.Orchestrator,
	locks ports.LockStore,
	loader ports.ConfigLoader,
	logger ports.Logger,
) *App {
	return &App{
		layout:   layout,
		resolver: res,
		upgrader: upgrader,
		locks:    locks,
		loader:   loader,
		logger:   logger,
	}
}

// Resolve traverses the dependency graph as declared and writes the
// resulting lock document.
func (a *App) Resolve(ctx context.Context) domain.Result {
	res, err := a.resolver.Resolve(ctx, a.layout, nil)
	if err != nil {
		return domain.Failure(err)
	}

	if err := a.locks.Write(domain.LockfileFrom(res, time.Now().UTC())); err != nil {
		return domain.Failure(err)
	}

	result := domain.Success()
	result.Resolved = res
	return result
}

// UpgradeOptions configures one upgrade operation.
type UpgradeOptions struct {
	// Timeout bounds each migration and verification command.
	Timeout time.Duration

	// Commit records a git commit in the consuming repository on success.
	Commit bool
}

// Upgrade transactionally moves the named dependency to reference.
func (a *App) Upgrade(ctx context.Context, name, reference string, opts UpgradeOptions) domain.Result {
	outcome, err := a.upgrader.Upgrade(ctx, a.layout, name, reference, upgrade.Options{
		Timeout: opts.Timeout,
		Commit:  opts.Commit,
	})
	if err != nil {
		return domain.Failure(err)
	}

	result := domain.Success()
	result.Resolved = outcome.Resolved
	result.Applied = outcome.Applied
	return result
}

// StatusOptions configures the status operation.
type StatusOptions struct {
	// Strict makes any drifted or missing checkout a failure instead of a
	// report.
	Strict bool
}

// Status compares the lock document against the actual checkout state.
// Drift is reported, never corrected.
func (a *App) Status(ctx context.Context, opts StatusOptions) domain.Result {
	lf, err := a.locks.Read()
	if err != nil {
		return domain.Failure(err)
	}
	if lf == nil {
		// Nothing locked yet, nothing to disagree with.
		return domain.Success()
	}

	reports, err := a.locks.VerifyIntegrity(ctx, lf)
	if err != nil {
		return domain.Failure(err)
	}

	result := domain.Success()
	result.Integrity = reports

	if opts.Strict {
		for _, report := range reports {
			if report.State != domain.IntegrityMatch {
				driftErr := zerr.With(domain.ErrIntegrityDrift, "dependency", report.Name)
				failure := domain.Failure(zerr.With(driftErr, "state", string(report.State)))
				failure.Integrity = reports
				return failure
			}
		}
	}
	return result
}

// Validate checks the root configuration document without touching the
// network or any checkout.
func (a *App) Validate(_ context.Context) domain.Result {
	if _, err := a.loader.Load(a.layout.Root); err != nil {
		return domain.Failure(err)
	}
	return domain.Success()
}
