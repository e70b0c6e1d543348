// Package upgrade implements the transactional upgrade orchestrator:
// resolve, snapshot, migrate, verify, commit, with rollback on any failure.
package upgrade

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"go.trai.ch/sema/internal/core/domain"
	"go.trai.ch/sema/internal/core/ports"
	"go.trai.ch/sema/internal/engine/registry"
	"go.trai.ch/sema/internal/engine/resolver"
	"go.trai.ch/zerr"
)

// Orchestrator drives one upgrade transaction end to end.
type Orchestrator struct {
	git       ports.Git
	loader    ports.ConfigLoader
	resolver  *resolver.Resolver
	registry  *registry.Registry
	runner    ports.CommandRunner
	locks     ports.LockStore
	snaps     ports.Snapshotter
	logger    ports.Logger
	telemetry ports.Telemetry
}

// New creates an Orchestrator.
func New(
	git ports.Git,
	loader ports.ConfigLoader,
	res *resolver.Resolver,
	reg *registry.Registry,
	runner ports.CommandRunner,
	locks ports.LockStore,
	snaps ports.Snapshotter,
	logger ports.Logger,
	telemetry ports.Telemetry,
) *Orchestrator {
	return &Orchestrator{
		git:       git,
		loader:    loader,
		resolver:  res,
		registry:  reg,
		runner:    runner,
		locks:     locks,
		snaps:     snaps,
		logger:    logger,
		telemetry: telemetry,
	}
}

// Options configures one upgrade transaction.
type Options struct {
	// Timeout bounds each migration and verification command. Zero means no
	// per-command deadline.
	Timeout time.Duration

	// Commit records a git commit in the consuming repository after the
	// lock document is written.
	Commit bool
}

// Outcome is what a completed upgrade hands back to the application layer.
type Outcome struct {
	Resolved *domain.Resolution
	Applied  []string
}

// Upgrade moves the named dependency to reference and applies the changes
// the upstream declared between the previously locked state and the new one.
//
// The whole operation is a transaction: the lock document and the protected
// paths are snapshotted before any command runs, every change's migration
// is verified before the next change starts, and the first failure restores
// the snapshot and the previously locked checkouts. Only a fully verified
// transaction writes the new lock document.
func (o *Orchestrator) Upgrade(ctx context.Context, layout domain.Layout, target, reference string, opts Options) (Outcome, error) {
	release, err := o.acquire(layout)
	if err != nil {
		return Outcome{}, err
	}
	defer release()

	preexisting := existingCheckouts(layout)

	prev, err := o.locks.Read()
	if err != nil {
		return Outcome{}, err
	}

	root, err := o.loader.Load(layout.Root)
	if err != nil {
		return Outcome{}, zerr.Wrap(err, "failed to load root configuration document")
	}
	if root.Dependency(target) == nil {
		return Outcome{}, zerr.With(domain.ErrDependencyNotFound, "dependency", target)
	}

	tx := domain.NewTransaction(target)

	tx.To(domain.TxResolving)
	res, err := o.resolve(ctx, layout, target, reference)
	if err != nil {
		// Resolution may have moved checkouts before failing.
		return Outcome{}, o.rollback(ctx, layout, tx, prev, preexisting, err)
	}

	plan, err := o.plan(ctx, layout, tx, prev, res)
	if err != nil {
		return Outcome{}, o.rollback(ctx, layout, tx, prev, preexisting, err)
	}
	tx.Changes = plan

	tx.To(domain.TxSnapshotting)
	snap, err := o.snaps.Capture(snapshotPaths(layout, root))
	if err != nil {
		return Outcome{}, o.rollback(ctx, layout, tx, prev, preexisting, err)
	}
	tx.Snapshot = snap

	applied, err := o.apply(ctx, layout, tx, opts)
	if err != nil {
		return Outcome{}, o.rollback(ctx, layout, tx, prev, preexisting, err)
	}

	tx.To(domain.TxCommitting)
	if err := o.commit(ctx, layout, res, target, reference, opts); err != nil {
		return Outcome{}, o.rollback(ctx, layout, tx, prev, preexisting, err)
	}

	if err := o.snaps.Discard(tx.Snapshot); err != nil {
		o.logger.Warn(fmt.Sprintf("failed to discard snapshot %s: %v", tx.Snapshot.ID, err))
	}
	tx.To(domain.TxDone)

	return Outcome{Resolved: res, Applied: applied}, nil
}

// acquire takes the per-repository advisory lock. A held lock fails fast:
// upgrades never queue behind each other.
func (o *Orchestrator) acquire(layout domain.Layout) (func(), error) {
	if err := os.MkdirAll(layout.StateDir(), 0o750); err != nil {
		return nil, zerr.Wrap(err, "failed to create state directory")
	}

	lock := flock.New(layout.TxLockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to acquire upgrade lock")
	}
	if !locked {
		return nil, zerr.With(domain.ErrUpgradeInProgress, "lock", layout.TxLockPath())
	}
	return func() { _ = lock.Unlock() }, nil
}

func (o *Orchestrator) resolve(ctx context.Context, layout domain.Layout, target, reference string) (*domain.Resolution, error) {
	ctx, vertex := o.telemetry.Record(ctx, "resolve "+target)
	res, err := o.resolver.Resolve(ctx, layout, map[string]string{target: reference})
	vertex.Complete(err)
	return res, err
}

// plan selects the changes declared by the upgraded dependency between the
// previously locked commit and the newly resolved one and binds their
// commands. Planning happens before the snapshot so a broken declaration
// aborts without touching anything.
func (o *Orchestrator) plan(ctx context.Context, layout domain.Layout, tx *domain.Transaction, prev *domain.Lockfile, res *domain.Resolution) ([]domain.PlannedChange, error) {
	dep := res.Get(tx.Target)

	var prevCommit string
	if entry := prev.Entry(tx.Target); entry != nil {
		prevCommit = entry.Commit
	}

	path := layout.CheckoutPath(tx.Target)
	man, err := o.loader.Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// A leaf dependency declares no changes.
			return nil, nil
		}
		return nil, err
	}

	changes, err := o.registry.ChangesBetween(ctx, man, path, prevCommit, dep.Commit)
	if err != nil {
		return nil, err
	}

	plan := make([]domain.PlannedChange, 0, len(changes))
	for _, change := range changes {
		migration, ok := man.Commands[change.Migration]
		if !ok {
			return nil, zerr.With(domain.ErrUnknownCommand, "command", change.Migration)
		}
		verify, ok := man.Commands[change.Verify]
		if !ok {
			return nil, zerr.With(domain.ErrUnknownCommand, "command", change.Verify)
		}
		plan = append(plan, domain.PlannedChange{
			Dependency: tx.Target,
			Change:     change,
			Migration:  migration,
			Verify:     verify,
		})
	}
	return plan, nil
}

// apply executes the planned changes in order, each migration immediately
// followed by its verification. The first failure stops everything; later
// changes never run.
func (o *Orchestrator) apply(ctx context.Context, layout domain.Layout, tx *domain.Transaction, opts Options) ([]string, error) {
	applied := make([]string, 0, len(tx.Changes))

	for _, pc := range tx.Changes {
		tx.To(domain.TxMigrating)
		if err := o.runCommand(ctx, layout, "migrate", pc.Change.ID, pc.Migration, opts.Timeout); err != nil {
			return applied, err
		}

		tx.To(domain.TxVerifying)
		if err := o.runCommand(ctx, layout, "verify", pc.Change.ID, pc.Verify, opts.Timeout); err != nil {
			return applied, err
		}

		applied = append(applied, pc.Change.ID)
		o.logger.Info(fmt.Sprintf("applied change %s", pc.Change.ID))
	}

	return applied, nil
}

func (o *Orchestrator) runCommand(ctx context.Context, layout domain.Layout, phase, changeID string, cmd domain.Command, timeout time.Duration) error {
	ctx, vertex := o.telemetry.Record(ctx, fmt.Sprintf("%s %s (%s)", phase, changeID, cmd.Name))

	result, err := o.runner.Run(ctx, cmd, layout.Root, timeout)
	if err != nil {
		vertex.Complete(err)
		return zerr.With(zerr.Wrap(err, domain.ErrCommandFailed.Error()), "change", changeID)
	}
	fmt.Fprint(vertex.Stdout(), result.Stdout)

	if result.Failed() {
		err := zerr.With(domain.ErrCommandFailed, "change", changeID)
		err = zerr.With(err, "command", cmd.Name)
		err = zerr.With(err, "exit_code", result.ExitCode)
		if result.TimedOut {
			err = zerr.With(err, "timed_out", true)
		}
		err = zerr.With(err, "stderr", result.Stderr)
		vertex.Complete(err)
		return err
	}

	vertex.Complete(nil)
	return nil
}

func (o *Orchestrator) commit(ctx context.Context, layout domain.Layout, res *domain.Resolution, target, reference string, opts Options) error {
	if err := o.locks.Write(domain.LockfileFrom(res, time.Now().UTC())); err != nil {
		return err
	}

	if opts.Commit {
		msg := fmt.Sprintf("sema: upgrade %s to %s", target, reference)
		if err := o.git.Commit(ctx, layout.Root, msg); err != nil {
			return err
		}
	}
	return nil
}

// rollback restores the pre-transaction state: the snapshot (if one was
// captured), the previously locked checkouts, and removal of checkouts this
// transaction created. It runs even when ctx is already cancelled.
func (o *Orchestrator) rollback(ctx context.Context, layout domain.Layout, tx *domain.Transaction, prev *domain.Lockfile, preexisting map[string]bool, cause error) error {
	tx.To(domain.TxRollingBack)
	rctx := context.WithoutCancel(ctx)

	errs := cause

	if tx.Snapshot.Valid() {
		if err := o.snaps.Restore(tx.Snapshot); err != nil {
			errs = errors.Join(errs, err)
		}
	}

	if prev != nil {
		for _, entry := range prev.Entries {
			path := layout.CheckoutPath(entry.Name)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			if err := o.git.Checkout(rctx, path, entry.Commit); err != nil {
				errs = errors.Join(errs, err)
			}
		}
	}

	// Checkouts that were not there when the transaction started were
	// created by it; remove them so the repository is observably unchanged.
	// Anything already present, locked or not, stays.
	if dirs, err := os.ReadDir(layout.DepsDir()); err == nil {
		for _, d := range dirs {
			if !preexisting[d.Name()] {
				if err := os.RemoveAll(filepath.Join(layout.DepsDir(), d.Name())); err != nil {
					errs = errors.Join(errs, err)
				}
			}
		}
	}

	if tx.Snapshot.Valid() && errs == cause {
		if err := o.snaps.Discard(tx.Snapshot); err != nil {
			o.logger.Warn(fmt.Sprintf("failed to discard snapshot %s: %v", tx.Snapshot.ID, err))
		}
	}

	if errs == cause {
		tx.To(domain.TxRolledBack)
		o.logger.Warn("upgrade rolled back")
	} else {
		o.logger.Error(zerr.Wrap(errs, "rollback incomplete"))
	}

	return errs
}

// existingCheckouts lists the deps-dir entries present before the
// transaction mutates anything. Rollback removes only entries outside this
// set, so checkouts left behind by earlier operations survive a failed
// upgrade.
func existingCheckouts(layout domain.Layout) map[string]bool {
	names := make(map[string]bool)
	if dirs, err := os.ReadDir(layout.DepsDir()); err == nil {
		for _, d := range dirs {
			names[d.Name()] = true
		}
	}
	return names
}

// snapshotPaths is the mutable state set of one transaction: the lock
// document plus every protected path the root document declares.
func snapshotPaths(layout domain.Layout, root *domain.Manifest) []string {
	paths := []string{layout.LockPath()}
	for _, p := range root.Protect {
		paths = append(paths, filepath.Join(layout.Root, p))
	}
	return paths
}
