// Package registry selects which declared changes apply to an upgrade.
package registry

import (
	"context"

	"go.trai.ch/sema/internal/core/domain"
	"go.trai.ch/sema/internal/core/ports"
	"go.trai.ch/zerr"
)

// Registry maps a dependency's declared changes onto concrete commits so the
// orchestrator can pick the slice between two states.
type Registry struct {
	git ports.Git
}

// New creates a Registry.
func New(git ports.Git) *Registry {
	return &Registry{git: git}
}

// ChangesBetween returns the changes of man that lie strictly after
// fromCommit and up to and including toCommit, in declaration order.
//
// Each change's ref is resolved against the checkout at repoPath. An empty
// fromCommit means first-time install: the dependency is checked out fresh
// and nothing applies. A non-empty fromCommit that no declared change points
// at predates the declared list, so the window opens before the first
// change and every change up to toCommit applies. A toCommit that no change
// points at anchors nothing (a plain content update), and a downgrade (to
// before from) selects nothing either.
func (r *Registry) ChangesBetween(ctx context.Context, man *domain.Manifest, repoPath, fromCommit, toCommit string) ([]domain.Change, error) {
	if fromCommit == "" {
		return nil, nil
	}

	fromIdx, toIdx := -1, -1

	for i, change := range man.Changes {
		commit, err := r.git.ResolveRef(ctx, repoPath, change.Ref)
		if err != nil {
			refErr := zerr.Wrap(err, "failed to resolve change ref")
			return nil, zerr.With(refErr, "change", change.ID)
		}
		if commit == fromCommit {
			fromIdx = i
		}
		if commit == toCommit {
			toIdx = i
		}
	}

	if toIdx < 0 {
		return nil, nil
	}
	if fromIdx >= 0 && toIdx <= fromIdx {
		return nil, nil
	}

	out := make([]domain.Change, toIdx-fromIdx)
	copy(out, man.Changes[fromIdx+1:toIdx+1])
	return out, nil
}
