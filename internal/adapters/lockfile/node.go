package lockfile

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/sema/internal/adapters/gitcli"
	"go.trai.ch/sema/internal/core/domain"
	"go.trai.ch/sema/internal/core/ports"
)

// NodeID is the unique identifier for the lock store adapter Graft node.
const NodeID graft.ID = "adapter.lock_store"

func init() {
	graft.Register(graft.Node[ports.LockStore]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{gitcli.NodeID},
		Run: func(ctx context.Context) (ports.LockStore, error) {
			git, err := graft.Dep[ports.Git](ctx)
			if err != nil {
				return nil, err
			}
			// The CLI chdirs into the target repository before any command
			// runs, so the process working directory is the root.
			return NewStore(domain.NewLayout("."), git), nil
		},
	})
}
