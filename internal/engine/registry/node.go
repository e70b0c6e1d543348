package registry

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/sema/internal/adapters/gitcli" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/sema/internal/core/ports"
)

// NodeID is the unique identifier for the change registry Graft node.
const NodeID graft.ID = "engine.registry"

func init() {
	graft.Register(graft.Node[*Registry]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{gitcli.NodeID},
		Run: func(ctx context.Context) (*Registry, error) {
			git, err := graft.Dep[ports.Git](ctx)
			if err != nil {
				return nil, err
			}
			return New(git), nil
		},
	})
}
