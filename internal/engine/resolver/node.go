package resolver

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/sema/internal/adapters/config" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/sema/internal/adapters/gitcli" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/sema/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/sema/internal/core/ports"
)

// NodeID is the unique identifier for the resolver Graft node.
const NodeID graft.ID = "engine.resolver"

func init() {
	graft.Register(graft.Node[*Resolver]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			gitcli.NodeID,
			config.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Resolver, error) {
			git, err := graft.Dep[ports.Git](ctx)
			if err != nil {
				return nil, err
			}

			loader, err := graft.Dep[ports.ConfigLoader](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(git, loader, log), nil
		},
	})
}
