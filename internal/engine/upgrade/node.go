package upgrade

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/sema/internal/adapters/config"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/sema/internal/adapters/gitcli"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/sema/internal/adapters/lockfile"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/sema/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/sema/internal/adapters/shell"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/sema/internal/adapters/snapshot"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/sema/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/sema/internal/core/ports"
	"go.trai.ch/sema/internal/engine/registry"
	"go.trai.ch/sema/internal/engine/resolver"
)

// NodeID is the unique identifier for the upgrade orchestrator Graft node.
const NodeID graft.ID = "engine.upgrade"

func init() {
	graft.Register(graft.Node[*Orchestrator]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			gitcli.NodeID,
			config.NodeID,
			resolver.NodeID,
			registry.NodeID,
			shell.NodeID,
			lockfile.NodeID,
			snapshot.NodeID,
			logger.NodeID,
			telemetry.NodeID,
		},
		Run: func(ctx context.Context) (*Orchestrator, error) {
			git, err := graft.Dep[ports.Git](ctx)
			if err != nil {
				return nil, err
			}

			loader, err := graft.Dep[ports.ConfigLoader](ctx)
			if err != nil {
				return nil, err
			}

			res, err := graft.Dep[*resolver.Resolver](ctx)
			if err != nil {
				return nil, err
			}

			reg, err := graft.Dep[*registry.Registry](ctx)
			if err != nil {
				return nil, err
			}

			runner, err := graft.Dep[ports.CommandRunner](ctx)
			if err != nil {
				return nil, err
			}

			locks, err := graft.Dep[ports.LockStore](ctx)
			if err != nil {
				return nil, err
			}

			snaps, err := graft.Dep[ports.Snapshotter](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			tel, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}

			return New(git, loader, res, reg, runner, locks, snaps, log, tel), nil
		},
	})
}
