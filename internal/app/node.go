package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/sema/internal/adapters/config"   //nolint:depguard // Wired in app layer
	"go.trai.ch/sema/internal/adapters/lockfile" //nolint:depguard // Wired in app layer
	"go.trai.ch/sema/internal/adapters/logger"   //nolint:depguard // Wired in app layer
	"go.trai.ch/sema/internal/core/domain"
	"go.trai.ch/sema/internal/core/ports"
	"go.trai.ch/sema/internal/engine/resolver"
	"go.trai.ch/sema/internal/engine/upgrade"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft
	// node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			resolver.NodeID,
			upgrade.NodeID,
			lockfile.NodeID,
			config.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*App, error) {
			res, err := graft.Dep[*resolver.Resolver](ctx)
			if err != nil {
				return nil, err
			}

			upgrader, err := graft.Dep[*upgrade.Orchestrator](ctx)
			if err != nil {
				return nil, err
			}

			locks, err := graft.Dep[ports.LockStore](ctx)
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

			// The CLI chdirs into the target repository before commands run.
			return New(domain.NewLayout("."), res, upgrader, locks, loader, log), nil
		},
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			application, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewComponents(application, log), nil
		},
	})
}
