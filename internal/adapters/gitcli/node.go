package gitcli

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/sema/internal/core/ports"
)

// NodeID is the unique identifier for the git adapter Graft node.
const NodeID graft.ID = "adapter.git"

func init() {
	graft.Register(graft.Node[ports.Git]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Git, error) {
			return NewClient(), nil
		},
	})
}
