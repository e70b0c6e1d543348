package ports

import (
	"context"
	"time"

	"go.trai.ch/sema/internal/core/domain"
)

// CommandRunner executes declared shell commands. It is the only component
// permitted to spawn a process.
//
// Run returns an error only when the process could not be spawned at all.
// A non-zero exit or an enforced timeout is reported through the result,
// never by leaving the process running.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type CommandRunner interface {
	// Run spawns the declared command with the given working directory and
	// timeout, capturing stdout and stderr.
	Run(ctx context.Context, cmd domain.Command, workdir string, timeout time.Duration) (domain.CommandResult, error)
}
