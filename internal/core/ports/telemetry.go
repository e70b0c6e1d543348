package ports

import (
	"context"
	"io"
)

// Telemetry records units of work (transaction phases, executed commands)
// for later inspection. The recorder writes to a tape; no terminal UI is
// attached here.
//
//go:generate go run go.uber.org/mock/mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks
type Telemetry interface {
	// Record starts recording a new vertex with the given name.
	Record(ctx context.Context, name string) (context.Context, Vertex)

	// Close flushes and closes the recording session.
	Close() error
}

// Vertex represents one recorded unit of work.
type Vertex interface {
	// Stdout returns a writer for the vertex's output stream.
	Stdout() io.Writer

	// Complete marks the vertex as finished, successfully or with an error.
	Complete(err error)
}
