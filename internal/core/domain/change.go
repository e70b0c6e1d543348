package domain

import "time"

// Change is a migration/verification pair declared by an upstream dependency
// for a specific revision. Changes are totally ordered by declaration order
// within their dependency.
type Change struct {
	// ID is the stable identifier of the change.
	ID string

	// Ref is the upstream revision (branch, tag, or commit) the change
	// lands at.
	Ref string

	// Migration is the name of the command to run in the consuming repo.
	Migration string

	// Verify is the name of the command to run after the migration. Its
	// exit status is the only commit gate.
	Verify string
}

// Command is a named, declared shell invocation. It is pure data; only the
// command runner may spawn a process from it.
type Command struct {
	// Name is the key the command is declared under.
	Name string

	// Run is the shell invocation string.
	Run string

	// Dir is an optional working directory, relative to the consuming
	// repository root.
	Dir string

	// Env holds environment variable overrides applied on top of the
	// inherited environment.
	Env map[string]string
}

// CommandResult reports the outcome of one command invocation.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	TimedOut bool
	Duration time.Duration
}

// Failed reports whether the invocation must be treated as a failure:
// a non-zero exit or an enforced timeout.
func (r CommandResult) Failed() bool {
	return r.ExitCode != 0 || r.TimedOut
}
