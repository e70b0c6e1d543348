// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/sema/internal/adapters/config"
	_ "go.trai.ch/sema/internal/adapters/gitcli"
	_ "go.trai.ch/sema/internal/adapters/lockfile"
	_ "go.trai.ch/sema/internal/adapters/logger"
	_ "go.trai.ch/sema/internal/adapters/shell"
	_ "go.trai.ch/sema/internal/adapters/snapshot"
	_ "go.trai.ch/sema/internal/adapters/telemetry"
	// Register app and engine nodes.
	_ "go.trai.ch/sema/internal/app"
	_ "go.trai.ch/sema/internal/engine/registry"
	_ "go.trai.ch/sema/internal/engine/resolver"
	_ "go.trai.ch/sema/internal/engine/upgrade"
)
