// Package domain contains the core domain models for dependency resolution
// and the upgrade transaction.
package domain

// DependencySpec represents a declared intent to consume a dependency.
// One spec exists per declared edge in the graph, before deduplication.
type DependencySpec struct {
	// Name is the dependency name, unique within its declaring document.
	Name string

	// Source is the fetchable git location (URL or path).
	Source string

	// Reference is the branch, tag, or commit the declarer wants.
	Reference string

	// DeclaredBy is the path of the configuration document declaring this
	// spec, relative to the consuming repository root. Used for conflict
	// diagnostics.
	DeclaredBy string
}

// ResolvedDependency is a graph node after deduplication. Exactly one exists
// per unique name in a successful resolution.
type ResolvedDependency struct {
	// Name is the canonical dependency name.
	Name string

	// Source is the git location the dependency was fetched from.
	Source string

	// Commit is the concrete commit hash that was checked out.
	Commit string

	// Reference is the reference the commit was resolved from.
	Reference string

	// RequestedBy lists the declaring documents that requested this
	// dependency, in request order.
	RequestedBy []string
}
