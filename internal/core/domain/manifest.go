package domain

import "go.trai.ch/zerr"

// Manifest is the parsed configuration document of one repository: the
// dependencies it declares, the changes it publishes for its own consumers,
// and the commands those changes reference.
type Manifest struct {
	// Version is the manifest format version.
	Version int

	// Dependencies lists the declared dependency edges, in declaration
	// order.
	Dependencies []DependencySpec

	// Changes lists the changes this repository declares for its consumers,
	// in declaration order.
	Changes []Change

	// Commands maps command names to their declared invocations.
	Commands map[string]Command

	// Protect lists consumer working-tree paths (relative to the repository
	// root) that migrations may mutate. They are captured into the
	// pre-upgrade snapshot and restored on rollback.
	Protect []string
}

// Validate checks the manifest's internal consistency: unique dependency
// names, non-empty sources and references, and change entries whose command
// names are declared in this manifest.
func (m *Manifest) Validate() error {
	seen := make(map[string]bool, len(m.Dependencies))
	for _, dep := range m.Dependencies {
		if dep.Name == "" {
			return zerr.New("dependency name must not be empty")
		}
		if seen[dep.Name] {
			return zerr.With(ErrDuplicateDependency, "dependency", dep.Name)
		}
		seen[dep.Name] = true

		if dep.Source == "" {
			return zerr.With(zerr.New("dependency source must not be empty"), "dependency", dep.Name)
		}
		if dep.Reference == "" {
			return zerr.With(zerr.New("dependency reference must not be empty"), "dependency", dep.Name)
		}
	}

	changeIDs := make(map[string]bool, len(m.Changes))
	for _, change := range m.Changes {
		if change.ID == "" {
			return zerr.New("change id must not be empty")
		}
		if changeIDs[change.ID] {
			return zerr.With(zerr.New("duplicate change id"), "change", change.ID)
		}
		changeIDs[change.ID] = true

		if change.Ref == "" {
			return zerr.With(zerr.New("change ref must not be empty"), "change", change.ID)
		}
		if err := m.checkCommandRef(change.ID, change.Migration); err != nil {
			return err
		}
		if err := m.checkCommandRef(change.ID, change.Verify); err != nil {
			return err
		}
	}

	return nil
}

func (m *Manifest) checkCommandRef(changeID, name string) error {
	if name == "" {
		return zerr.With(zerr.New("change must declare migration and verify commands"), "change", changeID)
	}
	if _, ok := m.Commands[name]; !ok {
		err := zerr.With(ErrUnknownCommand, "command", name)
		return zerr.With(err, "change", changeID)
	}
	return nil
}

// Dependency returns the declared spec for the given name, or nil if the
// manifest does not declare it.
func (m *Manifest) Dependency(name string) *DependencySpec {
	for i := range m.Dependencies {
		if m.Dependencies[i].Name == name {
			return &m.Dependencies[i]
		}
	}
	return nil
}
