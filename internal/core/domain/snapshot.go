package domain

// Snapshot is an opaque handle to a restorable capture of mutable state,
// taken immediately before a mutating transaction. It is owned by the
// orchestrator for the duration of one transaction: discarded on success,
// restored-from on failure, never persisted across process restarts.
type Snapshot struct {
	// ID is the snapshot identifier assigned at capture time.
	ID string

	// Paths lists the absolute paths the snapshot covers.
	Paths []string
}

// Valid reports whether the handle refers to a captured snapshot.
func (s Snapshot) Valid() bool {
	return s.ID != ""
}
