package domain

import "time"

// LockfileVersion is the current lock document format version.
const LockfileVersion = 1

// Lockfile is the durable record of exactly which commit was consumed for
// each dependency. Entries keep the resolver's traversal order so the
// document is reproducible without sorting.
type Lockfile struct {
	// Version is the lock document format version, for future schema
	// migrations.
	Version int

	// Entries holds one record per resolved dependency, in resolution
	// order.
	Entries []LockEntry
}

// LockEntry is the persisted per-dependency record.
type LockEntry struct {
	Name       string
	Source     string
	Commit     string
	ResolvedAt time.Time
}

// Entry returns the entry for the given dependency name, or nil if the lock
// document has none.
func (l *Lockfile) Entry(name string) *LockEntry {
	if l == nil {
		return nil
	}
	for i := range l.Entries {
		if l.Entries[i].Name == name {
			return &l.Entries[i]
		}
	}
	return nil
}

// LockfileFrom builds a lock document from a resolution, stamping every entry
// with the given time.
func LockfileFrom(res *Resolution, resolvedAt time.Time) *Lockfile {
	lf := &Lockfile{Version: LockfileVersion}
	for dep := range res.Walk() {
		lf.Entries = append(lf.Entries, LockEntry{
			Name:       dep.Name,
			Source:     dep.Source,
			Commit:     dep.Commit,
			ResolvedAt: resolvedAt,
		})
	}
	return lf
}

// IntegrityState classifies one dependency's on-disk state against its lock
// entry.
type IntegrityState string

const (
	// IntegrityMatch means the checkout HEAD equals the locked commit.
	IntegrityMatch IntegrityState = "match"
	// IntegrityDrifted means the checkout exists but its HEAD differs from
	// the locked commit. Never auto-corrected.
	IntegrityDrifted IntegrityState = "drifted"
	// IntegrityMissing means the checkout directory does not exist or is not
	// a git repository.
	IntegrityMissing IntegrityState = "missing"
)

// IntegrityReport is the per-dependency result of an integrity check.
type IntegrityReport struct {
	Name   string
	State  IntegrityState
	Locked string
	Actual string
}
