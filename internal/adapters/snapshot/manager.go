// Package snapshot implements filesystem state capture for transactions.
//
// A snapshot records the byte-for-byte state of a set of paths into a JSON
// manifest under the engine state directory. Restore replays the manifest,
// so it works whether or not the captured paths are under version control.
package snapshot

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/sema/internal/core/domain"
	"go.trai.ch/zerr"
)

const schemaVersion = 1

type entryKind string

const (
	kindFile   entryKind = "file"
	kindDir    entryKind = "dir"
	kindAbsent entryKind = "absent"
)

type entry struct {
	Path          string    `json:"path"`
	Kind          entryKind `json:"kind"`
	Perm          *uint32   `json:"perm,omitempty"`
	ContentBase64 string    `json:"content_base64,omitempty"`
	ContentHash   string    `json:"content_hash,omitempty"`
}

type manifest struct {
	SchemaVersion int      `json:"schema_version"`
	SnapshotID    string   `json:"snapshot_id"`
	CreatedAtUTC  string   `json:"created_at_utc"`
	Targets       []string `json:"targets"`
	Entries       []entry  `json:"entries"`
}

// Manager implements ports.Snapshotter with JSON manifests under the state
// directory.
type Manager struct {
	layout domain.Layout
	now    func() time.Time
}

// NewManager creates a snapshot manager for the repository described by
// layout.
func NewManager(layout domain.Layout) *Manager {
	return &Manager{layout: layout, now: time.Now}
}

// Capture records the current state of the named paths. Paths that do not
// exist yet are recorded as absent, so Restore can remove anything a failed
// transaction created there.
func (m *Manager) Capture(paths []string) (domain.Snapshot, error) {
	now := m.now().UTC()
	man := manifest{
		SchemaVersion: schemaVersion,
		SnapshotID:    fmt.Sprintf("%s-%d", now.Format("20060102-150405"), now.UnixNano()),
		CreatedAtUTC:  now.Format(time.RFC3339),
	}

	for _, path := range paths {
		man.Targets = append(man.Targets, filepath.Clean(path))
	}
	sort.Strings(man.Targets)

	for _, target := range man.Targets {
		entries, err := captureTarget(target)
		if err != nil {
			return domain.Snapshot{}, zerr.With(zerr.Wrap(err, domain.ErrSnapshotFailed.Error()), "path", target)
		}
		man.Entries = append(man.Entries, entries...)
	}
	sort.Slice(man.Entries, func(i, j int) bool { return man.Entries[i].Path < man.Entries[j].Path })

	if err := m.write(man); err != nil {
		return domain.Snapshot{}, zerr.Wrap(err, domain.ErrSnapshotFailed.Error())
	}

	return domain.Snapshot{ID: man.SnapshotID, Paths: man.Targets}, nil
}

// Restore reverts the captured paths to their captured state. Every target
// is removed first and rebuilt from the manifest, so files a failed
// transaction created under a captured directory disappear as well.
// Restore is idempotent.
func (m *Manager) Restore(snapshot domain.Snapshot) error {
	man, err := m.read(snapshot)
	if err != nil {
		return err
	}

	for _, target := range man.Targets {
		if err := os.RemoveAll(target); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrSnapshotFailed.Error()), "path", target)
		}
	}

	// Entries are sorted by path, so directories come before their contents.
	for _, e := range man.Entries {
		if err := restoreEntry(e); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrSnapshotFailed.Error()), "path", e.Path)
		}
	}
	return nil
}

// Discard releases the snapshot's storage. Discarding a snapshot that is
// already gone is not an error.
func (m *Manager) Discard(snapshot domain.Snapshot) error {
	if !snapshot.Valid() {
		return nil
	}
	if err := os.Remove(m.manifestPath(snapshot.ID)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return zerr.Wrap(err, "failed to discard snapshot")
	}
	return nil
}

func (m *Manager) manifestPath(id string) string {
	return filepath.Join(m.layout.SnapshotsDir(), id+".json")
}

func (m *Manager) write(man manifest) error {
	if err := os.MkdirAll(m.layout.SnapshotsDir(), 0o750); err != nil {
		return zerr.Wrap(err, "failed to create snapshots directory")
	}

	data, err := json.MarshalIndent(man, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal snapshot manifest")
	}

	path := m.manifestPath(man.SnapshotID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return zerr.Wrap(err, "failed to write snapshot manifest")
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return zerr.Wrap(err, "failed to move snapshot manifest into place")
	}
	return nil
}

func (m *Manager) read(snapshot domain.Snapshot) (manifest, error) {
	if !snapshot.Valid() {
		return manifest{}, zerr.Wrap(domain.ErrSnapshotFailed, "invalid snapshot handle")
	}

	data, err := os.ReadFile(m.manifestPath(snapshot.ID)) //nolint:gosec // path is derived from the state dir
	if err != nil {
		return manifest{}, zerr.With(zerr.Wrap(err, domain.ErrSnapshotFailed.Error()), "snapshot", snapshot.ID)
	}

	var man manifest
	if err := json.Unmarshal(data, &man); err != nil {
		return manifest{}, zerr.With(zerr.Wrap(err, domain.ErrSnapshotFailed.Error()), "snapshot", snapshot.ID)
	}
	if man.SchemaVersion != schemaVersion {
		err := zerr.Wrap(domain.ErrSnapshotFailed, "unsupported snapshot schema version")
		return manifest{}, zerr.With(err, "version", man.SchemaVersion)
	}
	return man, nil
}

func captureTarget(target string) ([]entry, error) {
	info, err := os.Stat(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []entry{{Path: target, Kind: kindAbsent}}, nil
		}
		return nil, err
	}

	if !info.IsDir() {
		e, err := captureFile(target, info.Mode())
		if err != nil {
			return nil, err
		}
		return []entry{e}, nil
	}

	var entries []entry
	err = filepath.WalkDir(target, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if d.IsDir() {
			entries = append(entries, entry{Path: path, Kind: kindDir, Perm: permOf(info.Mode())})
			return nil
		}
		e, err := captureFile(path, info.Mode())
		if err != nil {
			return err
		}
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func captureFile(path string, mode fs.FileMode) (entry, error) {
	content, err := os.ReadFile(path) //nolint:gosec // capture targets are declared by the caller
	if err != nil {
		return entry{}, err
	}
	return entry{
		Path:          path,
		Kind:          kindFile,
		Perm:          permOf(mode),
		ContentBase64: base64.StdEncoding.EncodeToString(content),
		ContentHash:   fmt.Sprintf("%016x", xxhash.Sum64(content)),
	}, nil
}

func restoreEntry(e entry) error {
	switch e.Kind {
	case kindAbsent:
		return nil
	case kindDir:
		return os.MkdirAll(e.Path, permFrom(e.Perm, 0o750))
	case kindFile:
		content, err := base64.StdEncoding.DecodeString(e.ContentBase64)
		if err != nil {
			return zerr.Wrap(err, "corrupt snapshot content")
		}
		if sum := fmt.Sprintf("%016x", xxhash.Sum64(content)); sum != e.ContentHash {
			return zerr.New("snapshot content hash mismatch")
		}
		if err := os.MkdirAll(filepath.Dir(e.Path), 0o750); err != nil {
			return err
		}
		return os.WriteFile(e.Path, content, permFrom(e.Perm, 0o600))
	default:
		return zerr.With(zerr.New("invalid snapshot entry kind"), "kind", string(e.Kind))
	}
}

func permOf(mode fs.FileMode) *uint32 {
	perm := uint32(mode.Perm())
	return &perm
}

func permFrom(perm *uint32, fallback fs.FileMode) fs.FileMode {
	if perm == nil {
		return fallback
	}
	return fs.FileMode(*perm) & fs.ModePerm
}
