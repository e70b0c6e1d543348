// Package lockfile persists the lock document and checks checkout integrity.
package lockfile

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/sema/internal/core/domain"
	"go.trai.ch/sema/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Store implements ports.LockStore using a flat YAML file.
type Store struct {
	layout domain.Layout
	git    ports.Git
}

// NewStore creates a LockStore for the repository described by layout.
func NewStore(layout domain.Layout, git ports.Git) *Store {
	return &Store{layout: layout, git: git}
}

type lockDoc struct {
	Version int        `yaml:"version"`
	Entries []entryDoc `yaml:"entries"`
}

type entryDoc struct {
	Name       string    `yaml:"name"`
	Source     string    `yaml:"source"`
	Commit     string    `yaml:"commit"`
	ResolvedAt time.Time `yaml:"resolved_at"`
}

// Read returns the persisted lock document, or nil, nil when none exists.
func (s *Store) Read() (*domain.Lockfile, error) {
	data, err := os.ReadFile(s.layout.LockPath()) //nolint:gosec // path is derived from the repository root
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.Wrap(err, "failed to read lock document")
	}

	var doc lockDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, zerr.Wrap(err, "failed to unmarshal lock document")
	}

	lf := &domain.Lockfile{Version: doc.Version}
	for _, e := range doc.Entries {
		lf.Entries = append(lf.Entries, domain.LockEntry{
			Name:       e.Name,
			Source:     e.Source,
			Commit:     e.Commit,
			ResolvedAt: e.ResolvedAt,
		})
	}
	return lf, nil
}

// Write persists the lock document. The document is written to a temporary
// file first and renamed into place, so a concurrent reader never observes a
// partial write.
func (s *Store) Write(lf *domain.Lockfile) error {
	doc := lockDoc{Version: lf.Version}
	for _, e := range lf.Entries {
		doc.Entries = append(doc.Entries, entryDoc{
			Name:       e.Name,
			Source:     e.Source,
			Commit:     e.Commit,
			ResolvedAt: e.ResolvedAt.UTC(),
		})
	}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return zerr.Wrap(err, "failed to marshal lock document")
	}

	path := s.layout.LockPath()
	tmp, err := os.CreateTemp(filepath.Dir(path), domain.LockName+".*")
	if err != nil {
		return zerr.Wrap(err, "failed to create temporary lock document")
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return zerr.Wrap(err, "failed to write lock document")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return zerr.Wrap(err, "failed to close lock document")
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return zerr.Wrap(err, "failed to move lock document into place")
	}
	return nil
}

// VerifyIntegrity compares each entry against the actual checkout state. The
// reports come back in lock order, one per entry. Drift is reported, never
// corrected.
func (s *Store) VerifyIntegrity(ctx context.Context, lf *domain.Lockfile) ([]domain.IntegrityReport, error) {
	reports := make([]domain.IntegrityReport, 0, len(lf.Entries))

	for _, entry := range lf.Entries {
		report := domain.IntegrityReport{
			Name:   entry.Name,
			Locked: entry.Commit,
		}

		path := s.layout.CheckoutPath(entry.Name)
		if _, err := os.Stat(path); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, zerr.With(zerr.Wrap(err, "failed to stat checkout"), "dependency", entry.Name)
			}
			report.State = domain.IntegrityMissing
			reports = append(reports, report)
			continue
		}

		head, err := s.git.HeadCommit(ctx, path)
		if err != nil {
			// A directory that exists but is not a usable repository counts
			// as missing, same as no directory at all.
			report.State = domain.IntegrityMissing
			reports = append(reports, report)
			continue
		}

		report.Actual = head
		if head == entry.Commit {
			report.State = domain.IntegrityMatch
		} else {
			report.State = domain.IntegrityDrifted
		}
		reports = append(reports, report)
	}

	return reports, nil
}
