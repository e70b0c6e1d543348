// Package config provides the configuration document loader for sema.
package config

import (
	"os"
	"path/filepath"

	"go.trai.ch/sema/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// FileLoader implements ports.ConfigLoader using a YAML document.
type FileLoader struct {
	// Filename is the document name looked up inside each directory.
	Filename string
}

// NewLoader creates a FileLoader with the default document name.
func NewLoader() *FileLoader {
	return &FileLoader{Filename: domain.ManifestName}
}

// Load reads the configuration document from the given directory.
// A missing document propagates fs.ErrNotExist through the wrap chain so
// callers can distinguish "leaf dependency" from a malformed document.
func (l *FileLoader) Load(dir string) (*domain.Manifest, error) {
	path := filepath.Join(dir, l.Filename)

	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read config document")
	}

	var doc Semafile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		parseErr := zerr.Wrap(err, domain.ErrParseFailed.Error())
		return nil, zerr.With(parseErr, "path", path)
	}

	man := toManifest(&doc, path)
	if err := man.Validate(); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrParseFailed.Error()), "path", path)
	}
	return man, nil
}

func toManifest(doc *Semafile, path string) *domain.Manifest {
	man := &domain.Manifest{
		Version:  doc.Version,
		Commands: make(map[string]domain.Command, len(doc.Commands)),
		Protect:  doc.Protect,
	}

	for _, dep := range doc.Dependencies {
		man.Dependencies = append(man.Dependencies, domain.DependencySpec{
			Name:       dep.Name,
			Source:     dep.Source,
			Reference:  dep.Reference,
			DeclaredBy: path,
		})
	}

	// Declaration order of changes is the application order; the slice
	// preserves it.
	for _, change := range doc.Changes {
		man.Changes = append(man.Changes, domain.Change{
			ID:        change.ID,
			Ref:       change.Ref,
			Migration: change.Migration,
			Verify:    change.Verify,
		})
	}

	for name, cmd := range doc.Commands {
		man.Commands[name] = domain.Command{
			Name: name,
			Run:  cmd.Run,
			Dir:  cmd.Dir,
			Env:  cmd.Env,
		}
	}

	return man
}
