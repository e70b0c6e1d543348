package ports

import "go.trai.ch/sema/internal/core/domain"

// ConfigLoader loads the configuration document of a repository.
//
// Load returns an error satisfying errors.Is(err, fs.ErrNotExist) when the
// directory has no configuration document; the resolver treats such a
// dependency as a leaf.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration document from the given directory.
	Load(dir string) (*domain.Manifest, error)
}
