// Package resolver implements dependency graph traversal: fetching declared
// dependencies, deduplicating them by name, and detecting conflicts.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"

	"go.trai.ch/sema/internal/core/domain"
	"go.trai.ch/sema/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Resolver traverses the dependency graph breadth-first from the root
// configuration document.
type Resolver struct {
	git    ports.Git
	loader ports.ConfigLoader
	logger ports.Logger
}

// New creates a Resolver.
func New(git ports.Git, loader ports.ConfigLoader, logger ports.Logger) *Resolver {
	return &Resolver{git: git, loader: loader, logger: logger}
}

// fetchResult is the outcome of materializing one dependency checkout.
type fetchResult struct {
	commit   string
	manifest *domain.Manifest
}

// Resolve traverses the graph declared by the repository at layout.Root and
// returns the deduplicated resolution. overrides replaces the declared
// reference of root-level dependencies by name; an upgrade passes the
// requested target reference this way. nil means resolve as declared.
//
// Traversal is breadth-first. Within one frontier the unseen dependencies
// are fetched concurrently, then merged in declaration order, so the
// resulting order is deterministic for a given graph. Two documents may
// request the same name only if they agree on the source and their
// references resolve to the same commit; anything else is a conflict and
// aborts the whole resolution.
func (r *Resolver) Resolve(ctx context.Context, layout domain.Layout, overrides map[string]string) (*domain.Resolution, error) {
	root, err := r.loader.Load(layout.Root)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load root configuration document")
	}

	res := domain.NewResolution()
	frontier := make([]domain.DependencySpec, len(root.Dependencies))
	copy(frontier, root.Dependencies)
	for i := range frontier {
		if ref, ok := overrides[frontier[i].Name]; ok && ref != "" {
			frontier[i].Reference = ref
		}
	}

	for len(frontier) > 0 {
		fetched, err := r.fetchFrontier(ctx, layout, res, frontier)
		if err != nil {
			return nil, err
		}

		var next []domain.DependencySpec
		for _, spec := range frontier {
			existing := res.Get(spec.Name)
			if existing != nil {
				if err := r.reconcile(ctx, layout, existing, spec); err != nil {
					return nil, err
				}
				continue
			}

			result := fetched[spec.Name]
			dep := &domain.ResolvedDependency{
				Name:        spec.Name,
				Source:      spec.Source,
				Commit:      result.commit,
				Reference:   spec.Reference,
				RequestedBy: []string{spec.DeclaredBy},
			}
			if err := res.Add(dep); err != nil {
				return nil, err
			}
			r.logger.Info(fmt.Sprintf("resolved %s %s -> %s", dep.Name, dep.Reference, dep.Commit))

			if result.manifest != nil {
				next = append(next, result.manifest.Dependencies...)
			}
		}
		frontier = next
	}

	return res, nil
}

// fetchFrontier materializes every not-yet-resolved dependency of the
// frontier concurrently. The first spec for a name wins; later duplicates
// are reconciled against it afterwards.
func (r *Resolver) fetchFrontier(ctx context.Context, layout domain.Layout, res *domain.Resolution, frontier []domain.DependencySpec) (map[string]fetchResult, error) {
	jobs := make(map[string]domain.DependencySpec, len(frontier))
	for _, spec := range frontier {
		if res.Get(spec.Name) != nil {
			continue
		}
		if _, claimed := jobs[spec.Name]; claimed {
			continue
		}
		jobs[spec.Name] = spec
	}

	results := make(map[string]fetchResult, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	type keyed struct {
		name   string
		result fetchResult
	}
	out := make(chan keyed, len(jobs))

	for _, spec := range jobs {
		g.Go(func() error {
			result, err := r.fetchOne(gctx, layout, spec)
			if err != nil {
				return err
			}
			out <- keyed{name: spec.Name, result: result}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	close(out)
	for k := range out {
		results[k.name] = k.result
	}
	return results, nil
}

// fetchOne clones or updates one checkout, pins it to the requested
// reference's commit, and loads its configuration document. A dependency
// without a document is a leaf.
func (r *Resolver) fetchOne(ctx context.Context, layout domain.Layout, spec domain.DependencySpec) (fetchResult, error) {
	path := layout.CheckoutPath(spec.Name)

	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fetchResult{}, zerr.With(zerr.Wrap(err, domain.ErrFetchFailed.Error()), "dependency", spec.Name)
		}
		if err := r.git.Clone(ctx, spec.Source, path); err != nil {
			return fetchResult{}, zerr.With(err, "dependency", spec.Name)
		}
	}

	commit, err := r.git.Fetch(ctx, path, spec.Reference)
	if err != nil {
		return fetchResult{}, zerr.With(err, "dependency", spec.Name)
	}
	if err := r.git.Checkout(ctx, path, commit); err != nil {
		return fetchResult{}, zerr.With(zerr.Wrap(err, domain.ErrFetchFailed.Error()), "dependency", spec.Name)
	}

	man, err := r.loader.Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fetchResult{commit: commit}, nil
		}
		return fetchResult{}, zerr.With(err, "dependency", spec.Name)
	}

	return fetchResult{commit: commit, manifest: man}, nil
}

// reconcile checks a duplicate request against the already-resolved node.
// Agreement on source and resolved commit merges the edge; any disagreement
// is a conflict naming both requesting documents.
func (r *Resolver) reconcile(ctx context.Context, layout domain.Layout, existing *domain.ResolvedDependency, spec domain.DependencySpec) error {
	if spec.Source != existing.Source {
		return conflict(existing, spec, "source mismatch")
	}

	if spec.Reference != existing.Reference {
		commit, err := r.git.ResolveRef(ctx, layout.CheckoutPath(spec.Name), spec.Reference)
		if err != nil {
			fetchErr := zerr.Wrap(err, domain.ErrFetchFailed.Error())
			return zerr.With(fetchErr, "dependency", spec.Name)
		}
		if commit != existing.Commit {
			return conflict(existing, spec, "references resolve to different commits")
		}
	}

	existing.RequestedBy = append(existing.RequestedBy, spec.DeclaredBy)
	return nil
}

func conflict(existing *domain.ResolvedDependency, spec domain.DependencySpec, reason string) error {
	err := zerr.With(domain.ErrConflict, "dependency", spec.Name)
	err = zerr.With(err, "reason", reason)
	err = zerr.With(err, "requested_by", existing.RequestedBy[0])
	return zerr.With(err, "also_requested_by", spec.DeclaredBy)
}
