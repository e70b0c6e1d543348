package resolver_test

import (
	"context"
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/sema/internal/core/domain"
	"go.trai.ch/sema/internal/core/ports/mocks"
	"go.trai.ch/sema/internal/engine/resolver"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	git    *mocks.MockGit
	loader *mocks.MockConfigLoader
	logger *mocks.MockLogger
	layout domain.Layout
	r      *resolver.Resolver
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	f := &fixture{
		git:    mocks.NewMockGit(ctrl),
		loader: mocks.NewMockConfigLoader(ctrl),
		logger: mocks.NewMockLogger(ctrl),
		layout: domain.NewLayout(t.TempDir()),
	}
	f.logger.EXPECT().Info(gomock.Any()).AnyTimes()
	f.r = resolver.New(f.git, f.loader, f.logger)
	return f
}

func spec(name, source, ref, declaredBy string) domain.DependencySpec {
	return domain.DependencySpec{Name: name, Source: source, Reference: ref, DeclaredBy: declaredBy}
}

// expectFetch wires the clone/fetch/checkout sequence for one dependency
// that has no checkout yet.
func (f *fixture) expectFetch(name, source, ref, commit string) {
	path := f.layout.CheckoutPath(name)
	f.git.EXPECT().Clone(gomock.Any(), source, path).Return(nil)
	f.git.EXPECT().Fetch(gomock.Any(), path, ref).Return(commit, nil)
	f.git.EXPECT().Checkout(gomock.Any(), path, commit).Return(nil)
}

func leafErr() error {
	return zerr.Wrap(fs.ErrNotExist, "failed to read config document")
}

func TestResolve_DiamondDeduplicates(t *testing.T) {
	f := newFixture(t)

	// root -> a, b; a -> c; b -> c (same source and reference).
	f.loader.EXPECT().Load(f.layout.Root).Return(&domain.Manifest{
		Dependencies: []domain.DependencySpec{
			spec("a", "https://git.example.com/a.git", "v1", "sema.yaml"),
			spec("b", "https://git.example.com/b.git", "v1", "sema.yaml"),
		},
	}, nil)

	f.expectFetch("a", "https://git.example.com/a.git", "v1", "commit-a")
	f.expectFetch("b", "https://git.example.com/b.git", "v1", "commit-b")
	f.expectFetch("c", "https://git.example.com/c.git", "v3", "commit-c")

	f.loader.EXPECT().Load(f.layout.CheckoutPath("a")).Return(&domain.Manifest{
		Dependencies: []domain.DependencySpec{
			spec("c", "https://git.example.com/c.git", "v3", "deps/a/sema.yaml"),
		},
	}, nil)
	f.loader.EXPECT().Load(f.layout.CheckoutPath("b")).Return(&domain.Manifest{
		Dependencies: []domain.DependencySpec{
			spec("c", "https://git.example.com/c.git", "v3", "deps/b/sema.yaml"),
		},
	}, nil)
	f.loader.EXPECT().Load(f.layout.CheckoutPath("c")).Return(nil, leafErr())

	res, err := f.r.Resolve(context.Background(), f.layout, nil)
	require.NoError(t, err)

	// Breadth-first, declaration order.
	var order []string
	for dep := range res.Walk() {
		order = append(order, dep.Name)
	}
	assert.Equal(t, []string{"a", "b", "c"}, order)

	c := res.Get("c")
	require.NotNil(t, c)
	assert.Equal(t, "commit-c", c.Commit)
	assert.Equal(t, []string{"deps/a/sema.yaml", "deps/b/sema.yaml"}, c.RequestedBy)
}

func TestResolve_ConflictOnSource(t *testing.T) {
	f := newFixture(t)

	f.loader.EXPECT().Load(f.layout.Root).Return(&domain.Manifest{
		Dependencies: []domain.DependencySpec{
			spec("a", "https://git.example.com/a.git", "v1", "sema.yaml"),
			spec("b", "https://git.example.com/b.git", "v1", "sema.yaml"),
		},
	}, nil)

	f.expectFetch("a", "https://git.example.com/a.git", "v1", "commit-a")
	f.expectFetch("b", "https://git.example.com/b.git", "v1", "commit-b")

	f.loader.EXPECT().Load(f.layout.CheckoutPath("a")).Return(&domain.Manifest{
		Dependencies: []domain.DependencySpec{
			spec("shared", "https://git.example.com/shared.git", "v1", "deps/a/sema.yaml"),
		},
	}, nil)
	f.loader.EXPECT().Load(f.layout.CheckoutPath("b")).Return(&domain.Manifest{
		Dependencies: []domain.DependencySpec{
			spec("shared", "https://git.example.com/fork.git", "v1", "deps/b/sema.yaml"),
		},
	}, nil)

	f.expectFetch("shared", "https://git.example.com/shared.git", "v1", "commit-s")
	f.loader.EXPECT().Load(f.layout.CheckoutPath("shared")).Return(nil, leafErr())

	_, err := f.r.Resolve(context.Background(), f.layout, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	// The diagnostic names both requesting documents.
	assert.Contains(t, err.Error(), "shared")
}

func TestResolve_ConflictOnResolvedCommit(t *testing.T) {
	f := newFixture(t)

	f.loader.EXPECT().Load(f.layout.Root).Return(&domain.Manifest{
		Dependencies: []domain.DependencySpec{
			spec("shared", "https://git.example.com/shared.git", "v1", "sema.yaml"),
			spec("shared", "https://git.example.com/shared.git", "v2", "sema.yaml"),
		},
	}, nil)

	f.expectFetch("shared", "https://git.example.com/shared.git", "v1", "commit-1")
	f.loader.EXPECT().Load(f.layout.CheckoutPath("shared")).Return(nil, leafErr())

	f.git.EXPECT().ResolveRef(gomock.Any(), f.layout.CheckoutPath("shared"), "v2").Return("commit-2", nil)

	_, err := f.r.Resolve(context.Background(), f.layout, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestResolve_DifferentRefsSameCommitReconcile(t *testing.T) {
	f := newFixture(t)

	// A tag and a branch pointing at the same commit are not a conflict.
	f.loader.EXPECT().Load(f.layout.Root).Return(&domain.Manifest{
		Dependencies: []domain.DependencySpec{
			spec("shared", "https://git.example.com/shared.git", "v1.0.0", "sema.yaml"),
			spec("shared", "https://git.example.com/shared.git", "release-1", "sema.yaml"),
		},
	}, nil)

	f.expectFetch("shared", "https://git.example.com/shared.git", "v1.0.0", "commit-1")
	f.loader.EXPECT().Load(f.layout.CheckoutPath("shared")).Return(nil, leafErr())

	f.git.EXPECT().ResolveRef(gomock.Any(), f.layout.CheckoutPath("shared"), "release-1").Return("commit-1", nil)

	res, err := f.r.Resolve(context.Background(), f.layout, nil)
	require.NoError(t, err)
	require.Equal(t, 1, res.Len())
	assert.Len(t, res.Get("shared").RequestedBy, 2)
}

func TestResolve_FetchFailureAborts(t *testing.T) {
	f := newFixture(t)

	f.loader.EXPECT().Load(f.layout.Root).Return(&domain.Manifest{
		Dependencies: []domain.DependencySpec{
			spec("a", "https://git.example.com/a.git", "v1", "sema.yaml"),
		},
	}, nil)

	path := f.layout.CheckoutPath("a")
	f.git.EXPECT().Clone(gomock.Any(), "https://git.example.com/a.git", path).
		Return(zerr.Wrap(domain.ErrFetchFailed, "repository not found"))

	_, err := f.r.Resolve(context.Background(), f.layout, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrFetchFailed))
}

func TestResolve_MalformedTransitiveDocumentAborts(t *testing.T) {
	f := newFixture(t)

	f.loader.EXPECT().Load(f.layout.Root).Return(&domain.Manifest{
		Dependencies: []domain.DependencySpec{
			spec("a", "https://git.example.com/a.git", "v1", "sema.yaml"),
		},
	}, nil)

	f.expectFetch("a", "https://git.example.com/a.git", "v1", "commit-a")
	f.loader.EXPECT().Load(f.layout.CheckoutPath("a")).
		Return(nil, zerr.Wrap(domain.ErrParseFailed, "bad document"))

	_, err := f.r.Resolve(context.Background(), f.layout, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrParseFailed))
}

func TestResolve_OverrideReplacesDeclaredReference(t *testing.T) {
	f := newFixture(t)

	f.loader.EXPECT().Load(f.layout.Root).Return(&domain.Manifest{
		Dependencies: []domain.DependencySpec{
			spec("a", "https://git.example.com/a.git", "v1", "sema.yaml"),
		},
	}, nil)

	// The declared v1 is replaced by the requested v2.
	f.expectFetch("a", "https://git.example.com/a.git", "v2", "commit-a2")
	f.loader.EXPECT().Load(f.layout.CheckoutPath("a")).Return(nil, leafErr())

	res, err := f.r.Resolve(context.Background(), f.layout, map[string]string{"a": "v2"})
	require.NoError(t, err)
	require.NotNil(t, res.Get("a"))
	assert.Equal(t, "commit-a2", res.Get("a").Commit)
	assert.Equal(t, "v2", res.Get("a").Reference)
}

func TestResolve_MissingRootDocumentFails(t *testing.T) {
	f := newFixture(t)
	f.loader.EXPECT().Load(f.layout.Root).Return(nil, leafErr())

	_, err := f.r.Resolve(context.Background(), f.layout, nil)
	require.Error(t, err)
}

func TestResolve_EmptyRootResolvesEmpty(t *testing.T) {
	f := newFixture(t)
	f.loader.EXPECT().Load(f.layout.Root).Return(&domain.Manifest{}, nil)

	res, err := f.r.Resolve(context.Background(), f.layout, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Len())
}
