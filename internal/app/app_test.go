package app_test

import (
	"context"
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/sema/internal/app"
	"go.trai.ch/sema/internal/core/domain"
	"go.trai.ch/sema/internal/core/ports/mocks"
	"go.trai.ch/sema/internal/engine/resolver"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	git    *mocks.MockGit
	loader *mocks.MockConfigLoader
	locks  *mocks.MockLockStore
	layout domain.Layout
	app    *app.App
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)

	f := &fixture{
		git:    mocks.NewMockGit(ctrl),
		loader: mocks.NewMockConfigLoader(ctrl),
		locks:  mocks.NewMockLockStore(ctrl),
		layout: domain.NewLayout(t.TempDir()),
	}

	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any()).AnyTimes()

	res := resolver.New(f.git, f.loader, log)
	f.app = app.New(f.layout, res, nil, f.locks, f.loader, log)
	return f
}

func TestResolve_WritesLock(t *testing.T) {
	f := newFixture(t)

	f.loader.EXPECT().Load(f.layout.Root).Return(&domain.Manifest{
		Dependencies: []domain.DependencySpec{
			{Name: "auth", Source: "https://git.example.com/auth.git", Reference: "v1", DeclaredBy: "sema.yaml"},
		},
	}, nil)

	path := f.layout.CheckoutPath("auth")
	f.git.EXPECT().Clone(gomock.Any(), "https://git.example.com/auth.git", path).Return(nil)
	f.git.EXPECT().Fetch(gomock.Any(), path, "v1").Return("commit-1", nil)
	f.git.EXPECT().Checkout(gomock.Any(), path, "commit-1").Return(nil)
	f.loader.EXPECT().Load(path).Return(nil, zerr.Wrap(fs.ErrNotExist, "no document"))

	f.locks.EXPECT().Write(gomock.Cond(func(lf *domain.Lockfile) bool {
		entry := lf.Entry("auth")
		return entry != nil && entry.Commit == "commit-1"
	})).Return(nil)

	result := f.app.Resolve(context.Background())
	require.True(t, result.OK(), "resolve failed: %v", result.Err)
	assert.Equal(t, 1, result.Resolved.Len())
}

func TestResolve_ConflictOutcome(t *testing.T) {
	f := newFixture(t)

	f.loader.EXPECT().Load(f.layout.Root).
		Return(nil, zerr.Wrap(domain.ErrConflict, "duplicate request"))

	result := f.app.Resolve(context.Background())
	assert.Equal(t, domain.OutcomeConflict, result.Outcome)
	assert.Error(t, result.Err)
}

func TestStatus_NoLockIsSuccess(t *testing.T) {
	f := newFixture(t)
	f.locks.EXPECT().Read().Return(nil, nil)

	result := f.app.Status(context.Background(), app.StatusOptions{})
	assert.True(t, result.OK())
	assert.Empty(t, result.Integrity)
}

func TestStatus_ReportsDrift(t *testing.T) {
	f := newFixture(t)

	lf := &domain.Lockfile{Entries: []domain.LockEntry{{Name: "auth", Commit: "commit-1"}}}
	reports := []domain.IntegrityReport{
		{Name: "auth", State: domain.IntegrityDrifted, Locked: "commit-1", Actual: "commit-9"},
	}
	f.locks.EXPECT().Read().Return(lf, nil)
	f.locks.EXPECT().VerifyIntegrity(gomock.Any(), lf).Return(reports, nil)

	// Without strict, drift is a report, not a failure.
	result := f.app.Status(context.Background(), app.StatusOptions{})
	assert.True(t, result.OK())
	assert.Equal(t, reports, result.Integrity)
}

func TestStatus_StrictDriftFails(t *testing.T) {
	f := newFixture(t)

	lf := &domain.Lockfile{Entries: []domain.LockEntry{{Name: "auth", Commit: "commit-1"}}}
	reports := []domain.IntegrityReport{
		{Name: "auth", State: domain.IntegrityMissing, Locked: "commit-1"},
	}
	f.locks.EXPECT().Read().Return(lf, nil)
	f.locks.EXPECT().VerifyIntegrity(gomock.Any(), lf).Return(reports, nil)

	result := f.app.Status(context.Background(), app.StatusOptions{Strict: true})
	assert.Equal(t, domain.OutcomeIntegrityDrift, result.Outcome)
	assert.True(t, errors.Is(result.Err, domain.ErrIntegrityDrift))
	assert.Equal(t, reports, result.Integrity)
}

func TestValidate(t *testing.T) {
	f := newFixture(t)

	f.loader.EXPECT().Load(f.layout.Root).Return(&domain.Manifest{}, nil)
	assert.True(t, f.app.Validate(context.Background()).OK())

	f.loader.EXPECT().Load(f.layout.Root).
		Return(nil, zerr.Wrap(domain.ErrParseFailed, "bad document"))
	result := f.app.Validate(context.Background())
	assert.False(t, result.OK())
	assert.Equal(t, domain.OutcomeAborted, result.Outcome)
}
