package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/sema/internal/app"
	"go.trai.ch/sema/internal/core/domain"
	"go.trai.ch/sema/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLoader := mocks.NewMockConfigLoader(ctrl)
	mockLocks := mocks.NewMockLockStore(ctrl)
	mockLogger := mocks.NewMockLogger(ctrl)

	application := app.New(domain.NewLayout("."), nil, nil, mockLocks, mockLoader, mockLogger)

	provider := func(_ context.Context) (*app.Components, error) {
		return &app.Components{
			App:    application,
			Logger: mockLogger,
		}, nil
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stderr, provider)
	assert.Equal(t, 0, exitCode)
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	provider := func(_ context.Context) (*app.Components, error) {
		return nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

// TestRun_ExecutionError verifies that run returns 1 when the command execution fails.
func TestRun_ExecutionError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLoader := mocks.NewMockConfigLoader(ctrl)
	mockLocks := mocks.NewMockLockStore(ctrl)
	mockLogger := mocks.NewMockLogger(ctrl)

	// Validate fails when the configuration document cannot be loaded.
	mockLoader.EXPECT().Load(".").Return(nil, errors.New("load failed"))

	application := app.New(domain.NewLayout("."), nil, nil, mockLocks, mockLoader, mockLogger)

	provider := func(_ context.Context) (*app.Components, error) {
		return &app.Components{
			App:    application,
			Logger: mockLogger,
		}, nil
	}

	cwd, _ := os.Getwd()
	tmp := t.TempDir()
	_ = os.Chdir(tmp)
	defer func() {
		_ = os.Chdir(cwd)
	}()

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"validate"}, stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "load failed")
}
