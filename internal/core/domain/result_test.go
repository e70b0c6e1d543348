package domain_test

import (
	"errors"
	"testing"

	"go.trai.ch/sema/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestClassifyError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want domain.Outcome
	}{
		{"nil", nil, domain.OutcomeSuccess},
		{"conflict", domain.ErrConflict, domain.OutcomeConflict},
		{"wrapped conflict", zerr.Wrap(domain.ErrConflict, "resolving graph"), domain.OutcomeConflict},
		{"drift", domain.ErrIntegrityDrift, domain.OutcomeIntegrityDrift},
		{"command failure", zerr.With(domain.ErrCommandFailed, "exit_code", 3), domain.OutcomeCommandFailure},
		{"snapshot failure", domain.ErrSnapshotFailed, domain.OutcomeAborted},
		{"anything else", errors.New("boom"), domain.OutcomeAborted},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := domain.ClassifyError(tc.err); got != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestResult_Failure(t *testing.T) {
	result := domain.Failure(domain.ErrConflict)

	if result.OK() {
		t.Error("failure result must not report OK")
	}
	if result.Outcome != domain.OutcomeConflict {
		t.Errorf("expected conflict outcome, got %s", result.Outcome)
	}
	if !errors.Is(result.Err, domain.ErrConflict) {
		t.Errorf("expected ErrConflict to be preserved, got %v", result.Err)
	}
}

func TestCommandResult_Failed(t *testing.T) {
	if (domain.CommandResult{ExitCode: 0}).Failed() {
		t.Error("zero exit must not be a failure")
	}
	if !(domain.CommandResult{ExitCode: 2}).Failed() {
		t.Error("non-zero exit must be a failure")
	}
	if !(domain.CommandResult{ExitCode: 0, TimedOut: true}).Failed() {
		t.Error("timeout must be a failure even with exit 0")
	}
}
