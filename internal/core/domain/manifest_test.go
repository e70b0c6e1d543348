package domain_test

import (
	"errors"
	"testing"

	"go.trai.ch/sema/internal/core/domain"
)

func validManifest() *domain.Manifest {
	return &domain.Manifest{
		Version: 1,
		Dependencies: []domain.DependencySpec{
			{Name: "auth", Source: "https://git.example.com/auth.git", Reference: "v1.0.0"},
		},
		Changes: []domain.Change{
			{ID: "001-init", Ref: "v1.0.0", Migration: "migrate", Verify: "check"},
		},
		Commands: map[string]domain.Command{
			"migrate": {Name: "migrate", Run: "make migrate"},
			"check":   {Name: "check", Run: "make check"},
		},
	}
}

func TestManifest_Validate(t *testing.T) {
	if err := validManifest().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("duplicate dependency name", func(t *testing.T) {
		man := validManifest()
		man.Dependencies = append(man.Dependencies, man.Dependencies[0])

		err := man.Validate()
		if !errors.Is(err, domain.ErrDuplicateDependency) {
			t.Errorf("expected ErrDuplicateDependency, got %v", err)
		}
	})

	t.Run("empty source", func(t *testing.T) {
		man := validManifest()
		man.Dependencies[0].Source = ""

		if err := man.Validate(); err == nil {
			t.Error("expected error for empty source, got nil")
		}
	})

	t.Run("empty reference", func(t *testing.T) {
		man := validManifest()
		man.Dependencies[0].Reference = ""

		if err := man.Validate(); err == nil {
			t.Error("expected error for empty reference, got nil")
		}
	})

	t.Run("change references undeclared command", func(t *testing.T) {
		man := validManifest()
		man.Changes[0].Verify = "nonexistent"

		err := man.Validate()
		if !errors.Is(err, domain.ErrUnknownCommand) {
			t.Errorf("expected ErrUnknownCommand, got %v", err)
		}
	})

	t.Run("change without migration", func(t *testing.T) {
		man := validManifest()
		man.Changes[0].Migration = ""

		if err := man.Validate(); err == nil {
			t.Error("expected error for missing migration command, got nil")
		}
	})

	t.Run("duplicate change id", func(t *testing.T) {
		man := validManifest()
		man.Changes = append(man.Changes, man.Changes[0])

		if err := man.Validate(); err == nil {
			t.Error("expected error for duplicate change id, got nil")
		}
	})
}

func TestManifest_Dependency(t *testing.T) {
	man := validManifest()

	if dep := man.Dependency("auth"); dep == nil || dep.Reference != "v1.0.0" {
		t.Errorf("expected auth@v1.0.0, got %+v", dep)
	}
	if dep := man.Dependency("billing"); dep != nil {
		t.Errorf("expected nil for undeclared dependency, got %+v", dep)
	}
}
