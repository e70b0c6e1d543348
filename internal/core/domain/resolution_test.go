package domain_test

import (
	"errors"
	"testing"

	"go.trai.ch/sema/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestResolution_Add(t *testing.T) {
	res := domain.NewResolution()
	dep := domain.ResolvedDependency{Name: "auth", Commit: "abc123"}

	if err := res.Add(&dep); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := res.Add(&dep); err == nil {
		t.Error("expected error when adding duplicate dependency, got nil")
	} else {
		if !errors.Is(err, domain.ErrDuplicateDependency) {
			t.Errorf("expected ErrDuplicateDependency, got %v", err)
		}
		// Verify metadata
		zErr, ok := err.(*zerr.Error)
		if !ok {
			t.Fatalf("expected *zerr.Error, got %T", err)
		}
		meta := zErr.Metadata()
		if name, ok := meta["dependency"].(string); !ok || name != "auth" {
			t.Errorf("expected metadata dependency=auth, got %v", meta["dependency"])
		}
	}
}

func TestResolution_Walk(t *testing.T) {
	res := domain.NewResolution()
	for _, name := range []string{"billing", "auth", "schema"} {
		if err := res.Add(&domain.ResolvedDependency{Name: name}); err != nil {
			t.Fatalf("failed to add %s: %v", name, err)
		}
	}

	walked := make([]string, 0, 3)
	for dep := range res.Walk() {
		walked = append(walked, dep.Name)
	}

	// Walk preserves insertion order, not lexical order.
	if len(walked) != 3 || walked[0] != "billing" || walked[1] != "auth" || walked[2] != "schema" {
		t.Errorf("unexpected walk order: %v", walked)
	}
}

func TestResolution_Get(t *testing.T) {
	res := domain.NewResolution()
	if err := res.Add(&domain.ResolvedDependency{Name: "auth", Commit: "abc123"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if dep := res.Get("auth"); dep == nil || dep.Commit != "abc123" {
		t.Errorf("expected auth@abc123, got %+v", dep)
	}
	if dep := res.Get("missing"); dep != nil {
		t.Errorf("expected nil for unknown name, got %+v", dep)
	}
}
