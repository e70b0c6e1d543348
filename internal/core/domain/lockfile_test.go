package domain_test

import (
	"testing"
	"time"

	"go.trai.ch/sema/internal/core/domain"
)

func TestLockfileFrom(t *testing.T) {
	res := domain.NewResolution()
	for _, dep := range []*domain.ResolvedDependency{
		{Name: "schema", Source: "https://git.example.com/schema.git", Commit: "commit-s"},
		{Name: "auth", Source: "https://git.example.com/auth.git", Commit: "commit-a"},
	} {
		if err := res.Add(dep); err != nil {
			t.Fatalf("failed to add %s: %v", dep.Name, err)
		}
	}

	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	lf := domain.LockfileFrom(res, now)

	if lf.Version != domain.LockfileVersion {
		t.Errorf("expected version %d, got %d", domain.LockfileVersion, lf.Version)
	}
	if len(lf.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(lf.Entries))
	}
	// Entries keep resolution order.
	if lf.Entries[0].Name != "schema" || lf.Entries[1].Name != "auth" {
		t.Errorf("unexpected entry order: %s, %s", lf.Entries[0].Name, lf.Entries[1].Name)
	}
	if lf.Entries[0].ResolvedAt != now {
		t.Errorf("expected resolved_at %v, got %v", now, lf.Entries[0].ResolvedAt)
	}
}

func TestLockfile_Entry(t *testing.T) {
	lf := &domain.Lockfile{Entries: []domain.LockEntry{{Name: "auth", Commit: "abc123"}}}

	if entry := lf.Entry("auth"); entry == nil || entry.Commit != "abc123" {
		t.Errorf("expected auth@abc123, got %+v", entry)
	}
	if entry := lf.Entry("billing"); entry != nil {
		t.Errorf("expected nil for unknown name, got %+v", entry)
	}

	// A nil lock document has no entries; callers rely on this during the
	// first ever upgrade.
	var none *domain.Lockfile
	if entry := none.Entry("auth"); entry != nil {
		t.Errorf("expected nil entry on nil lockfile, got %+v", entry)
	}
}
