package config

import (
	"testing"

	"fuzoj/internal/judge/sandbox/profile"
	"fuzoj/internal/judge/sandbox/spec"
)

func newTestRepository() *LocalRepository {
	return NewLocalRepository([]profile.TaskProfile{
		{
			LanguageID:     "cpp17",
			RootFS:         "/srv/rootfs/cpp17",
			SeccompProfile: "cpp.json",
			DefaultLimits:  spec.ResourceLimit{TimeLimitMs: 1000, MemoryLimitMB: 256, PIDsLimit: 16},
		},
	})
}

func TestGetTaskProfile(t *testing.T) {
	repo := newTestRepository()

	got, err := repo.GetTaskProfile("cpp17")
	if err != nil {
		t.Fatalf("GetTaskProfile: %v", err)
	}
	if got.RootFS != "/srv/rootfs/cpp17" {
		t.Fatalf("unexpected rootfs: %q", got.RootFS)
	}

	if _, err := repo.GetTaskProfile("unknown"); err == nil {
		t.Fatalf("expected error for unknown profile")
	}
	if _, err := repo.GetTaskProfile(""); err == nil {
		t.Fatalf("expected error for empty profile name")
	}
}

func TestResolve(t *testing.T) {
	repo := newTestRepository()

	iso, err := repo.Resolve("cpp17")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if iso.RootFS != "/srv/rootfs/cpp17" || iso.SeccompProfile != "cpp.json" {
		t.Fatalf("unexpected isolation profile: %+v", iso)
	}

	if _, err := repo.Resolve("missing"); err == nil {
		t.Fatalf("expected error for missing profile")
	}
}
