//go:build linux

package nsinit

import (
	"os"
	"path/filepath"
	"testing"

	"fuzoj/internal/judge/sandbox/wire"
)

func TestMaterializeInputs(t *testing.T) {
	tmpDir := t.TempDir()
	files := []wire.InputFile{
		{Filename: "in.txt", Content: []byte("3\n1 2 3\n"), Mode: 0o644},
		{Filename: "nested/data.bin", Content: []byte{1, 2, 3}},
	}
	if err := materializeInputs(tmpDir, files); err != nil {
		t.Fatalf("materializeInputs: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(tmpDir, "in.txt"))
	if err != nil {
		t.Fatalf("read in.txt: %v", err)
	}
	if string(got) != "3\n1 2 3\n" {
		t.Fatalf("unexpected content: %q", got)
	}

	got, err = os.ReadFile(filepath.Join(tmpDir, "nested/data.bin"))
	if err != nil {
		t.Fatalf("read nested/data.bin: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("unexpected nested content: %v", got)
	}
}

func TestMaterializeInputsRejectsEscapingFilename(t *testing.T) {
	tmpDir := t.TempDir()
	files := []wire.InputFile{{Filename: "../escape.txt", Content: []byte("x")}}
	if err := materializeInputs(tmpDir, files); err == nil {
		t.Fatalf("expected error for escaping filename")
	}
}

func TestReadArtifactMissingReturnsEmpty(t *testing.T) {
	tmpDir := t.TempDir()
	if got := readArtifact(tmpDir, "stdout"); len(got) != 0 {
		t.Fatalf("expected empty slice for missing artifact, got %v", got)
	}
}

func TestCollectOutputFiles(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "out.txt"), []byte("42\n"), 0o644); err != nil {
		t.Fatalf("write out.txt: %v", err)
	}

	files := collectOutputFiles(tmpDir, []string{"out.txt", "missing.txt", "../escape.txt"})
	if len(files) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(files))
	}
	byName := make(map[string][]byte, len(files))
	for _, f := range files {
		byName[f.Filename] = f.Content
	}
	if string(byName["out.txt"]) != "42\n" {
		t.Fatalf("unexpected out.txt content: %q", byName["out.txt"])
	}
	if len(byName["missing.txt"]) != 0 {
		t.Fatalf("expected empty content for missing file, got %q", byName["missing.txt"])
	}
	if len(byName["../escape.txt"]) != 0 {
		t.Fatalf("expected empty content for escaping filename, got %q", byName["../escape.txt"])
	}
}

func TestFailureResultIsUKE(t *testing.T) {
	res := failureResult(os.ErrNotExist)
	if res.Verdict != wire.VerdictUKE {
		t.Fatalf("expected VerdictUKE, got %v", res.Verdict)
	}
}
