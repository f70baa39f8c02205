package wire

import (
	"bytes"
	"testing"
)

func TestJudgeRequestRoundTrip(t *testing.T) {
	req := JudgeRequest{
		TimeLimitMs:   1000,
		MemoryLimitMB: 256,
		PIDsLimit:     16,
		RootFSPath:    "/srv/rootfs/cpp17",
		TmpfsSize:     "256m",
		CgroupRoot:    "/sys/fs/cgroup/judge",
		SandboxID:     "sub-1-test-1",
		StdinBytes:    []byte("3\n1 2 3\n"),
		Cmdline:       []string{"/usr/bin/a.out"},
		InputFiles: []InputFile{
			{Filename: "data/in.txt", Content: []byte("hello"), Mode: 0o644},
		},
		OutputFilenames: []string{"out.txt"},
		SeccompProfile:  "/etc/judge/seccomp/cpp.json",
	}

	var buf bytes.Buffer
	if err := req.Encode(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}

	got, err := DecodeJudgeRequest(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if got.TimeLimitMs != req.TimeLimitMs || got.MemoryLimitMB != req.MemoryLimitMB || got.PIDsLimit != req.PIDsLimit {
		t.Fatalf("limits mismatch: got %+v", got)
	}
	if got.RootFSPath != req.RootFSPath || got.TmpfsSize != req.TmpfsSize || got.CgroupRoot != req.CgroupRoot {
		t.Fatalf("paths mismatch: got %+v", got)
	}
	if got.SandboxID != req.SandboxID || !bytes.Equal(got.StdinBytes, req.StdinBytes) {
		t.Fatalf("identity/stdin mismatch: got %+v", got)
	}
	if len(got.Cmdline) != 1 || got.Cmdline[0] != req.Cmdline[0] {
		t.Fatalf("cmdline mismatch: got %+v", got.Cmdline)
	}
	if len(got.InputFiles) != 1 || got.InputFiles[0].Filename != "data/in.txt" || !bytes.Equal(got.InputFiles[0].Content, []byte("hello")) {
		t.Fatalf("input files mismatch: got %+v", got.InputFiles)
	}
	if len(got.OutputFilenames) != 1 || got.OutputFilenames[0] != "out.txt" {
		t.Fatalf("output filenames mismatch: got %+v", got.OutputFilenames)
	}
	if got.SeccompProfile != req.SeccompProfile {
		t.Fatalf("seccomp profile mismatch: got %q", got.SeccompProfile)
	}
}

func TestJudgeRequestRoundTripEmptyOptionalFields(t *testing.T) {
	req := JudgeRequest{
		TimeLimitMs:   500,
		MemoryLimitMB: 64,
		PIDsLimit:     4,
		SandboxID:     "sub-2-test-1",
		Cmdline:       []string{"/bin/cat"},
	}

	var buf bytes.Buffer
	if err := req.Encode(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeJudgeRequest(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.InputFiles) != 0 || len(got.OutputFilenames) != 0 || got.SeccompProfile != "" {
		t.Fatalf("expected empty optional fields, got %+v", got)
	}
}

func TestJudgeResultRoundTrip(t *testing.T) {
	res := JudgeResult{
		Verdict:     VerdictMLE,
		TimeMs:      820,
		MemoryMB:    260,
		StdoutBytes: []byte("partial output"),
		StderrBytes: []byte(""),
		OutputFiles: []OutputFile{
			{Filename: "out.txt", Content: []byte("42\n")},
		},
	}

	var buf bytes.Buffer
	if err := res.Encode(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeJudgeResult(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Verdict != VerdictMLE || got.TimeMs != 820 || got.MemoryMB != 260 {
		t.Fatalf("scalar mismatch: got %+v", got)
	}
	if string(got.StdoutBytes) != "partial output" {
		t.Fatalf("stdout mismatch: got %q", got.StdoutBytes)
	}
	if len(got.OutputFiles) != 1 || got.OutputFiles[0].Filename != "out.txt" || string(got.OutputFiles[0].Content) != "42\n" {
		t.Fatalf("output files mismatch: got %+v", got.OutputFiles)
	}
}

func TestUKE(t *testing.T) {
	res := UKE("bind mount rootfs: permission denied")
	if res.Verdict != VerdictUKE {
		t.Fatalf("expected VerdictUKE, got %v", res.Verdict)
	}
	if res.TimeMs != 0 || res.MemoryMB != 0 {
		t.Fatalf("expected zero time/memory, got %+v", res)
	}
	if len(res.OutputFiles) != 0 {
		t.Fatalf("expected no output files, got %+v", res.OutputFiles)
	}
	wantPrefix := "Internal Error: "
	if len(res.StderrBytes) < len(wantPrefix) || string(res.StderrBytes[:len(wantPrefix)]) != wantPrefix {
		t.Fatalf("expected stderr to start with %q, got %q", wantPrefix, res.StderrBytes)
	}
}

func TestDecodeJudgeRequestTruncated(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteInt32(&buf, 1000); err != nil {
		t.Fatalf("write: %v", err)
	}
	// Truncate before the rest of the frame: the decoder must fail
	// rather than return a zero-valued request.
	if _, err := DecodeJudgeRequest(&buf); err == nil {
		t.Fatalf("expected error decoding truncated request")
	}
}
