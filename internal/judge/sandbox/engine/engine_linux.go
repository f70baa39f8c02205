//go:build linux

package engine

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"

	"fuzoj/internal/judge/sandbox/result"
	"fuzoj/internal/judge/sandbox/spec"
	"fuzoj/internal/judge/sandbox/verdict"
	"fuzoj/internal/judge/sandbox/wire"
	appErr "fuzoj/pkg/errors"
)

type linuxEngine struct {
	cfg      Config
	resolver ProfileResolver
}

// NewEngine creates a Linux sandbox engine that shells out to the
// cmd/sandbox-init driver.
func NewEngine(cfg Config, resolver ProfileResolver) (Engine, error) {
	if resolver == nil {
		return nil, fmt.Errorf("profile resolver is required")
	}
	if cfg.HelperPath == "" {
		cfg.HelperPath = "sandbox-init"
	}
	return &linuxEngine{cfg: cfg, resolver: resolver}, nil
}

func (e *linuxEngine) Run(ctx context.Context, runSpec spec.RunSpec) (result.RunResult, error) {
	if err := validateRunSpec(runSpec); err != nil {
		return result.RunResult{}, err
	}

	isoProfile, err := e.resolver.Resolve(runSpec.Profile)
	if err != nil {
		return result.RunResult{}, fmt.Errorf("resolve profile: %w", err)
	}
	seccompProfile := ""
	if e.cfg.EnableSeccomp {
		seccompProfile = isoProfile.SeccompProfile
		if seccompProfile != "" && e.cfg.SeccompDir != "" && !filepath.IsAbs(seccompProfile) {
			seccompProfile = filepath.Join(e.cfg.SeccompDir, seccompProfile)
		}
	}

	req := wire.JudgeRequest{
		TimeLimitMs:     runSpec.Limits.TimeLimitMs,
		MemoryLimitMB:   runSpec.Limits.MemoryLimitMB,
		PIDsLimit:       runSpec.Limits.PIDsLimit,
		RootFSPath:      isoProfile.RootFS,
		TmpfsSize:       e.cfg.TmpfsSize,
		CgroupRoot:      e.cfg.CgroupRoot,
		SandboxID:       runSpec.SubmissionID + "-" + runSpec.TestID + "-" + uuid.NewString(),
		StdinBytes:      runSpec.Stdin,
		Cmdline:         runSpec.Cmd,
		InputFiles:      toWireInputFiles(runSpec.InputFiles),
		OutputFilenames: runSpec.OutputFilenames,
		SeccompProfile:  seccompProfile,
	}

	cmd := exec.CommandContext(ctx, e.cfg.HelperPath)

	var stdin bytes.Buffer
	if err := req.Encode(&stdin); err != nil {
		return result.RunResult{}, fmt.Errorf("encode judge request: %w", err)
	}
	cmd.Stdin = &stdin

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			return result.RunResult{}, appErr.Wrapf(err, appErr.SandboxHelperSpawnFailed, "spawn sandbox driver: %v", err)
		}
		// A non-zero driver exit is expected for a UKE response (spec
		// section 4.2); the result still needs decoding from stdout.
	}

	res, err := wire.DecodeJudgeResult(&stdout)
	if err != nil {
		return result.RunResult{}, appErr.Wrapf(err, appErr.SandboxHelperProtocolErr, "decode judge result: %v (stderr: %s)", err, stderr.String())
	}

	return toRunResult(res), nil
}

func toRunResult(res wire.JudgeResult) result.RunResult {
	v := verdict.FromCode(res.Verdict)
	files := make(map[string][]byte, len(res.OutputFiles))
	for _, f := range res.OutputFiles {
		files[f.Filename] = f.Content
	}
	return result.RunResult{
		Verdict:     result.FromSandbox(v),
		TimeMs:      int64(res.TimeMs),
		MemoryMB:    res.MemoryMB,
		Stdout:      res.StdoutBytes,
		Stderr:      res.StderrBytes,
		OutputFiles: files,
	}
}

func toWireInputFiles(files []spec.InputFileSpec) []wire.InputFile {
	out := make([]wire.InputFile, 0, len(files))
	for _, f := range files {
		out = append(out, wire.InputFile{Filename: f.Filename, Content: f.Content, Mode: f.Mode})
	}
	return out
}

func validateRunSpec(runSpec spec.RunSpec) error {
	if runSpec.SubmissionID == "" {
		return appErr.New(appErr.SandboxInvalidRunSpec).WithMessage("submission id is required")
	}
	if runSpec.TestID == "" {
		return appErr.New(appErr.SandboxInvalidRunSpec).WithMessage("test id is required")
	}
	if len(runSpec.Cmd) == 0 {
		return appErr.New(appErr.SandboxInvalidRunSpec).WithMessage("command is required")
	}
	if runSpec.Profile == "" {
		return appErr.New(appErr.SandboxInvalidRunSpec).WithMessage("profile is required")
	}
	if runSpec.Limits.TimeLimitMs <= 0 {
		return appErr.New(appErr.SandboxInvalidRunSpec).WithMessage("time limit must be positive")
	}
	if runSpec.Limits.MemoryLimitMB <= 0 {
		return appErr.New(appErr.SandboxInvalidRunSpec).WithMessage("memory limit must be positive")
	}
	if runSpec.Limits.PIDsLimit <= 0 {
		return appErr.New(appErr.SandboxInvalidRunSpec).WithMessage("pids limit must be positive")
	}
	return nil
}
