//go:build !linux

package engine

import (
	"context"

	"fuzoj/internal/judge/sandbox/result"
	"fuzoj/internal/judge/sandbox/spec"
	appErr "fuzoj/pkg/errors"
)

type stubEngine struct{}

// NewEngine returns an engine that always fails: the sandbox core
// relies on Linux-only namespace and cgroup syscalls.
func NewEngine(cfg Config, resolver ProfileResolver) (Engine, error) {
	return &stubEngine{}, nil
}

func (s *stubEngine) Run(ctx context.Context, runSpec spec.RunSpec) (result.RunResult, error) {
	return result.RunResult{}, appErr.New(appErr.SandboxUnsupportedOS)
}
