// Package engine is the sandbox core's one judge-worker-facing
// caller: it turns a spec.RunSpec into a wire.JudgeRequest, shells out
// to the cmd/sandbox-init driver, and maps the wire.JudgeResult back
// to the judge-worker's result.RunResult vocabulary. Scheduling,
// checking, and persistence all live upstream of it.
package engine

import (
	"context"

	"fuzoj/internal/judge/sandbox/result"
	"fuzoj/internal/judge/sandbox/security"
	"fuzoj/internal/judge/sandbox/spec"
)

// ProfileResolver resolves a profile name into the isolation settings
// (rootfs, seccomp) a run under that profile should use.
type ProfileResolver interface {
	Resolve(profileName string) (security.IsolationProfile, error)
}

// Engine executes a RunSpec inside an isolated sandbox and reports the
// judge-worker-facing result.
type Engine interface {
	Run(ctx context.Context, runSpec spec.RunSpec) (result.RunResult, error)
}
