//go:build linux

// Command sandbox-init is the single binary backing all three nested
// stages of the sandbox core: invoked bare it is the driver; invoked
// with SANDBOX_STAGE=nsinit or SANDBOX_STAGE=executor (set by its own
// parent stage via self re-exec) it plays the namespace-init or
// executor role instead. It takes no arguments and no
// environment-configured knobs beyond that internal stage marker —
// every other input arrives as the framed request on fd 0.
package main

import (
	"fmt"
	"os"

	"fuzoj/internal/judge/sandbox/driver"
	"fuzoj/internal/judge/sandbox/executor"
	"fuzoj/internal/judge/sandbox/nsinit"
	"fuzoj/internal/judge/sandbox/stage"
	"fuzoj/internal/judge/sandbox/wire"
	"fuzoj/pkg/utils/logger"
)

func main() {
	switch os.Getenv(stage.EnvVar) {
	case stage.Executor:
		os.Exit(runExecutorStage())
	case stage.NSInit:
		runNSInitStage()
	default:
		os.Exit(runDriverStage())
	}
}

func runDriverStage() int {
	if err := driver.Run(os.Stdin, os.Stdout); err != nil {
		if driver.IsUKE(err) {
			return 1
		}
		_, _ = fmt.Fprintln(os.Stderr, "sandbox-init: ", err)
		return 1
	}
	return 0
}

// runNSInitStage reads the request from fd 0 (fed by the driver
// through a pipe, not a terminal) and writes its JudgeResult to fd 3
// (the result pipe the driver passed via ExtraFiles).
func runNSInitStage() {
	// nsinit's best-effort warnings (memory.peak fallback, barrier
	// release failure) go to stderr, never to the result pipe.
	_ = logger.Init(logger.Config{Level: "warn", OutputPath: "/dev/stderr"})
	resultPipe := os.NewFile(3, "result-pipe")
	req, err := wire.DecodeJudgeRequest(os.Stdin)
	if err != nil {
		_ = wire.UKE(fmt.Sprintf("decode request: %v", err)).Encode(resultPipe)
		return
	}
	res := nsinit.Run(req)
	_ = res.Encode(resultPipe)
}

// runExecutorStage reads its executor.Request from fd 0 (fed by
// namespace-init) and its cgroup-enrollment barrier from fd 3.
func runExecutorStage() int {
	barrier := os.NewFile(3, "cgroup-barrier")
	req, err := executor.DecodeRequest(os.Stdin)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "sandbox executor: decode request:", err)
		return int(executor.OutcomeSysFail)
	}
	return executor.Run(req, barrier)
}
