//go:build linux

// Package driver implements the outermost of the sandbox's three nested
// processes: it parses the request, spawns namespace-init into a fresh
// user/mount/IPC/network/UTS namespace, and forwards its result. This
// is the process a caller invokes directly.
package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"fuzoj/internal/judge/sandbox/stage"
	"fuzoj/internal/judge/sandbox/wire"
)

// errUKE signals that Run produced a UKE response so main() can pick
// the documented non-zero exit code without re-inspecting the result.
var errUKE = errors.New("sandbox driver: UKE response")

// Run reads a JudgeRequest from r, performs the judged execution, and
// writes exactly one JudgeResult frame to w, even on internal failure.
// It returns errUKE when (and only when) the response written was a
// UKE, so main() can pick the documented exit code (0 non-UKE, 1 UKE).
func Run(r io.Reader, w io.Writer) error {
	// A broken downstream reader must not kill the driver before it
	// has written its response.
	signal.Ignore(syscall.SIGPIPE)

	req, err := wire.DecodeJudgeRequest(r)
	if err != nil {
		return respond(w, wire.UKE(fmt.Sprintf("decode request: %v", err)))
	}

	res, err := runNamespaceInit(req)
	if err != nil {
		return respond(w, wire.UKE(fmt.Sprintf("namespace-init: %v", err)))
	}
	return respond(w, res)
}

// runNamespaceInit spawns namespace-init with a new user, mount, IPC,
// network and UTS namespace. The PID namespace is deliberately not
// created here; it is created one level down, for the executor, so
// that namespace-init can itself be the process that waits on that
// grandchild.
//
// UID/GID mapping (deny setgroups, then write a single uid_map/gid_map
// line) is expressed declaratively via
// syscall.SysProcAttr.UidMappings/GidMappings: the Go runtime performs
// exactly that sequence — write setgroups=deny, then the map lines —
// from the parent side before the child's exec resumes, using an
// internal pipe barrier.
func runNamespaceInit(req wire.JudgeRequest) (wire.JudgeResult, error) {
	self, err := os.Executable()
	if err != nil {
		return wire.JudgeResult{}, fmt.Errorf("resolve self executable: %w", err)
	}

	resultR, resultW, err := os.Pipe()
	if err != nil {
		return wire.JudgeResult{}, fmt.Errorf("create result pipe: %w", err)
	}
	defer resultR.Close()

	reqR, reqW, err := os.Pipe()
	if err != nil {
		resultW.Close()
		return wire.JudgeResult{}, fmt.Errorf("create request pipe: %w", err)
	}

	cmd := exec.Command(self)
	cmd.Env = []string{stage.EnvVar + "=" + stage.NSInit}
	cmd.Stdin = reqR
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	cmd.ExtraFiles = []*os.File{resultW}
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Cloneflags:                 syscall.CLONE_NEWUSER | syscall.CLONE_NEWNS | syscall.CLONE_NEWIPC | syscall.CLONE_NEWNET | syscall.CLONE_NEWUTS,
		GidMappingsEnableSetgroups: false,
		UidMappings: []syscall.SysProcIDMap{{
			ContainerID: 0,
			HostID:      os.Getuid(),
			Size:        1,
		}},
		GidMappings: []syscall.SysProcIDMap{{
			ContainerID: 0,
			HostID:      os.Getgid(),
			Size:        1,
		}},
	}

	if err := cmd.Start(); err != nil {
		reqR.Close()
		reqW.Close()
		resultW.Close()
		return wire.JudgeResult{}, fmt.Errorf("spawn namespace-init: %w", err)
	}
	reqR.Close()
	resultW.Close()

	// namespace-init writes its whole result frame to resultR in one
	// shot before exiting, and a run with enough captured stdout/stderr
	// can exceed a pipe's buffer. Decode it on its own goroutine so
	// namespace-init always has a reader draining the pipe; otherwise it
	// blocks mid-write and cmd.Wait below never returns.
	type decoded struct {
		res wire.JudgeResult
		err error
	}
	resultCh := make(chan decoded, 1)
	go func() {
		res, err := wire.DecodeJudgeResult(resultR)
		resultCh <- decoded{res, err}
	}()

	if err := req.Encode(reqW); err != nil {
		_ = reqW.Close()
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		<-resultCh
		return wire.JudgeResult{}, fmt.Errorf("send request to namespace-init: %w", err)
	}
	_ = reqW.Close()

	waitErr := cmd.Wait()
	dec := <-resultCh

	if dec.err != nil {
		if waitErr != nil {
			return wire.JudgeResult{}, fmt.Errorf("namespace-init exited (%v) without a result: %w", waitErr, dec.err)
		}
		return wire.JudgeResult{}, fmt.Errorf("decode namespace-init result: %w", dec.err)
	}
	return dec.res, nil
}

func respond(w io.Writer, res wire.JudgeResult) error {
	if err := res.Encode(w); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	if res.Verdict == wire.VerdictUKE {
		return errUKE
	}
	return nil
}

// IsUKE reports whether err is the sentinel Run returns for a UKE
// response, so main() can pick the documented exit code.
func IsUKE(err error) bool {
	return errors.Is(err, errUKE)
}
