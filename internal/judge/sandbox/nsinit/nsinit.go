//go:build linux

// Package nsinit implements the middle of the sandbox's three nested
// processes: it prepares the rootfs, tmpfs, input files and cgroup,
// spawns the executor grandchild, harvests its resource usage, and
// always produces a JudgeResult — internal failures here are reported
// as UKE, never as a Go error crossing a process boundary.
package nsinit

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"

	"golang.org/x/sys/unix"

	"fuzoj/internal/judge/sandbox/executor"
	"fuzoj/internal/judge/sandbox/stage"
	"fuzoj/internal/judge/sandbox/verdict"
	"fuzoj/internal/judge/sandbox/wire"
	"fuzoj/pkg/utils/logger"
)

// Run executes the full namespace-init lifecycle for one request and
// always returns a complete JudgeResult.
func Run(req wire.JudgeRequest) wire.JudgeResult {
	if err := unix.Sethostname([]byte("sandbox")); err != nil {
		return failureResult(fmt.Errorf("set hostname: %w", err))
	}
	if err := makeMountsPrivate(); err != nil {
		return failureResult(err)
	}

	sandboxRoot := fmt.Sprintf("/tmp/judger_sandbox_%s", req.SandboxID)
	tmpDir := filepath.Join(sandboxRoot, "tmp")

	cleanupMount := func() {}
	cleanupTmpfs := func() {}
	cleanupCgroup := func() {}
	defer func() {
		cleanupCgroup()
		cleanupTmpfs()
		cleanupMount()
		_ = os.RemoveAll(sandboxRoot)
	}()

	if err := bindRootFS(req.RootFSPath, sandboxRoot); err != nil {
		return failureResult(err)
	}
	cleanupMount = func() { unmountBestEffort(sandboxRoot) }

	if err := mountTmpfs(tmpDir, req.TmpfsSize); err != nil {
		return failureResult(err)
	}
	cleanupTmpfs = func() { unmountBestEffort(tmpDir) }

	if err := materializeInputs(tmpDir, req.InputFiles); err != nil {
		return failureResult(err)
	}

	cgroupPath, err := createRunCgroup(req.CgroupRoot, req.SandboxID)
	if err != nil {
		return failureResult(fmt.Errorf("create cgroup: %w", err))
	}
	cleanupCgroup = func() { removeCgroup(cgroupPath) }
	if err := applyCgroupLimits(cgroupPath, req.PIDsLimit, req.MemoryLimitMB); err != nil {
		return failureResult(fmt.Errorf("apply cgroup limits: %w", err))
	}

	exitCode, runErr := spawnExecutor(req, sandboxRoot, cgroupPath)
	if runErr != nil {
		return failureResult(runErr)
	}

	timeMs := cpuStatUserMs(cgroupPath)
	memMB, usedFallback := memoryPeakMB(cgroupPath)
	if usedFallback {
		logger.Warn(context.Background(), "memory.peak unavailable, using memory.current snapshot")
	}
	oom := oomKilled(cgroupPath)

	base := verdict.FromExecutorExit(exitCode)
	final := verdict.Classify(base, oom, timeMs, int64(req.TimeLimitMs))

	return wire.JudgeResult{
		Verdict:     final.Code(),
		TimeMs:      int32(timeMs),
		MemoryMB:    memMB,
		StdoutBytes: readArtifact(tmpDir, "stdout"),
		StderrBytes: readArtifact(tmpDir, "stderr"),
		OutputFiles: collectOutputFiles(tmpDir, req.OutputFilenames),
	}
}

func materializeInputs(tmpDir string, files []wire.InputFile) error {
	for _, f := range files {
		if err := safeRelativePath(f.Filename); err != nil {
			return fmt.Errorf("materialize input: %w", err)
		}
		target := filepath.Join(tmpDir, f.Filename)
		if err := os.MkdirAll(filepath.Dir(target), 0o777); err != nil {
			return fmt.Errorf("mkdir input parent: %w", err)
		}
		mode := os.FileMode(f.Mode)
		if mode == 0 {
			mode = 0o644
		}
		if err := os.WriteFile(target, f.Content, mode); err != nil {
			return fmt.Errorf("write input file %q: %w", f.Filename, err)
		}
	}
	return nil
}

// spawnExecutor runs the executor grandchild in its own PID/NET/MNT/UTS
// namespace, chrooted to sandboxRoot, enrolls it in the cgroup before
// releasing its barrier, and returns its exit code.
func spawnExecutor(req wire.JudgeRequest, sandboxRoot, cgroupPath string) (int, error) {
	barrierR, barrierW, err := os.Pipe()
	if err != nil {
		return 0, fmt.Errorf("create executor barrier: %w", err)
	}
	defer barrierW.Close()

	stdinR, stdinW, err := os.Pipe()
	if err != nil {
		return 0, fmt.Errorf("create executor request pipe: %w", err)
	}

	self, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("resolve self executable: %w", err)
	}

	cmd := exec.Command(self)
	cmd.Env = []string{stage.EnvVar + "=" + stage.Executor}
	cmd.Stdin = stdinR
	cmd.Stdout = nil
	cmd.Stderr = os.Stderr
	cmd.Dir = "/tmp"
	cmd.ExtraFiles = []*os.File{barrierR}
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Cloneflags: syscall.CLONE_NEWPID | syscall.CLONE_NEWNET | syscall.CLONE_NEWNS | syscall.CLONE_NEWUTS,
		Chroot:     sandboxRoot,
	}

	if err := cmd.Start(); err != nil {
		barrierR.Close()
		stdinR.Close()
		stdinW.Close()
		return 0, fmt.Errorf("spawn executor: %w", err)
	}
	barrierR.Close()
	stdinR.Close()

	execReq := executor.Request{
		WorkDir:        "/tmp",
		Cmdline:        req.Cmdline,
		StdinContent:   req.StdinBytes,
		TimeLimitMs:    int64(req.TimeLimitMs),
		GraceMs:        1000,
		SeccompProfile: req.SeccompProfile,
	}
	if err := execReq.Encode(stdinW); err != nil {
		_ = stdinW.Close()
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return 0, fmt.Errorf("send executor request: %w", err)
	}
	_ = stdinW.Close()

	if err := addProcessToCgroup(cgroupPath, cmd.Process.Pid); err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return 0, fmt.Errorf("add executor to cgroup: %w", err)
	}
	if _, err := barrierW.Write([]byte{1}); err != nil {
		logger.Warn(context.Background(), "release executor barrier failed: "+err.Error())
	}

	waitErr := cmd.Wait()
	if waitErr == nil {
		return 0, nil
	}
	if exitErr, ok := waitErr.(*exec.ExitError); ok {
		return exitErr.ExitCode(), nil
	}
	return 0, fmt.Errorf("wait executor: %w", waitErr)
}

func readArtifact(tmpDir, name string) []byte {
	data, err := os.ReadFile(filepath.Join(tmpDir, name))
	if err != nil {
		return []byte{}
	}
	return data
}

func collectOutputFiles(tmpDir string, names []string) []wire.OutputFile {
	files := make([]wire.OutputFile, 0, len(names))
	for _, name := range names {
		var content []byte
		if safeRelativePath(name) == nil {
			if data, err := os.ReadFile(filepath.Join(tmpDir, name)); err == nil {
				content = data
			}
		}
		if content == nil {
			content = []byte{}
		}
		files = append(files, wire.OutputFile{Filename: name, Content: content})
	}
	return files
}

func failureResult(err error) wire.JudgeResult {
	return wire.UKE(err.Error())
}
