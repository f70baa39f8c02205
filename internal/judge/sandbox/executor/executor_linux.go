//go:build linux

package executor

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/seccomp/libseccomp-golang"
	"golang.org/x/sys/unix"
)

const sandboxUID = 65534 // "nobody" inside the sandbox's user namespace; unmapped on the host.

// Run executes the request and returns the process exit code the
// caller maps to a verdict: 0 OK, 1 RE, 2 TLE, >=3 UKE. barrier is the
// read end of the pipe namespace-init writes one byte to once it has
// placed this process into the target cgroup; the executor must not fork the
// target before that read unblocks, or the target could run briefly
// outside the cgroup and evade its limits.
func Run(req Request, barrier *os.File) int {
	if err := os.Chdir(req.WorkDir); err != nil {
		return reportSysFail("chdir workdir", err)
	}

	stdinPath := filepath.Join(req.WorkDir, "stdin")
	if err := os.WriteFile(stdinPath, req.StdinContent, 0o644); err != nil {
		return reportSysFail("materialize stdin", err)
	}

	if err := unix.Setgid(sandboxUID); err != nil {
		return reportSysFail("setgid", err)
	}
	if err := unix.Setuid(sandboxUID); err != nil {
		return reportSysFail("setuid", err)
	}

	if err := redirectStdio(req.WorkDir); err != nil {
		return reportSysFail("redirect stdio", err)
	}

	if barrier != nil {
		var buf [1]byte
		if _, err := barrier.Read(buf[:]); err != nil {
			return reportSysFail("await cgroup barrier", err)
		}
		_ = barrier.Close()
	}

	if len(req.Cmdline) == 0 {
		return reportSysFail("build command", errors.New("empty cmdline"))
	}

	if req.SeccompProfile != "" {
		if err := applySeccomp(req.SeccompProfile); err != nil {
			return reportSysFail("apply seccomp profile", err)
		}
	}

	// Raise the stack ulimit so a deeply recursive target is bounded
	// only by cgroup memory.max, not the inherited 8MB default soft
	// limit, which would otherwise kill it before memory.max does.
	if err := unix.Setrlimit(unix.RLIMIT_STACK, &unix.Rlimit{Cur: unix.RLIM_INFINITY, Max: unix.RLIM_INFINITY}); err != nil {
		return reportSysFail("raise stack rlimit", err)
	}

	cmd := exec.Command(req.Cmdline[0], req.Cmdline[1:]...)
	cmd.Dir = req.WorkDir
	cmd.Env = []string{"PATH=/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin"}
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return reportSysFail("start target", err)
	}

	var timedOut atomic.Bool
	limit := time.Duration(req.TimeLimitMs+graceMs(req)) * time.Millisecond
	timer := time.AfterFunc(limit, func() {
		timedOut.Store(true)
		killProcessGroup(cmd.Process.Pid)
	})

	waitErr := cmd.Wait()
	timer.Stop()

	if timedOut.Load() {
		return OutcomeTLE.ExitCode()
	}
	if waitErr != nil {
		return OutcomeRE.ExitCode()
	}
	return OutcomeOK.ExitCode()
}

func graceMs(req Request) int64 {
	if req.GraceMs > 0 {
		return req.GraceMs
	}
	return defaultGraceMs
}

func redirectStdio(workDir string) error {
	stdin, err := os.Open(filepath.Join(workDir, "stdin"))
	if err != nil {
		return fmt.Errorf("open stdin: %w", err)
	}
	stdout, err := os.OpenFile(filepath.Join(workDir, "stdout"), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open stdout: %w", err)
	}
	stderr, err := os.OpenFile(filepath.Join(workDir, "stderr"), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open stderr: %w", err)
	}
	if err := unix.Dup2(int(stdin.Fd()), int(os.Stdin.Fd())); err != nil {
		return fmt.Errorf("dup stdin: %w", err)
	}
	if err := unix.Dup2(int(stdout.Fd()), int(os.Stdout.Fd())); err != nil {
		return fmt.Errorf("dup stdout: %w", err)
	}
	if err := unix.Dup2(int(stderr.Fd()), int(os.Stderr.Fd())); err != nil {
		return fmt.Errorf("dup stderr: %w", err)
	}
	_ = stdin.Close()
	_ = stdout.Close()
	_ = stderr.Close()
	return nil
}

func killProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}

func reportSysFail(stage string, err error) int {
	_, _ = fmt.Fprintf(os.Stderr, "sandbox executor: %s: %v\n", stage, err)
	return OutcomeSysFail.ExitCode()
}

// seccompConfig is the on-disk shape of a seccomp profile: a default
// action plus per-syscall overrides, installed on the executor just
// before it starts the target, which inherits the filter.
type seccompConfig struct {
	DefaultAction string           `json:"defaultAction"`
	Syscalls      []seccompSyscall `json:"syscalls"`
}

type seccompSyscall struct {
	Names  []string `json:"names"`
	Action string   `json:"action"`
}

// applySeccomp loads profilePath and installs it as this process's
// syscall filter. Because Go's exec.Cmd.Start starts the target via
// clone+execve rather than a separate fork+exec pair the caller
// controls, the filter is installed on the executor itself,
// immediately before Start: it is inherited across the exec that
// follows, so the profile must allow whatever syscalls the executor's
// own post-exec bookkeeping (wait4, rt_sigreturn, kill) still needs.
func applySeccomp(profilePath string) error {
	data, err := os.ReadFile(profilePath)
	if err != nil {
		return fmt.Errorf("read seccomp profile: %w", err)
	}
	var cfg seccompConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse seccomp profile: %w", err)
	}
	defaultAction, err := parseSeccompAction(cfg.DefaultAction)
	if err != nil {
		return err
	}
	filter, err := seccomp.NewFilter(defaultAction)
	if err != nil {
		return fmt.Errorf("create seccomp filter: %w", err)
	}
	for _, rule := range cfg.Syscalls {
		action, err := parseSeccompAction(rule.Action)
		if err != nil {
			return err
		}
		for _, name := range rule.Names {
			if err := filter.AddRuleExact(name, action); err != nil {
				return fmt.Errorf("add seccomp rule for %q: %w", name, err)
			}
		}
	}
	if err := unix.Prctl(unix.PR_SET_NO_NEW_PRIVS, 1, 0, 0, 0); err != nil {
		return fmt.Errorf("set no new privs: %w", err)
	}
	if err := filter.Load(); err != nil {
		return fmt.Errorf("load seccomp filter: %w", err)
	}
	return nil
}

func parseSeccompAction(action string) (seccomp.ScmpAction, error) {
	switch strings.ToUpper(action) {
	case "SCMP_ACT_ALLOW":
		return seccomp.ActAllow, nil
	case "SCMP_ACT_KILL", "SCMP_ACT_KILL_PROCESS":
		return seccomp.ActKillProcess, nil
	default:
		return seccomp.ActKillProcess, fmt.Errorf("unsupported seccomp action: %s", action)
	}
}
