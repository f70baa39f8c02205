//go:build linux

package nsinit

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// createRunCgroup creates the per-run cgroup v2 leaf named by
// sandboxID under root. The caller owns sandboxID's uniqueness; this
// only owns the leaf's lifecycle.
func createRunCgroup(root, sandboxID string) (string, error) {
	cgroupPath := filepath.Join(root, "judge."+sandboxID)
	if err := os.MkdirAll(cgroupPath, 0o750); err != nil {
		return "", err
	}
	return cgroupPath, nil
}

// applyCgroupLimits writes cpu.max, pids.max, memory.max and
// memory.swap.max for the run's cgroup leaf, disabling swap so
// memory.max is the program's real ceiling.
func applyCgroupLimits(cgroupPath string, pidsLimit int32, memoryLimitMB int64) error {
	if err := writeCgroupValue(cgroupPath, "cpu.max", "100000 100000"); err != nil {
		return err
	}
	if err := writeCgroupValue(cgroupPath, "pids.max", strconv.FormatInt(int64(pidsLimit), 10)); err != nil {
		return err
	}
	if err := writeCgroupValue(cgroupPath, "memory.max", strconv.FormatInt(memoryLimitMB*1024*1024, 10)); err != nil {
		return err
	}
	return writeCgroupValue(cgroupPath, "memory.swap.max", "0")
}

func addProcessToCgroup(cgroupPath string, pid int) error {
	return writeCgroupValue(cgroupPath, "cgroup.procs", strconv.Itoa(pid))
}

// cpuStatUserMs reads cpu.stat's user_usec field and floors it to
// milliseconds.
func cpuStatUserMs(cgroupPath string) int64 {
	data, err := os.ReadFile(filepath.Join(cgroupPath, "cpu.stat"))
	if err != nil {
		return 0
	}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) != 2 || fields[0] != "user_usec" {
			continue
		}
		usec, _ := strconv.ParseInt(fields[1], 10, 64)
		return usec / 1000
	}
	return 0
}

// memoryPeakMB reads memory.peak and floors it to megabytes. Some
// kernels lack memory.peak; this falls back to memory.current, a live
// snapshot taken at reap time rather than a true peak.
func memoryPeakMB(cgroupPath string) (mb int64, usedFallback bool) {
	if v, err := readCgroupInt(cgroupPath, "memory.peak"); err == nil {
		return v / (1024 * 1024), false
	}
	v, _ := readCgroupInt(cgroupPath, "memory.current")
	return v / (1024 * 1024), true
}

// oomKilled reports whether memory.events recorded an OOM kill.
func oomKilled(cgroupPath string) bool {
	data, err := os.ReadFile(filepath.Join(cgroupPath, "memory.events"))
	if err != nil {
		return false
	}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) != 2 || fields[0] != "oom_kill" {
			continue
		}
		val, _ := strconv.ParseInt(fields[1], 10, 64)
		return val > 0
	}
	return false
}

func readCgroupInt(cgroupPath, name string) (int64, error) {
	data, err := os.ReadFile(filepath.Join(cgroupPath, name))
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
}

func writeCgroupValue(cgroupPath, name, value string) error {
	return os.WriteFile(filepath.Join(cgroupPath, name), []byte(value), 0o640)
}

// removeCgroup is best-effort: it is always attempted on every exit
// path so a failed run never leaks a cgroup leaf.
func removeCgroup(cgroupPath string) {
	_ = os.Remove(cgroupPath)
}
