//go:build linux

package nsinit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// makeMountsPrivate remounts / as MS_PRIVATE so nothing this process
// mounts propagates back to the host.
func makeMountsPrivate() error {
	if err := unix.Mount("", "/", "", unix.MS_REC|unix.MS_PRIVATE, ""); err != nil {
		return fmt.Errorf("make mounts private: %w", err)
	}
	return nil
}

// bindRootFS bind-mounts rootfsPath onto sandboxRoot read-write, then
// remounts it read-only.
func bindRootFS(rootfsPath, sandboxRoot string) error {
	if err := os.MkdirAll(sandboxRoot, 0o777); err != nil {
		return fmt.Errorf("mkdir sandbox root: %w", err)
	}
	if err := unix.Mount(rootfsPath, sandboxRoot, "", unix.MS_BIND|unix.MS_REC, ""); err != nil {
		return fmt.Errorf("bind mount rootfs: %w", err)
	}
	if err := unix.Mount("", sandboxRoot, "", unix.MS_REMOUNT|unix.MS_RDONLY|unix.MS_BIND, ""); err != nil {
		return fmt.Errorf("remount rootfs readonly: %w", err)
	}
	return nil
}

// mountTmpfs mounts a fresh tmpfs at tmpDir, capped to size if given.
func mountTmpfs(tmpDir, size string) error {
	if err := os.MkdirAll(tmpDir, 0o777); err != nil {
		return fmt.Errorf("mkdir tmp: %w", err)
	}
	opts := "mode=0777"
	if size != "" {
		opts += ",size=" + size
	}
	if err := unix.Mount("tmpfs", tmpDir, "tmpfs", 0, opts); err != nil {
		return fmt.Errorf("mount tmpfs: %w", err)
	}
	return nil
}

// unmountBestEffort is safe to call even when the mount never
// succeeded.
func unmountBestEffort(path string) {
	_ = unix.Unmount(path, unix.MNT_DETACH)
}

// safeRelativePath rejects absolute paths and ".." segments so an
// input/output filename can't escape the tmpfs it's materialized
// under.
func safeRelativePath(name string) error {
	if name == "" {
		return fmt.Errorf("empty filename")
	}
	if filepath.IsAbs(name) {
		return fmt.Errorf("absolute filename %q is not allowed", name)
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return fmt.Errorf("path-escaping filename %q is not allowed", name)
		}
	}
	return nil
}
