package engine

// Config controls how the engine invokes the sandbox core.
type Config struct {
	// HelperPath is the cmd/sandbox-init binary invoked with no stage
	// marker, i.e. as the driver. Defaults to "sandbox-init" (resolved
	// via PATH) when empty.
	HelperPath string
	// CgroupRoot is the cgroup v2 parent directory the core creates
	// its per-run "judge.<sandbox-id>" cgroups under.
	CgroupRoot string
	// TmpfsSize is the size= mount option for the sandbox's tmpfs
	// (e.g. "256m"). Empty leaves it at the kernel default.
	TmpfsSize string
	// SeccompDir, when set, is joined with a profile's relative
	// SeccompProfile path to build the path the executor stage reads.
	SeccompDir string
	// EnableSeccomp gates whether a profile's seccomp filter is passed
	// through to the request at all.
	EnableSeccomp bool
}
