// Package stage names the self-re-exec markers the three nested
// sandbox processes use to tell /proc/self/exe which role to play,
// following the re-exec idiom used by runc/sysbox-runc (surveyed in
// the reference pack) to split one binary into driver,
// namespace-init and executor stages without needing a fork()
// syscall Go cannot safely expose from a multithreaded runtime.
package stage

// EnvVar is set on the re-exec'd child's environment to select its
// stage. An unset or empty value means "driver" — the top-level
// invocation a caller makes.
const EnvVar = "SANDBOX_STAGE"

const (
	Driver   = ""
	NSInit   = "nsinit"
	Executor = "executor"
)
