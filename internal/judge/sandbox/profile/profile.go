// Package profile describes per-language sandbox resource and
// isolation defaults, keyed by the same profile name a RunSpec names.
package profile

import "fuzoj/internal/judge/sandbox/spec"

// TaskProfile bundles a language's rootfs, optional seccomp profile,
// and default resource limits.
type TaskProfile struct {
	LanguageID     string
	RootFS         string
	SeccompProfile string
	DefaultLimits  spec.ResourceLimit
}
