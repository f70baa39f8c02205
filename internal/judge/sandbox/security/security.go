// Package security describes the per-language isolation settings the
// judge-worker-facing engine resolves before calling the sandbox
// driver. It sits just outside the sandbox core itself, but is needed
// to build a real JudgeRequest.
package security

// IsolationProfile names the rootfs and (optional) seccomp profile a
// run should use.
type IsolationProfile struct {
	RootFS         string
	SeccompProfile string
}
