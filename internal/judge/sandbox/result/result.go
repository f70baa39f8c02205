// Package result defines the judge-worker-facing vocabulary the
// engine reports back in, one step removed from the sandbox core's
// own OK/TLE/MLE/RE/UKE verdict set.
package result

import "fuzoj/internal/judge/sandbox/verdict"

// Verdict is the outcome reported to the judge worker. It is a
// superset of the sandbox core's verdict.Verdict: WA/OLE/CE are
// judged or produced by collaborators outside this module (spec
// section 1 lists checking and compilation as external concerns), so
// FromSandbox only ever returns AC, TLE, MLE, RE or SE.
type Verdict string

const (
	VerdictAC  Verdict = "AC"
	VerdictWA  Verdict = "WA"
	VerdictTLE Verdict = "TLE"
	VerdictMLE Verdict = "MLE"
	VerdictOLE Verdict = "OLE"
	VerdictRE  Verdict = "RE"
	VerdictCE  Verdict = "CE"
	VerdictSE  Verdict = "SE"
)

// FromSandbox maps the sandbox core's verdict to the judge-worker
// vocabulary. The core never produces AC/WA/OLE/CE itself -- OK maps
// to AC here only because, absent a checker, "the program ran and
// exited cleanly within its limits" is the closest available verdict;
// a real judge-worker caller is expected to re-derive AC/WA from the
// checker's comparison of RunResult.Stdout against the expected
// output, not trust this mapping directly.
func FromSandbox(v verdict.Verdict) Verdict {
	switch v {
	case verdict.OK:
		return VerdictAC
	case verdict.TLE:
		return VerdictTLE
	case verdict.MLE:
		return VerdictMLE
	case verdict.RE:
		return VerdictRE
	default:
		return VerdictSE
	}
}

// RunResult captures one sandboxed run's raw execution data, plus the
// verdict the engine derived from it.
type RunResult struct {
	Verdict     Verdict
	TimeMs      int64
	MemoryMB    int64
	Stdout      []byte
	Stderr      []byte
	OutputFiles map[string][]byte
}
