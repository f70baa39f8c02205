// Package verdict classifies one sandboxed run, shared by nsinit and
// the higher-level engine so the priority rule is defined exactly
// once.
package verdict

import "fuzoj/internal/judge/sandbox/wire"

// Verdict is the terminal classification of one run.
type Verdict string

const (
	OK  Verdict = "OK"
	TLE Verdict = "TLE"
	MLE Verdict = "MLE"
	RE  Verdict = "RE"
	UKE Verdict = "UKE"
)

// Code returns the wire int32 encoding for v.
func (v Verdict) Code() wire.VerdictCode {
	switch v {
	case OK:
		return wire.VerdictOK
	case TLE:
		return wire.VerdictTLE
	case MLE:
		return wire.VerdictMLE
	case RE:
		return wire.VerdictRE
	default:
		return wire.VerdictUKE
	}
}

// FromCode reverses Code, for callers that only have the wire form.
func FromCode(c wire.VerdictCode) Verdict {
	switch c {
	case wire.VerdictOK:
		return OK
	case wire.VerdictTLE:
		return TLE
	case wire.VerdictMLE:
		return MLE
	case wire.VerdictRE:
		return RE
	default:
		return UKE
	}
}

// FromExecutorExit maps the executor's exit byte to a base verdict,
// before cgroup-based reclassification.
func FromExecutorExit(exitByte int) Verdict {
	switch exitByte {
	case 0:
		return OK
	case 1:
		return RE
	case 2:
		return TLE
	default:
		return UKE
	}
}

// Classify layers cgroup-observed signals on top of the executor's
// reported outcome: MLE overrides everything except a system failure,
// TLE overrides RE, and a measured time over the limit is itself
// sufficient for TLE even if the executor's own timeout never fired —
// a slow reap can let the wall-clock check miss a borderline case the
// cgroup CPU-time check still catches.
func Classify(base Verdict, oomKilled bool, measuredTimeMs int64, timeLimitMs int64) Verdict {
	if base == UKE {
		return UKE
	}
	if oomKilled {
		return MLE
	}
	if measuredTimeMs > timeLimitMs {
		return TLE
	}
	return base
}
