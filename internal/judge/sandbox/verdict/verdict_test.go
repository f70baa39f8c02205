package verdict

import (
	"testing"

	"fuzoj/internal/judge/sandbox/wire"
)

func TestFromExecutorExit(t *testing.T) {
	cases := []struct {
		exitByte int
		want     Verdict
	}{
		{0, OK},
		{1, RE},
		{2, TLE},
		{3, UKE},
		{7, UKE},
	}
	for _, c := range cases {
		if got := FromExecutorExit(c.exitByte); got != c.want {
			t.Errorf("FromExecutorExit(%d) = %v, want %v", c.exitByte, got, c.want)
		}
	}
}

func TestClassifyPriority(t *testing.T) {
	cases := []struct {
		name           string
		base           Verdict
		oomKilled      bool
		measuredTimeMs int64
		timeLimitMs    int64
		want           Verdict
	}{
		{"ok within limits", OK, false, 500, 1000, OK},
		{"oom overrides re", RE, true, 500, 1000, MLE},
		{"oom overrides ok", OK, true, 500, 1000, MLE},
		{"measured time over limit reclassifies to tle", RE, false, 1500, 1000, TLE},
		{"uke is never overridden", UKE, true, 9999, 1000, UKE},
		{"re stands when within time and no oom", RE, false, 500, 1000, RE},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Classify(c.base, c.oomKilled, c.measuredTimeMs, c.timeLimitMs)
			if got != c.want {
				t.Errorf("Classify(%v, oom=%v, %d, %d) = %v, want %v", c.base, c.oomKilled, c.measuredTimeMs, c.timeLimitMs, got, c.want)
			}
		})
	}
}

func TestCodeRoundTripsWithFromCode(t *testing.T) {
	for _, v := range []Verdict{OK, TLE, MLE, RE, UKE} {
		if got := FromCode(v.Code()); got != v {
			t.Errorf("FromCode(%v.Code()) = %v, want %v", v, got, v)
		}
	}
}

func TestFromCodeUnknownDefaultsToUKE(t *testing.T) {
	if got := FromCode(wire.VerdictCode(99)); got != UKE {
		t.Errorf("FromCode(99) = %v, want UKE", got)
	}
}
