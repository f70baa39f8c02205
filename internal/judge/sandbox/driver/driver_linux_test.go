//go:build linux

package driver

import (
	"bytes"
	"errors"
	"testing"

	"fuzoj/internal/judge/sandbox/wire"
)

func TestRunReportsUKEOnUndecodableRequest(t *testing.T) {
	in := bytes.NewBufferString("not a valid frame")
	var out bytes.Buffer

	err := Run(in, &out)
	if err == nil {
		t.Fatalf("expected errUKE, got nil")
	}
	if !IsUKE(err) {
		t.Fatalf("expected IsUKE(err) to be true, got %v", err)
	}

	res, decodeErr := wire.DecodeJudgeResult(&out)
	if decodeErr != nil {
		t.Fatalf("decode response: %v", decodeErr)
	}
	if res.Verdict != wire.VerdictUKE {
		t.Fatalf("expected VerdictUKE, got %v", res.Verdict)
	}
}

func TestIsUKEDistinguishesOtherErrors(t *testing.T) {
	if IsUKE(nil) {
		t.Fatalf("IsUKE(nil) should be false")
	}
	if IsUKE(errors.New("write response: broken pipe")) {
		t.Fatalf("IsUKE should be false for an error other than errUKE")
	}
}
