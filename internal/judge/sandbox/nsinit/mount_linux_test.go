//go:build linux

package nsinit

import "testing"

func TestSafeRelativePath(t *testing.T) {
	cases := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"plain relative", "data/in.txt", false},
		{"empty", "", true},
		{"absolute", "/etc/passwd", true},
		{"parent escape", "../outside.txt", true},
		{"embedded parent escape", "data/../../outside.txt", true},
		{"dotted filename is fine", "data/file..txt", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := safeRelativePath(c.path)
			if c.wantErr && err == nil {
				t.Fatalf("expected error for %q", c.path)
			}
			if !c.wantErr && err != nil {
				t.Fatalf("unexpected error for %q: %v", c.path, err)
			}
		})
	}
}
