package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	defer versionCmd.SetOut(nil)

	if err := versionCmd.RunE(versionCmd, nil); err != nil {
		t.Fatalf("version: %v", err)
	}
	got := out.String()
	if !strings.HasPrefix(got, "declgraph ") {
		t.Fatalf("unexpected output: %q", got)
	}
	if strings.Contains(got, "commit:") {
		t.Fatalf("commit printed without --full: %q", got)
	}

	out.Reset()
	versionFull = true
	defer func() { versionFull = false }()
	if err := versionCmd.RunE(versionCmd, nil); err != nil {
		t.Fatalf("version --full: %v", err)
	}
	got = out.String()
	if !strings.Contains(got, "commit: unknown") || !strings.Contains(got, "built:  unknown") {
		t.Fatalf("missing build metadata lines: %q", got)
	}
}
