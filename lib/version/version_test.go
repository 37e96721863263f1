// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"bytes"
	"strings"
	"testing"
)

func TestInfoUsesInjectedValues(t *testing.T) {
	savedCommit, savedTime, savedVersion := GitCommit, BuildTime, Version
	t.Cleanup(func() { GitCommit, BuildTime, Version = savedCommit, savedTime, savedVersion })

	GitCommit, BuildTime, Version = "abc1234", "2026-10-01T00:00:00Z", "1.2.0"
	if got, want := Info(), "1.2.0 (abc1234, 2026-10-01T00:00:00Z)"; got != want {
		t.Fatalf("Info() = %q, want %q", got, want)
	}

	var buffer bytes.Buffer
	Print(&buffer, "boarding-console")
	if got := buffer.String(); got != "boarding-console 1.2.0 (abc1234, 2026-10-01T00:00:00Z)\n" {
		t.Fatalf("Print wrote %q", got)
	}
}

func TestFullIncludesPlatform(t *testing.T) {
	full := Full()
	if !strings.Contains(full, "Go: ") || !strings.Contains(full, "Platform: ") {
		t.Fatalf("Full() = %q", full)
	}
}
