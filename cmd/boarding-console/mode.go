// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import "fmt"

type uiMode string

const (
	uiAuto     uiMode = "auto"
	uiTUI      uiMode = "tui"
	uiHeadless uiMode = "headless"
)

// resolveUIMode turns auto into tui or headless depending on whether
// the process is attached to a terminal.
func resolveUIMode(requested uiMode, interactive bool) (uiMode, error) {
	switch requested {
	case uiAuto, "":
		if interactive {
			return uiTUI, nil
		}
		return uiHeadless, nil
	case uiTUI:
		if !interactive {
			return "", fmt.Errorf("--ui=tui needs a terminal on stdin and stdout")
		}
		return uiTUI, nil
	case uiHeadless:
		return uiHeadless, nil
	}
	return "", fmt.Errorf("--ui must be auto, tui or headless, got %q", requested)
}
