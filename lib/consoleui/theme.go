// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package consoleui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/boarding/lib/changefeed"
	"github.com/bureau-foundation/boarding/lib/entitystore"
)

// Theme is the dashboard palette, in lipgloss ANSI 256-color codes.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color

	// Connection and load status.
	Healthy  lipgloss.Color
	Pending  lipgloss.Color
	Degraded lipgloss.Color

	WarnText  lipgloss.Color
	ErrorText lipgloss.Color
}

// DefaultTheme suits a dark 256-color terminal.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),

	Healthy:  lipgloss.Color("114"), // green
	Pending:  lipgloss.Color("220"), // amber
	Degraded: lipgloss.Color("196"), // red

	WarnText:  lipgloss.Color("208"),
	ErrorText: lipgloss.Color("196"),
}

// ConnectionColor returns the color for a feed state.
func (theme Theme) ConnectionColor(state changefeed.State) lipgloss.Color {
	switch state {
	case changefeed.Connected:
		return theme.Healthy
	case changefeed.Connecting, changefeed.Reconnecting:
		return theme.Pending
	default:
		return theme.Degraded
	}
}

// LoadColor returns the color for a store load status.
func (theme Theme) LoadColor(status entitystore.LoadStatus) lipgloss.Color {
	switch status {
	case entitystore.Ready:
		return theme.Healthy
	case entitystore.Loading:
		return theme.Pending
	case entitystore.Failed:
		return theme.Degraded
	default:
		return theme.FaintText
	}
}
