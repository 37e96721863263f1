// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package consoleui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/boarding/lib/changefeed"
	"github.com/bureau-foundation/boarding/lib/entity"
	"github.com/bureau-foundation/boarding/lib/entitystore"
)

// StoreSet provides the store for each kind.
type StoreSet interface {
	Store(kind entity.Kind) (*entitystore.Store, bool)
}

// Feed reports the change-feed connection state.
type Feed interface {
	State() changefeed.State
	Subscribe() <-chan changefeed.State
}

// storeChangeMsg carries a store notice through the bubbletea loop.
// The listener for kind is re-armed after each one.
type storeChangeMsg struct {
	kind   entity.Kind
	change entitystore.Change
}

type feedStateMsg struct {
	state changefeed.State
}

// chrome is the number of lines around the table: tab bar, bottom
// separator, status line and help line.
const chrome = 4

// Model is the bubbletea model for the dashboard.
type Model struct {
	theme Theme
	keys  KeyMap

	kinds     []entity.Kind
	stores    map[entity.Kind]*entitystore.Store
	changes   map[entity.Kind]<-chan entitystore.Change
	snapshots map[entity.Kind]entitystore.State

	feedChanges <-chan changefeed.State
	connection  changefeed.State

	width  int
	height int
	ready  bool

	activeTab int
	table     table.Model

	// notice is the latest log record shown in place of the help line.
	// noticeSequence pairs each fade timer with the notice it clears.
	notice         *logRecordMsg
	noticeSequence int
}

// NewModel subscribes to every store in stores and to feed. The model
// reads snapshots only; it never mutates a store.
func NewModel(stores StoreSet, feed Feed) Model {
	model := Model{
		theme:     DefaultTheme,
		keys:      DefaultKeyMap,
		stores:    make(map[entity.Kind]*entitystore.Store),
		changes:   make(map[entity.Kind]<-chan entitystore.Change),
		snapshots: make(map[entity.Kind]entitystore.State),
	}
	for _, kind := range entity.Kinds() {
		store, ok := stores.Store(kind)
		if !ok {
			continue
		}
		model.kinds = append(model.kinds, kind)
		model.stores[kind] = store
		model.changes[kind] = store.Subscribe()
		model.snapshots[kind] = store.Snapshot()
	}
	if feed != nil {
		model.feedChanges = feed.Subscribe()
		model.connection = feed.State()
	}

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(model.theme.BorderColor).
		BorderBottom(true).
		Bold(true).
		Foreground(model.theme.HeaderForeground)
	styles.Cell = styles.Cell.Foreground(model.theme.NormalText)
	styles.Selected = styles.Selected.
		Bold(false).
		Foreground(model.theme.SelectedForeground).
		Background(model.theme.SelectedBackground)

	model.table = table.New(table.WithFocused(true), table.WithStyles(styles))
	model.table.KeyMap = table.KeyMap{
		LineUp:     model.keys.Up,
		LineDown:   model.keys.Down,
		PageUp:     model.keys.PageUp,
		PageDown:   model.keys.PageDown,
		GotoTop:    model.keys.Home,
		GotoBottom: model.keys.End,
	}
	model.refreshTable()
	return model
}

// Init implements tea.Model.
func (model Model) Init() tea.Cmd {
	var commands []tea.Cmd
	for _, kind := range model.kinds {
		commands = append(commands, listenForStoreChange(kind, model.changes[kind]))
	}
	if model.feedChanges != nil {
		commands = append(commands, listenForFeedState(model.feedChanges))
	}
	return tea.Batch(commands...)
}

// listenForStoreChange blocks until the store posts a notice. A closed
// channel ends the listener.
func listenForStoreChange(kind entity.Kind, channel <-chan entitystore.Change) tea.Cmd {
	return func() tea.Msg {
		change, ok := <-channel
		if !ok {
			return nil
		}
		return storeChangeMsg{kind: kind, change: change}
	}
}

func listenForFeedState(channel <-chan changefeed.State) tea.Cmd {
	return func() tea.Msg {
		state, ok := <-channel
		if !ok {
			return nil
		}
		return feedStateMsg{state: state}
	}
}

// ActiveKind returns the kind shown in the current tab.
func (model Model) ActiveKind() entity.Kind {
	if len(model.kinds) == 0 {
		return ""
	}
	return model.kinds[model.activeTab]
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		return model.handleKey(message)

	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.ready = true
		model.table.SetWidth(model.width)
		model.table.SetHeight(max(model.height-chrome, 1))
		model.refreshTable()

	case storeChangeMsg:
		// Notices can be dropped when the channel is full, so always
		// reread the whole store rather than applying the single change.
		model.snapshots[message.kind] = model.stores[message.kind].Snapshot()
		if message.kind == model.ActiveKind() {
			model.refreshTable()
		}
		return model, listenForStoreChange(message.kind, model.changes[message.kind])

	case feedStateMsg:
		model.connection = message.state
		return model, listenForFeedState(model.feedChanges)

	case logRecordMsg:
		model.noticeSequence++
		model.notice = &message
		sequence := model.noticeSequence
		return model, tea.Tick(logRecordFadeDelay, func(time.Time) tea.Msg {
			return logRecordFadeMsg{sequence: sequence}
		})

	case logRecordFadeMsg:
		if message.sequence == model.noticeSequence {
			model.notice = nil
		}
	}
	return model, nil
}

func (model Model) handleKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	tabKeys := []key.Binding{model.keys.Tab1, model.keys.Tab2, model.keys.Tab3, model.keys.Tab4, model.keys.Tab5}
	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit
	case key.Matches(message, model.keys.NextTab):
		model.selectTab(model.activeTab + 1)
		return model, nil
	case key.Matches(message, model.keys.PreviousTab):
		model.selectTab(model.activeTab - 1)
		return model, nil
	}
	for index, binding := range tabKeys {
		if key.Matches(message, binding) && index < len(model.kinds) {
			model.selectTab(index)
			return model, nil
		}
	}

	var command tea.Cmd
	model.table, command = model.table.Update(message)
	return model, command
}

// selectTab switches tabs, wrapping at either end.
func (model *Model) selectTab(index int) {
	if len(model.kinds) == 0 {
		return
	}
	index = (index%len(model.kinds) + len(model.kinds)) % len(model.kinds)
	if index == model.activeTab {
		return
	}
	model.activeTab = index
	model.table.SetCursor(0)
	model.refreshTable()
}

// refreshTable rebuilds the table from the active kind's snapshot,
// keeping the cursor in range.
func (model *Model) refreshTable() {
	kind := model.ActiveKind()
	if kind == "" {
		return
	}
	columns, rows := buildTable(model.snapshots[kind].Items, model.width)
	cursor := model.table.Cursor()

	// Rows must never be wider than the columns, so clear them first.
	model.table.SetRows(nil)
	model.table.SetColumns(columns)
	model.table.SetRows(rows)
	model.table.SetCursor(min(max(cursor, 0), max(len(rows)-1, 0)))
}

// View implements tea.Model.
func (model Model) View() string {
	if !model.ready {
		return "Loading..."
	}
	if len(model.kinds) == 0 {
		return "No stores configured."
	}

	separator := lipgloss.NewStyle().
		Foreground(model.theme.BorderColor).
		Render(strings.Repeat("─", model.width))

	sections := []string{
		model.renderHeader(),
		model.renderBody(),
		separator,
		model.renderStatus(),
		model.renderHelp(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderHeader draws the tab bar with the connection state on the
// right: ─── 1:Members (3) ─── 2:Schedules (0) ─  ● connected
func (model Model) renderHeader() string {
	separatorStyle := lipgloss.NewStyle().Foreground(model.theme.BorderColor)
	activeStyle := lipgloss.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground)
	inactiveStyle := lipgloss.NewStyle().Foreground(model.theme.FaintText)

	sep := separatorStyle.Render("───")
	var left strings.Builder
	left.WriteString(sep)
	for index, kind := range model.kinds {
		label := fmt.Sprintf("%d:%s (%d)", index+1, tabTitle(kind), len(model.snapshots[kind].Items))
		left.WriteString(" ")
		if index == model.activeTab {
			left.WriteString(activeStyle.Render(label))
		} else {
			left.WriteString(inactiveStyle.Render(label))
		}
		left.WriteString(" ")
		if index < len(model.kinds)-1 {
			left.WriteString(sep)
		}
	}

	connection := lipgloss.NewStyle().
		Foreground(model.theme.ConnectionColor(model.connection)).
		Render("● " + model.connection.String())

	gap := model.width - lipgloss.Width(left.String()) - lipgloss.Width(connection) - 1
	if gap < 1 {
		return ansi.Truncate(left.String()+" "+connection, model.width, "")
	}
	return left.String() + separatorStyle.Render(strings.Repeat("─", gap)) + " " + connection
}

// renderBody shows the table, or a centered placeholder when the active
// store has nothing to show yet.
func (model Model) renderBody() string {
	kind := model.ActiveKind()
	state := model.snapshots[kind]
	height := max(model.height-chrome, 1)

	if len(state.Items) > 0 {
		return lipgloss.NewStyle().Height(height).MaxHeight(height).Render(model.table.View())
	}

	text := fmt.Sprintf("No %s.", kind.Plural())
	style := lipgloss.NewStyle().Foreground(model.theme.FaintText)
	switch state.LoadStatus {
	case entitystore.NotStarted:
		text = "Waiting for sign-in."
	case entitystore.Loading:
		text = fmt.Sprintf("Loading %s...", kind.Plural())
	case entitystore.Failed:
		text = state.LastError
		style = style.Foreground(model.theme.ErrorText)
	}
	return lipgloss.Place(model.width, height, lipgloss.Center, lipgloss.Center, style.Render(text))
}

// renderStatus lists every store's load status and item count, then the
// active store's last error when it has one.
func (model Model) renderStatus() string {
	faint := lipgloss.NewStyle().Foreground(model.theme.FaintText)
	parts := make([]string, 0, len(model.kinds))
	for _, kind := range model.kinds {
		state := model.snapshots[kind]
		status := lipgloss.NewStyle().
			Foreground(model.theme.LoadColor(state.LoadStatus)).
			Render(state.LoadStatus.String())
		parts = append(parts, faint.Render(kind.Plural()+" ")+status)
	}
	line := " " + strings.Join(parts, faint.Render("  "))

	if lastError := model.snapshots[model.ActiveKind()].LastError; lastError != "" {
		line += lipgloss.NewStyle().Foreground(model.theme.ErrorText).Render("  " + lastError)
	}
	return ansi.Truncate(line, model.width, "…")
}

// renderHelp shows key hints, or the latest log notice while it lasts.
func (model Model) renderHelp() string {
	if model.notice != nil {
		color := model.theme.NormalText
		switch {
		case model.notice.Level >= slog.LevelError:
			color = model.theme.ErrorText
		case model.notice.Level >= slog.LevelWarn:
			color = model.theme.WarnText
		}
		return ansi.Truncate(lipgloss.NewStyle().Foreground(color).Render(" "+model.notice.Summary), model.width, "…")
	}

	help := fmt.Sprintf(" q quit  ↑↓ navigate  tab/1-%d switch", len(model.kinds))
	rows := len(model.snapshots[model.ActiveKind()].Items)
	if rows > 0 {
		help += fmt.Sprintf("  row %d/%d", model.table.Cursor()+1, rows)
	}
	return ansi.Truncate(lipgloss.NewStyle().Foreground(model.theme.HelpText).Render(help), model.width, "…")
}

// tabTitle capitalizes the plural kind name: "members" -> "Members".
func tabTitle(kind entity.Kind) string {
	plural := kind.Plural()
	if plural == "" {
		return plural
	}
	return strings.ToUpper(plural[:1]) + plural[1:]
}
