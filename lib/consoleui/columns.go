// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package consoleui

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/boarding/lib/entity"
)

const (
	// maxColumnWidth caps a column so one long free-text field cannot
	// push every other column off screen.
	maxColumnWidth = 32
	minColumnWidth = 4
)

// buildTable lays out records as table columns and rows. Columns are
// the union of the records' fields, "id" first and the rest sorted.
// Trailing columns are dropped once the total exceeds width; a
// non-positive width keeps them all.
func buildTable(records []entity.Record, width int) ([]table.Column, []table.Row) {
	fields := fieldNames(records)

	cells := make([][]string, len(records))
	widths := make([]int, len(fields))
	for index, field := range fields {
		widths[index] = max(lipgloss.Width(field), minColumnWidth)
	}
	for row, record := range records {
		cells[row] = make([]string, len(fields))
		for index, field := range fields {
			cell := formatValue(record[field])
			cells[row][index] = cell
			widths[index] = max(widths[index], lipgloss.Width(cell))
		}
	}

	var columns []table.Column
	used := 0
	for index, field := range fields {
		columnWidth := min(widths[index], maxColumnWidth)
		// Each rendered cell carries one column of padding either side.
		if width > 0 && len(columns) > 0 && used+columnWidth+2 > width {
			break
		}
		used += columnWidth + 2
		columns = append(columns, table.Column{Title: field, Width: columnWidth})
	}

	rows := make([]table.Row, len(records))
	for row := range records {
		line := make(table.Row, len(columns))
		for index, column := range columns {
			line[index] = ansi.Truncate(cells[row][index], column.Width, "…")
		}
		rows[row] = line
	}
	return columns, rows
}

func fieldNames(records []entity.Record) []string {
	seen := make(map[string]bool)
	var fields []string
	for _, record := range records {
		for field := range record {
			if field == entity.IDField || seen[field] {
				continue
			}
			seen[field] = true
			fields = append(fields, field)
		}
	}
	slices.Sort(fields)
	return append([]string{entity.IDField}, fields...)
}

// formatValue renders one field for a table cell. Nested objects and
// arrays are shown as compact JSON.
func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case map[string]any, []any:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
	return fmt.Sprint(value)
}
