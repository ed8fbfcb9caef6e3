package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Table renders rows under a header with minimal borders, fitting cells to
// the display width.
type Table struct {
	display *DisplayContext
	headers []string
	rows    [][]string
}

// NewTable creates a table with the given column headers.
func NewTable(display *DisplayContext, headers ...string) *Table {
	return &Table{display: display, headers: headers}
}

// AddRow adds a row; missing cells are blank and extra cells are dropped.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	copy(row, cells)
	for i, c := range row {
		row[i] = strings.ReplaceAll(c, "\n", " ")
	}
	t.rows = append(t.rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// String renders the table.
func (t *Table) String() string {
	if len(t.rows) == 0 {
		return ""
	}
	maxCell := t.cellWidth()
	rows := make([][]string, len(t.rows))
	for i, row := range t.rows {
		rows[i] = make([]string, len(row))
		for j, cell := range row {
			rows[i][j] = TruncateWithEllipsis(cell, maxCell)
		}
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderStyle(Muted).
		Headers(t.headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().PaddingRight(2)
			if row == table.HeaderRow {
				return s.Bold(true)
			}
			if col == 0 {
				return s.Inherit(Muted)
			}
			return s
		})
	return tbl.Render() + "\n"
}

// cellWidth spreads the available width evenly across columns.
func (t *Table) cellWidth() int {
	cols := len(t.headers)
	if cols == 0 {
		return 0
	}
	w := t.display.AvailableWidth(0)/cols - 2
	if w < 8 {
		w = 8
	}
	return w
}

// TruncateWithEllipsis shortens s to maxLen display columns.
func TruncateWithEllipsis(s string, maxLen int) string {
	if maxLen <= 0 || lipgloss.Width(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string([]rune(s)[:maxLen])
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+3 > maxLen {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
