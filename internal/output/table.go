package output

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// TableStyle defines the style for table output.
type TableStyle struct {
	Border      lipgloss.Border
	BorderColor lipgloss.Color
	HeaderStyle lipgloss.Style
	CellStyle   lipgloss.Style

	// GroupStyle renders the first cell of a row that starts a new group.
	GroupStyle lipgloss.Style
}

// DefaultTableStyle returns the default table style.
func DefaultTableStyle() TableStyle {
	return TableStyle{
		Border:      lipgloss.NormalBorder(),
		BorderColor: ColorDimGray,
		HeaderStyle: lipgloss.NewStyle().Bold(true).Foreground(colorHeader),
		CellStyle:   lipgloss.NewStyle(),
		GroupStyle:  lipgloss.NewStyle().Bold(true),
	}
}

// Table is a styled table of string cells. When grouped, a first-column
// value repeated on consecutive rows is printed once.
type Table struct {
	headers []string
	rows    [][]string
	grouped bool
	style   TableStyle
}

// NewTable creates a new table with the given headers.
func NewTable(headers ...string) *Table {
	return &Table{
		headers: headers,
		style:   DefaultTableStyle(),
	}
}

// Grouped collapses repeated first-column values.
func (t *Table) Grouped() *Table {
	t.grouped = true
	return t
}

// Row adds a row to the table.
func (t *Table) Row(cells ...string) *Table {
	t.rows = append(t.rows, cells)
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// String renders the table.
func (t *Table) String() string {
	rows := t.displayRows()

	tbl := table.New().
		Border(t.style.Border).
		BorderStyle(lipgloss.NewStyle().Foreground(t.style.BorderColor)).
		Headers(t.headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return t.style.HeaderStyle
			case t.grouped && col == 0:
				return t.style.GroupStyle
			}
			return t.style.CellStyle
		})

	for _, row := range rows {
		tbl.Row(row...)
	}

	return tbl.String()
}

func (t *Table) displayRows() [][]string {
	if !t.grouped {
		return t.rows
	}

	out := make([][]string, len(t.rows))
	prev := ""
	for i, row := range t.rows {
		out[i] = append([]string(nil), row...)
		if len(row) == 0 {
			continue
		}
		if i > 0 && row[0] == prev {
			out[i][0] = ""
		}
		prev = row[0]
	}
	return out
}
