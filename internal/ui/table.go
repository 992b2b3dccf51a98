package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

// NewTable creates a new Bubbles table with default styling.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{
			Title: c.Title,
			Width: c.Width,
		}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1), // +1 for header
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.
		Foreground(ColorPrimary)
	// Nothing is focused, so the selected row renders like any other.
	s.Selected = s.Cell

	t.SetStyles(s)
	return t
}

// RenderSimpleTable renders a non-interactive table string.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}

	t := NewTable(columns, tableRows)
	return t.View()
}

// ServerRow is one configured profile in the servers table.
type ServerRow struct {
	Name   string
	Branch string
	Path   string
	Hosts  []string

	// Stages lists the optional stages switched on, e.g. "tests", "assets".
	Stages []string
}

// RenderServersTable renders the configured profiles.
func RenderServersTable(rows []ServerRow) string {
	if len(rows) == 0 {
		return "No servers configured"
	}

	columns := []TableColumn{
		{Title: "SERVER", Width: widest(rows, func(r ServerRow) string { return r.Name }, 6, 20)},
		{Title: "BRANCH", Width: widest(rows, func(r ServerRow) string { return r.Branch }, 6, 20)},
		{Title: "PATH", Width: widest(rows, func(r ServerRow) string { return r.Path }, 4, 40)},
		{Title: "HOSTS", Width: widest(rows, func(r ServerRow) string { return strings.Join(r.Hosts, ", ") }, 5, 40)},
		{Title: "STAGES", Width: widest(rows, func(r ServerRow) string { return stagesLabel(r.Stages) }, 6, 50)},
	}

	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = []string{r.Name, r.Branch, r.Path, strings.Join(r.Hosts, ", "), stagesLabel(r.Stages)}
	}
	return RenderSimpleTable(columns, cells)
}

func stagesLabel(stages []string) string {
	if len(stages) == 0 {
		return "-"
	}
	return strings.Join(stages, ", ")
}

// widest returns the width of the longest value, clamped to [minW, maxW].
func widest(rows []ServerRow, value func(ServerRow) string, minW, maxW int) int {
	w := minW
	for _, r := range rows {
		if n := lipgloss.Width(value(r)); n > w {
			w = n
		}
	}
	if w > maxW {
		w = maxW
	}
	return w + 2
}

// CheckRow is one result of `deployr check`.
type CheckRow struct {
	Status     string // "pass", "warn", "fail"
	Category   string // Group heading, e.g. "Config" or a host name
	Message    string
	Suggestion string // Shown under non-passing rows
}

// RenderCheckTable renders check results grouped by category, in the
// order categories first appear.
func RenderCheckTable(rows []CheckRow) string {
	if len(rows) == 0 {
		return "No checks to display"
	}

	successStyle := lipgloss.NewStyle().Foreground(ColorSuccess)
	errorStyle := lipgloss.NewStyle().Foreground(ColorError)
	warnStyle := lipgloss.NewStyle().Foreground(ColorWarning)
	mutedStyle := MutedStyle()
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary)

	categories := make(map[string][]CheckRow)
	var categoryOrder []string
	for _, row := range rows {
		if _, exists := categories[row.Category]; !exists {
			categoryOrder = append(categoryOrder, row.Category)
		}
		categories[row.Category] = append(categories[row.Category], row)
	}

	var b strings.Builder
	for _, cat := range categoryOrder {
		b.WriteString(headerStyle.Render(cat) + "\n")

		for _, row := range categories[cat] {
			var statusIcon string
			switch row.Status {
			case "pass":
				statusIcon = successStyle.Render(SymbolSuccess)
			case "warn":
				statusIcon = warnStyle.Render(SymbolWarning)
			case "fail":
				statusIcon = errorStyle.Render(SymbolFail)
			default:
				statusIcon = mutedStyle.Render(SymbolPending)
			}

			b.WriteString("  " + statusIcon + " " + row.Message + "\n")

			if row.Suggestion != "" && row.Status != "pass" {
				b.WriteString("    " + mutedStyle.Render(strings.ReplaceAll(row.Suggestion, "\n", "\n    ")) + "\n")
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}
