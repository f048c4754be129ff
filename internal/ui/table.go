package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/customers/internal/api"
	"github.com/muurk/customers/internal/discovery"
)

// Format selects how lists are printed
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// ParseFormat validates a --format value
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q (want table or json)", s)
	}
}

const (
	columnGap   = 2
	emptyMarker = "-"
)

// RenderCustomers renders list as a three column table fitted to width
func RenderCustomers(list api.CustomerList, width int) string {
	if len(list) == 0 {
		return MutedStyle.Render("No customers yet.")
	}
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	rows := make([][3]string, len(list))
	widths := [3]int{len("Name"), len("Email"), len("Business")}
	for i, c := range list {
		business := c.BusinessName
		if business == "" {
			business = emptyMarker
		}
		rows[i] = [3]string{c.DisplayName(), c.Email, business}
		for col, cell := range rows[i] {
			widths[col] = max(widths[col], lipgloss.Width(cell))
		}
	}
	fitColumns(&widths, width-2*columnGap)

	renderRow := func(style lipgloss.Style, cells [3]string) string {
		parts := make([]string, 3)
		for col, cell := range cells {
			parts[col] = style.Width(widths[col]).MaxWidth(widths[col]).Render(truncate(cell, widths[col]))
		}
		return strings.Join(parts, strings.Repeat(" ", columnGap))
	}

	lines := []string{
		renderRow(TableHeaderStyle, [3]string{"Name", "Email", "Business"}),
		MutedStyle.Render(strings.Repeat("─", widths[0]+widths[1]+widths[2]+2*columnGap)),
	}
	for _, row := range rows {
		lines = append(lines, renderRow(TableCellStyle, row))
	}
	lines = append(lines, "", MutedStyle.Render(countLabel(len(list))))
	return strings.Join(lines, "\n")
}

// fitColumns shrinks the widest column until the row fits in total
func fitColumns(widths *[3]int, total int) {
	for widths[0]+widths[1]+widths[2] > total {
		widest := 0
		for col := range widths {
			if widths[col] > widths[widest] {
				widest = col
			}
		}
		if widths[widest] <= 8 {
			return
		}
		widths[widest]--
	}
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 1 {
		return string(runes[:width])
	}
	return string(runes[:width-1]) + "…"
}

func countLabel(n int) string {
	if n == 1 {
		return "1 customer"
	}
	return fmt.Sprintf("%d customers", n)
}

// RenderServices renders discovered APIs one per line
func RenderServices(services []discovery.Service) string {
	lines := make([]string, 0, len(services))
	for _, s := range services {
		line := TableCellStyle.Render(s.Name) + "  " + MutedStyle.Render(s.URL())
		if v := s.GetMetadata("version"); v != "" {
			line += MutedStyle.Render("  v" + v)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// WriteJSON writes v as indented JSON followed by a newline
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
