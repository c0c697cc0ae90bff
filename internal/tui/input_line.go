package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

const fieldLabelWidth = 13

// renderField draws one form row: a fixed-width label and the input on a
// filled background, never wider than width.
func renderField(width int, label, inputView string, focused bool) string {
	if width < 20 {
		width = 20
	}

	// An input must stay on one visual line or the form rows shift.
	inputView = strings.ReplaceAll(inputView, "\n", " ")
	inputView = strings.ReplaceAll(inputView, "\r", " ")

	lbl := styleMuted().Width(fieldLabelWidth).Render(label)
	if focused {
		lbl = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Width(fieldLabelWidth).Render(label)
	}
	bodyW := width - fieldLabelWidth - 2
	body := lipgloss.PlaceHorizontal(
		bodyW,
		lipgloss.Left,
		" "+inputView+" ",
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceBackground(colorInputBg),
	)
	return clampLine(" "+lbl+" "+body, width)
}

// clampLine cuts s to width cells and terminates styling so nothing bleeds
// into the next cell.
func clampLine(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if xansi.StringWidth(s) > width {
		return xansi.Cut(s, 0, width) + "\x1b[0m"
	}
	return s
}

// truncate shortens plain or styled text to width cells with an ellipsis.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return xansi.Truncate(s, width, "…")
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
