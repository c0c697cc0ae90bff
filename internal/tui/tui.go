package tui

import (
	"projboard/internal/board"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

// Run shows b full-screen until the user quits. Mouse cell motion is enabled
// so cards can be dragged between the lists.
func Run(b *board.Board, log zerolog.Logger) error {
	applyThemePreference()
	applyColorProfilePreference()

	m := newAppModel(b, log)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
