// Package tui provides the Bubble Tea front end of the level generator: a
// progress screen that pumps the validator between frames and a styled
// ASCII preview of generated levels.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is sent to trigger a validator burst.
type TickMsg time.Time

// tickCmd schedules the next TickMsg, tickRate times per second.
func tickCmd(tickRate int) tea.Cmd {
	interval := time.Second / time.Duration(tickRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
