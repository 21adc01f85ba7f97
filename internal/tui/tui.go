// Package tui is the terminal front end: a small form of date fields, each
// of which can open the calendar picker.
package tui

import (
	"log/slog"
	"time"

	"datepick/internal/calendar"
	"datepick/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

type Options struct {
	Fields []string
	Policy calendar.WrapPolicy
	// Store is optional; without it selections only fill the inputs.
	Store  *store.Store
	Theme  string
	Logger *slog.Logger
	Now    func() time.Time
}

func Run(opts Options) error {
	applyColorProfilePreference()
	applyThemePreference(opts.Theme)

	m, err := newModel(opts)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
