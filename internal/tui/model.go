package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"datepick/internal/calendar"
	"datepick/internal/logging"
	"datepick/internal/store"
	"datepick/internal/widget"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type model struct {
	opts Options
	log  *slog.Logger
	keys keyMap
	help help.Model

	names  []string
	inputs []*textinput.Model
	focus  int

	// picker and doc are shared across model copies; bubbletea runs Update
	// on a single goroutine.
	picker *widget.Widget
	doc    *widget.Document
	cursor int

	showHelp  bool
	status    string
	statusErr bool
	width     int
	height    int
}

func newModel(opts Options) (model, error) {
	if opts.Logger == nil {
		opts.Logger = logging.WithComponent("tui")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	m := model{
		opts: opts,
		log:  opts.Logger.With("component", "tui"),
		keys: defaultKeyMap(),
		help: help.New(),
		doc:  widget.NewDocument(),
		picker: widget.New(widget.Options{
			Policy: opts.Policy,
			Now:    opts.Now,
			Logger: opts.Logger.With("component", "tui"),
		}),
		width: 80,
	}

	seen := map[string]bool{}
	for _, f := range opts.Fields {
		name, err := store.ValidFieldName(f)
		if err != nil {
			return model{}, fmt.Errorf("tui: field %q: %w", f, err)
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		in := textinput.New()
		in.Placeholder = "YYYY-MM-DD"
		in.CharLimit = 10
		in.Width = 12
		in.Prompt = ""
		m.names = append(m.names, name)
		m.inputs = append(m.inputs, &in)
	}
	if len(m.inputs) == 0 {
		return model{}, errors.New("tui: no fields configured")
	}
	m.loadStored()
	m.inputs[0].Focus()
	return m, nil
}

func (m *model) loadStored() {
	if m.opts.Store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	all, err := m.opts.Store.Fields(ctx)
	if err != nil {
		m.log.Warn("loading stored fields failed", "err", err)
		return
	}
	for _, fv := range all {
		for i, name := range m.names {
			if name == fv.Name {
				m.inputs[i].SetValue(fv.Value)
			}
		}
	}
}

func (m model) Init() tea.Cmd { return textinput.Blink }

func (m model) target() inputTarget {
	return inputTarget{name: m.names[m.focus], input: m.inputs[m.focus], store: m.opts.Store}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.showHelp {
			if key.Matches(msg, m.keys.Help, m.keys.Dismiss, m.keys.Quit) {
				m.showHelp = false
			}
			return m, nil
		}
		if m.picker.IsOpen() {
			return m.updatePicker(msg)
		}
		return m.updateForm(msg)
	}
	return m, nil
}

func (m model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.Next):
		return m, m.setFocus(m.focus + 1)
	case key.Matches(msg, m.keys.Prev):
		return m, m.setFocus(m.focus - 1)
	case key.Matches(msg, m.keys.Toggle):
		m.openPicker()
		return m, nil
	case key.Matches(msg, m.keys.Save):
		m.saveAll()
		return m, nil
	}

	// Inputs only take the characters of an ISO date.
	if msg.Type == tea.KeyRunes {
		for _, r := range msg.Runes {
			if (r < '0' || r > '9') && r != '-' {
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	*m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.Dismiss):
		m.picker.Dispatch(m.doc, widget.BackdropMsg{})
		m.setStatus("picker closed", false)
	case key.Matches(msg, m.keys.Select):
		name := m.names[m.focus]
		if v, ok := m.picker.Select(m.doc, m.cursor); ok {
			m.setStatus(name+" = "+v, false)
		}
	case msg.Type == tea.KeyCtrlO:
		m.picker.Open(m.doc, m.target())
	case key.Matches(msg, m.keys.Left):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Right):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-7)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(7)
	case key.Matches(msg, m.keys.PrevMonth):
		m.navigate(calendar.NavPrevMonth)
	case key.Matches(msg, m.keys.NextMonth):
		m.navigate(calendar.NavNextMonth)
	case key.Matches(msg, m.keys.PrevYear):
		m.navigate(calendar.NavPrevYear)
	case key.Matches(msg, m.keys.NextYear):
		m.navigate(calendar.NavNextYear)
	}
	return m, nil
}

func (m *model) setFocus(i int) tea.Cmd {
	n := len(m.inputs)
	i = ((i % n) + n) % n
	m.inputs[m.focus].Blur()
	m.focus = i
	return m.inputs[m.focus].Focus()
}

func (m *model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m *model) openPicker() {
	if !m.picker.Open(m.doc, m.target()) {
		return
	}
	st, _ := m.picker.Snapshot()
	m.cursor = 1
	if y, mo, d, err := calendar.ParseISO(m.inputs[m.focus].Value()); err == nil && y == st.Year && mo == st.Month {
		m.cursor = d
	} else if now := m.opts.Now(); now.Year() == st.Year && int(now.Month())-1 == st.Month {
		m.cursor = now.Day()
	}
	m.setStatus("", false)
}

func (m *model) navigate(nav calendar.Nav) {
	m.picker.Dispatch(m.doc, widget.NavMsg{Nav: nav})
	m.clampCursor()
}

func (m *model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

func (m *model) clampCursor() {
	g, ok := m.picker.Grid()
	if !ok {
		return
	}
	if m.cursor < 1 {
		m.cursor = 1
	}
	if n := g.DayCount(); m.cursor > n {
		m.cursor = n
	}
}

// saveAll validates every non-empty input and writes it to the store.
func (m *model) saveAll() {
	if m.opts.Store == nil {
		m.setStatus("no store attached", true)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var saved []string
	for i, in := range m.inputs {
		v := strings.TrimSpace(in.Value())
		if v == "" {
			continue
		}
		if _, _, _, err := calendar.ParseISO(v); err != nil {
			m.setStatus(fmt.Sprintf("%s: %v", m.names[i], err), true)
			return
		}
		if err := m.opts.Store.SetField(ctx, m.names[i], v); err != nil {
			m.log.Error("saving field failed", "field", m.names[i], "err", err)
			m.setStatus(fmt.Sprintf("%s: %v", m.names[i], err), true)
			return
		}
		saved = append(saved, m.names[i])
	}
	if len(saved) == 0 {
		m.setStatus("nothing to save", false)
		return
	}
	m.setStatus("saved "+strings.Join(saved, ", "), false)
}
