// Package widget implements the calendar date-picker: a month grid that can
// be navigated by month and year and that writes the chosen day, as an ISO
// YYYY-MM-DD string, into a target field before tearing itself down.
//
// The widget describes its DOM as a Node tree and mounts it into a Host. It
// never touches a surface directly, so the same widget drives the web page,
// the terminal UI and the tests.
package widget

import (
	"errors"
	"log/slog"
	"time"

	"datepick/internal/calendar"
	"datepick/internal/logging"
)

// Field is the target of a selection: anything with a settable string value.
type Field interface {
	SetValue(string) error
}

// Valuer is implemented by fields that can report their current value. The
// picker opens on the month of a valid ISO value.
type Valuer interface {
	Value() string
}

// FieldFunc adapts a function to Field.
type FieldFunc func(string) error

func (f FieldFunc) SetValue(v string) error { return f(v) }

// State is the picker state while it is open.
type State struct {
	Month    int // 0-based
	Year     int
	Days     []time.Time
	Selected string
	Target   Field
}

type Options struct {
	Policy calendar.WrapPolicy
	Now    func() time.Time
	Logger *slog.Logger
}

// Widget is one picker instance. At most one tree is mounted at a time.
// Methods are not safe for concurrent use; callers serialize access.
type Widget struct {
	opts  Options
	state *State
	grid  calendar.Grid
	tree  *Node
}

func New(opts Options) *Widget {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logging.WithComponent("widget")
	}
	return &Widget{opts: opts}
}

func (w *Widget) Policy() calendar.WrapPolicy { return w.opts.Policy }

func (w *Widget) IsOpen() bool { return w.state != nil }

// Snapshot returns a copy of the open state.
func (w *Widget) Snapshot() (State, bool) {
	if w.state == nil {
		return State{}, false
	}
	st := *w.state
	st.Days = append([]time.Time(nil), w.state.Days...)
	return st, true
}

// Grid returns the layout currently displayed.
func (w *Widget) Grid() (calendar.Grid, bool) {
	if w.state == nil {
		return calendar.Grid{}, false
	}
	return w.grid, true
}

// Tree is the widget's own copy of its mounted tree (nil while closed).
func (w *Widget) Tree() *Node { return w.tree }

// Open toggles the picker. When it is already open it is closed without
// writing anything and Open returns false. Otherwise the shell is mounted and
// populated for the current month (or the month of the target's value).
func (w *Widget) Open(h Host, target Field) bool {
	if w.state != nil {
		w.Dismiss(h)
		return false
	}

	now := w.opts.Now()
	month, year := int(now.Month())-1, now.Year()
	if v, ok := target.(Valuer); ok && v != nil {
		if y, m, _, err := calendar.ParseISO(v.Value()); err == nil {
			month, year = m, y
		}
	}

	g := calendar.Layout(month, year)
	w.state = &State{Month: g.Month, Year: g.Year, Target: target}
	w.grid = g
	w.tree = shell(g)

	err := h.Append(w.tree)
	if errors.Is(err, ErrDuplicateID) {
		// A stale container from an earlier page state: take it over.
		err = h.Replace(ContainerID, w.tree)
	}
	w.hostErr("open", err)

	w.Render(h, g.Month, g.Year)
	return true
}

// Render lays out (month, year) and rebuilds the grid and header labels in
// place. The outer shell is kept.
func (w *Widget) Render(h Host, month, year int) {
	if w.state == nil {
		return
	}
	w.Clear(h)

	g := calendar.Layout(month, year)
	w.grid = g
	w.state.Month, w.state.Year = g.Month, g.Year
	w.state.Days = g.Days
	w.state.Selected = ""

	w.patch(h, YearLabelID, yearLabel(g.Year))
	w.patch(h, MonthLabelID, monthLabel(g.MonthName))
	w.patch(h, TableID, dateTable(g))
}

// Clear removes every day cell, leaving the header row and empty week rows.
func (w *Widget) Clear(h Host) {
	if w.state == nil {
		return
	}
	w.patch(h, TableID, emptyTable())
}

// Navigate applies one header control and re-renders.
func (w *Widget) Navigate(h Host, nav calendar.Nav) {
	if w.state == nil {
		return
	}
	m, y := w.opts.Policy.Step(nav, w.state.Month, w.state.Year)
	w.Render(h, m, y)
}

// Select writes the ISO date of day into the target and tears the widget
// down. Days outside the displayed month are ignored and the picker stays
// open. A missing or failing target is logged and otherwise ignored.
func (w *Widget) Select(h Host, day int) (string, bool) {
	if w.state == nil || !w.grid.Contains(day) {
		return "", false
	}
	st := w.state
	st.Selected = calendar.FormatISO(st.Year, st.Month, day)

	if st.Target == nil {
		w.opts.Logger.Debug("calendar: no target field; selection not written", "date", st.Selected)
	} else if err := st.Target.SetValue(st.Selected); err != nil {
		w.opts.Logger.Warn("calendar: writing target field failed", "date", st.Selected, "err", err)
	}

	selected := st.Selected
	w.Dismiss(h)
	return selected, true
}

// Dismiss removes the widget without writing a value.
func (w *Widget) Dismiss(h Host) {
	if w.state == nil {
		return
	}
	w.hostErr("dismiss", h.Remove(ContainerID))
	w.state = nil
	w.tree = nil
	w.grid = calendar.Grid{}
}

// Dispatch routes a click message to its transition. It reports whether the
// message changed anything.
func (w *Widget) Dispatch(h Host, msg Msg) bool {
	if w.state == nil {
		return false
	}
	switch m := msg.(type) {
	case NavMsg:
		w.Navigate(h, m.Nav)
		return true
	case SelectMsg:
		_, ok := w.Select(h, m.Day)
		return ok
	case BackdropMsg:
		w.Dismiss(h)
		return true
	}
	return false
}

func (w *Widget) patch(h Host, id string, n *Node) {
	if w.tree != nil {
		w.tree.replace(id, n)
	}
	w.hostErr("patch #"+id, h.Replace(id, n))
}

func (w *Widget) hostErr(op string, err error) {
	if err != nil {
		w.opts.Logger.Warn("calendar: host mutation failed", "op", op, "err", err)
	}
}
