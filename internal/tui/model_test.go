package tui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"datepick/internal/calendar"
	"datepick/internal/logging"
	"datepick/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	xansi "github.com/charmbracelet/x/ansi"
)

func fixedNow() time.Time { return time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC) }

func newTestModel(t *testing.T, withStore bool) (model, *store.Store) {
	t.Helper()
	var st *store.Store
	if withStore {
		var err error
		st, err = store.Open(context.Background(), filepath.Join(t.TempDir(), "fields.sqlite"))
		if err != nil {
			t.Fatalf("open store: %v", err)
		}
		t.Cleanup(func() { _ = st.Close() })
	}
	m, err := newModel(Options{
		Fields: []string{"start", "end"},
		Policy: calendar.WrapCarryYear,
		Store:  st,
		Logger: logging.Discard(),
		Now:    fixedNow,
	})
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	return m, st
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func press(m model, keys ...tea.KeyMsg) model {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(model)
	}
	return m
}

func typeText(m model, s string) model {
	for _, r := range s {
		m = press(m, runes(string(r)))
	}
	return m
}

func TestNewModel_RequiresValidFields(t *testing.T) {
	if _, err := newModel(Options{}); err == nil {
		t.Fatalf("expected error without fields")
	}
	if _, err := newModel(Options{Fields: []string{"due date"}}); err == nil {
		t.Fatalf("expected error for invalid field name")
	}
}

func TestPicker_OpenNavigateSelectWritesInputAndStore(t *testing.T) {
	m, st := newTestModel(t, true)

	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.picker.IsOpen() {
		t.Fatalf("expected picker to open on enter")
	}
	if m.cursor != 14 {
		t.Fatalf("expected cursor on today (14), got %d", m.cursor)
	}

	m = press(m, runes("]"), tea.KeyMsg{Type: tea.KeyRight})
	snap, _ := m.picker.Snapshot()
	if snap.Month != 3 || snap.Year != 2024 {
		t.Fatalf("expected April 2024, got month=%d year=%d", snap.Month, snap.Year)
	}
	if m.cursor != 15 {
		t.Fatalf("expected cursor 15, got %d", m.cursor)
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.picker.IsOpen() {
		t.Fatalf("expected picker to close after selection")
	}
	if got := m.inputs[0].Value(); got != "2024-04-15" {
		t.Fatalf("expected input 2024-04-15, got %q", got)
	}
	fv, err := st.Field(context.Background(), "start")
	if err != nil || fv.Value != "2024-04-15" {
		t.Fatalf("expected stored value, got %+v err=%v", fv, err)
	}
	if !strings.Contains(m.status, "start = 2024-04-15") {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestPicker_EscDismissesWithoutWriting(t *testing.T) {
	m, _ := newTestModel(t, false)
	m = press(m, tea.KeyMsg{Type: tea.KeyEnter}, tea.KeyMsg{Type: tea.KeyEsc})
	if m.picker.IsOpen() {
		t.Fatalf("expected esc to close the picker")
	}
	if m.inputs[0].Value() != "" {
		t.Fatalf("expected no write on dismiss")
	}
}

func TestPicker_CtrlOToggles(t *testing.T) {
	m, _ := newTestModel(t, false)
	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlO})
	if !m.picker.IsOpen() {
		t.Fatalf("expected ctrl+o to open")
	}
	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlO})
	if m.picker.IsOpen() {
		t.Fatalf("expected second ctrl+o to close")
	}
}

func TestPicker_OpensOnInputMonthAndClampsCursor(t *testing.T) {
	m, _ := newTestModel(t, false)
	m = typeText(m, "2024-01-31")
	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})

	snap, _ := m.picker.Snapshot()
	if snap.Month != 0 || snap.Year != 2024 || m.cursor != 31 {
		t.Fatalf("expected Jan 2024 with cursor 31, got month=%d year=%d cursor=%d", snap.Month, snap.Year, m.cursor)
	}
	m = press(m, runes("]"), tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.inputs[0].Value(); got != "2024-02-29" {
		t.Fatalf("expected cursor clamped to 2024-02-29, got %q", got)
	}
}

func TestPicker_YearKeysAndCursorBounds(t *testing.T) {
	m, _ := newTestModel(t, false)
	m = press(m, tea.KeyMsg{Type: tea.KeyEnter}, runes("{"), runes("k"), runes("k"), runes("k"))
	snap, _ := m.picker.Snapshot()
	if snap.Year != 2023 || snap.Month != 2 {
		t.Fatalf("expected March 2023, got month=%d year=%d", snap.Month, snap.Year)
	}
	if m.cursor != 1 {
		t.Fatalf("expected cursor clamped to 1, got %d", m.cursor)
	}
	m = press(m, runes("}"), runes("}"), runes("j"), runes("j"), runes("j"), runes("j"), runes("j"))
	snap, _ = m.picker.Snapshot()
	if snap.Year != 2025 || m.cursor != 31 {
		t.Fatalf("expected March 2025 with cursor 31, got year=%d cursor=%d", snap.Year, m.cursor)
	}
}

func TestForm_TypingFocusAndSave(t *testing.T) {
	m, st := newTestModel(t, true)

	m = typeText(m, "2024-05-01x")
	if got := m.inputs[0].Value(); got != "2024-05-01" {
		t.Fatalf("expected letters to be ignored, got %q", got)
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != 1 {
		t.Fatalf("expected focus on end, got %d", m.focus)
	}
	m = press(m, tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != 0 {
		t.Fatalf("expected focus to wrap to start, got %d", m.focus)
	}
	m = press(m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.focus != 1 {
		t.Fatalf("expected shift+tab to wrap to end, got %d", m.focus)
	}

	m = typeText(m, "2024-13")
	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if !m.statusErr {
		t.Fatalf("expected validation error for end, got status %q", m.status)
	}

	m.inputs[1].SetValue("")
	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if m.statusErr || m.status != "saved start" {
		t.Fatalf("unexpected status %q (err=%v)", m.status, m.statusErr)
	}
	fv, err := st.Field(context.Background(), "start")
	if err != nil || fv.Value != "2024-05-01" {
		t.Fatalf("expected saved start, got %+v err=%v", fv, err)
	}
}

func TestForm_LoadsStoredValues(t *testing.T) {
	_, st := newTestModel(t, true)
	if err := st.SetField(context.Background(), "end", "2030-01-02"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	m, err := newModel(Options{Fields: []string{"start", "end"}, Store: st, Logger: logging.Discard(), Now: fixedNow})
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	if got := m.inputs[1].Value(); got != "2030-01-02" {
		t.Fatalf("expected stored value in input, got %q", got)
	}
}

func TestSave_WithoutStoreReportsError(t *testing.T) {
	m, _ := newTestModel(t, false)
	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if !m.statusErr {
		t.Fatalf("expected error status without a store")
	}
}

func TestView_DrawsPickerFromDocument(t *testing.T) {
	m, _ := newTestModel(t, false)
	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})

	out := xansi.Strip(m.View())
	for _, want := range []string{"March", "2024", " S  M  T  W  T  F  S", "31", "start"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected view to contain %q:\n%s", want, out)
		}
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyEsc})
	if out := xansi.Strip(m.View()); strings.Contains(out, "March") {
		t.Fatalf("expected picker to disappear after dismiss:\n%s", out)
	}
}

func TestHelp_ToggleAndQuit(t *testing.T) {
	m, _ := newTestModel(t, false)
	m = press(m, runes("?"))
	if !m.showHelp {
		t.Fatalf("expected help overlay")
	}
	if out := xansi.Strip(m.View()); !strings.Contains(out, "Terminal keys") {
		t.Fatalf("expected keys topic in help view:\n%s", out)
	}
	m = press(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.showHelp {
		t.Fatalf("expected esc to close help")
	}

	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}
