package widget

import (
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"testing"
	"time"

	"datepick/internal/calendar"
)

type memField struct {
	value  string
	writes int
	err    error
}

func (f *memField) SetValue(v string) error {
	if f.err != nil {
		return f.err
	}
	f.value = v
	f.writes++
	return nil
}

func (f *memField) Value() string { return f.value }

func newTestWidget(policy calendar.WrapPolicy) *Widget {
	return New(Options{
		Policy: policy,
		Now:    func() time.Time { return time.Date(2024, time.March, 14, 9, 0, 0, 0, time.UTC) },
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func dateCells(d *Document) []*Node {
	return d.FindByClass("date")
}

func findDay(t *testing.T, d *Document, day string) *Node {
	t.Helper()
	for _, n := range dateCells(d) {
		if v, _ := n.Attr("value"); v == day {
			return n
		}
	}
	t.Fatalf("expected a date cell with value=%s", day)
	return nil
}

func TestOpen_MountsOneContainerForCurrentMonth(t *testing.T) {
	doc := NewDocument()
	w := newTestWidget(calendar.WrapCarryYear)

	if !w.Open(doc, &memField{}) {
		t.Fatalf("expected Open to mount the widget")
	}
	if got := doc.Body.Count(func(n *Node) bool { return n.ID == ContainerID }); got != 1 {
		t.Fatalf("expected 1 container, got %d", got)
	}
	if got := doc.Find(MonthLabelID).Text; got != "March" {
		t.Fatalf("expected month label March, got %q", got)
	}
	if got := doc.Find(YearLabelID).Text; got != "2024" {
		t.Fatalf("expected year label 2024, got %q", got)
	}
	if got := len(dateCells(doc)); got != 31 {
		t.Fatalf("expected 31 day cells, got %d", got)
	}
	if got := len(doc.FindByClass("wDay")); got != 7 {
		t.Fatalf("expected 7 weekday headers, got %d", got)
	}
}

func TestOpen_UsesTargetValueMonth(t *testing.T) {
	doc := NewDocument()
	w := newTestWidget(calendar.WrapCarryYear)
	w.Open(doc, &memField{value: "2023-02-10"})

	st, ok := w.Snapshot()
	if !ok || st.Month != 1 || st.Year != 2023 {
		t.Fatalf("expected february 2023, got %+v ok=%v", st, ok)
	}
	if got := len(dateCells(doc)); got != 28 {
		t.Fatalf("expected 28 day cells, got %d", got)
	}
}

func TestOpen_WhileOpenClosesWithoutNewInstance(t *testing.T) {
	doc := NewDocument()
	w := newTestWidget(calendar.WrapCarryYear)
	f := &memField{}

	w.Open(doc, f)
	if w.Open(doc, f) {
		t.Fatalf("expected second Open to close instead of mounting")
	}
	if doc.Find(ContainerID) != nil {
		t.Fatalf("expected container to be removed")
	}
	if w.IsOpen() || w.Tree() != nil {
		t.Fatalf("expected widget state to be dropped")
	}
	if f.writes != 0 {
		t.Fatalf("expected no writes, got %d", f.writes)
	}
}

func TestOpen_TakesOverStaleContainer(t *testing.T) {
	doc := NewDocument()
	_ = doc.Append(&Node{Tag: "div", ID: ContainerID})

	w := newTestWidget(calendar.WrapCarryYear)
	w.Open(doc, nil)
	if got := doc.Body.Count(func(n *Node) bool { return n.ID == ContainerID }); got != 1 {
		t.Fatalf("expected 1 container, got %d", got)
	}
	if len(dateCells(doc)) != 31 {
		t.Fatalf("expected the stale container to be replaced by a populated picker")
	}
}

func TestSelect_WritesISODateAndTearsDown(t *testing.T) {
	doc := NewDocument()
	w := newTestWidget(calendar.WrapCarryYear)
	f := &memField{}
	w.Open(doc, f)

	msg := doc.Click(findDay(t, doc, "5"))
	if !w.Dispatch(doc, msg) {
		t.Fatalf("expected day click to be handled")
	}
	if f.value != "2024-03-05" {
		t.Fatalf("expected 2024-03-05, got %q", f.value)
	}
	if doc.Find(ContainerID) != nil || w.IsOpen() {
		t.Fatalf("expected widget to be removed after selection")
	}
}

func TestSelect_OutOfMonthDayIsIgnored(t *testing.T) {
	doc := NewDocument()
	w := newTestWidget(calendar.WrapCarryYear)
	f := &memField{}
	w.Open(doc, f)

	if _, ok := w.Select(doc, 32); ok {
		t.Fatalf("expected day 32 to be rejected")
	}
	if !w.IsOpen() || f.writes != 0 {
		t.Fatalf("expected picker to stay open with no writes")
	}
}

func TestSelect_MissingOrFailingTargetIsNoOp(t *testing.T) {
	doc := NewDocument()
	w := newTestWidget(calendar.WrapCarryYear)
	w.Open(doc, nil)
	v, ok := w.Select(doc, 1)
	if !ok || v != "2024-03-01" {
		t.Fatalf("expected selection to complete, got %q ok=%v", v, ok)
	}

	w.Open(doc, &memField{err: errors.New("stale field")})
	if _, ok := w.Select(doc, 2); !ok {
		t.Fatalf("expected selection to complete despite failing field")
	}
	if doc.Find(ContainerID) != nil {
		t.Fatalf("expected widget to be removed")
	}
}

func TestBackdropClick_RemovesWithoutWriting(t *testing.T) {
	doc := NewDocument()
	w := newTestWidget(calendar.WrapCarryYear)
	f := &memField{value: "2024-03-20"}
	w.Open(doc, f)

	msg := doc.Click(doc.Find(ContainerID))
	if _, ok := msg.(BackdropMsg); !ok {
		t.Fatalf("expected BackdropMsg, got %#v", msg)
	}
	w.Dispatch(doc, msg)
	if doc.Find(ContainerID) != nil {
		t.Fatalf("expected widget to be removed")
	}
	if f.value != "2024-03-20" || f.writes != 0 {
		t.Fatalf("expected field untouched, got %q (writes=%d)", f.value, f.writes)
	}
}

func TestClickInsidePanel_DoesNotReachBackdrop(t *testing.T) {
	doc := NewDocument()
	w := newTestWidget(calendar.WrapCarryYear)
	w.Open(doc, nil)

	if msg := doc.Click(doc.Find(YearLabelID)); msg != nil {
		t.Fatalf("expected inert click inside panel, got %#v", msg)
	}
	blank := doc.FindByClass("w1")[0].Children[0]
	if msg := doc.Click(blank); msg != nil {
		t.Fatalf("expected blank cell to be inert, got %#v", msg)
	}
}

func TestNavigate_HeaderArrows(t *testing.T) {
	doc := NewDocument()
	w := newTestWidget(calendar.WrapKeepYear)
	w.Open(doc, nil)

	clickArrow := func(row, side string) {
		t.Helper()
		for _, n := range doc.FindByClass(row)[0].Children {
			if n.HasClass(side) {
				w.Dispatch(doc, doc.Click(n))
				return
			}
		}
		t.Fatalf("no %s arrow in %s", side, row)
	}

	clickArrow("yearDiv", "right")
	if got := doc.Find(YearLabelID).Text; got != "2025" {
		t.Fatalf("expected 2025 after next year, got %q", got)
	}
	clickArrow("monthDiv", "left")
	clickArrow("monthDiv", "left")
	clickArrow("monthDiv", "left")
	if got := doc.Find(MonthLabelID).Text; got != "December" {
		t.Fatalf("expected December after wrapping back, got %q", got)
	}
	if got := doc.Find(YearLabelID).Text; got != "2025" {
		t.Fatalf("expected year to stay 2025 under keep-year policy, got %q", got)
	}
}

func TestNavigate_NovemberDecemberJanuary(t *testing.T) {
	tests := []struct {
		policy   calendar.WrapPolicy
		wantYear int
	}{
		{calendar.WrapKeepYear, 2024},
		{calendar.WrapCarryYear, 2025},
	}
	for _, tt := range tests {
		doc := NewDocument()
		w := newTestWidget(tt.policy)
		w.Open(doc, &memField{value: "2024-11-01"})

		w.Navigate(doc, calendar.NavNextMonth)
		st, _ := w.Snapshot()
		if st.Month != 11 || st.Year != 2024 {
			t.Fatalf("%v: expected december 2024, got month=%d year=%d", tt.policy, st.Month, st.Year)
		}
		w.Navigate(doc, calendar.NavNextMonth)
		st, _ = w.Snapshot()
		if st.Month != 0 || st.Year != tt.wantYear {
			t.Fatalf("%v: expected january %d, got month=%d year=%d", tt.policy, tt.wantYear, st.Month, st.Year)
		}
	}
}

func TestRender_IsIdempotent(t *testing.T) {
	doc := NewDocument()
	w := newTestWidget(calendar.WrapCarryYear)
	w.Open(doc, nil)

	first, err := HTML(doc.Find(ContainerID), nil)
	if err != nil {
		t.Fatalf("render html: %v", err)
	}
	w.Render(doc, 2, 2024)
	w.Render(doc, 2, 2024)
	second, _ := HTML(doc.Find(ContainerID), nil)
	if first != second {
		t.Fatalf("expected identical markup after re-render")
	}
	if got := len(dateCells(doc)); got != 31 {
		t.Fatalf("expected 31 day cells after re-render, got %d", got)
	}
}

func TestClear_EmptiesWeekRows(t *testing.T) {
	doc := NewDocument()
	w := newTestWidget(calendar.WrapCarryYear)
	w.Open(doc, nil)
	w.Clear(doc)

	if got := len(dateCells(doc)); got != 0 {
		t.Fatalf("expected no day cells after clear, got %d", got)
	}
	for i := 1; i <= calendar.MinRows; i++ {
		rows := doc.FindByClass("w" + strconv.Itoa(i))
		if len(rows) != 1 || len(rows[0].Children) != 0 {
			t.Fatalf("expected empty row w%d", i)
		}
	}
}

func TestClosedWidget_IgnoresOperations(t *testing.T) {
	doc := NewDocument()
	w := newTestWidget(calendar.WrapCarryYear)

	w.Render(doc, 2, 2024)
	w.Clear(doc)
	w.Navigate(doc, calendar.NavNextMonth)
	w.Dismiss(doc)
	if w.Dispatch(doc, SelectMsg{Day: 1}) {
		t.Fatalf("expected closed widget to ignore messages")
	}
	if len(doc.Body.Children) != 0 {
		t.Fatalf("expected document untouched")
	}
}

func TestWidgetTree_MatchesMountedTree(t *testing.T) {
	doc := NewDocument()
	w := newTestWidget(calendar.WrapCarryYear)
	w.Open(doc, nil)
	w.Navigate(doc, calendar.NavNextMonth)

	a, _ := HTML(w.Tree(), nil)
	b, _ := HTML(doc.Find(ContainerID), nil)
	if a != b {
		t.Fatalf("expected widget tree to mirror the mounted tree")
	}
	if !strings.Contains(a, ">April<") {
		t.Fatalf("expected April in markup")
	}
}
