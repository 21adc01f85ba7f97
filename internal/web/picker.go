package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"datepick/internal/calendar"
	"datepick/internal/widget"

	"github.com/starfederation/datastar-go/datastar"
)

// sseHost applies picker mutations to the session mirror and streams the
// matching element patches to the browser.
type sseHost struct {
	doc *widget.Document
	sse *datastar.ServerSentEventGenerator
}

func (h *sseHost) Append(n *widget.Node) error {
	if err := h.doc.Append(n); err != nil {
		return err
	}
	html, err := widget.HTML(n, clickAction)
	if err != nil {
		return err
	}
	return h.sse.PatchElements(html,
		datastar.WithSelector("body"),
		datastar.WithMode(datastar.ElementPatchModeAppend),
	)
}

func (h *sseHost) Replace(id string, n *widget.Node) error {
	if err := h.doc.Replace(id, n); err != nil {
		return err
	}
	html, err := widget.HTML(n, clickAction)
	if err != nil {
		return err
	}
	return h.sse.PatchElements(html,
		datastar.WithSelector("#"+id),
		datastar.WithMode(datastar.ElementPatchModeOuter),
	)
}

func (h *sseHost) Remove(id string) error {
	if err := h.doc.Remove(id); err != nil {
		return err
	}
	return h.sse.PatchElements("",
		datastar.WithSelector("#"+id),
		datastar.WithMode(datastar.ElementPatchModeRemove),
	)
}

// clickAction encodes a node's action as a Datastar click handler. The
// backdrop only reacts to clicks that land on itself.
func clickAction(n *widget.Node) []widget.Attr {
	var expr string
	switch m := n.Action.(type) {
	case widget.NavMsg:
		expr = fmt.Sprintf("@get('/calendar/nav?op=%s')", m.Nav)
	case widget.SelectMsg:
		expr = fmt.Sprintf("@get('/calendar/select?day=%d')", m.Day)
	case widget.BackdropMsg:
		expr = "evt.target === el && @get('/calendar/dismiss')"
	default:
		return nil
	}
	return []widget.Attr{{Key: "data-on-click", Val: expr}}
}

// signalName maps a field name to its Datastar signal.
func signalName(field string) string {
	return "field_" + strings.ReplaceAll(field, "-", "_")
}

func signalsJSON(values map[string]string) string {
	sig := make(map[string]string, len(values))
	for f, v := range values {
		sig[signalName(f)] = v
	}
	b, err := json.Marshal(sig)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func (s *Server) handleCalendarOpen(w http.ResponseWriter, r *http.Request) {
	field, ok := s.knownField(w, r.URL.Query().Get("field"))
	if !ok {
		return
	}
	sess := s.sessionFor(w, r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sse := datastar.NewSSE(w, r)
	h := &sseHost{doc: sess.doc, sse: sse}
	if sess.picker.Open(h, s.cfg.Store.Target(field)) {
		sess.field = field
		s.log.Debug("picker opened", "field", field)
	} else {
		s.log.Debug("picker closed", "field", sess.field)
		sess.field = ""
	}
}

func (s *Server) handleCalendarNav(w http.ResponseWriter, r *http.Request) {
	nav, err := calendar.ParseNav(r.URL.Query().Get("op"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sess := s.sessionFor(w, r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sse := datastar.NewSSE(w, r)
	if !sess.picker.Dispatch(&sseHost{doc: sess.doc, sse: sse}, widget.NavMsg{Nav: nav}) {
		s.log.Debug("nav ignored; picker closed", "op", nav.String())
	}
}

func (s *Server) handleCalendarSelect(w http.ResponseWriter, r *http.Request) {
	day, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("day")))
	if err != nil {
		http.Error(w, "invalid day", http.StatusBadRequest)
		return
	}
	sess := s.sessionFor(w, r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sse := datastar.NewSSE(w, r)
	field := sess.field
	value, ok := sess.picker.Select(&sseHost{doc: sess.doc, sse: sse}, day)
	if !ok {
		s.log.Debug("select ignored", "day", day, "open", sess.picker.IsOpen())
		return
	}
	sess.field = ""
	s.log.Info("date selected", "field", field, "value", value)
	if err := sse.MarshalAndPatchSignals(map[string]any{signalName(field): value}); err != nil {
		s.log.Warn("patching field signal failed", "field", field, "err", err)
	}
}

func (s *Server) handleCalendarDismiss(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sse := datastar.NewSSE(w, r)
	if sess.picker.Dispatch(&sseHost{doc: sess.doc, sse: sse}, widget.BackdropMsg{}) {
		sess.field = ""
	}
}
