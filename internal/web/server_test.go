package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"datepick/internal/calendar"
	"datepick/internal/logging"
	"datepick/internal/store"
	"datepick/internal/widget"
)

func newTestServer(t *testing.T, policy calendar.WrapPolicy) (*Server, *store.Store) {
	t.Helper()
	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "fields.sqlite"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	srv, err := NewServer(ServerConfig{
		Addr:   "127.0.0.1:0",
		Fields: []string{"start", "End", "start"},
		Policy: policy,
		Store:  st,
		Logger: logging.Discard(),
		Now:    func() time.Time { return time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv, st
}

// client replays the session cookie the way a browser would.
type client struct {
	t      *testing.T
	h      http.Handler
	cookie *http.Cookie
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == sessionCookieName {
			c.cookie = ck
		}
	}
	return rec
}

func TestNewServer_ValidatesConfig(t *testing.T) {
	_, st := newTestServer(t, calendar.WrapCarryYear)
	cases := []ServerConfig{
		{Addr: "", Fields: []string{"start"}, Store: st},
		{Addr: ":0", Fields: []string{"start"}},
		{Addr: ":0", Fields: nil, Store: st},
		{Addr: ":0", Fields: []string{"bad name"}, Store: st},
	}
	for i, cfg := range cases {
		if _, err := NewServer(cfg); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}

func TestHome_RendersFieldsAndSetsSession(t *testing.T) {
	srv, st := newTestServer(t, calendar.WrapCarryYear)
	if err := st.SetField(context.Background(), "end", "2024-04-01"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	c := &client{t: t, h: srv.Handler()}
	rec := c.get("/")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if c.cookie == nil {
		t.Fatalf("expected a session cookie")
	}
	body := rec.Body.String()
	for _, want := range []string{`id="field-start"`, `id="field-end"`, `data-bind="field_end"`, `value="2024-04-01"`, `/calendar/open?field=start`} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected page to contain %q", want)
		}
	}
	if strings.Count(body, `class="field"`) != 2 {
		t.Fatalf("expected duplicate fields to be collapsed")
	}
}

func TestCalendarFlow_OpenNavigateSelect(t *testing.T) {
	srv, st := newTestServer(t, calendar.WrapCarryYear)
	c := &client{t: t, h: srv.Handler()}
	c.get("/")

	rec := c.get("/calendar/open?field=start")
	body := rec.Body.String()
	if !strings.Contains(body, "datastar-patch-elements") || !strings.Contains(body, `id="calendarMain"`) {
		t.Fatalf("expected picker markup patch, got:\n%s", body)
	}
	if !strings.Contains(body, "selector body") || !strings.Contains(body, "mode append") {
		t.Fatalf("expected append-to-body patch, got:\n%s", body)
	}
	if !strings.Contains(body, "/calendar/nav?op=prev-year") || !strings.Contains(body, "/calendar/select?day=31") {
		t.Fatalf("expected encoded click actions, got:\n%s", body)
	}
	if !strings.Contains(body, ">March<") || !strings.Contains(body, ">2024<") {
		t.Fatalf("expected March 2024 labels")
	}

	rec = c.get("/calendar/nav?op=next-month")
	body = rec.Body.String()
	if !strings.Contains(body, "selector #fillDate") || !strings.Contains(body, ">April<") {
		t.Fatalf("expected April grid patch, got:\n%s", body)
	}

	rec = c.get("/calendar/select?day=5")
	body = rec.Body.String()
	if !strings.Contains(body, "datastar-patch-signals") || !strings.Contains(body, `"field_start":"2024-04-05"`) {
		t.Fatalf("expected field signal patch, got:\n%s", body)
	}
	if !strings.Contains(body, "selector #calendarMain") || !strings.Contains(body, "mode remove") {
		t.Fatalf("expected picker removal, got:\n%s", body)
	}

	fv, err := st.Field(context.Background(), "start")
	if err != nil || fv.Value != "2024-04-05" {
		t.Fatalf("expected stored 2024-04-05, got %+v err=%v", fv, err)
	}
}

func TestCalendarOpen_TogglesAndDismiss(t *testing.T) {
	srv, st := newTestServer(t, calendar.WrapCarryYear)
	c := &client{t: t, h: srv.Handler()}
	c.get("/")

	c.get("/calendar/open?field=end")
	rec := c.get("/calendar/open?field=end")
	if !strings.Contains(rec.Body.String(), "mode remove") {
		t.Fatalf("expected second open to close the picker")
	}

	c.get("/calendar/open?field=end")
	rec = c.get("/calendar/dismiss")
	if !strings.Contains(rec.Body.String(), "selector #calendarMain") {
		t.Fatalf("expected dismiss to remove the picker")
	}
	if _, err := st.Field(context.Background(), "end"); err == nil {
		t.Fatalf("expected dismiss not to write the field")
	}

	for _, sess := range srv.sessions {
		if sess.picker.IsOpen() || sess.doc.Find(widget.ContainerID) != nil {
			t.Fatalf("expected closed picker and empty mirror")
		}
	}
}

func TestCalendarSelect_OutOfMonthKeepsPickerOpen(t *testing.T) {
	srv, st := newTestServer(t, calendar.WrapCarryYear)
	c := &client{t: t, h: srv.Handler()}
	c.get("/")
	c.get("/calendar/open?field=start")

	rec := c.get("/calendar/select?day=32")
	if rec.Code != http.StatusOK || strings.Contains(rec.Body.String(), "mode remove") {
		t.Fatalf("expected no-op stream, got %d:\n%s", rec.Code, rec.Body.String())
	}
	if _, err := st.Field(context.Background(), "start"); err == nil {
		t.Fatalf("expected nothing written")
	}
	open := 0
	for _, sess := range srv.sessions {
		if sess.picker.IsOpen() {
			open++
		}
	}
	if open != 1 {
		t.Fatalf("expected picker to stay open")
	}
}

func TestCalendar_BadRequests(t *testing.T) {
	srv, _ := newTestServer(t, calendar.WrapCarryYear)
	c := &client{t: t, h: srv.Handler()}

	cases := map[string]int{
		"/calendar/open?field=nope":      http.StatusNotFound,
		"/calendar/open?field=bad%20one": http.StatusBadRequest,
		"/calendar/nav?op=sideways":      http.StatusBadRequest,
		"/calendar/select?day=x":         http.StatusBadRequest,
		"/help?topic=nope":               http.StatusNotFound,
		"/nowhere":                       http.StatusNotFound,
	}
	for path, want := range cases {
		if got := c.get(path).Code; got != want {
			t.Errorf("%s: expected %d, got %d", path, want, got)
		}
	}
}

func TestHelpAndAssets(t *testing.T) {
	srv, _ := newTestServer(t, calendar.WrapCarryYear)
	c := &client{t: t, h: srv.Handler()}

	rec := c.get("/help")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<h1") {
		t.Fatalf("expected rendered help, got %d", rec.Code)
	}
	rec = c.get("/help?topic=keys")
	if !strings.Contains(rec.Body.String(), "<table>") {
		t.Fatalf("expected GFM table in keys topic")
	}
	if !strings.Contains(rec.Body.String(), "<title>datepick · Terminal keys</title>") {
		t.Fatalf("expected topic title in page head")
	}
	if rec := c.get("/health"); rec.Body.String() != "ok\n" {
		t.Fatalf("unexpected health body %q", rec.Body.String())
	}
	if rec := c.get("/static/app.css"); !strings.Contains(rec.Header().Get("Content-Type"), "text/css") {
		t.Fatalf("unexpected css content type")
	}
	if rec := c.get("/static/datastar.js"); rec.Code != http.StatusOK {
		t.Fatalf("expected datastar loader, got %d", rec.Code)
	}
}

func TestClickAction_EncodesMessages(t *testing.T) {
	cases := []struct {
		msg  widget.Msg
		want string
	}{
		{widget.NavMsg{Nav: calendar.NavNextYear}, "@get('/calendar/nav?op=next-year')"},
		{widget.SelectMsg{Day: 9}, "@get('/calendar/select?day=9')"},
		{widget.BackdropMsg{}, "evt.target === el && @get('/calendar/dismiss')"},
	}
	for _, tc := range cases {
		attrs := clickAction(&widget.Node{Action: tc.msg})
		if len(attrs) != 1 || attrs[0].Key != "data-on-click" || attrs[0].Val != tc.want {
			t.Fatalf("msg %#v: unexpected attrs %+v", tc.msg, attrs)
		}
	}
	if attrs := clickAction(&widget.Node{}); attrs != nil {
		t.Fatalf("expected no attrs without an action")
	}
	if got := signalName("due-date"); got != "field_due_date" {
		t.Fatalf("unexpected signal name %q", got)
	}
}
