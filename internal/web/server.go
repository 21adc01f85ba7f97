package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"datepick/internal/calendar"
	"datepick/internal/docs"
	"datepick/internal/logging"
	"datepick/internal/store"
	"datepick/internal/widget"
)

//go:embed templates/*.html static/*.js static/*.css
var assetsFS embed.FS

const (
	sessionCookieName = "datepick_session"
	sessionTTL        = 30 * 24 * time.Hour
	sessionIdle       = 12 * time.Hour
)

type ServerConfig struct {
	Addr   string
	Fields []string
	Policy calendar.WrapPolicy
	Store  *store.Store
	Logger *slog.Logger

	// Now is the picker clock; nil means time.Now.
	Now func() time.Time
}

type Server struct {
	cfg    ServerConfig
	tmpl   *template.Template
	log    *slog.Logger
	secret []byte

	mu       sync.Mutex
	sessions map[string]*session
}

// session owns one browser tab's picker. doc mirrors the picker markup the
// browser currently shows, so host errors match what the page would report.
type session struct {
	mu     sync.Mutex
	doc    *widget.Document
	picker *widget.Widget
	field  string
	seen   time.Time
}

func NewServer(cfg ServerConfig) (*Server, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	if cfg.Addr == "" {
		return nil, errors.New("web: addr is empty")
	}
	if cfg.Store == nil {
		return nil, errors.New("web: store is nil")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.WithComponent("web")
	}
	fields := make([]string, 0, len(cfg.Fields))
	seen := map[string]bool{}
	for _, f := range cfg.Fields {
		name, err := store.ValidFieldName(f)
		if err != nil {
			return nil, fmt.Errorf("web: field %q: %w", f, err)
		}
		if !seen[name] {
			seen[name] = true
			fields = append(fields, name)
		}
	}
	if len(fields) == 0 {
		return nil, errors.New("web: no fields configured")
	}
	cfg.Fields = fields

	tmpl, err := template.New("base").Funcs(template.FuncMap{
		"trim": strings.TrimSpace,
	}).ParseFS(assetsFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	secret, err := newSecretKey()
	if err != nil {
		return nil, err
	}
	return &Server{
		cfg:      cfg,
		tmpl:     tmpl,
		log:      cfg.Logger.With("component", "web"),
		secret:   secret,
		sessions: map[string]*session{},
	}, nil
}

func (s *Server) Addr() string { return s.cfg.Addr }

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /static/app.css", s.handleAppCSS)
	mux.HandleFunc("GET /static/datastar.js", s.handleDatastarJS)
	mux.HandleFunc("GET /help", s.handleHelp)
	mux.HandleFunc("GET /calendar/open", s.handleCalendarOpen)
	mux.HandleFunc("GET /calendar/nav", s.handleCalendarNav)
	mux.HandleFunc("GET /calendar/select", s.handleCalendarSelect)
	mux.HandleFunc("GET /calendar/dismiss", s.handleCalendarDismiss)
	mux.HandleFunc("GET /{$}", s.handleHome)
	return s.logRequests(mux)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE responses streaming through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		lvl := slog.LevelDebug
		if rec.status >= 500 {
			lvl = slog.LevelError
		} else if rec.status >= 400 {
			lvl = slog.LevelWarn
		}
		s.log.Log(r.Context(), lvl, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"dur", time.Since(start).Round(time.Microsecond),
		)
	})
}

// sessionFor returns the caller's session, minting a cookie when the request
// carries none (or an invalid one). It must run before any body is written.
func (s *Server) sessionFor(w http.ResponseWriter, r *http.Request) *session {
	id := ""
	if c, err := r.Cookie(sessionCookieName); err == nil {
		if sp, err := verifyToken(s.secret, c.Value); err == nil && sp.Typ == "session" {
			id = sp.Sub
		}
	}
	if id == "" {
		tok, newID, err := newSessionToken(s.secret, sessionTTL)
		if err == nil {
			id = newID
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookieName,
				Value:    tok,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		} else {
			s.log.Error("minting session failed", "err", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	sess := s.sessions[id]
	if sess == nil {
		s.pruneLocked(now)
		sess = s.newSession()
		if id != "" {
			s.sessions[id] = sess
		}
	}
	sess.seen = now
	return sess
}

func (s *Server) newSession() *session {
	return &session{
		doc: widget.NewDocument(),
		picker: widget.New(widget.Options{
			Policy: s.cfg.Policy,
			Now:    s.cfg.Now,
			Logger: s.log,
		}),
	}
}

func (s *Server) pruneLocked(now time.Time) {
	for id, sess := range s.sessions {
		if now.Sub(sess.seen) > sessionIdle {
			delete(s.sessions, id)
		}
	}
}

// knownField resolves the field query parameter. It writes the error
// response itself and reports false on failure.
func (s *Server) knownField(w http.ResponseWriter, raw string) (string, bool) {
	name, err := store.ValidFieldName(raw)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return "", false
	}
	for _, f := range s.cfg.Fields {
		if f == name {
			return name, true
		}
	}
	http.Error(w, "unknown field: "+name, http.StatusNotFound)
	return "", false
}

func (s *Server) renderTemplate(name string, data any) (string, error) {
	var b strings.Builder
	if err := s.tmpl.ExecuteTemplate(&b, name, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (s *Server) writeHTMLTemplate(w http.ResponseWriter, name string, data any) {
	html, err := s.renderTemplate(name, data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, html)
}

type fieldVM struct {
	Name   string
	Signal string
	Value  string
}

type pageVM struct {
	Fields  []fieldVM
	Signals string
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)

	// A page load starts from a fresh DOM.
	sess.mu.Lock()
	sess.doc = widget.NewDocument()
	sess.picker = s.newSession().picker
	sess.field = ""
	sess.mu.Unlock()

	values, err := s.fieldValues(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	vm := pageVM{Signals: signalsJSON(values)}
	for _, f := range s.cfg.Fields {
		vm.Fields = append(vm.Fields, fieldVM{Name: f, Signal: signalName(f), Value: values[f]})
	}
	s.writeHTMLTemplate(w, "page.html", vm)
}

func (s *Server) fieldValues(r *http.Request) (map[string]string, error) {
	all, err := s.cfg.Store.Fields(r.Context())
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(s.cfg.Fields))
	for _, f := range s.cfg.Fields {
		out[f] = ""
	}
	for _, fv := range all {
		if _, ok := out[fv.Name]; ok {
			out[fv.Name] = fv.Value
		}
	}
	return out, nil
}

type helpVM struct {
	Topic  string
	Title  string
	Topics []docs.Entry
	Body   template.HTML
}

func (s *Server) handleHelp(w http.ResponseWriter, r *http.Request) {
	topic := strings.TrimSpace(r.URL.Query().Get("topic"))
	if topic == "" {
		topic = "web"
	}
	src, ok := docs.Get(topic)
	if !ok {
		http.Error(w, "unknown topic: "+topic, http.StatusNotFound)
		return
	}
	s.writeHTMLTemplate(w, "help.html", helpVM{
		Topic:  docs.Normalize(topic),
		Title:  docs.Title(topic),
		Topics: docs.Entries(),
		Body:   renderMarkdownHTML(src),
	})
}

func (s *Server) handleDatastarJS(w http.ResponseWriter, r *http.Request) {
	s.serveAsset(w, r, "static/datastar.js", "application/javascript; charset=utf-8")
}

func (s *Server) handleAppCSS(w http.ResponseWriter, r *http.Request) {
	s.serveAsset(w, r, "static/app.css", "text/css; charset=utf-8")
}

func (s *Server) serveAsset(w http.ResponseWriter, r *http.Request, path, contentType string) {
	b, err := assetsFS.ReadFile(path)
	if err != nil || len(b) == 0 {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}
