// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package webui serves the search form as server-rendered HTML. Each
// browser gets its own session, identified by a cookie and kept in memory.
package webui

import (
	"context"
	"embed"
	"html/template"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-search/internal/httputil"
	"github.com/pdiddy/paper-search/internal/session"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":3000"

// CookieName is the session cookie.
const CookieName = "paper_search_session"

// SessionTTL is how long an idle session is kept before it is evicted.
var SessionTTL = time.Hour

// SweepInterval is how often Run evicts idle sessions.
var SweepInterval = time.Minute

// MaxSessions caps the number of live sessions. Creating one past the cap
// evicts the least recently seen.
var MaxSessions = 10000

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(
	template.New("").Funcs(template.FuncMap{"score": session.FormatScore}).ParseFS(templateFS, "templates/*.html"),
)

type renderer struct{}

func (renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	return templates.ExecuteTemplate(w, name, data)
}

// NewSessionFunc creates the state for a new browser session.
type NewSessionFunc func() *session.Session

type entry struct {
	s        *session.Session
	lastSeen time.Time
}

// Server is the web front end.
type Server struct {
	echo       *echo.Echo
	newSession NewSessionFunc
	log        zerolog.Logger

	// baseCtx parents background queries so they outlive the POST that
	// started them but stop when the server does.
	baseCtx context.Context

	mu       sync.Mutex
	sessions map[string]*entry
}

// New builds the front end. newSession is called once per browser.
func New(newSession NewSessionFunc, log zerolog.Logger) *Server {
	e := httputil.NewEcho(log)
	e.Renderer = renderer{}

	srv := &Server{
		echo:       e,
		newSession: newSession,
		log:        log,
		baseCtx:    context.Background(),
		sessions:   make(map[string]*entry),
	}

	e.GET("/", srv.index)
	e.POST("/", srv.submit)
	e.GET("/state", srv.state)
	return srv
}

// Handler returns the front end as an http.Handler.
func (s *Server) Handler() http.Handler { return s.echo }

// Run serves on addr until ctx is cancelled. Queries still in flight are
// cancelled with ctx.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	s.baseCtx = ctx
	go s.sweepLoop(ctx)
	return httputil.Serve(ctx, s.echo, addr, s.log)
}

func (s *Server) sweepLoop(ctx context.Context) {
	t := time.NewTicker(SweepInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.sweep(now)
		}
	}
}

// sweep evicts sessions idle for longer than SessionTTL.
func (s *Server) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.sessions)
	s.evictLocked(now)
	if n := before - len(s.sessions); n > 0 {
		s.log.Debug().Int("evicted", n).Int("sessions", len(s.sessions)).Msg("swept idle sessions")
	}
}

func (s *Server) index(c echo.Context) error {
	sess := s.session(c)
	return c.Render(http.StatusOK, "index.html", sess.State())
}

func (s *Server) submit(c echo.Context) error {
	sess := s.session(c)
	sess.SetPrompt(c.FormValue("prompt"))
	if r := sess.Begin(s.baseCtx); r != nil {
		go r.Run()
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) state(c echo.Context) error {
	return c.JSON(http.StatusOK, s.session(c).State())
}

// session returns the caller's session, creating it and setting the
// cookie when the request carries no known session id.
func (s *Server) session(c echo.Context) *session.Session {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if ck, err := c.Cookie(CookieName); err == nil {
		if e, ok := s.sessions[ck.Value]; ok {
			e.lastSeen = now
			return e.s
		}
	}

	s.evictLocked(now)
	for len(s.sessions) >= MaxSessions && len(s.sessions) > 0 {
		s.evictOldestLocked()
	}

	id := uuid.NewString()
	e := &entry{s: s.newSession(), lastSeen: now}
	s.sessions[id] = e
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.log.Debug().Str("session", id).Int("sessions", len(s.sessions)).Msg("new session")
	return e.s
}

func (s *Server) evictOldestLocked() {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, e := range s.sessions {
		if oldestID == "" || e.lastSeen.Before(oldest) {
			oldestID, oldest = id, e.lastSeen
		}
	}
	delete(s.sessions, oldestID)
}

func (s *Server) evictLocked(now time.Time) {
	for id, e := range s.sessions {
		if now.Sub(e.lastSeen) > SessionTTL {
			delete(s.sessions, id)
		}
	}
}
