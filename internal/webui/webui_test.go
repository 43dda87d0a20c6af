// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package webui

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-search/internal/session"
	"github.com/pdiddy/paper-search/pkg/types"
)

type stubQuerier struct {
	mu      sync.Mutex
	prompts []string
	results []types.ResultItem
	err     error
	gate    chan struct{}
}

func (q *stubQuerier) Query(ctx context.Context, prompt string, _ int) ([]types.ResultItem, error) {
	q.mu.Lock()
	q.prompts = append(q.prompts, prompt)
	gate := q.gate
	q.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return q.results, q.err
}

func (q *stubQuerier) calls() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.prompts...)
}

// browser keeps the session cookie between requests.
type browser struct {
	t      *testing.T
	srv    *Server
	cookie *http.Cookie
}

func newBrowser(t *testing.T, q session.Querier) *browser {
	srv := New(func() *session.Session { return session.New(q, 5, zerolog.Nop()) }, zerolog.Nop())
	return &browser{t: t, srv: srv}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	if b.cookie != nil {
		req.AddCookie(b.cookie)
	}
	rec := httptest.NewRecorder()
	b.srv.Handler().ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == CookieName {
			b.cookie = ck
		}
	}
	return rec
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) submit(prompt string) *httptest.ResponseRecorder {
	form := url.Values{"prompt": {prompt}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return b.do(req)
}

func (b *browser) state() session.State {
	rec := b.get("/state")
	require.Equal(b.t, http.StatusOK, rec.Code)
	var st session.State
	require.NoError(b.t, json.Unmarshal(rec.Body.Bytes(), &st))
	return st
}

func (b *browser) waitIdle() {
	b.srv.mu.Lock()
	e := b.srv.sessions[b.cookie.Value]
	b.srv.mu.Unlock()
	require.NotNil(b.t, e)
	require.Eventually(b.t, func() bool { return !e.s.State().Loading }, 2*time.Second, 5*time.Millisecond)
}

func TestIndexRendersEmptyForm(t *testing.T) {
	b := newBrowser(t, &stubQuerier{})
	rec := b.get("/")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<h2>Search Papers</h2>")
	assert.Contains(t, body, `<button type="submit">Search</button>`)
	assert.NotContains(t, body, "Results:")
	assert.NotContains(t, body, `class="error"`)
	assert.NotContains(t, body, "http-equiv")
	require.NotNil(t, b.cookie)
}

func TestSubmitRendersResults(t *testing.T) {
	q := &stubQuerier{results: []types.ResultItem{
		{Title: "GNN Survey", Abstract: "A survey...", URL: "http://x", Score: 0.9321},
	}}
	b := newBrowser(t, q)
	b.get("/")

	rec := b.submit("graph neural networks")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))

	b.waitIdle()
	assert.Equal(t, []string{"graph neural networks"}, q.calls())

	body := b.get("/").Body.String()
	assert.Contains(t, body, "Results:")
	assert.Contains(t, body, `<a href="http://x" target="_blank" rel="noopener noreferrer">GNN Survey</a>`)
	assert.Contains(t, body, "A survey...")
	assert.Contains(t, body, "Score: 0.9321")
	assert.Contains(t, body, ">graph neural networks</textarea>")
	assert.Equal(t, 1, strings.Count(body, "<li>"))
}

func TestLoadingDisablesButton(t *testing.T) {
	q := &stubQuerier{gate: make(chan struct{})}
	b := newBrowser(t, q)
	b.get("/")
	b.submit("q")

	body := b.get("/").Body.String()
	assert.Contains(t, body, `<button type="submit" disabled>Searching…</button>`)
	assert.Contains(t, body, `<meta http-equiv="refresh" content="1">`)

	close(q.gate)
	b.waitIdle()
	assert.Contains(t, b.get("/").Body.String(), `<button type="submit">Search</button>`)
}

func TestSubmitFailureShowsError(t *testing.T) {
	b := newBrowser(t, &stubQuerier{err: errors.New("API error: 500")})
	b.get("/")
	b.submit("q")
	b.waitIdle()

	body := b.get("/").Body.String()
	assert.Contains(t, body, `<div class="error">Something went wrong. Please try again.</div>`)
	assert.NotContains(t, body, "Results:")
}

func TestFailureKeepsPreviousResults(t *testing.T) {
	q := &stubQuerier{results: []types.ResultItem{{Title: "GNN Survey", URL: "http://x"}}}
	b := newBrowser(t, q)
	b.get("/")
	b.submit("graph neural networks")
	b.waitIdle()

	q.mu.Lock()
	q.results, q.err = nil, errors.New("API error: 500")
	q.mu.Unlock()
	b.submit("graph neural networks again")
	b.waitIdle()

	body := b.get("/").Body.String()
	assert.Contains(t, body, `<div class="error">Something went wrong. Please try again.</div>`)
	assert.Contains(t, body, "GNN Survey")

	st := b.state()
	assert.Equal(t, session.ErrorMessage, st.Error)
	require.Len(t, st.Results, 1)
}

func TestStateReportsEmptyResultsList(t *testing.T) {
	b := newBrowser(t, &stubQuerier{})
	b.get("/")

	rec := b.get("/state")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"results":[]`)

	b.submit("q")
	b.waitIdle()
	assert.Contains(t, b.get("/state").Body.String(), `"results":[]`)
}

func TestSubmitBlankPromptSendsNothing(t *testing.T) {
	q := &stubQuerier{}
	b := newBrowser(t, q)
	b.get("/")

	rec := b.submit("   ")
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	st := b.state()
	assert.False(t, st.Loading)
	assert.Empty(t, st.Error)
	assert.Empty(t, q.calls())
}

func TestSessionsAreIsolated(t *testing.T) {
	q := &stubQuerier{results: []types.ResultItem{{Title: "only mine"}}}
	alice := newBrowser(t, q)
	bob := &browser{t: t, srv: alice.srv}

	alice.get("/")
	bob.get("/")
	require.NotEqual(t, alice.cookie.Value, bob.cookie.Value)

	alice.submit("q")
	alice.waitIdle()

	assert.Contains(t, alice.get("/").Body.String(), "only mine")
	assert.NotContains(t, bob.get("/").Body.String(), "only mine")
}

func TestResultMarkupIsEscaped(t *testing.T) {
	q := &stubQuerier{results: []types.ResultItem{
		{Title: "<script>alert(1)</script>", URL: "javascript:alert(1)"},
	}}
	b := newBrowser(t, q)
	b.get("/")
	b.submit("q")
	b.waitIdle()

	body := b.get("/").Body.String()
	assert.NotContains(t, body, "<script>alert(1)</script>")
	assert.Contains(t, body, "&lt;script&gt;")
	assert.NotContains(t, body, `href="javascript:`)
}

func TestIdleSessionsAreEvicted(t *testing.T) {
	old := SessionTTL
	SessionTTL = 0
	defer func() { SessionTTL = old }()

	b := newBrowser(t, &stubQuerier{})
	b.get("/")
	first := b.cookie.Value

	time.Sleep(time.Millisecond)
	other := &browser{t: t, srv: b.srv}
	other.get("/")

	b.srv.mu.Lock()
	_, ok := b.srv.sessions[first]
	b.srv.mu.Unlock()
	assert.False(t, ok)
}

func TestSweepEvictsIdleSessions(t *testing.T) {
	b := newBrowser(t, &stubQuerier{})
	b.get("/")
	id := b.cookie.Value

	b.srv.sweep(time.Now())
	b.srv.mu.Lock()
	_, ok := b.srv.sessions[id]
	b.srv.mu.Unlock()
	require.True(t, ok)

	b.srv.sweep(time.Now().Add(SessionTTL + time.Minute))
	b.srv.mu.Lock()
	_, ok = b.srv.sessions[id]
	b.srv.mu.Unlock()
	assert.False(t, ok)
}

func TestSessionCapEvictsLeastRecentlySeen(t *testing.T) {
	old := MaxSessions
	MaxSessions = 2
	defer func() { MaxSessions = old }()

	srv := newBrowser(t, &stubQuerier{}).srv
	var ids []string
	for i := 0; i < 3; i++ {
		b := &browser{t: t, srv: srv}
		b.get("/")
		ids = append(ids, b.cookie.Value)
		time.Sleep(time.Millisecond)
	}

	srv.mu.Lock()
	defer srv.mu.Unlock()
	assert.Len(t, srv.sessions, 2)
	assert.NotContains(t, srv.sessions, ids[0])
	assert.Contains(t, srv.sessions, ids[2])
}
