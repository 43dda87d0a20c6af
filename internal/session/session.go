// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session holds the state behind the search form: the prompt being
// edited, the last results, whether a query is in flight and the error to
// show. A Session issues one query per submission; a newer submission
// supersedes and cancels any older one still in flight, and the older
// one's outcome is discarded.
package session

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-search/pkg/types"
)

// ErrorMessage is the only failure text shown to the user.
const ErrorMessage = "Something went wrong. Please try again."

// ErrSuperseded is returned by Run for a request whose outcome was
// discarded because a newer submission started.
var ErrSuperseded = errors.New("superseded by a newer submission")

// Querier sends a query to the search service.
type Querier interface {
	Query(ctx context.Context, prompt string, topK int) ([]types.ResultItem, error)
}

// State is a snapshot of the form. Error is empty when unset.
type State struct {
	Prompt  string             `json:"prompt"`
	Results []types.ResultItem `json:"results"`
	Loading bool               `json:"loading"`
	Error   string             `json:"error,omitempty"`
}

// SubmitLabel is the text of the submit control.
func (s State) SubmitLabel() string {
	if s.Loading {
		return "Searching…"
	}
	return "Search"
}

// Session owns one form's State.
type Session struct {
	querier Querier
	topK    int
	log     zerolog.Logger

	mu     sync.Mutex
	state  State
	seq    uint64
	cancel context.CancelFunc
}

// New returns an idle Session that queries through q with the given result
// limit (types.DefaultTopK when topK <= 0).
func New(q Querier, topK int, log zerolog.Logger) *Session {
	if topK <= 0 {
		topK = types.DefaultTopK
	}
	return &Session{
		querier: q,
		topK:    topK,
		log:     log,
		state:   State{Results: []types.ResultItem{}},
	}
}

// SetPrompt replaces the stored prompt verbatim.
func (s *Session) SetPrompt(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Prompt = text
}

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Results = slices.Clone(st.Results)
	return st
}

// Request is one submitted query, started by Begin and settled by Run.
type Request struct {
	s      *Session
	seq    uint64
	prompt string
	ctx    context.Context
	cancel context.CancelFunc
}

// Begin starts a submission: it marks the session loading, clears the
// error and cancels any older request still in flight. It returns nil,
// changing nothing, when the trimmed prompt is empty.
func (s *Session) Begin(ctx context.Context) *Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(s.state.Prompt) == "" {
		return nil
	}
	if s.cancel != nil {
		s.cancel()
	}

	s.seq++
	reqCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.state.Loading = true
	s.state.Error = ""

	return &Request{s: s, seq: s.seq, prompt: s.state.Prompt, ctx: reqCtx, cancel: cancel}
}

// Run sends the query and settles the session with its outcome. Loading is
// cleared as the last step of every settlement. If a newer request began
// meanwhile the outcome is dropped and ErrSuperseded is returned.
func (r *Request) Run() error {
	defer r.cancel()

	results, err := r.s.querier.Query(r.ctx, r.prompt, r.s.topK)
	return r.s.settle(r.seq, results, err)
}

func (s *Session) settle(seq uint64, results []types.ResultItem, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		s.log.Debug().Uint64("seq", seq).Uint64("latest", s.seq).Msg("discarding stale query outcome")
		return ErrSuperseded
	}
	s.cancel = nil

	if err != nil {
		s.log.Error().Err(err).Uint64("seq", seq).Msg("query failed")
		s.state.Error = ErrorMessage
	} else {
		if results == nil {
			results = []types.ResultItem{}
		}
		s.state.Results = results
	}
	s.state.Loading = false
	return err
}

// Submit begins a request and runs it to completion. An empty or
// whitespace-only prompt is a no-op returning nil.
func (s *Session) Submit(ctx context.Context) error {
	r := s.Begin(ctx)
	if r == nil {
		return nil
	}
	return r.Run()
}
