// Package session runs one live search session: a single goroutine owns the suggestion state
// and the result view and serializes browser events, debounce fires and fetch completions.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/scribe/internal/dispatch"
	"github.com/hyperjump/scribe/internal/models"
	"github.com/hyperjump/scribe/internal/results"
	"github.com/hyperjump/scribe/internal/suggest"
)

// ErrClosed is returned by Post after the session has stopped.
var ErrClosed = errors.New("session closed")

// Remote is the search endpoint as seen by a session.
type Remote interface {
	results.Searcher
	Suggest(ctx context.Context, query string, limit int) ([]*models.SearchResultItem, error)
}

// Sink receives frames. Send is only called from the session goroutine.
type Sink interface {
	Send(f Frame) error
}

// event is anything the session goroutine reacts to.
type event interface{}

type settled struct{ q dispatch.Query }

type suggestDone struct {
	token dispatch.Token
	items []*models.SearchResultItem
	err   error
}

type searchDone struct {
	token dispatch.Token
	entry *results.Entry
	err   error
}

// Session is one live search session.
type Session struct {
	id         string
	remote     Remote
	sink       Sink
	cache      *results.Cache
	limit      int
	user       *models.Identity
	logger     *zap.Logger
	dispatchOp []dispatch.Option

	events     chan event
	done       chan struct{}
	dispatcher *dispatch.Dispatcher
	state      suggest.Session
	view       *results.View
}

// Option configures a Session.
type Option func(*Session)

// WithCache shares a result cache between sessions.
func WithCache(c *results.Cache) Option {
	return func(s *Session) { s.cache = c }
}

// WithLimit sets the suggestion cap. Values above suggest.MaxCandidates are clamped.
func WithLimit(n int) Option {
	return func(s *Session) {
		if n > 0 && n <= suggest.MaxCandidates {
			s.limit = n
		}
	}
}

// WithIdentity sets the user the result cards' author links are rendered for.
func WithIdentity(id *models.Identity) Option {
	return func(s *Session) { s.user = id }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDispatchOptions passes options to the session's dispatcher.
func WithDispatchOptions(opts ...dispatch.Option) Option {
	return func(s *Session) { s.dispatchOp = append(s.dispatchOp, opts...) }
}

// New creates a session. Call Run to start it.
func New(remote Remote, sink Sink, opts ...Option) *Session {
	s := &Session{
		id:     uuid.NewString(),
		remote: remote,
		sink:   sink,
		limit:  suggest.MaxCandidates,
		logger: zap.NewNop(),
		events: make(chan event, 64),
		done:   make(chan struct{}),
		state:  suggest.NewSession(),
		view:   results.NewView(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("session", s.id))
	dopts := append([]dispatch.Option{dispatch.WithLogger(s.logger)}, s.dispatchOp...)
	s.dispatcher = dispatch.New(func(q dispatch.Query) { s.enqueue(settled{q}) }, dopts...)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Post delivers a browser message to the session.
func (s *Session) Post(ctx context.Context, msg ClientMessage) error {
	select {
	case s.events <- msg:
		return nil
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) enqueue(ev event) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

// Run processes events until ctx is cancelled or the sink fails.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.done)
	defer s.dispatcher.Stop()

	s.logger.Debug("Session started")
	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Session stopped")
			return nil
		case ev := <-s.events:
			if err := s.handle(ctx, ev); err != nil {
				return fmt.Errorf("session %s: %w", s.id, err)
			}
		}
	}
}

func (s *Session) handle(ctx context.Context, ev event) error {
	switch ev := ev.(type) {
	case ClientMessage:
		return s.handleMessage(ctx, ev)
	case settled:
		return s.handleSettled(ctx, ev.q)
	case suggestDone:
		if ev.err != nil {
			s.logger.Warn("Suggestion fetch failed", zap.Error(ev.err))
			return s.reduce(ctx, suggest.Failed{Token: ev.token, Err: ev.err})
		}
		if !s.dispatcher.Accept(ev.token) {
			s.logger.Debug("Dropped stale suggestions", zap.Uint64("token", uint64(ev.token)))
			return nil
		}
		return s.reduce(ctx, suggest.Received{Token: ev.token, Items: ev.items})
	case searchDone:
		return s.handleSearchDone(ev)
	}
	return nil
}

func (s *Session) handleMessage(ctx context.Context, m ClientMessage) error {
	switch m.Type {
	case MsgInput:
		return s.reduce(ctx, suggest.Input{Text: m.Text})
	case MsgKey:
		return s.reduce(ctx, suggest.Key{Code: suggest.KeyCode(m.Key)})
	case MsgClick:
		return s.reduce(ctx, suggest.ClickCandidate{Index: m.Index})
	case MsgBlur:
		return s.reduce(ctx, suggest.ClickOutside{})
	case MsgSearch:
		return s.beginSearch(ctx, m.Text, m.Criteria)
	case MsgRetry:
		if s.view.Query() == "" {
			return nil
		}
		current := s.view.Criteria()
		return s.beginSearch(ctx, s.view.Query(), &current)
	case MsgFilter:
		if err := s.view.SetFilter(models.FilterKind(m.Kind), m.Value); err != nil {
			s.logger.Debug("Rejected filter", zap.String("kind", m.Kind), zap.Error(err))
			return s.sink.Send(Frame{Type: FrameError, Error: &ErrorFrame{Message: err.Error()}})
		}
		return s.sendResults()
	case MsgClearFilters:
		s.view.ClearFilters()
		return s.sendResults()
	default:
		s.logger.Debug("Ignored message", zap.String("type", m.Type))
	}
	return nil
}

// reduce applies a to the suggestion state, performs the effects and renders the dropdown.
func (s *Session) reduce(ctx context.Context, a suggest.Action) error {
	next, effects := suggest.Reduce(s.state, a)
	s.state = next
	for _, e := range effects {
		switch e := e.(type) {
		case suggest.Dispatch:
			s.dispatcher.Submit(e.Text)
		case suggest.CancelPending:
			s.dispatcher.Cancel()
		case suggest.Navigate:
			target := e.Target
			if err := s.sink.Send(Frame{Type: FrameNavigate, Navigate: &target}); err != nil {
				return err
			}
		}
	}
	return s.sink.Send(Frame{Type: FrameSuggestions, Suggestions: renderSuggestions(s.state)})
}

func (s *Session) handleSettled(ctx context.Context, q dispatch.Query) error {
	if !s.dispatcher.Accept(q.Token) {
		s.logger.Debug("Skipped stale query", zap.String("query", q.Text), zap.Uint64("token", uint64(q.Token)))
		return nil
	}
	next, _ := suggest.Reduce(s.state, suggest.Issued{Query: q.Text, Token: q.Token})
	s.state = next
	if s.state.Awaiting != q.Token {
		return nil
	}
	limit := s.limit
	go func() {
		items, err := s.remote.Suggest(ctx, q.Text, limit)
		s.enqueue(suggestDone{token: q.Token, items: items, err: err})
	}()
	return nil
}

// beginSearch starts a full search for query. Non-nil crit replaces the default criteria
// that a new search starts with.
func (s *Session) beginSearch(ctx context.Context, query string, crit *models.FilterCriteria) error {
	if query == "" {
		return nil
	}
	token := s.view.Begin(query)
	if crit != nil {
		if err := s.view.SetCriteria(*crit); err != nil {
			s.logger.Debug("Rejected criteria", zap.Any("criteria", crit), zap.Error(err))
			if err := s.sink.Send(Frame{Type: FrameError, Error: &ErrorFrame{Message: err.Error()}}); err != nil {
				return err
			}
		}
	}
	if err := s.sendResults(); err != nil {
		return err
	}
	go func() {
		entry, err := results.Load(ctx, s.cache, s.remote, query)
		s.enqueue(searchDone{token: token, entry: entry, err: err})
	}()
	return nil
}

func (s *Session) handleSearchDone(ev searchDone) error {
	if ev.err != nil {
		if !s.view.Fail(ev.token, ev.err) {
			return nil
		}
		s.logger.Warn("Search failed", zap.String("query", s.view.Query()), zap.Error(ev.err))
		if err := s.sink.Send(Frame{Type: FrameError, Error: &ErrorFrame{
			Message:   "Failed to fetch search results. Please try again.",
			Retryable: true,
			Home:      "/",
		}}); err != nil {
			return err
		}
		return s.sendResults()
	}
	if !s.view.Resolve(ev.token, ev.entry) {
		s.logger.Debug("Dropped stale results", zap.Uint64("token", uint64(ev.token)))
		return nil
	}
	return s.sendResults()
}

func (s *Session) sendResults() error {
	return s.sink.Send(Frame{Type: FrameResults, Results: renderResults(s.view.Snapshot(), s.user)})
}
