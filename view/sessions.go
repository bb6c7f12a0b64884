package view

import (
	"context"
	"html/template"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session is one browser's controller and the renderer it draws into
type Session struct {
	ID         string
	Controller *Controller
	Renderer   *HTMLRenderer

	lastSeen time.Time
}

// Sessions hands every browser its own Session and drops the ones left idle
type Sessions struct {
	api  API
	opts Options
	idle time.Duration
	tmpl *template.Template
	log  *zap.SugaredLogger
	now  func() time.Time

	mu   sync.Mutex
	byID map[string]*Session
}

// NewSessions creates the session table. Sessions unused for idle are
// evicted by Sweep.
func NewSessions(api API, opts Options, idle time.Duration) (*Sessions, error) {
	tmpl, err := parsePageTemplates()
	if err != nil {
		return nil, err
	}
	if idle <= 0 {
		idle = 30 * time.Minute
	}
	return &Sessions{
		api:  api,
		opts: opts,
		idle: idle,
		tmpl: tmpl,
		log:  zap.S().Named("view"),
		now:  time.Now,
		byID: make(map[string]*Session),
	}, nil
}

// Get returns the session with id, starting a new one under a fresh id when
// id is unknown or malformed.
func (s *Sessions) Get(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.byID[id]; ok {
		sess.lastSeen = s.now()
		return sess
	}
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}

	renderer := newHTMLRenderer(s.tmpl)
	sess := &Session{
		ID:         id,
		Controller: NewController(s.api, renderer, s.opts),
		Renderer:   renderer,
		lastSeen:   s.now(),
	}
	s.byID[id] = sess
	s.log.Debugw("Session started", "session", id, "active", len(s.byID))
	return sess
}

// Len returns the number of live sessions
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// Sweep closes and forgets the sessions idle for longer than the idle
// timeout and returns how many it dropped.
func (s *Sessions) Sweep() int {
	cutoff := s.now().Add(-s.idle)

	s.mu.Lock()
	var stale []*Session
	for id, sess := range s.byID {
		if sess.lastSeen.Before(cutoff) {
			stale = append(stale, sess)
			delete(s.byID, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range stale {
		sess.Controller.Close()
	}
	if len(stale) > 0 {
		s.log.Infow("Evicted idle sessions", "count", len(stale))
	}
	return len(stale)
}

// Run sweeps periodically until ctx is done
func (s *Sessions) Run(ctx context.Context) {
	ticker := time.NewTicker(s.idle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Close stops every session
func (s *Sessions) Close() {
	s.mu.Lock()
	all := s.byID
	s.byID = make(map[string]*Session)
	s.mu.Unlock()

	for _, sess := range all {
		sess.Controller.Close()
	}
}
