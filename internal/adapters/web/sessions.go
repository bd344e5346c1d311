package web

import (
	"sync"
	"time"

	"bubbleview/internal/selection"
	"bubbleview/pkg/log"
)

type session struct {
	ctrl     *selection.Controller
	lastSeen time.Time
}

// Sessions keeps one selection controller per viewer session and bubble.
// Sessions idle for longer than the TTL are closed and dropped.
type Sessions struct {
	mu       sync.Mutex
	entries  map[string]*session
	ttl      time.Duration
	delay    time.Duration
	metrics  *Metrics
	stop     chan struct{}
	stopOnce sync.Once
}

// NewSessions creates a session table whose controllers settle after
// delay. metrics may be nil.
func NewSessions(ttl, delay time.Duration, metrics *Metrics) *Sessions {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	s := &Sessions{
		entries: make(map[string]*session),
		ttl:     ttl,
		delay:   delay,
		metrics: metrics,
		stop:    make(chan struct{}),
	}
	go s.cleanup(time.Minute)
	return s
}

func sessionKey(sessionID, slug string) string {
	return sessionID + "|" + slug
}

// Controller returns the controller for the viewer session on slug,
// creating it over ids when absent.
func (s *Sessions) Controller(sessionID, slug string, ids []string) *selection.Controller {
	key := sessionKey(sessionID, slug)

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok {
		e.lastSeen = time.Now()
		return e.ctrl
	}

	ctrl := selection.New(ids,
		selection.WithDelay(s.delay),
		selection.WithOnSettle(func(snap selection.Snapshot) {
			log.GlobalDebug("selection settled", "slug", slug, "active", snap.Active)
		}),
	)
	s.entries[key] = &session{ctrl: ctrl, lastSeen: time.Now()}
	s.metrics.setSessions(len(s.entries))
	return ctrl
}

// Lookup returns an existing controller without creating one.
func (s *Sessions) Lookup(sessionID, slug string) (*selection.Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[sessionKey(sessionID, slug)]
	if !ok {
		return nil, false
	}
	e.lastSeen = time.Now()
	return e.ctrl, true
}

// Len is the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep closes sessions idle since before now minus the TTL and returns
// how many were dropped.
func (s *Sessions) Sweep(now time.Time) int {
	cutoff := now.Add(-s.ttl)

	s.mu.Lock()
	var expired []*selection.Controller
	for k, e := range s.entries {
		if e.lastSeen.Before(cutoff) {
			expired = append(expired, e.ctrl)
			delete(s.entries, k)
		}
	}
	s.metrics.setSessions(len(s.entries))
	s.mu.Unlock()

	// Close waits for in-flight settle callbacks; keep it outside the lock.
	for _, ctrl := range expired {
		ctrl.Close()
	}
	return len(expired)
}

// Close stops the sweep loop and closes every controller.
func (s *Sessions) Close() {
	s.stopOnce.Do(func() { close(s.stop) })

	s.mu.Lock()
	entries := s.entries
	s.entries = make(map[string]*session)
	s.metrics.setSessions(0)
	s.mu.Unlock()

	for _, e := range entries {
		e.ctrl.Close()
	}
}

func (s *Sessions) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			if n := s.Sweep(now); n > 0 {
				log.GlobalDebug("selection sessions expired", "count", n)
			}
		}
	}
}
