// Package server exposes the detection engine to the browser-side collector:
// an HTTP ingest for page events, the synchronous status query and an SSE
// feed of outbound events.
package server

import (
	"context"
	"sync"

	"github.com/pursewatch-dev/pursewatch/internal/model"
	"github.com/pursewatch-dev/pursewatch/internal/session"
)

// Manager owns one engine per live page session and routes inbound events to
// them.
type Manager struct {
	baseCtx  context.Context
	sessions map[string]*managedSession
	cfg      session.Config
	deps     session.Deps
	mu       sync.Mutex
}

type managedSession struct {
	engine *session.Engine
	cancel context.CancelFunc
}

// NewManager creates a manager; Start must be called before Dispatch.
func NewManager(cfg session.Config, deps session.Deps) *Manager {
	return &Manager{
		sessions: make(map[string]*managedSession),
		cfg:      cfg,
		deps:     deps,
	}
}

// Start binds the manager to the lifetime context all session goroutines run
// under.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.baseCtx = ctx
}

// Dispatch routes an event to its session engine, creating the engine on
// first sight of the session. Unload tears the session down after delivery.
func (m *Manager) Dispatch(event model.PageEvent) bool {
	m.mu.Lock()
	managed, ok := m.sessions[event.SessionID]
	if !ok {
		if event.Type == model.EventUnload {
			m.mu.Unlock()
			return false
		}
		ctx, cancel := context.WithCancel(m.baseCtx)
		managed = &managedSession{
			engine: session.New(event.SessionID, m.cfg, m.deps),
			cancel: cancel,
		}
		m.sessions[event.SessionID] = managed
		go managed.engine.Run(ctx)
	}
	if event.Type == model.EventUnload {
		delete(m.sessions, event.SessionID)
	}
	m.mu.Unlock()

	accepted := managed.engine.Submit(event)
	if event.Type == model.EventUnload {
		managed.cancel()
	}
	return accepted
}

// Status answers the status query for one session.
func (m *Manager) Status(sessionID string) (session.Status, bool) {
	m.mu.Lock()
	managed, ok := m.sessions[sessionID]
	m.mu.Unlock()
	if !ok {
		return session.Status{}, false
	}
	return managed.engine.Status(), true
}

// SessionIDs lists the live sessions.
func (m *Manager) SessionIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}

// StopAll cancels every live session.
func (m *Manager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, managed := range m.sessions {
		managed.cancel()
		delete(m.sessions, id)
	}
}
