package session

import (
	"sync"

	"github.com/pursewatch-dev/pursewatch/internal/model"
)

// Status is the in-memory answer to the "get current site status" query.
type Status struct {
	SessionID string                  `json:"session_id"`
	State     model.TrackerState      `json:"state"`
	Site      model.SiteIdentity      `json:"site"`
	Analysis  model.AnalysisResult    `json:"analysis"`
	History   []model.StateTransition `json:"history,omitempty"`
	Ignored   bool                    `json:"ignored"`
}

// statusHolder gives cross-goroutine readers a consistent copy of the loop's
// state without letting them touch the tracker.
type statusHolder struct {
	status Status
	mu     sync.RWMutex
}

func newStatusHolder(sessionID string) *statusHolder {
	return &statusHolder{status: Status{
		SessionID: sessionID,
		State:     model.StateIdle,
	}}
}

func (h *statusHolder) get() Status {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.status
}

func (h *statusHolder) set(status Status) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status = status
}

func (h *statusHolder) setIgnored(hostname string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status.Ignored = true
	h.status.Site.Hostname = hostname
}
