package model

import "time"

// PageEventType identifies the browser lifecycle event that produced a
// snapshot.
type PageEventType string

// Page event type constants.
const (
	EventPageLoad   PageEventType = "load"
	EventMutation   PageEventType = "mutation"
	EventClick      PageEventType = "click"
	EventNavigation PageEventType = "navigation"
	EventUnload     PageEventType = "unload"
)

// PageEvent is one inbound observation from the page under watch. HTML
// carries the rendered-tree snapshot at the time of the event; ClickText is
// the visible label of the clicked element for click events.
type PageEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	SessionID string        `json:"session_id"`
	Type      PageEventType `json:"type"`
	URL       string        `json:"url"`
	Title     string        `json:"title,omitempty"`
	HTML      string        `json:"html,omitempty"`
	ClickText string        `json:"click_text,omitempty"`
}
