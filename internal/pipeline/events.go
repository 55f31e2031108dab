package pipeline

import (
	"time"

	"git.home.luguber.info/inful/deckforge/internal/deck"
)

// EventType tags a pipeline event. Payload fields of Event are only
// meaningful for the matching tag.
type EventType string

const (
	EventStarted   EventType = "start"
	EventProgress  EventType = "progress"
	EventHeartbeat EventType = "heartbeat"
	EventCompleted EventType = "complete"
	EventFailed    EventType = "error"
)

// Event is one strictly ordered state transition of a run. Exactly one
// terminal event (complete or error) ends a run's sequence.
type Event struct {
	Type      EventType  `json:"type"`
	RunID     string     `json:"run_id,omitempty"`
	Timestamp time.Time  `json:"timestamp,omitzero"`
	Message   string     `json:"message,omitempty"`
	Stage     string     `json:"step,omitempty"`
	Status    string     `json:"status,omitempty"`
	Deck      *deck.Deck `json:"ppt_data,omitempty"`
	Filename  string     `json:"filename,omitempty"`
	URL       string     `json:"download_url,omitempty"`
}

// Terminal reports whether the event ends a run's sequence.
func (e Event) Terminal() bool {
	return e.Type == EventCompleted || e.Type == EventFailed
}

func startedEvent(runID string) Event {
	return Event{Type: EventStarted, RunID: runID, Timestamp: time.Now(), Message: "generation started"}
}

func progressEvent(runID, stage, status string) Event {
	return Event{
		Type:      EventProgress,
		RunID:     runID,
		Timestamp: time.Now(),
		Stage:     stage,
		Status:    status,
		Message:   "[" + stage + "] " + status,
	}
}

// HeartbeatEvent is an idle keep-alive frame; it never advances
// consumer progress.
func HeartbeatEvent(runID string) Event {
	return Event{Type: EventHeartbeat, RunID: runID, Timestamp: time.Now(), Message: "working..."}
}

func completedEvent(runID string, d *deck.Deck, filename, url string) Event {
	return Event{
		Type:      EventCompleted,
		RunID:     runID,
		Timestamp: time.Now(),
		Message:   "generation complete",
		Deck:      d,
		Filename:  filename,
		URL:       url,
	}
}

func failedEvent(runID, message string) Event {
	return Event{Type: EventFailed, RunID: runID, Timestamp: time.Now(), Message: message}
}
