// Package client consumes a generation event stream, reconstructing
// pipeline progress and guarding against stalls independently of the
// transport's own timeouts.
package client

import (
	"time"

	"git.home.luguber.info/inful/deckforge/internal/pipeline"
)

// ProgressState is the consumer-owned view of one run, derived solely
// from the event stream.
type ProgressState struct {
	// Percent is the bounded progress indicator. It only grows: unknown
	// or out-of-order stage ids never move it backwards.
	Percent int
	// StagesSeen maps stage ids to the percentage milestone at which
	// they were observed.
	StagesSeen map[string]int
	// Log is the append-only list of human-readable progress lines.
	Log []string
	// LastActivity is the arrival time of the most recent frame, used
	// for stall detection.
	LastActivity time.Time
}

// NewProgressState creates an empty progress view.
func NewProgressState() *ProgressState {
	return &ProgressState{StagesSeen: make(map[string]int), LastActivity: time.Now()}
}

// Apply folds one event into the state. Heartbeats refresh the activity
// clock but never advance progress. Unknown stage ids are accepted but
// produce no progress-bar movement.
func (ps *ProgressState) Apply(ev pipeline.Event) {
	ps.LastActivity = time.Now()

	switch ev.Type {
	case pipeline.EventStarted:
		ps.appendLog(ev.Message)
	case pipeline.EventProgress:
		if pct := pipeline.MilestoneFor(ev.Stage); pct > ps.Percent {
			ps.Percent = pct
		}
		if ev.Stage != "" {
			ps.StagesSeen[ev.Stage] = pipeline.MilestoneFor(ev.Stage)
		}
		ps.appendLog(ev.Message)
	case pipeline.EventCompleted:
		ps.Percent = pipeline.ProgressComplete
		ps.appendLog(ev.Message)
	case pipeline.EventFailed:
		ps.appendLog("error: " + ev.Message)
	case pipeline.EventHeartbeat:
		// Activity already refreshed; nothing else to record.
	}
}

func (ps *ProgressState) appendLog(line string) {
	if line != "" {
		ps.Log = append(ps.Log, line)
	}
}
