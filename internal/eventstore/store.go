// Package eventstore persists pipeline events per run so that finished
// or in-flight runs can be inspected and replayed after the SSE channel
// is gone.
package eventstore

import (
	"context"

	"git.home.luguber.info/inful/deckforge/internal/pipeline"
)

// Store defines the interface for persisting and retrieving run events.
type Store interface {
	// Append adds an event to a run's ordered history.
	Append(ctx context.Context, ev pipeline.Event) error

	// ByRunID retrieves all events for a run in emission order.
	ByRunID(ctx context.Context, runID string) ([]pipeline.Event, error)

	// Close releases store resources.
	Close() error
}
