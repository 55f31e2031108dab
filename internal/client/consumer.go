package client

import (
	"context"
	"io"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/deckforge/internal/deck"
	dferrors "git.home.luguber.info/inful/deckforge/internal/errors"
	"git.home.luguber.info/inful/deckforge/internal/pipeline"
)

// Result is the outcome of a consumed run.
type Result struct {
	Deck        *deck.Deck
	Filename    string
	DownloadURL string
	Progress    *ProgressState
}

// Consumer reads a run's SSE stream and reconstructs its progress. Two
// timers run independently of the transport: a hard ceiling on the
// whole run, and a shorter stall window that only produces a warning,
// since slow stages are expected.
type Consumer struct {
	// RunTimeout aborts the session when the whole run exceeds it.
	RunTimeout time.Duration
	// StallWindow triggers OnStall when no frame arrives within it.
	StallWindow time.Duration
	// OnEvent, if set, observes every well-formed event as it arrives.
	OnEvent func(pipeline.Event)
	// OnStall, if set, is called each time the stall window elapses
	// without traffic. The session continues.
	OnStall func(sinceLastActivity time.Duration)

	logger *slog.Logger
}

// NewConsumer creates a consumer with the given timer settings.
func NewConsumer(runTimeout, stallWindow time.Duration) *Consumer {
	return &Consumer{
		RunTimeout:  runTimeout,
		StallWindow: stallWindow,
		logger:      slog.Default(),
	}
}

// Consume reads SSE frames from r until a terminal event, stream end,
// or the hard run timeout. Malformed frames are logged and skipped.
// The returned Result always carries the progress state accumulated so
// far, including on error paths.
func (c *Consumer) Consume(ctx context.Context, r io.Reader) (*Result, error) {
	if c.logger == nil {
		c.logger = slog.Default()
	}

	state := NewProgressState()
	result := &Result{Progress: state}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	frames := ReadFrames(ctx, r)

	deadline := time.NewTimer(c.RunTimeout)
	defer deadline.Stop()
	stall := time.NewTimer(c.StallWindow)
	defer stall.Stop()

	for {
		select {
		case <-ctx.Done():
			return result, dferrors.Wrap(ctx.Err(), dferrors.CategoryTransport, dferrors.SeverityError, "stream context cancelled")

		case <-deadline.C:
			// Client-enforced ceiling, independent of any server timeout.
			return result, dferrors.New(dferrors.CategoryTimeout, dferrors.SeverityError, "generation run exceeded client timeout")

		case <-stall.C:
			since := time.Since(state.LastActivity)
			c.logger.Warn("no stream activity, still waiting", "since", since)
			if c.OnStall != nil {
				c.OnStall(since)
			}
			stall.Reset(c.StallWindow)

		case frame, ok := <-frames:
			if !ok {
				return result, dferrors.New(dferrors.CategoryTransport, dferrors.SeverityError, "stream ended without a terminal event")
			}
			// Even a garbled frame is transport activity.
			state.LastActivity = time.Now()
			stall.Reset(c.StallWindow)
			if frame.Err != nil {
				c.logger.Warn("skipping malformed frame", "error", frame.Err)
				continue
			}

			ev := frame.Event
			state.Apply(ev)
			if c.OnEvent != nil {
				c.OnEvent(ev)
			}

			switch ev.Type {
			case pipeline.EventCompleted:
				result.Deck = ev.Deck
				result.Filename = ev.Filename
				result.DownloadURL = ev.URL
				return result, nil
			case pipeline.EventFailed:
				return result, dferrors.New(dferrors.CategoryExternal, dferrors.SeverityError, ev.Message)
			}
		}
	}
}
