package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/deckforge/internal/deck"
	dferrors "git.home.luguber.info/inful/deckforge/internal/errors"
	"git.home.luguber.info/inful/deckforge/internal/pipeline"
)

func writeFrame(t *testing.T, w io.Writer, ev pipeline.Event) {
	t.Helper()
	data, err := json.Marshal(ev)
	require.NoError(t, err)
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	require.NoError(t, err)
}

func TestConsumer_CompletesOnTerminalEvent(t *testing.T) {
	pr, pw := io.Pipe()
	go func() {
		defer pw.Close()
		writeFrame(t, pw, pipeline.Event{Type: pipeline.EventStarted, RunID: "r1", Message: "generation started"})
		writeFrame(t, pw, pipeline.Event{Type: pipeline.EventProgress, RunID: "r1", Stage: pipeline.StageSearchResources, Message: "[searchResources] done"})
		writeFrame(t, pw, pipeline.Event{
			Type:     pipeline.EventCompleted,
			RunID:    "r1",
			Deck:     &deck.Deck{Topic: "Solar", Slides: []deck.Slide{{SlideNumber: 1, Title: "Solar"}}},
			Filename: "deck.json",
			URL:      "/api/download/deck.json",
		})
	}()

	c := NewConsumer(5*time.Second, time.Second)
	result, err := c.Consume(context.Background(), pr)
	require.NoError(t, err)
	require.NotNil(t, result.Deck)
	require.Equal(t, "Solar", result.Deck.Topic)
	require.Equal(t, "deck.json", result.Filename)
	require.Equal(t, pipeline.ProgressComplete, result.Progress.Percent)
}

func TestConsumer_ErrorEventSurfacesAsFailure(t *testing.T) {
	pr, pw := io.Pipe()
	go func() {
		defer pw.Close()
		writeFrame(t, pw, pipeline.Event{Type: pipeline.EventStarted, RunID: "r1"})
		writeFrame(t, pw, pipeline.Event{Type: pipeline.EventFailed, RunID: "r1", Message: "external_call_failed: model unavailable"})
	}()

	c := NewConsumer(5*time.Second, time.Second)
	result, err := c.Consume(context.Background(), pr)
	require.Error(t, err)
	require.Contains(t, err.Error(), "model unavailable")
	require.NotNil(t, result.Progress)
}

func TestConsumer_SkipsMalformedFrames(t *testing.T) {
	pr, pw := io.Pipe()
	go func() {
		defer pw.Close()
		writeFrame(t, pw, pipeline.Event{Type: pipeline.EventStarted, RunID: "r1"})
		fmt.Fprintf(pw, "data: {broken\n\n")
		writeFrame(t, pw, pipeline.Event{Type: pipeline.EventCompleted, RunID: "r1", Deck: &deck.Deck{Topic: "Solar"}})
	}()

	c := NewConsumer(5*time.Second, time.Second)
	result, err := c.Consume(context.Background(), pr)
	require.NoError(t, err)
	require.NotNil(t, result.Deck)
}

func TestConsumer_MalformedFramesResetStallWindow(t *testing.T) {
	pr, pw := io.Pipe()
	var stalls atomic.Int32

	go func() {
		defer pw.Close()
		writeFrame(t, pw, pipeline.Event{Type: pipeline.EventStarted, RunID: "r1"})
		for i := 0; i < 5; i++ {
			time.Sleep(20 * time.Millisecond)
			fmt.Fprintf(pw, "data: {broken\n\n")
		}
		writeFrame(t, pw, pipeline.Event{Type: pipeline.EventCompleted, RunID: "r1", Deck: &deck.Deck{Topic: "Solar"}})
	}()

	c := NewConsumer(5*time.Second, 200*time.Millisecond)
	c.OnStall = func(since time.Duration) { stalls.Add(1) }

	result, err := c.Consume(context.Background(), pr)
	require.NoError(t, err)
	require.NotNil(t, result.Deck)
	require.Zero(t, stalls.Load(), "garbled frames are still transport activity")
}

func TestConsumer_StreamEndWithoutTerminalIsTransportError(t *testing.T) {
	pr, pw := io.Pipe()
	go func() {
		defer pw.Close()
		writeFrame(t, pw, pipeline.Event{Type: pipeline.EventStarted, RunID: "r1"})
	}()

	c := NewConsumer(5*time.Second, time.Second)
	_, err := c.Consume(context.Background(), pr)
	require.Error(t, err)
	require.True(t, dferrors.IsCategory(err, dferrors.CategoryTransport))
}

func TestConsumer_RunTimeoutAbortsHard(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	go func() {
		writeFrame(t, pw, pipeline.Event{Type: pipeline.EventStarted, RunID: "r1"})
		// Then silence: the stream stays open past the run timeout.
	}()

	c := NewConsumer(100*time.Millisecond, 20*time.Millisecond)
	start := time.Now()
	_, err := c.Consume(context.Background(), pr)
	require.Error(t, err)
	require.True(t, dferrors.IsCategory(err, dferrors.CategoryTimeout))
	require.Less(t, time.Since(start), 3*time.Second)
}

func TestConsumer_StallWindowWarnsWithoutAborting(t *testing.T) {
	pr, pw := io.Pipe()
	var stalls atomic.Int32

	go func() {
		defer pw.Close()
		writeFrame(t, pw, pipeline.Event{Type: pipeline.EventStarted, RunID: "r1"})
		// Stay silent long enough for stall warnings, then complete.
		time.Sleep(150 * time.Millisecond)
		writeFrame(t, pw, pipeline.Event{Type: pipeline.EventCompleted, RunID: "r1", Deck: &deck.Deck{Topic: "Solar"}})
	}()

	c := NewConsumer(5*time.Second, 30*time.Millisecond)
	c.OnStall = func(since time.Duration) { stalls.Add(1) }

	result, err := c.Consume(context.Background(), pr)
	require.NoError(t, err)
	require.NotNil(t, result.Deck)
	require.Greater(t, stalls.Load(), int32(0), "stall window should have fired at least once")
}

func TestConsumer_HeartbeatsResetStallWindow(t *testing.T) {
	pr, pw := io.Pipe()
	var stalls atomic.Int32

	go func() {
		defer pw.Close()
		writeFrame(t, pw, pipeline.Event{Type: pipeline.EventStarted, RunID: "r1"})
		for i := 0; i < 5; i++ {
			time.Sleep(20 * time.Millisecond)
			writeFrame(t, pw, pipeline.Event{Type: pipeline.EventHeartbeat, RunID: "r1"})
		}
		writeFrame(t, pw, pipeline.Event{Type: pipeline.EventCompleted, RunID: "r1", Deck: &deck.Deck{Topic: "Solar"}})
	}()

	c := NewConsumer(5*time.Second, 200*time.Millisecond)
	c.OnStall = func(since time.Duration) { stalls.Add(1) }

	_, err := c.Consume(context.Background(), pr)
	require.NoError(t, err)
	require.Zero(t, stalls.Load(), "heartbeats arrived well inside the stall window")
}
