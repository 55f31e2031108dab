package stream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/deckforge/internal/pipeline"
)

func progressEv(runID, stage string) pipeline.Event {
	return pipeline.Event{Type: pipeline.EventProgress, RunID: runID, Stage: stage}
}

func drain(t *testing.T, sub *Subscription, n int) []pipeline.Event {
	t.Helper()
	var got []pipeline.Event
	timeout := time.After(2 * time.Second)
	for len(got) < n {
		select {
		case ev, ok := <-sub.Events:
			if !ok {
				return got
			}
			got = append(got, ev)
		case <-timeout:
			t.Fatalf("wanted %d events, got %d", n, len(got))
		}
	}
	return got
}

func TestBroker_DeliversInOrder(t *testing.T) {
	b := NewBroker(8)
	sub, cancel := b.Subscribe("run-1")
	defer cancel()

	b.Publish(progressEv("run-1", "a"))
	b.Publish(progressEv("run-1", "b"))
	b.Publish(progressEv("run-1", "c"))

	got := drain(t, sub, 3)
	require.Equal(t, []string{"a", "b", "c"}, []string{got[0].Stage, got[1].Stage, got[2].Stage})
	require.False(t, sub.Dropped())
}

func TestBroker_IsolatesRuns(t *testing.T) {
	b := NewBroker(8)
	sub1, cancel1 := b.Subscribe("run-1")
	defer cancel1()
	sub2, cancel2 := b.Subscribe("run-2")
	defer cancel2()

	b.Publish(progressEv("run-1", "only-one"))

	got := drain(t, sub1, 1)
	require.Equal(t, "only-one", got[0].Stage)
	select {
	case ev := <-sub2.Events:
		t.Fatalf("run-2 subscriber received foreign event %v", ev)
	default:
	}
}

func TestBroker_TerminalEventClosesSubscription(t *testing.T) {
	b := NewBroker(8)
	sub, cancel := b.Subscribe("run-1")
	defer cancel()

	b.Publish(progressEv("run-1", "a"))
	b.Publish(pipeline.Event{Type: pipeline.EventCompleted, RunID: "run-1"})

	got := drain(t, sub, 2)
	require.Equal(t, pipeline.EventCompleted, got[1].Type)

	_, open := <-sub.Events
	require.False(t, open, "subscription should close after terminal event")
	require.False(t, sub.Dropped())
	require.Zero(t, b.SubscriberCount("run-1"))
}

func TestBroker_SlowSubscriberLosesConnectionNotFrames(t *testing.T) {
	b := NewBroker(2)
	sub, cancel := b.Subscribe("run-1")
	defer cancel()

	// Fill the buffer without reading, then overflow it.
	b.Publish(progressEv("run-1", "a"))
	b.Publish(progressEv("run-1", "b"))
	b.Publish(progressEv("run-1", "c"))

	// The buffered frames are still delivered in order; the channel
	// then closes instead of ever skipping a frame.
	got := drain(t, sub, 2)
	require.Equal(t, "a", got[0].Stage)
	require.Equal(t, "b", got[1].Stage)

	_, open := <-sub.Events
	require.False(t, open)
	require.True(t, sub.Dropped())
	require.Zero(t, b.SubscriberCount("run-1"))
}

func TestBroker_PublishWithoutSubscribersIsHarmless(t *testing.T) {
	b := NewBroker(2)
	require.NotPanics(t, func() {
		b.Publish(progressEv("run-ghost", "a"))
		b.Publish(pipeline.Event{Type: pipeline.EventCompleted, RunID: "run-ghost"})
	})
}

func TestBroker_UnsubscribeIsIdempotent(t *testing.T) {
	b := NewBroker(2)
	_, cancel := b.Subscribe("run-1")
	cancel()
	require.NotPanics(t, cancel)
	require.Zero(t, b.SubscriberCount("run-1"))
}
