package client

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/deckforge/internal/pipeline"
)

func readAll(t *testing.T, frames <-chan Frame) []Frame {
	t.Helper()
	var got []Frame
	timeout := time.After(2 * time.Second)
	for {
		select {
		case f, ok := <-frames:
			if !ok {
				return got
			}
			got = append(got, f)
		case <-timeout:
			t.Fatal("frame channel never closed")
		}
	}
}

func TestReadFrames_ParsesEventStream(t *testing.T) {
	stream := "data: {\"type\":\"start\",\"run_id\":\"r1\"}\n\n" +
		"data: {\"type\":\"progress\",\"step\":\"searchResources\"}\n\n" +
		"data: {\"type\":\"complete\"}\n\n"

	got := readAll(t, ReadFrames(context.Background(), strings.NewReader(stream)))
	require.Len(t, got, 3)
	require.Equal(t, pipeline.EventStarted, got[0].Event.Type)
	require.Equal(t, "r1", got[0].Event.RunID)
	require.Equal(t, "searchResources", got[1].Event.Stage)
	require.Equal(t, pipeline.EventCompleted, got[2].Event.Type)
}

func TestReadFrames_SkipsComments(t *testing.T) {
	stream := ": keepalive\n\n" +
		"data: {\"type\":\"heartbeat\"}\n\n" +
		": another comment\n\n"

	got := readAll(t, ReadFrames(context.Background(), strings.NewReader(stream)))
	require.Len(t, got, 1)
	require.Equal(t, pipeline.EventHeartbeat, got[0].Event.Type)
}

func TestReadFrames_JoinsMultiLineData(t *testing.T) {
	stream := "data: {\"type\":\"progress\",\n" +
		"data: \"step\":\"generateThemeStyle\"}\n\n"

	got := readAll(t, ReadFrames(context.Background(), strings.NewReader(stream)))
	require.Len(t, got, 1)
	require.NoError(t, got[0].Err)
	require.Equal(t, "generateThemeStyle", got[0].Event.Stage)
}

func TestReadFrames_MalformedFrameIsSkippableNotFatal(t *testing.T) {
	stream := "data: {\"type\":\"start\"}\n\n" +
		"data: {not json at all\n\n" +
		"data: {\"type\":\"complete\"}\n\n"

	got := readAll(t, ReadFrames(context.Background(), strings.NewReader(stream)))
	require.Len(t, got, 3)
	require.NoError(t, got[0].Err)
	require.Error(t, got[1].Err)
	require.NoError(t, got[2].Err)
	require.Equal(t, pipeline.EventCompleted, got[2].Event.Type)
}

func TestReadFrames_FlushesTrailingFrameWithoutBlankLine(t *testing.T) {
	stream := "data: {\"type\":\"complete\"}"

	got := readAll(t, ReadFrames(context.Background(), strings.NewReader(stream)))
	require.Len(t, got, 1)
	require.Equal(t, pipeline.EventCompleted, got[0].Event.Type)
}

func TestReadFrames_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := readAll(t, ReadFrames(ctx, strings.NewReader("data: {\"type\":\"start\"}\n\n")))
	require.Empty(t, got)
}
