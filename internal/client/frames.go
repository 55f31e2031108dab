package client

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"

	"git.home.luguber.info/inful/deckforge/internal/pipeline"
)

// Frame is one parsed unit from the SSE stream. Err is set for frames
// whose payload was not valid JSON; such frames are skippable, not
// fatal.
type Frame struct {
	Event pipeline.Event
	Err   error
}

// ReadFrames parses SSE frames from r and delivers them on the
// returned channel. The channel closes when r is exhausted, an
// unrecoverable read error occurs, or ctx is cancelled.
//
// Parsing rules:
//   - "data:" lines carry the JSON payload; multiple data lines within
//     one frame are joined with newlines.
//   - Lines starting with ":" are keep-alive comments and are dropped.
//   - A blank line terminates the frame.
func ReadFrames(ctx context.Context, r io.Reader) <-chan Frame {
	ch := make(chan Frame)
	go func() {
		defer close(ch)

		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 4<<20)
		var data strings.Builder

		flush := func() bool {
			if data.Len() == 0 {
				return true
			}
			payload := data.String()
			data.Reset()

			var ev pipeline.Event
			f := Frame{}
			if err := json.Unmarshal([]byte(payload), &ev); err != nil {
				f.Err = err
			} else {
				f.Event = ev
			}
			select {
			case ch <- f:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for scanner.Scan() {
			if ctx.Err() != nil {
				return
			}
			line := scanner.Text()
			switch {
			case line == "":
				if !flush() {
					return
				}
			case strings.HasPrefix(line, ":"):
				// keep-alive comment
			case strings.HasPrefix(line, "data:"):
				payload := strings.TrimPrefix(line, "data:")
				payload = strings.TrimPrefix(payload, " ")
				if data.Len() > 0 {
					data.WriteByte('\n')
				}
				data.WriteString(payload)
			}
		}
		flush()
	}()
	return ch
}
