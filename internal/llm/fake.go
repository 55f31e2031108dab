package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// Fake is an in-memory Client for tests. Responses are matched against
// prompts by substring; the most recently scripted match wins, so a
// test can script a baseline and then override one stage. An unmatched
// prompt returns ErrNoResponse unless a Default payload is set.
type Fake struct {
	mu        sync.Mutex
	responses []fakeResponse
	// Default is unmarshaled for prompts with no scripted match.
	Default any
	// Err, when set, fails every call.
	Err error
	// Calls records the prompts seen, in order.
	Calls []string
}

type fakeResponse struct {
	substring string
	payload   any
	err       error
}

// ErrNoResponse is returned for prompts the fake has no script for.
var ErrNoResponse = fmt.Errorf("fake llm: no scripted response for prompt")

// Respond scripts a payload for prompts containing substring.
func (f *Fake) Respond(substring string, payload any) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, fakeResponse{substring: substring, payload: payload})
	return f
}

// Fail scripts an error for prompts containing substring.
func (f *Fake) Fail(substring string, err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, fakeResponse{substring: substring, err: err})
	return f
}

// Generate implements Client.
func (f *Fake) Generate(ctx context.Context, prompt string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	f.Calls = append(f.Calls, prompt)
	responses := f.responses
	defaultPayload := f.Default
	globalErr := f.Err
	f.mu.Unlock()

	if globalErr != nil {
		return globalErr
	}

	for i := len(responses) - 1; i >= 0; i-- {
		r := responses[i]
		if r.substring != "" && strings.Contains(prompt, r.substring) {
			if r.err != nil {
				return r.err
			}
			return roundTrip(r.payload, out)
		}
	}
	if defaultPayload != nil {
		return roundTrip(defaultPayload, out)
	}
	return ErrNoResponse
}

// roundTrip copies payload into out via JSON, mirroring what the real
// client does with a model response.
func roundTrip(payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
