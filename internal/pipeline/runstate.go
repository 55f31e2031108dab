package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"git.home.luguber.info/inful/deckforge/internal/deck"
	dferrors "git.home.luguber.info/inful/deckforge/internal/errors"
)

// Request is an accepted generation request. It is immutable for the
// lifetime of the run it starts.
type Request struct {
	Topic     string `json:"topic"`
	ThemeKey  string `json:"theme"`
	NumSlides int    `json:"num_slides"`
}

// Normalize clamps the slide count and maps unknown themes to the
// default preset. The topic is validated, not repaired.
func (r Request) Normalize() (Request, error) {
	if r.Topic == "" {
		return r, dferrors.ValidationError("topic must not be empty")
	}
	r.NumSlides = deck.ClampSlideCount(r.NumSlides)
	r.ThemeKey = deck.NormalizeThemeKey(r.ThemeKey)
	return r, nil
}

// FailureKind classifies why a stage failed.
type FailureKind string

const (
	FailureUpstreamDataInvalid FailureKind = "upstream_data_invalid"
	FailureExternalCallFailed  FailureKind = "external_call_failed"
	FailureTimeout             FailureKind = "timeout"
)

// StageFailure is the typed failure half of a StageResult.
type StageFailure struct {
	Kind    FailureKind
	Message string
}

func (f *StageFailure) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// classifyFailure maps a stage error onto the failure taxonomy.
func classifyFailure(err error) *StageFailure {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &StageFailure{Kind: FailureTimeout, Message: err.Error()}
	case dferrors.IsCategory(err, dferrors.CategoryTimeout):
		return &StageFailure{Kind: FailureTimeout, Message: err.Error()}
	case dferrors.IsCategory(err, dferrors.CategoryUpstream):
		return &StageFailure{Kind: FailureUpstreamDataInvalid, Message: err.Error()}
	default:
		return &StageFailure{Kind: FailureExternalCallFailed, Message: err.Error()}
	}
}

// StageResult is the outcome of one stage: a payload on success or a
// typed failure. Never mutated after creation.
type StageResult struct {
	Payload any
	Failure *StageFailure
}

// OK reports whether the stage succeeded.
func (r StageResult) OK() bool { return r.Failure == nil }

// RunStatus is the overall status of a run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// RunState is the mutable state of one in-flight run. It is owned
// exclusively by the orchestrator goroutine executing that run; stage
// goroutines within a batch record results through the mutex.
type RunState struct {
	Request Request
	RunID   string

	mu      sync.Mutex
	results map[string]StageResult
	status  RunStatus
	deck    *deck.Deck
}

// NewRunState creates the state for a fresh run.
func NewRunState(runID string, req Request) *RunState {
	return &RunState{
		Request: req,
		RunID:   runID,
		results: make(map[string]StageResult),
		status:  RunRunning,
	}
}

// record appends a stage result. Results are append-only: recording the
// same stage twice indicates an orchestrator bug and panics.
func (rs *RunState) record(stageID string, result StageResult) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if _, dup := rs.results[stageID]; dup {
		panic(fmt.Sprintf("pipeline: duplicate result for stage %s", stageID))
	}
	rs.results[stageID] = result
}

// Result returns the recorded result for a stage.
func (rs *RunState) Result(stageID string) (StageResult, bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	r, ok := rs.results[stageID]
	return r, ok
}

// Status returns the run's overall status.
func (rs *RunState) Status() RunStatus {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.status
}

func (rs *RunState) setStatus(s RunStatus) {
	rs.mu.Lock()
	rs.status = s
	rs.mu.Unlock()
}

// Deck returns the assembled document, present only after the final
// stage of a successful run.
func (rs *RunState) Deck() *deck.Deck {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.deck
}

func (rs *RunState) setDeck(d *deck.Deck) {
	rs.mu.Lock()
	rs.deck = d
	rs.mu.Unlock()
}

// PayloadAs retrieves a successful upstream payload with its concrete
// type. The ok result is false when the stage has not run, failed, or
// produced a payload of a different type.
func PayloadAs[T any](rs *RunState, stageID string) (T, bool) {
	var zero T
	r, ok := rs.Result(stageID)
	if !ok || !r.OK() {
		return zero, false
	}
	v, ok := r.Payload.(T)
	if !ok {
		return zero, false
	}
	return v, true
}
