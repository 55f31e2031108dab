package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/deckforge/internal/artifact"
	"git.home.luguber.info/inful/deckforge/internal/deck"
	"git.home.luguber.info/inful/deckforge/internal/metrics"
	"git.home.luguber.info/inful/deckforge/internal/observability"
)

// Orchestrator walks a stage graph, executes each batch concurrently,
// and emits ordered events for every run state transition. It is safe
// for concurrent use: each run owns its own RunState and event channel.
type Orchestrator struct {
	graph        *Graph
	assembler    artifact.Assembler
	recorder     metrics.Recorder
	stageTimeout time.Duration
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithRecorder injects a metrics recorder.
func WithRecorder(r metrics.Recorder) OrchestratorOption {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithStageTimeout bounds each stage's execution.
func WithStageTimeout(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) { o.stageTimeout = d }
}

// NewOrchestrator creates an orchestrator over a validated graph.
func NewOrchestrator(graph *Graph, assembler artifact.Assembler, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		graph:        graph,
		assembler:    assembler,
		recorder:     metrics.NoopRecorder{},
		stageTimeout: 90 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes the pipeline for req and returns the run's event stream.
// The channel is push-style: events arrive as the run progresses, the
// terminal event is always last, and the channel is closed after it.
// Closing a subscriber connection does not stop the run; once a stage
// is dispatched it executes to completion or to its own timeout.
func (o *Orchestrator) Run(ctx context.Context, runID string, req Request) <-chan Event {
	events := make(chan Event, o.graph.Len()+2)
	go o.execute(ctx, runID, req, events)
	return events
}

func (o *Orchestrator) execute(ctx context.Context, runID string, req Request, events chan<- Event) {
	defer close(events)

	ctx = observability.WithRunID(ctx, runID)
	rs := NewRunState(runID, req)
	start := time.Now()

	o.recorder.AddActiveRuns(1)
	defer o.recorder.AddActiveRuns(-1)

	events <- startedEvent(runID)
	observability.InfoContext(ctx, "run started",
		slog.String("topic", req.Topic), slog.Int("slides", req.NumSlides))

	for _, batch := range o.graph.TopologicalBatches() {
		firstFailure := o.runBatch(ctx, rs, batch, events)
		if firstFailure != nil {
			rs.setStatus(RunFailed)
			o.recorder.IncRunOutcome("failed")
			o.recorder.ObserveRunDuration(time.Since(start))
			events <- failedEvent(runID, firstFailure.Error())
			observability.ErrorContext(ctx, "run failed",
				slog.String("kind", string(firstFailure.Kind)),
				slog.String("error", firstFailure.Message))
			return
		}
	}

	d := rs.Deck()
	if d == nil {
		// The final stage succeeded but produced no document; treat as
		// an assembly failure rather than emitting an empty complete.
		rs.setStatus(RunFailed)
		o.recorder.IncRunOutcome("failed")
		o.recorder.ObserveRunDuration(time.Since(start))
		events <- failedEvent(runID, "assembly produced no document")
		return
	}
	deck.ApplyTheme(d, req.ThemeKey)
	if d.ColorScheme.IsZero() {
		d.ColorScheme = deck.DefaultColorScheme()
	}

	handle, err := o.assembler.Assemble(ctx, d)
	if err != nil {
		rs.setStatus(RunFailed)
		o.recorder.IncRunOutcome("failed")
		o.recorder.ObserveRunDuration(time.Since(start))
		events <- failedEvent(runID, "artifact assembly failed: "+err.Error())
		observability.ErrorContext(ctx, "artifact assembly failed", slog.String("error", err.Error()))
		return
	}

	rs.setStatus(RunCompleted)
	o.recorder.IncRunOutcome("completed")
	o.recorder.ObserveRunDuration(time.Since(start))
	events <- completedEvent(runID, d, handle.Filename, handle.URL)
	observability.InfoContext(ctx, "run completed",
		slog.Int("slides", len(d.Slides)),
		slog.String("artifact", handle.Filename),
		slog.Duration("duration", time.Since(start)))
}

// runBatch dispatches every node of the batch concurrently and waits at
// the barrier until all of them resolve. Each node's progress event is
// emitted as soon as that node completes. On failure the batch still
// drains (siblings finish, nothing is cancelled mid-flight) and the
// first failure observed is returned; later batches are never
// dispatched.
func (o *Orchestrator) runBatch(ctx context.Context, rs *RunState, batch []string, events chan<- Event) *StageFailure {
	// A plain errgroup (no derived context) so a failing stage never
	// cancels its siblings; the group keeps the first error it sees.
	var g errgroup.Group
	for _, stageID := range batch {
		node, ok := o.graph.Node(stageID)
		if !ok {
			// Unreachable for a graph built by Build.
			return &StageFailure{Kind: FailureExternalCallFailed, Message: "unknown stage " + stageID}
		}
		g.Go(func() error {
			if failure := o.runStage(ctx, rs, node, events); failure != nil {
				return failure
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		var failure *StageFailure
		if errors.As(err, &failure) {
			return failure
		}
		return &StageFailure{Kind: FailureExternalCallFailed, Message: err.Error()}
	}
	return nil
}

// runStage executes one node with its own timeout, records the result,
// and emits the node's progress event immediately on success.
func (o *Orchestrator) runStage(ctx context.Context, rs *RunState, node Node, events chan<- Event) *StageFailure {
	sctx, cancel := context.WithTimeout(observability.WithStage(ctx, node.ID), o.stageTimeout)
	defer cancel()

	start := time.Now()
	observability.DebugContext(sctx, "stage started")

	payload, err := node.Run(sctx, rs)
	elapsed := time.Since(start)
	o.recorder.ObserveStageDuration(node.ID, elapsed)

	if err != nil {
		failure := classifyFailure(err)
		rs.record(node.ID, StageResult{Failure: failure})
		o.recorder.IncStageResult(node.ID, metrics.ResultFailure)
		observability.ErrorContext(sctx, "stage failed",
			slog.String("kind", string(failure.Kind)),
			slog.Duration("duration", elapsed),
			slog.String("error", failure.Message))
		return failure
	}

	rs.record(node.ID, StageResult{Payload: payload})
	o.recorder.IncStageResult(node.ID, metrics.ResultSuccess)
	observability.DebugContext(sctx, "stage completed", slog.Duration("duration", elapsed))
	events <- progressEvent(rs.RunID, node.ID, node.Status)
	return nil
}
