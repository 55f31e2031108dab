// Package pipeline implements the generation workflow: a validated DAG
// of stages, an orchestrator that executes them batch by batch, and the
// event vocabulary emitted while a run progresses.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// StageFunc executes one stage against the accumulated run state and
// returns the stage's payload.
type StageFunc func(ctx context.Context, rs *RunState) (any, error)

// Node declares one stage and its upstream dependencies.
type Node struct {
	ID        string
	DependsOn []string
	Run       StageFunc
	// Status is the human-readable progress line announced when the
	// stage completes.
	Status string
}

// Graph is an immutable, validated stage DAG. It is safe to share
// (read-only) across concurrent runs.
type Graph struct {
	nodes   []Node
	byID    map[string]int // id -> declaration index
	batches [][]string
}

// ConfigErrorKind distinguishes graph construction failures.
type ConfigErrorKind string

const (
	ConfigErrCycle             ConfigErrorKind = "cycle"
	ConfigErrUnknownDependency ConfigErrorKind = "unknown_dependency"
	ConfigErrDuplicateNode     ConfigErrorKind = "duplicate_node"
)

// ConfigError reports a malformed graph. It is fatal at startup and is
// never produced at run time.
type ConfigError struct {
	Kind  ConfigErrorKind
	Nodes []string // offending node ids
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("pipeline graph %s: %s", e.Kind, strings.Join(e.Nodes, ", "))
}

// Build validates the node set and computes the batch schedule. Every
// dependency must name a declared node and the dependency relation must
// be acyclic; violations are rejected here, once, so runs never see a
// malformed graph.
func Build(nodes []Node) (*Graph, error) {
	byID := make(map[string]int, len(nodes))
	for i, n := range nodes {
		if _, dup := byID[n.ID]; dup {
			return nil, &ConfigError{Kind: ConfigErrDuplicateNode, Nodes: []string{n.ID}}
		}
		byID[n.ID] = i
	}

	var unknown []string
	for _, n := range nodes {
		for _, dep := range n.DependsOn {
			if _, ok := byID[dep]; !ok {
				unknown = append(unknown, fmt.Sprintf("%s -> %s", n.ID, dep))
			}
		}
	}
	if len(unknown) > 0 {
		return nil, &ConfigError{Kind: ConfigErrUnknownDependency, Nodes: unknown}
	}

	batches, err := schedule(nodes, byID)
	if err != nil {
		return nil, err
	}

	return &Graph{nodes: nodes, byID: byID, batches: batches}, nil
}

// schedule performs a layered Kahn topological sort. Each batch holds
// the nodes whose dependencies are fully satisfied by earlier batches;
// ties within a batch keep declaration order so event ordering is
// deterministic across runs of the same graph.
func schedule(nodes []Node, byID map[string]int) ([][]string, error) {
	indegree := make(map[string]int, len(nodes))
	for _, n := range nodes {
		indegree[n.ID] = len(n.DependsOn)
	}
	dependents := make(map[string][]string, len(nodes))
	for _, n := range nodes {
		for _, dep := range n.DependsOn {
			dependents[dep] = append(dependents[dep], n.ID)
		}
	}

	placed := 0
	var batches [][]string
	for placed < len(nodes) {
		var batch []string
		for _, n := range nodes {
			if indegree[n.ID] == 0 {
				batch = append(batch, n.ID)
				indegree[n.ID] = -1 // consumed
			}
		}
		if len(batch) == 0 {
			// Remaining nodes all have unsatisfied dependencies: a cycle.
			var stuck []string
			for _, n := range nodes {
				if indegree[n.ID] > 0 {
					stuck = append(stuck, n.ID)
				}
			}
			sort.Strings(stuck)
			return nil, &ConfigError{Kind: ConfigErrCycle, Nodes: stuck}
		}
		for _, id := range batch {
			for _, next := range dependents[id] {
				indegree[next]--
			}
		}
		batches = append(batches, batch)
		placed += len(batch)
	}
	return batches, nil
}

// TopologicalBatches returns the batch schedule. Each node appears in
// exactly one batch and every dependency lives in a strictly earlier
// batch. The result is owned by the graph; callers must not mutate it.
func (g *Graph) TopologicalBatches() [][]string {
	return g.batches
}

// Node returns the declared node for id.
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.byID[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// StageIDs returns all node ids in declaration order.
func (g *Graph) StageIDs() []string {
	ids := make([]string, len(g.nodes))
	for i, n := range g.nodes {
		ids[i] = n.ID
	}
	return ids
}

// Len returns the number of declared stages.
func (g *Graph) Len() int { return len(g.nodes) }
