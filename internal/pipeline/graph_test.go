package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func node(id string, deps ...string) Node {
	return Node{
		ID:        id,
		DependsOn: deps,
		Run:       func(ctx context.Context, rs *RunState) (any, error) { return id, nil },
	}
}

func TestBuild_SingleBatchForIndependentNodes(t *testing.T) {
	g, err := Build([]Node{node("a"), node("b"), node("c")})
	require.NoError(t, err)
	require.Equal(t, [][]string{{"a", "b", "c"}}, g.TopologicalBatches())
}

func TestBuild_BatchesRespectDependencies(t *testing.T) {
	g, err := Build([]Node{
		node("a"),
		node("b"),
		node("c", "a"),
		node("d", "b", "c"),
	})
	require.NoError(t, err)

	batches := g.TopologicalBatches()
	require.Equal(t, [][]string{{"a", "b"}, {"c"}, {"d"}}, batches)
}

func TestBuild_TieBreakFollowsDeclarationOrder(t *testing.T) {
	g, err := Build([]Node{node("z"), node("m"), node("a")})
	require.NoError(t, err)
	require.Equal(t, [][]string{{"z", "m", "a"}}, g.TopologicalBatches())
}

func TestBuild_RejectsCycle(t *testing.T) {
	_, err := Build([]Node{node("a", "b"), node("b", "a")})
	require.Error(t, err)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, ConfigErrCycle, cfgErr.Kind)
}

func TestBuild_RejectsSelfDependency(t *testing.T) {
	_, err := Build([]Node{node("a", "a")})
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, ConfigErrCycle, cfgErr.Kind)
}

func TestBuild_RejectsUnknownDependency(t *testing.T) {
	_, err := Build([]Node{node("a", "ghost")})
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, ConfigErrUnknownDependency, cfgErr.Kind)
	require.Contains(t, cfgErr.Error(), "ghost")
}

func TestBuild_RejectsDuplicateNode(t *testing.T) {
	_, err := Build([]Node{node("a"), node("a")})
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, ConfigErrDuplicateNode, cfgErr.Kind)
}

func TestBuildDeckGraph_BatchShape(t *testing.T) {
	g, err := BuildDeckGraph(nil)
	require.NoError(t, err)

	require.Equal(t, [][]string{
		{StageSearchResources, StageGenerateThemeStyle},
		{StageGenerateColorScheme, StageGenerateContentOutline},
		{StageDesignSlideLayouts, StageGenerateDetailedContent},
		{StageAssemblePptData},
	}, g.TopologicalBatches())
}

func TestGraph_StageIDsCoverEveryNodeOnce(t *testing.T) {
	g, err := BuildDeckGraph(nil)
	require.NoError(t, err)

	ids := g.StageIDs()
	require.Len(t, ids, g.Len())
	seen := make(map[string]bool)
	for _, id := range ids {
		require.False(t, seen[id], "stage %s listed twice", id)
		seen[id] = true
	}
}
