package artifact

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/deckforge/internal/deck"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Renewable Energy", "renewable-energy"},
		{"  AI & Robotics!  ", "ai-robotics"},
		{"Café Économie", "cafe-economie"},
		{"multi---dash", "multi-dash"},
		{"", ""},
		{"!!!", ""},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Slugify(tc.in), "Slugify(%q)", tc.in)
	}
}

func TestJSONAssembler_WritesArtifact(t *testing.T) {
	dir := t.TempDir()
	a, err := NewJSONAssembler(dir)
	require.NoError(t, err)

	d := &deck.Deck{
		Topic:  "Renewable Energy",
		Slides: []deck.Slide{{SlideNumber: 1, Title: "Intro"}},
	}
	handle, err := a.Assemble(context.Background(), d)
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(handle.Filename, "ppt_renewable-energy_"))
	require.True(t, strings.HasSuffix(handle.Filename, ".json"))
	require.Equal(t, "/api/download/"+handle.Filename, handle.URL)
	require.Equal(t, filepath.Join(dir, handle.Filename), handle.Path)

	data, err := os.ReadFile(handle.Path)
	require.NoError(t, err)
	var got deck.Deck
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, "Renewable Energy", got.Topic)
	require.Len(t, got.Slides, 1)
}

func TestJSONAssembler_UnsluggableTopicGetsGenericName(t *testing.T) {
	a, err := NewJSONAssembler(t.TempDir())
	require.NoError(t, err)

	handle, err := a.Assemble(context.Background(), &deck.Deck{Topic: "!!!"})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(handle.Filename, "ppt_deck_"))
}

func TestJSONAssembler_HonorsCancelledContext(t *testing.T) {
	a, err := NewJSONAssembler(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = a.Assemble(ctx, &deck.Deck{Topic: "x"})
	require.Error(t, err)
}

func TestJSONAssembler_FilenamesAreUnique(t *testing.T) {
	a, err := NewJSONAssembler(t.TempDir())
	require.NoError(t, err)

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		handle, err := a.Assemble(context.Background(), &deck.Deck{Topic: "same topic"})
		require.NoError(t, err)
		require.False(t, seen[handle.Filename], "duplicate artifact filename %s", handle.Filename)
		seen[handle.Filename] = true
	}
}
