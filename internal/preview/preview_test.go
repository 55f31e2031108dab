package preview

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/deckforge/internal/deck"
)

func deckWithSlides(n int) *deck.Deck {
	d := &deck.Deck{Topic: "Topic"}
	for i := 0; i < n; i++ {
		d.Slides = append(d.Slides, deck.Slide{SlideNumber: i + 1})
	}
	return d
}

func TestMachine_StartsEmpty(t *testing.T) {
	m := New()
	require.Equal(t, StateEmpty, m.State())

	i, slide := m.Current()
	require.Equal(t, -1, i)
	require.Nil(t, slide)
}

func TestMachine_NavigationIsNoopWhenEmpty(t *testing.T) {
	m := New()
	require.NotPanics(t, func() {
		m.Next()
		m.Prev()
	})
	require.Equal(t, StateEmpty, m.State())
}

func TestMachine_LoadRejectsEmptyDeck(t *testing.T) {
	m := New()
	require.Error(t, m.Load(nil))
	require.Error(t, m.Load(&deck.Deck{}))
	require.Equal(t, StateEmpty, m.State())
}

func TestMachine_LoadResetsToFirstSlide(t *testing.T) {
	m := New()
	require.NoError(t, m.Load(deckWithSlides(5)))
	m.Next()
	m.Next()

	require.NoError(t, m.Load(deckWithSlides(3)))
	i, _ := m.Current()
	require.Zero(t, i)
	require.Equal(t, StateReady, m.State())
}

func TestMachine_NextWrapsAround(t *testing.T) {
	m := New()
	n := 4
	require.NoError(t, m.Load(deckWithSlides(n)))

	// N advances return to the start.
	for i := 0; i < n; i++ {
		m.Next()
	}
	i, _ := m.Current()
	require.Zero(t, i)
}

func TestMachine_PrevWrapsToLastSlide(t *testing.T) {
	m := New()
	n := 4
	require.NoError(t, m.Load(deckWithSlides(n)))

	m.Prev()
	i, _ := m.Current()
	require.Equal(t, n-1, i)
}

func TestMachine_Goto(t *testing.T) {
	m := New()
	require.NoError(t, m.Load(deckWithSlides(4)))

	require.NoError(t, m.Goto(2))
	i, slide := m.Current()
	require.Equal(t, 2, i)
	require.Equal(t, 3, slide.SlideNumber)

	require.Error(t, m.Goto(-1))
	require.Error(t, m.Goto(4))
	i, _ = m.Current()
	require.Equal(t, 2, i, "failed Goto must not move the position")
}

func TestMachine_SelectThemeRejectsUnknownKey(t *testing.T) {
	m := New()
	require.Equal(t, deck.DefaultThemeKey, m.Theme())

	require.NoError(t, m.SelectTheme("ocean"))
	require.Equal(t, "ocean", m.Theme())

	require.Error(t, m.SelectTheme("neon-zebra"))
	require.Equal(t, "ocean", m.Theme())
}

func TestMachine_DeckColorsWinOverPreset(t *testing.T) {
	m := New()
	d := deckWithSlides(2)
	d.ColorScheme = deck.ColorScheme{Primary: "#123456", Background: "#FFFFFF"}
	require.NoError(t, m.Load(d))
	require.NoError(t, m.SelectTheme("tech"))

	require.Equal(t, "#123456", m.Colors().Primary)
}

func TestMachine_PresetFillsMissingColors(t *testing.T) {
	m := New()
	require.NoError(t, m.Load(deckWithSlides(2)))
	require.NoError(t, m.SelectTheme("tech"))

	preset, _ := deck.ThemeByKey("tech")
	require.Equal(t, preset.Colors, m.Colors())
}
