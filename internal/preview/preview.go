// Package preview holds the client-side slide navigation state for a
// generated deck.
package preview

import (
	"git.home.luguber.info/inful/deckforge/internal/deck"
	dferrors "git.home.luguber.info/inful/deckforge/internal/errors"
)

// State names the preview lifecycle phase.
type State string

const (
	// StateEmpty means no deck is loaded; navigation is a no-op.
	StateEmpty State = "empty"
	// StateReady means a deck is loaded and a current slide is defined.
	StateReady State = "ready"
)

// Machine tracks which slide of a loaded deck is current and which
// theme is applied. Navigation wraps around in both directions.
type Machine struct {
	deck    *deck.Deck
	current int
	theme   string
}

// New returns an empty preview with no deck loaded.
func New() *Machine {
	return &Machine{theme: deck.DefaultThemeKey}
}

// State reports whether a deck is loaded.
func (m *Machine) State() State {
	if m.deck == nil || len(m.deck.Slides) == 0 {
		return StateEmpty
	}
	return StateReady
}

// Load replaces the current deck and resets the position to the first
// slide. A nil or empty deck is rejected and the existing deck, if
// any, is kept.
func (m *Machine) Load(d *deck.Deck) error {
	if d == nil || len(d.Slides) == 0 {
		return dferrors.ValidationError("cannot load an empty deck")
	}
	m.deck = d
	m.current = 0
	return nil
}

// Deck returns the loaded deck, or nil when empty.
func (m *Machine) Deck() *deck.Deck {
	return m.deck
}

// Current returns the current slide index and the slide itself. In the
// empty state it returns -1 and nil.
func (m *Machine) Current() (int, *deck.Slide) {
	if m.State() == StateEmpty {
		return -1, nil
	}
	return m.current, &m.deck.Slides[m.current]
}

// Next advances to the following slide, wrapping from the last slide
// back to the first. In the empty state it does nothing.
func (m *Machine) Next() {
	m.step(1)
}

// Prev moves to the preceding slide, wrapping from the first slide to
// the last. In the empty state it does nothing.
func (m *Machine) Prev() {
	m.step(-1)
}

func (m *Machine) step(delta int) {
	if m.State() == StateEmpty {
		return
	}
	n := len(m.deck.Slides)
	m.current = ((m.current+delta)%n + n) % n
}

// Goto jumps to the given slide index if it is in range.
func (m *Machine) Goto(index int) error {
	if m.State() == StateEmpty {
		return dferrors.ValidationError("no deck loaded")
	}
	if index < 0 || index >= len(m.deck.Slides) {
		return dferrors.ValidationError("slide index out of range")
	}
	m.current = index
	return nil
}

// Theme returns the currently selected theme key.
func (m *Machine) Theme() string {
	return m.theme
}

// SelectTheme switches the preset used for rendering. Unknown keys are
// rejected and the previous selection stays in effect.
func (m *Machine) SelectTheme(key string) error {
	if _, ok := deck.ThemeByKey(key); !ok {
		return dferrors.ValidationError("unknown theme: " + key)
	}
	m.theme = key
	return nil
}

// Colors resolves the effective color scheme. Colors the deck itself
// carries win over the selected preset; the preset only fills the gap
// for decks generated without one.
func (m *Machine) Colors() deck.ColorScheme {
	if m.deck != nil && !m.deck.ColorScheme.IsZero() {
		return m.deck.ColorScheme
	}
	preset, ok := deck.ThemeByKey(m.theme)
	if !ok {
		preset, _ = deck.ThemeByKey(deck.DefaultThemeKey)
	}
	return preset.Colors
}
