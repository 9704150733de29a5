// Package palette holds the UI colour schemes. Palettes are decorative; the
// renderer doesn't use them.
package palette

import (
	"fmt"

	"github.com/mazznoer/csscolorparser"
	"honnef.co/go/color"
	"honnef.co/go/prism/gfx"
	"honnef.co/go/prism/jmath"
)

// Entry is one colour scheme.
type Entry struct {
	Background *color.Color
	Foreground *color.Color
	Accent     *color.Color
}

// Hex holds the textual form of an entry, as found in configuration files.
type Hex struct {
	Background string `toml:"bg"`
	Foreground string `toml:"fg"`
	Accent     string `toml:"accent"`
}

var builtin = []Hex{
	{"#250EAE", "#FFFFFF", "#46FF5D"},
	{"#330835", "#FFFFFF", "#d3e775"},
	{"#0d183a", "#FFFFFF", "#c4f941"},
	{"#592851", "#FFFFFF", "#f1e729"},
}

// ParseColor parses any CSS colour, such as "#2A16AD" or "rebeccapurple".
func ParseColor(s string) (*color.Color, error) {
	c, err := csscolorparser.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return gfx.SRGB(c.R, c.G, c.B, c.A), nil
}

func (h Hex) Parse() (Entry, error) {
	bg, err := ParseColor(h.Background)
	if err != nil {
		return Entry{}, err
	}
	fg, err := ParseColor(h.Foreground)
	if err != nil {
		return Entry{}, err
	}
	accent, err := ParseColor(h.Accent)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Background: bg, Foreground: fg, Accent: accent}, nil
}

// Linear returns the linear RGBA components of background, foreground and
// accent.
func (e Entry) Linear() [3][4]float64 {
	return [3][4]float64{
		gfx.Linear(e.Background),
		gfx.Linear(e.Foreground),
		gfx.Linear(e.Accent),
	}
}

// List is a non-empty, cyclic list of colour schemes with a current entry.
type List struct {
	entries []Entry
	current int
}

// Default returns the built-in palettes.
func Default() *List {
	l, err := Parse(builtin)
	if err != nil {
		panic(err)
	}
	return l
}

// Parse parses hex entries into a list. An empty input yields the built-in
// palettes.
func Parse(hex []Hex) (*List, error) {
	if len(hex) == 0 {
		hex = builtin
	}
	l := &List{entries: make([]Entry, len(hex))}
	for i, h := range hex {
		e, err := h.Parse()
		if err != nil {
			return nil, fmt.Errorf("palette entry %d: %w", i, err)
		}
		l.entries[i] = e
	}
	return l, nil
}

func (l *List) Len() int { return len(l.entries) }

// Index returns the index of the current entry.
func (l *List) Index() int { return l.current }

func (l *List) Current() Entry { return l.entries[l.current] }

// At returns entry i, clamped into range.
func (l *List) At(i int) Entry {
	return l.entries[jmath.Clamp(i, 0, len(l.entries)-1)]
}

// Next advances to the next entry, wrapping around after the last one, and
// returns it.
func (l *List) Next() Entry {
	l.current = jmath.Wrap(l.current+1, len(l.entries))
	return l.entries[l.current]
}
