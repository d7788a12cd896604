package lighting

import (
	"errors"
	"fmt"
)

// Slider bounds shared by all three lighting fields.
const (
	MinValue = -50
	MaxValue = 50
)

var ErrOutOfRange = errors.New("lighting value out of range")

// State is one point-in-time lighting configuration.
type State struct {
	Brightness int `json:"brightness" yaml:"brightness"`
	Contrast   int `json:"contrast" yaml:"contrast"`
	Warmth     int `json:"warmth" yaml:"warmth"`
}

// Partial carries the fields a caller wants to change. Nil fields are left alone.
type Partial struct {
	Brightness *int `json:"brightness,omitempty"`
	Contrast   *int `json:"contrast,omitempty"`
	Warmth     *int `json:"warmth,omitempty"`
}

// Validate reports the first field outside [MinValue, MaxValue].
func (s State) Validate() error {
	for _, f := range []struct {
		name  string
		value int
	}{
		{"brightness", s.Brightness},
		{"contrast", s.Contrast},
		{"warmth", s.Warmth},
	} {
		if f.value < MinValue || f.value > MaxValue {
			return fmt.Errorf("%w: %s=%d (allowed %d..%d)", ErrOutOfRange, f.name, f.value, MinValue, MaxValue)
		}
	}
	return nil
}

// Apply returns s with the non-nil fields of p merged in.
func (s State) Apply(p Partial) State {
	if p.Brightness != nil {
		s.Brightness = *p.Brightness
	}
	if p.Contrast != nil {
		s.Contrast = *p.Contrast
	}
	if p.Warmth != nil {
		s.Warmth = *p.Warmth
	}
	return s
}

// History is a linear undo/redo log of committed lighting snapshots plus the live value.
// entries is never empty and cursor always addresses one of its elements.
type History struct {
	entries []State
	cursor  int
	current State
}

// NewHistory returns a history seeded with a single zero snapshot.
func NewHistory() *History {
	return &History{entries: []State{{}}}
}

// Adjust merges p into the live value without touching the committed history.
func (h *History) Adjust(p Partial) error {
	next := h.current.Apply(p)
	if err := next.Validate(); err != nil {
		return err
	}
	h.current = next
	return nil
}

// Commit records the live value as a new snapshot when it differs from the one under
// the cursor. Any redoable snapshots past the cursor are discarded.
func (h *History) Commit() bool {
	if h.current == h.entries[h.cursor] {
		return false
	}
	h.entries = append(h.entries[:h.cursor+1:h.cursor+1], h.current)
	h.cursor = len(h.entries) - 1
	return true
}

func (h *History) Undo() bool {
	if !h.CanUndo() {
		return false
	}
	h.cursor--
	h.current = h.entries[h.cursor]
	return true
}

func (h *History) Redo() bool {
	if !h.CanRedo() {
		return false
	}
	h.cursor++
	h.current = h.entries[h.cursor]
	return true
}

func (h *History) CanUndo() bool { return h.cursor > 0 }

func (h *History) CanRedo() bool { return h.cursor < len(h.entries)-1 }

// Current is the live value, committed or not.
func (h *History) Current() State { return h.current }

func (h *History) Cursor() int { return h.cursor }

func (h *History) Len() int { return len(h.entries) }

// Entries returns a copy of the committed snapshots.
func (h *History) Entries() []State {
	out := make([]State, len(h.entries))
	copy(out, h.entries)
	return out
}
