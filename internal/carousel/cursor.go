// Package carousel keeps the index of a rotating presentation valid while the
// underlying collection grows and shrinks.
package carousel

import "sync"

type Direction string

const (
	Forward  Direction = "forward"
	Backward Direction = "backward"
)

// State is a snapshot of a Cursor.
type State struct {
	Index     int       `json:"index"`
	Total     int       `json:"total"`
	Direction Direction `json:"direction"`
	Auto      bool      `json:"auto"`
}

// Empty reports whether there is nothing to show.
func (s State) Empty() bool {
	return s.Total == 0
}

// Cursor is the presentation index of one rotating view. The zero value is
// not usable; use NewCursor.
//
// Index always satisfies 0 <= Index < Total, or Index == 0 when Total == 0.
type Cursor struct {
	mu sync.Mutex
	st State
}

// NewCursor returns a cursor over total items with auto rotation on.
func NewCursor(total int) *Cursor {
	c := &Cursor{st: State{Direction: Forward, Auto: true}}
	c.st.Total = max(0, total)
	return c
}

// FromState rebuilds a cursor from a state held by a viewer and fits it to
// total items with the same rule as Resize.
func FromState(st State, total int) *Cursor {
	if st.Index < 0 {
		st.Index = 0
	}
	if st.Direction != Backward {
		st.Direction = Forward
	}
	c := &Cursor{st: st}
	c.Resize(total)
	return c
}

func (c *Cursor) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st
}

// Next moves forward manually and stops auto rotation.
func (c *Cursor) Next() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.st.Auto = false
	c.step(Forward)
	return c.st
}

// Prev moves backward manually and stops auto rotation.
func (c *Cursor) Prev() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.st.Auto = false
	c.step(Backward)
	return c.st
}

func (c *Cursor) SetAuto(on bool) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.st.Auto = on
	return c.st
}

// Tick advances one step when auto rotation is on. It reports whether the
// index moved.
func (c *Cursor) Tick() (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.st.Auto || c.st.Total < 2 {
		return c.st, false
	}
	c.step(Forward)
	return c.st, true
}

// Resize applies a new item count. An index that fell off the end is moved
// to the second-to-last item so the view stays close to where it was.
func (c *Cursor) Resize(total int) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.st.Total = max(0, total)
	if c.st.Index >= c.st.Total {
		c.st.Index = max(0, c.st.Total-2)
	}
	return c.st
}

func (c *Cursor) step(d Direction) {
	c.st.Direction = d
	if c.st.Total == 0 {
		c.st.Index = 0
		return
	}
	switch d {
	case Forward:
		c.st.Index = (c.st.Index + 1) % c.st.Total
	case Backward:
		c.st.Index = (c.st.Index - 1 + c.st.Total) % c.st.Total
	}
}
