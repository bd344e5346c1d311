// Package selection tracks which attachment of a bubble is selected for
// preview and debounces the transition between selections.
package selection

import (
	"sync"
	"time"

	"bubbleview/internal/preview"
)

// DefaultDelay is how long a selection change stays in transition.
const DefaultDelay = 200 * time.Millisecond

// State is the transition state of a Controller.
type State int

const (
	Idle State = iota
	Transitioning
)

func (s State) String() string {
	if s == Transitioning {
		return "transitioning"
	}
	return "idle"
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Snapshot is a consistent view of a Controller at one instant.
type Snapshot struct {
	// Selected is the most recently requested attachment.
	Selected string `json:"selected"`
	// Active is the attachment the preview shows. It lags Selected until
	// the transition settles.
	Active    string `json:"active"`
	State     State  `json:"state"`
	Direction int    `json:"direction"`
}

// DisplayState is the state the selected attachment's preview should be
// drawn in, read from the snapshot alone.
func (s Snapshot) DisplayState() preview.DisplayState {
	return preview.DisplayState{
		Selected:      s.Selected != "",
		Transitioning: s.State == Transitioning,
	}
}

// Option configures a Controller.
type Option func(*Controller)

// WithDelay sets the transition window. Negative values are ignored.
func WithDelay(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.delay = d
		}
	}
}

// WithOnSettle registers fn to run each time a transition settles. fn runs
// on the timer goroutine and must not call Close.
func WithOnSettle(fn func(Snapshot)) Option {
	return func(c *Controller) {
		c.onSettle = fn
	}
}

// Controller owns the selection state of one bubble view. Every Select
// restarts the transition timer, so a burst of selections settles once,
// on the last target.
type Controller struct {
	mu        sync.Mutex
	ids       []string
	positions map[string]int
	delay     time.Duration
	onSettle  func(Snapshot)

	selected  string
	active    string
	state     State
	direction int

	timer      *time.Timer
	generation uint64
	closed     bool

	// settling is held while onSettle runs so Close can wait it out.
	settling sync.Mutex
}

// New builds a controller over the attachment ids of a bubble in display
// order. The first id starts out selected.
func New(ids []string, opts ...Option) *Controller {
	c := &Controller{
		positions: make(map[string]int, len(ids)),
		delay:     DefaultDelay,
	}
	for _, id := range ids {
		if _, dup := c.positions[id]; dup || id == "" {
			continue
		}
		c.positions[id] = len(c.ids)
		c.ids = append(c.ids, id)
	}
	if len(c.ids) > 0 {
		c.selected = c.ids[0]
		c.active = c.ids[0]
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Select requests id. It returns false for an unknown id or a closed
// controller. Selecting the current attachment while idle changes nothing.
func (c *Controller) Select(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	target, ok := c.positions[id]
	if !ok {
		return false
	}
	if id == c.selected && c.state == Idle {
		return true
	}

	c.direction = sign(target - c.positions[c.selected])
	c.selected = id
	c.state = Transitioning
	c.generation++
	gen := c.generation

	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.delay, func() { c.settle(gen) })
	return true
}

// SelectIndex selects the attachment at display position i, as swipe
// navigation does.
func (c *Controller) SelectIndex(i int) bool {
	c.mu.Lock()
	if i < 0 || i >= len(c.ids) {
		c.mu.Unlock()
		return false
	}
	id := c.ids[i]
	c.mu.Unlock()
	return c.Select(id)
}

// Current returns the selection state.
func (c *Controller) Current() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// DisplayState is the state the preview of id should be drawn in.
func (c *Controller) DisplayState(id string) preview.DisplayState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return preview.DisplayState{
		Selected:      id != "" && id == c.selected,
		Transitioning: c.state == Transitioning,
	}
}

// Close cancels a pending transition. Once Close returns no settle
// callback runs and Select reports false.
func (c *Controller) Close() {
	c.settling.Lock()
	defer c.settling.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) settle(gen uint64) {
	c.settling.Lock()
	defer c.settling.Unlock()

	c.mu.Lock()
	if c.closed || gen != c.generation {
		c.mu.Unlock()
		return
	}
	c.active = c.selected
	c.state = Idle
	snap := c.snapshot()
	fn := c.onSettle
	c.mu.Unlock()

	if fn != nil {
		fn(snap)
	}
}

func (c *Controller) snapshot() Snapshot {
	return Snapshot{
		Selected:  c.selected,
		Active:    c.active,
		State:     c.state,
		Direction: c.direction,
	}
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}
