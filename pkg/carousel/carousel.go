// Package carousel implements the per-project image carousel: a wrap-around
// slide index, a recurring autoplay timer, and hover pause.
//
// A Controller owns its state and its timer. Every transition runs under the
// controller lock, so timer callbacks and user events never interleave.
package carousel

import (
	"sync"
	"time"

	"github.com/pkg/errors"
)

// DefaultInterval is the autoplay cadence.
const DefaultInterval = 4000 * time.Millisecond

// View presents the active slide. Show must mark exactly slide index and its
// indicator active. It is called with the controller locked and must not call
// back into the controller.
type View interface {
	Show(index int)
}

// ViewFunc adapts a function to View.
type ViewFunc func(index int)

// Show calls f(index).
func (f ViewFunc) Show(index int) {
	f(index)
}

// Option configures a Controller.
type Option func(c *Controller)

// WithInterval overrides the autoplay cadence.
func WithInterval(d time.Duration) (opt Option) {
	opt = func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
	return opt
}

// WithClock overrides the timer source.
func WithClock(clock Clock) (opt Option) {
	opt = func(c *Controller) {
		if clock != nil {
			c.clock = clock
		}
	}
	return opt
}

// Controller is the state machine for one carousel.
type Controller struct {
	mu       sync.Mutex
	slides   int
	current  int
	hovered  bool
	closed   bool
	timer    Timer
	gen      uint64
	interval time.Duration
	clock    Clock
	view     View
}

// New creates a controller over slides images, shows slide 0 and starts autoplay.
func New(slides int, view View, opts ...Option) (c *Controller, err error) {
	if slides < 2 {
		err = errors.Errorf("carousel needs at least 2 slides, got %d", slides)
		return c, err
	}

	if view == nil {
		err = errors.New("carousel view is required")
		return c, err
	}

	c = &Controller{
		slides:   slides,
		interval: DefaultInterval,
		clock:    RealClock(),
		view:     view,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.goTo(0)
	c.startTimer()

	return c, err
}

// Len returns the slide count.
func (c *Controller) Len() (n int) {
	n = c.slides
	return n
}

// Current returns the active slide index.
func (c *Controller) Current() (index int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	index = c.current
	return index
}

// Autoplaying reports whether the autoplay timer is armed.
func (c *Controller) Autoplaying() (active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	active = c.timer != nil
	return active
}

// Next advances one slide as a user action.
func (c *Controller) Next() {
	c.manual(func() { c.goTo(c.current + 1) })
}

// Prev goes back one slide as a user action.
func (c *Controller) Prev() {
	c.manual(func() { c.goTo(c.current - 1) })
}

// Select jumps to an indicator as a user action.
func (c *Controller) Select(index int) {
	c.manual(func() { c.goTo(index) })
}

// PointerEnter pauses autoplay without moving.
func (c *Controller) PointerEnter() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.hovered {
		return
	}

	c.hovered = true
	c.stopTimer()
}

// PointerLeave resumes autoplay with a full interval.
func (c *Controller) PointerLeave() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || !c.hovered {
		return
	}

	c.hovered = false
	c.stopTimer()
	c.startTimer()
}

// Close cancels autoplay. Later transitions are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	c.stopTimer()
}

// manual cancels the timer, applies a user transition and restarts the timer
// unless the pointer is over the carousel.
func (c *Controller) manual(transition func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.stopTimer()
	transition()
	if !c.hovered {
		c.startTimer()
	}
}

func (c *Controller) goTo(index int) {
	index %= c.slides
	if index < 0 {
		index += c.slides
	}

	c.current = index
	c.view.Show(index)
}

func (c *Controller) startTimer() {
	c.gen++
	gen := c.gen
	c.timer = c.clock.AfterFunc(c.interval, func() { c.tick(gen) })
}

// stopTimer cancels the pending tick. Bumping gen drops a tick that already fired
// but has not yet taken the lock.
func (c *Controller) stopTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.gen++
}

func (c *Controller) tick(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.hovered || gen != c.gen {
		return
	}

	c.goTo(c.current + 1)
	c.startTimer()
}
