// Package scrollsync mirrors the scroll position of the source editor and
// the rendered preview by percentage of scrollable height.
package scrollsync

import (
	"math"
	"sync"
	"time"

	"github.com/yaklabco/mdnote/pkg/clock"
	"github.com/yaklabco/mdnote/pkg/debounce"
)

const (
	// DefaultThreshold is the smallest offset difference worth scrolling for.
	DefaultThreshold = 5.0

	// DefaultSettle is how long a programmatic scroll stays tagged.
	DefaultSettle = 100 * time.Millisecond
)

// Metrics describes a scrollable viewport.
type Metrics struct {
	ScrollTop    float64
	ScrollHeight float64
	ClientHeight float64
}

// MaxScroll returns the largest valid ScrollTop.
func (m Metrics) MaxScroll() float64 {
	return m.ScrollHeight - m.ClientHeight
}

// Percentage returns how far m is scrolled, in [0, 1] for valid metrics.
// It returns false when the viewport cannot scroll.
func Percentage(m Metrics) (float64, bool) {
	maxScroll := m.MaxScroll()
	if maxScroll <= 0 {
		return 0, false
	}
	return m.ScrollTop / maxScroll, true
}

// Target returns the ScrollTop placing m at pct of its scrollable height.
func Target(pct float64, m Metrics) float64 {
	maxScroll := m.MaxScroll()
	if maxScroll <= 0 {
		return 0
	}
	return pct * maxScroll
}

// Viewport is a scrollable surface.
type Viewport interface {
	Metrics() Metrics
	ScrollTo(top float64)
}

// Side identifies one of the two synchronized viewports.
type Side int

// Sides.
const (
	Editor Side = iota
	Preview
)

func (s Side) String() string {
	if s == Editor {
		return "editor"
	}
	return "preview"
}

func (s Side) other() Side {
	if s == Editor {
		return Preview
	}
	return Editor
}

type tag struct {
	set    bool
	source Side
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithClock sets the clock used to clear scroll tags.
func WithClock(clk clock.Clock) Option {
	return func(s *Synchronizer) {
		s.clock = clk
	}
}

// WithThreshold overrides DefaultThreshold.
func WithThreshold(px float64) Option {
	return func(s *Synchronizer) {
		s.threshold = px
	}
}

// WithSettle overrides DefaultSettle.
func WithSettle(d time.Duration) Option {
	return func(s *Synchronizer) {
		s.settle = d
	}
}

// Synchronizer keeps the editor and preview viewports aligned.
type Synchronizer struct {
	viewports [2]Viewport
	clock     clock.Clock
	threshold float64
	settle    time.Duration
	clearTags [2]*debounce.Debouncer

	mu      sync.Mutex
	tags    [2]tag
	enabled bool
}

// New creates an enabled Synchronizer.
func New(editor, preview Viewport, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		viewports: [2]Viewport{editor, preview},
		clock:     clock.DefaultClock{},
		threshold: DefaultThreshold,
		settle:    DefaultSettle,
		enabled:   true,
	}
	for _, opt := range opts {
		opt(s)
	}
	for i := range s.clearTags {
		s.clearTags[i] = debounce.New(s.clock, s.settle)
	}
	return s
}

// SetEnabled turns synchronization on or off.
func (s *Synchronizer) SetEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = enabled
}

// Tagged reports whether side is marked as scrolled programmatically.
func (s *Synchronizer) Tagged(side Side) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tags[side].set
}

// OnScroll handles a scroll event from side. It reports whether the other
// viewport was moved. Every accepted event restarts the settle timer of a
// tag it set earlier, even when the other viewport stays put.
func (s *Synchronizer) OnScroll(side Side) bool {
	dstSide := side.other()

	s.mu.Lock()
	if !s.enabled {
		s.mu.Unlock()
		return false
	}
	if t := s.tags[side]; t.set && t.source == dstSide {
		s.mu.Unlock()
		return false
	}
	tagged := s.tags[dstSide].set
	s.mu.Unlock()

	if tagged {
		s.armClear(dstSide)
	}

	src := s.viewports[side]
	dst := s.viewports[dstSide]
	if src == nil || dst == nil {
		return false
	}

	pct, ok := Percentage(src.Metrics())
	if !ok {
		return false
	}

	dstMetrics := dst.Metrics()
	target := Target(pct, dstMetrics)
	if math.Abs(dstMetrics.ScrollTop-target) <= s.threshold {
		return false
	}

	s.mu.Lock()
	s.tags[dstSide] = tag{set: true, source: side}
	s.mu.Unlock()
	s.armClear(dstSide)

	dst.ScrollTo(target)
	return true
}

// armClear restarts the timer that drops side's tag.
func (s *Synchronizer) armClear(side Side) {
	s.clearTags[side].Trigger(func() {
		s.mu.Lock()
		s.tags[side] = tag{}
		s.mu.Unlock()
	})
}

// Stop drops pending tag timers.
func (s *Synchronizer) Stop() {
	for _, d := range s.clearTags {
		d.Cancel()
	}
}

// AlignTop scrolls the first container that can scroll so its top edge sits
// at targetTop, clamped to the container's range. It returns the index of the
// container used.
func AlignTop(containers []Viewport, targetTop float64) (int, bool) {
	for i, container := range containers {
		if container == nil {
			continue
		}
		maxScroll := container.Metrics().MaxScroll()
		if maxScroll <= 0 {
			continue
		}
		container.ScrollTo(math.Max(0, math.Min(targetTop, maxScroll)))
		return i, true
	}
	return -1, false
}
