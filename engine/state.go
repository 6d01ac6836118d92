package engine

import (
	"github.com/ByLCY/kinetype/direction"
	"github.com/ByLCY/kinetype/plan"
)

// Render-session state. One TextState belongs to exactly one Renderer; two
// simultaneous renders (side-by-side comparison) each get their own instance.

// boundedCache is an insertion-order (FIFO) evicting map with an explicit
// capacity. Eviction order is deliberately not LRU: entries are cheap to
// recompute and FIFO keeps eviction deterministic for tests.
type boundedCache[V any] struct {
	capacity int
	entries  map[string]V
	order    []string
}

func newBoundedCache[V any](capacity int) *boundedCache[V] {
	if capacity < 1 {
		capacity = 1
	}
	return &boundedCache[V]{
		capacity: capacity,
		entries:  make(map[string]V, capacity),
	}
}

func (c *boundedCache[V]) get(key string) (V, bool) {
	v, ok := c.entries[key]
	return v, ok
}

func (c *boundedCache[V]) put(key string, v V) {
	if _, exists := c.entries[key]; !exists {
		if len(c.order) >= c.capacity {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = v
}

func (c *boundedCache[V]) len() int { return len(c.entries) }

func (c *boundedCache[V]) reset() {
	c.entries = make(map[string]V, c.capacity)
	c.order = c.order[:0]
}

// Point is a screen position in px.
type Point struct {
	X, Y float64
}

// WordHistory tracks a normalized token's recurrences across the playback
// session. Created on first appearance, updated every appearance, never
// deleted until teardown; evolution rules key off Count.
type WordHistory struct {
	Count     int
	FirstSeen float64
	LastSeen  float64
	Positions []Point // trimmed to the most recent 4
}

const maxHistoryPositions = 4

// TextState houses all per-session caches and slow-changing visual anchors.
type TextState struct {
	layout    *boundedCache[[]float64] // per-line word x-offsets
	evolution *direction.EvolutionCache
	history   map[string]*WordHistory
	cursor    plan.Cursor

	// smoothed anchors, lerped toward their targets each frame
	baselineY    float64
	offsetX      float64
	anchorsReady bool

	warnedLines map[int]bool // per-line missing-timing diagnostics, logged once
}

// newTextState builds session state with the configured cache capacity.
func newTextState(layoutCap int) *TextState {
	return &TextState{
		layout:      newBoundedCache[[]float64](layoutCap),
		evolution:   direction.NewEvolutionCache(),
		history:     map[string]*WordHistory{},
		warnedLines: map[int]bool{},
	}
}

// track records a drawn occurrence of a normalized token. appearance is the
// plan-wide 1-based occurrence index, so re-rendering the same occurrence
// over many frames advances the counter exactly once, and counts survive
// seeks deterministically.
func (s *TextState) track(norm string, appearance int, now, x, y float64) *WordHistory {
	h, ok := s.history[norm]
	if !ok {
		h = &WordHistory{FirstSeen: now}
		s.history[norm] = h
	}
	if appearance > h.Count {
		h.Count = appearance
		h.Positions = append(h.Positions, Point{X: x, Y: y})
		if len(h.Positions) > maxHistoryPositions {
			h.Positions = h.Positions[len(h.Positions)-maxHistoryPositions:]
		}
	}
	h.LastSeen = now
	return h
}

// History exposes a token's history (nil when never drawn). Read-only use.
func (s *TextState) History(norm string) *WordHistory {
	return s.history[norm]
}

// InvalidateDirection clears caches derived from the direction document.
// Call when the document is replaced mid-session.
func (s *TextState) InvalidateDirection() {
	s.evolution.Invalidate()
	s.layout.reset()
}

// resetAnchors forgets smoothing state (used on seek-to-zero/teardown).
func (s *TextState) resetAnchors() {
	s.anchorsReady = false
	s.cursor.Reset()
}
