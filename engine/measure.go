package engine

import (
	"fmt"

	"github.com/ByLCY/kinetype/plan"
)

// DefaultMeasureCacheSize bounds the glyph-measurement cache. Plan builds
// measure every word at the reference size and again at the fitted size, so
// a few thousand entries cover a full song with headroom.
const DefaultMeasureCacheSize = 2400

// CachedMeasurer wraps a plan.Measurer with a bounded FIFO cache. Font
// measurement walks glyph tables on every call, and plan rebuilds (viewport
// resize, font swap) re-measure largely the same words.
type CachedMeasurer struct {
	inner plan.Measurer
	cache *boundedCache[float64]
}

// NewCachedMeasurer wraps inner; capacity <= 0 means DefaultMeasureCacheSize.
func NewCachedMeasurer(inner plan.Measurer, capacity int) *CachedMeasurer {
	if capacity <= 0 {
		capacity = DefaultMeasureCacheSize
	}
	return &CachedMeasurer{inner: inner, cache: newBoundedCache[float64](capacity)}
}

// WordWidth implements plan.Measurer.
func (m *CachedMeasurer) WordWidth(text string, weight string, sizePx float64) float64 {
	key := fmt.Sprintf("%s|%s|%.2f", text, weight, sizePx)
	if w, ok := m.cache.get(key); ok {
		return w
	}
	w := m.inner.WordWidth(text, weight, sizePx)
	m.cache.put(key, w)
	return w
}

// Len reports the number of cached measurements.
func (m *CachedMeasurer) Len() int { return m.cache.len() }
