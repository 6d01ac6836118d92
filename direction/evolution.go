package direction

import (
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Evolution rules are free-text instructions authored by the AI ("grows
// larger and more luminous"). They are matched by substring against a fixed,
// ordered keyword vocabulary; unknown text silently no-ops, which keeps the
// engine forward compatible with future AI-authored phrasings. Overlapping
// matches stack: every matching group applies its adjustment.

// Adjustment is the pure numeric outcome of an evolution rule at a given
// appearance count. Multipliers are monotonic in the count and clamped so a
// word repeated forty times stays on screen instead of swallowing it.
type Adjustment struct {
	ScaleMultiplier   float64 // clamped to [*, 2.0]
	GlowRadius        float64 // px, clamped to [0, 40]
	OpacityMultiplier float64 // clamped to [0.2, *]
	YOffset           float64 // px, positive sinks the word
	Jitter            float64 // extra shake amplitude, 0..1.5
	HueShift          float64 // degrees applied to the word color
}

// Halo identifies the immediate draw side effect some keyword groups carry in
// addition to their numeric adjustment. Callers must emit the halo every
// frame and must never cache results for rules that produce one.
type Halo int

const (
	HaloNone    Halo = iota
	HaloRing         // "expands"/"aura"/"field": a ring widening with count
	HaloConsume      // "consuming": a filled halo swallowing nearby space
)

func neutralAdjustment() Adjustment {
	return Adjustment{ScaleMultiplier: 1, OpacityMultiplier: 1}
}

// evolutionVocabulary is the closed, ordered keyword table. Order is part of
// the observable behavior (stacked clamps) and must not be reshuffled.
var evolutionVocabulary = []struct {
	keywords []string
	apply    func(count float64, a *Adjustment, h *Halo)
}{
	{[]string{"larger", "bigger", "prominent"}, func(c float64, a *Adjustment, _ *Halo) {
		a.ScaleMultiplier *= minf(1.6, 1+c*0.06)
	}},
	{[]string{"glow", "luminous", "brighter"}, func(c float64, a *Adjustment, _ *Halo) {
		a.GlowRadius += minf(35, c*4)
	}},
	{[]string{"heavier", "sinking", "deeper"}, func(c float64, a *Adjustment, _ *Halo) {
		a.YOffset += minf(24, c*3)
	}},
	{[]string{"frantic", "faster", "intense"}, func(c float64, a *Adjustment, _ *Halo) {
		a.Jitter += minf(1.5, c*0.12)
	}},
	{[]string{"fades", "recedes", "quieter"}, func(c float64, a *Adjustment, _ *Halo) {
		a.OpacityMultiplier *= maxf(0.2, 1-c*0.08)
	}},
	{[]string{"expands", "aura", "field"}, func(c float64, a *Adjustment, h *Halo) {
		a.GlowRadius += minf(20, c*2)
		*h = HaloRing
	}},
	{[]string{"consuming"}, func(c float64, a *Adjustment, h *Halo) {
		a.ScaleMultiplier *= minf(2.0, 1+c*0.1)
		*h = HaloConsume
	}},
	{[]string{"color", "shifts"}, func(c float64, a *Adjustment, _ *Halo) {
		a.HueShift += c * 25
	}},
}

// ApplyEvolutionRule evaluates a rule at a 1-based appearance count. Pure:
// the same (rule, count) pair always yields the same result. The returned
// Halo, when not HaloNone, is a draw obligation for the caller.
func ApplyEvolutionRule(rule string, count int) (Adjustment, Halo) {
	adj := neutralAdjustment()
	halo := HaloNone
	if rule == "" || count <= 0 {
		return adj, halo
	}
	lower := strings.ToLower(rule)
	c := float64(count)
	for _, group := range evolutionVocabulary {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				group.apply(c, &adj, &halo)
				break
			}
		}
	}
	// global clamps bound worst-case visuals regardless of stacking
	adj.ScaleMultiplier = minf(2.0, adj.ScaleMultiplier)
	adj.GlowRadius = minf(40, adj.GlowRadius)
	adj.OpacityMultiplier = maxf(0.2, adj.OpacityMultiplier)
	return adj, halo
}

// RuleHasHalo reports whether a rule carries a draw side effect, without
// evaluating the numeric adjustments.
func RuleHasHalo(rule string) bool {
	lower := strings.ToLower(rule)
	for _, kw := range []string{"expands", "aura", "field", "consuming"} {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// ShiftColor rotates base by the adjustment's hue shift. Identity when the
// shift is zero.
func (a Adjustment) ShiftColor(base colorful.Color) colorful.Color {
	if a.HueShift == 0 {
		return base
	}
	h, s, l := base.Hsl()
	h += a.HueShift
	for h >= 360 {
		h -= 360
	}
	for h < 0 {
		h += 360
	}
	return colorful.Hsl(h, s, l).Clamped()
}

// EvolutionCache memoizes non-side-effecting rule evaluations keyed by
// (rule, appearanceCount). It is owned by the render session, never by the
// interpreter, and must be invalidated whenever the direction document
// changes mid-session.
type EvolutionCache struct {
	entries map[string]Adjustment
}

// NewEvolutionCache returns an empty cache.
func NewEvolutionCache() *EvolutionCache {
	return &EvolutionCache{entries: map[string]Adjustment{}}
}

// Resolve returns the adjustment and halo for (rule, count), memoizing only
// results without a halo. Halo-bearing rules are re-evaluated every call so
// the caller never misses the draw obligation.
func (c *EvolutionCache) Resolve(rule string, count int) (Adjustment, Halo) {
	if RuleHasHalo(rule) {
		return ApplyEvolutionRule(rule, count)
	}
	key := rule + "#" + strconv.Itoa(count)
	if adj, ok := c.entries[key]; ok {
		return adj, HaloNone
	}
	adj, _ := ApplyEvolutionRule(rule, count)
	c.entries[key] = adj
	return adj, HaloNone
}

// Invalidate empties the cache. Call when the direction document is replaced.
func (c *EvolutionCache) Invalidate() {
	c.entries = map[string]Adjustment{}
}

// Len reports the number of memoized entries (used by tests).
func (c *EvolutionCache) Len() int { return len(c.entries) }

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
