package engine

import (
	"math"

	"github.com/ByLCY/kinetype/render"
)

// The effect registry maps symbolic keys to per-line fallback draw routines.
// They run only while no word of the active line has revealed yet, so purely
// time-based treatments still put something on screen. Every routine receives
// only EffectInput and appends to the frame; no routine reads or mutates
// shared state, so each is independently testable.

// EffectInput carries everything a fallback routine may use.
type EffectInput struct {
	Text     string
	X, Y     float64 // line anchor (center, baseline)
	Width    float64 // viewport width
	Height   float64 // viewport height
	SizePx   float64
	Age      float64 // seconds since line start
	Progress float64 // 0..1 through the line window
	Beat     float64 // beat intensity 0..1
	Color    render.Color
	Glow     render.Color
	Seed     uint64
}

// LineEffect is a fallback draw routine.
type LineEffect func(f *render.Frame, in EffectInput)

// effectPool is the deterministic selection pool; index order is part of the
// engine's observable behavior and must stay fixed.
var effectPool = []string{
	"SHATTER_IN",
	"WAVE_SURGE",
	"GLITCH_FLASH",
	"SOFT_BLOOM",
	"HEAT_WARP",
	"RAIN_VEIL",
	"EMBER_RISE",
	"VOID_DRIFT",
}

var effectRegistry = map[string]LineEffect{
	"SHATTER_IN":   effectShatterIn,
	"WAVE_SURGE":   effectWaveSurge,
	"GLITCH_FLASH": effectGlitchFlash,
	"SOFT_BLOOM":   effectSoftBloom,
	"HEAT_WARP":    effectHeatWarp,
	"RAIN_VEIL":    effectRainVeil,
	"EMBER_RISE":   effectEmberRise,
	"VOID_DRIFT":   effectVoidDrift,
}

// EffectKeys returns the selection pool in its fixed order.
func EffectKeys() []string {
	out := make([]string, len(effectPool))
	copy(out, effectPool)
	return out
}

// lookupEffect resolves a key; unknown keys fall back to SOFT_BLOOM, the
// least intrusive treatment.
func lookupEffect(key string) LineEffect {
	if fx, ok := effectRegistry[key]; ok {
		return fx
	}
	return effectSoftBloom
}

// poolKey picks the deterministic pseudo-random pool entry for a line.
func poolKey(seed uint64, lineIndex int) string {
	idx := (seed + uint64(lineIndex)*7) % uint64(len(effectPool))
	return effectPool[idx]
}

// effectShatterIn scatters glyph fragments that converge as progress rises.
func effectShatterIn(f *render.Frame, in EffectInput) {
	gather := in.Progress * in.Progress // ease-in convergence
	for i := 0; i < 9; i++ {
		n := uint64(i)
		dx := spread(in.Seed, n*3+1) * in.Width * 0.3 * (1 - gather)
		dy := spread(in.Seed, n*3+2) * in.Height * 0.2 * (1 - gather)
		r := in.SizePx * (0.06 + 0.05*unit(in.Seed, n*3+3))
		f.Glow = append(f.Glow, render.Circle{
			CX: in.X + dx, CY: in.Y + dy, R: r,
			Color: in.Color.WithAlpha(0.12 + 0.5*gather),
		})
	}
	f.Text = append(f.Text, render.GlyphRun{
		Text: in.Text, X: in.X, Y: in.Y, SizePx: in.SizePx,
		Color: in.Color.WithAlpha(0.15 + 0.6*gather),
	})
}

// effectWaveSurge rolls the line along a sine swell.
func effectWaveSurge(f *render.Frame, in EffectInput) {
	lift := math.Sin(in.Age*3.2) * in.SizePx * 0.3 * (0.4 + in.Beat)
	f.Text = append(f.Text, render.GlyphRun{
		Text: in.Text, X: in.X, Y: in.Y + lift, SizePx: in.SizePx,
		Color: in.Color.WithAlpha(0.35 + 0.45*in.Progress),
	})
	f.Glow = append(f.Glow, render.Circle{
		CX: in.X, CY: in.Y + lift + in.SizePx*0.4, R: in.SizePx * 1.6,
		Color: in.Glow.WithAlpha(0.08 + 0.1*in.Beat),
	})
}

// effectGlitchFlash strobes offset echoes on a deterministic cadence.
func effectGlitchFlash(f *render.Frame, in EffectInput) {
	phase := uint64(in.Age * 14)
	on := mix(in.Seed, phase)%3 != 0
	alpha := 0.2
	if on {
		alpha = 0.75
	}
	jx := spread(in.Seed, phase*2+1) * in.SizePx * 0.18
	f.Text = append(f.Text,
		render.GlyphRun{Text: in.Text, X: in.X + jx, Y: in.Y, SizePx: in.SizePx, Color: in.Color.WithAlpha(alpha)},
		render.GlyphRun{Text: in.Text, X: in.X - jx, Y: in.Y + in.SizePx*0.04, SizePx: in.SizePx, Color: in.Glow.WithAlpha(alpha * 0.35)},
	)
}

// effectSoftBloom fades the whole line up inside a widening glow pool.
func effectSoftBloom(f *render.Frame, in EffectInput) {
	f.Glow = append(f.Glow, render.Circle{
		CX: in.X, CY: in.Y - in.SizePx*0.3, R: in.SizePx * (1.2 + in.Progress*1.4),
		Color: in.Glow.WithAlpha(0.10 + 0.08*in.Beat),
	})
	f.Text = append(f.Text, render.GlyphRun{
		Text: in.Text, X: in.X, Y: in.Y, SizePx: in.SizePx,
		Color: in.Color.WithAlpha(0.2 + 0.7*in.Progress),
	})
}

// effectHeatWarp shimmers the line with vertical heat ripples.
func effectHeatWarp(f *render.Frame, in EffectInput) {
	warp := math.Sin(in.Age*9) * in.SizePx * 0.08
	f.Text = append(f.Text, render.GlyphRun{
		Text: in.Text, X: in.X, Y: in.Y + warp, SizePx: in.SizePx * (1 + 0.03*math.Sin(in.Age*5)),
		Color: in.Color.WithAlpha(0.3 + 0.5*in.Progress),
	})
	for i := 0; i < 4; i++ {
		n := uint64(i)
		f.Glow = append(f.Glow, render.Circle{
			CX: in.X + spread(in.Seed, n+11)*in.SizePx*1.5,
			CY: in.Y - in.Age*28 - unit(in.Seed, n+17)*in.SizePx,
			R:  in.SizePx * 0.08,
			Color: render.Color{R: 1, G: 0.45, B: 0.2, A: 0.25 * (1 - in.Progress)},
		})
	}
}

// effectRainVeil streaks thin drops down over a dimmed line.
func effectRainVeil(f *render.Frame, in EffectInput) {
	for i := 0; i < 12; i++ {
		n := uint64(i)
		x := unit(in.Seed, n*5+3) * in.Width
		fall := math.Mod(in.Age*(140+80*unit(in.Seed, n*5+4))+unit(in.Seed, n*5+5)*in.Height, in.Height)
		f.Backdrop = append(f.Backdrop, render.Rect{
			X: x, Y: fall, W: 1.2, H: in.SizePx * 0.5,
			Color: render.Color{R: 0.5, G: 0.65, B: 0.9, A: 0.18},
		})
	}
	f.Text = append(f.Text, render.GlyphRun{
		Text: in.Text, X: in.X, Y: in.Y, SizePx: in.SizePx,
		Color: in.Color.WithAlpha(0.25 + 0.4*in.Progress),
	})
}

// effectEmberRise floats sparks up from below the baseline.
func effectEmberRise(f *render.Frame, in EffectInput) {
	for i := 0; i < 8; i++ {
		n := uint64(i)
		drift := spread(in.Seed, n*7+1) * in.SizePx
		rise := math.Mod(in.Age*(30+40*unit(in.Seed, n*7+2)), in.SizePx*3)
		f.Glow = append(f.Glow, render.Circle{
			CX: in.X + drift, CY: in.Y + in.SizePx*0.5 - rise, R: 1.5 + 2*unit(in.Seed, n*7+3),
			Color: render.Color{R: 1, G: 0.55, B: 0.15, A: 0.4 * (1 - rise/(in.SizePx*3))},
		})
	}
	f.Text = append(f.Text, render.GlyphRun{
		Text: in.Text, X: in.X, Y: in.Y, SizePx: in.SizePx,
		Color: in.Color.WithAlpha(0.3 + 0.5*in.Progress),
	})
}

// effectVoidDrift leaves the line barely lit, drifting in empty space.
func effectVoidDrift(f *render.Frame, in EffectInput) {
	dx := math.Sin(in.Age*0.8) * in.SizePx * 0.2
	dy := math.Cos(in.Age*0.6) * in.SizePx * 0.12
	f.Text = append(f.Text, render.GlyphRun{
		Text: in.Text, X: in.X + dx, Y: in.Y + dy, SizePx: in.SizePx * 0.92,
		Color: in.Color.WithAlpha(0.18 + 0.25*in.Progress),
	})
}
