package engine

import (
	"math"

	"github.com/ByLCY/kinetype/render"
)

// Per-word visual effect appliers. The frame renderer computes neutral word
// props first, then applies the word's kinetic class (movement treatment),
// then its elemental class (particle/material treatment). Kinetic classes
// mutate the props; elemental classes additionally emit particles into the
// frame. Appliers read only their arguments.

// wordProps is the resolved visual state of one word just before drawing.
type wordProps struct {
	scale         float64
	opacity       float64
	offsetX       float64
	offsetY       float64
	letterSpacing float64
	glowRadius    float64
	trailCount    int
	color         render.Color
	glowColor     render.Color
}

// kineticOverride maps kinetic classes onto fallback effect keys: a line's
// pre-reveal effect is overridden by the active word's class when it carries
// one. Kinetic takes precedence over elemental.
var kineticOverride = map[string]string{
	"SHAKE":     "GLITCH_FLASH",
	"BURST_IN":  "SHATTER_IN",
	"SNAP_ZOOM": "GLITCH_FLASH",
	"WAVE":      "WAVE_SURGE",
	"RISE":      "SOFT_BLOOM",
	"GLITCH":    "GLITCH_FLASH",
}

var elementalOverride = map[string]string{
	"FIRE":  "HEAT_WARP",
	"EMBER": "EMBER_RISE",
	"RAIN":  "RAIN_VEIL",
	"FROST": "RAIN_VEIL",
	"SMOKE": "VOID_DRIFT",
	"VOID":  "VOID_DRIFT",
}

// applyKinetic mutates word props according to the kinetic class. age is
// seconds since the word revealed.
func applyKinetic(class string, p *wordProps, age, beat float64, seed uint64) {
	switch class {
	case "SHAKE":
		amp := p.scale * 2.5 * (0.5 + beat)
		p.offsetX += math.Sin(age*31) * amp
		p.offsetY += math.Cos(age*27) * amp * 0.6
	case "BURST_IN":
		// overshoot then settle within the first third of a second
		if age < 0.33 {
			p.scale *= 1 + 0.5*(1-age/0.33)
		}
	case "SNAP_ZOOM":
		p.scale *= 1 + 0.22*beat
		p.letterSpacing += 1.5 * beat
	case "WAVE":
		p.offsetY += math.Sin(age*4.5) * p.scale * 4
		p.trailCount = maxi(p.trailCount, 3)
	case "RISE":
		p.offsetY -= minf(age*18, 26)
	case "GLITCH":
		phase := uint64(age * 16)
		if mix(seed, phase)%4 == 0 {
			p.offsetX += spread(seed, phase) * 6
			p.opacity *= 0.7
		}
	}
}

// applyElemental emits the class's particles around the word and tints it.
// cx/cy locate the word center; width its drawn width.
func applyElemental(class string, f *render.Frame, p *wordProps, cx, cy, width, age float64, seed uint64) {
	switch class {
	case "FIRE", "EMBER":
		p.glowColor = render.Color{R: 1, G: 0.5, B: 0.12, A: p.glowColor.A}
		p.glowRadius = maxf(p.glowRadius, 10)
		for i := 0; i < 5; i++ {
			n := uint64(i)
			rise := math.Mod(age*(26+30*unit(seed, n+41)), 40.0)
			f.Glow = append(f.Glow, render.Circle{
				CX: cx + spread(seed, n+43)*width*0.5,
				CY: cy - rise,
				R:  1.2 + 2*unit(seed, n+47),
				Color: render.Color{R: 1, G: 0.55, B: 0.15, A: 0.45 * (1 - rise/40)},
			})
		}
	case "RAIN":
		for i := 0; i < 6; i++ {
			n := uint64(i)
			fall := math.Mod(age*(90+60*unit(seed, n+53)), 60.0)
			f.Backdrop = append(f.Backdrop, render.Rect{
				X: cx + spread(seed, n+59)*width*0.7, Y: cy - 50 + fall,
				W: 1, H: 8,
				Color: render.Color{R: 0.55, G: 0.7, B: 0.95, A: 0.3},
			})
		}
	case "FROST":
		p.color = render.Color{R: 0.75, G: 0.88, B: 1, A: p.color.A}
		p.letterSpacing += 1.2
	case "SMOKE", "VOID":
		p.opacity *= 0.85
		f.Glow = append(f.Glow, render.Circle{
			CX: cx, CY: cy - 6 - math.Mod(age*8, 18), R: width * 0.4,
			Color: render.Color{R: 0.4, G: 0.4, B: 0.45, A: 0.1},
		})
	}
}

func maxi(a, b int) int {
	if a > b {
		return a
	}
	return b
}
