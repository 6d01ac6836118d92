package engine

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ByLCY/kinetype/render"
)

// Palette is the song's resolved color world. The engine blends within it but
// never invents colors outside it, except directive hex overrides.
type Palette struct {
	Base   colorful.Color // resting glyph color
	Accent colorful.Color // beat-driven blend target
	Glow   colorful.Color // halo/glow pools
	Wash   colorful.Color // scene backdrop
}

// DefaultPalette is used when the host passes no palette.
func DefaultPalette() Palette {
	return Palette{
		Base:   mustHex("#f2f0eb"),
		Accent: mustHex("#ff5a36"),
		Glow:   mustHex("#ffd27d"),
		Wash:   mustHex("#0c0d12"),
	}
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{R: 1, G: 1, B: 1}
	}
	return c
}

// parseHex resolves a directive color override, falling back when malformed.
func parseHex(s string, fallback colorful.Color) colorful.Color {
	if s == "" {
		return fallback
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return fallback
	}
	return c
}

// toRender converts a colorful color plus alpha into a frame primitive color.
func toRender(c colorful.Color, alpha float64) render.Color {
	c = c.Clamped()
	return render.Color{R: c.R, G: c.G, B: c.B, A: clampf(alpha, 0, 1)}
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
