package engine

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ByLCY/kinetype/direction"
)

// Animation resolution is a pure function of its inputs and wall time. No
// frame-delta state is kept, so seeking/scrubbing lands on the exact same
// descriptor a continuous playback would have produced.

// Entry/exit treatment windows in seconds, capped at half the line duration
// for very short lines.
const (
	entryWindowSec = 0.40
	exitWindowSec  = 0.45
)

// Named line modifiers. Strong mods anchor lines higher on screen, soft mods
// lower.
const (
	ModPulseStrong = "PULSE_STRONG"
	ModFadeOut     = "FADE_OUT"
	ModDriftSoft   = "DRIFT_SOFT"
)

// LineContext is everything the resolver may inspect about a line.
type LineContext struct {
	Index     int
	Start     float64
	End       float64
	WordCount int
	Tag       string // lyric tag: "hook" flags a chorus line
	Direction *direction.LineDirection
	Repeated  bool // same normalized text already seen ≥2 times
}

// Descriptor is the per-frame, line-scoped animation state. Recomputed every
// frame, never persisted.
type Descriptor struct {
	EntryProgress  float64 // 0..1 within the entry window
	ExitProgress   float64 // 0..1 within the exit window (1 = gone)
	Scale          float64
	FontScale      float64
	ActiveMod      string
	IsHookLine     bool
	BeatMultiplier float64
	LineColor      colorful.Color
}

// ResolveLine computes the animation descriptor for a line at time now.
func ResolveLine(lc LineContext, now, beatIntensity float64, pal Palette) Descriptor {
	dur := lc.End - lc.Start
	if dur <= 0 {
		dur = 0.001
	}
	entryWin := minf(entryWindowSec, dur/2)
	exitWin := minf(exitWindowSec, dur/2)

	d := Descriptor{
		EntryProgress: clampf((now-lc.Start)/entryWin, 0, 1),
		ExitProgress:  clampf(1-(lc.End-now)/exitWin, 0, 1),
	}

	d.IsHookLine = isHook(lc)

	switch {
	case beatIntensity >= 0.75 && dur >= 2.0:
		d.ActiveMod = ModPulseStrong
	case d.ExitProgress > 0.65:
		d.ActiveMod = ModFadeOut
	case beatIntensity <= 0.2 && dur >= 3.0:
		d.ActiveMod = ModDriftSoft
	}

	d.BeatMultiplier = 1 + 0.25*beatIntensity
	d.FontScale = 1 + 0.12*beatIntensity
	blend := 0.35 * beatIntensity
	if d.IsHookLine {
		d.BeatMultiplier += 0.10
		d.FontScale += 0.18
		blend += 0.20
	}
	d.Scale = (0.94 + 0.06*d.EntryProgress - 0.10*d.ExitProgress) * (1 + 0.05*beatIntensity)
	d.LineColor = pal.Base.BlendLuv(pal.Accent, clampf(blend, 0, 1)).Clamped()
	return d
}

// isHook flags chorus/most-memorable lines: an explicit tag wins, then the
// storyboard, then the repetition heuristic.
func isHook(lc LineContext) bool {
	if lc.Tag == "hook" || lc.Tag == "chorus" {
		return true
	}
	if lc.Direction != nil && lc.Direction.Hook {
		return true
	}
	return lc.Repeated
}

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
