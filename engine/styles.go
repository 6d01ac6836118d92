package engine

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ByLCY/kinetype/plan"
	"github.com/ByLCY/kinetype/render"
)

// Display modes, entry/exit treatments, light nudges and shot overlays.
// All of these are closed decision tables; unknown inputs take the default
// row rather than failing.

// displayMode selects how a line's words are arranged.
type displayMode int

const (
	modePhraseStack displayMode = iota // multi-word reveal, de-emphasized neighbors
	modeSingleWord                     // one word at a time, large
	modeTwoLineStack                   // fast lines split into two rows
)

func (m displayMode) String() string {
	switch m {
	case modeSingleWord:
		return "single_word"
	case modeTwoLineStack:
		return "two_line_stack"
	default:
		return "phrase_stack"
	}
}

// fastLineSec is the duration below which a line counts as "fast".
const fastLineSec = 1.0

// resolveDisplayMode applies the fixed decision table: hook lines, short
// lines and lines containing an impact word go single_word; fast lines go
// two_line_stack; everything else stacks the phrase. Cinematic (v2) sizing
// disables two_line_stack in favor of single_word.
func resolveDisplayMode(pl *plan.Line, isHook, cinematic bool) displayMode {
	if isHook || len(pl.Words) <= 3 || pl.HasImpact {
		return modeSingleWord
	}
	if pl.Src.Duration() < fastLineSec {
		if cinematic {
			return modeSingleWord
		}
		return modeTwoLineStack
	}
	return modePhraseStack
}

// entryTreatment returns alpha and positional offset for a line's entry
// style at entry progress p (0..1). Unknown styles fade.
func entryTreatment(style string, p, sizePx float64) (alpha, dx, dy float64) {
	switch style {
	case "slide":
		return p, (1 - p) * sizePx * 1.2, 0
	case "materialize":
		// hold nearly invisible then snap in over the last third
		if p < 0.66 {
			return 0.12 + 0.2*p, 0, 0
		}
		return 0.25 + 0.75*(p-0.66)/0.34, 0, 0
	case "rise":
		return p, 0, (1 - p) * sizePx * 0.8
	default: // "fade" and anything unrecognized
		return p, 0, 0
	}
}

// exitTreatment returns the opacity multiplier and offset as a line leaves,
// at exit progress p (0 = still fully present, 1 = gone).
func exitTreatment(style string, p, sizePx float64) (alpha, dx, dy float64) {
	switch style {
	case "dissolve":
		return 1 - p*p, 0, 0
	case "slide":
		return 1 - p, -p * sizePx * 1.2, 0
	case "sink":
		return 1 - p, 0, p * sizePx * 0.9
	default: // "fade"
		return 1 - p, 0, 0
	}
}

// lightNudges maps the scene's light-source directive onto a small anchor
// shift, as if the text leans toward the light. 8 discrete directions.
var lightNudges = map[string][2]float64{
	"above":        {0, -10},
	"below":        {0, 10},
	"left":         {-12, 0},
	"right":        {12, 0},
	"top-left":     {-9, -7},
	"top-right":    {9, -7},
	"bottom-left":  {-9, 7},
	"bottom-right": {9, 7},
}

func lightNudge(light string) (float64, float64) {
	if n, ok := lightNudges[light]; ok {
		return n[0], n[1]
	}
	return 0, 0
}

// moodProfile maps a chapter mood onto the backdrop treatment: a tint blended
// into the scene wash plus a density multiplier on the ambient field.
type moodProfile struct {
	tint    colorful.Color
	blend   float64
	density float64
}

// moodProfiles is the closed mood set; unknown moods leave the wash and the
// ambient field at their neutral values.
var moodProfiles = map[string]moodProfile{
	"violent":  {tint: mustHex("#5a1210"), blend: 0.35, density: 1.6},
	"furious":  {tint: mustHex("#5a1210"), blend: 0.35, density: 1.6},
	"euphoric": {tint: mustHex("#3d2a08"), blend: 0.30, density: 1.4},
	"dreamy":   {tint: mustHex("#1c2547"), blend: 0.30, density: 0.8},
	"eerie":    {tint: mustHex("#102020"), blend: 0.35, density: 0.9},
	"tender":   {tint: mustHex("#33202e"), blend: 0.25, density: 0.6},
	"hollow":   {tint: mustHex("#14161a"), blend: 0.40, density: 0.4},
}

// moodWash blends the chapter mood's tint into the palette wash.
func moodWash(wash colorful.Color, mood string) colorful.Color {
	if mp, ok := moodProfiles[mood]; ok {
		return wash.BlendRgb(mp.tint, mp.blend)
	}
	return wash
}

// moodDensity is the ambient particle-count multiplier for a chapter mood.
func moodDensity(mood string) float64 {
	if mp, ok := moodProfiles[mood]; ok {
		return mp.density
	}
	return 1
}

// shotOverlay describes a shot type's full-screen treatment: a tint layered
// over everything, an opacity override on the text itself, and a density
// override on the ambient particle field.
type shotOverlay struct {
	tint          render.Color
	textOpacity   float64
	particleScale float64
}

// shotOverlays is the closed shot-type set. Text opacity 1 means no override.
var shotOverlays = map[string]shotOverlay{
	"submerged":     {tint: render.Color{R: 0.08, G: 0.2, B: 0.45, A: 0.28}, textOpacity: 0.85, particleScale: 0.6},
	"emerging":      {tint: render.Color{R: 0.9, G: 0.85, B: 0.7, A: 0.10}, textOpacity: 1, particleScale: 1},
	"consumed":      {tint: render.Color{R: 0, G: 0, B: 0, A: 0.45}, textOpacity: 0.9, particleScale: 0.5},
	"fragmented":    {tint: render.Color{R: 0.3, G: 0.05, B: 0.08, A: 0.18}, textOpacity: 1, particleScale: 1.3},
	"alone-in-void": {tint: render.Color{R: 0, G: 0, B: 0.02, A: 0.55}, textOpacity: 0.8, particleScale: 0.3},
	"floating":      {tint: render.Color{R: 1, G: 1, B: 1, A: 0.08}, textOpacity: 1, particleScale: 0.9},
}

// applyShot layers the shot tint onto the frame and returns the text opacity
// override (1 when the shot is unknown or empty).
func applyShot(f *render.Frame, shot string) float64 {
	ov, ok := shotOverlays[shot]
	if !ok {
		return 1
	}
	f.Overlay = append(f.Overlay, render.Rect{X: 0, Y: 0, W: f.Width, H: f.Height, Color: ov.tint})
	return ov.textOpacity
}

// shotParticleScale is the ambient density override for the active shot.
func shotParticleScale(shot string) float64 {
	if ov, ok := shotOverlays[shot]; ok {
		return ov.particleScale
	}
	return 1
}

// specialTokens are hard-coded per-word overrides for specific thematic
// tokens. These are literal, documented exceptions, not inferred from
// classification, and the set is kept tiny on purpose.
var specialTokens = map[string]func(p *wordProps){
	"fire": func(p *wordProps) {
		p.color = render.Color{R: 1, G: 0.42, B: 0.1, A: p.color.A}
		p.glowRadius += 8
	},
	"ice": func(p *wordProps) {
		p.color = render.Color{R: 0.72, G: 0.88, B: 1, A: p.color.A}
	},
	"heart": func(p *wordProps) {
		p.color = render.Color{R: 1, G: 0.35, B: 0.5, A: p.color.A}
		p.glowRadius += 5
	},
	"gold": func(p *wordProps) {
		p.color = render.Color{R: 1, G: 0.82, B: 0.3, A: p.color.A}
	},
	"ghost": func(p *wordProps) {
		p.opacity *= 0.7
		p.glowRadius += 6
	},
}
