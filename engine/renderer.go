package engine

import (
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/ByLCY/kinetype/direction"
	"github.com/ByLCY/kinetype/lyrics"
	"github.com/ByLCY/kinetype/plan"
	"github.com/ByLCY/kinetype/render"
)

// Frame renderer: the orchestration component called once per animation tick.
// It resolves the active line, its animation descriptor and effects, lays out
// and draws words in layer order (background → text → overlays), and feeds
// the session caches. It owns no clock: the playback driver supplies time.

// baselineEase is the per-frame lerp factor pulling the smoothed baseline
// toward its target. Karaoke mode bypasses easing entirely.
const baselineEase = 0.05

// PhysicsState is the input contract with the external beat-pulse integrator.
// The engine consumes it read-only.
type PhysicsState struct {
	Scale    float64 // multiplicative, 1 = neutral
	Shake    float64 // 0..1 shake energy
	OffsetX  float64
	OffsetY  float64
	Rotation float64 // radians; carried through for backends that support it
}

// FrameInput is everything that changes tick to tick.
type FrameInput struct {
	Now           float64 // song time, seconds; monotonic or seeked
	BeatIndex     int
	BeatIntensity float64 // 0..1
	Physics       PhysicsState
}

// Options configures a render session.
type Options struct {
	ViewportW, ViewportH float64
	DevicePixelRatio     float64 // quality hint; <1 drops glow detail
	HardwareConcurrency  int     // quality hint; <=2 drops glow/trail detail
	Palette              Palette
	Seed                 uint64 // stable per-song seed (SongSeed)
	Karaoke              bool   // fixed two-slot layout, word-reveal only
	LayoutCacheSize      int    // 0 → 600
	Logger               *log.Logger
}

// Renderer renders one song. Not safe for concurrent use; one instance per
// playing hook.
type Renderer struct {
	plan   *plan.Plan
	interp *direction.Interpreter
	state  *TextState
	opts   Options

	frame      *render.Frame // reused every tick
	repeated   []bool        // line text seen >= 2 times across the song
	curHero    string        // active line's hero word (normalized), per frame
	curWeight  string        // effective font weight after the chapter shift, per frame
	lowQuality bool
	logger     *log.Logger
}

// New builds a render session over an immutable plan.
func New(p *plan.Plan, interp *direction.Interpreter, opts Options) (*Renderer, error) {
	if p == nil {
		return nil, fmt.Errorf("renderer requires a plan")
	}
	if opts.ViewportW <= 0 {
		opts.ViewportW = p.ViewportW
	}
	if opts.ViewportH <= 0 {
		opts.ViewportH = p.ViewportH
	}
	if opts.Palette == (Palette{}) {
		opts.Palette = DefaultPalette()
	}
	if opts.LayoutCacheSize <= 0 {
		opts.LayoutCacheSize = 600
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if interp == nil {
		interp = direction.NewInterpreter(nil)
	}
	r := &Renderer{
		plan:   p,
		interp: interp,
		state:  newTextState(opts.LayoutCacheSize),
		opts:   opts,
		frame:  render.NewFrame(opts.ViewportW, opts.ViewportH),
		logger: opts.Logger,
		lowQuality: (opts.HardwareConcurrency > 0 && opts.HardwareConcurrency <= 2) ||
			(opts.DevicePixelRatio > 0 && opts.DevicePixelRatio < 1),
	}
	r.repeated = repeatedLines(p)
	return r, nil
}

// State exposes the session state for teardown/invalidation by the host.
func (r *Renderer) State() *TextState { return r.state }

// Reset forgets anchor smoothing and cursor locality (seek to song start).
// Word histories survive: recurrence is a per-playback property.
func (r *Renderer) Reset() { r.state.resetAnchors() }

// repeatedLines marks lines whose normalized text occurs at least twice:
// the repetition arm of the hook heuristic.
func repeatedLines(p *plan.Plan) []bool {
	counts := map[string]int{}
	keys := make([]string, len(p.Lines))
	for i, pl := range p.Lines {
		key := ""
		for _, n := range pl.Norm {
			key += n + " "
		}
		keys[i] = key
		if key != "" {
			counts[key]++
		}
	}
	out := make([]bool, len(p.Lines))
	for i, key := range keys {
		out[i] = key != "" && counts[key] >= 2
	}
	return out
}

// RenderFrame produces the draw list for one tick. Any panic inside the
// frame body is caught: a single bad frame degrades to an empty frame rather
// than halting playback.
func (r *Renderer) RenderFrame(in FrameInput) (f *render.Frame) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Printf("kinetype: frame at t=%.3f dropped: %v", in.Now, rec)
			r.frame.Reset()
			r.frame.Background = toRender(r.opts.Palette.Wash, 1)
			f = r.frame
		}
	}()
	return r.renderFrame(in)
}

func (r *Renderer) renderFrame(in FrameInput) *render.Frame {
	f := r.frame
	f.Reset()

	progress := r.plan.Progress(in.Now)
	chapter := r.interp.CurrentChapter(progress)
	pal := r.opts.Palette
	wash := moodWash(pal.Wash, chapter.Mood)
	f.Background = toRender(wash, 1)

	// the chapter's typography shift overrides the song-wide weight while
	// the chapter runs
	r.curWeight = r.interp.Typography().Weight
	if chapter.Typography != "" {
		r.curWeight = chapter.Typography
	}

	// the active shot scales the ambient field, so the line is resolved
	// before any particle is emitted
	idx := r.state.cursor.ActiveLineIndex(r.plan, in.Now)
	var ld *direction.LineDirection
	shot := ""
	if idx >= 0 {
		ld = r.interp.LineDirection(idx)
		if ld != nil {
			shot = ld.Shot
		}
	}

	// mood wash sits under everything; intensity breathes with the beat
	f.Backdrop = append(f.Backdrop, render.Rect{
		X: 0, Y: 0, W: f.Width, H: f.Height,
		Color: toRender(wash.BlendRgb(pal.Accent, 0.04+0.05*in.BeatIntensity), 0.5),
	})
	r.emitAmbient(f, chapter, in, moodDensity(chapter.Mood)*shotParticleScale(shot))

	// the climax moment itself gets a brief full-screen flash on top of the
	// proximity envelope applied per word
	if r.interp.IsClimaxMoment(progress) {
		f.Overlay = append(f.Overlay, render.Rect{
			X: 0, Y: 0, W: f.Width, H: f.Height,
			Color: toRender(pal.Glow, 0.08+0.06*in.BeatIntensity),
		})
	}

	if idx < 0 {
		return f
	}
	pl := &r.plan.Lines[idx]

	desc := ResolveLine(LineContext{
		Index:     idx,
		Start:     pl.Src.Start,
		End:       pl.Src.End,
		WordCount: len(pl.Words),
		Tag:       pl.Src.Tag,
		Direction: ld,
		Repeated:  r.repeated[idx],
	}, in.Now, in.BeatIntensity, pal)

	entryStyle, exitStyle := "fade", "fade"
	r.curHero = ""
	if ld != nil {
		r.curHero = ld.HeroWord
		if ld.Entry != "" {
			entryStyle = ld.Entry
		}
		if ld.Exit != "" {
			exitStyle = ld.Exit
		}
	}
	shotOpacity := applyShot(f, shot)

	// font size: plan base × tension aggression × descriptor × physics pulse
	agg := r.interp.TensionAggression(progress)
	fontPx := pl.BaseSizePx * desc.FontScale * desc.Scale * (1 + 0.12*(agg-1))
	if in.Physics.Scale > 0 {
		fontPx *= in.Physics.Scale
	}

	anchorX, anchorY := r.resolveAnchors(chapter, desc, in)

	ea, edx, edy := entryTreatment(entryStyle, desc.EntryProgress, fontPx)
	xa, xdx, xdy := exitTreatment(exitStyle, desc.ExitProgress, fontPx)
	alpha := ea * xa * shotOpacity
	anchorX += edx + xdx
	anchorY += edy + xdy

	if alpha <= 0 {
		return f
	}

	// word visibility comes strictly from precomputed reveal times
	if len(pl.Words) > 0 && len(pl.Reveal) != len(pl.Words) {
		if !r.state.warnedLines[idx] {
			r.state.warnedLines[idx] = true
			r.logger.Printf("kinetype: line %d has no per-word timing; showing nothing", idx)
		}
		return f
	}

	visible := pl.VisibleCount(in.Now)
	mode := resolveDisplayMode(pl, desc.IsHookLine, r.plan.Cinematic)

	if visible == 0 {
		r.runFallbackEffect(f, pl, idx, anchorX, anchorY, fontPx, alpha, in, desc)
		return f
	}

	if r.opts.Karaoke {
		r.drawKaraoke(f, pl, idx, fontPx, alpha, desc, in)
		return f
	}

	switch mode {
	case modeSingleWord:
		r.drawSingleWord(f, pl, anchorX, anchorY, fontPx, alpha, desc, in, progress)
	case modeTwoLineStack:
		r.drawTwoLineStack(f, pl, anchorX, anchorY, fontPx, alpha, desc, in, progress)
	default:
		r.drawPhraseStack(f, pl, anchorX, anchorY, fontPx, alpha, desc, in, progress)
	}
	return f
}

// resolveAnchors computes the smoothed line anchor: hook and strong-mod lines
// sit higher, soft mods lower, everything nudged toward the scene light and
// shaken by the physics term. Karaoke skips smoothing (fixed slots are
// computed in drawKaraoke).
func (r *Renderer) resolveAnchors(chapter direction.Chapter, desc Descriptor, in FrameInput) (float64, float64) {
	h := r.opts.ViewportH
	targetY := h * 0.50
	switch {
	case desc.IsHookLine:
		targetY = h * 0.42
	case desc.ActiveMod == ModPulseStrong:
		targetY = h * 0.38
	case desc.ActiveMod == ModFadeOut, desc.ActiveMod == ModDriftSoft:
		targetY = h * 0.58
	}
	targetX := r.opts.ViewportW * 0.5

	if !r.state.anchorsReady {
		r.state.baselineY = targetY
		r.state.offsetX = targetX
		r.state.anchorsReady = true
	} else if !r.opts.Karaoke {
		r.state.baselineY += (targetY - r.state.baselineY) * baselineEase
		r.state.offsetX += (targetX - r.state.offsetX) * baselineEase
	}

	nx, ny := lightNudge(chapter.Light)
	shakeX := math.Sin(in.Now*12.0+float64(in.BeatIndex)) * 2.4 * in.Physics.Shake
	shakeY := math.Cos(in.Now*9.7+float64(in.BeatIndex)) * 1.8 * in.Physics.Shake

	x := r.state.offsetX + nx + shakeX + in.Physics.OffsetX
	y := r.state.baselineY + ny + shakeY + in.Physics.OffsetY
	return x, y
}

// runFallbackEffect draws the pre-reveal line treatment: a deterministic pool
// pick, overridden by the active word's class when one carries a kinetic or
// elemental directive.
func (r *Renderer) runFallbackEffect(f *render.Frame, pl *plan.Line, idx int, x, y, sizePx, alpha float64, in FrameInput, desc Descriptor) {
	key := poolKey(r.opts.Seed, idx)
	for w := range pl.Words {
		wd := pl.Directives[w]
		if wd == nil {
			continue
		}
		if ov, ok := kineticOverride[wd.Kinetic]; ok {
			key = ov
			break
		}
		if ov, ok := elementalOverride[wd.Elemental]; ok {
			key = ov
			break
		}
	}
	dur := pl.Src.Duration()
	if dur <= 0 {
		dur = 0.001
	}
	lookupEffect(key)(f, EffectInput{
		Text:     pl.Src.Text,
		X:        x,
		Y:        y,
		Width:    f.Width,
		Height:   f.Height,
		SizePx:   sizePx,
		Age:      in.Now - pl.Src.Start,
		Progress: clampf((in.Now-pl.Src.Start)/dur, 0, 1),
		Beat:     in.BeatIntensity,
		Color:    toRender(desc.LineColor, alpha),
		Glow:     toRender(r.opts.Palette.Glow, alpha),
		Seed:     mix(r.opts.Seed, uint64(idx)),
	})
}

// lineOffsets returns cached per-word x offsets (left edges relative to the
// line's left edge) plus the total width, both at the plan's base size.
func (r *Renderer) lineOffsets(pl *plan.Line) ([]float64, float64) {
	key := fmt.Sprintf("%d", pl.Index)
	if cached, ok := r.state.layout.get(key); ok {
		return cached[:len(cached)-1], cached[len(cached)-1]
	}
	space := pl.BaseSizePx * 0.28
	offsets := make([]float64, 0, len(pl.Words)+1)
	x := 0.0
	for w := range pl.Words {
		offsets = append(offsets, x)
		x += pl.WordWidths[w]
		if w < len(pl.Words)-1 {
			x += space
		}
	}
	offsets = append(offsets, x) // total width rides in the last slot
	r.state.layout.put(key, offsets)
	return offsets[:len(offsets)-1], x
}

// mostRecentWord returns the revealed word with the latest reveal time.
func mostRecentWord(pl *plan.Line, now float64) int {
	best, bestT := -1, math.Inf(-1)
	for w, t := range pl.Reveal {
		if now >= t && t >= bestT {
			best, bestT = w, t
		}
	}
	return best
}

func (r *Renderer) drawSingleWord(f *render.Frame, pl *plan.Line, x, y, fontPx, alpha float64, desc Descriptor, in FrameInput, progress float64) {
	w := mostRecentWord(pl, in.Now)
	if w < 0 {
		return
	}
	r.drawWord(f, pl, w, x, y, fontPx*1.3, alpha, desc, in, progress, true)
}

func (r *Renderer) drawTwoLineStack(f *render.Frame, pl *plan.Line, x, y, fontPx, alpha float64, desc Descriptor, in FrameInput, progress float64) {
	size := fontPx * 0.78
	half := (len(pl.Words) + 1) / 2
	rows := [][2]int{{0, half}, {half, len(pl.Words)}}
	offsets, _ := r.lineOffsets(pl)
	scale := size / pl.BaseSizePx
	for ri, row := range rows {
		rowY := y + (float64(ri)-0.5)*size*1.3
		lo, hi := row[0], row[1]
		if lo >= hi {
			continue
		}
		rowW := offsets[hi-1] - offsets[lo] + pl.WordWidths[hi-1]
		left := x - rowW*scale/2
		for w := lo; w < hi; w++ {
			if in.Now < pl.Reveal[w] {
				continue
			}
			wx := left + (offsets[w]-offsets[lo])*scale + pl.WordWidths[w]*scale/2
			r.drawWord(f, pl, w, wx, rowY, size, alpha, desc, in, progress, false)
		}
	}
}

func (r *Renderer) drawPhraseStack(f *render.Frame, pl *plan.Line, x, y, fontPx, alpha float64, desc Descriptor, in FrameInput, progress float64) {
	// cinematic sizing keys off the longest word, so a multi-word phrase is
	// wider than the viewport on a single row; the plan's pre-wrapped
	// segments carry the row layout instead
	if r.plan.Cinematic && len(pl.Segments) > 0 {
		r.drawSegmentRows(f, pl, x, y, fontPx, alpha, desc, in, progress)
		return
	}
	offsets, total := r.lineOffsets(pl)
	scale := fontPx / pl.BaseSizePx
	left := x - total*scale/2
	recent := mostRecentWord(pl, in.Now)
	for w := range pl.Words {
		if in.Now < pl.Reveal[w] {
			continue
		}
		wx := left + offsets[w]*scale + pl.WordWidths[w]*scale/2
		a := alpha
		size := fontPx
		if w != recent {
			// de-emphasize everything but the freshest word
			a *= 0.55
			size *= 0.9
		}
		r.drawWord(f, pl, w, wx, y, size, a, desc, in, progress, w == recent)
	}
}

// drawSegmentRows lays the line out row by row from its pre-wrapped segments,
// each row centered on the anchor and the block centered vertically.
func (r *Renderer) drawSegmentRows(f *render.Frame, pl *plan.Line, x, y, fontPx, alpha float64, desc Descriptor, in FrameInput, progress float64) {
	// wordy lines wrap into many rows; shrink so the block stays on screen
	if maxH := r.opts.ViewportH * 0.82; fontPx*1.18*float64(len(pl.Segments)) > maxH {
		fontPx = maxH / (1.18 * float64(len(pl.Segments)))
	}
	scale := fontPx / pl.BaseSizePx
	space := pl.BaseSizePx * 0.28
	recent := mostRecentWord(pl, in.Now)
	rowStep := fontPx * 1.18
	top := y - rowStep*float64(len(pl.Segments)-1)/2
	for ri, row := range pl.Segments {
		if len(row) == 0 {
			continue
		}
		rowW := 0.0
		for i, w := range row {
			if i > 0 {
				rowW += space
			}
			rowW += pl.WordWidths[w]
		}
		rowY := top + rowStep*float64(ri)
		cx := x - rowW*scale/2
		for _, w := range row {
			width := pl.WordWidths[w] * scale
			if in.Now >= pl.Reveal[w] {
				a := alpha
				size := fontPx
				if w != recent {
					a *= 0.55
					size *= 0.9
				}
				r.drawWord(f, pl, w, cx+width/2, rowY, size, a, desc, in, progress, w == recent)
			}
			cx += width + space*scale
		}
	}
}

// drawKaraoke pins the current line above and echoes the previous line
// below: two fixed slots, no easing, so outgoing and incoming lines can
// never collide vertically. This slot layout is authoritative over the
// general stacking logic when karaoke mode is on.
func (r *Renderer) drawKaraoke(f *render.Frame, pl *plan.Line, idx int, fontPx, alpha float64, desc Descriptor, in FrameInput) {
	currentY := r.opts.ViewportH * 0.40
	echoY := r.opts.ViewportH * 0.62
	cx := r.opts.ViewportW * 0.5
	progress := r.plan.Progress(in.Now)

	offsets, total := r.lineOffsets(pl)
	scale := fontPx / pl.BaseSizePx
	left := cx - total*scale/2
	for w := range pl.Words {
		if in.Now < pl.Reveal[w] {
			continue
		}
		wx := left + offsets[w]*scale + pl.WordWidths[w]*scale/2
		r.drawWord(f, pl, w, wx, currentY, fontPx, alpha, desc, in, progress, false)
	}

	if idx > 0 {
		prev := &r.plan.Lines[idx-1]
		f.Text = append(f.Text, render.GlyphRun{
			Text:   transformGlyphs(prev.Src.Text, r.interp.Typography().Transform),
			X:      cx,
			Y:      echoY,
			SizePx: fontPx * 0.6,
			Weight: r.curWeight,
			Color:  toRender(desc.LineColor, 0.35*alpha),
		})
	}
}

// drawWord resolves the final visual props for one word and emits its glow,
// glyphs and trail. hero marks the word drawn at full emphasis in its mode.
func (r *Renderer) drawWord(f *render.Frame, pl *plan.Line, w int, x, y, sizePx, alpha float64, desc Descriptor, in FrameInput, progress float64, hero bool) {
	age := in.Now - pl.Reveal[w]
	norm := pl.Norm[w]
	wd := pl.Directives[w]
	seed := mix(r.opts.Seed, uint64(pl.Index)<<16|uint64(w))

	props := wordProps{
		scale:      1,
		opacity:    alpha,
		color:      toRender(desc.LineColor, 1),
		glowColor:  toRender(r.opts.Palette.Glow, 1),
		glowRadius: 0,
	}

	// lexical defaults
	switch pl.Categories[w] {
	case lyrics.CategoryImpact:
		props.scale *= 1.15
		props.glowRadius += 4
	case lyrics.CategoryTender:
		props.glowRadius += 10
	case lyrics.CategoryMotion:
		props.trailCount = 3
	}
	if desc.IsHookLine {
		props.glowRadius += 8
	}
	if norm != "" && norm == r.curHero {
		props.scale *= 1.18
		props.glowRadius += 6
	}
	props.scale *= desc.BeatMultiplier

	letterSpacing := r.interp.Typography().LetterSpacing
	if letterSpacing > 0 {
		props.letterSpacing = letterSpacing
	}

	// directive overrides and evolution
	if wd != nil {
		props.scale *= 1 + 0.08*float64(wd.Emphasis)
		if wd.Color != "" {
			props.color = toRender(parseHex(wd.Color, desc.LineColor), 1)
		}
		if wd.Evolution != "" {
			count := pl.Appearance[w]
			adj, halo := r.state.evolution.Resolve(wd.Evolution, count)
			props.scale *= adj.ScaleMultiplier
			props.glowRadius += adj.GlowRadius
			props.opacity *= adj.OpacityMultiplier
			props.offsetY += adj.YOffset
			if adj.Jitter > 0 {
				props.offsetX += spread(seed, uint64(in.Now*20)) * adj.Jitter * 4
			}
			if adj.HueShift != 0 {
				props.color = toRender(adj.ShiftColor(desc.LineColor), 1)
			}
			r.emitHalo(f, halo, x, y, pl.WordWidths[w]*sizePx/pl.BaseSizePx, count, props.opacity)
		}
		applyKinetic(wd.Kinetic, &props, age, in.BeatIntensity, seed)
	}

	// literal thematic overrides, then the climax envelope
	if fn, ok := specialTokens[norm]; ok {
		fn(&props)
	}
	if env := r.interp.ClimaxEnvelope(progress); env > 0 {
		props.scale *= 1 + 0.22*env
		props.glowRadius += 10 * env
	}

	drawSize := sizePx * props.scale
	width := pl.WordWidths[w] * drawSize / pl.BaseSizePx
	fx := x + props.offsetX
	fy := y + props.offsetY

	// cull before any drawing cost
	if fx+width/2 < 0 || fx-width/2 > f.Width || fy < -drawSize || fy > f.Height+drawSize {
		return
	}

	if wd != nil && wd.Elemental != "" {
		applyElemental(wd.Elemental, f, &props, fx, fy-drawSize*0.35, width, age, seed)
	}

	a := clampf(props.opacity, 0, 1)
	if a <= 0 {
		return
	}

	// glow halo under the glyphs: concentric pools approximate the radial
	// gradient; fewer steps on constrained devices
	if props.glowRadius > 0 {
		steps := 3
		if r.lowQuality {
			steps = 1
		}
		for i := 1; i <= steps; i++ {
			t := float64(i) / float64(steps)
			f.Glow = append(f.Glow, render.Circle{
				CX: fx, CY: fy - drawSize*0.35,
				R:     drawSize*0.5 + props.glowRadius*t*2,
				Color: props.glowColor.WithAlpha(0.10 * a * (1 - t*0.6)),
			})
		}
	}

	weight := r.curWeight
	if hero && weight == "" {
		weight = "bold"
	}
	text := transformGlyphs(pl.Words[w], r.interp.Typography().Transform)
	f.Text = append(f.Text, render.GlyphRun{
		Text:          text,
		X:             fx,
		Y:             fy,
		SizePx:        drawSize,
		Weight:        weight,
		LetterSpacing: props.letterSpacing,
		Color:         props.color.WithAlpha(a),
	})

	// motion trail: repeated echoes at decreasing opacity, widening offset
	if props.trailCount > 0 && !r.lowQuality {
		for i := 1; i <= props.trailCount; i++ {
			f.Text = append(f.Text, render.GlyphRun{
				Text:          text,
				X:             fx - float64(i)*drawSize*0.12,
				Y:             fy,
				SizePx:        drawSize,
				Weight:        weight,
				LetterSpacing: props.letterSpacing,
				Color:         props.color.WithAlpha(a * 0.5 / float64(i+1)),
			})
		}
	}

	r.state.track(norm, pl.Appearance[w], in.Now, fx, fy)
}

// transformGlyphs applies the typography profile's case transform.
func transformGlyphs(text, transform string) string {
	switch transform {
	case "uppercase":
		return strings.ToUpper(text)
	case "lowercase":
		return strings.ToLower(text)
	default:
		return text
	}
}

// emitAmbient scatters the chapter's particle field across the backdrop.
// Positions derive only from the seed and song time, so paused frames hold
// still and re-renders match. density scales the particle count: mood and
// the active shot both push it around 1.
func (r *Renderer) emitAmbient(f *render.Frame, chapter direction.Chapter, in FrameInput, density float64) {
	count := 10
	if r.lowQuality {
		count = 4
	}
	count = int(float64(count) * density)
	if count <= 0 {
		return
	}
	pal := r.opts.Palette
	switch chapter.Particles {
	case "dust", "ash":
		for i := 0; i < count; i++ {
			n := uint64(i)
			x := unit(r.opts.Seed, n*11+1) * f.Width
			drift := math.Mod(in.Now*(3+4*unit(r.opts.Seed, n*11+2))+unit(r.opts.Seed, n*11+3)*f.Height, f.Height)
			f.Glow = append(f.Glow, render.Circle{
				CX: x + spread(r.opts.Seed, n*11+4)*20, CY: drift,
				R:     1 + unit(r.opts.Seed, n*11+5),
				Color: toRender(pal.Base, 0.08),
			})
		}
	case "embers", "sparks":
		for i := 0; i < count; i++ {
			n := uint64(i)
			x := unit(r.opts.Seed, n*13+1) * f.Width
			rise := math.Mod(in.Now*(20+30*unit(r.opts.Seed, n*13+2)), f.Height)
			f.Glow = append(f.Glow, render.Circle{
				CX: x, CY: f.Height - rise,
				R:     1 + 1.5*unit(r.opts.Seed, n*13+3),
				Color: render.Color{R: 1, G: 0.55, B: 0.15, A: 0.2 * (1 - rise/f.Height)},
			})
		}
	case "rain":
		for i := 0; i < count; i++ {
			n := uint64(i)
			x := unit(r.opts.Seed, n*17+1) * f.Width
			fall := math.Mod(in.Now*(120+80*unit(r.opts.Seed, n*17+2))+unit(r.opts.Seed, n*17+3)*f.Height, f.Height)
			f.Backdrop = append(f.Backdrop, render.Rect{
				X: x, Y: fall, W: 1.2, H: 10,
				Color: render.Color{R: 0.5, G: 0.65, B: 0.9, A: 0.14},
			})
		}
	}
}

// emitHalo draws the immediate side effect of "expands"/"consuming" rules.
// Split from the pure adjustment phase so caching never drops a visual.
func (r *Renderer) emitHalo(f *render.Frame, halo direction.Halo, x, y, width float64, count int, alpha float64) {
	switch halo {
	case direction.HaloRing:
		f.Glow = append(f.Glow, render.Circle{
			CX: x, CY: y, R: width*0.7 + float64(count)*3,
			Color:       toRender(r.opts.Palette.Glow, 0.3*alpha),
			StrokeWidth: 1.5,
		})
	case direction.HaloConsume:
		f.Glow = append(f.Glow, render.Circle{
			CX: x, CY: y, R: width * (0.8 + 0.05*float64(count)),
			Color: toRender(r.opts.Palette.Accent, 0.18*alpha),
		})
	}
}
