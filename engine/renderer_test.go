package engine

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/ByLCY/kinetype/direction"
	"github.com/ByLCY/kinetype/lyrics"
	"github.com/ByLCY/kinetype/plan"
	"github.com/ByLCY/kinetype/render"
)

// stubMeasurer 与 plan 包测试中的桩实现一致：宽度与字符数、字号线性相关。
type stubMeasurer struct{}

func (stubMeasurer) WordWidth(text string, _ string, sizePx float64) float64 {
	return float64(len(text)) * sizePx * 0.55
}

func buildTestPlan(t *testing.T, lines []lyrics.Line, beats []float64, doc *direction.Document) (*plan.Plan, *direction.Interpreter) {
	t.Helper()
	interp := direction.NewInterpreter(doc)
	p, err := plan.Build(lines, lyrics.BeatGrid{Beats: beats}, interp, plan.BuildOptions{
		Measurer:  stubMeasurer{},
		ViewportW: 1280,
		ViewportH: 720,
	})
	if err != nil {
		t.Fatalf("plan build: %v", err)
	}
	return p, interp
}

func testLines() []lyrics.Line {
	return []lyrics.Line{
		{Start: 1, End: 4, Text: "we were running through the night together"},
		{Start: 4, End: 7, Text: "hold me closer now"},
		{Start: 8, End: 10, Text: "fire in my heart", Tag: "hook"},
	}
}

func newTestRenderer(t *testing.T, p *plan.Plan, interp *direction.Interpreter, seed uint64) *Renderer {
	t.Helper()
	r, err := New(p, interp, Options{Seed: seed, Logger: log.New(&bytes.Buffer{}, "", 0)})
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func TestRenderFrameDrawsRevealedWords(t *testing.T) {
	p, interp := buildTestPlan(t, testLines(), nil, nil)
	r := newTestRenderer(t, p, interp, 42)

	f := r.RenderFrame(FrameInput{Now: 2.5, BeatIntensity: 0.5, Physics: PhysicsState{Scale: 1}})
	if len(f.Text) == 0 {
		t.Fatalf("expected glyph runs mid-line, got none")
	}
	for _, run := range f.Text {
		if run.SizePx <= 0 {
			t.Fatalf("glyph run %q has non-positive size", run.Text)
		}
	}
}

func TestRenderFrameEmptyInGaps(t *testing.T) {
	p, interp := buildTestPlan(t, testLines(), nil, nil)
	r := newTestRenderer(t, p, interp, 42)

	// 7..8 is a gap between lines 1 and 2
	f := r.RenderFrame(FrameInput{Now: 7.5, Physics: PhysicsState{Scale: 1}})
	if len(f.Text) != 0 {
		t.Fatalf("expected no text in the inter-line gap, got %d runs", len(f.Text))
	}
	f = r.RenderFrame(FrameInput{Now: 30, Physics: PhysicsState{Scale: 1}})
	if len(f.Text) != 0 {
		t.Fatalf("expected no text past the song end, got %d runs", len(f.Text))
	}
}

// Two independent sessions over the same inputs must emit identical draw
// lists: no wall-clock or map-order entropy may leak into a frame.
func TestRenderFrameDeterministic(t *testing.T) {
	in := FrameInput{Now: 2.5, BeatIndex: 3, BeatIntensity: 0.6, Physics: PhysicsState{Scale: 1}}

	p1, i1 := buildTestPlan(t, testLines(), nil, nil)
	p2, i2 := buildTestPlan(t, testLines(), nil, nil)
	f1 := newTestRenderer(t, p1, i1, 99).RenderFrame(in)
	a := append([]render.GlyphRun(nil), f1.Text...)
	f2 := newTestRenderer(t, p2, i2, 99).RenderFrame(in)
	b := f2.Text

	if len(a) != len(b) {
		t.Fatalf("run counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("run %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestFallbackEffectBeforeFirstReveal(t *testing.T) {
	// beats pull word reveals later than the line start, leaving a window
	// where the line is active but nothing has revealed
	lines := []lyrics.Line{{Start: 1, End: 3, Text: "slow bloom here now"}}
	p, interp := buildTestPlan(t, lines, []float64{1.05, 1.55, 2.05, 2.55}, nil)
	r := newTestRenderer(t, p, interp, 7)

	if got := p.Lines[0].VisibleCount(1.02); got != 0 {
		t.Fatalf("precondition: expected 0 visible words at t=1.02, got %d", got)
	}
	f := r.RenderFrame(FrameInput{Now: 1.02, BeatIntensity: 0.4, Physics: PhysicsState{Scale: 1}})
	if len(f.Text) == 0 && len(f.Glow) == 0 {
		t.Fatalf("expected a fallback effect to draw something before the first reveal")
	}
}

func TestMissingTimingLoggedOnceAndDrawsNothing(t *testing.T) {
	p, interp := buildTestPlan(t, testLines(), nil, nil)
	var buf bytes.Buffer
	r, err := New(p, interp, Options{Seed: 1, Logger: log.New(&buf, "", 0)})
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	// simulate a corrupt plan line: timing array shorter than the word list
	p.Lines[0].Reveal = p.Lines[0].Reveal[:1]

	for i := 0; i < 3; i++ {
		f := r.RenderFrame(FrameInput{Now: 2.5, Physics: PhysicsState{Scale: 1}})
		if len(f.Text) != 0 {
			t.Fatalf("pass %d: expected nothing drawn for a line without per-word timing", i)
		}
	}
	if n := strings.Count(buf.String(), "no per-word timing"); n != 1 {
		t.Fatalf("expected exactly one diagnostic, got %d:\n%s", n, buf.String())
	}
}

func TestKaraokeTwoSlots(t *testing.T) {
	p, interp := buildTestPlan(t, testLines(), nil, nil)
	r, err := New(p, interp, Options{Seed: 1, Karaoke: true, Logger: log.New(&bytes.Buffer{}, "", 0)})
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	// inside line 1, so line 0 echoes below
	f := r.RenderFrame(FrameInput{Now: 5.0, BeatIntensity: 0.3, Physics: PhysicsState{Scale: 1}})
	currentY := 720 * 0.40
	echoY := 720 * 0.62
	sawCurrent, sawEcho := false, false
	for _, run := range f.Text {
		switch run.Y {
		case currentY:
			sawCurrent = true
		case echoY:
			sawEcho = true
		default:
			t.Fatalf("karaoke run %q at y=%.1f, want one of the two fixed slots", run.Text, run.Y)
		}
	}
	if !sawCurrent || !sawEcho {
		t.Fatalf("want both karaoke slots populated, current=%v echo=%v", sawCurrent, sawEcho)
	}
}

func TestShotOverlayAndOpacity(t *testing.T) {
	doc := &direction.Document{
		Storyboard: []direction.LineDirection{{Shot: "alone-in-void"}},
	}
	p, interp := buildTestPlan(t, testLines()[:1], nil, doc)
	r := newTestRenderer(t, p, interp, 3)

	f := r.RenderFrame(FrameInput{Now: 2.5, Physics: PhysicsState{Scale: 1}})
	if len(f.Overlay) == 0 {
		t.Fatalf("expected the shot tint in the overlay layer")
	}
	for _, run := range f.Text {
		if run.Color.A > 0.85 {
			t.Fatalf("shot should cap text opacity at 0.8, got %.2f for %q", run.Color.A, run.Text)
		}
	}
}

func TestTypographyTransformUppercase(t *testing.T) {
	doc := &direction.Document{}
	doc.World.Typography = direction.TypographyProfile{Family: "Inter", Transform: "uppercase"}
	p, interp := buildTestPlan(t, testLines()[:1], nil, doc)
	r := newTestRenderer(t, p, interp, 5)

	f := r.RenderFrame(FrameInput{Now: 2.5, Physics: PhysicsState{Scale: 1}})
	if len(f.Text) == 0 {
		t.Fatalf("expected glyph runs")
	}
	for _, run := range f.Text {
		if run.Text != strings.ToUpper(run.Text) {
			t.Fatalf("run %q not uppercased", run.Text)
		}
	}
}

func TestClimaxMomentFlash(t *testing.T) {
	doc := &direction.Document{Climax: direction.Climax{TimeRatio: 0.63}}
	p, interp := buildTestPlan(t, testLines()[:1], nil, doc)
	r := newTestRenderer(t, p, interp, 5)

	// plan duration 4s, so t=2.5 is progress 0.625, inside the ±0.02 window
	f := r.RenderFrame(FrameInput{Now: 2.5, Physics: PhysicsState{Scale: 1}})
	if len(f.Overlay) == 0 {
		t.Fatalf("expected the climax flash in the overlay layer")
	}
	// outside the window the flash must vanish
	f = r.RenderFrame(FrameInput{Now: 3.2, Physics: PhysicsState{Scale: 1}})
	if len(f.Overlay) != 0 {
		t.Fatalf("no overlay expected at progress 0.8, got %d", len(f.Overlay))
	}
}

func TestPanicRecoveryDropsFrame(t *testing.T) {
	p, interp := buildTestPlan(t, testLines(), nil, nil)
	var buf bytes.Buffer
	r, err := New(p, interp, Options{Seed: 1, Logger: log.New(&buf, "", 0)})
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	// force a panic inside the frame body
	p.Lines[0].Categories = nil

	f := r.RenderFrame(FrameInput{Now: 2.5, Physics: PhysicsState{Scale: 1}})
	if f == nil {
		t.Fatalf("recovered frame must not be nil")
	}
	if len(f.Text) != 0 {
		t.Fatalf("dropped frame should be empty")
	}
	if !strings.Contains(buf.String(), "dropped") {
		t.Fatalf("expected a dropped-frame log entry, got: %s", buf.String())
	}
}

func TestWordHistoryAppearanceIdempotent(t *testing.T) {
	s := newTextState(16)

	// the same occurrence re-rendered over many frames advances once
	for i := 0; i < 60; i++ {
		s.track("fire", 1, 1.0+float64(i)/60, 100, 200)
	}
	h := s.History("fire")
	if h == nil || h.Count != 1 {
		t.Fatalf("count after repeated frames of occurrence 1: got %+v, want Count=1", h)
	}
	// later occurrences advance by exactly one each
	for occ := 2; occ <= 7; occ++ {
		s.track("fire", occ, float64(occ), float64(occ*10), 200)
	}
	if h.Count != 7 {
		t.Fatalf("count = %d, want 7", h.Count)
	}
	if len(h.Positions) != maxHistoryPositions {
		t.Fatalf("positions trimmed to %d, want %d", len(h.Positions), maxHistoryPositions)
	}
	if h.Positions[len(h.Positions)-1].X != 70 {
		t.Fatalf("latest position X = %.0f, want 70", h.Positions[len(h.Positions)-1].X)
	}
}

func TestCachedMeasurerEvictsFIFO(t *testing.T) {
	m := NewCachedMeasurer(stubMeasurer{}, 3)
	for _, w := range []string{"a", "b", "c", "d"} {
		m.WordWidth(w, "", 50)
	}
	if m.Len() != 3 {
		t.Fatalf("cache len = %d, want capacity 3", m.Len())
	}
	// "a" was evicted first; re-measuring it evicts "b" in turn
	m.WordWidth("a", "", 50)
	if m.Len() != 3 {
		t.Fatalf("cache len after refill = %d, want 3", m.Len())
	}
	if w := m.WordWidth("bb", "", 50); !almostEqual(w, 55) {
		t.Fatalf("measured width = %v, want 55", w)
	}
}

func TestDisplayModeTable(t *testing.T) {
	mk := func(words string, dur float64) *plan.Line {
		ws := strings.Fields(words)
		return &plan.Line{
			Src:    lyrics.Line{Start: 0, End: dur, Text: words},
			Words:  ws,
			Reveal: make([]float64, len(ws)),
		}
	}
	cases := []struct {
		name      string
		pl        *plan.Line
		isHook    bool
		cinematic bool
		want      displayMode
	}{
		{"hook forces single word", mk("we were running through the night", 3), true, false, modeSingleWord},
		{"three words or fewer", mk("hold me now", 3), false, false, modeSingleWord},
		{"fast line stacks two rows", mk("quick words tumbling over each other", 0.8), false, false, modeTwoLineStack},
		{"fast line cinematic stays single", mk("quick words tumbling over each other", 0.8), false, true, modeSingleWord},
		{"normal line stacks the phrase", mk("we were running through the night", 3), false, false, modePhraseStack},
	}
	for _, tc := range cases {
		if got := resolveDisplayMode(tc.pl, tc.isHook, tc.cinematic); got != tc.want {
			t.Errorf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}

	impact := mk("burning through the endless furious night", 3)
	impact.HasImpact = true
	if got := resolveDisplayMode(impact, false, false); got != modeSingleWord {
		t.Errorf("impact word line: got %s, want single_word", got)
	}
}

func TestChapterMoodTintsWashAndScalesAmbient(t *testing.T) {
	mk := func(mood string) *Renderer {
		doc := &direction.Document{Chapters: []direction.Chapter{
			{StartRatio: 0, EndRatio: 1, Mood: mood, Particles: "embers"},
		}}
		p, interp := buildTestPlan(t, testLines(), nil, doc)
		return newTestRenderer(t, p, interp, 9)
	}
	// 7..8 is a gap, so the frame holds only the backdrop and the ambient field
	in := FrameInput{Now: 7.5, Physics: PhysicsState{Scale: 1}}
	violent := mk("violent").RenderFrame(in)
	hollow := mk("hollow").RenderFrame(in)
	plain := mk("").RenderFrame(in)

	if violent.Background == plain.Background {
		t.Fatalf("mood must tint the scene wash, got the neutral %+v", violent.Background)
	}
	if len(violent.Glow) <= len(hollow.Glow) {
		t.Fatalf("violent mood must emit a denser ambient field: %d vs %d circles",
			len(violent.Glow), len(hollow.Glow))
	}
}

func TestChapterTypographyShiftOverridesWeight(t *testing.T) {
	doc := &direction.Document{Chapters: []direction.Chapter{
		{StartRatio: 0, EndRatio: 1, Typography: "black"},
	}}
	doc.World.Typography = direction.TypographyProfile{Weight: "regular"}
	p, interp := buildTestPlan(t, testLines(), nil, doc)
	r := newTestRenderer(t, p, interp, 9)

	f := r.RenderFrame(FrameInput{Now: 2.5, Physics: PhysicsState{Scale: 1}})
	if len(f.Text) == 0 {
		t.Fatalf("expected glyph runs")
	}
	for _, run := range f.Text {
		if run.Weight != "black" {
			t.Fatalf("run %q weight = %q, want the chapter shift %q", run.Text, run.Weight, "black")
		}
	}
}

func TestShotThinsAmbientField(t *testing.T) {
	mk := func(shot string) *Renderer {
		doc := &direction.Document{
			Chapters:   []direction.Chapter{{StartRatio: 0, EndRatio: 1, Particles: "rain"}},
			Storyboard: []direction.LineDirection{{Shot: shot}},
		}
		p, interp := buildTestPlan(t, testLines()[:1], nil, doc)
		return newTestRenderer(t, p, interp, 9)
	}
	in := FrameInput{Now: 2.5, Physics: PhysicsState{Scale: 1}}
	void := mk("alone-in-void").RenderFrame(in)
	open := mk("").RenderFrame(in)
	if len(void.Backdrop) >= len(open.Backdrop) {
		t.Fatalf("alone-in-void must thin the particle field: %d vs %d backdrop entries",
			len(void.Backdrop), len(open.Backdrop))
	}
}

// Cinematic sizing keys the base size off the longest word, so a multi-word
// phrase fits the viewport only when drawn from the plan's pre-wrapped rows.
// Every revealed word must land on screen, spread over several rows.
func TestCinematicPhraseStackUsesSegments(t *testing.T) {
	doc := &direction.Document{}
	doc.World.Typography = direction.TypographyProfile{Family: "Inter"}
	lines := []lyrics.Line{{Start: 1, End: 4, Text: "we were running through the night together holding on forever"}}
	p, interp := buildTestPlan(t, lines, nil, doc)

	pl := &p.Lines[0]
	if !p.Cinematic || len(pl.Segments) < 2 {
		t.Fatalf("precondition: want a cinematic plan with wrapped rows, got cinematic=%v segments=%v",
			p.Cinematic, pl.Segments)
	}
	r := newTestRenderer(t, p, interp, 11)

	// past the last reveal, every word is visible
	f := r.RenderFrame(FrameInput{Now: 3.9, Physics: PhysicsState{Scale: 1}})
	onScreen := map[string]bool{}
	rows := map[float64]bool{}
	for _, run := range f.Text {
		if run.X >= 0 && run.X <= f.Width {
			onScreen[run.Text] = true
			rows[run.Y] = true
		}
	}
	for _, w := range pl.Words {
		if !onScreen[w] {
			t.Fatalf("revealed word %q has no on-screen glyph run", w)
		}
	}
	if len(rows) < 2 {
		t.Fatalf("expected the phrase spread over multiple rows, got %d", len(rows))
	}
}

func TestRepeatedLinesMarkBothOccurrences(t *testing.T) {
	lines := []lyrics.Line{
		{Start: 0, End: 2, Text: "verse line one"},
		{Start: 2, End: 4, Text: "Fire in my heart"},
		{Start: 4, End: 6, Text: "fire in my HEART"},
	}
	p, _ := buildTestPlan(t, lines, nil, nil)
	got := repeatedLines(p)
	want := []bool{false, true, true}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("repeated[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
