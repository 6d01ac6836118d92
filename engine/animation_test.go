package engine

import (
	"math"
	"testing"

	"github.com/ByLCY/kinetype/direction"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestResolveLineWindows(t *testing.T) {
	lc := LineContext{Start: 10, End: 14, WordCount: 5}
	pal := DefaultPalette()

	d := ResolveLine(lc, 10.2, 0, pal)
	if !almostEqual(d.EntryProgress, 0.5) {
		t.Fatalf("entry at +0.2s = %v, want 0.5", d.EntryProgress)
	}
	if d.ExitProgress != 0 {
		t.Fatalf("exit mid-line = %v, want 0", d.ExitProgress)
	}
	d = ResolveLine(lc, 14, 0, pal)
	if d.EntryProgress != 1 || d.ExitProgress != 1 {
		t.Fatalf("at line end: entry=%v exit=%v, want 1/1", d.EntryProgress, d.ExitProgress)
	}
}

// Windows shrink to half the duration so a 0.4s line still has distinct
// entry and exit phases.
func TestResolveLineShortLineWindows(t *testing.T) {
	lc := LineContext{Start: 5, End: 5.4}
	d := ResolveLine(lc, 5.1, 0, DefaultPalette())
	if !almostEqual(d.EntryProgress, 0.5) {
		t.Fatalf("short-line entry at +0.1s = %v, want 0.5 (window capped at 0.2s)", d.EntryProgress)
	}
}

func TestResolveLineModSelection(t *testing.T) {
	pal := DefaultPalette()
	long := LineContext{Start: 0, End: 4}

	if d := ResolveLine(long, 1, 0.8, pal); d.ActiveMod != ModPulseStrong {
		t.Fatalf("strong beat on a long line: mod=%q, want %q", d.ActiveMod, ModPulseStrong)
	}
	if d := ResolveLine(long, 3.9, 0.5, pal); d.ActiveMod != ModFadeOut {
		t.Fatalf("deep exit: mod=%q, want %q", d.ActiveMod, ModFadeOut)
	}
	if d := ResolveLine(long, 1, 0.1, pal); d.ActiveMod != ModDriftSoft {
		t.Fatalf("quiet beat on a slow line: mod=%q, want %q", d.ActiveMod, ModDriftSoft)
	}
	short := LineContext{Start: 0, End: 1.5}
	if d := ResolveLine(short, 0.5, 0.5, pal); d.ActiveMod != "" {
		t.Fatalf("no mod expected, got %q", d.ActiveMod)
	}
}

func TestHookDetectionOrder(t *testing.T) {
	if !isHook(LineContext{Tag: "hook"}) {
		t.Fatal("tag must flag a hook")
	}
	if !isHook(LineContext{Direction: &direction.LineDirection{Hook: true}}) {
		t.Fatal("storyboard must flag a hook")
	}
	if !isHook(LineContext{Repeated: true}) {
		t.Fatal("repetition must flag a hook")
	}
	if isHook(LineContext{Tag: "verse"}) {
		t.Fatal("plain verse is not a hook")
	}
}

func TestHookBoostsScaleAndColor(t *testing.T) {
	pal := DefaultPalette()
	base := ResolveLine(LineContext{Start: 0, End: 4}, 1, 0.5, pal)
	hook := ResolveLine(LineContext{Start: 0, End: 4, Tag: "hook"}, 1, 0.5, pal)

	if hook.FontScale <= base.FontScale {
		t.Fatalf("hook font scale %v must exceed base %v", hook.FontScale, base.FontScale)
	}
	if hook.BeatMultiplier <= base.BeatMultiplier {
		t.Fatalf("hook beat multiplier %v must exceed base %v", hook.BeatMultiplier, base.BeatMultiplier)
	}
	if hook.LineColor == base.LineColor {
		t.Fatalf("hook line color must blend further toward the accent")
	}
}

// The resolver is a pure function: identical inputs, identical descriptor.
func TestResolveLinePure(t *testing.T) {
	lc := LineContext{Index: 2, Start: 10, End: 14, Tag: "hook"}
	a := ResolveLine(lc, 11.3, 0.62, DefaultPalette())
	b := ResolveLine(lc, 11.3, 0.62, DefaultPalette())
	if a != b {
		t.Fatalf("descriptors differ: %+v vs %+v", a, b)
	}
}
