package plan

import (
	"testing"

	"github.com/ByLCY/kinetype/lyrics"
)

func cursorPlan(t *testing.T) *Plan {
	t.Helper()
	lines := []lyrics.Line{
		{Start: 0, End: 2, Text: "one"},
		{Start: 2, End: 4, Text: "two"},
		{Start: 5, End: 7, Text: "three"}, // gap 4..5
		{Start: 7, End: 9, Text: "four"},
	}
	return buildTestPlan(t, lines, nil, nil)
}

// TestSameLineSameIndex: any two times inside one line's window resolve to
// the same index, the line containing them.
func TestSameLineSameIndex(t *testing.T) {
	p := cursorPlan(t)
	var c Cursor
	for _, tt := range []float64{2.0, 2.5, 3.0, 3.999} {
		if got := c.ActiveLineIndex(p, tt); got != 1 {
			t.Fatalf("t=%g: got index %d, want 1", tt, got)
		}
	}
}

func TestForwardPlayback(t *testing.T) {
	p := cursorPlan(t)
	var c Cursor
	want := map[float64]int{0.1: 0, 1.9: 0, 2.0: 1, 4.5: -1, 5.0: 2, 6.9: 2, 7.0: 3, 8.9: 3}
	for _, tt := range []float64{0.1, 1.9, 2.0, 4.5, 5.0, 6.9, 7.0, 8.9} {
		if got := c.ActiveLineIndex(p, tt); got != want[tt] {
			t.Fatalf("t=%g: got %d, want %d", tt, got, want[tt])
		}
	}
}

// TestSeeks: jumping far backward or forward still resolves correctly via the
// binary-search fallback.
func TestSeeks(t *testing.T) {
	p := cursorPlan(t)
	var c Cursor
	if got := c.ActiveLineIndex(p, 8.0); got != 3 {
		t.Fatalf("seek to end: got %d, want 3", got)
	}
	if got := c.ActiveLineIndex(p, 0.5); got != 0 {
		t.Fatalf("seek to start: got %d, want 0", got)
	}
	if got := c.ActiveLineIndex(p, 4.2); got != -1 {
		t.Fatalf("seek into gap: got %d, want -1", got)
	}
	if got := c.ActiveLineIndex(p, 6.0); got != 2 {
		t.Fatalf("seek after gap: got %d, want 2", got)
	}
}

func TestOutsideSong(t *testing.T) {
	p := cursorPlan(t)
	var c Cursor
	if got := c.ActiveLineIndex(p, -1.0); got != -1 {
		t.Fatalf("before song: got %d", got)
	}
	if got := c.ActiveLineIndex(p, 100.0); got != -1 {
		t.Fatalf("after song: got %d", got)
	}
}

func TestNextStartAfter(t *testing.T) {
	p := cursorPlan(t)
	var c Cursor
	if v, ok := c.NextStartAfter(p, 0.5); !ok || v != 2 {
		t.Fatalf("after 0.5: got %g ok=%v, want 2", v, ok)
	}
	if v, ok := c.NextStartAfter(p, 2.0); !ok || v != 5 {
		t.Fatalf("after 2.0: got %g ok=%v, want 5 (strictly after)", v, ok)
	}
	if _, ok := c.NextStartAfter(p, 7.0); ok {
		t.Fatalf("no start after the last line")
	}
	// backward seek rewinds the pointer
	if v, ok := c.NextStartAfter(p, 0.0); !ok || v != 2 {
		t.Fatalf("backward seek: got %g ok=%v, want 2", v, ok)
	}
}

func TestEmptyPlan(t *testing.T) {
	p := &Plan{}
	var c Cursor
	if got := c.ActiveLineIndex(p, 1.0); got != -1 {
		t.Fatalf("empty plan: got %d", got)
	}
	if _, ok := c.NextStartAfter(p, 1.0); ok {
		t.Fatalf("empty plan has no next start")
	}
}
