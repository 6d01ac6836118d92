package plan

import (
	"fmt"
	"sort"

	"github.com/ByLCY/kinetype/direction"
	"github.com/ByLCY/kinetype/lyrics"
)

// The word plan is a one-time precomputation pass over the full lyric set.
// It is rebuilt when the line set, viewport, or active font changes, and is
// otherwise an immutable snapshot: the frame renderer reads it every tick
// without allocating or re-deriving anything.

// referenceSizePx is the size at which words are measured once; widths scale
// linearly with font size from there.
const referenceSizePx = 100.0

// DefaultSnapTolerance is the maximum distance (seconds) between a word's
// even-distribution reveal time and a beat for the word to snap to it.
const DefaultSnapTolerance = 0.1

// Measurer reports rendered text width in px at a given size. Implemented by
// the canvas backend; injected so plan building never touches font files.
type Measurer interface {
	WordWidth(text string, weight string, sizePx float64) float64
}

// BuildOptions configures a plan build.
type BuildOptions struct {
	Measurer      Measurer
	ViewportW     float64
	ViewportH     float64
	SnapTolerance float64 // 0 means DefaultSnapTolerance
}

// Line is the precomputed per-line slice of the plan. All slices are indexed
// by word position within the line.
type Line struct {
	Index int
	Src   lyrics.Line

	Words      []string
	Norm       []string
	Reveal     []float64 // snapped (or even-distribution) reveal times, seconds
	Snapped    []bool
	Directives []*direction.WordDirective
	Appearance []int // 1-based occurrence index of Norm[i] across the whole song
	Categories []lyrics.Category

	BaseSizePx float64
	WordWidths []float64  // at BaseSizePx
	Segments   [][]int    // cinematic pre-wrap: word indices per visual row
	HasImpact  bool
}

// Plan is the immutable build output.
type Plan struct {
	Lines    []Line
	Starts   []float64
	Ends     []float64
	Duration float64
	Grid     lyrics.BeatGrid

	ViewportW, ViewportH float64
	Cinematic            bool
}

// Build precomputes the word plan for a song. interp may wrap a nil document;
// the measurer is required.
func Build(lines []lyrics.Line, grid lyrics.BeatGrid, interp *direction.Interpreter, opts BuildOptions) (*Plan, error) {
	if opts.Measurer == nil {
		return nil, fmt.Errorf("plan build requires a measurer")
	}
	if opts.ViewportW <= 0 || opts.ViewportH <= 0 {
		return nil, fmt.Errorf("plan build requires a positive viewport, got %gx%g", opts.ViewportW, opts.ViewportH)
	}
	tol := opts.SnapTolerance
	if tol <= 0 {
		tol = DefaultSnapTolerance
	}
	profile := interp.Typography()

	p := &Plan{
		Grid:      grid,
		ViewportW: opts.ViewportW,
		ViewportH: opts.ViewportH,
		Cinematic: profile.Cinematic(),
	}
	seen := map[string]int{} // plan-wide appearance counters

	for i, src := range lines {
		pl := Line{Index: i, Src: src}
		pl.Words = lyrics.Words(src.Text)
		n := len(pl.Words)
		pl.Norm = make([]string, n)
		pl.Reveal = make([]float64, n)
		pl.Snapped = make([]bool, n)
		pl.Directives = make([]*direction.WordDirective, n)
		pl.Appearance = make([]int, n)
		pl.Categories = make([]lyrics.Category, n)
		pl.WordWidths = make([]float64, n)

		for w, word := range pl.Words {
			pl.Norm[w] = lyrics.Normalize(word)
			pl.Directives[w] = interp.WordDirective(word)
			pl.Categories[w] = lyrics.Classify(word)
			if pl.Categories[w] == lyrics.CategoryImpact {
				pl.HasImpact = true
			}
			if pl.Norm[w] != "" {
				seen[pl.Norm[w]]++
				pl.Appearance[w] = seen[pl.Norm[w]]
			}
			u := unsnappedReveal(src, w, n)
			pl.Reveal[w], pl.Snapped[w] = snapToBeat(u, grid.Beats, tol)
		}

		sizeLine(&pl, opts, profile)

		p.Lines = append(p.Lines, pl)
		p.Starts = append(p.Starts, src.Start)
		p.Ends = append(p.Ends, src.End)
		if src.End > p.Duration {
			p.Duration = src.End
		}
	}
	return p, nil
}

// unsnappedReveal distributes a line's words evenly across [start,end).
func unsnappedReveal(src lyrics.Line, w, n int) float64 {
	if n == 0 {
		return src.Start
	}
	return src.Start + float64(w)*src.Duration()/float64(n)
}

// snapToBeat snaps u to the nearest beat iff it lies within tol; otherwise
// the unsnapped time is kept.
func snapToBeat(u float64, beats []float64, tol float64) (float64, bool) {
	if len(beats) == 0 {
		return u, false
	}
	i := sort.SearchFloat64s(beats, u)
	best := -1.0
	bestDiff := tol + 1
	for _, j := range []int{i - 1, i} {
		if j < 0 || j >= len(beats) {
			continue
		}
		d := u - beats[j]
		if d < 0 {
			d = -d
		}
		if d < bestDiff {
			bestDiff = d
			best = beats[j]
		}
	}
	if bestDiff <= tol {
		return best, true
	}
	return u, false
}

// sizeLine computes the base font size and cached word widths. Two paths:
// the legacy fit-to-width sizing over the whole line, and the cinematic (v2)
// sizing which keys off the longest word and pre-wraps the line into visual
// rows.
func sizeLine(pl *Line, opts BuildOptions, profile direction.TypographyProfile) {
	if len(pl.Words) == 0 {
		pl.BaseSizePx = opts.ViewportH * 0.08
		return
	}
	weight := profile.Weight
	m := opts.Measurer

	if profile.Cinematic() {
		longest := 1.0
		for _, word := range pl.Words {
			if w := m.WordWidth(word, weight, referenceSizePx); w > longest {
				longest = w
			}
		}
		size := referenceSizePx * (opts.ViewportW * 0.72) / longest
		pl.BaseSizePx = clampf(size, 24, opts.ViewportH*0.34)
		measureWidths(pl, m, weight)
		wrapSegments(pl, opts.ViewportW*0.9, profile.LetterSpacing)
		return
	}

	full := m.WordWidth(pl.Src.Text, weight, referenceSizePx)
	if full <= 0 {
		full = 1
	}
	size := referenceSizePx * (opts.ViewportW * 0.82) / full
	pl.BaseSizePx = clampf(size, 18, opts.ViewportH*0.28)
	measureWidths(pl, m, weight)
}

func measureWidths(pl *Line, m Measurer, weight string) {
	for w, word := range pl.Words {
		pl.WordWidths[w] = m.WordWidth(word, weight, pl.BaseSizePx)
	}
}

// wrapSegments greedily groups word indices into rows no wider than limit at
// the line's base size.
func wrapSegments(pl *Line, limit float64, letterSpacing float64) {
	var rows [][]int
	var row []int
	width := 0.0
	space := pl.BaseSizePx * 0.28
	for w := range pl.Words {
		adv := pl.WordWidths[w] + letterSpacing*float64(len(pl.Words[w]))
		if len(row) > 0 && width+space+adv > limit {
			rows = append(rows, row)
			row = nil
			width = 0
		}
		if len(row) > 0 {
			width += space
		}
		row = append(row, w)
		width += adv
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	pl.Segments = rows
}

// Progress converts a song time to normalized progress [0,1].
func (p *Plan) Progress(t float64) float64 {
	if p.Duration <= 0 {
		return 0
	}
	return clampf(t/p.Duration, 0, 1)
}

// VisibleCount reports how many of a line's words have revealed by time t.
func (pl *Line) VisibleCount(t float64) int {
	n := 0
	for _, r := range pl.Reveal {
		if t >= r {
			n++
		}
	}
	return n
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
