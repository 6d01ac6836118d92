package plan

import "sort"

// Cursor tracks the previously resolved line index so that normal forward
// playback is O(1) amortized. Seeks (non-monotonic time) repair with a small
// number of linear steps from the previous index and fall back to a binary
// search when the jump is larger.

// maxRepairSteps bounds the linear walk before giving up on locality.
const maxRepairSteps = 4

// Cursor is owned by one render session and must not be shared.
type Cursor struct {
	idx int // last resolved (or nearest) line index
	ptr int // lookahead pointer for NextStartAfter
}

// ActiveLineIndex returns the index of the line whose [start,end) window
// contains t, or -1 when t falls between lines. The cursor's previous index
// is the search hint.
func (c *Cursor) ActiveLineIndex(p *Plan, t float64) int {
	n := len(p.Lines)
	if n == 0 {
		return -1
	}
	if c.idx < 0 {
		c.idx = 0
	}
	if c.idx >= n {
		c.idx = n - 1
	}

	// local repair: walk forward/backward a bounded number of steps
	i := c.idx
	for steps := 0; steps <= maxRepairSteps; steps++ {
		if contains(p, i, t) {
			c.idx = i
			return i
		}
		switch {
		case t >= p.Ends[i] && i+1 < n:
			i++
		case t < p.Starts[i] && i > 0:
			i--
		default:
			// locality exhausted in this direction; t is in a gap near i
			c.idx = i
			return -1
		}
	}

	// seek: binary search for the rightmost line starting at or before t
	j := sort.SearchFloat64s(p.Starts, t)
	if j > 0 && (j == n || p.Starts[j] > t) {
		j--
	}
	if j >= n {
		j = n - 1
	}
	c.idx = j
	if contains(p, j, t) {
		return j
	}
	return -1
}

func contains(p *Plan, i int, t float64) bool {
	return t >= p.Starts[i] && t < p.Ends[i]
}

// NextStartAfter returns the first line start strictly after t, advancing an
// incremental pointer. ok is false past the last line. Seeks backward reset
// the pointer by scanning, which is the rare path.
func (c *Cursor) NextStartAfter(p *Plan, t float64) (float64, bool) {
	n := len(p.Starts)
	if n == 0 {
		return 0, false
	}
	if c.ptr < 0 || c.ptr >= n {
		c.ptr = 0
	}
	// rewind on backward seek
	for c.ptr > 0 && p.Starts[c.ptr-1] > t {
		c.ptr--
	}
	for c.ptr < n && p.Starts[c.ptr] <= t {
		c.ptr++
	}
	if c.ptr >= n {
		return 0, false
	}
	return p.Starts[c.ptr], true
}

// Reset forgets all locality hints (renderer teardown / plan rebuild).
func (c *Cursor) Reset() {
	c.idx = 0
	c.ptr = 0
}
