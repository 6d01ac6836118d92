package direction

import (
	"github.com/ByLCY/kinetype/lyrics"
)

// climaxTolerance is the progress window around climax.timeRatio treated as
// "the climax moment".
const climaxTolerance = 0.02

// Interpreter resolves time/line/word-indexed facts out of a direction
// document. All lookups are total: missing or malformed data degrades to
// defaults and never errors, because the document is AI-generated and may be
// incomplete. The interpreter itself is stateless; the evolution cache is
// owned by the caller (see EvolutionCache) so that two renders never share
// hidden state.
type Interpreter struct {
	doc *Document
}

// NewInterpreter wraps a document; doc may be nil, in which case every lookup
// returns its default.
func NewInterpreter(doc *Document) *Interpreter {
	return &Interpreter{doc: doc}
}

// Document returns the wrapped document (may be nil).
func (in *Interpreter) Document() *Document { return in.doc }

// CurrentChapter returns the first chapter whose [startRatio,endRatio] window
// contains progress, falling back to the first chapter when no window matches
// (gaps or rounding at window edges). With no chapters at all it returns a
// zero Chapter.
func (in *Interpreter) CurrentChapter(progress float64) Chapter {
	if in.doc == nil || len(in.doc.Chapters) == 0 {
		return Chapter{}
	}
	p := clampRatio(progress)
	for _, ch := range in.doc.Chapters {
		if p >= ch.StartRatio && p <= ch.EndRatio {
			return ch
		}
	}
	return in.doc.Chapters[0]
}

// WordDirective looks up the per-token override for a raw word. Absence is
// not an error; nil means "no directive".
func (in *Interpreter) WordDirective(word string) *WordDirective {
	if in.doc == nil || len(in.doc.Words) == 0 {
		return nil
	}
	norm := lyrics.Normalize(word)
	if norm == "" {
		return nil
	}
	if wd, ok := in.doc.Words[norm]; ok {
		out := wd
		return &out
	}
	return nil
}

// LineDirection returns the storyboard entry for a line index, or nil.
func (in *Interpreter) LineDirection(lineIndex int) *LineDirection {
	if in.doc == nil || lineIndex < 0 || lineIndex >= len(in.doc.Storyboard) {
		return nil
	}
	out := in.doc.Storyboard[lineIndex]
	return &out
}

// IsClimaxMoment reports whether progress lies within the fixed tolerance of
// the climax ratio. A missing climax (ratio 0) only matches near the song
// start, which in practice never hosts a climax; that degenerate case is
// accepted rather than special-cased.
func (in *Interpreter) IsClimaxMoment(progress float64) bool {
	if in.doc == nil {
		return false
	}
	d := progress - in.doc.Climax.TimeRatio
	if d < 0 {
		d = -d
	}
	return d <= climaxTolerance
}

// ClimaxEnvelope is a boost that ramps linearly from 0 at ±0.08 progress away
// from the climax up to 1 at the climax itself. Drives the climax-proximity
// scale/glow boost in the frame renderer.
func (in *Interpreter) ClimaxEnvelope(progress float64) float64 {
	if in.doc == nil {
		return 0
	}
	const span = 0.08
	d := progress - in.doc.Climax.TimeRatio
	if d < 0 {
		d = -d
	}
	if d >= span {
		return 0
	}
	return 1 - d/span
}

// TensionAggression returns the typography aggression of the stage containing
// progress, defaulting to 1 outside any stage or when the stage value is
// non-positive.
func (in *Interpreter) TensionAggression(progress float64) float64 {
	if in.doc == nil {
		return 1
	}
	p := clampRatio(progress)
	for _, st := range in.doc.Tension {
		if p >= st.StartRatio && p <= st.EndRatio {
			if st.Aggression > 0 {
				return st.Aggression
			}
			return 1
		}
	}
	return 1
}

// Typography returns the song-wide typography profile (zero value when the
// document carries none).
func (in *Interpreter) Typography() TypographyProfile {
	if in.doc == nil {
		return TypographyProfile{}
	}
	return in.doc.World.Typography
}
