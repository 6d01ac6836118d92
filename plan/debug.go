package plan

import (
	"encoding/json"
	"os"
)

// debugLine is the JSON shape of one plan line in the debug dump.
type debugLine struct {
	Index      int       `json:"index"`
	Text       string    `json:"text"`
	Start      float64   `json:"start"`
	End        float64   `json:"end"`
	Words      []string  `json:"words"`
	Reveal     []float64 `json:"reveal"`
	Snapped    []bool    `json:"snapped"`
	Appearance []int     `json:"appearance"`
	BaseSizePx float64   `json:"baseSizePx"`
	Segments   [][]int   `json:"segments,omitempty"`
}

// WriteDebugJSON dumps the plan as JSON for inspection of snapping and sizing
// decisions.
func WriteDebugJSON(p *Plan, path string) error {
	if p == nil {
		return nil
	}
	out := struct {
		Duration  float64     `json:"duration"`
		Cinematic bool        `json:"cinematic"`
		Lines     []debugLine `json:"lines"`
	}{Duration: p.Duration, Cinematic: p.Cinematic}
	for _, pl := range p.Lines {
		out.Lines = append(out.Lines, debugLine{
			Index:      pl.Index,
			Text:       pl.Src.Text,
			Start:      pl.Src.Start,
			End:        pl.Src.End,
			Words:      pl.Words,
			Reveal:     pl.Reveal,
			Snapped:    pl.Snapped,
			Appearance: pl.Appearance,
			BaseSizePx: pl.BaseSizePx,
			Segments:   pl.Segments,
		})
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
