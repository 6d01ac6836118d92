package lyrics

import (
	"fmt"
	"sort"

	"github.com/tidwall/gjson"
)

// Loaders for the transcript and beat-grid JSON documents. Both documents come
// out of external pipelines (transcription, beat detection), so individual
// fields are read leniently: a missing field defaults instead of failing.

// ParseLines reads a transcript document. Accepts either a bare array of line
// objects or an object with a "lines" array.
func ParseLines(data []byte) ([]Line, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("transcript is not valid JSON")
	}
	root := gjson.ParseBytes(data)
	arr := root
	if !root.IsArray() {
		arr = root.Get("lines")
	}
	if !arr.IsArray() {
		return nil, fmt.Errorf("transcript has no line array")
	}
	var lines []Line
	arr.ForEach(func(_, item gjson.Result) bool {
		text := item.Get("text").String()
		if text == "" {
			return true // skip empty entries rather than erroring
		}
		lines = append(lines, Line{
			Start: item.Get("start").Float(),
			End:   item.Get("end").Float(),
			Text:  text,
			Tag:   item.Get("tag").String(),
		})
		return true
	})
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Start < lines[j].Start })
	return lines, nil
}

// ParseBeatGrid reads a beat-grid document `{bpm, beats, confidence}`.
// Beats are sorted defensively; detectors occasionally emit near-duplicates,
// which are kept (snapping only cares about the nearest one).
func ParseBeatGrid(data []byte) (BeatGrid, error) {
	if !gjson.ValidBytes(data) {
		return BeatGrid{}, fmt.Errorf("beat grid is not valid JSON")
	}
	root := gjson.ParseBytes(data)
	grid := BeatGrid{
		BPM:        root.Get("bpm").Float(),
		Confidence: root.Get("confidence").Float(),
	}
	for _, b := range root.Get("beats").Array() {
		grid.Beats = append(grid.Beats, b.Float())
	}
	sort.Float64s(grid.Beats)
	return grid, nil
}
