package lyrics

import "strings"

// 该文件定义歌词与节拍网格的基础数据结构，供计划构建与渲染阶段共用。

// Line is a single transcribed lyric line. Immutable once loaded.
// Start/End are song times in seconds; lines are ordered and in practice
// non-overlapping, but nothing enforces that.
type Line struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Tag   string  `json:"tag,omitempty"` // "main" | "adlib" | "hook"
}

// Duration returns End-Start, never negative.
func (l Line) Duration() float64 {
	if l.End <= l.Start {
		return 0
	}
	return l.End - l.Start
}

// BeatGrid is the read-only output of the external beat detector.
type BeatGrid struct {
	BPM        float64   `json:"bpm"`
	Beats      []float64 `json:"beats"` // sorted, seconds
	Confidence float64   `json:"confidence"`
}

// Normalize lowercases a token and strips everything outside [a-z0-9],
// including apostrophes, so "Burnin'!" and "burnin" share one key. All
// directive/history lookups are keyed by this form.
func Normalize(word string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(word) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Words splits a line's text on whitespace. Empty tokens never appear.
func Words(text string) []string {
	return strings.Fields(text)
}
