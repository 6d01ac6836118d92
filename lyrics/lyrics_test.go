package lyrics

import "testing"

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"Burnin'!":  "burnin",
		"FIRE":      "fire",
		"don't":     "dont",
		"  ":        "",
		"re-run":    "rerun",
		"2night":    "2night",
		"héllo":     "hllo", // non-ascii letters are stripped, not transliterated
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q): got %q, want %q", in, got, want)
		}
	}
}

func TestClassify(t *testing.T) {
	if Classify("FIRE!") != CategoryImpact {
		t.Fatalf("fire should classify as impact")
	}
	if Classify("love") != CategoryTender {
		t.Fatalf("love should classify as tender")
	}
	if Classify("running") != CategoryMotion {
		t.Fatalf("running should classify as motion")
	}
	if Classify("table") != CategoryNeutral {
		t.Fatalf("unknown words are neutral")
	}
}

func TestParseLines(t *testing.T) {
	data := []byte(`{"lines": [
		{"start": 12.5, "end": 15.0, "text": "hello world", "tag": "main"},
		{"start": 10.0, "end": 12.0, "text": "first line"},
		{"start": 16.0, "end": 17.0, "text": ""}
	]}`)
	lines, err := ParseLines(data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("empty-text entries must be skipped, got %d lines", len(lines))
	}
	if lines[0].Text != "first line" {
		t.Fatalf("lines must be sorted by start, got %q first", lines[0].Text)
	}
	if lines[1].Tag != "main" {
		t.Fatalf("tag lost: %+v", lines[1])
	}
}

func TestParseLinesBareArray(t *testing.T) {
	lines, err := ParseLines([]byte(`[{"start": 1, "end": 2, "text": "a"}]`))
	if err != nil || len(lines) != 1 {
		t.Fatalf("bare array form should load: %v %d", err, len(lines))
	}
}

func TestParseBeatGrid(t *testing.T) {
	grid, err := ParseBeatGrid([]byte(`{"bpm": 120, "beats": [1.0, 0.5, 1.5], "confidence": 0.9}`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if grid.BPM != 120 || grid.Confidence != 0.9 {
		t.Fatalf("scalar fields: %+v", grid)
	}
	if grid.Beats[0] != 0.5 || grid.Beats[2] != 1.5 {
		t.Fatalf("beats must be sorted: %v", grid.Beats)
	}
}
