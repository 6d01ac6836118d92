package script_test

import (
	"strings"
	"testing"

	"github.com/ByLCY/kinetype/script"
)

const sampleScript = `
// 手写执导脚本示例
direction "Midnight Run" {
  chapter intro 0.0 0.25 {
    mood: "somber"
    particles: "dust"
    light: above
  }
  chapter storm 0.25 0.7 {
    mood: "furious"
    light: top-left
  }

  tension 0.25 0.7 aggression 1.6
  climax 0.66

  typography {
    family: "Inter"
    weight: bold
    letter-spacing: 1.5
    transform: uppercase
  }

  word "Fire!" {
    kinetic: SHAKE
    elemental: FIRE
    evolution: "grows larger and more luminous"
    color: #ff5a36
    emphasis: 3
  }

  line 2 {
    hero: "fire"
    entry: slide
    exit: dissolve
    shot: submerged
    hook
  }
}
`

func TestParseScript(t *testing.T) {
	s, err := script.ParseString(sampleScript)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if string(s.Title) != "Midnight Run" {
		t.Fatalf("expected title Midnight Run, got %s", s.Title)
	}
	if len(s.Decls) != 7 {
		t.Fatalf("expected 7 declarations, got %d", len(s.Decls))
	}

	intro := s.Decls[0].Chapter
	if intro == nil || intro.Name != "intro" {
		t.Fatalf("expected intro chapter first, got %+v", s.Decls[0])
	}
	if intro.From != 0 || intro.To != 0.25 {
		t.Fatalf("intro window = %v..%v", intro.From, intro.To)
	}

	tension := s.Decls[2].Tension
	if tension == nil || tension.Aggression != 1.6 {
		t.Fatalf("expected tension aggression 1.6, got %+v", s.Decls[2])
	}
	if climax := s.Decls[3].Climax; climax == nil || climax.At != 0.66 {
		t.Fatalf("expected climax 0.66, got %+v", s.Decls[3])
	}

	word := s.Decls[5].Word
	if word == nil || string(word.Token) != "Fire!" {
		t.Fatalf("expected word decl, got %+v", s.Decls[5])
	}
	line := s.Decls[6].Line
	if line == nil || line.Index != 2 {
		t.Fatalf("expected line 2, got %+v", s.Decls[6])
	}
}

func TestCompileScript(t *testing.T) {
	s, err := script.ParseString(sampleScript)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	doc, err := script.Compile(s)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}

	if len(doc.Chapters) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(doc.Chapters))
	}
	if doc.Chapters[0].Light != "above" || doc.Chapters[1].Light != "top-left" {
		t.Fatalf("chapter lights: %q / %q", doc.Chapters[0].Light, doc.Chapters[1].Light)
	}
	if len(doc.Tension) != 1 || doc.Tension[0].Aggression != 1.6 {
		t.Fatalf("tension stages: %+v", doc.Tension)
	}
	if doc.Climax.TimeRatio != 0.66 {
		t.Fatalf("climax ratio = %v", doc.Climax.TimeRatio)
	}

	if !doc.World.Typography.Cinematic() {
		t.Fatalf("typography family must activate the cinematic path")
	}
	if doc.World.Typography.Weight != "bold" || doc.World.Typography.LetterSpacing != 1.5 {
		t.Fatalf("typography profile: %+v", doc.World.Typography)
	}

	// 词条键应为规范化形式："Fire!" → "fire"
	wd, ok := doc.Words["fire"]
	if !ok {
		t.Fatalf("word directive missing under normalized key, got: %v", doc.Words)
	}
	if wd.Kinetic != "SHAKE" || wd.Elemental != "FIRE" || wd.Color != "#ff5a36" || wd.Emphasis != 3 {
		t.Fatalf("word directive: %+v", wd)
	}
	if !strings.Contains(wd.Evolution, "larger") {
		t.Fatalf("evolution rule lost: %q", wd.Evolution)
	}

	// storyboard 需补齐到 line 2
	if len(doc.Storyboard) != 3 {
		t.Fatalf("storyboard length = %d, want 3", len(doc.Storyboard))
	}
	ld := doc.Storyboard[2]
	if ld.HeroWord != "fire" || ld.Entry != "slide" || ld.Shot != "submerged" || !ld.Hook {
		t.Fatalf("line direction: %+v", ld)
	}
	if doc.Storyboard[0].Hook {
		t.Fatalf("padded storyboard entries must stay zero")
	}
}

func TestCompileClampsRatios(t *testing.T) {
	s, err := script.ParseString(`direction "x" {
  chapter outro 0.8 1.7 {
    mood: "calm"
  }
  climax 1.2
}`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	doc, err := script.Compile(s)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if doc.Chapters[0].EndRatio != 1 {
		t.Fatalf("end ratio not clamped: %v", doc.Chapters[0].EndRatio)
	}
	if doc.Climax.TimeRatio != 1 {
		t.Fatalf("climax not clamped: %v", doc.Climax.TimeRatio)
	}
}

func TestCompileRejectsEmptyWord(t *testing.T) {
	s, err := script.ParseString(`direction "x" {
  word "!!!" {
    kinetic: SHAKE
  }
}`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if _, err := script.Compile(s); err == nil {
		t.Fatalf("expected an error for a word that normalizes to nothing")
	}
}
