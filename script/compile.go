package script

import (
	"fmt"

	"github.com/ByLCY/kinetype/direction"
	"github.com/ByLCY/kinetype/lyrics"
)

// Compile lowers a parsed script into a direction document. Ratios are
// clamped to [0,1] and word keys normalized, matching what the JSON loader
// does, so both authoring paths feed the interpreter identical documents.
func Compile(s *Script) (*direction.Document, error) {
	if s == nil {
		return nil, fmt.Errorf("脚本为空")
	}
	doc := &direction.Document{Words: map[string]direction.WordDirective{}}

	for _, d := range s.Decls {
		switch {
		case d.Chapter != nil:
			doc.Chapters = append(doc.Chapters, compileChapter(d.Chapter))
		case d.Tension != nil:
			doc.Tension = append(doc.Tension, direction.TensionStage{
				StartRatio: clampRatio(d.Tension.From),
				EndRatio:   clampRatio(d.Tension.To),
				Aggression: d.Tension.Aggression,
			})
		case d.Climax != nil:
			doc.Climax.TimeRatio = clampRatio(d.Climax.At)
		case d.Typography != nil:
			compileTypography(d.Typography, &doc.World.Typography)
		case d.Word != nil:
			norm := lyrics.Normalize(string(d.Word.Token))
			if norm == "" {
				return nil, fmt.Errorf("word %q 规范化后为空", string(d.Word.Token))
			}
			doc.Words[norm] = compileWord(d.Word)
		case d.Line != nil:
			if d.Line.Index < 0 {
				return nil, fmt.Errorf("line 序号不能为负: %d", d.Line.Index)
			}
			for len(doc.Storyboard) <= d.Line.Index {
				doc.Storyboard = append(doc.Storyboard, direction.LineDirection{})
			}
			doc.Storyboard[d.Line.Index] = compileLine(d.Line)
		}
	}
	return doc, nil
}

func compileChapter(c *ChapterDecl) direction.Chapter {
	ch := direction.Chapter{
		Name:       c.Name,
		StartRatio: clampRatio(c.From),
		EndRatio:   clampRatio(c.To),
	}
	for _, p := range c.Props {
		switch p.Key {
		case "mood":
			ch.Mood = p.Value.text()
		case "particles":
			ch.Particles = p.Value.text()
		case "light":
			ch.Light = p.Value.text()
		case "typography":
			ch.Typography = p.Value.text()
		}
	}
	return ch
}

func compileTypography(t *TypographyDecl, profile *direction.TypographyProfile) {
	for _, p := range t.Props {
		switch p.Key {
		case "family":
			profile.Family = p.Value.text()
		case "weight":
			profile.Weight = p.Value.text()
		case "letter-spacing":
			profile.LetterSpacing = p.Value.number()
		case "transform":
			profile.Transform = p.Value.text()
		}
	}
}

func compileWord(w *WordDecl) direction.WordDirective {
	wd := direction.WordDirective{}
	for _, p := range w.Props {
		switch p.Key {
		case "kinetic":
			wd.Kinetic = p.Value.text()
		case "elemental":
			wd.Elemental = p.Value.text()
		case "evolution":
			wd.Evolution = p.Value.text()
		case "color":
			wd.Color = p.Value.text()
		case "emphasis":
			wd.Emphasis = int(p.Value.number())
		}
	}
	return wd
}

func compileLine(l *LineDecl) direction.LineDirection {
	ld := direction.LineDirection{}
	for _, p := range l.Props {
		switch p.Key {
		case "hero":
			ld.HeroWord = lyrics.Normalize(p.Value.text())
		case "entry":
			ld.Entry = p.Value.text()
		case "exit":
			ld.Exit = p.Value.text()
		case "shot":
			ld.Shot = p.Value.text()
		case "hook":
			ld.Hook = true
		}
	}
	return ld
}

func clampRatio(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
