package direction

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/ByLCY/kinetype/lyrics"
)

// Parse reads a cinematic-direction JSON document. The document is untrusted
// AI output: every field is optional and read through gjson paths, so partial
// or over-complete documents load without error. Only syntactically invalid
// JSON is rejected.
func Parse(data []byte) (*Document, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("direction document is not valid JSON")
	}
	root := gjson.ParseBytes(data)
	doc := &Document{
		Words: map[string]WordDirective{},
	}

	root.Get("chapters").ForEach(func(_, ch gjson.Result) bool {
		doc.Chapters = append(doc.Chapters, Chapter{
			Name:       ch.Get("name").String(),
			StartRatio: clampRatio(ch.Get("startRatio").Float()),
			EndRatio:   clampRatio(ch.Get("endRatio").Float()),
			Mood:       ch.Get("mood").String(),
			Particles:  ch.Get("particles").String(),
			Light:      ch.Get("light").String(),
			Typography: ch.Get("typographyShift").String(),
		})
		return true
	})

	root.Get("tensionCurve").ForEach(func(_, st gjson.Result) bool {
		doc.Tension = append(doc.Tension, TensionStage{
			Label:      st.Get("label").String(),
			StartRatio: clampRatio(st.Get("startRatio").Float()),
			EndRatio:   clampRatio(st.Get("endRatio").Float()),
			Aggression: st.Get("typographyAggression").Float(),
		})
		return true
	})

	root.Get("storyboard").ForEach(func(_, ld gjson.Result) bool {
		doc.Storyboard = append(doc.Storyboard, LineDirection{
			HeroWord: ld.Get("heroWord").String(),
			Entry:    ld.Get("entry").String(),
			Exit:     ld.Get("exit").String(),
			Shot:     ld.Get("shot").String(),
			Hook:     ld.Get("hook").Bool(),
		})
		return true
	})

	root.Get("wordDirectives").ForEach(func(key, wd gjson.Result) bool {
		norm := lyrics.Normalize(key.String())
		if norm == "" {
			return true
		}
		doc.Words[norm] = WordDirective{
			Kinetic:   wd.Get("kineticClass").String(),
			Elemental: wd.Get("elementalClass").String(),
			Evolution: wd.Get("evolutionRule").String(),
			Color:     wd.Get("colorOverride").String(),
			Emphasis:  int(wd.Get("emphasisLevel").Int()),
		}
		return true
	})

	doc.Climax.TimeRatio = clampRatio(root.Get("climax.timeRatio").Float())
	doc.World.Typography = TypographyProfile{
		Family:        root.Get("visualWorld.typographyProfile.fontFamily").String(),
		Weight:        root.Get("visualWorld.typographyProfile.fontWeight").String(),
		LetterSpacing: root.Get("visualWorld.typographyProfile.letterSpacing").Float(),
		Transform:     root.Get("visualWorld.typographyProfile.transform").String(),
	}
	return doc, nil
}

// clampRatio forces a progress ratio into [0,1]; AI documents occasionally
// emit 1.02 or -0.01 at window edges.
func clampRatio(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
