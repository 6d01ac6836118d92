package direction

// 该文件定义"电影化执导"文档的数据结构。文档由 AI 生成、按歌曲生成一次，
// 所有字段均为可选：缺失或越界的值由解释器降级为默认值，绝不让帧循环崩溃。

// Document is the cinematic-direction document for one song.
type Document struct {
	Chapters   []Chapter                `json:"chapters"`
	Tension    []TensionStage           `json:"tensionCurve"`
	Storyboard []LineDirection          `json:"storyboard"` // indexed by line number
	Words      map[string]WordDirective `json:"wordDirectives"`
	Climax     Climax                   `json:"climax"`
	World      VisualWorld              `json:"visualWorld"`
}

// Chapter is a narrative window over normalized song progress [0,1].
type Chapter struct {
	Name       string  `json:"name"`
	StartRatio float64 `json:"startRatio"`
	EndRatio   float64 `json:"endRatio"`
	Mood       string  `json:"mood"`
	Particles  string  `json:"particles"`
	Light      string  `json:"light"` // one of 8 discrete light-source directions
	Typography string  `json:"typographyShift,omitempty"` // chapter-scoped font-weight override
}

// TensionStage scales typography aggression within a progress window.
type TensionStage struct {
	Label      string  `json:"label"`
	StartRatio float64 `json:"startRatio"`
	EndRatio   float64 `json:"endRatio"`
	Aggression float64 `json:"typographyAggression"`
}

// LineDirection is the storyboard entry for one lyric line.
type LineDirection struct {
	HeroWord string `json:"heroWord,omitempty"`
	Entry    string `json:"entry,omitempty"` // fade/slide/materialize/...
	Exit     string `json:"exit,omitempty"`  // fade/dissolve/...
	Shot     string `json:"shot,omitempty"`  // submerged/emerging/consumed/...
	Hook     bool   `json:"hook,omitempty"`
}

// WordDirective carries per-token stylistic overrides. Keys into the
// directive map are normalized tokens (lyrics.Normalize form).
type WordDirective struct {
	Kinetic   string `json:"kineticClass,omitempty"`
	Elemental string `json:"elementalClass,omitempty"`
	Evolution string `json:"evolutionRule,omitempty"` // free text, keyword-matched
	Color     string `json:"colorOverride,omitempty"` // #RRGGBB
	Emphasis  int    `json:"emphasisLevel,omitempty"` // 0..3
}

// Climax marks the song's peak as a progress ratio.
type Climax struct {
	TimeRatio float64 `json:"timeRatio"`
}

// VisualWorld holds song-wide visual identity, of which only the typography
// profile concerns this engine.
type VisualWorld struct {
	Typography TypographyProfile `json:"typographyProfile"`
}

// TypographyProfile selects the cinematic (v2) sizing path when Family is set.
type TypographyProfile struct {
	Family        string  `json:"fontFamily,omitempty"`
	Weight        string  `json:"fontWeight,omitempty"`
	LetterSpacing float64 `json:"letterSpacing,omitempty"`
	Transform     string  `json:"transform,omitempty"` // uppercase/lowercase/none
}

// Cinematic reports whether the v2 typography path is active.
func (p TypographyProfile) Cinematic() bool { return p.Family != "" }
