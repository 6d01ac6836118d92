package lyrics

// Category is the lexical class of a word, used to pick per-word stylistic
// defaults before any directive override applies.
type Category int

const (
	CategoryNeutral Category = iota
	CategoryImpact           // hard, percussive words; force single_word display
	CategoryTender           // soft emotional words; wider glow, slower motion
	CategoryMotion           // movement words; extra horizontal drift
)

// String returns the category name for logs and debug dumps.
func (c Category) String() string {
	switch c {
	case CategoryImpact:
		return "impact"
	case CategoryTender:
		return "tender"
	case CategoryMotion:
		return "motion"
	default:
		return "neutral"
	}
}

var impactWords = map[string]struct{}{
	"fire": {}, "burn": {}, "burning": {}, "break": {}, "broken": {}, "crash": {},
	"die": {}, "dead": {}, "kill": {}, "fight": {}, "war": {}, "scream": {},
	"loud": {}, "bang": {}, "hit": {}, "blood": {}, "storm": {}, "thunder": {},
	"explode": {}, "shatter": {}, "smash": {}, "rage": {}, "wild": {}, "hard": {},
}

var tenderWords = map[string]struct{}{
	"love": {}, "heart": {}, "soul": {}, "hold": {}, "home": {}, "stay": {},
	"breathe": {}, "dream": {}, "soft": {}, "gentle": {}, "warm": {}, "light": {},
	"angel": {}, "baby": {}, "forever": {}, "miss": {}, "tears": {}, "cry": {},
}

var motionWords = map[string]struct{}{
	"run": {}, "running": {}, "fall": {}, "falling": {}, "fly": {}, "flying": {},
	"rise": {}, "rising": {}, "drive": {}, "dance": {}, "dancing": {}, "jump": {},
	"spin": {}, "drift": {}, "chase": {}, "move": {}, "go": {}, "ride": {},
}

// Classify maps a raw word onto its lexical category. Pure lookup over the
// normalized form; unknown words are neutral.
func Classify(word string) Category {
	n := Normalize(word)
	if _, ok := impactWords[n]; ok {
		return CategoryImpact
	}
	if _, ok := tenderWords[n]; ok {
		return CategoryTender
	}
	if _, ok := motionWords[n]; ok {
		return CategoryMotion
	}
	return CategoryNeutral
}
