package script

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// 执导脚本是"电影化执导"JSON 的手写替代：调参时直接改脚本编译成文档，
// 不必手搓嵌套 JSON。语法刻意扁平：一个 direction 块，内部是若干声明。

var (
	scriptLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})\b`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `-?(?:\d+\.\d+|\d+)`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Punct", Pattern: `[{}:,]`},
	})

	scriptParser = participle.MustBuild[Script](
		participle.Lexer(scriptLexer),
		participle.Elide("Whitespace", "LineComment", "HashComment"),
	)
)

// Script is the root AST node for a direction script.
type Script struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Title StringLiteral  `parser:"Newline* 'direction' @String"`
	Decls []*Decl        `parser:"'{' Newline* ( @@ Newline* )* '}' Newline*"`
}

// Decl is one top-level declaration inside the direction block.
type Decl struct {
	Chapter    *ChapterDecl    `parser:"  @@"`
	Tension    *TensionDecl    `parser:"| @@"`
	Climax     *ClimaxDecl     `parser:"| @@"`
	Typography *TypographyDecl `parser:"| @@"`
	Word       *WordDecl       `parser:"| @@"`
	Line       *LineDecl       `parser:"| @@"`
}

// ChapterDecl declares a narrative window over song progress.
// chapter <name> <from> <to> { mood: "..." ... }
type ChapterDecl struct {
	Name  string  `parser:"'chapter' @Ident"`
	From  float64 `parser:"@Number"`
	To    float64 `parser:"@Number"`
	Props []*Prop `parser:"'{' Newline* ( @@ Newline* )* '}'"`
}

// TensionDecl declares a typography-aggression stage.
// tension <from> <to> aggression <value>
type TensionDecl struct {
	From       float64 `parser:"'tension' @Number"`
	To         float64 `parser:"@Number"`
	Aggression float64 `parser:"'aggression' @Number"`
}

// ClimaxDecl marks the song peak. climax <ratio>
type ClimaxDecl struct {
	At float64 `parser:"'climax' @Number"`
}

// TypographyDecl sets the song-wide typography profile.
type TypographyDecl struct {
	Props []*Prop `parser:"'typography' '{' Newline* ( @@ Newline* )* '}'"`
}

// WordDecl overrides one token. word "fire" { kinetic: SHAKE ... }
type WordDecl struct {
	Token StringLiteral `parser:"'word' @String"`
	Props []*Prop       `parser:"'{' Newline* ( @@ Newline* )* '}'"`
}

// LineDecl is the storyboard entry for one lyric line (0-based index).
type LineDecl struct {
	Index int     `parser:"'line' @Number"`
	Props []*Prop `parser:"'{' Newline* ( @@ Newline* )* '}'"`
}

// Prop is a key with an optional value; a bare key acts as a boolean flag
// (e.g. `hook` inside a line block).
type Prop struct {
	Key   string     `parser:"@Ident"`
	Value *PropValue `parser:"( ':' @@ )?"`
}

// PropValue is a scalar property value.
type PropValue struct {
	Str   *StringLiteral `parser:"  @String"`
	Num   *float64       `parser:"| @Number"`
	Color *string        `parser:"| @Color"`
	Ident *string        `parser:"| @Ident"`
}

// text returns the value as a string, whatever its lexical form.
func (v *PropValue) text() string {
	switch {
	case v == nil:
		return ""
	case v.Str != nil:
		return string(*v.Str)
	case v.Num != nil:
		return strconv.FormatFloat(*v.Num, 'g', -1, 64)
	case v.Color != nil:
		return *v.Color
	case v.Ident != nil:
		return *v.Ident
	default:
		return ""
	}
}

// number returns the numeric value, or 0 when the value is not a number.
func (v *PropValue) number() float64 {
	if v == nil || v.Num == nil {
		return 0
	}
	return *v.Num
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Parse parses a direction script from an io.Reader.
func Parse(r io.Reader) (*Script, error) {
	return scriptParser.Parse("", r)
}

// ParseString parses a direction script from a string.
func ParseString(input string) (*Script, error) {
	return scriptParser.ParseString("", input)
}
