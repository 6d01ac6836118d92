package render

// 该文件定义一帧画面的中性绘制原语。引擎只产出这些结构，
// 不关心最终呈现方式（PNG 序列、PDF 分镜或终端预览）。

// Color is a straight-alpha RGBA color with components in [0,1].
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// WithAlpha returns the color with its alpha replaced.
func (c Color) WithAlpha(a float64) Color {
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	c.A = a
	return c
}

// Rect is an axis-aligned filled rectangle (px).
type Rect struct {
	X, Y, W, H float64
	Color      Color
}

// Circle is a filled or stroked circle (px). StrokeWidth <= 0 means filled.
type Circle struct {
	CX, CY, R   float64
	Color       Color
	StrokeWidth float64
}

// GlyphRun is one positioned run of text. X,Y locate the horizontal center
// and vertical baseline. LetterSpacing is extra advance per glyph in px;
// backends honoring it must measure per character.
type GlyphRun struct {
	Text          string
	X, Y          float64
	SizePx        float64
	Weight        string // "", "bold", "black", ...
	LetterSpacing float64
	Color         Color
}

// Frame is the complete draw list for one animation tick. Layer order is
// fixed: Backdrop, then Glow, then Text, then Overlay. Within a layer,
// append order is draw order.
type Frame struct {
	Width, Height float64 // px
	Background    Color
	Backdrop      []Rect     // scene washes under everything
	Glow          []Circle   // halos and glow pools under the glyphs
	Text          []GlyphRun // glyphs, including motion-trail echoes
	Overlay       []Rect     // shot-type tints over everything
}

// NewFrame returns an empty frame of the given pixel dimensions.
func NewFrame(width, height float64) *Frame {
	return &Frame{Width: width, Height: height}
}

// Reset empties all layers while keeping allocated capacity, so the steady
// state of the frame loop stays allocation-free.
func (f *Frame) Reset() {
	f.Background = Color{}
	f.Backdrop = f.Backdrop[:0]
	f.Glow = f.Glow[:0]
	f.Text = f.Text[:0]
	f.Overlay = f.Overlay[:0]
}
