package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/ByLCY/kinetype/fonts"
	"github.com/ByLCY/kinetype/plan"
	"github.com/ByLCY/kinetype/render"
)

// 该后端将引擎产出的帧绘制列表交给 github.com/tdewolff/canvas：
// 逐帧输出 PNG，或将整组分镜帧写入一个 PDF。
// 约定：1 个 canvas 坐标单位 = 1 px；创建字体面时做一次 px→pt 换算。

// pxToPt converts our pixel-sized canvas units to font points.
const pxToPt = 72.0 / 25.4

// Renderer draws frames via github.com/tdewolff/canvas. It also implements
// plan.Measurer, so the same font tables drive measurement and drawing.
type Renderer struct {
	fontMu   sync.Mutex
	families map[string]*canvas.FontFamily // by weight name
}

var (
	_ render.Renderer = (*Renderer)(nil)
	_ plan.Measurer   = (*Renderer)(nil)
)

// NewRenderer creates a canvas-based frame renderer.
func NewRenderer() *Renderer {
	return &Renderer{families: map[string]*canvas.FontFamily{}}
}

// RenderFrame rasterizes one frame into PNG bytes.
func (r *Renderer) RenderFrame(f *render.Frame) ([]byte, error) {
	if f == nil {
		return nil, fmt.Errorf("帧为空")
	}
	c := canvas.New(f.Width, f.Height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与引擎保持左上角为原点
	if err := r.drawFrame(ctx, f); err != nil {
		return nil, err
	}

	img := rasterizer.Draw(c, canvas.DPMM(1.0), canvas.DefaultColorSpace)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("编码 PNG 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderStoryboard writes a sequence of frames as one PDF, one page per
// frame. Used for exporting a reviewable storyboard of key moments.
func (r *Renderer) RenderStoryboard(title string, frames []*render.Frame) ([]byte, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("缺少可渲染的分镜帧")
	}
	var buf bytes.Buffer
	writer := pdf.New(&buf, frames[0].Width, frames[0].Height, nil)
	writer.SetInfo(title, "storyboard", "", "", "kinetype")
	for i, f := range frames {
		if i > 0 {
			writer.NewPage(f.Width, f.Height)
		}
		c := canvas.New(f.Width, f.Height)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV)
		if err := r.drawFrame(ctx, f); err != nil {
			return nil, err
		}
		c.RenderTo(writer)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// WordWidth 实现 plan.Measurer。宽度单位与 canvas 坐标一致（px）。
func (r *Renderer) WordWidth(text string, weight string, sizePx float64) float64 {
	face, err := r.face(weight, sizePx, render.Color{A: 1})
	if err != nil {
		// 内置字体缺失时退化为粗略估算，保证排版流程不中断
		return float64(len(text)) * sizePx * 0.55
	}
	return face.TextWidth(text)
}

func (r *Renderer) drawFrame(ctx *canvas.Context, f *render.Frame) error {
	// 背景铺满整帧
	ctx.SetStrokeColor(canvas.Transparent)
	ctx.SetFillColor(colorFrom(f.Background))
	ctx.DrawPath(0, 0, canvas.Rectangle(f.Width, f.Height))

	drawRects(ctx, f.Backdrop)
	drawCircles(ctx, f.Glow)
	for _, run := range f.Text {
		if err := r.drawRun(ctx, run); err != nil {
			return err
		}
	}
	drawRects(ctx, f.Overlay)
	return nil
}

func drawRects(ctx *canvas.Context, rects []render.Rect) {
	ctx.SetStrokeColor(canvas.Transparent)
	for _, rc := range rects {
		ctx.SetFillColor(colorFrom(rc.Color))
		ctx.DrawPath(rc.X, rc.Y, canvas.Rectangle(rc.W, rc.H))
	}
}

func drawCircles(ctx *canvas.Context, circles []render.Circle) {
	for _, c := range circles {
		if c.StrokeWidth > 0 {
			ctx.SetFillColor(color.RGBA{})
			ctx.SetStrokeColor(colorFrom(c.Color))
			ctx.SetStrokeWidth(c.StrokeWidth)
		} else {
			ctx.SetFillColor(colorFrom(c.Color))
			ctx.SetStrokeColor(canvas.Transparent)
		}
		ctx.DrawPath(c.CX-c.R, c.CY-c.R, canvas.Circle(c.R))
	}
}

// drawRun 绘制一个文本段。X 为水平中心、Y 为基线；带字距时逐字形推进。
func (r *Renderer) drawRun(ctx *canvas.Context, run render.GlyphRun) error {
	if run.Text == "" || run.SizePx <= 0 || run.Color.A <= 0 {
		return nil
	}
	face, err := r.face(run.Weight, run.SizePx, run.Color)
	if err != nil {
		return err
	}

	if run.LetterSpacing <= 0 {
		line := canvas.NewTextLine(face, run.Text, canvas.Center)
		ctx.DrawText(run.X, run.Y, line)
		return nil
	}

	glyphs := []rune(run.Text)
	total := run.LetterSpacing * float64(len(glyphs)-1)
	for _, g := range glyphs {
		total += face.TextWidth(string(g))
	}
	x := run.X - total/2
	for _, g := range glyphs {
		s := string(g)
		ctx.DrawText(x, run.Y, canvas.NewTextLine(face, s, canvas.Left))
		x += face.TextWidth(s) + run.LetterSpacing
	}
	return nil
}

func (r *Renderer) face(weight string, sizePx float64, col render.Color) (*canvas.FontFace, error) {
	family, err := r.family(weight)
	if err != nil {
		return nil, err
	}
	return family.Face(sizePx*pxToPt, colorFrom(col), canvas.FontRegular, canvas.FontNormal), nil
}

// family 按字重懒加载内置字体；字重差异由不同字体文件承载，
// 因此样式位恒为 Regular。
func (r *Renderer) family(weight string) (*canvas.FontFamily, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if family, ok := r.families[weight]; ok {
		return family, nil
	}
	data, err := fonts.Load(weight)
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily("kinetype-" + weight)
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("加载字体（字重 %q）失败: %w", weight, err)
	}
	r.families[weight] = family
	return family, nil
}

func colorFrom(c render.Color) color.Color {
	return canvas.RGBA(uint8(c.R*255.0+0.5), uint8(c.G*255.0+0.5), uint8(c.B*255.0+0.5), c.A)
}
