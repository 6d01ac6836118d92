package term

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/ByLCY/kinetype/render"
)

// Terminal preview: a low-fidelity live view of the frame stream for tuning
// direction documents without waiting for PNG export. Glyph runs map to cell
// text, glow pools to shaded block characters. Precision is deliberately
// coarse; this is a monitor, not an output format.

// Presenter displays frames on a tcell screen.
type Presenter struct {
	screen tcell.Screen
}

var _ render.Presenter = (*Presenter)(nil)

// NewPresenter initializes the terminal screen.
func NewPresenter() (*Presenter, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("创建终端画面失败: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("初始化终端画面失败: %w", err)
	}
	screen.HideCursor()
	return &Presenter{screen: screen}, nil
}

// newWithScreen is the test seam: tcell.NewSimulationScreen plugs in here.
func newWithScreen(screen tcell.Screen) *Presenter {
	return &Presenter{screen: screen}
}

// Present draws one frame scaled to the current terminal size.
func (p *Presenter) Present(f *render.Frame) error {
	if f == nil || f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("无效的帧")
	}
	cols, rows := p.screen.Size()
	if cols <= 0 || rows <= 0 {
		return nil
	}
	sx := float64(cols) / f.Width
	sy := float64(rows) / f.Height

	bg := toTcell(f.Background)
	p.screen.Fill(' ', tcell.StyleDefault.Background(bg))

	for _, g := range f.Glow {
		cx, cy := int(g.CX*sx), int(g.CY*sy)
		p.setCell(cx, cy, '░', tcell.StyleDefault.Foreground(toTcell(g.Color)).Background(bg))
	}
	for _, run := range f.Text {
		if run.Color.A < 0.05 {
			continue
		}
		style := tcell.StyleDefault.Foreground(toTcell(run.Color)).Background(bg)
		if run.Weight == "bold" || run.Weight == "black" {
			style = style.Bold(true)
		}
		chars := []rune(run.Text)
		x := int(run.X*sx) - len(chars)/2
		y := int(run.Y * sy)
		for i, r := range chars {
			p.setCell(x+i, y, r, style)
		}
	}
	p.screen.Show()
	return nil
}

func (p *Presenter) setCell(x, y int, r rune, style tcell.Style) {
	cols, rows := p.screen.Size()
	if x < 0 || y < 0 || x >= cols || y >= rows {
		return
	}
	p.screen.SetContent(x, y, r, nil, style)
}

// Close releases the terminal.
func (p *Presenter) Close() {
	p.screen.Fini()
}

func toTcell(c render.Color) tcell.Color {
	scale := func(v float64) int32 {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		return int32(v * 255)
	}
	return tcell.NewRGBColor(scale(c.R*c.A), scale(c.G*c.A), scale(c.B*c.A))
}
