package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ByLCY/kinetype/direction"
	"github.com/ByLCY/kinetype/drive"
	"github.com/ByLCY/kinetype/engine"
	"github.com/ByLCY/kinetype/lyrics"
	"github.com/ByLCY/kinetype/plan"
	"github.com/ByLCY/kinetype/render"
	canvasrenderer "github.com/ByLCY/kinetype/render/canvas"
	"github.com/ByLCY/kinetype/render/term"
	"github.com/ByLCY/kinetype/script"
)

func main() {
	lyricsPath := flag.String("lyrics", "examples/lyrics.json", "逐行歌词 JSON 路径")
	beatsPath := flag.String("beats", "", "节拍网格 JSON 路径（可选）")
	directionPath := flag.String("direction", "", "执导文档路径（.json 或 .ks 脚本，可选）")
	outDir := flag.String("out", "output/frames", "PNG 帧输出目录")
	storyboard := flag.String("storyboard", "", "分镜 PDF 输出路径（可选）")
	debugPath := flag.String("debug", "", "排版调试 JSON 输出路径")
	title := flag.String("title", "", "歌曲标题（参与确定性种子）")
	fps := flag.Float64("fps", 30, "输出帧率")
	width := flag.Float64("width", 1280, "视口宽度（px）")
	height := flag.Float64("height", 720, "视口高度（px）")
	karaoke := flag.Bool("karaoke", false, "卡拉OK双行模式")
	preview := flag.Bool("preview", false, "终端实时预览，不输出 PNG")
	flag.Parse()

	if err := run(*lyricsPath, *beatsPath, *directionPath, *outDir, *storyboard, *debugPath,
		*title, *fps, *width, *height, *karaoke, *preview); err != nil {
		log.Fatalf("渲染失败: %v", err)
	}
}

// run 串联加载、排版计划与帧循环。
func run(lyricsPath, beatsPath, directionPath, outDir, storyboard, debugPath, title string,
	fps, width, height float64, karaoke, preview bool) error {
	if fps <= 0 {
		return fmt.Errorf("fps 必须为正数，当前 %v", fps)
	}

	lines, grid, doc, err := loadInputs(lyricsPath, beatsPath, directionPath)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return fmt.Errorf("歌词文件 %s 中没有可渲染的行", lyricsPath)
	}
	interp := direction.NewInterpreter(doc)

	backend := canvasrenderer.NewRenderer()
	p, err := plan.Build(lines, grid, interp, plan.BuildOptions{
		Measurer:  engine.NewCachedMeasurer(backend, 0),
		ViewportW: width,
		ViewportH: height,
	})
	if err != nil {
		return fmt.Errorf("构建排版计划失败: %w", err)
	}
	if debugPath != "" {
		if err := writeDebug(p, debugPath); err != nil {
			return err
		}
	}

	r, err := engine.New(p, interp, engine.Options{
		ViewportW: width,
		ViewportH: height,
		Seed:      engine.SongSeed(title, hookStart(lines)),
		Karaoke:   karaoke,
	})
	if err != nil {
		return fmt.Errorf("创建渲染会话失败: %w", err)
	}
	driver := drive.NewDriver(grid)

	if preview {
		return runPreview(r, driver, p.Duration, fps)
	}
	if err := exportFrames(r, driver, backend, p.Duration, fps, outDir); err != nil {
		return err
	}
	if storyboard != "" {
		if err := exportStoryboard(r, driver, backend, p, title, storyboard); err != nil {
			return err
		}
	}
	return nil
}

func loadInputs(lyricsPath, beatsPath, directionPath string) ([]lyrics.Line, lyrics.BeatGrid, *direction.Document, error) {
	data, err := os.ReadFile(lyricsPath)
	if err != nil {
		return nil, lyrics.BeatGrid{}, nil, fmt.Errorf("读取歌词文件失败: %w", err)
	}
	lines, err := lyrics.ParseLines(data)
	if err != nil {
		return nil, lyrics.BeatGrid{}, nil, fmt.Errorf("解析歌词失败: %w", err)
	}

	var grid lyrics.BeatGrid
	if beatsPath != "" {
		data, err := os.ReadFile(beatsPath)
		if err != nil {
			return nil, grid, nil, fmt.Errorf("读取节拍文件失败: %w", err)
		}
		grid, err = lyrics.ParseBeatGrid(data)
		if err != nil {
			return nil, grid, nil, fmt.Errorf("解析节拍网格失败: %w", err)
		}
	}

	var doc *direction.Document
	if directionPath != "" {
		doc, err = loadDirection(directionPath)
		if err != nil {
			return nil, grid, nil, err
		}
	}
	return lines, grid, doc, nil
}

// loadDirection 按扩展名选择执导文档来源：.json 走 AI 文档解析，
// 其余按手写脚本编译。
func loadDirection(path string) (*direction.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取执导文档失败: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		doc, err := direction.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("解析执导 JSON 失败: %w", err)
		}
		return doc, nil
	}
	s, err := script.ParseString(string(data))
	if err != nil {
		return nil, fmt.Errorf("解析执导脚本失败: %w", err)
	}
	doc, err := script.Compile(s)
	if err != nil {
		return nil, fmt.Errorf("编译执导脚本失败: %w", err)
	}
	return doc, nil
}

// hookStart 返回第一处 hook 行的起始时间，参与歌曲种子计算。
func hookStart(lines []lyrics.Line) float64 {
	for _, l := range lines {
		if l.Tag == "hook" || l.Tag == "chorus" {
			return l.Start
		}
	}
	return 0
}

func exportFrames(r *engine.Renderer, driver *drive.Driver, backend render.Renderer, duration, fps float64, outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	total := int(duration*fps) + 1
	for i := 0; i < total; i++ {
		t := float64(i) / fps
		frame := r.RenderFrame(driver.Tick(t))
		data, err := backend.RenderFrame(frame)
		if err != nil {
			return fmt.Errorf("渲染第 %d 帧失败: %w", i, err)
		}
		name := filepath.Join(outDir, fmt.Sprintf("frame-%05d.png", i))
		if err := os.WriteFile(name, data, 0o644); err != nil {
			return fmt.Errorf("写入帧文件失败: %w", err)
		}
	}
	fmt.Printf("已输出 %d 帧到 %s\n", total, outDir)
	return nil
}

// exportStoryboard 在每行歌词的中点各取一帧，写成一页一帧的 PDF。
func exportStoryboard(r *engine.Renderer, driver *drive.Driver, backend *canvasrenderer.Renderer, p *plan.Plan, title, path string) error {
	var frames []*render.Frame
	for _, pl := range p.Lines {
		t := (pl.Src.Start + pl.Src.End) / 2
		src := r.RenderFrame(driver.Tick(t))
		frame := render.NewFrame(src.Width, src.Height)
		frame.Background = src.Background
		frame.Backdrop = append(frame.Backdrop, src.Backdrop...)
		frame.Glow = append(frame.Glow, src.Glow...)
		frame.Text = append(frame.Text, src.Text...)
		frame.Overlay = append(frame.Overlay, src.Overlay...)
		frames = append(frames, frame)
	}
	data, err := backend.RenderStoryboard(title, frames)
	if err != nil {
		return fmt.Errorf("渲染分镜失败: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建分镜目录失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入分镜 PDF 失败: %w", err)
	}
	fmt.Printf("已生成分镜：%s\n", path)
	return nil
}

func runPreview(r *engine.Renderer, driver *drive.Driver, duration, fps float64) error {
	presenter, err := term.NewPresenter()
	if err != nil {
		return err
	}
	defer presenter.Close()

	interval := time.Duration(float64(time.Second) / fps)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	start := time.Now()
	for range ticker.C {
		t := time.Since(start).Seconds()
		if t > duration {
			return nil
		}
		if err := presenter.Present(r.RenderFrame(driver.Tick(t))); err != nil {
			return err
		}
	}
	return nil
}

func writeDebug(p *plan.Plan, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := plan.WriteDebugJSON(p, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
