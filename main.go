package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/ByLCY/labelbox/element"
	"github.com/ByLCY/labelbox/frame"
	"github.com/ByLCY/labelbox/layout"
	"github.com/ByLCY/labelbox/markup"
	"github.com/ByLCY/labelbox/renderer"
	canvasrenderer "github.com/ByLCY/labelbox/renderer/canvas"
	"github.com/ByLCY/labelbox/renderer/mono"
	"github.com/ByLCY/labelbox/renderer/raster"
)

type cliOptions struct {
	text       string
	in         string
	config     string
	data       string
	width      float64
	height     float64
	wrap       bool
	truncate   bool
	fullWords  bool
	ellipsis   string
	align      string
	valign     string
	rtl        bool
	format     string
	out        string
	debug      string
	fontSize   float64
	fontFamily string
	padding    float64
	verbose    bool
}

func main() {
	var opts cliOptions
	fs, ok, err := parseFlags(os.Args[1:], &opts, os.Stderr)
	if err != nil {
		log.Fatalf("解析参数失败: %v", err)
	}
	if !ok {
		return
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(opts, fs.Changed, os.Stdout, logger); err != nil {
		log.Fatalf("生成失败: %v", err)
	}
}

func newFlagSet(opts *cliOptions) *pflag.FlagSet {
	fs := pflag.NewFlagSet("labelbox", pflag.ContinueOnError)
	fs.StringVarP(&opts.text, "text", "t", "", "要排版的文本（支持 [bold] 等格式指令与 {path} 占位符）")
	fs.StringVarP(&opts.in, "in", "i", "", "从文件读取文本")
	fs.StringVarP(&opts.config, "config", "c", "", "排版配置文件（.yaml/.yml/.toml/.json）")
	fs.StringVar(&opts.data, "data", "", "绑定到占位符的 JSON 数据")
	fs.Float64VarP(&opts.width, "width", "w", math.Inf(1), "最大宽度（px；text 格式为字符数）")
	fs.Float64VarP(&opts.height, "height", "H", math.Inf(1), "最大高度")
	fs.BoolVar(&opts.wrap, "wrap", false, "超宽时折行")
	fs.BoolVar(&opts.truncate, "truncate", false, "超宽时截断并追加省略号（优先于 --wrap）")
	fs.BoolVar(&opts.fullWords, "full-words", true, "只在词边界处折行或截断")
	fs.StringVar(&opts.ellipsis, "ellipsis", "…", "截断时追加的省略号")
	fs.StringVar(&opts.align, "align", "start", "水平对齐：start|middle|end")
	fs.StringVar(&opts.valign, "valign", "top", "垂直对齐：top|middle|bottom")
	fs.BoolVar(&opts.rtl, "rtl", false, "从右到左书写")
	fs.StringVarP(&opts.format, "format", "f", "", "输出格式：svg|pdf|png|text（默认按 --out 扩展名推断）")
	fs.StringVarP(&opts.out, "out", "o", "", "输出路径；text 格式缺省时写到标准输出")
	fs.StringVar(&opts.debug, "debug", "", "排版调试 JSON 输出路径")
	fs.Float64Var(&opts.fontSize, "font-size", 0, "基础字号（px）")
	fs.StringVar(&opts.fontFamily, "font-family", "", "基础字体族：sans-serif|serif|monospace")
	fs.Float64Var(&opts.padding, "padding", 4, "画布四周留白（px）")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "输出调试日志")
	return fs
}

// parseFlags 解析命令行参数；--help 打印用法后返回 ok=false 且不报错。
func parseFlags(args []string, opts *cliOptions, stderr io.Writer) (*pflag.FlagSet, bool, error) {
	fs := newFlagSet(opts)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return fs, false, nil
		}
		return nil, false, err
	}
	return fs, true, nil
}

// run 串联数据绑定、排版与渲染。changed 报告某个参数是否由命令行显式给出，
// 只有显式给出的参数才覆盖配置文件中的值。
func run(opts cliOptions, changed func(string) bool, stdout io.Writer, logger *slog.Logger) error {
	text, err := readText(opts)
	if err != nil {
		return err
	}

	var data any
	if opts.data != "" {
		if err := json.Unmarshal([]byte(opts.data), &data); err != nil {
			return fmt.Errorf("解析 data JSON 失败: %w", err)
		}
	}

	cfg, err := buildConfig(opts, changed)
	if err != nil {
		return err
	}
	base := markup.DefaultStyle()
	if opts.fontSize > 0 {
		base.Size = opts.fontSize
	}
	if opts.fontFamily != "" {
		base.Family = opts.fontFamily
	}

	format := resolveFormat(opts.format, opts.out)
	backend, err := newBackend(format, cfg, opts.padding)
	if err != nil {
		return err
	}

	frames := frame.NewManualScheduler()
	registry := element.NewRegistry()
	if err := registry.Register(element.KindLabel, element.LabelConstructor(element.LabelOptions{
		Measurer:  backend,
		Config:    &cfg,
		BaseStyle: &base,
		Frame:     frames,
		Resize:    frame.NewManualScheduler(),
		Logger:    logger,
	})); err != nil {
		return err
	}
	el, err := registry.New(element.KindLabel, "cli")
	if err != nil {
		return err
	}
	label := el.(*element.Label)
	defer label.Dispose()

	label.SetText(text)
	label.SetData(data)
	if err := label.Validate(); err != nil {
		if !errors.Is(err, layout.ErrUnmeasured) {
			return fmt.Errorf("排版失败: %w", err)
		}
		// 离线场景没有真正的下一帧，立即执行一次重试
		frames.Flush()
	}
	res := label.Result()
	if res == nil {
		return fmt.Errorf("排版失败: 文本无法测量")
	}
	logger.Debug("排版完成", "lines", len(res.Lines), "width", res.TotalWidth, "height", res.TotalHeight)
	if res.IsOversized {
		logger.Warn("文本超出容器", "width", res.TotalWidth, "height", res.TotalHeight)
	}

	if opts.debug != "" {
		if err := writeDebug(res, opts.debug); err != nil {
			return err
		}
	}

	if !label.IsVisible() {
		res = &layout.Result{}
	}
	output, err := backend.Render(res)
	if err != nil {
		return fmt.Errorf("渲染 %s 失败: %w", format, err)
	}
	if opts.out == "" {
		if format != renderer.FormatText {
			return fmt.Errorf("%s 格式需要指定 --out", format)
		}
		_, err := stdout.Write(output)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(opts.out), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(opts.out, output, 0o644); err != nil {
		return fmt.Errorf("写入输出文件失败: %w", err)
	}
	logger.Info("已生成", "format", format, "path", opts.out)
	return nil
}

func readText(opts cliOptions) (string, error) {
	switch {
	case opts.text != "" && opts.in != "":
		return "", fmt.Errorf("--text 与 --in 不能同时使用")
	case opts.text != "":
		return opts.text, nil
	case opts.in != "":
		data, err := os.ReadFile(opts.in)
		if err != nil {
			return "", fmt.Errorf("无法打开文本文件 %s: %w", opts.in, err)
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	default:
		return "", fmt.Errorf("需要通过 --text 或 --in 提供文本")
	}
}

func buildConfig(opts cliOptions, changed func(string) bool) (layout.Config, error) {
	cfg := layout.DefaultConfig()
	if opts.config != "" {
		loaded, err := layout.LoadConfig(opts.config)
		if err != nil {
			return layout.Config{}, err
		}
		cfg = loaded
	}
	if changed("width") {
		cfg.MaxWidth = opts.width
	}
	if changed("height") {
		cfg.MaxHeight = opts.height
	}
	if changed("wrap") {
		cfg.Wrap = opts.wrap
	}
	if changed("truncate") {
		cfg.Truncate = opts.truncate
	}
	if changed("full-words") {
		cfg.FullWords = opts.fullWords
	}
	if changed("ellipsis") {
		cfg.Ellipsis = opts.ellipsis
	}
	if changed("rtl") {
		cfg.RTL = opts.rtl
	}
	if changed("align") {
		a, err := layout.ParseAlign(opts.align)
		if err != nil {
			return layout.Config{}, err
		}
		cfg.TextAlign = a
	}
	if changed("valign") {
		v, err := layout.ParseVAlign(opts.valign)
		if err != nil {
			return layout.Config{}, err
		}
		cfg.TextValign = v
	}
	return cfg, nil
}

func resolveFormat(format, out string) renderer.Format {
	if format != "" {
		return renderer.Format(strings.ToLower(format))
	}
	switch strings.ToLower(filepath.Ext(out)) {
	case ".svg":
		return renderer.FormatSVG
	case ".pdf":
		return renderer.FormatPDF
	case ".png":
		return renderer.FormatPNG
	default:
		return renderer.FormatText
	}
}

func newBackend(format renderer.Format, cfg layout.Config, padding float64) (renderer.Backend, error) {
	w, h := finite(cfg.MaxWidth), finite(cfg.MaxHeight)
	switch format {
	case renderer.FormatText:
		r := mono.New()
		r.Width, r.Height = w, h
		return r, nil
	case renderer.FormatPNG:
		return raster.New(raster.Options{Padding: padding, Width: w, Height: h, Background: "white"}), nil
	case renderer.FormatSVG, renderer.FormatPDF:
		return canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
			Format:     format,
			Padding:    padding,
			Width:      w,
			Height:     h,
			Background: "white",
		}), nil
	default:
		return nil, fmt.Errorf("不支持的输出格式：%s", format)
	}
}

func finite(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.SaveDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
