package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"os"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/svg"

	"github.com/ByLCY/labelbox/fonts"
	"github.com/ByLCY/labelbox/layout"
	"github.com/ByLCY/labelbox/markup"
	"github.com/ByLCY/labelbox/renderer"
)

const frameStrokeWidth = 0.2 // mm

// Renderer 通过 github.com/tdewolff/canvas 测量并绘制排版结果。
// 排版单位为 px，canvas 使用 mm，字号使用 pt，换算只在本包边界发生。
type Renderer struct {
	opts Options

	fontBlobs map[string][]byte // 按字体族名注入的字体

	fontMu   sync.Mutex
	families map[string]*fontFamilyEntry
	fallback *canvas.FontFamily
}

var _ renderer.Backend = (*Renderer)(nil)

type fontFamilyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

// Options configures the canvas renderer.
type Options struct {
	Format     renderer.Format     // svg（默认）或 pdf
	Padding    float64             // 四周留白，px
	Width      float64             // 画布最小宽度，px；0 表示按内容
	Height     float64             // 画布最小高度，px；0 表示按内容
	Background string              // 为空时透明
	Frame      bool                // 绘制容器边框，便于调试
	Title      string              // PDF 元数据
	Fonts      map[string]Resource // 字体族名 → 字体文件，优先于内置字体
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates an SVG renderer using only built-in fonts.
func NewRenderer() *Renderer { return NewRendererWithOptions(Options{}) }

// NewRendererWithOptions creates a renderer with injected fonts.
func NewRendererWithOptions(opts Options) *Renderer {
	if opts.Format == "" {
		opts.Format = renderer.FormatSVG
	}
	r := &Renderer{
		opts:      opts,
		fontBlobs: map[string][]byte{},
		families:  map[string]*fontFamilyEntry{},
	}
	for name, res := range opts.Fonts {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			r.fontBlobs[strings.ToLower(name)] = res.Bytes
			continue
		}
		if res.Path != "" {
			data, _ := os.ReadFile(res.Path) // 读取失败时回退到内置字体
			if len(data) > 0 {
				r.fontBlobs[strings.ToLower(name)] = data
			}
		}
	}
	return r
}

// Measure 实现 layout.Measurer。字体无法加载时返回 NaN，排版引擎会在下一帧重试。
func (r *Renderer) Measure(text string, style markup.Style) layout.Size {
	face, err := r.fontFace(style)
	if err != nil {
		return layout.Size{Width: math.NaN(), Height: math.NaN()}
	}
	return layout.Size{
		Width:  face.TextWidth(text) * markup.MmToPx,
		Height: face.Metrics().LineHeight * markup.MmToPx,
	}
}

// Render 将排版结果输出为 SVG 或 PDF 字节。
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	contentW, contentH := renderer.Extent(result)
	pad := r.opts.Padding
	width := (math.Max(contentW, r.opts.Width) + 2*pad) * markup.PxToMm
	height := (math.Max(contentH, r.opts.Height) + 2*pad) * markup.PxToMm
	if width <= 0 || height <= 0 {
		width, height = 1, 1
	}

	c := canvas.New(width, height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与排版保持左上角为原点

	if r.opts.Background != "" {
		ctx.SetFillColor(renderer.ParseColor(r.opts.Background))
		ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
		ctx.DrawPath(0, 0, canvas.Rectangle(width, height))
	}
	if r.opts.Frame {
		r.drawFrame(ctx, pad*markup.PxToMm, pad*markup.PxToMm, width-2*pad*markup.PxToMm, height-2*pad*markup.PxToMm)
	}
	if err := r.drawLines(ctx, result.Lines, pad); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	switch r.opts.Format {
	case renderer.FormatPDF:
		writer := pdf.New(&buf, width, height, nil)
		writer.SetInfo(r.title(result), "", "", "", "labelbox")
		c.RenderTo(writer)
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("写入 PDF 失败: %w", err)
		}
	case renderer.FormatSVG:
		writer := svg.New(&buf, width, height, nil)
		c.RenderTo(writer)
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("写入 SVG 失败: %w", err)
		}
	default:
		return nil, fmt.Errorf("canvas 渲染器不支持的格式：%s", r.opts.Format)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) title(result *layout.Result) string {
	if r.opts.Title != "" {
		return r.opts.Title
	}
	if len(result.Lines) > 0 {
		return result.Lines[0].Text
	}
	return ""
}

// drawLines 逐个片段绘制文本。基线 = 行顶 + 本行最大上升部，片段 X 已由对齐阶段给出。
func (r *Renderer) drawLines(ctx *canvas.Context, lines []layout.LineInfo, pad float64) error {
	for _, ln := range lines {
		if ln.Hidden || len(ln.Runs) == 0 {
			continue
		}
		faces := make([]*canvas.FontFace, len(ln.Runs))
		var ascent float64
		for i, run := range ln.Runs {
			face, err := r.fontFace(run.Style)
			if err != nil {
				return err
			}
			faces[i] = face
			ascent = math.Max(ascent, face.Metrics().Ascent)
		}
		baseline := (pad+ln.Box.Y)*markup.PxToMm + ascent

		for i, run := range ln.Runs {
			x := (pad + run.X) * markup.PxToMm
			ctx.DrawText(x, baseline, canvas.NewTextLine(faces[i], run.Text, canvas.Left))
			if run.Style.Underline {
				r.drawUnderline(ctx, x, baseline+faces[i].Metrics().Descent/3, run.Width*markup.PxToMm, run.Style.Color)
			}
		}
	}
	return nil
}

func (r *Renderer) drawUnderline(ctx *canvas.Context, x, y, width float64, col string) {
	ctx.SetStrokeColor(renderer.ParseColor(col))
	ctx.SetStrokeWidth(frameStrokeWidth)
	p := &canvas.Path{}
	p.MoveTo(0, 0)
	p.LineTo(width, 0)
	ctx.DrawPath(x, y, p)
}

// drawFrame 绘制容器边框
func (r *Renderer) drawFrame(ctx *canvas.Context, x, y, w, h float64) {
	ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
	ctx.SetStrokeColor(canvas.Hex("#999999"))
	ctx.SetStrokeWidth(frameStrokeWidth)
	ctx.DrawPath(x, y, canvas.Rectangle(w, h))
}

// fontFace 按样式创建字体面；字号从 px 转为 pt。
func (r *Renderer) fontFace(style markup.Style) (*canvas.FontFace, error) {
	family, fontStyle, err := r.ensureFontFamily(style)
	if err != nil {
		return nil, err
	}
	size := style.Size
	if size <= 0 {
		size = markup.DefaultStyle().Size
	}
	return family.Face(size*markup.PxToPt, renderer.ParseColor(style.Color), fontStyle, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(style markup.Style) (*canvas.FontFamily, canvas.FontStyle, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	// 注入的字体按族名匹配，canvas 根据样式标志合成粗体/斜体。
	if blob, ok := r.fontBlobs[strings.ToLower(style.Family)]; ok {
		fs := fontStyle(style)
		key := fmt.Sprintf("custom|%s|%d", strings.ToLower(style.Family), fs)
		if entry, ok := r.families[key]; ok {
			return entry.family, entry.style, nil
		}
		family := canvas.NewFontFamily(style.Family)
		if err := family.LoadFont(blob, 0, fs); err == nil {
			r.families[key] = &fontFamilyEntry{family: family, style: fs}
			return family, fs, nil
		}
	}

	// 内置字体每个文件单独成族，按常规样式加载。
	name := fonts.Select(style.Family, style.Bold(), style.Italic)
	if entry, ok := r.families[name]; ok {
		return entry.family, entry.style, nil
	}
	family := canvas.NewFontFamily(name)
	data, err := fonts.Load(name)
	if err == nil {
		err = family.LoadFont(data, 0, canvas.FontRegular)
	}
	if err != nil {
		fallback, fbErr := r.fallbackFamily()
		if fbErr != nil {
			return nil, canvas.FontRegular, err
		}
		r.families[name] = &fontFamilyEntry{family: fallback, style: canvas.FontRegular}
		return fallback, canvas.FontRegular, nil
	}
	r.families[name] = &fontFamilyEntry{family: family, style: canvas.FontRegular}
	return family, canvas.FontRegular, nil
}

func (r *Renderer) fallbackFamily() (*canvas.FontFamily, error) {
	if r.fallback != nil {
		return r.fallback, nil
	}
	data, err := fonts.Load(fonts.Default)
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily("labelbox-fallback")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, err
	}
	r.fallback = family
	return family, nil
}

// fontStyle 把数值字重与斜体映射为 canvas 的字体样式。
func fontStyle(style markup.Style) canvas.FontStyle {
	var result canvas.FontStyle
	switch w := style.Weight; {
	case w >= 900:
		result = canvas.FontBlack
	case w >= 800:
		result = canvas.FontExtraBold
	case w >= 700:
		result = canvas.FontBold
	case w >= 600:
		result = canvas.FontSemiBold
	case w >= 500:
		result = canvas.FontMedium
	case w > 0 && w <= 300:
		result = canvas.FontLight
	default:
		result = canvas.FontRegular
	}
	if style.Italic {
		result |= canvas.FontItalic
	}
	return result
}
