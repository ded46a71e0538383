// Package raster 使用 golang.org/x/image 的 OpenType 光栅化器测量文本并输出 PNG。
package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/ByLCY/labelbox/fonts"
	"github.com/ByLCY/labelbox/layout"
	"github.com/ByLCY/labelbox/markup"
	"github.com/ByLCY/labelbox/renderer"
)

// Options configures the PNG renderer. 所有尺寸单位为 px。
type Options struct {
	Padding    float64
	Width      float64 // 画布最小宽度，0 表示按内容
	Height     float64 // 画布最小高度，0 表示按内容
	Background string  // 为空时透明
}

// Renderer 以 72 DPI 创建字体面，使 1pt 等于 1px，排版单位与像素一致。
// font.Face 不是并发安全的，所有访问都由 mu 保护。
type Renderer struct {
	opts Options

	mu    sync.Mutex
	fonts map[string]*opentype.Font
	faces map[string]font.Face
}

var _ renderer.Backend = (*Renderer)(nil)

// New creates a PNG renderer backed by the built-in fonts.
func New(opts Options) *Renderer {
	return &Renderer{
		opts:  opts,
		fonts: map[string]*opentype.Font{},
		faces: map[string]font.Face{},
	}
}

// Measure 实现 layout.Measurer：宽度为字形步进之和，高度为字体推荐行高。
func (r *Renderer) Measure(text string, style markup.Style) layout.Size {
	r.mu.Lock()
	defer r.mu.Unlock()
	face, err := r.face(style)
	if err != nil {
		return layout.Size{Width: math.NaN(), Height: math.NaN()}
	}
	return layout.Size{
		Width:  fromFixed(font.MeasureString(face, text)),
		Height: fromFixed(face.Metrics().Height),
	}
}

// Render 将排版结果绘制为 PNG。
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	contentW, contentH := renderer.Extent(result)
	pad := r.opts.Padding
	w := int(math.Ceil(math.Max(contentW, r.opts.Width) + 2*pad))
	h := int(math.Ceil(math.Max(contentH, r.opts.Height) + 2*pad))
	img := image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
	if r.opts.Background != "" {
		draw.Draw(img, img.Bounds(), image.NewUniform(renderer.ParseColor(r.opts.Background)), image.Point{}, draw.Src)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ln := range result.Lines {
		if ln.Hidden || len(ln.Runs) == 0 {
			continue
		}
		faces := make([]font.Face, len(ln.Runs))
		var ascent fixed.Int26_6
		for i, run := range ln.Runs {
			face, err := r.face(run.Style)
			if err != nil {
				return nil, err
			}
			faces[i] = face
			ascent = max(ascent, face.Metrics().Ascent)
		}
		baseline := pad + ln.Box.Y + fromFixed(ascent)

		for i, run := range ln.Runs {
			col := renderer.ParseColor(run.Style.Color)
			x := pad + run.X
			d := &font.Drawer{
				Dst:  img,
				Src:  image.NewUniform(col),
				Face: faces[i],
				Dot:  fixed.Point26_6{X: toFixed(x), Y: toFixed(baseline)},
			}
			d.DrawString(run.Text)
			if run.Style.Underline {
				y := int(math.Round(baseline)) + 1
				rect := image.Rect(int(math.Round(x)), y, int(math.Round(x+run.Width)), y+1)
				draw.Draw(img, rect, image.NewUniform(col), image.Point{}, draw.Over)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("编码 PNG 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// face 返回样式对应的字体面，按 Style.Key 缓存。调用方须持有 mu。
func (r *Renderer) face(style markup.Style) (font.Face, error) {
	size := style.Size
	if size <= 0 {
		size = markup.DefaultStyle().Size
	}
	key := style.Key()
	if f, ok := r.faces[key]; ok {
		return f, nil
	}
	parsed, err := r.font(fonts.Select(style.Family, style.Bold(), style.Italic))
	if err != nil {
		return nil, err
	}
	f, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("创建字体面失败: %w", err)
	}
	r.faces[key] = f
	return f, nil
}

func (r *Renderer) font(name string) (*opentype.Font, error) {
	if f, ok := r.fonts[name]; ok {
		return f, nil
	}
	data, err := fonts.Load(name)
	if err != nil {
		return nil, err
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("解析字体 %s 失败: %w", name, err)
	}
	r.fonts[name] = f
	return f, nil
}

// Close releases the cached font faces.
func (r *Renderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, f := range r.faces {
		_ = f.Close()
		delete(r.faces, key)
	}
	return nil
}

func fromFixed(v fixed.Int26_6) float64 { return float64(v) / 64 }

func toFixed(v float64) fixed.Int26_6 { return fixed.Int26_6(math.Round(v * 64)) }
