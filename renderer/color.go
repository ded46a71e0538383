package renderer

import (
	"image/color"
	"math"
	"strings"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/labelbox/layout"
)

var namedColors = map[string]color.RGBA{
	"black":   {0, 0, 0, 255},
	"white":   {255, 255, 255, 255},
	"red":     {255, 0, 0, 255},
	"green":   {0, 128, 0, 255},
	"blue":    {0, 0, 255, 255},
	"gray":    {128, 128, 128, 255},
	"grey":    {128, 128, 128, 255},
	"orange":  {255, 165, 0, 255},
	"yellow":  {255, 255, 0, 255},
	"purple":  {128, 0, 128, 255},
	"navy":    {0, 0, 128, 255},
	"teal":    {0, 128, 128, 255},
	"silver":  {192, 192, 192, 255},
	"maroon":  {128, 0, 0, 255},
	"olive":   {128, 128, 0, 255},
	"lime":    {0, 255, 0, 255},
	"aqua":    {0, 255, 255, 255},
	"fuchsia": {255, 0, 255, 255},
}

// ParseColor 解析 "#rgb"、"#rrggbb"、"#rrggbbaa" 或常见颜色名；无法识别时返回黑色。
func ParseColor(s string) color.RGBA {
	s = strings.ToLower(strings.TrimSpace(s))
	if strings.HasPrefix(s, "#") {
		return canvas.Hex(s)
	}
	if c, ok := namedColors[s]; ok {
		return c
	}
	return namedColors["black"]
}

// Extent 返回所有可见行覆盖的右下角坐标（与排版单位一致）。
func Extent(res *layout.Result) (width, height float64) {
	if res == nil {
		return 0, 0
	}
	width, height = res.TotalWidth, res.TotalHeight
	for _, ln := range res.Lines {
		if ln.Hidden {
			continue
		}
		width = math.Max(width, ln.Box.X+ln.Box.Width)
		height = math.Max(height, ln.Box.Y+ln.Box.Height)
	}
	return width, height
}
