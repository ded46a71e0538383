package layout

import (
	"errors"
	"log/slog"
	"math"

	"github.com/ByLCY/labelbox/markup"
)

var (
	// ErrUnmeasured 表示测量后端返回了零尺寸或 NaN（例如宿主尚未就绪），应在下一帧重试。
	ErrUnmeasured = errors.New("layout: text not measured yet")
	// ErrNoMeasurer 表示创建 Engine 时没有提供测量后端。
	ErrNoMeasurer = errors.New("layout: 缺少测量后端 Measurer")
	// ErrDisposed 表示 Engine 已被释放。
	ErrDisposed = errors.New("layout: engine disposed")
)

// Options 配置排版引擎所需的依赖，例如测量后端。
type Options struct {
	Measurer  Measurer
	BaseStyle *markup.Style // 为空时使用 markup.DefaultStyle()
	Config    *Config       // 为空时使用 DefaultConfig()
	Logger    *slog.Logger  // 为空时使用 slog.Default()
}

// Measurer 负责测量一段使用给定样式的文本。
// 返回 NaN，或对非空文本返回零尺寸，表示暂时无法测量。
type Measurer interface {
	Measure(text string, style markup.Style) Size
}

// MeasureFunc adapts a plain function to Measurer.
type MeasureFunc func(text string, style markup.Style) Size

func (f MeasureFunc) Measure(text string, style markup.Style) Size { return f(text, style) }

func validSize(text string, s Size) bool {
	for _, v := range []float64{s.Width, s.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return false
		}
	}
	if text != "" && s.Width == 0 && s.Height == 0 {
		return false
	}
	return true
}
