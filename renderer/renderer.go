package renderer

import (
	"github.com/ByLCY/labelbox/layout"
)

// Renderer 将排版结果输出为最终文件，例如 SVG、PDF、PNG 或纯文本。
// Render 返回生成的二进制数据以及可能的错误。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}

// Backend 同时提供测量与渲染：排版必须使用与渲染相同的字体度量，否则折行位置会与绘制结果不一致。
type Backend interface {
	layout.Measurer
	Renderer
}

// Format 是渲染输出格式。
type Format string

const (
	FormatSVG  Format = "svg"
	FormatPDF  Format = "pdf"
	FormatPNG  Format = "png"
	FormatText Format = "text"
)
