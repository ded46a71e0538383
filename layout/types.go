package layout

import (
	"fmt"
	"strings"

	"github.com/ByLCY/labelbox/markup"
)

// 该文件定义排版结果与行信息，供排版计算、渲染与调试 JSON 共用。

// Size 是测量得到的宽高（单位与 Measurer 一致，通常为 px）。
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Box 记录一行文本在文本块内的位置与尺寸。
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Run 是一行中使用同一样式的文本片段，X 为相对文本块左边缘的偏移。
type Run struct {
	Text   string       `json:"text"`
	Style  markup.Style `json:"style"`
	X      float64      `json:"x"`
	Width  float64      `json:"width"`
	Height float64      `json:"height"`
}

// LineInfo 表示排版后的一行（物理行）。
// 同一 Index 的 LineInfo 在多次排版之间原地复用，多余的行只标记 Hidden。
type LineInfo struct {
	Index     int     `json:"index"`
	Text      string  `json:"text"`
	Style     string  `json:"style,omitempty"` // 末尾片段生效的格式指令
	Runs      []Run   `json:"runs"`
	Box       Box     `json:"box"`
	AnchorX   float64 `json:"anchorX"` // 对齐锚点：start→0，middle→W/2，end→W（RTL 时 start/end 互换）
	IsComplex bool    `json:"isComplex,omitempty"`
	Hidden    bool    `json:"hidden,omitempty"`
	Truncated bool    `json:"truncated,omitempty"`

	source   string       // 生成本行的逻辑行原文
	entry    string       // 进入逻辑行时生效的格式指令
	exit     markup.Style // 逻辑行结束时生效的样式
	whole    bool         // 本行完整承载了逻辑行（未折行、未截断）
	measured bool
}

// reusable reports whether the cached line can stand in for a fresh layout of src.
func (l *LineInfo) reusable(src string, entry markup.Style) bool {
	return l != nil && l.measured && l.whole && !l.IsComplex &&
		l.source == src && l.entry == entry.Raw
}

// Result 保存一次排版的全部可见行与整体尺寸。
type Result struct {
	Lines       []LineInfo `json:"lines"`
	TotalWidth  float64    `json:"totalWidth"`
	TotalHeight float64    `json:"totalHeight"`
	IsOversized bool       `json:"isOversized"`
	RTL         bool       `json:"rtl,omitempty"`
}

// Text returns the visible lines joined with newlines.
func (r *Result) Text() string {
	if r == nil {
		return ""
	}
	parts := make([]string, 0, len(r.Lines))
	for _, ln := range r.Lines {
		parts = append(parts, ln.Text)
	}
	return strings.Join(parts, "\n")
}

// Align 是水平对齐方式。
type Align int

const (
	AlignStart Align = iota
	AlignMiddle
	AlignEnd
)

func (a Align) String() string {
	switch a {
	case AlignMiddle:
		return "middle"
	case AlignEnd:
		return "end"
	default:
		return "start"
	}
}

// ParseAlign 支持 left/center/right 别名。
func ParseAlign(v string) (Align, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "start", "left":
		return AlignStart, nil
	case "middle", "center":
		return AlignMiddle, nil
	case "end", "right":
		return AlignEnd, nil
	default:
		return AlignStart, fmt.Errorf("未知的水平对齐方式：%s", v)
	}
}

func (a Align) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Align) UnmarshalText(b []byte) error {
	v, err := ParseAlign(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// VAlign 是垂直对齐方式。
type VAlign int

const (
	VAlignTop VAlign = iota
	VAlignMiddle
	VAlignBottom
)

func (v VAlign) String() string {
	switch v {
	case VAlignMiddle:
		return "middle"
	case VAlignBottom:
		return "bottom"
	default:
		return "top"
	}
}

// ParseVAlign 支持 center 别名。
func ParseVAlign(v string) (VAlign, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "top":
		return VAlignTop, nil
	case "middle", "center":
		return VAlignMiddle, nil
	case "bottom":
		return VAlignBottom, nil
	default:
		return VAlignTop, fmt.Errorf("未知的垂直对齐方式：%s", v)
	}
}

func (v VAlign) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

func (v *VAlign) UnmarshalText(b []byte) error {
	p, err := ParseVAlign(string(b))
	if err != nil {
		return err
	}
	*v = p
	return nil
}
