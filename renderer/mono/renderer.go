// Package mono 以终端字符格为单位测量与输出排版结果：一格宽 CellWidth，一行高 CellHeight。
package mono

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/ByLCY/labelbox/layout"
	"github.com/ByLCY/labelbox/markup"
	"github.com/ByLCY/labelbox/renderer"
)

// Renderer 使用 go-runewidth 计算显示宽度（CJK 与表情占两格），渲染为纯文本。
type Renderer struct {
	CellWidth  float64
	CellHeight float64
	// Frame 在文本外绘制 ASCII 边框，边框内尺寸取容器与内容中较大者。
	Frame bool
	// Width/Height 为容器尺寸（与排版单位一致），0 表示按内容。
	Width, Height float64

	cond *runewidth.Condition
}

var _ renderer.Backend = (*Renderer)(nil)

// New creates a renderer with one unit per cell.
func New() *Renderer {
	return &Renderer{CellWidth: 1, CellHeight: 1, cond: runewidth.NewCondition()}
}

// SetEastAsian treats ambiguous-width characters as double width.
func (r *Renderer) SetEastAsian(on bool) {
	r.cond.EastAsianWidth = on
}

// Measure 实现 layout.Measurer；样式不影响等宽字符的宽度。
func (r *Renderer) Measure(text string, _ markup.Style) layout.Size {
	return layout.Size{
		Width:  float64(r.cond.StringWidth(text)) * r.CellWidth,
		Height: r.CellHeight,
	}
}

// Render 把每个片段按其坐标写入字符网格，输出以换行分隔的文本。
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if r.CellWidth <= 0 || r.CellHeight <= 0 {
		return nil, fmt.Errorf("字符格尺寸无效：%gx%g", r.CellWidth, r.CellHeight)
	}
	w, h := renderer.Extent(result)
	cols := int(math.Ceil(math.Max(w, r.Width) / r.CellWidth))
	rows := int(math.Ceil(math.Max(h, r.Height) / r.CellHeight))

	grid := make([][]string, rows)
	for i := range grid {
		grid[i] = make([]string, cols)
		for j := range grid[i] {
			grid[i][j] = " "
		}
	}
	for _, ln := range result.Lines {
		if ln.Hidden {
			continue
		}
		row := int(math.Round(ln.Box.Y / r.CellHeight))
		if row < 0 || row >= rows {
			continue
		}
		for _, run := range ln.Runs {
			r.place(grid[row], int(math.Round(run.X/r.CellWidth)), run.Text)
		}
	}

	var buf bytes.Buffer
	border := "+" + strings.Repeat("-", cols) + "+\n"
	if r.Frame {
		buf.WriteString(border)
	}
	for _, cells := range grid {
		var line strings.Builder
		for _, c := range cells {
			line.WriteString(c)
		}
		if r.Frame {
			buf.WriteString("|" + line.String() + "|\n")
			continue
		}
		buf.WriteString(strings.TrimRight(line.String(), " "))
		buf.WriteByte('\n')
	}
	if r.Frame {
		buf.WriteString(border)
	}
	return buf.Bytes(), nil
}

// place 写入字素簇；宽字符占用的后续格置为空串，越界部分丢弃。
func (r *Renderer) place(cells []string, col int, text string) {
	state := -1
	for len(text) > 0 {
		var cluster string
		cluster, text, _, state = uniseg.FirstGraphemeClusterInString(text, state)
		cw := r.cond.StringWidth(cluster)
		if cw == 0 {
			continue
		}
		if col < 0 || col+cw > len(cells) {
			col += cw
			continue
		}
		cells[col] = cluster
		for k := 1; k < cw; k++ {
			cells[col+k] = ""
		}
		col += cw
	}
}
