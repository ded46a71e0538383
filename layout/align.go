package layout

import (
	"math"
)

// AlignLines 对已完成折行/截断的物理行做水平与垂直定位。
//
// 块宽取最宽一行，总高为各行高度之和加行距。水平锚点 start→0、middle→块宽/2、end→块宽，
// RTL 时 start 与 end 互换。垂直偏移相对 container.Height 计算；容器高度不是有限正数时以文本自身高度为准。
func AlignLines(lines []LineInfo, cfg Config, container Size) Result {
	res := Result{RTL: cfg.RTL}
	if len(lines) == 0 {
		res.Lines = []LineInfo{}
		return res
	}

	var blockW, totalH float64
	for i, ln := range lines {
		blockW = math.Max(blockW, ln.Box.Width)
		totalH += ln.Box.Height
		if i > 0 {
			totalH += cfg.LineSpacing
		}
	}

	align := cfg.TextAlign
	if cfg.RTL {
		switch align {
		case AlignStart:
			align = AlignEnd
		case AlignEnd:
			align = AlignStart
		}
	}

	boxH := container.Height
	if math.IsInf(boxH, 0) || math.IsNaN(boxH) || boxH <= 0 {
		boxH = totalH
	}
	var y float64
	switch cfg.TextValign {
	case VAlignMiddle:
		y = (boxH - totalH) / 2
	case VAlignBottom:
		y = boxH - totalH
	}

	out := make([]LineInfo, len(lines))
	for i, ln := range lines {
		w := ln.Box.Width
		var anchor, left float64
		switch align {
		case AlignMiddle:
			anchor = blockW / 2
			left = anchor - w/2
		case AlignEnd:
			anchor = blockW
			left = anchor - w
		}
		ln.AnchorX = anchor
		ln.Box.X = left
		ln.Box.Y = y
		ln.Runs = placeRuns(ln.Runs, left, w, cfg.RTL)
		out[i] = ln
		y += ln.Box.Height + cfg.LineSpacing
	}

	res.Lines = out
	res.TotalWidth = blockW
	res.TotalHeight = totalH
	res.IsOversized = !fits(blockW, cfg.MaxWidth) || !fits(totalH, cfg.MaxHeight)
	return res
}

// placeRuns 复制片段并按书写方向写入 X：LTR 自左向右排列，RTL 第一个片段贴右边缘。
func placeRuns(runs []Run, left, width float64, rtl bool) []Run {
	if len(runs) == 0 {
		return nil
	}
	placed := make([]Run, len(runs))
	copy(placed, runs)
	if rtl {
		x := left + width
		for i := range placed {
			x -= placed[i].Width
			placed[i].X = x
		}
		return placed
	}
	x := left
	for i := range placed {
		placed[i].X = x
		x += placed[i].Width
	}
	return placed
}
