package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLines() []LineInfo {
	return []LineInfo{
		{Index: 0, Text: "hello", Box: Box{Width: 50, Height: 15}, Runs: []Run{{Text: "hel", Width: 30}, {Text: "lo", Width: 20}}},
		{Index: 1, Text: "abc", Box: Box{Width: 30, Height: 15}, Runs: []Run{{Text: "abc", Width: 30}}},
	}
}

func TestAlignHorizontal(t *testing.T) {
	cases := []struct {
		align   Align
		anchors []float64
		xs      []float64
	}{
		{AlignStart, []float64{0, 0}, []float64{0, 0}},
		{AlignMiddle, []float64{25, 25}, []float64{0, 10}},
		{AlignEnd, []float64{50, 50}, []float64{0, 20}},
	}
	for _, tc := range cases {
		cfg := DefaultConfig()
		cfg.TextAlign = tc.align
		res := AlignLines(sampleLines(), cfg, Size{})
		require.Len(t, res.Lines, 2)
		for i, ln := range res.Lines {
			assert.InDeltaf(t, tc.anchors[i], ln.AnchorX, 1e-9, "%s 第 %d 行锚点", tc.align, i)
			assert.InDeltaf(t, tc.xs[i], ln.Box.X, 1e-9, "%s 第 %d 行左边缘", tc.align, i)
		}
		assert.InDelta(t, 50, res.TotalWidth, 1e-9)
		assert.InDelta(t, 30, res.TotalHeight, 1e-9)
	}
}

func TestAlignRTLSwapsStartAndEnd(t *testing.T) {
	for _, pair := range [][2]Align{{AlignEnd, AlignStart}, {AlignStart, AlignEnd}, {AlignMiddle, AlignMiddle}} {
		rtl := DefaultConfig()
		rtl.RTL = true
		rtl.TextAlign = pair[0]
		ltr := DefaultConfig()
		ltr.TextAlign = pair[1]

		a := AlignLines(sampleLines(), rtl, Size{})
		b := AlignLines(sampleLines(), ltr, Size{})
		for i := range a.Lines {
			assert.Equal(t, b.Lines[i].AnchorX, a.Lines[i].AnchorX)
			assert.Equal(t, b.Lines[i].Box, a.Lines[i].Box)
		}
		assert.True(t, a.RTL)
	}
}

func TestAlignPlacesRunsByDirection(t *testing.T) {
	cfg := DefaultConfig()
	res := AlignLines(sampleLines(), cfg, Size{})
	assert.InDelta(t, 0, res.Lines[0].Runs[0].X, 1e-9)
	assert.InDelta(t, 30, res.Lines[0].Runs[1].X, 1e-9)

	cfg.RTL = true
	res = AlignLines(sampleLines(), cfg, Size{})
	// RTL 的 start 贴右：第一行占满块宽，首个片段位于最右侧
	assert.InDelta(t, 20, res.Lines[0].Runs[0].X, 1e-9)
	assert.InDelta(t, 0, res.Lines[0].Runs[1].X, 1e-9)
	assert.InDelta(t, 20, res.Lines[1].Runs[0].X, 1e-9)
}

func TestAlignDoesNotMutateInput(t *testing.T) {
	lines := sampleLines()
	cfg := DefaultConfig()
	cfg.TextAlign = AlignEnd
	AlignLines(lines, cfg, Size{})
	assert.Zero(t, lines[1].Runs[0].X)
	assert.Zero(t, lines[1].Box.X)
}

func TestAlignVertical(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxHeight = 100
	cfg.LineSpacing = 4

	cfg.TextValign = VAlignTop
	res := AlignLines(sampleLines(), cfg, Size{Height: 100})
	assert.InDelta(t, 0, res.Lines[0].Box.Y, 1e-9)
	assert.InDelta(t, 19, res.Lines[1].Box.Y, 1e-9)
	assert.InDelta(t, 34, res.TotalHeight, 1e-9)

	cfg.TextValign = VAlignMiddle
	res = AlignLines(sampleLines(), cfg, Size{Height: 100})
	assert.InDelta(t, 33, res.Lines[0].Box.Y, 1e-9)

	cfg.TextValign = VAlignBottom
	res = AlignLines(sampleLines(), cfg, Size{Height: 100})
	assert.InDelta(t, 66, res.Lines[0].Box.Y, 1e-9)
	assert.InDelta(t, 85, res.Lines[1].Box.Y, 1e-9)
}

func TestAlignOversized(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, AlignLines(sampleLines(), cfg, Size{}).IsOversized)

	cfg.MaxWidth = 40
	assert.True(t, AlignLines(sampleLines(), cfg, Size{}).IsOversized)

	cfg.MaxWidth = 50
	cfg.MaxHeight = 29.5
	assert.True(t, AlignLines(sampleLines(), cfg, Size{}).IsOversized)

	cfg.MaxHeight = 30
	assert.False(t, AlignLines(sampleLines(), cfg, Size{}).IsOversized)
}

func TestAlignEmpty(t *testing.T) {
	res := AlignLines(nil, DefaultConfig(), Size{})
	assert.NotNil(t, res.Lines)
	assert.Empty(t, res.Lines)
	assert.False(t, res.IsOversized)
}

func TestParseAlignAliases(t *testing.T) {
	for in, want := range map[string]Align{"left": AlignStart, "Center": AlignMiddle, "right": AlignEnd, "end": AlignEnd, "": AlignStart} {
		got, err := ParseAlign(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseAlign("justify")
	assert.Error(t, err)

	v, err := ParseVAlign("center")
	require.NoError(t, err)
	assert.Equal(t, VAlignMiddle, v)
	_, err = ParseVAlign("baseline")
	assert.Error(t, err)
}

func TestDetectRTL(t *testing.T) {
	assert.True(t, DetectRTL("שלום עולם"))
	assert.True(t, DetectRTL("123 مرحبا"))
	assert.False(t, DetectRTL("hello שלום"))
	assert.False(t, DetectRTL("123 !?"))
}

func TestAutoDirection(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AutoDirection = true
	res := layoutText(t, cfg, "שלום")
	assert.True(t, res.RTL)
	res = layoutText(t, cfg, "hello")
	assert.False(t, res.RTL)
}
