package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirectiveEntries(t *testing.T) {
	d, err := ParseDirective("[bold #FF0000 font-size: 20px]")
	require.NoError(t, err)
	assert.False(t, d.Reset)
	require.NotNil(t, d.Weight)
	assert.Equal(t, WeightBold, *d.Weight)
	require.NotNil(t, d.Color)
	assert.Equal(t, "#ff0000", *d.Color)
	require.NotNil(t, d.Size)
	assert.Equal(t, Length{Value: 20, Unit: UnitPX}, *d.Size)
}

func TestParseDirectiveReset(t *testing.T) {
	for _, raw := range []string{"[/]", "[]", "[ ]"} {
		d, err := ParseDirective(raw)
		require.NoError(t, err, raw)
		assert.True(t, d.Reset, raw)
	}
}

func TestParseDirectiveCamelCaseAndRelativeSize(t *testing.T) {
	d, err := ParseDirective("[fontSize: 1.5em; fontStyle: italic, fontFamily: 'Noto Sans']")
	require.NoError(t, err)

	base := DefaultStyle()
	s := base.Apply(d)
	assert.Equal(t, 18.0, s.Size)
	assert.True(t, s.Italic)
	assert.Equal(t, "Noto Sans", s.Family)
	assert.Equal(t, "[fontSize: 1.5em; fontStyle: italic, fontFamily: 'Noto Sans']", s.Raw)
}

func TestParseDirectiveColorNameAndProps(t *testing.T) {
	d, err := ParseDirective("[red baseline-shift: 2px underline]")
	require.NoError(t, err)
	require.NotNil(t, d.Color)
	assert.Equal(t, "red", *d.Color)
	assert.Equal(t, map[string]string{"baseline-shift": "2px"}, d.Props)
	require.NotNil(t, d.Underline)
	assert.True(t, *d.Underline)
}

func TestParseDirectiveBareSizeAndWeight(t *testing.T) {
	d, err := ParseDirective("[14pt font-weight: 600]")
	require.NoError(t, err)
	s := DefaultStyle().Apply(d)
	assert.InDelta(t, 14*PtToPx, s.Size, 1e-9)
	assert.True(t, s.Bold())
}

func TestParseDirectiveErrors(t *testing.T) {
	_, err := ParseDirective("[font-size: big]")
	assert.Error(t, err)
	_, err = ParseDirective("[$$$]")
	assert.Error(t, err)
	_, err = ParseDirective("[font-weight: heavy]")
	assert.Error(t, err)
}

func TestApplyDoesNotAccumulate(t *testing.T) {
	base := DefaultStyle()
	bold, err := ParseDirective("[bold]")
	require.NoError(t, err)
	red, err := ParseDirective("[red]")
	require.NoError(t, err)
	reset, err := ParseDirective("[/]")
	require.NoError(t, err)

	s := base.Apply(bold)
	assert.True(t, s.Bold())
	s = base.Apply(red)
	assert.False(t, s.Bold())
	assert.Equal(t, "red", s.Color)
	assert.Equal(t, base, base.Apply(reset))
}

func TestApplyMergesProps(t *testing.T) {
	base := DefaultStyle()
	base.Props = map[string]string{"a": "1"}
	d, err := ParseDirective("[b: 2]")
	require.NoError(t, err)
	s := base.Apply(d)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, s.Props)
	assert.Equal(t, map[string]string{"a": "1"}, base.Props)
}
