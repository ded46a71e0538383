package markup_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/labelbox/markup"
)

func text(s string) markup.Chunk   { return markup.Chunk{Kind: markup.ChunkText, Content: s} }
func format(s string) markup.Chunk { return markup.Chunk{Kind: markup.ChunkFormat, Content: s} }

func TestTokenizeDirectives(t *testing.T) {
	chunks := markup.Tokenize("[bold]Hello[/] world [#f00 font-size: 20px]!", false)
	assert.Equal(t, []markup.Chunk{
		format("[bold]"),
		text("Hello"),
		format("[/]"),
		text(" world "),
		format("[#f00 font-size: 20px]"),
		text("!"),
	}, chunks)
}

func TestTokenizeEscapingRoundTrip(t *testing.T) {
	chunks := markup.Tokenize("a [[b]] c", false)
	require.Len(t, chunks, 1)
	assert.Equal(t, text("a [b] c"), chunks[0])
	for _, c := range chunks {
		assert.False(t, c.IsFormat())
	}
	assert.Equal(t, "a [b] c", markup.PlainText(chunks))
}

func TestTokenizeUnterminatedDirectiveIsLiteral(t *testing.T) {
	assert.Equal(t, []markup.Chunk{text("[bold Hello")}, markup.Tokenize("[bold Hello", false))
	assert.Equal(t, []markup.Chunk{text("Revenue ]")}, markup.Tokenize("Revenue ]", false))
	assert.Equal(t, []markup.Chunk{text("a [b "), format("[c]"), text("d")}, markup.Tokenize("a [b [c]d", false))
}

func TestTokenizeIgnoreFormatting(t *testing.T) {
	chunks := markup.Tokenize("[bold]x [[y]]", true)
	assert.Equal(t, []markup.Chunk{text("[bold]x [y]")}, chunks)
}

func TestTokenizeEmpty(t *testing.T) {
	assert.Empty(t, markup.Tokenize("", false))
	assert.Equal(t, []markup.Chunk{format("[bold]")}, markup.Tokenize("[bold]", false))
}

func TestEscapeSurvivesTokenize(t *testing.T) {
	for _, s := range []string{"[a]", "a]]b", "[[", "][", "plain", "x[bold]y"} {
		chunks := markup.Tokenize(markup.Escape(s), false)
		require.Len(t, chunks, 1, "input %q", s)
		assert.Equal(t, text(s), chunks[0], "input %q", s)
	}
}

func TestJoinReconstructsLine(t *testing.T) {
	for _, line := range []string{
		"[bold]a [[b]] c[/]",
		"plain text",
		"[red]x[blue]y",
	} {
		assert.Equal(t, line, markup.Join(markup.Tokenize(line, false)))
	}
}
