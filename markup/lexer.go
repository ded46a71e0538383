package markup

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// ChunkKind 区分格式指令与普通文本。
type ChunkKind int

const (
	ChunkText ChunkKind = iota
	ChunkFormat
)

func (k ChunkKind) String() string {
	if k == ChunkFormat {
		return "format"
	}
	return "text"
}

// Chunk 是一行文本切分后的片段：格式指令（含方括号，如 "[bold]"）或字面文本。
type Chunk struct {
	Kind    ChunkKind `json:"kind"`
	Content string    `json:"content"`
}

// IsFormat reports whether the chunk is a style directive.
func (c Chunk) IsFormat() bool { return c.Kind == ChunkFormat }

var (
	// 规则顺序即匹配优先级：转义括号优先于指令，未闭合的括号最终落到 Bracket 作为字面量。
	lineLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "EscapedOpen", Pattern: `\[\[`},
		{Name: "EscapedClose", Pattern: `\]\]`},
		{Name: "Directive", Pattern: `\[[^\[\]]*\]`},
		{Name: "Text", Pattern: `[^\[\]]+`},
		{Name: "Bracket", Pattern: `[\[\]]`},
	})

	escapedOpenType  = mustTokenType(lineLexer, "EscapedOpen")
	escapedCloseType = mustTokenType(lineLexer, "EscapedClose")
	directiveType    = mustTokenType(lineLexer, "Directive")
)

// Tokenize 将一行文本切分为交替出现的格式片段与文本片段。
// "[[" / "]]" 还原为单个字面括号；未闭合的指令按字面文本处理，不会报错。
// ignoreFormatting 为 true 时不识别任何指令，整行作为一个文本片段（仍然还原双括号）。
func Tokenize(line string, ignoreFormatting bool) []Chunk {
	if line == "" {
		return nil
	}
	tokens, err := lexLine(line)
	if err != nil {
		return []Chunk{{Kind: ChunkText, Content: line}}
	}

	var chunks []Chunk
	var text strings.Builder
	flush := func() {
		if text.Len() == 0 {
			return
		}
		chunks = append(chunks, Chunk{Kind: ChunkText, Content: text.String()})
		text.Reset()
	}

	for _, tok := range tokens {
		if tok.EOF() {
			break
		}
		switch tok.Type {
		case escapedOpenType:
			text.WriteByte('[')
		case escapedCloseType:
			text.WriteByte(']')
		case directiveType:
			if ignoreFormatting {
				text.WriteString(tok.Value)
				continue
			}
			flush()
			chunks = append(chunks, Chunk{Kind: ChunkFormat, Content: tok.Value})
		default:
			text.WriteString(tok.Value)
		}
	}
	flush()
	return chunks
}

// Escape doubles every bracket so that s survives Tokenize as literal text.
func Escape(s string) string {
	if !strings.ContainsAny(s, "[]") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for _, r := range s {
		if r == '[' || r == ']' {
			b.WriteRune(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Join reassembles chunks into markup: text is re-escaped, directives are kept verbatim.
func Join(chunks []Chunk) string {
	var b strings.Builder
	for _, c := range chunks {
		if c.IsFormat() {
			b.WriteString(c.Content)
			continue
		}
		b.WriteString(Escape(c.Content))
	}
	return b.String()
}

// PlainText returns the concatenated text content, dropping directives.
func PlainText(chunks []Chunk) string {
	var b strings.Builder
	for _, c := range chunks {
		if !c.IsFormat() {
			b.WriteString(c.Content)
		}
	}
	return b.String()
}

func lexLine(line string) ([]lexer.Token, error) {
	lex, err := lineLexer.LexString("", line)
	if err != nil {
		return nil, err
	}
	return lexer.ConsumeAll(lex)
}

func mustTokenType(def lexer.Definition, name string) lexer.TokenType {
	tt, ok := def.Symbols()[name]
	if !ok {
		panic(fmt.Sprintf("token %s not defined", name))
	}
	return tt
}
