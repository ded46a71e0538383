package markup

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	directiveLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{4}|[0-9A-Fa-f]{3})`},
		{Name: "Number", Pattern: `[-+]?(?:\d+\.\d*|\.\d+|\d+)(?:px|pt|mm|em|%)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"|'[^']*'`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Punct", Pattern: `[:;,/=]`},
	})

	directiveParser = participle.MustBuild[directiveAST](
		participle.Lexer(directiveLexer),
		participle.Elide("Whitespace"),
	)
)

// directiveAST is the grammar of the text between the brackets of a format chunk.
type directiveAST struct {
	Reset   bool              `parser:"  @'/'"`
	Entries []*directiveEntry `parser:"| ( @@ ( ';' | ',' )* )*"`
}

// directiveEntry is a single style declaration: a colour, a size, a keyword or key: value.
type directiveEntry struct {
	Color  *string `parser:"  @Color"`
	Number *string `parser:"| @Number"`
	Key    string  `parser:"| @Ident"`
	Value  *string `parser:"  ( ( ':' | '=' ) @( Color | Number | Ident | String ) )?"`
}

// Directive 是解析后的格式指令，nil 字段表示未设置（沿用基础样式）。
type Directive struct {
	Raw       string            `json:"raw"`
	Reset     bool              `json:"reset,omitempty"`
	Family    *string           `json:"family,omitempty"`
	Size      *Length           `json:"size,omitempty"`
	Weight    *int              `json:"weight,omitempty"`
	Italic    *bool             `json:"italic,omitempty"`
	Underline *bool             `json:"underline,omitempty"`
	Color     *string           `json:"color,omitempty"`
	Props     map[string]string `json:"props,omitempty"`
}

// Style 描述一个文本片段最终生效的样式。Size 以 px 为单位。
type Style struct {
	Raw       string            `json:"raw,omitempty" yaml:"-" toml:"-"`
	Family    string            `json:"family" yaml:"family" toml:"family"`
	Size      float64           `json:"size" yaml:"size" toml:"size"`
	Weight    int               `json:"weight" yaml:"weight" toml:"weight"`
	Italic    bool              `json:"italic,omitempty" yaml:"italic" toml:"italic"`
	Underline bool              `json:"underline,omitempty" yaml:"underline" toml:"underline"`
	Color     string            `json:"color" yaml:"color" toml:"color"`
	Props     map[string]string `json:"props,omitempty" yaml:"props,omitempty" toml:"props,omitempty"`
}

const (
	WeightNormal = 400
	WeightBold   = 700
)

// DefaultStyle returns the base style used when the host does not provide one.
func DefaultStyle() Style {
	return Style{
		Family: "sans-serif",
		Size:   12,
		Weight: WeightNormal,
		Color:  "#000000",
	}
}

// Bold reports whether the weight renders as bold.
func (s Style) Bold() bool { return s.Weight >= 600 }

// Key returns a string that identifies the measurable parts of the style.
func (s Style) Key() string {
	return fmt.Sprintf("%s|%g|%d|%t", s.Family, s.Size, s.Weight, s.Italic)
}

// Apply 以 s 为基础样式应用指令；Reset 指令直接返回基础样式。
// 指令之间不累积：调用方总是对基础样式调用 Apply。
func (s Style) Apply(d Directive) Style {
	if d.Reset {
		return s
	}
	out := s
	out.Raw = d.Raw
	if d.Family != nil {
		out.Family = *d.Family
	}
	if d.Size != nil {
		if px := d.Size.Resolve(s.Size); px > 0 {
			out.Size = px
		}
	}
	if d.Weight != nil {
		out.Weight = *d.Weight
	}
	if d.Italic != nil {
		out.Italic = *d.Italic
	}
	if d.Underline != nil {
		out.Underline = *d.Underline
	}
	if d.Color != nil {
		out.Color = *d.Color
	}
	if len(d.Props) > 0 {
		props := make(map[string]string, len(s.Props)+len(d.Props))
		for k, v := range s.Props {
			props[k] = v
		}
		for k, v := range d.Props {
			props[k] = v
		}
		out.Props = props
	}
	return out
}

// ParseDirective 解析一个格式片段，例如 "[bold #f00 font-size: 20px]"。
// "[/]" 与 "[]" 解析为 Reset。
func ParseDirective(raw string) (Directive, error) {
	d := Directive{Raw: raw}
	inner := strings.TrimSpace(raw)
	inner = strings.TrimPrefix(inner, "[")
	inner = strings.TrimSuffix(inner, "]")
	if strings.TrimSpace(inner) == "" {
		d.Reset = true
		return d, nil
	}

	ast, err := directiveParser.ParseString("", inner)
	if err != nil {
		return Directive{Raw: raw}, fmt.Errorf("解析格式指令 %s 失败: %w", raw, err)
	}
	if ast.Reset {
		d.Reset = true
		return d, nil
	}
	for _, entry := range ast.Entries {
		if err := d.applyEntry(entry); err != nil {
			return Directive{Raw: raw}, fmt.Errorf("格式指令 %s: %w", raw, err)
		}
	}
	return d, nil
}

func (d *Directive) applyEntry(e *directiveEntry) error {
	switch {
	case e.Color != nil:
		c := strings.ToLower(*e.Color)
		d.Color = &c
	case e.Number != nil:
		l, ok := ParseLength(*e.Number)
		if !ok {
			return fmt.Errorf("无法解析字号 %s", *e.Number)
		}
		d.Size = &l
	case e.Value == nil:
		d.applyKeyword(strings.ToLower(e.Key))
	default:
		return d.applyProperty(normalizeKey(e.Key), unquote(*e.Value))
	}
	return nil
}

func (d *Directive) applyKeyword(word string) {
	switch word {
	case "bold", "bolder":
		d.Weight = intPtr(WeightBold)
	case "lighter":
		d.Weight = intPtr(300)
	case "italic", "oblique":
		d.Italic = boolPtr(true)
	case "underline":
		d.Underline = boolPtr(true)
	case "normal":
		d.Weight = intPtr(WeightNormal)
		d.Italic = boolPtr(false)
		d.Underline = boolPtr(false)
	default:
		// 其余单词视为颜色名
		d.Color = &word
	}
}

func (d *Directive) applyProperty(key, value string) error {
	switch key {
	case "font-size":
		l, ok := ParseLength(value)
		if !ok {
			return fmt.Errorf("无法解析字号 %s", value)
		}
		d.Size = &l
	case "font-weight":
		switch strings.ToLower(value) {
		case "bold", "bolder":
			d.Weight = intPtr(WeightBold)
		case "normal":
			d.Weight = intPtr(WeightNormal)
		case "lighter":
			d.Weight = intPtr(300)
		default:
			w, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("无法解析字重 %s", value)
			}
			d.Weight = &w
		}
	case "font-style":
		v := strings.ToLower(value)
		d.Italic = boolPtr(v == "italic" || v == "oblique")
	case "font-family":
		d.Family = &value
	case "fill", "color":
		c := strings.ToLower(value)
		d.Color = &c
	case "text-decoration":
		d.Underline = boolPtr(strings.EqualFold(value, "underline"))
	default:
		if d.Props == nil {
			d.Props = map[string]string{}
		}
		d.Props[key] = value
	}
	return nil
}

// normalizeKey 统一 camelCase 与 kebab-case 写法：fontSize → font-size。
func normalizeKey(key string) string {
	var b strings.Builder
	for i, r := range key {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func unquote(v string) string {
	if len(v) >= 2 {
		if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
			if s, err := strconv.Unquote(`"` + v[1:len(v)-1] + `"`); err == nil {
				return s
			}
			return v[1 : len(v)-1]
		}
	}
	return v
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }
