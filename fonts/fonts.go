// Package fonts 提供内置字体的字节数据：Go 字体族（无衬线与等宽）与 Latin Modern（衬线）。
package fonts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-fonts/latin-modern/lmmono10italic"
	"github.com/go-fonts/latin-modern/lmmono10regular"
	"github.com/go-fonts/latin-modern/lmroman10bold"
	"github.com/go-fonts/latin-modern/lmroman10bolditalic"
	"github.com/go-fonts/latin-modern/lmroman10italic"
	"github.com/go-fonts/latin-modern/lmroman10regular"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// Default 是样式未匹配到任何字体族时使用的字体。
const Default = "go-regular"

var builtin = map[string][]byte{
	"go-regular":          goregular.TTF,
	"go-bold":             gobold.TTF,
	"go-italic":           goitalic.TTF,
	"go-bolditalic":       gobolditalic.TTF,
	"go-mono":             gomono.TTF,
	"go-mono-bold":        gomonobold.TTF,
	"go-mono-italic":      gomonoitalic.TTF,
	"go-mono-bolditalic":  gomonobolditalic.TTF,
	"lm-roman":            lmroman10regular.TTF,
	"lm-roman-bold":       lmroman10bold.TTF,
	"lm-roman-italic":     lmroman10italic.TTF,
	"lm-roman-bolditalic": lmroman10bolditalic.TTF,
	"lm-mono":             lmmono10regular.TTF,
	"lm-mono-italic":      lmmono10italic.TTF,
}

// Load 返回内置字体的字节数据，name 可带 "embed:" 前缀，例如 "embed:go-bold"。
func Load(name string) ([]byte, error) {
	key := strings.ToLower(strings.TrimPrefix(name, "embed:"))
	data, ok := builtin[key]
	if !ok {
		return nil, fmt.Errorf("读取内置字体 %s 失败: 未知字体", name)
	}
	return data, nil
}

// Names lists the built-in font names in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select 根据 CSS 风格的字体族名与粗体/斜体选择内置字体。
// serif、Latin Modern 映射到 lm-roman，monospace 映射到 go-mono，其余使用 Go 无衬线字体。
func Select(family string, bold, italic bool) string {
	var base string
	switch f := strings.ToLower(strings.TrimSpace(family)); {
	case f == "serif", strings.Contains(f, "latin modern"), strings.Contains(f, "lm roman"), strings.HasPrefix(f, "lm-roman"):
		base = "lm-roman"
	case f == "lm mono", strings.HasPrefix(f, "lm-mono"):
		// Latin Modern Mono 没有粗体
		if italic {
			return "lm-mono-italic"
		}
		return "lm-mono"
	case f == "monospace", f == "mono", strings.HasPrefix(f, "go mono"), strings.HasPrefix(f, "go-mono"):
		base = "go-mono"
	default:
		base = "go"
	}
	if base == "go" {
		switch {
		case bold && italic:
			return "go-bolditalic"
		case bold:
			return "go-bold"
		case italic:
			return "go-italic"
		}
		return Default
	}
	switch {
	case bold && italic:
		return base + "-" + "bolditalic"
	case bold:
		return base + "-" + "bold"
	case italic:
		return base + "-" + "italic"
	}
	return base
}
