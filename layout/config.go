package layout

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config 是每次排版使用的配置。Truncate 与 Wrap 同时开启时以 Truncate 为准。
// MaxWidth/MaxHeight 为 +Inf 表示不限制；零或负数是退化的盒子，内容会被最大限度地截断或折行。
type Config struct {
	MaxWidth         float64 `json:"maxWidth" yaml:"max_width" toml:"max_width"`
	MaxHeight        float64 `json:"maxHeight" yaml:"max_height" toml:"max_height"`
	Wrap             bool    `json:"wrap" yaml:"wrap" toml:"wrap"`
	Truncate         bool    `json:"truncate" yaml:"truncate" toml:"truncate"`
	FullWords        bool    `json:"fullWords" yaml:"full_words" toml:"full_words"`
	Ellipsis         string  `json:"ellipsis" yaml:"ellipsis" toml:"ellipsis"`
	TextAlign        Align   `json:"textAlign" yaml:"text_align" toml:"text_align"`
	TextValign       VAlign  `json:"textValign" yaml:"text_valign" toml:"text_valign"`
	RTL              bool    `json:"rtl" yaml:"rtl" toml:"rtl"`
	AutoDirection    bool    `json:"autoDirection" yaml:"auto_direction" toml:"auto_direction"` // 根据首个强方向字符判断 RTL
	IgnoreFormatting bool    `json:"ignoreFormatting" yaml:"ignore_formatting" toml:"ignore_formatting"`
	HideOversized    bool    `json:"hideOversized" yaml:"hide_oversized" toml:"hide_oversized"` // 由宿主读取，引擎只计算 IsOversized
	LineSpacing      float64 `json:"lineSpacing" yaml:"line_spacing" toml:"line_spacing"`
}

// DefaultConfig returns an unbounded, left-aligned configuration with "…" as ellipsis.
func DefaultConfig() Config {
	return Config{
		MaxWidth:  math.Inf(1),
		MaxHeight: math.Inf(1),
		FullWords: true,
		Ellipsis:  "…",
	}
}

// Bounded reports whether overflow is corrected at all.
func (c Config) Bounded() bool { return c.Wrap || c.Truncate }

// LoadConfig 读取配置文件，按扩展名选择 YAML、TOML 或 JSON；未出现的字段保留默认值。
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
	}
	cfg, err := ParseConfig(data, strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
	if err != nil {
		return Config{}, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes data in the given format ("yaml", "yml", "toml" or "json") over DefaultConfig.
func ParseConfig(data []byte, format string) (Config, error) {
	cfg := DefaultConfig()
	switch format {
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, err
		}
	case "toml":
		if err := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(&cfg); err != nil {
			return Config{}, err
		}
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, err
		}
	default:
		return Config{}, fmt.Errorf("不支持的配置格式：%s", format)
	}
	return cfg, nil
}
