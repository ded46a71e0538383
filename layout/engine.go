package layout

import (
	"log/slog"
	"reflect"
	"strings"

	"github.com/ByLCY/labelbox/markup"
)

// Engine 是单个文本元素的排版引擎：持有测量后端、基础样式、配置与行缓存。
// Engine 不是并发安全的，应由拥有它的元素在同一 goroutine 中调用。
type Engine struct {
	measurer   Measurer
	base       markup.Style
	cfg        Config
	cache      *LineCache
	directives map[string]parsedDirective
	logger     *slog.Logger

	dirty    bool
	disposed bool
}

// NewEngine 创建排版引擎。
func NewEngine(opts Options) (*Engine, error) {
	if opts.Measurer == nil {
		return nil, ErrNoMeasurer
	}
	e := &Engine{
		measurer:   opts.Measurer,
		base:       markup.DefaultStyle(),
		cfg:        DefaultConfig(),
		cache:      NewLineCache(),
		directives: map[string]parsedDirective{},
		logger:     opts.Logger,
		dirty:      true,
	}
	if opts.BaseStyle != nil {
		e.base = *opts.BaseStyle
	}
	if opts.Config != nil {
		e.cfg = *opts.Config
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	e.logger = e.logger.With("component", "layout")
	return e, nil
}

// Config returns the current configuration.
func (e *Engine) Config() Config { return e.cfg }

// BaseStyle returns the style that formatting directives are applied on top of.
func (e *Engine) BaseStyle() markup.Style { return e.base }

// Cache exposes the line cache, mainly for inspection in tests and debug output.
func (e *Engine) Cache() *LineCache { return e.cache }

// Dirty 表示下一次 Layout 前结果已过期（配置变化或上一次测量失败）。
func (e *Engine) Dirty() bool { return e.dirty }

// SetConfig 更新配置；配置有变化时使全部缓存行失效。返回配置是否变化。
func (e *Engine) SetConfig(cfg Config) bool {
	if cfg == e.cfg {
		return false
	}
	e.cfg = cfg
	e.invalidate("config")
	return true
}

// SetBaseStyle 更新基础样式；字体或字号变化会改变所有测量结果，因此同样使缓存失效。
func (e *Engine) SetBaseStyle(s markup.Style) bool {
	if reflect.DeepEqual(s, e.base) {
		return false
	}
	e.base = s
	e.invalidate("base style")
	return true
}

func (e *Engine) invalidate(reason string) {
	e.cache.InvalidateAll()
	e.dirty = true
	e.logger.Debug("排版缓存失效", "reason", reason)
}

// Layout 对整段文本排版。text 中的 "\r\n" 与 "\r" 视为换行；空文本得到零行。
// 测量后端暂时无法测量时返回 ErrUnmeasured，此时缓存已失效，调用方应在下一帧重试。
func (e *Engine) Layout(text string) (*Result, error) {
	if e.disposed {
		return nil, ErrDisposed
	}
	text = normalizeNewlines(text)

	cfg := e.cfg
	if cfg.AutoDirection && !cfg.RTL {
		cfg.RTL = DetectRTL(text)
	}

	r := newResolver(cfg, e.measurer, e.base, e.cache, e.directives, e.logger)
	var lines []LineInfo
	if text != "" {
		style := e.base
		for _, src := range strings.Split(text, "\n") {
			infos, exit, err := r.layoutSource(src, style)
			if err != nil {
				e.cache.InvalidateAll()
				e.dirty = true
				e.logger.Debug("文本暂时无法测量，等待下一帧重新排版", "error", err)
				return nil, err
			}
			for _, info := range infos {
				lines = append(lines, *info)
			}
			style = exit
		}
	}
	e.cache.HideFrom(len(lines))

	res := AlignLines(lines, cfg, Size{Width: cfg.MaxWidth, Height: cfg.MaxHeight})
	e.dirty = false
	e.logger.Debug("排版完成",
		"lines", len(res.Lines),
		"reused", r.reused,
		"width", res.TotalWidth,
		"height", res.TotalHeight,
		"oversized", res.IsOversized,
	)
	return &res, nil
}

// Dispose 释放缓存行；之后的 Layout 调用返回 ErrDisposed。
func (e *Engine) Dispose() {
	if e.disposed {
		return
	}
	e.cache.Dispose()
	e.directives = nil
	e.disposed = true
}

func normalizeNewlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
