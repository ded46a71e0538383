package element

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/ByLCY/labelbox/binding"
	"github.com/ByLCY/labelbox/frame"
	"github.com/ByLCY/labelbox/layout"
	"github.com/ByLCY/labelbox/markup"
)

// KindLabel 是 Label 在 Registry 中的默认类型名。
const KindLabel = "label"

// LabelOptions 配置 Label 的依赖。
type LabelOptions struct {
	Measurer  layout.Measurer
	Config    *layout.Config
	BaseStyle *markup.Style
	// Frame 安排“下一帧”的重试，默认 frame.NewTimerScheduler(frame.FrameInterval)。
	Frame frame.Scheduler
	// Resize 控制尺寸变化后的防抖，默认 frame.NewTimerScheduler(frame.ResizeDelay)。
	Resize frame.Scheduler
	Logger *slog.Logger
}

// Label 是一个文本元素：持有排版引擎、原始文本与可选的数据记录。
// 调度器的回调可能来自其他 goroutine，因此所有状态都由 mu 保护。
type Label struct {
	Node

	mu       sync.Mutex
	engine   *layout.Engine
	text     string
	data     any
	result   *layout.Result
	invalid  bool
	disposed bool
	retried  bool // 已为当前内容安排过一次下一帧重试

	retry  *frame.Request
	resize *frame.Debouncer
	logger *slog.Logger
}

// NewLabel creates a visible, empty label.
func NewLabel(id string, opts LabelOptions) (*Label, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("element", id)
	engine, err := layout.NewEngine(layout.Options{
		Measurer:  opts.Measurer,
		BaseStyle: opts.BaseStyle,
		Config:    opts.Config,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}
	if opts.Frame == nil {
		opts.Frame = frame.NewTimerScheduler(frame.FrameInterval)
	}
	if opts.Resize == nil {
		opts.Resize = frame.NewTimerScheduler(frame.ResizeDelay)
	}

	l := &Label{
		Node:    Node{ID: id, Visible: true},
		engine:  engine,
		invalid: true,
		retry:   frame.NewRequest(opts.Frame),
		logger:  logger,
	}
	l.resize = frame.NewDebouncer(opts.Resize, func() { _ = l.Validate() })
	return l, nil
}

// LabelConstructor adapts NewLabel to a registry Constructor sharing opts.
func LabelConstructor(opts LabelOptions) Constructor {
	return func(id string) (Element, error) {
		l, err := NewLabel(id, opts)
		if err != nil {
			return nil, err
		}
		return l, nil
	}
}

// SetText 设置原始文本（可包含格式指令与 {path} 占位符）。
func (l *Label) SetText(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if text != l.text {
		l.text = text
		l.invalidate()
	}
}

// Text returns the raw text.
func (l *Label) Text() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.text
}

// SetData 设置绑定到占位符的数据记录，nil 表示不做替换。
func (l *Label) SetData(data any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.data = data
	l.invalidate()
}

// SetConfig replaces the layout configuration.
func (l *Label) SetConfig(cfg layout.Config) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.engine.SetConfig(cfg) {
		l.invalidate()
	}
}

// Config returns the current layout configuration.
func (l *Label) Config() layout.Config {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.engine.Config()
}

// SetBaseStyle replaces the style that directives apply on top of.
func (l *Label) SetBaseStyle(s markup.Style) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.engine.SetBaseStyle(s) {
		l.invalidate()
	}
}

// Resize 更新最大宽高，并在防抖结束后重新排版。
func (l *Label) Resize(width, height float64) {
	l.mu.Lock()
	cfg := l.engine.Config()
	cfg.MaxWidth, cfg.MaxHeight = width, height
	if l.engine.SetConfig(cfg) {
		l.invalidate()
	}
	l.mu.Unlock()
	l.resize.Trigger()
}

// Validate 在内容或配置变化后重新排版。
// 文本暂时无法测量时返回 layout.ErrUnmeasured，并安排在下一帧重试一次；
// 重试仍失败则不再安排，直到内容或配置变化。
func (l *Label) Validate() error {
	l.mu.Lock()
	err := l.validateLocked()
	schedule := false
	if errors.Is(err, layout.ErrUnmeasured) && !l.retried {
		l.retried = true
		schedule = true
	}
	l.mu.Unlock()

	if schedule {
		l.logger.Debug("文本暂时无法测量，下一帧重试")
		l.retry.Do(func() { _ = l.Validate() })
	}
	return err
}

// invalidate 标记需要重新排版，并允许再安排一次重试。调用方持有 mu。
func (l *Label) invalidate() {
	l.invalid = true
	l.retried = false
}

func (l *Label) validateLocked() error {
	if l.disposed {
		return layout.ErrDisposed
	}
	if !l.invalid && !l.engine.Dirty() {
		return nil
	}
	res, err := l.engine.Layout(binding.Interpolate(l.text, l.data))
	if err != nil {
		return err
	}
	l.result = res
	l.invalid = false
	l.retried = false
	l.Visible = !(l.engine.Config().HideOversized && res.IsOversized)
	return nil
}

// Result returns the latest successful layout, or nil before the first one.
func (l *Label) Result() *layout.Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.result
}

// IsVisible reports the visibility computed by the latest layout.
func (l *Label) IsVisible() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Visible
}

// Dispose 撤销待执行的重试与防抖任务并释放行缓存。
func (l *Label) Dispose() {
	l.retry.Cancel()
	l.resize.Stop()

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.disposed {
		return
	}
	l.engine.Dispose()
	l.result = nil
	l.disposed = true
}
