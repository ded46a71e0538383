package layout

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/ByLCY/labelbox/markup"
)

// growFactor 是每次估算失败后待删除字素数的放大倍数，保证缩短过程有界。
const growFactor = 1.1

type parsedDirective struct {
	d  markup.Directive
	ok bool
}

// resolver 负责一次排版中的折行与截断，按顺序产出物理行并写入行缓存。
type resolver struct {
	cfg        Config
	measurer   Measurer
	base       markup.Style
	cache      *LineCache
	directives map[string]parsedDirective
	logger     *slog.Logger

	next   int // 下一条物理行的序号
	reused int
}

// pendingLine 是等待排版的逻辑行，或折行后推迟到下一行的剩余部分。
type pendingLine struct {
	chunks       []markup.Chunk
	style        markup.Style
	continuation bool
}

// lineBuild 累积一条物理行的片段。
type lineBuild struct {
	runs      []Run
	width     float64
	active    markup.Style
	exit      markup.Style
	truncated bool
}

func (b *lineBuild) add(run Run) {
	b.runs = append(b.runs, run)
	b.width += run.Width
}

func (b *lineBuild) pop() Run {
	last := b.runs[len(b.runs)-1]
	b.runs = b.runs[:len(b.runs)-1]
	b.width -= last.Width
	return last
}

// cut 是一个候选切分点：前缀为 text[:offset]，包含 graphemes 个字素簇。
type cut struct {
	offset    int
	graphemes int
}

func newResolver(cfg Config, m Measurer, base markup.Style, cache *LineCache, directives map[string]parsedDirective, logger *slog.Logger) *resolver {
	if cache == nil {
		cache = NewLineCache()
	}
	if directives == nil {
		directives = map[string]parsedDirective{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &resolver{
		cfg:        cfg,
		measurer:   m,
		base:       base,
		cache:      cache,
		directives: directives,
		logger:     logger,
	}
}

// LayoutLine 对一行已切分的文本执行折行/截断，返回尚未定位的物理行。
// 它不持有缓存，适合一次性调用；长期存在的文本元素应使用 Engine。
func LayoutLine(chunks []markup.Chunk, cfg Config, m Measurer) ([]LineInfo, error) {
	if m == nil {
		return nil, ErrNoMeasurer
	}
	r := newResolver(cfg, m, markup.DefaultStyle(), nil, nil, nil)
	infos, _, err := r.layoutChunks(chunks, r.base)
	if err != nil {
		return nil, err
	}
	out := make([]LineInfo, 0, len(infos))
	for _, info := range infos {
		out = append(out, *info)
	}
	return out, nil
}

// layoutSource lays out one logical line and returns its physical lines and the style active at its end.
func (r *resolver) layoutSource(src string, style markup.Style) ([]*LineInfo, markup.Style, error) {
	if cached := r.cache.Get(r.next); cached.reusable(src, style) {
		cached.Index = r.next
		cached.Hidden = false
		r.next++
		r.reused++
		return []*LineInfo{cached}, cached.exit, nil
	}

	lines, exit, err := r.layoutChunks(markup.Tokenize(src, r.cfg.IgnoreFormatting), style)
	if err != nil {
		return nil, style, err
	}
	if len(lines) == 1 && lines[0].whole {
		lines[0].source = src
		lines[0].entry = style.Raw
		lines[0].exit = exit
	}
	return lines, exit, nil
}

func (r *resolver) layoutChunks(chunks []markup.Chunk, style markup.Style) ([]*LineInfo, markup.Style, error) {
	p := pendingLine{chunks: chunks, style: style}
	var lines []*LineInfo
	for {
		b, rest, err := r.walk(p)
		if err != nil {
			return nil, style, err
		}
		info, err := r.finish(b)
		if err != nil {
			return nil, style, err
		}
		lines = append(lines, info)
		if rest == nil {
			lines[0].whole = len(lines) == 1 && !b.truncated
			return lines, b.exit, nil
		}
		p = *rest
	}
}

// walk 依次追加片段直到行溢出。折行时返回剩余部分，截断时丢弃其后的所有片段。
func (r *resolver) walk(p pendingLine) (*lineBuild, *pendingLine, error) {
	b := &lineBuild{active: p.style}
	truncate := r.cfg.Truncate
	wrap := r.cfg.Wrap && !truncate

	for i := 0; i < len(p.chunks); i++ {
		ch := p.chunks[i]
		if ch.IsFormat() {
			b.active = r.applyDirective(b.active, ch.Content)
			continue
		}
		txt := ch.Content
		if len(b.runs) == 0 && p.continuation {
			txt = strings.TrimLeftFunc(txt, unicode.IsSpace)
		}
		if txt == "" {
			continue
		}
		sz, err := r.measure(txt, b.active)
		if err != nil {
			return nil, nil, err
		}
		run := Run{Text: txt, Style: b.active, Width: sz.Width, Height: sz.Height}
		if !(truncate || wrap) || fits(b.width+sz.Width, r.cfg.MaxWidth) {
			b.add(run)
			continue
		}

		if truncate {
			if err := r.truncate(b, run); err != nil {
				return nil, nil, err
			}
			b.exit = r.styleAfter(b.active, p.chunks[i+1:])
			return b, nil, nil
		}

		head, tail, err := r.split(run, b.width, len(b.runs) == 0)
		if err != nil {
			return nil, nil, err
		}
		if head = strings.TrimRightFunc(head, unicode.IsSpace); head != "" {
			hs, err := r.measure(head, b.active)
			if err != nil {
				return nil, nil, err
			}
			b.add(Run{Text: head, Style: b.active, Width: hs.Width, Height: hs.Height})
		}
		rest := make([]markup.Chunk, 0, len(p.chunks)-i)
		if tail != "" {
			rest = append(rest, markup.Chunk{Kind: markup.ChunkText, Content: tail})
		}
		rest = append(rest, p.chunks[i+1:]...)
		if !hasVisibleText(rest) {
			b.exit = r.styleAfter(b.active, rest)
			return b, nil, nil
		}
		b.exit = b.active
		return b, &pendingLine{chunks: rest, style: b.active, continuation: true}, nil
	}
	b.exit = b.active
	return b, nil, nil
}

// split 找到折行位置。非行首片段在整词模式下只能在空白处断开，找不到时整体移到下一行；
// 行首片段先尝试词边界，再退回字素级断开，且至少保留一个字素以保证推进。
func (r *resolver) split(run Run, used float64, first bool) (string, string, error) {
	text := run.Text
	chars := graphemeCuts(text)
	if len(chars) == 0 {
		return "", "", nil
	}
	if r.cfg.FullWords {
		c, ok, err := r.shrink(text, wordCuts(text, chars), len(chars), run.Style, used, run.Width, "")
		if err != nil {
			return "", "", err
		}
		if ok {
			return text[:c.offset], text[c.offset:], nil
		}
		if !first {
			return "", text, nil
		}
	}
	c, ok, err := r.shrink(text, chars, len(chars), run.Style, used, run.Width, "")
	if err != nil {
		return "", "", err
	}
	if !ok {
		if !first {
			return "", text, nil
		}
		c = chars[0]
	}
	return text[:c.offset], text[c.offset:], nil
}

// truncate 把溢出的片段缩短并接上省略号；放不下时丢弃该片段，改为缩短前一个片段。
func (r *resolver) truncate(b *lineBuild, over Run) error {
	b.truncated = true
	ok, err := r.truncateRun(b, over, false)
	if ok || err != nil {
		return err
	}
	for len(b.runs) > 0 {
		prev := b.pop()
		ok, err := r.truncateRun(b, prev, true)
		if ok || err != nil {
			return err
		}
	}

	// 连一个字素都放不下：退化为只输出省略号（省略号为空时输出首个字素）。
	fallback := r.cfg.Ellipsis
	if fallback == "" {
		if chars := graphemeCuts(over.Text); len(chars) > 0 {
			fallback = over.Text[:chars[0].offset]
		}
	}
	sz, err := r.measure(fallback, over.Style)
	if err != nil {
		return err
	}
	b.add(Run{Text: fallback, Style: over.Style, Width: sz.Width, Height: sz.Height})
	return nil
}

// truncateRun tries to fit run plus the ellipsis into the remaining width and appends it on success.
func (r *resolver) truncateRun(b *lineBuild, run Run, tryWhole bool) (bool, error) {
	ellipsis := r.cfg.Ellipsis
	text := run.Text
	if tryWhole {
		if whole := strings.TrimRightFunc(text, unicode.IsSpace); whole != "" {
			sz, err := r.measure(whole+ellipsis, run.Style)
			if err != nil {
				return false, err
			}
			if fits(b.width+sz.Width, r.cfg.MaxWidth) {
				b.add(Run{Text: whole + ellipsis, Style: run.Style, Width: sz.Width, Height: sz.Height})
				return true, nil
			}
		}
	}

	chars := graphemeCuts(text)
	if len(chars) == 0 {
		return false, nil
	}
	full := run.Width
	if ellipsis != "" {
		es, err := r.measure(ellipsis, run.Style)
		if err != nil {
			return false, err
		}
		full += es.Width
	}

	var (
		c   cut
		ok  bool
		err error
	)
	if r.cfg.FullWords {
		c, ok, err = r.shrink(text, wordCuts(text, chars), len(chars), run.Style, b.width, full, ellipsis)
		if err != nil {
			return false, err
		}
	}
	if !ok {
		// 整词模式下，只有行首片段或首个词本身就比盒子宽时才退回字素级截断；
		// 否则丢弃该片段，由调用方改为缩短前一个片段。
		if r.cfg.FullWords && len(b.runs) > 0 {
			long, err := r.wordTooLong(text, run.Style)
			if err != nil || !long {
				return false, err
			}
		}
		c, ok, err = r.shrink(text, chars, len(chars), run.Style, b.width, full, ellipsis)
		if err != nil || !ok {
			return false, err
		}
	}
	cand := strings.TrimRightFunc(text[:c.offset], unicode.IsSpace) + ellipsis
	sz, err := r.measure(cand, run.Style)
	if err != nil {
		return false, err
	}
	b.add(Run{Text: cand, Style: run.Style, Width: sz.Width, Height: sz.Height})
	return true, nil
}

// wordTooLong reports whether the first word of text alone is wider than MaxWidth.
func (r *resolver) wordTooLong(text string, style markup.Style) (bool, error) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return false, nil
	}
	sz, err := r.measure(words[0], style)
	if err != nil {
		return false, err
	}
	return !fits(sz.Width, r.cfg.MaxWidth), nil
}

// shrink 用平均字宽估算需要去掉的字素数，每次失败后按 growFactor 放大估算值并重新测量，
// 直到某个候选前缀（附加 suffix）放得下。full 是整段文本加 suffix 的宽度。
// 估算值单调递增，因此循环次数有上界；没有候选放得下时返回 ok=false。
func (r *resolver) shrink(text string, cuts []cut, total int, style markup.Style, used, full float64, suffix string) (cut, bool, error) {
	if len(cuts) == 0 || total == 0 {
		return cut{}, false, nil
	}
	avg := full / float64(total+uniseg.GraphemeClusterCount(suffix))
	if avg <= 0 || math.IsNaN(avg) {
		avg = 1
	}
	excess := total
	if est := math.Ceil((round6(used+full) - r.cfg.MaxWidth) / avg); est < float64(total) {
		excess = int(est)
	}
	if excess < 1 {
		excess = 1
	}

	last := -1
	triedOne := false
	for {
		keep := total - excess
		if keep < 1 {
			if triedOne {
				return cut{}, false, nil
			}
			keep = 1
		}
		if keep == 1 {
			triedOne = true
		}
		c, found := lastCutWithin(cuts, keep)
		if !found {
			return cut{}, false, nil
		}
		if c.offset != last {
			last = c.offset
			cand := strings.TrimRightFunc(text[:c.offset], unicode.IsSpace)
			if cand == "" {
				return cut{}, false, nil
			}
			sz, err := r.measure(cand+suffix, style)
			if err != nil {
				return cut{}, false, err
			}
			if fits(used+sz.Width, r.cfg.MaxWidth) {
				return c, true, nil
			}
		}
		next := int(math.Ceil(float64(excess) * growFactor))
		if next <= excess {
			next = excess + 1
		}
		excess = next
	}
}

// finish 去掉行尾空白并生成（或原地更新）该序号的 LineInfo。
// 行尾指逻辑顺序的末尾：LTR 时在视觉右侧，RTL 时在视觉左侧。
func (r *resolver) finish(b *lineBuild) (*LineInfo, error) {
	for len(b.runs) > 0 {
		last := &b.runs[len(b.runs)-1]
		trimmed := strings.TrimRightFunc(last.Text, unicode.IsSpace)
		if trimmed == last.Text {
			break
		}
		if trimmed == "" {
			b.pop()
			continue
		}
		sz, err := r.measure(trimmed, last.Style)
		if err != nil {
			return nil, err
		}
		b.width += sz.Width - last.Width
		last.Text, last.Width, last.Height = trimmed, sz.Width, sz.Height
		break
	}

	var (
		text   strings.Builder
		width  float64
		height float64
	)
	for _, run := range b.runs {
		text.WriteString(run.Text)
		width += run.Width
		height = math.Max(height, run.Height)
	}
	style := b.active.Raw
	if n := len(b.runs); n > 0 {
		style = b.runs[n-1].Style.Raw
	} else {
		// 空行仍占据一行的高度
		sz, err := r.measure(" ", b.active)
		if err != nil {
			return nil, err
		}
		height = sz.Height
	}

	idx := r.next
	r.next++
	info := r.cache.Get(idx)
	if info == nil {
		info = &LineInfo{}
		r.cache.Set(idx, info)
	}
	*info = LineInfo{
		Index:     idx,
		Text:      text.String(),
		Style:     style,
		Runs:      b.runs,
		Box:       Box{Width: width, Height: height},
		IsComplex: len(b.runs) > 1,
		Truncated: b.truncated,
		measured:  true,
	}
	return info, nil
}

func (r *resolver) measure(text string, style markup.Style) (Size, error) {
	sz := r.measurer.Measure(text, style)
	if !validSize(text, sz) {
		return Size{}, fmt.Errorf("%w: %q", ErrUnmeasured, text)
	}
	return sz, nil
}

// applyDirective 返回应用格式指令后的样式；无法解析的指令保持当前样式不变。
func (r *resolver) applyDirective(active markup.Style, raw string) markup.Style {
	pd, seen := r.directives[raw]
	if !seen {
		d, err := markup.ParseDirective(raw)
		if err != nil {
			r.logger.Debug("忽略无法解析的格式指令", "directive", raw, "error", err)
		}
		pd = parsedDirective{d: d, ok: err == nil}
		r.directives[raw] = pd
	}
	if !pd.ok {
		return active
	}
	return r.base.Apply(pd.d)
}

func (r *resolver) styleAfter(active markup.Style, chunks []markup.Chunk) markup.Style {
	for _, ch := range chunks {
		if ch.IsFormat() {
			active = r.applyDirective(active, ch.Content)
		}
	}
	return active
}

func hasVisibleText(chunks []markup.Chunk) bool {
	for _, ch := range chunks {
		if !ch.IsFormat() && strings.TrimSpace(ch.Content) != "" {
			return true
		}
	}
	return false
}

// graphemeCuts returns a cut after every grapheme cluster of text.
func graphemeCuts(text string) []cut {
	var cuts []cut
	state := -1
	rest := text
	offset := 0
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		offset += len(cluster)
		cuts = append(cuts, cut{offset: offset, graphemes: len(cuts) + 1})
	}
	return cuts
}

// wordCuts 返回每段空白开始处的切分点，即整词模式下允许断开的位置。
func wordCuts(text string, chars []cut) []cut {
	var cuts []cut
	prevSpace := true
	start := 0
	for i, c := range chars {
		r, _ := utf8.DecodeRuneInString(text[start:c.offset])
		space := unicode.IsSpace(r)
		if space && !prevSpace {
			cuts = append(cuts, cut{offset: start, graphemes: i})
		}
		prevSpace = space
		start = c.offset
	}
	return cuts
}

func lastCutWithin(cuts []cut, keep int) (cut, bool) {
	for i := len(cuts) - 1; i >= 0; i-- {
		if cuts[i].graphemes <= keep {
			return cuts[i], true
		}
	}
	return cut{}, false
}

// fits 比较前把两边四舍五入到 1e-6，吸收浮点抖动；恰好等宽视为放得下。
func fits(width, limit float64) bool {
	if math.IsInf(limit, 1) || math.IsNaN(limit) {
		return true
	}
	return round6(width) <= round6(limit)
}

func round6(v float64) float64 { return math.Round(v*1e6) / 1e6 }
