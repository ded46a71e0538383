package layout

// LineCache 以物理行序号为键保存 LineInfo，使重复排版时可以原地复用行对象与测量结果。
// 只有 Dispose 会真正删除行；行数减少时多余的行只被标记为 Hidden。
type LineCache struct {
	lines []*LineInfo
}

// NewLineCache creates an empty cache.
func NewLineCache() *LineCache { return &LineCache{} }

// Get returns the line stored at index, or nil when unset.
func (c *LineCache) Get(index int) *LineInfo {
	if c == nil || index < 0 || index >= len(c.lines) {
		return nil
	}
	return c.lines[index]
}

// Set stores info at index, growing the cache as needed.
func (c *LineCache) Set(index int, info *LineInfo) {
	if index < 0 {
		return
	}
	for len(c.lines) <= index {
		c.lines = append(c.lines, nil)
	}
	c.lines[index] = info
}

// Len returns the number of slots, hidden lines included.
func (c *LineCache) Len() int { return len(c.lines) }

// Visible counts the cached lines that are not hidden.
func (c *LineCache) Visible() int {
	n := 0
	for _, ln := range c.lines {
		if ln != nil && !ln.Hidden {
			n++
		}
	}
	return n
}

// InvalidateAll 使所有缓存的测量结果失效（字体、字号、配置变化时调用），行对象本身保留。
func (c *LineCache) InvalidateAll() {
	for _, ln := range c.lines {
		if ln == nil {
			continue
		}
		ln.measured = false
		ln.source = ""
		ln.entry = ""
	}
}

// HideFrom marks every cached line at index >= n as hidden.
func (c *LineCache) HideFrom(n int) {
	for i := n; i < len(c.lines); i++ {
		if c.lines[i] != nil {
			c.lines[i].Hidden = true
		}
	}
}

// Dispose drops every cached line.
func (c *LineCache) Dispose() { c.lines = nil }
