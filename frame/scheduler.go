// Package frame 提供“下一帧再做”的延迟执行工具：文本暂时无法测量时的重试，以及尺寸变化时的防抖重排。
package frame

import (
	"sync"
	"time"
)

const (
	// FrameInterval 是 TimerScheduler 默认的帧间隔（约 60fps）。
	FrameInterval = 16 * time.Millisecond
	// ResizeDelay 是尺寸变化后等待重排的默认时间。
	ResizeDelay = 100 * time.Millisecond
)

// Scheduler 安排 fn 稍后执行，返回的 cancel 可在执行前撤销。cancel 可重复调用。
type Scheduler interface {
	Schedule(fn func()) (cancel func())
}

// TimerScheduler 使用 time.AfterFunc 在 Delay 之后执行任务，任务运行在独立的 goroutine 中。
type TimerScheduler struct {
	Delay time.Duration
}

// NewTimerScheduler returns a scheduler firing after delay; non-positive delays use FrameInterval.
func NewTimerScheduler(delay time.Duration) *TimerScheduler {
	if delay <= 0 {
		delay = FrameInterval
	}
	return &TimerScheduler{Delay: delay}
}

func (s *TimerScheduler) Schedule(fn func()) func() {
	t := time.AfterFunc(s.Delay, fn)
	return func() { t.Stop() }
}

// ManualScheduler 只在调用 Flush 时执行任务，用于测试与离线（CLI）排版。
type ManualScheduler struct {
	mu      sync.Mutex
	nextID  int
	order   []int
	pending map[int]func()
}

// NewManualScheduler creates an empty manual scheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{pending: map[int]func(){}}
}

func (s *ManualScheduler) Schedule(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.pending[id] = fn
	s.order = append(s.order, id)
	return func() {
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
	}
}

// Flush 按安排顺序执行当前所有待执行任务并返回执行数量。
// 任务在执行过程中新安排的任务留到下一次 Flush，相当于“下一帧”。
func (s *ManualScheduler) Flush() int {
	s.mu.Lock()
	order := s.order
	s.order = nil
	var due []func()
	for _, id := range order {
		if fn, ok := s.pending[id]; ok {
			due = append(due, fn)
			delete(s.pending, id)
		}
	}
	s.mu.Unlock()

	for _, fn := range due {
		fn()
	}
	return len(due)
}

// Pending returns the number of tasks waiting for the next Flush.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
