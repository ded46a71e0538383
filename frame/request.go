package frame

import "sync"

// Request 保存至多一个待执行任务：新的 Do 会撤销尚未执行的旧任务（后写者胜）。
type Request struct {
	mu     sync.Mutex
	sched  Scheduler
	cancel func()
	seq    uint64
}

// NewRequest binds a request slot to sched.
func NewRequest(sched Scheduler) *Request {
	return &Request{sched: sched}
}

// Do 安排 fn 在下一帧执行，替换掉尚未执行的旧任务。
func (r *Request) Do(fn func()) {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.seq++
	seq := r.seq
	r.mu.Unlock()

	// Schedule 在锁外调用：调度器可能同步执行任务。
	cancel := r.sched.Schedule(func() {
		r.mu.Lock()
		if seq != r.seq {
			r.mu.Unlock()
			return
		}
		r.cancel = nil
		r.seq++
		r.mu.Unlock()
		fn()
	})

	r.mu.Lock()
	if seq == r.seq {
		r.cancel = cancel
	}
	r.mu.Unlock()
}

// Pending reports whether a task is waiting to run.
func (r *Request) Pending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}

// Cancel 撤销待执行的任务；元素释放时调用。
func (r *Request) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.seq++
}

// Debouncer 合并一段时间内的多次触发，只在最后一次触发后执行一次 fn。
// 延迟由调度器决定，通常为 NewTimerScheduler(ResizeDelay)。
type Debouncer struct {
	req *Request
	fn  func()
}

// NewDebouncer creates a debouncer running fn through sched.
func NewDebouncer(sched Scheduler, fn func()) *Debouncer {
	return &Debouncer{req: NewRequest(sched), fn: fn}
}

// Trigger 重新开始计时。
func (d *Debouncer) Trigger() { d.req.Do(d.fn) }

// Pending reports whether a run is scheduled.
func (d *Debouncer) Pending() bool { return d.req.Pending() }

// Stop cancels the scheduled run, if any.
func (d *Debouncer) Stop() { d.req.Cancel() }
