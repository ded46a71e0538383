package frame

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManualSchedulerRunsInOrder(t *testing.T) {
	s := NewManualScheduler()
	var got []int
	s.Schedule(func() { got = append(got, 1) })
	cancel := s.Schedule(func() { got = append(got, 2) })
	s.Schedule(func() { got = append(got, 3) })
	cancel()
	cancel()

	assert.Equal(t, 2, s.Pending())
	assert.Equal(t, 2, s.Flush())
	assert.Equal(t, []int{1, 3}, got)
	assert.Zero(t, s.Flush())
}

func TestManualSchedulerDefersNestedTasks(t *testing.T) {
	s := NewManualScheduler()
	runs := 0
	s.Schedule(func() {
		runs++
		s.Schedule(func() { runs++ })
	})
	assert.Equal(t, 1, s.Flush())
	assert.Equal(t, 1, runs)
	assert.Equal(t, 1, s.Flush())
	assert.Equal(t, 2, runs)
}

func TestRequestLastWriteWins(t *testing.T) {
	s := NewManualScheduler()
	r := NewRequest(s)
	var got []string
	r.Do(func() { got = append(got, "first") })
	r.Do(func() { got = append(got, "second") })
	assert.True(t, r.Pending())

	s.Flush()
	assert.Equal(t, []string{"second"}, got)
	assert.False(t, r.Pending())
}

func TestRequestCancel(t *testing.T) {
	s := NewManualScheduler()
	r := NewRequest(s)
	ran := false
	r.Do(func() { ran = true })
	r.Cancel()
	s.Flush()
	assert.False(t, ran)
	assert.False(t, r.Pending())
}

type syncScheduler struct{}

func (syncScheduler) Schedule(fn func()) func() {
	fn()
	return func() {}
}

func TestRequestWithSynchronousScheduler(t *testing.T) {
	r := NewRequest(syncScheduler{})
	n := 0
	r.Do(func() { n++ })
	r.Do(func() { n++ })
	assert.Equal(t, 2, n)
	assert.False(t, r.Pending())
}

func TestDebouncerCoalescesTriggers(t *testing.T) {
	s := NewManualScheduler()
	n := 0
	d := NewDebouncer(s, func() { n++ })
	for range 5 {
		d.Trigger()
	}
	assert.True(t, d.Pending())
	s.Flush()
	assert.Equal(t, 1, n)

	d.Trigger()
	d.Stop()
	s.Flush()
	assert.Equal(t, 1, n)
}

func TestTimerScheduler(t *testing.T) {
	s := NewTimerScheduler(0)
	assert.Equal(t, FrameInterval, s.Delay)

	var n atomic.Int32
	d := NewDebouncer(NewTimerScheduler(5*time.Millisecond), func() { n.Add(1) })
	d.Trigger()
	d.Trigger()
	require.Eventually(t, func() bool { return n.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), n.Load())

	cancel := s.Schedule(func() { n.Add(10) })
	cancel()
	time.Sleep(2 * FrameInterval)
	assert.Equal(t, int32(1), n.Load())
}
