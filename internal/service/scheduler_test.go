package service

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSchedulerRunsAfterDelay(t *testing.T) {
	s := NewScheduler()
	s.Start()
	defer s.Stop()

	var ran atomic.Bool
	start := time.Now()
	var took atomic.Int64

	s.After(50*time.Millisecond, "test", func() {
		took.Store(int64(time.Since(start)))
		ran.Store(true)
	})

	assert.Eventually(t, ran.Load, time.Second, 5*time.Millisecond)
	assert.GreaterOrEqual(t, time.Duration(took.Load()), 50*time.Millisecond)
	assert.Equal(t, 0, s.Pending())
}

func TestSchedulerRunsInDueOrder(t *testing.T) {
	s := NewScheduler()
	s.Start()
	defer s.Stop()

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup

	for i, d := range []time.Duration{60, 20, 40} {
		wg.Add(1)
		s.After(d*time.Millisecond, "test", func() {
			defer wg.Done()
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		})
	}

	wg.Wait()
	assert.Equal(t, []int{1, 2, 0}, order)
}

func TestSchedulerEarlierTaskPreemptsWait(t *testing.T) {
	s := NewScheduler()
	s.Start()
	defer s.Stop()

	var ran atomic.Bool
	s.After(time.Hour, "late", func() {})
	s.After(10*time.Millisecond, "early", func() { ran.Store(true) })

	assert.Eventually(t, ran.Load, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, s.Pending())
}

func TestSchedulerStopFlushesPending(t *testing.T) {
	s := NewScheduler()
	s.Start()

	var count atomic.Int32
	for range 3 {
		s.After(time.Hour, "test", func() { count.Add(1) })
	}

	s.Stop()
	assert.Equal(t, int32(3), count.Load())
	assert.Equal(t, 0, s.Pending())

	// Tasks queued after Stop run right away
	s.After(time.Hour, "test", func() { count.Add(1) })
	assert.Equal(t, int32(4), count.Load())

	// Stopping twice is harmless
	s.Stop()
}

func TestSchedulerSurvivesPanics(t *testing.T) {
	s := NewScheduler()
	s.Start()
	defer s.Stop()

	var ran atomic.Bool
	s.After(0, "boom", func() { panic("boom") })
	s.After(10*time.Millisecond, "after", func() { ran.Store(true) })

	assert.Eventually(t, ran.Load, time.Second, 5*time.Millisecond)
}

func TestSchedulerStopWithoutStart(t *testing.T) {
	s := NewScheduler()

	var ran atomic.Bool
	s.After(time.Hour, "never started", func() { ran.Store(true) })

	s.Stop()
	assert.True(t, ran.Load())

	// Start after Stop is a no-op
	s.Start()
	assert.Equal(t, 0, s.Pending())
}
