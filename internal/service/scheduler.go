package service

import (
	"container/heap"
	"sync"
	"time"

	"go.uber.org/zap"
)

type task struct {
	name string
	due  time.Time
	seq  uint64
	fn   func()
}

type taskHeap []*task

func (h taskHeap) Len() int { return len(h) }
func (h taskHeap) Less(i, j int) bool {
	if h[i].due.Equal(h[j].due) {
		return h[i].seq < h[j].seq
	}
	return h[i].due.Before(h[j].due)
}
func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *taskHeap) Push(x any)   { *h = append(*h, x.(*task)) }
func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}

// Scheduler runs delayed tasks on a single goroutine shared by every request.
// Tasks run in due order, a slow task delays the ones after it.
type Scheduler struct {
	mu      sync.Mutex
	tasks   taskHeap
	seq     uint64
	started bool
	stopped bool

	wake chan struct{}
	quit chan struct{}
	done chan struct{}
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		wake: make(chan struct{}, 1),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started || s.stopped {
		return
	}
	s.started = true

	zap.L().Debug("Scheduler started")
	go s.loop()
}

// After queues fn to run once d has passed. After a Stop the task runs
// immediately on the calling goroutine instead.
func (s *Scheduler) After(d time.Duration, name string, fn func()) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		run(&task{name: name, fn: fn})
		return
	}

	s.seq++
	heap.Push(&s.tasks, &task{
		name: name,
		due:  time.Now().Add(d),
		seq:  s.seq,
		fn:   fn,
	})
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Pending returns the number of queued tasks
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.tasks)
}

// Stop ends the loop and runs every queued task right away so nothing that
// was scheduled is skipped
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	started := s.started
	s.mu.Unlock()

	close(s.quit)
	if started {
		<-s.done
	}

	s.mu.Lock()
	rest := s.tasks
	s.tasks = nil
	s.mu.Unlock()

	for rest.Len() > 0 {
		run(heap.Pop(&rest).(*task))
	}

	zap.L().Debug("Scheduler stopped")
}

func (s *Scheduler) loop() {
	defer close(s.done)

	timer := time.NewTimer(time.Hour)
	timer.Stop()

	for {
		s.mu.Lock()
		var wait time.Duration = -1
		var due []*task

		now := time.Now()
		for s.tasks.Len() > 0 && !s.tasks[0].due.After(now) {
			due = append(due, heap.Pop(&s.tasks).(*task))
		}
		if s.tasks.Len() > 0 {
			wait = s.tasks[0].due.Sub(now)
		}
		s.mu.Unlock()

		for _, t := range due {
			run(t)
		}

		// Something may have been queued while the due tasks ran
		if len(due) > 0 {
			continue
		}

		var fire <-chan time.Time
		if wait >= 0 {
			timer.Reset(wait)
			fire = timer.C
		}

		select {
		case <-s.quit:
			timer.Stop()
			return
		case <-s.wake:
			timer.Stop()
		case <-fire:
		}
	}
}

func run(t *task) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("Scheduled task panicked", zap.String("task", t.name), zap.Any("panic", r))
		}
	}()

	t.fn()
}
