// Package chattest provides a manual clock for driving idle timers in tests.
package chattest

import (
	"sort"
	"sync"
	"time"

	"github.com/amoylab/huddle/internal/chat"
)

// Scheduler is a chat.Scheduler whose timers fire only when Advance is called
type Scheduler struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*timer
}

type timer struct {
	s       *Scheduler
	at      time.Duration
	seq     int
	f       func()
	stopped bool
	fired   bool
}

var _ chat.Scheduler = (*Scheduler)(nil)

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

func (s *Scheduler) AfterFunc(d time.Duration, f func()) chat.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &timer{s: s, at: s.now + d, seq: s.seq, f: f}
	s.timers = append(s.timers, t)
	return t
}

// Advance moves the clock forward and runs due callbacks in deadline order on
// the calling goroutine
func (s *Scheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	var due []*timer
	kept := s.timers[:0]
	for _, t := range s.timers {
		switch {
		case t.stopped:
		case t.at <= s.now:
			t.fired = true
			due = append(due, t)
		default:
			kept = append(kept, t)
		}
	}
	s.timers = kept
	s.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].at != due[j].at {
			return due[i].at < due[j].at
		}
		return due[i].seq < due[j].seq
	})
	for _, t := range due {
		t.f()
	}
}

// Pending counts timers that are armed and not yet due
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

func (t *timer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}
