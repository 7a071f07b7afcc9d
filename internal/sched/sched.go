// Package sched owns the fixed-period timed tasks of a session. It has no
// goroutine of its own: the owner calls Advance from its event loop, so task
// callbacks run on the owner's goroutine and may touch its state directly.
package sched

import (
	"sort"
	"time"
)

// Key names the condition a task serves.
type Key string

const (
	Accrual       Key = "accrual"
	BuffExpiry    Key = "buff-expiry"
	EventRotation Key = "event-rotation"
)

type task struct {
	period time.Duration
	next   time.Time
	fn     func(now time.Time)
}

// Scheduler is not safe for concurrent use.
type Scheduler struct {
	tasks map[Key]*task
}

func New() *Scheduler {
	return &Scheduler{tasks: make(map[Key]*task)}
}

// Schedule registers fn to fire every period, first at now+period. An
// existing task under key is replaced.
func (s *Scheduler) Schedule(key Key, period time.Duration, now time.Time, fn func(now time.Time)) {
	if period <= 0 {
		period = time.Second
	}
	s.tasks[key] = &task{period: period, next: now.Add(period), fn: fn}
}

// Cancel drops the task under key; a no-op when absent.
func (s *Scheduler) Cancel(key Key) {
	delete(s.tasks, key)
}

func (s *Scheduler) Has(key Key) bool {
	_, ok := s.tasks[key]
	return ok
}

// Keys lists registered tasks in order.
func (s *Scheduler) Keys() []Key {
	keys := make([]Key, 0, len(s.tasks))
	for k := range s.tasks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Advance fires every tick due at or before now in time order, ties broken
// by key. Each tick is passed its own scheduled time, so a long gap between
// calls replays the ticks it missed. A task cancelled or replaced by a
// callback stops firing immediately.
func (s *Scheduler) Advance(now time.Time) int {
	fired := 0
	for {
		t := s.nextDue(now)
		if t == nil {
			return fired
		}
		at := t.next
		t.next = t.next.Add(t.period)
		t.fn(at)
		fired++
	}
}

func (s *Scheduler) nextDue(now time.Time) *task {
	var best *task
	for _, k := range s.Keys() {
		t := s.tasks[k]
		if now.Before(t.next) {
			continue
		}
		if best == nil || t.next.Before(best.next) {
			best = t
		}
	}
	return best
}
