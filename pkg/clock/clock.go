/* Copyright 2025 ResearchOS Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package clock provides an abstract layer over the standard time package
package clock

import (
	"sort"
	"sync"
	"time"
)

// Clock is an interface to the standard library time.
// It is used to implement a real or a mock clock. The latter is used in tests.
type Clock interface {
	Now() time.Time
	// AfterFunc waits for the duration to elapse and then calls f in its own goroutine.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a handle to a function scheduled with AfterFunc
type Timer interface {
	// Stop prevents the timer from firing. It returns false if the timer
	// has already fired or been stopped.
	Stop() bool
}

type clock struct{}

func (c *clock) Now() time.Time {
	return time.Now()
}

func (c *clock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// New returns an instance of a real clock
func New() Clock {
	return &clock{}
}

// Mock is a mock instance of clock. Timers scheduled on it only fire
// when the mock time is moved past their deadline with SetNow or Advance.
type Mock struct {
	mu          sync.RWMutex
	currentTime time.Time
	timers      []*mockTimer
	seq         int
}

type mockTimer struct {
	mock     *Mock
	deadline time.Time
	seq      int
	f        func()
	done     bool
}

func (t *mockTimer) Stop() bool {
	t.mock.mu.Lock()
	defer t.mock.mu.Unlock()

	if t.done {
		return false
	}
	t.done = true
	t.mock.removeTimer(t)

	return true
}

// NewMock returns an instance of a mock clock
func NewMock() *Mock {
	return &Mock{
		currentTime: time.Date(2009, time.November, 10, 23, 0, 0, 0, time.UTC),
	}
}

// SetNow sets the current time for the mock clock and fires any timers
// whose deadline has been reached
func (c *Mock) SetNow(t time.Time) {
	c.mu.Lock()
	c.currentTime = t
	due := c.popDue()
	c.mu.Unlock()

	for _, tm := range due {
		tm.f()
	}
}

// Advance moves the mock time forward by the given duration
func (c *Mock) Advance(d time.Duration) {
	c.SetNow(c.Now().Add(d))
}

// Now returns the current time
func (c *Mock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentTime
}

// AfterFunc schedules f to run once the mock time reaches now+d. Unlike the
// real clock, f runs synchronously in the goroutine that advances the time.
func (c *Mock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	t := &mockTimer{
		mock:     c,
		deadline: c.currentTime.Add(d),
		seq:      c.seq,
		f:        f,
	}
	c.timers = append(c.timers, t)

	return t
}

// PendingTimers returns the number of timers that have not fired or been stopped
func (c *Mock) PendingTimers() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.timers)
}

// popDue removes and returns timers whose deadline is not after the current
// time, in deadline order. The caller must hold the lock.
func (c *Mock) popDue() []*mockTimer {
	var due, rest []*mockTimer
	for _, t := range c.timers {
		if !t.deadline.After(c.currentTime) {
			t.done = true
			due = append(due, t)
		} else {
			rest = append(rest, t)
		}
	}
	c.timers = rest

	sort.Slice(due, func(i, j int) bool {
		if due[i].deadline.Equal(due[j].deadline) {
			return due[i].seq < due[j].seq
		}
		return due[i].deadline.Before(due[j].deadline)
	})

	return due
}

func (c *Mock) removeTimer(t *mockTimer) {
	for i, cur := range c.timers {
		if cur == t {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)
			return
		}
	}
}
