package ticks

import (
	"sync"
	"time"
)

// Micros is a monotonic timestamp in microseconds.
type Micros int64

// Sub returns the number of microseconds between t and earlier.
func (t Micros) Sub(earlier Micros) Micros {
	return t - earlier
}

func (t Micros) Duration() time.Duration {
	return time.Duration(t) * time.Microsecond
}

func FromDuration(d time.Duration) Micros {
	return Micros(d / time.Microsecond)
}

type Clock interface {
	Now() Micros
}

// System reads the Go monotonic clock, relative to when it was created.
type System struct {
	start time.Time
}

func NewSystem() *System {
	return &System{start: time.Now()}
}

func (s *System) Now() Micros {
	return FromDuration(time.Since(s.start))
}

// Fake is a manually advanced clock for tests and simulation.
type Fake struct {
	lock sync.Mutex
	now  Micros
}

func (f *Fake) Now() Micros {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.now
}

func (f *Fake) Advance(d time.Duration) {
	f.lock.Lock()
	f.now += FromDuration(d)
	f.lock.Unlock()
}

func (f *Fake) Set(t Micros) {
	f.lock.Lock()
	f.now = t
	f.lock.Unlock()
}
