package imu

import (
	"time"

	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/ticks"
)

// Sim is a simulated gyro producing samples at a fixed interval on the given
// clock.  Reported rates are the true rate plus a constant bias.
type Sim struct {
	Clock    ticks.Clock
	Interval time.Duration
	Bias     Reading
	// Rate returns the true angular rate at a time; nil means stationary.
	Rate func(t ticks.Micros) Reading
	// OnPoll is called on every DataReady, e.g. to advance a fake clock.
	OnPoll func()
	// Dead makes the sensor never report a sample.
	Dead bool

	started bool
	next    ticks.Micros
	reads   int
}

var _ Interface = (*Sim)(nil)

func (s *Sim) DataReady() (bool, error) {
	if s.OnPoll != nil {
		s.OnPoll()
	}
	if s.Dead {
		return false, nil
	}
	now := s.Clock.Now()
	if !s.started {
		s.started = true
		s.next = now + ticks.FromDuration(s.Interval)
		return false, nil
	}
	return now >= s.next, nil
}

func (s *Sim) Read() (Reading, error) {
	now := s.Clock.Now()
	s.next = now + ticks.FromDuration(s.Interval)
	s.reads++

	var r Reading
	if s.Rate != nil {
		r = s.Rate(now)
	}
	return Reading{
		X: r.X + s.Bias.X,
		Y: r.Y + s.Bias.Y,
		Z: r.Z + s.Bias.Z,
	}, nil
}

// Reads returns the number of samples read so far.
func (s *Sim) Reads() int {
	return s.reads
}
