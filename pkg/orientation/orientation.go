package orientation

import (
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/ticks"
)

// Integrator accumulates bias-corrected angular rate into an angle.  The
// angle is unbounded; it is never wrapped into ±180 or 0..360.
type Integrator struct {
	angle    float64
	rate     float64
	last     ticks.Micros
	haveLast bool
}

// Update integrates one raw sample taken at now and returns the new angle
// (degrees) and the corrected rate (degrees per second).  The first update
// after construction or ResetTime only records the timestamp.
func (i *Integrator) Update(rawRateDPS, biasDPS float64, now ticks.Micros) (angle, rate float64) {
	i.rate = rawRateDPS - biasDPS
	if i.haveLast {
		dt := now.Sub(i.last)
		i.angle += i.rate * float64(dt) / 1_000_000
	}
	i.last = now
	i.haveLast = true
	return i.angle, i.rate
}

// ResetTime forgets the last sample time so that the next update does not
// integrate across a gap.  The angle is kept.
func (i *Integrator) ResetTime() {
	i.haveLast = false
}

func (i *Integrator) Angle() float64 {
	return i.angle
}

// Rate is the most recent corrected rate.
func (i *Integrator) Rate() float64 {
	return i.rate
}
