package hardware

import (
	"fmt"
	"io"
	"time"

	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/buttons"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/imu"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/motors"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/screen"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/sound"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/telemetry"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/ticks"
)

// SimSampleInterval matches the gyro's 1.66 kHz output data rate.
const SimSampleInterval = 600 * time.Microsecond

// SimBiasDPS is the simulated gyro's zero-rate offset.
const SimBiasDPS = 0.42

// Dummy is a Hardware with simulated devices, for running without a robot.
type Dummy struct {
	Hardware

	GyroSim     *imu.Sim
	LeftOut     *motors.Dummy
	RightOut    *motors.Dummy
	FakeA       *buttons.Fake
	FakeC       *buttons.Fake
	Screen      *screen.Dummy
	FakeLED     *FakeIndicator
	SoundPlayer *sound.Dummy
}

// NewDummy builds simulated hardware on clock.  Log records go to logTo, or
// are discarded if it is nil.
func NewDummy(clock ticks.Clock, logTo io.Writer) *Dummy {
	if logTo == nil {
		logTo = io.Discard
	}
	d := &Dummy{
		GyroSim: &imu.Sim{
			Clock:    clock,
			Interval: SimSampleInterval,
			Bias:     imu.Reading{Z: SimBiasDPS},
		},
		LeftOut:     &motors.Dummy{},
		RightOut:    &motors.Dummy{},
		FakeA:       &buttons.Fake{},
		FakeC:       &buttons.Fake{},
		Screen:      &screen.Dummy{},
		FakeLED:     &FakeIndicator{},
		SoundPlayer: &sound.Dummy{},
	}
	d.Hardware = Hardware{
		Clock:       clock,
		SensorStart: clock.Now(),
		Gyro:        d.GyroSim,
		Motors:      motors.New(d.LeftOut, d.RightOut),
		ButtonA:     d.FakeA,
		ButtonC:     d.FakeC,
		Display:     d.Screen,
		LED:         d.FakeLED,
		Sound:       d.SoundPlayer,
		Telemetry:   telemetry.Dummy{},
		LogOpener: func() (io.WriteCloser, error) {
			return nopCloser{logTo}, nil
		},
	}
	fmt.Println("DHW: using simulated hardware")
	return d
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
