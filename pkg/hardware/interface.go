package hardware

import (
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/buttons"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/datalog"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/imu"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/motors"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/screen"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/sound"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/telemetry"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/ticks"
)

// Indicator is the "motors active" LED.
type Indicator interface {
	Set(on bool) error
}

// Hardware owns every device handle.  It is created once by the controller
// and handed to the control loop; nothing else holds on to the devices.
type Hardware struct {
	Clock ticks.Clock
	// SensorStart is when the gyro finished initialising.
	SensorStart ticks.Micros

	Gyro      imu.Interface
	Motors    *motors.Motors
	ButtonA   buttons.Button
	ButtonC   buttons.Button
	Display   screen.Interface
	LED       Indicator
	Sound     sound.Interface
	Telemetry telemetry.Interface
	LogOpener datalog.Opener

	closers []func() error
}

type FakeIndicator struct {
	On      bool
	Changes int
}

func (f *FakeIndicator) Set(on bool) error {
	if on != f.On {
		f.Changes++
	}
	f.On = on
	return nil
}
