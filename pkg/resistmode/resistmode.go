// Package resistmode is the rotation-resisting control loop.  The robot holds
// its heading against being turned by hand: the gyro rate is integrated into
// an angle and a PD law spins the wheels in opposite directions to undo it.
//
// Everything runs on one goroutine.  Each Step polls the gyro, the two
// buttons and the display, then actuates; only the enable warning blocks.
package resistmode

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/datalog"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/gyrocal"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/hardware"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/headingholder"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/imu"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/orientation"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/profile"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/screen"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/sound"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/telemetry"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/ticks"
)

const (
	DefaultWarningDuration = 500 * time.Millisecond
	DefaultDisplayInterval = 100 * time.Millisecond
	statusInterval         = time.Second
)

type Options struct {
	Profile     profile.Profile
	Calibration gyrocal.Result
	Axis        imu.Axis

	WarningDuration time.Duration
	DisplayInterval time.Duration
	// Wait blocks for the enable warning.  Defaults to time.Sleep.
	Wait func(time.Duration)
}

type Mode struct {
	hw   *hardware.Hardware
	opts Options

	integrator orientation.Integrator
	log        *datalog.Session

	driveEnabled bool
	command      headingholder.MotorCommand
	notice       string

	displayDirty bool
	lastDisplay  ticks.Micros
	lastStatus   ticks.Micros
	samples      int

	gyroFaults    faultCounter
	motorFaults   faultCounter
	ledFaults     faultCounter
	displayFaults faultCounter
}

// faultCounter prints the first failure of each status interval and counts
// the rest.
type faultCounter struct {
	name  string
	count int
	total int
}

func (f *faultCounter) report(err error) {
	f.count++
	f.total++
	if f.count == 1 {
		fmt.Printf("RR: %s failed: %v\n", f.name, err)
	}
}

func (f *faultCounter) String() string {
	return fmt.Sprintf("%s=%d", f.name, f.count)
}

func New(hw *hardware.Hardware, opts Options) *Mode {
	if opts.WarningDuration == 0 {
		opts.WarningDuration = DefaultWarningDuration
	}
	if opts.DisplayInterval == 0 {
		opts.DisplayInterval = DefaultDisplayInterval
	}
	if opts.Wait == nil {
		opts.Wait = time.Sleep
	}
	now := hw.Clock.Now()
	return &Mode{
		hw:           hw,
		opts:         opts,
		log:          datalog.NewSession(hw.LogOpener),
		displayDirty: true,
		lastDisplay:  now,
		lastStatus:   now,

		gyroFaults:    faultCounter{name: "gyro"},
		motorFaults:   faultCounter{name: "motor"},
		ledFaults:     faultCounter{name: "LED"},
		displayFaults: faultCounter{name: "display"},
	}
}

func (m *Mode) Name() string {
	return "Rotation resist (" + m.opts.Profile.Name + ")"
}

func (m *Mode) StartupSound() string {
	return sound.WarningSound
}

func (m *Mode) DriveEnabled() bool {
	return m.driveEnabled
}

func (m *Mode) Logging() bool {
	return m.log.IsOpen()
}

func (m *Mode) Angle() float64 {
	return m.integrator.Angle()
}

func (m *Mode) Command() headingholder.MotorCommand {
	return m.command
}

// Run steps the loop until ctx is done, then stops the motors and closes any
// open log.
func (m *Mode) Run(ctx context.Context) error {
	fmt.Println("RR: running", m.Name(), "with", m.opts.Calibration)
	for ctx.Err() == nil {
		m.Step()
	}
	return m.shutdown()
}

func (m *Mode) shutdown() error {
	fmt.Println("RR: stopping")
	m.driveEnabled = false
	var errs []error
	errs = append(errs, m.hw.Motors.Off(), m.hw.LED.Set(false))
	if m.log.IsOpen() {
		errs = append(errs, m.log.Close())
	}
	return errors.Join(errs...)
}

// Step runs one loop iteration.  Faults are reported and the loop carries on.
func (m *Mode) Step() {
	m.pollGyro()

	if m.hw.ButtonA.Check() {
		m.toggleDrive()
	}
	if m.hw.ButtonC.Check() {
		m.toggleLogging()
	}

	m.refreshDisplay()
	m.actuate()
	m.printStatus()
}

func (m *Mode) pollGyro() {
	ready, err := m.hw.Gyro.DataReady()
	if err != nil {
		m.gyroFaults.report(err)
		return
	}
	if !ready {
		return
	}
	reading, err := m.hw.Gyro.Read()
	if err != nil {
		m.gyroFaults.report(err)
		return
	}
	now := m.hw.Clock.Now()
	angle, rate := m.integrator.Update(reading.Axis(m.opts.Axis), m.opts.Calibration.BiasDPS, now)
	m.samples++

	if m.log.IsOpen() {
		if err := m.log.Record(now, angle); err != nil {
			m.reportLogError(err)
		}
	}
	m.hw.Telemetry.Publish(telemetry.Sample{
		TimeUS:  int64(now),
		Angle:   angle,
		Rate:    rate,
		Left:    m.command.Left,
		Right:   m.command.Right,
		Enabled: m.driveEnabled,
		Logging: m.log.IsOpen(),
	})
}

func (m *Mode) toggleDrive() {
	m.displayDirty = true
	if m.driveEnabled {
		m.driveEnabled = false
		fmt.Println("RR: motors disabled")
		return
	}
	fmt.Println("RR: motors enabled")
	if err := m.hw.Display.ShowWarning(); err != nil {
		m.displayFaults.report(err)
	}
	m.hw.Sound.Play(sound.WarningSound)
	m.opts.Wait(m.opts.WarningDuration)
	m.integrator.ResetTime()
	m.driveEnabled = true
}

func (m *Mode) toggleLogging() {
	m.displayDirty = true
	if err := m.log.Toggle(m.hw.Clock.Now()); err != nil {
		m.reportLogError(err)
		return
	}
	m.notice = ""
}

func (m *Mode) reportLogError(err error) {
	fmt.Println("RR: logging stopped:", err)
	m.notice = "Log failed"
	m.displayDirty = true
}

func (m *Mode) refreshDisplay() {
	now := m.hw.Clock.Now()
	if !m.displayDirty && now.Sub(m.lastDisplay) < ticks.FromDuration(m.opts.DisplayInterval) {
		return
	}
	m.lastDisplay = now
	m.displayDirty = false
	err := m.hw.Display.ShowStatus(screen.Status{
		DriveEnabled: m.driveEnabled,
		Angle:        m.integrator.Angle(),
		Logging:      m.log.IsOpen(),
		Profile:      m.opts.Profile.Name,
		Notice:       m.notice,
	})
	if err != nil {
		m.displayFaults.report(err)
	}
}

func (m *Mode) actuate() {
	if !m.driveEnabled {
		m.command = headingholder.MotorCommand{}
		if err := m.hw.Motors.Off(); err != nil {
			m.motorFaults.report(err)
		}
		if err := m.hw.LED.Set(false); err != nil {
			m.ledFaults.report(err)
		}
		return
	}
	m.command = headingholder.Compute(m.integrator.Angle(), m.integrator.Rate(), m.opts.Profile)
	if err := m.hw.Motors.SetSpeeds(m.command.Left, m.command.Right); err != nil {
		m.motorFaults.report(err)
	}
	if err := m.hw.LED.Set(true); err != nil {
		m.ledFaults.report(err)
	}
}

func (m *Mode) printStatus() {
	now := m.hw.Clock.Now()
	if now.Sub(m.lastStatus) < ticks.FromDuration(statusInterval) {
		return
	}
	m.lastStatus = now
	fmt.Printf("RR: angle=%.3f rate=%.3f cmd=%v enabled=%v logging=%v samples=%d\n",
		m.integrator.Angle(), m.integrator.Rate(), m.command, m.driveEnabled, m.log.IsOpen(), m.samples)
	m.samples = 0
	for _, f := range []*faultCounter{&m.gyroFaults, &m.motorFaults, &m.ledFaults, &m.displayFaults} {
		if f.count > 0 {
			fmt.Println("RR: faults:", f)
			f.count = 0
		}
	}
}
