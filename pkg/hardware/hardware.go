package hardware

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/host"

	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/buttons"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/datalog"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/imu"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/joystick"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/motors"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/screen"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/sound"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/telemetry"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/ticks"
)

type Config struct {
	// GyroBus is "i2c:<device>" or "spi:<port>"; see ParseGyroBus.
	GyroBus string

	LeftPWM, LeftDir   string
	RightPWM, RightDir string
	ButtonA, ButtonC   string
	LED                string

	// JoystickDevice, if set, replaces the push buttons with a gamepad.
	JoystickDevice string
	Screen         string
	MQTTBroker     string
	LogTarget      string
}

func DefaultConfig() Config {
	return Config{
		GyroBus:   "i2c:/dev/i2c-1",
		LeftPWM:   "GPIO12",
		LeftDir:   "GPIO5",
		RightPWM:  "GPIO13",
		RightDir:  "GPIO6",
		ButtonA:   "GPIO16",
		ButtonC:   "GPIO26",
		LED:       "GPIO25",
		Screen:    screen.DefaultDevice,
		LogTarget: datalog.DefaultTarget,
	}
}

// ConfigFromEnv applies GYRO_BUS, JOYSTICK_DEVICE, ROTATION_LOG and
// MQTT_BROKER on top of the defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("GYRO_BUS"); v != "" {
		cfg.GyroBus = v
	}
	if v := os.Getenv("ROTATION_LOG"); v != "" {
		cfg.LogTarget = v
	}
	cfg.JoystickDevice = os.Getenv("JOYSTICK_DEVICE")
	cfg.MQTTBroker = os.Getenv("MQTT_BROKER")
	return cfg
}

// New opens the real devices.  Missing motors, gyro or buttons are fatal;
// a missing screen, speaker or broker degrades to a no-op.  On error,
// everything opened so far is released.
func New(ctx context.Context, cfg Config) (_ *Hardware, err error) {
	logOpener, err := datalog.ParseTarget(cfg.LogTarget)
	if err != nil {
		return nil, err
	}
	gyroKind, gyroDev, err := ParseGyroBus(cfg.GyroBus)
	if err != nil {
		return nil, err
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph init: %w", err)
	}

	h := &Hardware{
		Clock:     ticks.NewSystem(),
		LogOpener: logOpener,
	}
	defer func() {
		if err != nil {
			if closeErr := h.Close(); closeErr != nil {
				fmt.Println("HW: cleanup after failed start:", closeErr)
			}
		}
	}()

	left, err := motors.NewPinOutput(cfg.LeftPWM, cfg.LeftDir)
	if err != nil {
		return nil, fmt.Errorf("left motor: %w", err)
	}
	h.closers = append(h.closers, func() error { return left.SetDuty(0) })
	right, err := motors.NewPinOutput(cfg.RightPWM, cfg.RightDir)
	if err != nil {
		return nil, fmt.Errorf("right motor: %w", err)
	}
	h.closers = append(h.closers, func() error { return right.SetDuty(0) })
	h.Motors = motors.New(left, right)

	gyro, err := openGyro(gyroKind, gyroDev)
	if err != nil {
		return nil, err
	}
	h.closers = append(h.closers, gyro.Close)
	if err := gyro.Configure(); err != nil {
		return nil, fmt.Errorf("gyro configure: %w", err)
	}
	h.Gyro = gyro
	h.SensorStart = h.Clock.Now()

	if cfg.JoystickDevice != "" {
		if err := h.UseJoystick(ctx, cfg.JoystickDevice); err != nil {
			return nil, err
		}
	} else {
		a, err := buttons.NewGPIO(cfg.ButtonA)
		if err != nil {
			return nil, err
		}
		c, err := buttons.NewGPIO(cfg.ButtonC)
		if err != nil {
			return nil, err
		}
		h.ButtonA, h.ButtonC = a, c
	}

	led, err := newPinIndicator(cfg.LED)
	if err != nil {
		return nil, err
	}
	h.LED = led
	h.closers = append(h.closers, func() error { return led.Set(false) })

	if fb, err := screen.Open(cfg.Screen); err != nil {
		fmt.Println("Screen: failed to open screen, ignoring:", err)
		h.Display = screen.Null{}
	} else {
		h.Display = fb
		h.closers = append(h.closers, fb.Close)
	}

	h.Sound = sound.Init()
	h.Telemetry = connectTelemetry(cfg.MQTTBroker)
	return h, nil
}

type GyroBusKind int

const (
	GyroI2C GyroBusKind = iota
	GyroSPI
)

// ParseGyroBus accepts "i2c:<device>" or "spi:<port>".  Without a prefix,
// /dev/i2c-* is I2C and anything else is a periph SPI port name.
func ParseGyroBus(bus string) (GyroBusKind, string, error) {
	if dev, ok := strings.CutPrefix(bus, "i2c:"); ok {
		if dev == "" {
			return 0, "", fmt.Errorf("gyro bus %q has no device", bus)
		}
		return GyroI2C, dev, nil
	}
	if dev, ok := strings.CutPrefix(bus, "spi:"); ok {
		if dev == "" {
			return 0, "", fmt.Errorf("gyro bus %q has no device", bus)
		}
		return GyroSPI, dev, nil
	}
	if bus == "" {
		return 0, "", fmt.Errorf("empty gyro bus")
	}
	if strings.HasPrefix(bus, "/dev/i2c") {
		return GyroI2C, bus, nil
	}
	return GyroSPI, bus, nil
}

func openGyro(kind GyroBusKind, dev string) (*imu.IMU, error) {
	if kind == GyroI2C {
		return imu.NewI2C(dev)
	}
	return imu.NewSPI(dev)
}

func connectTelemetry(broker string) telemetry.Interface {
	if broker == "" {
		return telemetry.Dummy{}
	}
	p, err := telemetry.Connect(broker)
	if err != nil {
		fmt.Println("Telemetry: disabled:", err)
		return telemetry.Dummy{}
	}
	return p
}

// UseJoystick maps gamepad Cross to button A and Circle to button C.
func (h *Hardware) UseJoystick(ctx context.Context, device string) error {
	js, err := joystick.Open(device)
	if err != nil {
		return fmt.Errorf("open joystick: %w", err)
	}
	events := make(chan *joystick.Event)
	jb := buttons.NewJoystick()
	go func() {
		_ = js.Loop(ctx, events)
	}()
	go jb.Loop(ctx, events)
	h.ButtonA = jb.Button(joystick.ButtonCross)
	h.ButtonC = jb.Button(joystick.ButtonCircle)
	h.closers = append(h.closers, js.Close)
	fmt.Println("HW: using joystick", device, "for buttons")
	return nil
}

// Close stops the motors and releases devices, in reverse order of opening.
func (h *Hardware) Close() error {
	var errs []error
	for i := len(h.closers) - 1; i >= 0; i-- {
		errs = append(errs, h.closers[i]())
	}
	h.closers = nil
	if h.Telemetry != nil {
		h.Telemetry.Close()
	}
	return errors.Join(errs...)
}

type pinIndicator struct {
	pin gpio.PinOut
}

func newPinIndicator(name string) (*pinIndicator, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("LED pin %q not found", name)
	}
	if err := pin.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("LED pin %q: %w", name, err)
	}
	return &pinIndicator{pin: pin}, nil
}

func (p *pinIndicator) Set(on bool) error {
	return p.pin.Out(gpio.Level(on))
}
