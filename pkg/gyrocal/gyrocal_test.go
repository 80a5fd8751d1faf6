package gyrocal

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/imu"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/ticks"
)

func simGyro(clock *ticks.Fake, bias float64) *imu.Sim {
	return &imu.Sim{
		Clock:    clock,
		Interval: time.Millisecond,
		Bias:     imu.Reading{X: 7, Z: bias},
		OnPoll:   func() { clock.Advance(50 * time.Microsecond) },
	}
}

func TestCalibrateAveragesStationaryRate(t *testing.T) {
	clock := &ticks.Fake{}
	gyro := simGyro(clock, -0.42)

	res, err := Calibrate(gyro, clock, DefaultConfig(0))
	require.NoError(t, err)

	assert.InDelta(t, -0.42, res.BiasDPS, 1e-9)
	assert.InDelta(t, 3000, res.SampleCount, 5)
	assert.InDelta(t, 0, res.StdDevDPS, 1e-9)
	// The window starts after the warm-up and lasts the configured time.
	assert.InDelta(t, int64(3500*time.Millisecond/time.Microsecond), int64(clock.Now()), 100)
}

func TestCalibrateDiscardsWarmupSamples(t *testing.T) {
	clock := &ticks.Fake{}
	gyro := simGyro(clock, 0)
	// A large spurious rate while the sensor settles.
	gyro.Rate = func(t ticks.Micros) imu.Reading {
		if t < ticks.FromDuration(400*time.Millisecond) {
			return imu.Reading{Z: 1000}
		}
		return imu.Reading{Z: 2}
	}

	res, err := Calibrate(gyro, clock, DefaultConfig(0))
	require.NoError(t, err)
	assert.InDelta(t, 2, res.BiasDPS, 1e-9)
	assert.Greater(t, gyro.Reads(), res.SampleCount)
}

func TestCalibrateWarmupIsRelativeToSensorStart(t *testing.T) {
	clock := &ticks.Fake{}
	clock.Set(ticks.FromDuration(2 * time.Second))
	gyro := simGyro(clock, 1)

	cfg := DefaultConfig(ticks.FromDuration(1900 * time.Millisecond))
	cfg.Window = 100 * time.Millisecond
	_, err := Calibrate(gyro, clock, cfg)
	require.NoError(t, err)
	// 400ms of warm-up remained, then a 100ms window.
	assert.InDelta(t, int64(2500*time.Millisecond/time.Microsecond), int64(clock.Now()), 100)
}

func TestCalibrateAxis(t *testing.T) {
	clock := &ticks.Fake{}
	gyro := simGyro(clock, 0)

	cfg := DefaultConfig(0)
	cfg.Axis = imu.AxisX
	cfg.Window = 100 * time.Millisecond
	res, err := Calibrate(gyro, clock, cfg)
	require.NoError(t, err)
	assert.InDelta(t, 7, res.BiasDPS, 1e-9)
}

func TestCalibrateNoSamplesIsFatal(t *testing.T) {
	clock := &ticks.Fake{}
	gyro := simGyro(clock, 0)
	gyro.Dead = true

	res, err := Calibrate(gyro, clock, DefaultConfig(0))
	assert.ErrorIs(t, err, ErrNoSamples)
	assert.Zero(t, res)
}

type failingGyro struct {
	clock *ticks.Fake
}

func (f failingGyro) DataReady() (bool, error) {
	f.clock.Advance(time.Millisecond)
	return true, nil
}

func (f failingGyro) Read() (imu.Reading, error) {
	return imu.Reading{}, errors.New("i2c nack")
}

func TestCalibrateReadErrorPropagates(t *testing.T) {
	clock := &ticks.Fake{}
	_, err := Calibrate(failingGyro{clock: clock}, clock, DefaultConfig(0))
	assert.ErrorContains(t, err, "i2c nack")
}
