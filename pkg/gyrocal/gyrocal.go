// Package gyrocal measures the stationary bias of one gyro axis.
//
// Calibration blocks the caller for the warm-up and sampling windows.  The
// robot must not move while it runs.  The bias is a best-effort estimate: it
// is never refreshed, so long runs will drift.
package gyrocal

import (
	"errors"
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/imu"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/ticks"
)

const (
	DefaultWarmup = 500 * time.Millisecond
	DefaultWindow = 3000 * time.Millisecond

	// Above this the robot was probably moved during calibration.
	stillStdDevWarnDPS = 1.0
)

var ErrNoSamples = errors.New("gyro produced no samples during calibration")

type Config struct {
	Axis imu.Axis
	// Warmup is measured from SensorStart; samples before it are discarded.
	Warmup      time.Duration
	Window      time.Duration
	SensorStart ticks.Micros
}

func DefaultConfig(sensorStart ticks.Micros) Config {
	return Config{
		Axis:        imu.AxisZ,
		Warmup:      DefaultWarmup,
		Window:      DefaultWindow,
		SensorStart: sensorStart,
	}
}

type Result struct {
	BiasDPS     float64
	SampleCount int
	// StdDevDPS is the spread of the stationary samples.
	StdDevDPS float64
}

func (r Result) String() string {
	return fmt.Sprintf("bias=%.4f dps samples=%d stddev=%.4f dps", r.BiasDPS, r.SampleCount, r.StdDevDPS)
}

// Calibrate busy-polls the sensor until the warm-up has elapsed, then
// averages every sample that arrives during the window.
func Calibrate(sensor imu.Interface, clock ticks.Clock, cfg Config) (Result, error) {
	warmupEnd := cfg.SensorStart + ticks.FromDuration(cfg.Warmup)
	for clock.Now() < warmupEnd {
		ready, err := sensor.DataReady()
		if err != nil {
			return Result{}, fmt.Errorf("gyro calibration warm-up: %w", err)
		}
		if ready {
			if _, err := sensor.Read(); err != nil {
				return Result{}, fmt.Errorf("gyro calibration warm-up: %w", err)
			}
		}
	}

	start := clock.Now()
	window := ticks.FromDuration(cfg.Window)
	var (
		sum     float64
		samples []float64
	)
	for clock.Now().Sub(start) < window {
		ready, err := sensor.DataReady()
		if err != nil {
			return Result{}, fmt.Errorf("gyro calibration: %w", err)
		}
		if !ready {
			continue
		}
		r, err := sensor.Read()
		if err != nil {
			return Result{}, fmt.Errorf("gyro calibration: %w", err)
		}
		rate := r.Axis(cfg.Axis)
		sum += rate
		samples = append(samples, rate)
	}

	if len(samples) == 0 {
		return Result{}, ErrNoSamples
	}

	res := Result{
		BiasDPS:     sum / float64(len(samples)),
		SampleCount: len(samples),
	}
	if len(samples) > 1 {
		res.StdDevDPS = stat.StdDev(samples, nil)
	}
	fmt.Println("Gyro: calibrated", res)
	if res.StdDevDPS > stillStdDevWarnDPS {
		fmt.Printf("Gyro: WARNING: noisy calibration (stddev %.2f dps); was the robot moved?\n", res.StdDevDPS)
	}
	return res, nil
}
