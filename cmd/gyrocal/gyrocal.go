package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/gyrocal"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/hardware"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/imu"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/ticks"
)

func main() {
	runs := flag.Int("n", 3, "number of calibration runs per axis")
	window := flag.Duration("window", gyrocal.DefaultWindow, "sampling window per run")
	dummy := flag.Bool("dummy", false, "use the simulated gyro")
	flag.Parse()

	fmt.Println("---- Gyro calibration ----")
	fmt.Println("Keep the robot still.")

	if err := run(*runs, *window, *dummy); err != nil {
		fmt.Println("Calibration failed:", err)
		os.Exit(1)
	}
}

func run(runs int, window time.Duration, dummy bool) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var hw *hardware.Hardware
	if dummy {
		hw = &hardware.NewDummy(ticks.NewSystem(), nil).Hardware
	} else {
		var err error
		hw, err = hardware.New(ctx, hardware.ConfigFromEnv())
		if err != nil {
			return err
		}
	}
	defer hw.Close()

	for _, axis := range []imu.Axis{imu.AxisX, imu.AxisY, imu.AxisZ} {
		for i := 0; i < runs; i++ {
			cfg := gyrocal.DefaultConfig(hw.SensorStart)
			cfg.Axis = axis
			cfg.Window = window
			res, err := gyrocal.Calibrate(hw.Gyro, hw.Clock, cfg)
			if err != nil {
				return fmt.Errorf("axis %v: %w", axis, err)
			}
			fmt.Printf("Gyro: axis %v run %d: %v\n", axis, i+1, res)
		}
	}
	return nil
}
