// imutests prints live gyro rates and the integrated angle about each axis.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/hardware"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/imu"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/orientation"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/ticks"
)

func main() {
	bus := flag.String("bus", hardware.DefaultConfig().GyroBus, "i2c:<device> or spi:<port>")
	flag.Parse()

	kind, dev, err := hardware.ParseGyroBus(*bus)
	if err != nil {
		fmt.Println("Gyro:", err)
		os.Exit(1)
	}
	var gyro *imu.IMU
	if kind == hardware.GyroI2C {
		gyro, err = imu.NewI2C(dev)
	} else {
		gyro, err = imu.NewSPI(dev)
	}
	if err != nil {
		fmt.Println("Gyro:", err)
		os.Exit(1)
	}
	if err := gyro.Configure(); err != nil {
		fmt.Println("Gyro:", err)
		os.Exit(1)
	}

	clock := ticks.NewSystem()
	var integrators [3]orientation.Integrator
	var last imu.Reading
	samples := 0
	report := time.NewTicker(200 * time.Millisecond)
	for {
		select {
		case <-report.C:
			fmt.Printf("rate x %8.3f y %8.3f z %8.3f | angle x %9.3f y %9.3f z %9.3f | %d samples\n",
				last.X, last.Y, last.Z,
				integrators[imu.AxisX].Angle(), integrators[imu.AxisY].Angle(), integrators[imu.AxisZ].Angle(),
				samples)
			samples = 0
		default:
		}
		ready, err := gyro.DataReady()
		if err != nil {
			fmt.Println("Gyro:", err)
			continue
		}
		if !ready {
			continue
		}
		last, err = gyro.Read()
		if err != nil {
			fmt.Println("Gyro:", err)
			continue
		}
		now := clock.Now()
		for a := range integrators {
			integrators[a].Update(last.Axis(imu.Axis(a)), 0, now)
		}
		samples++
	}
}
