// motortests replays the motor register check against the real PWM and
// direction pins.  Run it with the motor power off.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/hardware"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/motors"
)

func main() {
	dummy := flag.Bool("dummy", false, "check against recording outputs only")
	flag.Parse()

	left, right, err := outputs(*dummy)
	if err != nil {
		fmt.Println("Motors:", err)
		os.Exit(1)
	}
	fmt.Println("Motors: PWM carrier", motors.PWMFrequency)
	failed := runChecks(motors.BenchSequence(), left, right)
	if failed > 0 {
		fmt.Printf("Motors: %d checks failed\n", failed)
		os.Exit(1)
	}
	fmt.Println("Motors: all checks passed")
}

// runChecks applies each step and verifies the registers.  The motors are
// always switched off afterwards; a failure to do so counts as a failed check.
func runChecks(steps []motors.BenchStep, left, right *motors.Recorder) int {
	m := motors.New(left, right)
	failed := 0
	for _, step := range steps {
		if err := step.Apply(m); err != nil {
			fmt.Printf("Motors: %s: write failed: %v\n", step.Name, err)
			failed++
			continue
		}
		if err := step.Verify(&left.Dummy, &right.Dummy); err != nil {
			fmt.Println("Motors: FAIL", err)
			failed++
			continue
		}
		fmt.Printf("Motors: ok   %-22s left %v, right %v\n", step.Name, &left.Dummy, &right.Dummy)
	}
	if err := m.Off(); err != nil {
		fmt.Println("Motors: failed to stop motors:", err)
		failed++
	}
	return failed
}

func outputs(dummy bool) (*motors.Recorder, *motors.Recorder, error) {
	if dummy {
		return motors.NewRecorder(&motors.Dummy{}), motors.NewRecorder(&motors.Dummy{}), nil
	}
	cfg := hardware.ConfigFromEnv()
	l, err := motors.NewPinOutput(cfg.LeftPWM, cfg.LeftDir)
	if err != nil {
		return nil, nil, err
	}
	r, err := motors.NewPinOutput(cfg.RightPWM, cfg.RightDir)
	if err != nil {
		return nil, nil, err
	}
	return motors.NewRecorder(l), motors.NewRecorder(r), nil
}
