package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/datalog"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/gyrocal"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/hardware"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/profile"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/resistmode"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/screen"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/ticks"
)

func main() {
	edition := flag.String("edition", envOr("EDITION", "Standard"), "profile: Standard, Turtle or Hyper")
	overrides := flag.String("config", profile.DefaultOverridePath, "profile override file")
	dummy := flag.Bool("dummy", false, "use simulated hardware")
	flag.Parse()

	fmt.Println("---- Rotation resist ----")
	fmt.Println("GOMAXPROCS", runtime.GOMAXPROCS(0))

	// Our global context, we cancel it to trigger shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Hook Ctrl-C etc.
	registerSignalHandlers(cancel)

	if err := run(ctx, *edition, *overrides, *dummy); err != nil {
		fmt.Println("Controller failed:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, edition, overrides string, dummy bool) error {
	p, err := profile.Load(edition, overrides)
	if err != nil {
		return err
	}
	fmt.Println("Profile:", p)
	if err := profile.WriteInUse(p, profile.DefaultInUsePath); err != nil {
		fmt.Println("Failed to record profile in use, ignoring:", err)
	}

	hw, err := openHardware(ctx, dummy)
	if err != nil {
		return err
	}
	defer func() {
		fmt.Println("Zeroing motors for shut down")
		if err := hw.Close(); err != nil {
			fmt.Println("Shutdown error:", err)
		}
	}()

	hw.Motors.FlipLeft(p.FlipLeft)
	hw.Motors.FlipRight(p.FlipRight)

	_ = showMessage(hw.Display, "Calibrating", "Keep still", p.Name)
	cfg := gyrocal.DefaultConfig(hw.SensorStart)
	cal, err := gyrocal.Calibrate(hw.Gyro, hw.Clock, cfg)
	if err != nil {
		_ = showMessage(hw.Display, "Gyro fault")
		return fmt.Errorf("calibration: %w", err)
	}
	fmt.Println("Gyro:", cal)

	mode := resistmode.New(hw, resistmode.Options{
		Profile:     p,
		Calibration: cal,
		Axis:        cfg.Axis,
	})
	fmt.Printf("----- %s -----\n", mode.Name())
	return mode.Run(ctx)
}

func openHardware(ctx context.Context, dummy bool) (*hardware.Hardware, error) {
	cfg := hardware.ConfigFromEnv()
	if !dummy {
		return hardware.New(ctx, cfg)
	}
	d := hardware.NewDummy(ticks.NewSystem(), nil)
	d.Display = screen.Null{}
	opener, err := datalog.ParseTarget(cfg.LogTarget)
	if err != nil {
		return nil, err
	}
	d.LogOpener = opener
	if cfg.JoystickDevice != "" {
		if err := d.UseJoystick(ctx, cfg.JoystickDevice); err != nil {
			return nil, err
		}
	}
	return &d.Hardware, nil
}

// showMessage prints display failures; a dead screen never stops start up.
func showMessage(d screen.Interface, lines ...string) error {
	err := d.ShowMessage(lines...)
	if err != nil {
		fmt.Printf("Screen: failed to show %q: %v\n", lines, err)
	}
	return err
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func registerSignalHandlers(cancelFunc context.CancelFunc) {
	// Hook Ctrl-C to cause shut down.
	signals := make(chan os.Signal, 2)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		s := <-signals
		log.Println("Signal: ", s)
		cancelFunc()
		time.Sleep(2 * time.Second)
		os.Exit(0)
	}()
}
