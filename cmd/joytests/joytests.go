package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/buttons"
	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/joystick"
)

// Prints joystick events and the A/C button presses the controller would see.
func main() {
	// Our global context, we cancel it to trigger shutdown.
	ctx, cancel := context.WithCancel(context.Background())

	// Hook Ctrl-C etc.
	registerSignalHandlers(cancel)

	jDev := os.Getenv("JOYSTICK_DEVICE")
	if jDev == "" {
		jDev = joystick.DefaultDevice
	}
	j := waitForJoystick(jDev)
	defer j.Close()

	raw := make(chan *joystick.Event)
	go func() {
		defer cancel()
		err := j.Loop(ctx, raw)
		fmt.Printf("Joystick failed: %v\n", err)
	}()

	jb := buttons.NewJoystick()
	a := jb.Button(joystick.ButtonCross)
	c := jb.Button(joystick.ButtonCircle)
	for je := range raw {
		fmt.Println(je)
		jb.OnJoystickEvent(je)
		if a.Check() {
			fmt.Println("Button A")
		}
		if c.Check() {
			fmt.Println("Button C")
		}
	}
}

func waitForJoystick(dev string) *joystick.Joystick {
	firstLog := true
	for {
		j, err := joystick.Open(dev)
		if err == nil {
			fmt.Printf("Opened joystick\n")
			return j
		}
		if firstLog {
			fmt.Printf("Waiting for joystick: %v.\n", err)
			firstLog = false
		}
		time.Sleep(1 * time.Second)
	}
}

func registerSignalHandlers(cancelFunc context.CancelFunc) {
	// Hook Ctrl-C to cause shut down.
	signals := make(chan os.Signal, 2)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		s := <-signals
		log.Println("Signal: ", s)
		cancelFunc()
	}()
}
