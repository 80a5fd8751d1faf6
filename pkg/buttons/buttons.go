// Package buttons provides one-shot press detection for the robot's push
// buttons.
package buttons

import (
	"context"
	"fmt"
	"sync"
	"time"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/host"

	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/joystick"
)

// Button reports each physical press exactly once.
type Button interface {
	// Check returns true if the button was pressed since the last call.  It
	// never blocks.
	Check() bool
}

// holdoff ignores contact bounce after a press.
const holdoff = 50 * time.Millisecond

// GPIO is an active-low push button on a GPIO pin.
type GPIO struct {
	pin       gpio.PinIn
	lastPress time.Time
}

func NewGPIO(name string) (*GPIO, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("button pin %q not found", name)
	}
	if err := pin.In(gpio.PullUp, gpio.FallingEdge); err != nil {
		return nil, fmt.Errorf("button pin %q: %w", name, err)
	}
	return &GPIO{pin: pin}, nil
}

func (b *GPIO) Check() bool {
	pressed := false
	for b.pin.WaitForEdge(0) {
		if time.Since(b.lastPress) > holdoff {
			pressed = true
			b.lastPress = time.Now()
		}
	}
	return pressed
}

// Joystick maps gamepad buttons onto Buttons, for driving the robot from a
// bench controller.
type Joystick struct {
	lock    sync.Mutex
	pending map[uint8]bool
}

func NewJoystick() *Joystick {
	return &Joystick{pending: map[uint8]bool{}}
}

// Button returns the Button for a joystick button number.
func (j *Joystick) Button(number uint8) Button {
	return joystickButton{j: j, number: number}
}

// Loop records presses from the event stream until it closes or ctx is done.
func (j *Joystick) Loop(ctx context.Context, events <-chan *joystick.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			j.OnJoystickEvent(e)
		}
	}
}

func (j *Joystick) OnJoystickEvent(e *joystick.Event) {
	if e.Type != joystick.EventTypeButton || e.Value != 1 {
		return
	}
	j.lock.Lock()
	j.pending[e.Number] = true
	j.lock.Unlock()
}

type joystickButton struct {
	j      *Joystick
	number uint8
}

func (b joystickButton) Check() bool {
	b.j.lock.Lock()
	defer b.j.lock.Unlock()
	pressed := b.j.pending[b.number]
	b.j.pending[b.number] = false
	return pressed
}

// Fake is a Button pressed from code.
type Fake struct {
	lock    sync.Mutex
	presses int
}

func (f *Fake) Press() {
	f.lock.Lock()
	f.presses++
	f.lock.Unlock()
}

func (f *Fake) Check() bool {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.presses == 0 {
		return false
	}
	f.presses--
	return true
}
