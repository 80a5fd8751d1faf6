// Package joystick reads the Linux joystick API (/dev/input/js*).  A gamepad
// stands in for the robot's push buttons when running on the bench.
package joystick

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"time"
)

const DefaultDevice = "/dev/input/js0"

type EventType uint8

const (
	EventTypeButton = 1
	EventTypeAxis   = 2

	// Set on the synthetic events sent when the device is opened.
	eventTypeInit = 0x80
)

// Button numbers on a DualShock-style pad.
const (
	ButtonCross    = 0
	ButtonCircle   = 1
	ButtonTriangle = 2
	ButtonSquare   = 3
)

func (e EventType) String() string {
	switch e {
	case EventTypeAxis:
		return "axis"
	case EventTypeButton:
		return "button"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(e))
	}
}

type Joystick struct {
	device *os.File

	deviceEpoch    uint32
	wallclockEpoch time.Time
}

type rawEvent struct {
	Time   uint32
	Value  int16
	Type   uint8
	Number uint8
}

type Event struct {
	Time   time.Time
	Value  int16
	Type   EventType
	Number uint8
	// Initial is true for the state snapshot sent on open.
	Initial bool
}

func (e *Event) String() string {
	return fmt.Sprintf("%v(%v)=%v", e.Type, e.Number, e.Value)
}

func Open(device string) (*Joystick, error) {
	f, err := os.Open(device)
	if err != nil {
		return nil, err
	}
	return &Joystick{
		device: f,
	}, nil
}

func (j *Joystick) ReadEvent() (*Event, error) {
	var raw rawEvent
	if err := binary.Read(j.device, binary.LittleEndian, &raw); err != nil {
		return nil, err
	}
	return j.decode(raw), nil
}

func (j *Joystick) decode(raw rawEvent) *Event {
	if j.deviceEpoch == 0 {
		j.deviceEpoch = raw.Time
		j.wallclockEpoch = time.Now()
	}
	return &Event{
		Time:    j.wallclockEpoch.Add(time.Duration(raw.Time-j.deviceEpoch) * time.Millisecond),
		Value:   raw.Value,
		Type:    EventType(raw.Type &^ eventTypeInit),
		Number:  raw.Number,
		Initial: raw.Type&eventTypeInit != 0,
	}
}

// Loop forwards live events until a read fails or ctx is done, then closes
// events.  Initial state events are dropped so a held button is not seen as
// a press.
func (j *Joystick) Loop(ctx context.Context, events chan<- *Event) error {
	defer close(events)
	for ctx.Err() == nil {
		event, err := j.ReadEvent()
		if err != nil {
			fmt.Printf("Joy: failed to read from joystick: %v.\n", err)
			return err
		}
		if event.Initial {
			continue
		}
		select {
		case events <- event:
		case <-ctx.Done():
		}
	}
	return ctx.Err()
}

func (j *Joystick) Close() error {
	return j.device.Close()
}
