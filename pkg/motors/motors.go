package motors

import (
	"fmt"
	"math"
)

const (
	// MaxSpeed is the speed that maps to full duty.
	MaxSpeed = 6000

	DutyMax = math.MaxUint16
)

type Direction uint8

const (
	Forward Direction = iota
	Reverse
)

func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}
	return "forward"
}

// Output is the hardware side of one motor channel: a 16-bit PWM duty
// register and a direction bit.  Writes are idempotent.
type Output interface {
	SetDuty(duty uint16) error
	SetDirection(d Direction) error
}

// Channel maps signed speeds onto one Output.
type Channel struct {
	name string
	out  Output

	duty      uint16
	direction Direction
	flip      bool
}

func NewChannel(name string, out Output) *Channel {
	return &Channel{name: name, out: out}
}

// SetSpeed drives the channel at speed/maxMagnitude of full duty.  A zero
// speed stops the motor but leaves the direction register alone.
func (c *Channel) SetSpeed(speed, maxMagnitude int) error {
	if speed != 0 {
		dir := Forward
		if (speed < 0) != c.flip {
			dir = Reverse
		}
		if err := c.out.SetDirection(dir); err != nil {
			return fmt.Errorf("%s motor direction: %w", c.name, err)
		}
		c.direction = dir
	}

	duty := DutyFor(speed, maxMagnitude)
	if err := c.out.SetDuty(duty); err != nil {
		return fmt.Errorf("%s motor duty: %w", c.name, err)
	}
	c.duty = duty
	return nil
}

// SetFlip inverts the direction used by later SetSpeed calls.  It does not
// rewrite the current direction register.
func (c *Channel) SetFlip(flip bool) {
	c.flip = flip
}

func (c *Channel) Off() error {
	return c.SetSpeed(0, MaxSpeed)
}

func (c *Channel) Duty() uint16 {
	return c.duty
}

func (c *Channel) Direction() Direction {
	return c.direction
}

func (c *Channel) Flipped() bool {
	return c.flip
}

// DutyFor returns round(|speed| / maxMagnitude * 65535), with |speed| capped
// at maxMagnitude.
func DutyFor(speed, maxMagnitude int) uint16 {
	if speed == 0 || maxMagnitude <= 0 {
		return 0
	}
	magnitude := speed
	if magnitude < 0 {
		magnitude = -magnitude
	}
	if magnitude > maxMagnitude {
		magnitude = maxMagnitude
	}
	duty := math.Round(float64(magnitude) * DutyMax / float64(maxMagnitude))
	if duty >= DutyMax {
		return DutyMax
	}
	return uint16(duty)
}

// Motors is the pair of drive channels.
type Motors struct {
	Left, Right *Channel
}

func New(left, right Output) *Motors {
	return &Motors{
		Left:  NewChannel("left", left),
		Right: NewChannel("right", right),
	}
}

func (m *Motors) SetSpeeds(left, right int) error {
	if err := m.SetLeftSpeed(left); err != nil {
		return err
	}
	return m.SetRightSpeed(right)
}

func (m *Motors) SetLeftSpeed(speed int) error {
	return m.Left.SetSpeed(speed, MaxSpeed)
}

func (m *Motors) SetRightSpeed(speed int) error {
	return m.Right.SetSpeed(speed, MaxSpeed)
}

func (m *Motors) FlipLeft(flip bool) {
	m.Left.SetFlip(flip)
}

func (m *Motors) FlipRight(flip bool) {
	m.Right.SetFlip(flip)
}

// Off zeroes both duty registers; the direction registers are left as they
// are, the same as a zero speed.
func (m *Motors) Off() error {
	errL := m.Left.Off()
	errR := m.Right.Off()
	if errL != nil {
		return errL
	}
	return errR
}
