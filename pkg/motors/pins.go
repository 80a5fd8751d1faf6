package motors

import (
	"fmt"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/host"
)

// PWMFrequency is the motor PWM carrier frequency.
const PWMFrequency = 20833 * physic.Hertz

// PinOutput drives a motor channel from a hardware PWM pin and a direction
// GPIO.
type PinOutput struct {
	pwm gpio.PinOut
	dir gpio.PinOut
}

var _ Output = (*PinOutput)(nil)

func NewPinOutput(pwmPin, dirPin string) (*PinOutput, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	pwm := gpioreg.ByName(pwmPin)
	if pwm == nil {
		return nil, fmt.Errorf("motor PWM pin %q not found", pwmPin)
	}
	dir := gpioreg.ByName(dirPin)
	if dir == nil {
		return nil, fmt.Errorf("motor direction pin %q not found", dirPin)
	}
	p := &PinOutput{pwm: pwm, dir: dir}
	if err := p.SetDirection(Forward); err != nil {
		return nil, err
	}
	if err := p.SetDuty(0); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *PinOutput) SetDuty(duty uint16) error {
	return p.pwm.PWM(gpio.Duty(int64(duty)*int64(gpio.DutyMax)/DutyMax), PWMFrequency)
}

func (p *PinOutput) SetDirection(d Direction) error {
	return p.dir.Out(gpio.Level(d == Reverse))
}
