package motors

import "fmt"

// Recorder forwards writes to an Output and remembers the register values,
// so a sequence can be verified against real hardware.
type Recorder struct {
	Dummy
	out Output
}

var _ Output = (*Recorder)(nil)

func NewRecorder(out Output) *Recorder {
	return &Recorder{out: out}
}

func (r *Recorder) SetDuty(duty uint16) error {
	if err := r.out.SetDuty(duty); err != nil {
		return err
	}
	return r.Dummy.SetDuty(duty)
}

func (r *Recorder) SetDirection(d Direction) error {
	if err := r.out.SetDirection(d); err != nil {
		return err
	}
	return r.Dummy.SetDirection(d)
}

// BenchStep is one command of the register check and the expected registers
// afterwards.  A nil expectation is not checked.
type BenchStep struct {
	Name                string
	Apply               func(m *Motors) error
	LeftDuty, RightDuty *uint16
	LeftDir, RightDir   *Direction
}

func duty(d uint16) *uint16      { return &d }
func dir(d Direction) *Direction { return &d }

// BenchSequence checks duty scaling, direction handling, flips and zero
// speed.  Run it with the motor power off.
func BenchSequence() []BenchStep {
	return []BenchStep{
		{
			Name:      "left 50%",
			Apply:     func(m *Motors) error { return m.SetSpeeds(3000, 0) },
			LeftDuty:  duty(32768),
			LeftDir:   dir(Forward),
			RightDuty: duty(0),
			RightDir:  dir(Forward),
		},
		{
			Name:      "left 100%, right 50%",
			Apply:     func(m *Motors) error { return m.SetSpeeds(6000, 3000) },
			LeftDuty:  duty(65535),
			RightDuty: duty(32768),
		},
		{
			Name:      "reverse",
			Apply:     func(m *Motors) error { return m.SetSpeeds(-6000, -3000) },
			LeftDuty:  duty(65535),
			LeftDir:   dir(Reverse),
			RightDuty: duty(32768),
			RightDir:  dir(Reverse),
		},
		{
			Name:  "flip left",
			Apply: func(m *Motors) error {
				m.FlipLeft(true)
				return m.SetSpeeds(-1, -1)
			},
			LeftDir:  dir(Forward),
			RightDir: dir(Reverse),
		},
		{
			Name:  "flip right",
			Apply: func(m *Motors) error {
				m.FlipLeft(false)
				m.FlipRight(true)
				return m.SetSpeeds(1, 1)
			},
			LeftDuty:  duty(11),
			LeftDir:   dir(Forward),
			RightDuty: duty(11),
			RightDir:  dir(Reverse),
		},
		{
			Name:      "zero keeps direction",
			Apply:     func(m *Motors) error { return m.SetSpeeds(0, 0) },
			LeftDuty:  duty(0),
			LeftDir:   dir(Forward),
			RightDuty: duty(0),
			RightDir:  dir(Reverse),
		},
		{
			Name:      "left only",
			Apply:     func(m *Motors) error { return m.SetLeftSpeed(600) },
			LeftDuty:  duty(6554),
			RightDuty: duty(0),
		},
		{
			Name:      "right only",
			Apply:     func(m *Motors) error { return m.SetRightSpeed(300) },
			LeftDuty:  duty(6554),
			RightDuty: duty(3277),
		},
		{
			Name:      "right minimum",
			Apply:     func(m *Motors) error { return m.SetRightSpeed(1) },
			LeftDuty:  duty(6554),
			RightDuty: duty(11),
		},
		{
			Name:      "off",
			Apply:     func(m *Motors) error { return m.Off() },
			LeftDuty:  duty(0),
			RightDuty: duty(0),
		},
	}
}

// Verify compares the recorded registers with the step's expectations.
func (s BenchStep) Verify(left, right *Dummy) error {
	var problems []string
	check := func(what string, want *uint16, got uint16) {
		if want != nil && *want != got {
			problems = append(problems, fmt.Sprintf("%s duty %d, want %d", what, got, *want))
		}
	}
	checkDir := func(what string, want *Direction, got Direction) {
		if want != nil && *want != got {
			problems = append(problems, fmt.Sprintf("%s direction %v, want %v", what, got, *want))
		}
	}
	check("left", s.LeftDuty, left.DutyReg)
	check("right", s.RightDuty, right.DutyReg)
	checkDir("left", s.LeftDir, left.DirectionReg)
	checkDir("right", s.RightDir, right.DirectionReg)
	if len(problems) > 0 {
		return fmt.Errorf("%s: %v", s.Name, problems)
	}
	return nil
}
