package motors

import "fmt"

// Dummy is an Output that only records what was written to it.
type Dummy struct {
	DutyReg      uint16
	DirectionReg Direction
	Writes       int
	Err          error
}

var _ Output = (*Dummy)(nil)

func (d *Dummy) SetDuty(duty uint16) error {
	if d.Err != nil {
		return d.Err
	}
	d.DutyReg = duty
	d.Writes++
	return nil
}

func (d *Dummy) SetDirection(dir Direction) error {
	if d.Err != nil {
		return d.Err
	}
	d.DirectionReg = dir
	d.Writes++
	return nil
}

func (d *Dummy) String() string {
	return fmt.Sprintf("duty=%d dir=%v", d.DutyReg, d.DirectionReg)
}
