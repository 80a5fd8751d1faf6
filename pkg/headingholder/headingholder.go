// Package headingholder turns the accumulated rotation and the current turn
// rate into a spin-in-place motor command that opposes the rotation.
package headingholder

import (
	"fmt"
	"math"

	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/profile"
)

// MotorCommand is a pair of signed wheel speeds.
type MotorCommand struct {
	Left, Right int
}

func (c MotorCommand) String() string {
	return fmt.Sprintf("L=%d R=%d", c.Left, c.Right)
}

// Compute applies the PD law speed = angle*kp + rate*kd, clamps it to the
// profile's max speed and returns it as an anti-symmetric command.
func Compute(angleDegrees, rateDPS float64, p profile.Profile) MotorCommand {
	speed := clampSpeed(angleDegrees*p.Kp+rateDPS*p.Kd, p.MaxSpeed)
	return MotorCommand{Left: speed, Right: -speed}
}

func clampSpeed(speed float64, maxSpeed int) int {
	limit := float64(maxSpeed)
	if math.IsNaN(speed) {
		return 0
	}
	if speed >= limit {
		return maxSpeed
	}
	if speed <= -limit {
		return -maxSpeed
	}
	return int(math.Round(speed))
}
