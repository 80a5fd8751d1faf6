package headingholder

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/profile"
)

var standard = profile.Profile{Name: "Standard", MaxSpeed: 3000, Kp: 160, Kd: 4}

func TestSaturatedCommand(t *testing.T) {
	// 20 * 160 = 3200, clamped to 3000.
	assert.Equal(t, MotorCommand{Left: 3000, Right: -3000}, Compute(20, 0, standard))
}

func TestProportionalAndDerivativeTerms(t *testing.T) {
	assert.Equal(t, MotorCommand{Left: 160, Right: -160}, Compute(1, 0, standard))
	assert.Equal(t, MotorCommand{Left: -40, Right: 40}, Compute(0, -10, standard))
	// The rate term damps the return towards zero.
	assert.Equal(t, MotorCommand{Left: 400, Right: -400}, Compute(5, -100, standard))
	assert.Equal(t, MotorCommand{Left: 0, Right: 0}, Compute(0, 0, standard))
	assert.Equal(t, MotorCommand{Left: 81, Right: -81}, Compute(0.5, 0.2, standard))
}

func TestNeverExceedsMaxSpeed(t *testing.T) {
	for _, p := range []profile.Profile{
		standard,
		{MaxSpeed: 6000, Kp: 200},
		{MaxSpeed: 1500, Kp: 200, Kd: 0},
	} {
		for _, angle := range []float64{-1e12, -720, -3, 0, 2.5, 900, 1e12, math.Inf(1), math.Inf(-1)} {
			for _, rate := range []float64{-1e9, -50, 0, 50, 1e9} {
				cmd := Compute(angle, rate, p)
				assert.LessOrEqual(t, abs(cmd.Left), p.MaxSpeed)
				assert.Equal(t, -cmd.Left, cmd.Right)
			}
		}
	}
}

func TestClampIsSymmetric(t *testing.T) {
	assert.Equal(t, MotorCommand{Left: -3000, Right: 3000}, Compute(-20, 0, standard))
	assert.Equal(t, MotorCommand{Left: -3000, Right: 3000}, Compute(0, -5000, standard))
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
