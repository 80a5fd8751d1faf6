package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltins(t *testing.T) {
	assert.Equal(t, []string{"Standard", "Turtle", "Hyper"}, Names())

	p, err := ByName("standard")
	require.NoError(t, err)
	assert.Equal(t, Profile{Edition: Standard, Name: "Standard", MaxSpeed: 3000, Kp: 160, Kd: 4}, p)

	p, err = Get(Hyper)
	require.NoError(t, err)
	assert.True(t, p.FlipLeft)
	assert.True(t, p.FlipRight)
	assert.Equal(t, 1500, p.MaxSpeed)

	_, err = ByName("Rocket")
	assert.ErrorIs(t, err, ErrUnknown)
	_, err = Get(Edition(7))
	assert.ErrorIs(t, err, ErrUnknown)
}

func TestApplyOverrides(t *testing.T) {
	doc := []byte(`
profiles:
  - name: Turtle
    kp: 180
    kd: 2.5
    flip_left: true
  - name: Standard
    max_speed: 2500
`)
	turtle, _ := Get(Turtle)
	p, err := ApplyOverrides(turtle, doc)
	require.NoError(t, err)
	assert.Equal(t, 6000, p.MaxSpeed)
	assert.Equal(t, 180.0, p.Kp)
	assert.Equal(t, 2.5, p.Kd)
	assert.True(t, p.FlipLeft)
	assert.False(t, p.FlipRight)

	std, _ := Get(Standard)
	p, err = ApplyOverrides(std, doc)
	require.NoError(t, err)
	assert.Equal(t, 2500, p.MaxSpeed)
	assert.Equal(t, 160.0, p.Kp)
}

func TestApplyOverridesRejectsBadInput(t *testing.T) {
	std, _ := Get(Standard)

	_, err := ApplyOverrides(std, []byte("profiles:\n  - name: Rocket\n"))
	assert.ErrorIs(t, err, ErrUnknown)

	_, err = ApplyOverrides(std, []byte("profiles:\n  - name: Standard\n    max_speed: -1\n"))
	assert.Error(t, err)

	_, err = ApplyOverrides(std, []byte("profiles:\n  - name: Standard\n    ki: 3\n"))
	assert.Error(t, err)

	_, err = ApplyOverrides(std, []byte("profiles:\n  - name: Standard\n    max_speed: 0\n"))
	assert.Error(t, err)

	p, err := ApplyOverrides(std, []byte("profiles:\n  - name: Standard\n    max_speed: 9000\n"))
	assert.ErrorContains(t, err, "1..6000")
	assert.Equal(t, 3000, p.MaxSpeed)
}

func TestApplyOverridesExplicitZeroAndFull(t *testing.T) {
	std, _ := Get(Standard)
	p, err := ApplyOverrides(std, []byte("profiles:\n  - name: Standard\n    kd: 0\n    max_speed: 6000\n"))
	require.NoError(t, err)
	assert.Equal(t, 0.0, p.Kd)
	assert.Equal(t, 160.0, p.Kp)
	assert.Equal(t, 6000, p.MaxSpeed)

	p, err = ApplyOverrides(std, []byte("profiles:\n  - name: Standard\n    kp: 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 0.0, p.Kp)
	assert.Equal(t, 4.0, p.Kd)
}

func TestApplyOverridesKeepsUnsetFlips(t *testing.T) {
	hyper, _ := Get(Hyper)
	p, err := ApplyOverrides(hyper, []byte("profiles:\n  - name: Hyper\n    flip_right: false\n"))
	require.NoError(t, err)
	assert.True(t, p.FlipLeft)
	assert.False(t, p.FlipRight)
}

func TestLoadAndWriteInUse(t *testing.T) {
	dir := t.TempDir()

	p, err := Load("Hyper", filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "Hyper", p.Name)

	override := filepath.Join(dir, "rr.yaml")
	require.NoError(t, os.WriteFile(override, []byte("profiles:\n  - name: Hyper\n    kd: 1\n    flip_left: true\n    flip_right: true\n"), 0644))
	p, err = Load("hyper", override)
	require.NoError(t, err)
	assert.Equal(t, 1.0, p.Kd)

	inUse := filepath.Join(dir, "in-use.yaml")
	require.NoError(t, WriteInUse(p, inUse))
	doc, err := os.ReadFile(inUse)
	require.NoError(t, err)
	roundTrip, err := ApplyOverrides(Profile{Name: "Hyper"}, doc)
	require.NoError(t, err)
	assert.Equal(t, p.MaxSpeed, roundTrip.MaxSpeed)
	assert.Equal(t, p.Kd, roundTrip.Kd)
}
