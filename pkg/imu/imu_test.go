package imu

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/ticks"
)

type fakePort struct {
	regs   map[byte][]byte
	writes map[byte][]byte
	err    error
}

func (p *fakePort) ReadReg(reg byte, buf []byte) error {
	if p.err != nil {
		return p.err
	}
	copy(buf, p.regs[reg])
	return nil
}

func (p *fakePort) WriteReg(reg byte, buf []byte) error {
	if p.writes == nil {
		p.writes = map[byte][]byte{}
	}
	p.writes[reg] = append([]byte(nil), buf...)
	return nil
}

func TestConfigure(t *testing.T) {
	p := &fakePort{regs: map[byte][]byte{RegWhoAmI: {WhoAmIValue}}}
	m := &IMU{dev: p}

	require.NoError(t, m.Configure())
	assert.Equal(t, []byte{Ctrl2GDefault}, p.writes[RegCtrl2G])
	assert.Equal(t, []byte{Ctrl3CDefault}, p.writes[RegCtrl3C])
}

func TestConfigureWrongChip(t *testing.T) {
	p := &fakePort{regs: map[byte][]byte{RegWhoAmI: {0x68}}}
	m := &IMU{dev: p}

	assert.ErrorContains(t, m.Configure(), "WHO_AM_I")
}

func TestDataReady(t *testing.T) {
	p := &fakePort{regs: map[byte][]byte{RegStatus: {StatusGDA}}}
	m := &IMU{dev: p}

	ready, err := m.DataReady()
	require.NoError(t, err)
	assert.True(t, ready)

	p.regs[RegStatus] = []byte{1} // accel only
	ready, err = m.DataReady()
	require.NoError(t, err)
	assert.False(t, ready)

	p.err = errors.New("bus error")
	_, err = m.DataReady()
	assert.Error(t, err)
}

func TestRead(t *testing.T) {
	// X = 1000 LSB, Y = -1000 LSB, Z = 2 LSB
	p := &fakePort{regs: map[byte][]byte{RegOutXG: {0xe8, 0x03, 0x18, 0xfc, 0x02, 0x00}}}
	m := &IMU{dev: p}

	r, err := m.Read()
	require.NoError(t, err)
	assert.InDelta(t, 35.0, r.X, 1e-9)
	assert.InDelta(t, -35.0, r.Y, 1e-9)
	assert.InDelta(t, 0.07, r.Z, 1e-9)
	assert.Equal(t, r.Z, r.Axis(AxisZ))
}

func TestSimProducesSamplesAtInterval(t *testing.T) {
	clock := &ticks.Fake{}
	s := &Sim{
		Clock:    clock,
		Interval: time.Millisecond,
		Bias:     Reading{Z: 0.5},
		OnPoll:   func() { clock.Advance(100 * time.Microsecond) },
	}

	var samples int
	for clock.Now() < ticks.FromDuration(10*time.Millisecond) {
		ready, err := s.DataReady()
		require.NoError(t, err)
		if ready {
			r, err := s.Read()
			require.NoError(t, err)
			assert.Equal(t, 0.5, r.Z)
			samples++
		}
	}
	assert.InDelta(t, 9, samples, 1)
}
