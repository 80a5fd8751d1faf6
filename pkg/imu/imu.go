package imu

import (
	"fmt"
	"io"

	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/conn/spi"
	"periph.io/x/periph/conn/spi/spireg"
	"periph.io/x/periph/host"

	"golang.org/x/exp/io/i2c"
)

// LSM6DSO gyro registers.
const (
	IMUAddr = 0x6b

	RegWhoAmI = 0x0f
	RegCtrl2G = 0x11
	RegCtrl3C = 0x12
	RegStatus = 0x1e
	RegOutXG  = 0x22 // 6 bytes, X/Y/Z little endian

	WhoAmIValue = 0x6c

	StatusGDA = 1 << 1

	// 1.66kHz output rate, 1000 dps full scale.
	Ctrl2GDefault = 0x8<<4 | 0x2<<2
	// Block data update, register address auto-increment.
	Ctrl3CDefault = 1<<6 | 1<<2
	Ctrl3CReset   = 1

	// Sensitivity at 1000 dps full scale.
	DegreesPerLSB = 0.035
)

// Reading is one three-axis angular rate sample in degrees per second.
type Reading struct {
	X, Y, Z float64
}

type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	return [...]string{"x", "y", "z"}[a]
}

func (r Reading) Axis(a Axis) float64 {
	switch a {
	case AxisX:
		return r.X
	case AxisY:
		return r.Y
	default:
		return r.Z
	}
}

type Interface interface {
	// DataReady reports whether a new sample is waiting; it never blocks.
	DataReady() (bool, error)
	Read() (Reading, error)
}

type port interface {
	ReadReg(reg byte, buf []byte) error
	WriteReg(reg byte, buf []byte) (err error)
}

type IMU struct {
	dev    port
	closer io.Closer
}

var _ Interface = (*IMU)(nil)

func NewI2C(deviceFile string) (*IMU, error) {
	dev, err := i2c.Open(&i2c.Devfs{Dev: deviceFile}, IMUAddr)
	if err != nil {
		return nil, fmt.Errorf("gyro i2c open %s: %w", deviceFile, err)
	}
	return &IMU{
		dev:    dev,
		closer: dev,
	}, nil
}

func NewSPI(deviceFile string) (*IMU, error) {
	// Make sure periph is initialized.
	if _, err := host.Init(); err != nil {
		return nil, err
	}

	p, err := spireg.Open(deviceFile)
	if err != nil {
		return nil, fmt.Errorf("gyro spi open %s: %w", deviceFile, err)
	}

	c, err := p.Connect(physic.MegaHertz*5, spi.Mode3, 8)
	if err != nil {
		_ = p.Close()
		return nil, err
	}

	return &IMU{
		dev:    &SPIAdapter{c: c},
		closer: p,
	}, nil
}

// Close releases the bus.
func (m *IMU) Close() error {
	if m.closer == nil {
		return nil
	}
	return m.closer.Close()
}

type SPIAdapter struct {
	c spi.Conn

	r, w []byte
}

const W = 0x00
const R = 0x80

func (s *SPIAdapter) ReadReg(reg byte, buf []byte) error {
	// The transaction includes the address byte, whose response slot is junk.
	bufLen := 1 + len(buf)
	s.ensureBuf(bufLen)
	s.w[0] = R | reg
	if err := s.c.Tx(s.w[:bufLen], s.r[:bufLen]); err != nil {
		return err
	}
	copy(buf, s.r[1:bufLen])
	return nil
}

func (s *SPIAdapter) WriteReg(reg byte, buf []byte) error {
	bufLen := 1 + len(buf)
	s.ensureBuf(bufLen)
	s.w[0] = W | reg
	copy(s.w[1:], buf)
	return s.c.Tx(s.w[:bufLen], s.r[:bufLen])
}

func (s *SPIAdapter) ensureBuf(l int) {
	if len(s.r) < l {
		s.w = make([]byte, l)
		s.r = make([]byte, l)
		return
	}
	for i := 0; i < l; i++ {
		s.w[i] = 0
		s.r[i] = 0
	}
}

// Configure resets the gyro and enables it at the default rate and range.
func (m *IMU) Configure() error {
	var id [1]byte
	if err := m.dev.ReadReg(RegWhoAmI, id[:]); err != nil {
		return fmt.Errorf("gyro read WHO_AM_I: %w", err)
	}
	if id[0] != WhoAmIValue {
		return fmt.Errorf("unexpected gyro WHO_AM_I 0x%02x (expected 0x%02x)", id[0], WhoAmIValue)
	}
	if err := m.dev.WriteReg(RegCtrl3C, []byte{Ctrl3CReset}); err != nil {
		return err
	}
	if err := m.dev.WriteReg(RegCtrl3C, []byte{Ctrl3CDefault}); err != nil {
		return err
	}
	return m.dev.WriteReg(RegCtrl2G, []byte{Ctrl2GDefault})
}

func (m *IMU) DataReady() (bool, error) {
	var status [1]byte
	if err := m.dev.ReadReg(RegStatus, status[:]); err != nil {
		return false, err
	}
	return status[0]&StatusGDA != 0, nil
}

func (m *IMU) Read() (Reading, error) {
	var buf [6]byte
	if err := m.dev.ReadReg(RegOutXG, buf[:]); err != nil {
		return Reading{}, err
	}
	return decodeReading(buf), nil
}

func decodeReading(buf [6]byte) Reading {
	raw := func(i int) float64 {
		return float64(int16(uint16(buf[i]) | uint16(buf[i+1])<<8))
	}
	return Reading{
		X: raw(0) * DegreesPerLSB,
		Y: raw(2) * DegreesPerLSB,
		Z: raw(4) * DegreesPerLSB,
	}
}
