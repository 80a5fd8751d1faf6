// Package screen drives the 128x128 RGB565 status display.
package screen

import (
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/fogleman/gg"
)

const (
	DefaultDevice = "/dev/fb1"
	Size          = 128

	lineHeight = 16
	frameBytes = Size * Size * 2
	rowBytes   = Size * 2
)

type Status struct {
	DriveEnabled bool
	Angle        float64
	Logging      bool
	Profile      string
	// Notice is a short transient message, such as a log error.
	Notice string
}

type Interface interface {
	ShowStatus(s Status) error
	ShowWarning() error
	ShowMessage(lines ...string) error
	Clear() error
}

// FormatAngle right-justifies the angle with three decimals.
func FormatAngle(angle float64) string {
	return fmt.Sprintf("%9.3f", angle)
}

func StatusLines(s Status) []string {
	lines := make([]string, 0, 6)
	if s.DriveEnabled {
		lines = append(lines, "A: Stop motors")
	} else {
		lines = append(lines, "A: Start motors")
	}
	lines = append(lines, "Angle:", FormatAngle(s.Angle))
	if s.Logging {
		lines = append(lines, "Logging")
	} else {
		lines = append(lines, "C: Start log")
	}
	lines = append(lines, s.Profile)
	if s.Notice != "" {
		lines = append(lines, s.Notice)
	}
	return lines
}

func WarningLines() []string {
	return []string{"Spinning", "WATCH OUT"}
}

func renderText(lines []string) *gg.Context {
	dc := gg.NewContext(Size, Size)
	dc.SetRGB(0, 0, 0)
	dc.Clear()
	dc.SetRGBA(1, 0.9, 0, 1)
	for i, l := range lines {
		dc.DrawString(l, 4, float64(lineHeight*(i+1)))
	}
	return dc
}

func renderWarning() *gg.Context {
	dc := renderText(nil)
	dc.Push()
	dc.Translate(Size/2, 40)
	drawWarningSign(dc)
	dc.Pop()
	dc.SetRGB(1, 0.2, 0)
	for i, l := range WarningLines() {
		dc.DrawStringAnchored(l, Size/2, float64(80+lineHeight*i), 0.5, 0.5)
	}
	return dc
}

func drawWarningSign(dc *gg.Context) {
	dc.SetRGB(1, 0.2, 0)
	dc.DrawRegularPolygon(3, 0, 0, 28, 0)
	dc.Fill()
	dc.SetRGBA(0, 0, 0, 0.9)
	dc.DrawString("!", -3, 5)
}

// encodeFrame converts to RGB565, rotated to match the panel's mounting.
func encodeFrame(img image.Image) []byte {
	buf := make([]byte, frameBytes)
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			r, g, b, _ := img.At(x, y).RGBA() // 16-bit pre-multiplied

			rb := byte(r >> (16 - 5))
			gb := byte(g >> (16 - 6)) // Green has 6 bits
			bb := byte(b >> (16 - 5))

			buf[(Size-1-y)*2+x*rowBytes+1] = (rb << 3) | (gb >> 3)
			buf[(Size-1-y)*2+x*rowBytes] = bb | (gb << 5)
		}
	}
	return buf
}

type Framebuffer struct {
	f *os.File
}

func Open(device string) (*Framebuffer, error) {
	f, err := os.OpenFile(device, os.O_RDWR, 0666)
	if err != nil {
		return nil, fmt.Errorf("open screen: %w", err)
	}
	return &Framebuffer{f: f}, nil
}

func (s *Framebuffer) ShowStatus(st Status) error {
	return s.write(encodeFrame(renderText(StatusLines(st)).Image()))
}

func (s *Framebuffer) ShowWarning() error {
	return s.write(encodeFrame(renderWarning().Image()))
}

func (s *Framebuffer) ShowMessage(lines ...string) error {
	return s.write(encodeFrame(renderText(lines).Image()))
}

func (s *Framebuffer) Clear() error {
	return s.write(make([]byte, frameBytes))
}

func (s *Framebuffer) write(buf []byte) error {
	if _, err := s.f.Seek(0, 0); err != nil {
		return fmt.Errorf("screen seek: %w", err)
	}
	for i := 0; i < Size; i++ {
		if _, err := s.f.Write(buf[i*rowBytes : (i+1)*rowBytes]); err != nil {
			return fmt.Errorf("screen write: %w", err)
		}
	}
	return nil
}

func (s *Framebuffer) Close() error {
	return errors.Join(s.Clear(), s.f.Close())
}

// Null discards everything.  It stands in for a missing screen.
type Null struct{}

func (Null) ShowStatus(Status) error     { return nil }
func (Null) ShowWarning() error          { return nil }
func (Null) ShowMessage(...string) error { return nil }
func (Null) Clear() error                { return nil }

// DummyKeep is how many frames a Dummy remembers.
const DummyKeep = 64

// Dummy records the most recent frames that would have been shown.
type Dummy struct {
	Shown  [][]string
	Frames int
	Err    error
}

func (d *Dummy) show(lines []string) error {
	if d.Err != nil {
		return d.Err
	}
	d.Frames++
	if len(d.Shown) == DummyKeep {
		copy(d.Shown, d.Shown[1:])
		d.Shown = d.Shown[:DummyKeep-1]
	}
	d.Shown = append(d.Shown, lines)
	return nil
}

func (d *Dummy) ShowStatus(s Status) error         { return d.show(StatusLines(s)) }
func (d *Dummy) ShowWarning() error                { return d.show(WarningLines()) }
func (d *Dummy) ShowMessage(lines ...string) error { return d.show(lines) }
func (d *Dummy) Clear() error                      { return d.show(nil) }

// Last returns the most recently shown lines.
func (d *Dummy) Last() []string {
	if len(d.Shown) == 0 {
		return nil
	}
	return d.Shown[len(d.Shown)-1]
}
