// Package datalog records the angle over time as "<elapsed_us>,<angle>" lines.
//
// A Session is either Closed or Open(start).  At most one sink is open at a
// time and every Open is ended by Close.
package datalog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.bug.st/serial"

	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/ticks"
)

const (
	DefaultTarget   = "rotation.log"
	serialPrefix    = "serial:"
	serialBaudRate  = 115200
	writeBufferSize = 4096
)

var (
	ErrNotOpen     = errors.New("log session is not open")
	ErrAlreadyOpen = errors.New("log session is already open")
)

// Opener creates the sink for a new session.
type Opener func() (io.WriteCloser, error)

func FileOpener(path string) Opener {
	return func() (io.WriteCloser, error) {
		return os.Create(path)
	}
}

func SerialOpener(port string) Opener {
	return func() (io.WriteCloser, error) {
		return serial.Open(port, &serial.Mode{BaudRate: serialBaudRate})
	}
}

// ParseTarget accepts a file path or "serial:<device>".
func ParseTarget(target string) (Opener, error) {
	if target == "" {
		return nil, fmt.Errorf("empty log target")
	}
	if port, ok := strings.CutPrefix(target, serialPrefix); ok {
		if port == "" {
			return nil, fmt.Errorf("log target %q has no serial device", target)
		}
		return SerialOpener(port), nil
	}
	return FileOpener(target), nil
}

type Session struct {
	open Opener

	sink  io.WriteCloser
	w     *bufio.Writer
	start ticks.Micros
}

func NewSession(open Opener) *Session {
	return &Session{open: open}
}

func (s *Session) IsOpen() bool {
	return s.sink != nil
}

// Start is the time the open session began.
func (s *Session) Start() (ticks.Micros, bool) {
	return s.start, s.IsOpen()
}

func (s *Session) Open(now ticks.Micros) error {
	if s.IsOpen() {
		return ErrAlreadyOpen
	}
	sink, err := s.open()
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	s.sink = sink
	s.w = bufio.NewWriterSize(sink, writeBufferSize)
	s.start = now
	fmt.Println("Log: session opened")
	return nil
}

// Close ends the session.  The session is Closed afterwards even if flushing
// or closing the sink failed.
func (s *Session) Close() error {
	if !s.IsOpen() {
		return ErrNotOpen
	}
	flushErr := s.w.Flush()
	closeErr := s.sink.Close()
	s.sink = nil
	s.w = nil
	fmt.Println("Log: session closed")
	if flushErr != nil {
		return fmt.Errorf("flush log: %w", flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close log: %w", closeErr)
	}
	return nil
}

// Toggle closes an open session or opens a new one.
func (s *Session) Toggle(now ticks.Micros) error {
	if s.IsOpen() {
		return s.Close()
	}
	return s.Open(now)
}

// Record appends one line.  A write failure closes the session.
func (s *Session) Record(now ticks.Micros, angle float64) error {
	if !s.IsOpen() {
		return ErrNotOpen
	}
	if _, err := fmt.Fprintf(s.w, "%d,%.3f\n", int64(now.Sub(s.start)), angle); err != nil {
		closeErr := s.Close()
		return errors.Join(fmt.Errorf("write log: %w", err), closeErr)
	}
	return nil
}
