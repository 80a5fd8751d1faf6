package datalog

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSink struct {
	strings.Builder
	closed   bool
	writeErr error
}

func (m *memSink) Write(p []byte) (int, error) {
	if m.writeErr != nil {
		return 0, m.writeErr
	}
	return m.Builder.Write(p)
}

func (m *memSink) Close() error {
	m.closed = true
	return nil
}

func memOpener(sinks *[]*memSink) Opener {
	return func() (io.WriteCloser, error) {
		s := &memSink{}
		*sinks = append(*sinks, s)
		return s, nil
	}
}

func TestSessionLifecycle(t *testing.T) {
	var sinks []*memSink
	s := NewSession(memOpener(&sinks))

	assert.False(t, s.IsOpen())
	assert.ErrorIs(t, s.Record(10, 1), ErrNotOpen)
	assert.ErrorIs(t, s.Close(), ErrNotOpen)

	require.NoError(t, s.Toggle(1_000_000))
	assert.True(t, s.IsOpen())
	start, open := s.Start()
	assert.True(t, open)
	assert.EqualValues(t, 1_000_000, start)
	assert.ErrorIs(t, s.Open(5), ErrAlreadyOpen)

	require.NoError(t, s.Record(1_000_000, 0))
	require.NoError(t, s.Record(1_001_234, 12.3456))
	require.NoError(t, s.Record(2_500_000, -0.5))

	require.NoError(t, s.Toggle(3_000_000))
	assert.False(t, s.IsOpen())
	require.Len(t, sinks, 1)
	assert.True(t, sinks[0].closed)
	assert.Equal(t, "0,0.000\n1234,12.346\n1500000,-0.500\n", sinks[0].String())

	// A new session gets a fresh sink and start time.
	require.NoError(t, s.Toggle(4_000_000))
	require.NoError(t, s.Record(4_000_010, 1))
	require.NoError(t, s.Close())
	require.Len(t, sinks, 2)
	assert.Equal(t, "10,1.000\n", sinks[1].String())
}

func TestOpenFailureLeavesSessionClosed(t *testing.T) {
	s := NewSession(func() (io.WriteCloser, error) {
		return nil, errors.New("read-only filesystem")
	})
	err := s.Toggle(0)
	assert.ErrorContains(t, err, "read-only filesystem")
	assert.False(t, s.IsOpen())
}

func TestWriteFailureClosesSession(t *testing.T) {
	sink := &memSink{writeErr: errors.New("disk full")}
	s := NewSession(func() (io.WriteCloser, error) { return sink, nil })
	require.NoError(t, s.Open(0))

	// Buffered writes only reach the sink on flush.
	require.NoError(t, s.Record(1, 1))
	err := s.Close()
	assert.ErrorContains(t, err, "disk full")
	assert.False(t, s.IsOpen())
	assert.True(t, sink.closed)
}

func TestFileTarget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rotation.log")
	open, err := ParseTarget(path)
	require.NoError(t, err)

	s := NewSession(open)
	require.NoError(t, s.Open(100))
	require.NoError(t, s.Record(350, 3.14159))
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "250,3.142\n", string(data))
}

func TestParseTarget(t *testing.T) {
	_, err := ParseTarget("")
	assert.Error(t, err)
	_, err = ParseTarget("serial:")
	assert.Error(t, err)
	open, err := ParseTarget("serial:/dev/does-not-exist")
	require.NoError(t, err)
	_, err = open()
	assert.Error(t, err)
}
