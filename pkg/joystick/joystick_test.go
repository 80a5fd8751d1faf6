package joystick

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	var j Joystick

	e := j.decode(rawEvent{Time: 1000, Value: 1, Type: EventTypeButton | eventTypeInit, Number: ButtonCircle})
	assert.True(t, e.Initial)
	assert.Equal(t, EventType(EventTypeButton), e.Type)
	assert.Equal(t, "button(1)=1", e.String())

	e2 := j.decode(rawEvent{Time: 1250, Value: -32767, Type: EventTypeAxis, Number: 3})
	assert.False(t, e2.Initial)
	assert.Equal(t, 250*time.Millisecond, e2.Time.Sub(e.Time))
}

func TestLoopSkipsInitialEvents(t *testing.T) {
	var buf bytes.Buffer
	for _, raw := range []rawEvent{
		{Time: 1, Value: 1, Type: EventTypeButton | eventTypeInit, Number: ButtonCross},
		{Time: 2, Value: 1, Type: EventTypeButton, Number: ButtonCircle},
	} {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, raw))
	}
	path := filepath.Join(t.TempDir(), "js0")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	j, err := Open(path)
	require.NoError(t, err)
	defer j.Close()

	events := make(chan *Event, 4)
	err = j.Loop(context.Background(), events)
	assert.Error(t, err) // EOF

	var got []*Event
	for e := range events {
		got = append(got, e)
	}
	require.Len(t, got, 1)
	assert.Equal(t, uint8(ButtonCircle), got[0].Number)
}
