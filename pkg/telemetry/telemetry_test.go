package telemetry

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeToken struct {
	done chan struct{}
	err  error
}

func newToken(complete bool, err error) *fakeToken {
	t := &fakeToken{done: make(chan struct{}), err: err}
	if complete {
		close(t.done)
	}
	return t
}

func (t *fakeToken) Wait() bool {
	<-t.done
	return true
}

func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type fakeClient struct {
	topics       []string
	payloads     [][]byte
	complete     bool
	err          error
	disconnected bool
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.topics = append(c.topics, topic)
	c.payloads = append(c.payloads, payload.([]byte))
	return newToken(c.complete, c.err)
}

func (c *fakeClient) Disconnect(uint) {
	c.disconnected = true
}

func TestPublishIsRateLimited(t *testing.T) {
	c := &fakeClient{complete: true}
	p := newPublisher(c, DefaultTopic, DefaultInterval)

	for us := int64(0); us <= 200_000; us += 625 {
		p.Publish(Sample{TimeUS: us, Angle: 1})
	}
	// 0, 50, 100, 150 and 200 ms.
	assert.Len(t, c.payloads, 5)
	for _, topic := range c.topics {
		assert.Equal(t, "rotation-resist/state", topic)
	}
}

func TestPayloadFields(t *testing.T) {
	c := &fakeClient{complete: true}
	p := newPublisher(c, "t", DefaultInterval)
	p.Publish(Sample{TimeUS: 42, Angle: 1.5, Rate: -2, Left: 300, Right: -300, Enabled: true})
	require.Len(t, c.payloads, 1)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(c.payloads[0], &got))
	assert.EqualValues(t, 42, got["t_us"])
	assert.EqualValues(t, 1.5, got["angle"])
	assert.EqualValues(t, -2, got["rate"])
	assert.EqualValues(t, 300, got["left"])
	assert.EqualValues(t, -300, got["right"])
	assert.Equal(t, true, got["enabled"])
	assert.Equal(t, false, got["logging"])
}

func TestPublishDoesNotWaitForBroker(t *testing.T) {
	c := &fakeClient{complete: false}
	p := newPublisher(c, "t", time.Millisecond)
	p.Publish(Sample{TimeUS: 0})
	p.Publish(Sample{TimeUS: 1000})
	assert.Len(t, c.payloads, 2)
}

func TestPublishErrorsAreCounted(t *testing.T) {
	c := &fakeClient{complete: true, err: errors.New("not connected")}
	p := newPublisher(c, "t", time.Millisecond)
	p.Publish(Sample{TimeUS: 0})
	p.Publish(Sample{TimeUS: 1000})
	assert.Equal(t, 2, p.failures)
	p.Close()
	assert.True(t, c.disconnected)
}
