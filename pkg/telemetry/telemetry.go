// Package telemetry publishes controller state to an MQTT broker for
// off-robot plotting.  Publishing never blocks the control loop: tokens are
// not waited on and samples are dropped between publish intervals.
package telemetry

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/ticks"
)

const (
	DefaultTopic    = "rotation-resist/state"
	DefaultClientID = "rotation-resist"
	DefaultInterval = 50 * time.Millisecond

	connectTimeout = 2 * time.Second
)

type Sample struct {
	TimeUS  int64   `json:"t_us"`
	Angle   float64 `json:"angle"`
	Rate    float64 `json:"rate"`
	Left    int     `json:"left"`
	Right   int     `json:"right"`
	Enabled bool    `json:"enabled"`
	Logging bool    `json:"logging"`
}

type Interface interface {
	Publish(s Sample)
	Close()
}

type Dummy struct{}

func (Dummy) Publish(Sample) {}
func (Dummy) Close()         {}

// client is the subset of mqtt.Client used here.
type client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

type Publisher struct {
	client   client
	topic    string
	interval ticks.Micros

	last      ticks.Micros
	published bool
	failures  int
}

// Connect dials the broker.  Callers fall back to Dummy on error.
func Connect(broker string) (*Publisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(DefaultClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout)
	c := mqtt.NewClient(opts)
	token := c.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("connect to %s: timed out", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", broker, err)
	}
	fmt.Println("Telemetry: connected to", broker)
	return newPublisher(c, DefaultTopic, DefaultInterval), nil
}

func newPublisher(c client, topic string, interval time.Duration) *Publisher {
	return &Publisher{
		client:   c,
		topic:    topic,
		interval: ticks.FromDuration(interval),
	}
}

func (p *Publisher) Publish(s Sample) {
	now := ticks.Micros(s.TimeUS)
	if p.published && now.Sub(p.last) < p.interval {
		return
	}
	payload, err := json.Marshal(s)
	if err != nil {
		fmt.Println("Telemetry: marshal failed:", err)
		return
	}
	p.last = now
	p.published = true
	token := p.client.Publish(p.topic, 0, false, payload)
	// Only look at tokens that have already completed.
	select {
	case <-token.Done():
		if token.Error() != nil {
			p.failures++
			if p.failures == 1 {
				fmt.Println("Telemetry: publish failed:", token.Error())
			}
		}
	default:
	}
}

func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
