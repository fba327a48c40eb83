// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package mqttbridge publishes fingerprint sensor outputs to an MQTT broker
// and maps switch topics to sensor actions.
//
// Topics, relative to the prefix:
//
//	fingerprint   ON/OFF, retained
//	match_id      template id of the last match
//	match_score   score of the last match
//	status        status text, retained
//	enroll/set    ON starts an enrollment
//	clear/set     ON clears the library
package mqttbridge

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Thermoquad/dactyl/pkg/sensor"
	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

// Topic suffixes
const (
	TopicFingerprint = "fingerprint"
	TopicMatchID     = "match_id"
	TopicMatchScore  = "match_score"
	TopicStatus      = "status"
	TopicEnrollSet   = "enroll/set"
	TopicClearSet    = "clear/set"
)

// Switch payloads
const (
	PayloadOn  = "ON"
	PayloadOff = "OFF"
)

var _ sensor.Observer = (*Bridge)(nil)

// Actions are invoked when a switch topic receives ON. They run on the MQTT
// client's goroutine and must hand work to the device owner.
type Actions struct {
	Enroll func()
	Clear  func()
}

type publishFunc func(topic string, retain bool, payload []byte)

// Bridge mirrors device outputs to MQTT
type Bridge struct {
	client  paho.Client
	prefix  string
	publish publishFunc
	actions Actions
	log     zerolog.Logger
}

// New creates a bridge for the broker at brokerURL. Call Connect to start it.
func New(brokerURL string, actions Actions, log zerolog.Logger) (*Bridge, error) {
	opts, prefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid broker URL: %w", err)
	}

	b := newBridge(prefix, nil, actions, log)
	opts.SetOnConnectHandler(b.onConnect)
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		b.log.Warn().Err(err).Msg("connection lost")
	})
	b.client = paho.NewClient(opts)
	b.publish = func(topic string, retain bool, payload []byte) {
		b.client.Publish(topic, 0, retain, payload)
	}
	return b, nil
}

func newBridge(prefix string, publish publishFunc, actions Actions, log zerolog.Logger) *Bridge {
	return &Bridge{
		prefix:  prefix,
		publish: publish,
		actions: actions,
		log:     log.With().Str("component", "mqtt").Logger(),
	}
}

// Connect connects to the broker and waits for the first connection
func (b *Bridge) Connect(ctx context.Context) error {
	token := b.client.Connect()
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close disconnects from the broker
func (b *Bridge) Close() error {
	if b.client != nil {
		b.client.Disconnect(250)
	}
	return nil
}

// Topic returns the full topic for suffix
func (b *Bridge) Topic(suffix string) string {
	return b.prefix + "/" + suffix
}

func (b *Bridge) FingerprintPresent(present bool) {
	payload := PayloadOff
	if present {
		payload = PayloadOn
	}
	b.publish(b.Topic(TopicFingerprint), true, []byte(payload))
}

func (b *Bridge) MatchFound(id, score uint16) {
	b.publish(b.Topic(TopicMatchID), false, []byte(strconv.Itoa(int(id))))
	b.publish(b.Topic(TopicMatchScore), false, []byte(strconv.Itoa(int(score))))
}

func (b *Bridge) StatusChanged(status string) {
	b.publish(b.Topic(TopicStatus), true, []byte(status))
}

func (b *Bridge) onConnect(c paho.Client) {
	b.log.Info().Str("prefix", b.prefix).Msg("connected")
	filters := map[string]byte{
		b.Topic(TopicEnrollSet): 0,
		b.Topic(TopicClearSet):  0,
	}
	token := c.SubscribeMultiple(filters, func(_ paho.Client, msg paho.Message) {
		b.handleSwitch(msg.Topic(), msg.Payload())
	})
	go func() {
		if token.Wait(); token.Error() != nil {
			b.log.Error().Err(token.Error()).Msg("subscribe failed")
		}
	}()
}

// handleSwitch runs the action for a switch topic when payload is ON
func (b *Bridge) handleSwitch(topic string, payload []byte) {
	if !strings.EqualFold(strings.TrimSpace(string(payload)), PayloadOn) {
		b.log.Debug().Str("topic", topic).Str("payload", string(payload)).Msg("ignored switch payload")
		return
	}

	var action func()
	switch topic {
	case b.Topic(TopicEnrollSet):
		action = b.actions.Enroll
	case b.Topic(TopicClearSet):
		action = b.actions.Clear
	}
	if action == nil {
		b.log.Debug().Str("topic", topic).Msg("no action for topic")
		return
	}
	b.log.Info().Str("topic", topic).Msg("switch triggered")
	action()
}
