// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package sensor

import (
	"io"
	"testing"
	"time"

	"github.com/Thermoquad/dactyl/pkg/zw101"
	"github.com/stretchr/testify/require"
)

// fakeClock only moves when told to or when the device polls
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time        { return c.now }
func (c *fakeClock) Sleep(d time.Duration) { c.now = c.now.Add(d) }
func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// scriptTransport answers each command with the next reply queued for its
// opcode. Commands without a queued reply get silence.
type scriptTransport struct {
	t       *testing.T
	replies map[uint8][][]byte
	rx      []byte
	sent    []*zw101.Packet
}

func newScriptTransport(t *testing.T) *scriptTransport {
	return &scriptTransport{t: t, replies: map[uint8][][]byte{}}
}

func (s *scriptTransport) reply(opcode uint8, frames ...[]byte) {
	s.replies[opcode] = append(s.replies[opcode], frames...)
}

func (s *scriptTransport) Available() bool {
	return len(s.rx) > 0
}

func (s *scriptTransport) ReadByte() (byte, error) {
	if len(s.rx) == 0 {
		return 0, io.EOF
	}
	b := s.rx[0]
	s.rx = s.rx[1:]
	return b, nil
}

func (s *scriptTransport) Write(p []byte) (int, error) {
	pkt, err := zw101.DecodePacket(p)
	require.NoError(s.t, err, "device wrote a malformed frame")
	s.sent = append(s.sent, pkt)

	if queue := s.replies[pkt.Opcode()]; len(queue) > 0 {
		s.rx = append(s.rx, queue[0]...)
		s.replies[pkt.Opcode()] = queue[1:]
	}
	return len(p), nil
}

func (s *scriptTransport) Flush() error {
	return nil
}

// sentWith returns the commands written with opcode
func (s *scriptTransport) sentWith(opcode uint8) []*zw101.Packet {
	var out []*zw101.Packet
	for _, p := range s.sent {
		if p.Opcode() == opcode {
			out = append(out, p)
		}
	}
	return out
}

func ack(code zw101.ConfirmCode, fields ...byte) []byte {
	return zw101.EncodePacket(zw101.NewAck(code, fields...))
}

func searchReply(page, score uint16) []byte {
	return ack(zw101.ConfirmOK, byte(page>>8), byte(page), byte(score>>8), byte(score))
}

func sysParaReply(librarySize uint16) []byte {
	return ack(zw101.ConfirmOK,
		0x00, 0x00, 0x00, 0x09,
		byte(librarySize>>8), byte(librarySize),
		0x00, 0x03,
		0xFF, 0xFF, 0xFF, 0xFF,
		0x00, 0x02,
		0x00, 0x06)
}

func countReply(n uint16) []byte {
	return ack(zw101.ConfirmOK, byte(n>>8), byte(n))
}

type recordingObserver struct {
	statuses []string
	present  []bool
	matches  [][2]uint16
}

func (r *recordingObserver) FingerprintPresent(present bool) {
	r.present = append(r.present, present)
}

func (r *recordingObserver) MatchFound(id, score uint16) {
	r.matches = append(r.matches, [2]uint16{id, score})
}

func (r *recordingObserver) StatusChanged(status string) {
	r.statuses = append(r.statuses, status)
}

func (r *recordingObserver) lastStatus() string {
	if len(r.statuses) == 0 {
		return ""
	}
	return r.statuses[len(r.statuses)-1]
}

type testEnv struct {
	dev   *Device
	tr    *scriptTransport
	clock *fakeClock
	obs   *recordingObserver
}

func newTestEnv(t *testing.T, opts ...func(*Config)) *testEnv {
	env := &testEnv{
		tr:    newScriptTransport(t),
		clock: newFakeClock(),
		obs:   &recordingObserver{},
	}
	cfg := Config{
		Transport:     env.tr,
		Clock:         env.clock,
		Observer:      env.obs,
		DisableLEDOff: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	dev, err := New(cfg)
	require.NoError(t, err)
	env.dev = dev
	return env
}

// tickUntil ticks every step until done reports true or limit ticks ran
func (e *testEnv) tickUntil(step time.Duration, limit int, done func() bool) bool {
	for i := 0; i < limit; i++ {
		e.clock.Advance(step)
		e.dev.Tick()
		if done() {
			return true
		}
	}
	return false
}
