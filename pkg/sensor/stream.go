// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package sensor

import (
	"io"
	"sync"
)

// drainer is implemented by serial ports that can wait for their output
// buffer to empty
type drainer interface {
	Drain() error
}

// StreamTransport adapts a blocking io.ReadWriter, such as a serial port or
// a WebSocket bridge, to the non-blocking Transport. A background goroutine
// moves incoming bytes into a buffer until the stream fails.
type StreamTransport struct {
	rw io.ReadWriter

	mu  sync.Mutex
	buf []byte
	err error
}

// NewStreamTransport starts reading from rw
func NewStreamTransport(rw io.ReadWriter) *StreamTransport {
	t := &StreamTransport{rw: rw}
	go t.readLoop()
	return t
}

func (t *StreamTransport) readLoop() {
	chunk := make([]byte, 256)
	for {
		n, err := t.rw.Read(chunk)

		t.mu.Lock()
		t.buf = append(t.buf, chunk[:n]...)
		if err != nil {
			t.err = err
		}
		t.mu.Unlock()

		if err != nil {
			return
		}
	}
}

// Available reports whether a byte can be read without blocking
func (t *StreamTransport) Available() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.buf) > 0
}

// ReadByte returns the next buffered byte. Once the buffer is empty it
// returns the stream's read error, or io.EOF if none occurred yet.
func (t *StreamTransport) ReadByte() (byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.buf) == 0 {
		if t.err != nil {
			return 0, t.err
		}
		return 0, io.EOF
	}
	b := t.buf[0]
	t.buf = t.buf[1:]
	return b, nil
}

func (t *StreamTransport) Write(p []byte) (int, error) {
	return t.rw.Write(p)
}

// Flush waits for written bytes to leave a serial port. Other streams
// write through and need no flush.
func (t *StreamTransport) Flush() error {
	if d, ok := t.rw.(drainer); ok {
		return d.Drain()
	}
	return nil
}

// Err returns the error that stopped the reader, if any
func (t *StreamTransport) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}
