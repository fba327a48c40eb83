// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package sensor

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/Thermoquad/dactyl/pkg/zw101"
	"github.com/stretchr/testify/require"
)

// pipeStream joins the read side of one pipe and the write side of another
type pipeStream struct {
	io.Reader
	io.Writer
	drains int
}

func (p *pipeStream) Drain() error {
	p.drains++
	return nil
}

// newPipeStream returns a stream plus the module's ends of both pipes
func newPipeStream() (*pipeStream, *io.PipeWriter, *io.PipeReader) {
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	return &pipeStream{Reader: inR, Writer: outW}, inW, outR
}

func TestStreamTransport_BuffersIncomingBytes(t *testing.T) {
	stream, moduleOut, _ := newPipeStream()
	tr := NewStreamTransport(stream)

	go func() { _, _ = moduleOut.Write([]byte{0xEF, 0x01, 0x02}) }()

	require.Eventually(t, func() bool {
		tr.mu.Lock()
		defer tr.mu.Unlock()
		return len(tr.buf) == 3
	}, time.Second, time.Millisecond)

	for _, want := range []byte{0xEF, 0x01, 0x02} {
		require.True(t, tr.Available())
		b, err := tr.ReadByte()
		require.NoError(t, err)
		require.Equal(t, want, b)
	}
	require.False(t, tr.Available())

	_, err := tr.ReadByte()
	require.ErrorIs(t, err, io.EOF)
}

func TestStreamTransport_ReportsStreamError(t *testing.T) {
	errGone := errors.New("port gone")
	stream, moduleOut, _ := newPipeStream()
	tr := NewStreamTransport(stream)

	moduleOut.CloseWithError(errGone)

	require.Eventually(t, func() bool { return tr.Err() != nil }, time.Second, time.Millisecond)
	require.ErrorIs(t, tr.Err(), errGone)
	_, err := tr.ReadByte()
	require.ErrorIs(t, err, errGone)
}

func TestStreamTransport_FlushDrains(t *testing.T) {
	stream, _, _ := newPipeStream()
	tr := NewStreamTransport(stream)

	require.NoError(t, tr.Flush())
	require.Equal(t, 1, stream.drains)
}

func TestStreamTransport_HandshakeOverPipe(t *testing.T) {
	stream, moduleOut, moduleIn := newPipeStream()
	dev, err := New(Config{Transport: NewStreamTransport(stream)})
	require.NoError(t, err)

	go func() {
		cmd := make([]byte, 12)
		if _, err := io.ReadFull(moduleIn, cmd); err != nil {
			return
		}
		_, _ = moduleOut.Write(ack(zw101.ConfirmOK))
	}()

	require.NoError(t, dev.Handshake())
	require.Equal(t, StatusModuleOnline, dev.Status())
}
