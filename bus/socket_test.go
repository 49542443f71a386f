// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package bus

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JACKJKL/comedy/envelope"
	gerrors "github.com/JACKJKL/comedy/errors"
	"github.com/JACKJKL/comedy/log"
)

func socketPair(t *testing.T) (a, b *SocketBus) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	serverConn := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			serverConn <- conn
		}
	}()

	clientConn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)

	a = NewSocketBus(clientConn, log.DiscardLogger)
	b = NewSocketBus(<-serverConn, log.DiscardLogger)
	t.Cleanup(func() {
		a.Close()
		b.Close()
	})
	return a, b
}

func TestSocketBusSendReceive(t *testing.T) {
	a, b := socketPair(t)

	received := make(chan *envelope.Envelope, 1)
	b.OnMessage(func(env *envelope.Envelope, _ net.Listener) {
		received <- env
	})

	env := envelope.New("corr-1", "actor-1", envelope.TypeParentPing)
	ackCh := make(chan error, 1)
	a.Send(env, func(err error) { ackCh <- err })
	require.NoError(t, <-ackCh)

	select {
	case got := <-received:
		require.Equal(t, envelope.TypeParentPing, got.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for envelope")
	}
}

func TestSocketBusSendHandleUnsupported(t *testing.T) {
	a, _ := socketPair(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	ackCh := make(chan error, 1)
	a.SendHandle(envelope.New("", "", envelope.TypeCreateActor), ln, func(err error) { ackCh <- err })
	require.ErrorIs(t, <-ackCh, gerrors.ErrHandleTransferUnsupported)
}

func TestSocketBusFiresOnExit(t *testing.T) {
	a, b := socketPair(t)

	exited := make(chan struct{}, 1)
	b.OnExit(func() { exited <- struct{}{} })

	require.NoError(t, a.Close())

	select {
	case <-exited:
	case <-time.After(2 * time.Second):
		t.Fatal("OnExit was not called after peer closed")
	}
}
