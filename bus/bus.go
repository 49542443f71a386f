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

// Package bus implements the duplex message channel contract shared by
// the forked (pipe) and remote (socket) transports: Send/SendHandle,
// OnMessage, OnExit, over a common length-prefixed MessagePack framing
// defined in package envelope.
package bus

import (
	"bufio"
	"io"
	"net"
	"sync"

	"github.com/JACKJKL/comedy/envelope"
	"github.com/JACKJKL/comedy/log"
)

// AckFunc is invoked once the transport has accepted an envelope for
// delivery — not once the peer has processed it.
type AckFunc func(error)

// MessageHandler receives each inbound envelope. handle is non-nil only
// when the envelope was paired with a transferred listening socket (pipe
// bus only).
type MessageHandler func(env *envelope.Envelope, handle net.Listener)

// Bus is the uniform duplex message channel between a parent proxy and a
// child actor. There are two implementations: PipeBus (parent↔forked
// child IPC) and SocketBus (remote, over TCP). Bus implementations
// serialize writes internally; callers may call Send concurrently.
type Bus interface {
	// Send delivers env to the peer at-most-once. onAck is called once
	// the transport has accepted it, not once it has been processed.
	Send(env *envelope.Envelope, onAck AckFunc)
	// SendHandle additionally transfers an OS-level listening socket
	// alongside env. Returns errors.ErrHandleTransferUnsupported
	// synchronously (via onAck) on buses that cannot transfer handles.
	SendHandle(env *envelope.Envelope, handle net.Listener, onAck AckFunc)
	// OnMessage registers the handler invoked for every inbound
	// envelope. Only one handler is kept; registering again replaces it.
	OnMessage(handler MessageHandler)
	// OnExit registers the handler invoked exactly once when the peer
	// endpoint becomes unreachable.
	OnExit(handler func())
	// Close releases the underlying transport. Idempotent.
	Close() error
}

// baseBus implements the read-loop/write-serialization plumbing shared by
// PipeBus and SocketBus; each embeds it and supplies the underlying
// io.Reader/io.Writer and, where supported, handle transfer.
type baseBus struct {
	writeMu sync.Mutex
	writer  io.Writer
	closer  io.Closer

	mu        sync.Mutex
	onMessage MessageHandler
	onExit    func()
	exited    bool

	logger log.Logger
}

func newBaseBus(w io.Writer, c io.Closer, logger log.Logger) *baseBus {
	if logger == nil {
		logger = log.DiscardLogger
	}
	return &baseBus{writer: w, closer: c, logger: logger}
}

func (b *baseBus) OnMessage(handler MessageHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onMessage = handler
}

func (b *baseBus) OnExit(handler func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onExit = handler
}

func (b *baseBus) dispatch(env *envelope.Envelope, handle net.Listener) {
	b.mu.Lock()
	handler := b.onMessage
	b.mu.Unlock()
	if handler != nil {
		handler(env, handle)
	}
}

func (b *baseBus) fireExit() {
	b.mu.Lock()
	if b.exited {
		b.mu.Unlock()
		return
	}
	b.exited = true
	handler := b.onExit
	b.mu.Unlock()
	if handler != nil {
		handler()
	}
}

func (b *baseBus) writeFrame(env *envelope.Envelope) error {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	return envelope.WriteFrame(b.writer, env)
}

func (b *baseBus) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

// readLoop runs on its own goroutine for the lifetime of the bus, decoding
// frames off r and dispatching them until r is closed or errors, at which
// point it fires OnExit exactly once.
func (b *baseBus) readLoop(r *bufio.Reader, resolveHandle func(*envelope.Envelope) net.Listener) {
	for {
		env, err := envelope.ReadFrame(r)
		if err != nil {
			if err != io.EOF {
				b.logger.Debugf("bus read loop ended: %v", err)
			}
			b.fireExit()
			return
		}
		var handle net.Listener
		if env.HasHandle && resolveHandle != nil {
			handle = resolveHandle(env)
		}
		b.dispatch(env, handle)
	}
}
