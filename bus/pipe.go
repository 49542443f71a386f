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
	"bufio"
	"io"
	"net"
	"sync"

	"github.com/JACKJKL/comedy/envelope"
	"github.com/JACKJKL/comedy/log"
)

// PipeBus is the parent↔forked-child transport: one side's stdout feeds
// the other's stdin. Handle transfer is supported by handing the peer a
// one-shot local rendezvous address that it dials to receive the listening
// socket's file descriptor (see handle_unix.go).
type PipeBus struct {
	*baseBus
	writeCloser io.WriteCloser
	handleMu    sync.Mutex
	transfers   handleTransferer
}

var _ Bus = (*PipeBus)(nil)

// NewPipeBus builds a PipeBus over an existing reader/writer pair, e.g. a
// forked child's inherited stdin/stdout, or the parent's ends of the
// exec.Cmd pipes.
func NewPipeBus(r io.ReadCloser, w io.WriteCloser, logger log.Logger) *PipeBus {
	pb := &PipeBus{baseBus: newBaseBus(w, r, logger), writeCloser: w}
	pb.transfers = newHandleTransferer(logger)
	go pb.readLoop(bufio.NewReader(r), pb.resolveHandle)
	return pb
}

func (p *PipeBus) Send(env *envelope.Envelope, onAck AckFunc) {
	err := p.writeFrame(env)
	if onAck != nil {
		onAck(err)
	}
}

func (p *PipeBus) SendHandle(env *envelope.Envelope, handle net.Listener, onAck AckFunc) {
	p.handleMu.Lock()
	addr, err := p.transfers.offer(handle)
	p.handleMu.Unlock()
	if err != nil {
		if onAck != nil {
			onAck(err)
		}
		return
	}
	env.HasHandle = true
	env.Set("handleRendezvous", addr)
	err = p.writeFrame(env)
	if onAck != nil {
		onAck(err)
	}
}

func (p *PipeBus) resolveHandle(env *envelope.Envelope) net.Listener {
	addr := env.GetString("handleRendezvous")
	if addr == "" {
		return nil
	}
	l, err := p.transfers.receive(addr)
	if err != nil {
		p.logger.Errorf("failed to receive transferred handle: %v", err)
		return nil
	}
	return l
}

// Close closes both ends of the pipe: the read side so our own read loop
// exits, and the write side so the peer's read loop sees EOF and fires
// its own OnExit.
func (p *PipeBus) Close() error {
	p.transfers.closeAll()
	werr := p.writeCloser.Close()
	rerr := p.baseBus.Close()
	if werr != nil {
		return werr
	}
	return rerr
}
