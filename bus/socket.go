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
	"net"

	"github.com/JACKJKL/comedy/envelope"
	gerrors "github.com/JACKJKL/comedy/errors"
	"github.com/JACKJKL/comedy/log"
)

// SocketBus is the remote transport: envelopes are framed identically to
// the pipe bus (length-prefixed MessagePack) but carried over a TCP
// connection. It does not support handle transfer (§4.3).
type SocketBus struct {
	*baseBus
	conn net.Conn
}

var _ Bus = (*SocketBus)(nil)

// NewSocketBus wraps an already-connected TCP socket as a Bus.
func NewSocketBus(conn net.Conn, logger log.Logger) *SocketBus {
	sb := &SocketBus{baseBus: newBaseBus(conn, conn, logger), conn: conn}
	go sb.readLoop(bufio.NewReader(conn), nil)
	return sb
}

func (s *SocketBus) Send(env *envelope.Envelope, onAck AckFunc) {
	err := s.writeFrame(env)
	if onAck != nil {
		onAck(err)
	}
}

func (s *SocketBus) SendHandle(_ *envelope.Envelope, _ net.Listener, onAck AckFunc) {
	if onAck != nil {
		onAck(gerrors.ErrHandleTransferUnsupported)
	}
}
