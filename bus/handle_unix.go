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

//go:build !windows

package bus

import (
	"fmt"
	"net"
	"os"
	"sync"

	"github.com/JACKJKL/comedy/log"
)

// handleTransferer hands a *os.File off to a peer process over a one-shot
// Unix-domain rendezvous socket using SCM_RIGHTS, the portable way to pass
// an OS-level file descriptor between processes on the same host. There is
// no third-party package in the surrounding ecosystem for this; it is
// inherently a syscall-level operation.
type handleTransferer struct {
	mu       sync.Mutex
	pending  map[string]*net.UnixListener
	logger   log.Logger
}

func newHandleTransferer(logger log.Logger) handleTransferer {
	if logger == nil {
		logger = log.DiscardLogger
	}
	return handleTransferer{pending: map[string]*net.UnixListener{}, logger: logger}
}

// offer opens a fresh rendezvous socket, returns its address for the peer
// to dial, and in the background accepts exactly one connection on which
// it writes the listener's underlying file descriptor.
func (t *handleTransferer) offer(l net.Listener) (string, error) {
	tcpListener, ok := l.(*net.TCPListener)
	if !ok {
		return "", fmt.Errorf("handle transfer only supports *net.TCPListener, got %T", l)
	}
	file, err := tcpListener.File()
	if err != nil {
		return "", fmt.Errorf("dup listener fd: %w", err)
	}

	rendezvousPath := fmt.Sprintf("%s/comedy-handle-%d-%d.sock", os.TempDir(), os.Getpid(), len(t.pending))
	_ = os.Remove(rendezvousPath)
	rendezvous, err := net.Listen("unix", rendezvousPath)
	if err != nil {
		file.Close()
		return "", fmt.Errorf("listen on rendezvous socket: %w", err)
	}
	unixRendezvous := rendezvous.(*net.UnixListener)

	t.mu.Lock()
	t.pending[rendezvousPath] = unixRendezvous
	t.mu.Unlock()

	go func() {
		defer file.Close()
		defer os.Remove(rendezvousPath)
		conn, err := unixRendezvous.AcceptUnix()
		if err != nil {
			t.logger.Debugf("handle transfer rendezvous accept failed: %v", err)
			return
		}
		defer conn.Close()
		rights := unixRights(int(file.Fd()))
		if _, _, err := conn.WriteMsgUnix([]byte{0}, rights, nil); err != nil {
			t.logger.Errorf("handle transfer write failed: %v", err)
		}
	}()

	return rendezvousPath, nil
}

// receive dials the rendezvous address and reconstructs the transferred
// listener from the received file descriptor.
func (t *handleTransferer) receive(addr string) (net.Listener, error) {
	conn, err := net.Dial("unix", addr)
	if err != nil {
		return nil, fmt.Errorf("dial rendezvous socket: %w", err)
	}
	defer conn.Close()
	unixConn, ok := conn.(*net.UnixConn)
	if !ok {
		return nil, fmt.Errorf("rendezvous dial did not return a unix connection")
	}

	buf := make([]byte, 1)
	oob := make([]byte, 32)
	_, oobn, _, _, err := unixConn.ReadMsgUnix(buf, oob)
	if err != nil {
		return nil, fmt.Errorf("read rendezvous message: %w", err)
	}

	fd, err := parseUnixRights(oob[:oobn])
	if err != nil {
		return nil, err
	}
	file := os.NewFile(uintptr(fd), "transferred-listener")
	l, err := net.FileListener(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("reconstruct listener from fd: %w", err)
	}
	return l, nil
}

func (t *handleTransferer) closeAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for addr, l := range t.pending {
		_ = l.Close()
		_ = os.Remove(addr)
	}
	t.pending = map[string]*net.UnixListener{}
}
