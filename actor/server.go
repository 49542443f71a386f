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

package actor

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"sync"

	"github.com/JACKJKL/comedy/bus"
	"github.com/JACKJKL/comedy/envelope"
	gerrors "github.com/JACKJKL/comedy/errors"
	"github.com/JACKJKL/comedy/log"
)

// ListeningServer is the inbound half of the remote transport (§4.3, §6
// addendum): it accepts TCP connections from remote parents, forks a
// worker process per connection, and relays envelopes between the two
// until the connection (or the worker) goes away.
type ListeningServer struct {
	system   *ActorSystem
	listener net.Listener
	logger   log.Logger

	mu     sync.Mutex
	closed bool
}

func newListeningServer(system *ActorSystem, addr string, logger log.Logger) (*ListeningServer, error) {
	if addr == "" {
		addr = fmt.Sprintf(":%d", DefaultRemotePort)
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: listen on %s: %v", gerrors.ErrTransport, addr, err)
	}
	return &ListeningServer{system: system, listener: ln, logger: logger.With("component", "listeningServer")}, nil
}

// Serve accepts connections until ctx is done or the listener is closed.
func (s *ListeningServer) Serve(ctx context.Context) {
	go func() {
		<-ctx.Done()
		s.Close()
	}()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if !closed {
				s.logger.Debugf("accept loop ended: %v", err)
			}
			return
		}
		go s.handleConn(conn)
	}
}

// handleConn speaks the create-actor handshake on conn, forks a worker to
// answer it, and then proxies every subsequent envelope verbatim between
// the remote parent's socket and the worker's pipe, in both directions,
// until either side disconnects.
func (s *ListeningServer) handleConn(conn net.Conn) {
	remote := bus.NewSocketBus(conn, s.logger)

	exe, err := workerExecutable()
	if err != nil {
		remote.Close()
		return
	}
	cmd := exec.Command(exe, "--actor-worker")
	cmd.Stderr = os.Stderr
	cmd.Env = os.Environ()
	stdin, err := cmd.StdinPipe()
	if err != nil {
		s.logger.Errorf("open worker stdin: %v", err)
		remote.Close()
		return
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		s.logger.Errorf("open worker stdout: %v", err)
		remote.Close()
		return
	}
	if err := cmd.Start(); err != nil {
		s.logger.Errorf("start worker: %v", err)
		remote.Close()
		return
	}

	worker := bus.NewPipeBus(stdout, stdin, s.logger.With("pid", cmd.Process.Pid))

	done := make(chan struct{})
	closeOnce := sync.OnceFunc(func() { close(done) })

	remote.OnMessage(func(env *envelope.Envelope, handle net.Listener) {
		if handle != nil {
			worker.SendHandle(env, handle, nil)
			return
		}
		worker.Send(env, nil)
	})
	worker.OnMessage(func(env *envelope.Envelope, handle net.Listener) {
		if handle != nil {
			remote.SendHandle(env, handle, nil)
			return
		}
		remote.Send(env, nil)
	})
	remote.OnExit(func() {
		worker.Close()
		_ = cmd.Process.Kill()
		closeOnce()
	})
	worker.OnExit(func() {
		remote.Close()
		closeOnce()
	})

	<-done
	_ = cmd.Wait()
}

// Close stops accepting new connections. In-flight relays finish on their
// own as their sockets close.
func (s *ListeningServer) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	return s.listener.Close()
}
