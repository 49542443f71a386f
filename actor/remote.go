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
	"time"

	"github.com/flowchartsman/retry"
	"github.com/hashicorp/go-sockaddr"

	"github.com/JACKJKL/comedy/bus"
	"github.com/JACKJKL/comedy/envelope"
	gerrors "github.com/JACKJKL/comedy/errors"
	"github.com/JACKJKL/comedy/id"
	"github.com/JACKJKL/comedy/log"
	"github.com/JACKJKL/comedy/marshal"
)

// DefaultRemotePort is the listening server's default TCP port (§4.3,
// §6 addendum).
const DefaultRemotePort = 6161

// RemoteActorParent is the Ref implementation for a `remote` actor: an OS
// process on a different host, reached over a persistent socket bus after
// the listening server there has forked a worker for us (§4.3).
type RemoteActorParent struct {
	stateBox

	actorID string
	name    string
	parent  Ref
	logger  log.Logger

	hosts       []string
	bus         bus.Bus
	correlator  *id.Correlator
	pending     *pendingTable
	marshals    *marshal.Registry
	pingTimeout time.Duration
	onCrash     string
	opts        Options
	def         Behaviour

	stopHeartbeat chan struct{}
}

var _ Ref = (*RemoteActorParent)(nil)

// newRemoteChildRef dials the first reachable host in opts.Host, sends it a
// create-actor envelope, and keeps that same connection as the socket bus
// for actor-message/actor-response traffic (the listening server relays it
// to the worker it forks); if onCrash is "respawn" it also starts a
// parent-ping heartbeat (§4.3, §4.4). opts.Cluster is not resolved to
// hosts here or by any caller, so a remote actor needs opts.Host.
func newRemoteChildRef(ctx context.Context, parentPID *PID, opts Options, def Behaviour) (*RemoteActorParent, error) {
	if len(opts.Host) == 0 {
		return nil, fmt.Errorf("%w: remote actor requires at least one host", gerrors.ErrConfig)
	}

	r := &RemoteActorParent{
		actorID:       id.NewActorID(),
		name:          opts.Name,
		parent:        parentPID,
		logger:        parentPID.logger.With("mode", string(ModeRemote)),
		hosts:         opts.Host,
		correlator:    id.NewCorrelator("parent"),
		pending:       newPendingTable(),
		marshals:      parentPID.system.Marshallers(),
		pingTimeout:   opts.PingTimeout,
		onCrash:       opts.OnCrash,
		opts:          opts,
		def:           def,
		stopHeartbeat: make(chan struct{}),
	}
	r.stateBox.set(StateNew)

	if err := r.connect(ctx); err != nil {
		return nil, err
	}

	r.stateBox.set(StateReady)
	if r.onCrash == "respawn" {
		go r.heartbeatLoop()
	}
	return r, nil
}

// connect dials the first reachable host, asks it (via create-actor) to
// fork a worker, and installs the resulting socket as the message bus.
func (r *RemoteActorParent) connect(ctx context.Context) error {
	var lastErr error
	for _, host := range r.hosts {
		var conn net.Conn
		retrier := retry.NewRetrier(3, 200*time.Millisecond, 2*time.Second)
		dialErr := retrier.RunContext(ctx, func(_ context.Context) error {
			c, err := net.DialTimeout("tcp", ensurePort(host), 10*time.Second)
			if err != nil {
				return err
			}
			conn = c
			return nil
		})
		if dialErr != nil {
			lastErr = dialErr
			continue
		}

		sb := bus.NewSocketBus(conn, r.logger)
		created := make(chan error, 1)
		sb.OnMessage(func(env *envelope.Envelope, _ net.Listener) {
			r.handleMessage(env, created)
		})
		sb.OnExit(func() {
			r.stateBox.set(StateCrashed)
			r.pending.close()
		})

		createEnv := envelope.New("", r.actorID, envelope.TypeCreateActor)
		createEnv.Set("behaviourKey", r.opts.BehaviourKey)
		createEnv.Set("customParameters", r.opts.CustomParameters)
		createEnv.Set("additionalRequires", r.opts.AdditionalRequires)
		createEnv.Set("logLevel", r.opts.LogLevel)
		sendErr := make(chan error, 1)
		sb.Send(createEnv, func(err error) { sendErr <- err })
		if err := <-sendErr; err != nil {
			sb.Close()
			lastErr = err
			continue
		}

		select {
		case err := <-created:
			if err != nil {
				sb.Close()
				lastErr = err
				continue
			}
		case <-ctx.Done():
			sb.Close()
			return ctx.Err()
		case <-time.After(15 * time.Second):
			sb.Close()
			lastErr = fmt.Errorf("%w: timed out waiting for remote worker", gerrors.ErrTimeout)
			continue
		}

		r.bus = sb
		return nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("%w: no reachable host", gerrors.ErrTransport)
	}
	return fmt.Errorf("%w: %v", gerrors.ErrTransport, lastErr)
}

func (r *RemoteActorParent) handleMessage(env *envelope.Envelope, created chan error) {
	switch env.Type {
	case envelope.TypeActorCreated:
		if created != nil {
			select {
			case created <- nil:
			default:
			}
		}
	case envelope.TypeActorResponse:
		corrID := env.GetString("correlationId")
		if errMsg := env.GetString("error"); errMsg != "" {
			r.pending.resolve(corrID, nil, fmt.Errorf("%s", errMsg))
		} else {
			raw, _ := env.Get("value")
			value, err := unmarshalValue(r.marshals, raw, r.dispatch)
			r.pending.resolve(corrID, value, err)
		}
	case envelope.TypeParentPong:
		// liveness confirmed; nothing further to do.
	case envelope.TypeActorDestroyed:
		ack := envelope.New(env.ID, r.actorID, envelope.TypeActorDestroyedAck)
		r.bus.Send(ack, nil)
	}
}

// heartbeatLoop pings the remote worker every pingTimeout/2 and, if the
// bus has exited, attempts to reconnect and recreate the actor — the
// respawn-on-crash policy of §4.4.
func (r *RemoteActorParent) heartbeatLoop() {
	interval := r.pingTimeout / 2
	if interval <= 0 {
		interval = 2500 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-r.stopHeartbeat:
			return
		case <-ticker.C:
			if r.stateBox.is(StateCrashed) {
				r.respawn()
				continue
			}
			ping := envelope.New(r.correlator.Next(), r.actorID, envelope.TypeParentPing)
			r.bus.Send(ping, nil)
		}
	}
}

func (r *RemoteActorParent) respawn() {
	r.logger.Warnf("remote actor %q crashed, respawning", r.name)
	if err := r.connect(context.Background()); err != nil {
		r.logger.Errorf("respawn of %q failed: %v", r.name, err)
		return
	}
	r.stateBox.set(StateReady)
}

func (r *RemoteActorParent) ID() string       { return r.actorID }
func (r *RemoteActorParent) Name() string     { return r.name }
func (r *RemoteActorParent) Mode() Mode       { return ModeRemote }
func (r *RemoteActorParent) ModeName() string { return string(ModeRemote) }
func (r *RemoteActorParent) Parent() Ref      { return r.parent }
func (r *RemoteActorParent) State() State     { return r.stateBox.get() }

func (r *RemoteActorParent) Send(ctx context.Context, topic string, args ...any) error {
	_, err := r.dispatch(ctx, topic, 0, false, args)
	return err
}

func (r *RemoteActorParent) SendAndReceive(ctx context.Context, topic string, timeout time.Duration, args ...any) (any, error) {
	return r.dispatch(ctx, topic, timeout, true, args)
}

func (r *RemoteActorParent) dispatch(ctx context.Context, topic string, timeout time.Duration, expectReply bool, args []any) (any, error) {
	if !r.stateBox.is(StateReady) {
		return nil, notReadyErrFor(r.stateBox.get())
	}
	encodedArgs, err := marshalArgs(r.marshals, args)
	if err != nil {
		return nil, err
	}

	corrID := r.correlator.Next()
	env := envelope.New(corrID, r.actorID, envelope.TypeActorMessage)
	env.Set("topic", topic)
	env.Set("args", encodedArgs)
	env.Set("expectReply", expectReply)

	if !expectReply {
		sendErr := make(chan error, 1)
		r.bus.Send(env, func(err error) { sendErr <- err })
		return nil, <-sendErr
	}

	deadline := time.Now().Add(defaultTimeout(timeout))
	entry := r.pending.register(corrID, deadline)
	sendErr := make(chan error, 1)
	r.bus.Send(env, func(err error) { sendErr <- err })
	if err := <-sendErr; err != nil {
		r.pending.forget(corrID)
		return nil, err
	}
	return r.pending.await(ctx, entry)
}

func (r *RemoteActorParent) Tree(ctx context.Context) (*TreeNode, error) {
	v, err := r.SendAndReceive(ctx, treeTopic, 5*time.Second)
	if err != nil {
		return nil, err
	}
	return treeNodeFromAny(v)
}

func (r *RemoteActorParent) Metrics(ctx context.Context) (map[string]any, error) {
	v, err := r.SendAndReceive(ctx, metricsTopic, 5*time.Second)
	if err != nil {
		return nil, err
	}
	m, _ := v.(map[string]any)
	return m, nil
}

func (r *RemoteActorParent) Destroy(ctx context.Context) error {
	if !r.beginDestroy() {
		return nil
	}
	close(r.stopHeartbeat)

	destroyEnv := envelope.New(r.correlator.Next(), r.actorID, envelope.TypeDestroyActor)
	ackCh := make(chan struct{}, 1)
	r.bus.OnMessage(func(env *envelope.Envelope, _ net.Listener) {
		r.handleMessage(env, nil)
		if env.Type == envelope.TypeActorDestroyed {
			select {
			case ackCh <- struct{}{}:
			default:
			}
		}
	})
	r.bus.Send(destroyEnv, nil)
	select {
	case <-ackCh:
	case <-time.After(5 * time.Second):
		r.logger.Warnf("remote actor %q did not acknowledge destroy in time", r.name)
	case <-ctx.Done():
	}
	r.pending.close()
	r.stateBox.set(StateDestroyed)
	return r.bus.Close()
}

func (r *RemoteActorParent) beginDestroy() bool {
	if r.stateBox.compareAndSwap(StateReady, StateDestroying) {
		return true
	}
	if r.stateBox.compareAndSwap(StateNew, StateDestroying) {
		return true
	}
	if r.stateBox.compareAndSwap(StateCrashed, StateDestroying) {
		return true
	}
	return false
}

// ensurePort appends DefaultRemotePort if host has no port of its own.
func ensurePort(host string) string {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	return fmt.Sprintf("%s:%d", host, DefaultRemotePort)
}

// advertiseHostPort resolves the host/port this process should advertise
// for inbound remote connections given the addr Listen was called with
// (which may be "", ":0", or "host:port"); ok is false if no usable
// address could be determined.
func advertiseHostPort(addr string) (host string, port int, ok bool) {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil || portStr == "" {
		portStr = fmt.Sprintf("%d", DefaultRemotePort)
	}
	var p int
	if _, err := fmt.Sscanf(portStr, "%d", &p); err != nil || p == 0 {
		p = DefaultRemotePort
	}
	ip, err := localAdvertiseAddr()
	if err != nil {
		return "", 0, false
	}
	return ip, p, true
}

// localAdvertiseAddr resolves the address this process should advertise
// for inbound remote connections, preferring a private RFC1918 address
// and falling back to the host's public IP, matching the teacher's own
// address-discovery strategy.
func localAdvertiseAddr() (string, error) {
	ip, err := sockaddr.GetPrivateIP()
	if err != nil || ip == "" {
		ip, err = sockaddr.GetPublicIP()
	}
	if err != nil {
		return "", fmt.Errorf("%w: discover advertise address: %v", gerrors.ErrTransport, err)
	}
	if ip == "" {
		return "", fmt.Errorf("%w: no usable local address found", gerrors.ErrTransport)
	}
	return ip, nil
}
