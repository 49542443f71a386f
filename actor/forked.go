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
	"io"
	"net"
	"os"
	"os/exec"
	"time"

	"github.com/JACKJKL/comedy/bus"
	"github.com/JACKJKL/comedy/envelope"
	gerrors "github.com/JACKJKL/comedy/errors"
	"github.com/JACKJKL/comedy/id"
	"github.com/JACKJKL/comedy/log"
	"github.com/JACKJKL/comedy/marshal"
)

// ForkedActorParent is the Ref implementation for a `forked` actor: a
// separate OS process on the same host, spoken to over a pipe bus built
// from the child's inherited stdin/stdout (§4.3).
type ForkedActorParent struct {
	stateBox

	actorID string
	name    string
	parent  Ref
	logger  log.Logger

	cmd        *exec.Cmd
	bus        bus.Bus
	correlator *id.Correlator
	pending    *pendingTable
	marshals   *marshal.Registry

	pingTimeout time.Duration
}

var _ Ref = (*ForkedActorParent)(nil)

// newForkedActorParent forks a worker process running the current
// executable in actorworker mode, hands it a create-actor envelope over a
// freshly built pipe bus, and blocks for the actor-created acknowledgement
// before returning the new Ref (§4.3, §6).
func newForkedActorParent(ctx context.Context, parentPID *PID, opts Options, def Behaviour) (*ForkedActorParent, error) {
	exe, err := workerExecutable()
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(exe, "--actor-worker")
	cmd.Stderr = os.Stderr
	cmd.Env = os.Environ()

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: open worker stdin: %v", gerrors.ErrTransport, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: open worker stdout: %v", gerrors.ErrTransport, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: start worker process: %v", gerrors.ErrTransport, err)
	}

	logger := parentPID.logger.With("mode", string(ModeForked), "pid", cmd.Process.Pid)
	pipeBus := bus.NewPipeBus(stdout, stdin, logger)

	f := &ForkedActorParent{
		actorID:     id.NewActorID(),
		name:        opts.Name,
		parent:      parentPID,
		logger:      logger,
		cmd:         cmd,
		bus:         pipeBus,
		correlator:  id.NewCorrelator("parent"),
		pending:     newPendingTable(),
		marshals:    parentPID.system.Marshallers(),
		pingTimeout: opts.PingTimeout,
	}
	f.stateBox.set(StateNew)

	created := make(chan error, 1)
	pipeBus.OnMessage(func(env *envelope.Envelope, _ net.Listener) {
		f.handleMessage(env, created)
	})
	pipeBus.OnExit(func() {
		f.stateBox.set(StateCrashed)
		f.pending.close()
	})

	createEnv := envelope.New("", f.actorID, envelope.TypeCreateActor)
	createEnv.Set("behaviourKey", opts.BehaviourKey)
	createEnv.Set("customParameters", opts.CustomParameters)
	createEnv.Set("additionalRequires", opts.AdditionalRequires)
	createEnv.Set("logLevel", opts.LogLevel)
	createEnv.Set("test", opts.Test)
	createEnv.Set("debug", opts.Debug)
	pipeBus.Send(createEnv, func(err error) {
		if err != nil {
			created <- err
		}
	})

	select {
	case err := <-created:
		if err != nil {
			pipeBus.Close()
			return nil, err
		}
	case <-ctx.Done():
		pipeBus.Close()
		return nil, ctx.Err()
	case <-time.After(15 * time.Second):
		pipeBus.Close()
		return nil, fmt.Errorf("%w: timed out waiting for forked worker to create actor", gerrors.ErrTimeout)
	}

	f.stateBox.set(StateReady)
	return f, nil
}

func (f *ForkedActorParent) handleMessage(env *envelope.Envelope, created chan error) {
	switch env.Type {
	case envelope.TypeActorCreated:
		select {
		case created <- nil:
		default:
		}
	case envelope.TypeActorResponse:
		corrID := env.GetString("correlationId")
		if errMsg := env.GetString("error"); errMsg != "" {
			f.pending.resolve(corrID, nil, fmt.Errorf("%s", errMsg))
		} else {
			raw, _ := env.Get("value")
			value, err := unmarshalValue(f.marshals, raw, f.dispatch)
			f.pending.resolve(corrID, value, err)
		}
	case envelope.TypeActorDestroyed:
		ack := envelope.New(env.ID, f.actorID, envelope.TypeActorDestroyedAck)
		f.bus.Send(ack, nil)
	}
}

func (f *ForkedActorParent) ID() string       { return f.actorID }
func (f *ForkedActorParent) Name() string     { return f.name }
func (f *ForkedActorParent) Mode() Mode       { return ModeForked }
func (f *ForkedActorParent) ModeName() string { return string(ModeForked) }
func (f *ForkedActorParent) Parent() Ref      { return f.parent }
func (f *ForkedActorParent) State() State     { return f.stateBox.get() }

func (f *ForkedActorParent) Send(ctx context.Context, topic string, args ...any) error {
	_, err := f.dispatch(ctx, topic, 0, false, args)
	return err
}

func (f *ForkedActorParent) SendAndReceive(ctx context.Context, topic string, timeout time.Duration, args ...any) (any, error) {
	return f.dispatch(ctx, topic, timeout, true, args)
}

func (f *ForkedActorParent) dispatch(ctx context.Context, topic string, timeout time.Duration, expectReply bool, args []any) (any, error) {
	if !f.stateBox.is(StateReady) {
		return nil, notReadyErrFor(f.stateBox.get())
	}
	encodedArgs, err := marshalArgs(f.marshals, args)
	if err != nil {
		return nil, err
	}

	corrID := f.correlator.Next()
	env := envelope.New(corrID, f.actorID, envelope.TypeActorMessage)
	env.Set("topic", topic)
	env.Set("args", encodedArgs)
	env.Set("expectReply", expectReply)

	if !expectReply {
		sendErr := make(chan error, 1)
		f.bus.Send(env, func(err error) { sendErr <- err })
		return nil, <-sendErr
	}

	deadline := time.Now().Add(defaultTimeout(timeout))
	entry := f.pending.register(corrID, deadline)
	sendErr := make(chan error, 1)
	f.bus.Send(env, func(err error) { sendErr <- err })
	if err := <-sendErr; err != nil {
		f.pending.forget(corrID)
		return nil, err
	}
	return f.pending.await(ctx, entry)
}

func (f *ForkedActorParent) Tree(ctx context.Context) (*TreeNode, error) {
	v, err := f.SendAndReceive(ctx, treeTopic, 5*time.Second)
	if err != nil {
		return nil, err
	}
	return treeNodeFromAny(v)
}

func (f *ForkedActorParent) Metrics(ctx context.Context) (map[string]any, error) {
	v, err := f.SendAndReceive(ctx, metricsTopic, 5*time.Second)
	if err != nil {
		return nil, err
	}
	m, _ := v.(map[string]any)
	return m, nil
}

func (f *ForkedActorParent) Destroy(ctx context.Context) error {
	if !f.beginDestroy() {
		return nil
	}
	destroyEnv := envelope.New(f.correlator.Next(), f.actorID, envelope.TypeDestroyActor)
	ackCh := make(chan struct{}, 1)
	f.bus.OnMessage(func(env *envelope.Envelope, _ net.Listener) {
		f.handleMessage(env, nil)
		if env.Type == envelope.TypeActorDestroyed {
			select {
			case ackCh <- struct{}{}:
			default:
			}
		}
	})
	f.bus.Send(destroyEnv, nil)
	select {
	case <-ackCh:
	case <-time.After(5 * time.Second):
		f.logger.Warnf("forked actor %q did not acknowledge destroy in time", f.name)
	case <-ctx.Done():
	}
	f.pending.close()
	f.stateBox.set(StateDestroyed)
	if err := f.bus.Close(); err != nil {
		f.logger.Debugf("close forked bus: %v", err)
	}
	_ = f.cmd.Wait()
	return nil
}

func (f *ForkedActorParent) beginDestroy() bool {
	if f.stateBox.compareAndSwap(StateReady, StateDestroying) {
		return true
	}
	if f.stateBox.compareAndSwap(StateNew, StateDestroying) {
		return true
	}
	if f.stateBox.compareAndSwap(StateCrashed, StateDestroying) {
		return true
	}
	return false
}

func defaultTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return 30 * time.Second
	}
	return d
}

func notReadyErrFor(s State) error {
	if s == StateNew {
		return fmt.Errorf("%w: Actor has not yet been initialized", gerrors.ErrNotReady)
	}
	return fmt.Errorf("%w: actor is %s", gerrors.ErrNotReady, s)
}

func treeNodeFromAny(v any) (*TreeNode, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected tree payload %T", gerrors.ErrMarshal, v)
	}
	node := &TreeNode{}
	node.ID, _ = m["id"].(string)
	node.Name, _ = m["name"].(string)
	node.Location, _ = m["location"].(string)
	if children, ok := m["children"].([]any); ok {
		for _, c := range children {
			childNode, err := treeNodeFromAny(c)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, childNode)
		}
	}
	return node, nil
}

// workerExecutable returns the path to re-exec as a worker process: the
// current executable, invoked with --actor-worker (see cmd/actorworker
// and Bootstrap in bootstrap.go).
func workerExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("%w: resolve worker executable: %v", gerrors.ErrTransport, err)
	}
	return exe, nil
}

var _ io.Closer = (*ForkedActorParent)(nil)

func (f *ForkedActorParent) Close() error { return f.bus.Close() }
