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
	"time"

	"github.com/JACKJKL/comedy/bus"
	"github.com/JACKJKL/comedy/envelope"
	gerrors "github.com/JACKJKL/comedy/errors"
	"github.com/JACKJKL/comedy/id"
	"github.com/JACKJKL/comedy/log"
	"github.com/JACKJKL/comedy/marshal"
)

// workerFlag is the argument cmd/actorworker passes to mark a process as
// a worker rather than a top-level program; Bootstrap recognizes it and
// takes over the process's stdin/stdout as a pipe bus (§6 addendum).
const workerFlag = "--actor-worker"

// Bootstrap is the entry point a forked or remote worker process runs
// instead of whatever main() its own binary would otherwise execute: it
// recognizes workerFlag in args, takes over stdin/stdout as a pipe bus,
// waits for the create-actor envelope, constructs the named behaviour via
// the process-local Registry, and then answers actor-message envelopes
// until destroyed (§4.3, §6 addendum, §9).
func Bootstrap(ctx context.Context, args []string) error {
	isWorker := false
	for _, a := range args {
		if a == workerFlag {
			isWorker = true
		}
	}
	if !isWorker {
		return fmt.Errorf("%w: Bootstrap called without %s", gerrors.ErrConfig, workerFlag)
	}
	return runWorker(ctx, log.DefaultLogger)
}

// runWorker drives a single worker process end to end: it owns exactly
// one actor, constructed from the first create-actor envelope it
// receives, and exits once that actor is destroyed or its bus exits.
func runWorker(ctx context.Context, logger log.Logger) error {
	pipeBus := bus.NewPipeBus(os.Stdin, os.Stdout, logger)
	defer pipeBus.Close()

	w := &workerActor{bus: pipeBus, logger: logger}
	done := make(chan struct{})
	pipeBus.OnMessage(func(env *envelope.Envelope, handle net.Listener) {
		w.handle(ctx, env, handle, done)
	})
	pipeBus.OnExit(func() {
		select {
		case <-done:
		default:
			close(done)
		}
	})

	select {
	case <-done:
	case <-ctx.Done():
	}
	return nil
}

// workerActor holds the single PID a worker process has spawned, plus the
// bus it answers envelopes over.
type workerActor struct {
	bus        bus.Bus
	logger     log.Logger
	pid        *PID
	marshals   *marshal.Registry
	correlator *id.Correlator
	pending    *pendingTable
}

// routeBack sends topic/args back to the actor identified by the token
// this remoteRef was reconstructed from, over the worker's own bus.
func (w *workerActor) routeBack(ctx context.Context, topic string, timeout time.Duration, expectReply bool, args []any) (any, error) {
	if w.correlator == nil {
		w.correlator = id.NewCorrelator("worker")
		w.pending = newPendingTable()
	}
	encodedArgs, err := marshalArgs(w.marshals, args)
	if err != nil {
		return nil, err
	}
	corrID := w.correlator.Next()
	env := envelope.New(corrID, "", envelope.TypeActorMessage)
	env.Set("topic", topic)
	env.Set("args", encodedArgs)
	env.Set("expectReply", expectReply)

	if !expectReply {
		sendErr := make(chan error, 1)
		w.bus.Send(env, func(err error) { sendErr <- err })
		return nil, <-sendErr
	}
	deadline := time.Now().Add(defaultTimeout(timeout))
	entry := w.pending.register(corrID, deadline)
	sendErr := make(chan error, 1)
	w.bus.Send(env, func(err error) { sendErr <- err })
	if err := <-sendErr; err != nil {
		w.pending.forget(corrID)
		return nil, err
	}
	return w.pending.await(ctx, entry)
}

func (w *workerActor) handle(ctx context.Context, env *envelope.Envelope, handle net.Listener, done chan struct{}) {
	switch env.Type {
	case envelope.TypeCreateActor:
		w.create(ctx, env)
	case envelope.TypeActorMessage:
		w.dispatch(ctx, env)
	case envelope.TypeActorResponse:
		if w.pending != nil {
			corrID := env.GetString("correlationId")
			if errMsg := env.GetString("error"); errMsg != "" {
				w.pending.resolve(corrID, nil, fmt.Errorf("%s", errMsg))
			} else {
				raw, _ := env.Get("value")
				value, err := unmarshalValue(w.marshals, raw, w.routeBack)
				w.pending.resolve(corrID, value, err)
			}
		}
	case envelope.TypeDestroyActor:
		w.destroy(ctx, env, done)
	}
}

func (w *workerActor) create(ctx context.Context, env *envelope.Envelope) {
	key := env.GetString("behaviourKey")
	factory, err := LookupBehaviour(key)
	if err != nil {
		w.logger.Errorf("create-actor failed: %v", err)
		return
	}
	customParams, _ := env.Get("customParameters")
	paramsMap, _ := customParams.(map[string]any)
	def, err := factory(paramsMap)
	if err != nil {
		w.logger.Errorf("behaviour factory %q failed: %v", key, err)
		return
	}

	sys, err := NewSystem(Options{}, Behaviour{}, w.logger)
	if err != nil {
		w.logger.Errorf("create worker actor system: %v", err)
		return
	}
	child, err := sys.root.CreateChild(ctx, Options{Mode: ModeInMemory}, def)
	if err != nil {
		w.logger.Errorf("create worker actor: %v", err)
		return
	}
	w.pid = child.(*PID)
	w.marshals = sys.Marshallers()

	ack := envelope.New(env.ID, env.ActorID, envelope.TypeActorCreated)
	w.bus.Send(ack, nil)
}

// dispatch answers one actor-message envelope. $tree/$metrics are
// intercepted before the generic marshal pipeline runs, since a tree or
// metrics snapshot is framework introspection rather than a Behaviour
// payload (§4.1, §4.3); everything else is decoded through the system's
// marshaller registry, handed to the behaviour, and the result
// re-encoded the same way for the trip back.
func (w *workerActor) dispatch(ctx context.Context, env *envelope.Envelope) {
	if w.pid == nil {
		return
	}
	topic := env.GetString("topic")
	expectReply := env.GetBool("expectReply")

	var value any
	var err error
	switch topic {
	case treeTopic:
		var tree *TreeNode
		tree, err = w.pid.Tree(ctx)
		if err == nil {
			value = treeNodeToMap(tree)
		}
	case metricsTopic:
		value, err = w.pid.Metrics(ctx)
	default:
		rawArgs, _ := env.Get("args")
		rawArgList, _ := rawArgs.([]any)
		var args []any
		args, err = unmarshalArgs(w.marshals, rawArgList, w.routeBack)
		if err == nil {
			if !expectReply {
				_ = w.pid.Send(ctx, topic, args...)
				return
			}
			value, err = w.pid.SendAndReceive(ctx, topic, 0, args...)
		}
	}

	if !expectReply {
		return
	}

	resp := envelope.New(env.ID, env.ActorID, envelope.TypeActorResponse)
	resp.Set("correlationId", env.ID)
	if err != nil {
		resp.Set("error", err.Error())
		w.bus.Send(resp, nil)
		return
	}
	if topic == treeTopic || topic == metricsTopic {
		resp.Set("value", value)
	} else {
		encoded, encErr := marshalValue(w.marshals, value)
		if encErr != nil {
			resp.Set("error", encErr.Error())
		} else {
			resp.Set("value", encoded)
		}
	}
	w.bus.Send(resp, nil)
}

func (w *workerActor) destroy(ctx context.Context, env *envelope.Envelope, done chan struct{}) {
	if w.pid != nil {
		_ = w.pid.Destroy(ctx)
	}
	destroyed := envelope.New(env.ID, env.ActorID, envelope.TypeActorDestroyed)
	w.bus.Send(destroyed, nil)
	select {
	case <-done:
	default:
		close(done)
	}
}
