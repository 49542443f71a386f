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

// Package errors collects the sentinel errors the actor runtime can
// return, following the error-kind taxonomy of the message plane: every
// failure a caller can act on programmatically is one of these values (or
// wraps one via fmt.Errorf("%w: ...", ...)).
package errors

import "errors"

var (
	// ErrNotReady is returned when send/sendAndReceive is attempted on an
	// actor that is not in the ready state. Wrap it with the concrete
	// state via fmt.Errorf("%w: ...") for a descriptive message.
	ErrNotReady = errors.New("actor is not ready")

	// ErrNoHandler is returned when a topic has no registered handler and
	// no forwarding rule matched.
	ErrNoHandler = errors.New("no handler for message")

	// ErrHandlerPanicked is returned when a user handler panicked instead
	// of returning an error.
	ErrHandlerPanicked = errors.New("handler panicked")

	// ErrTransport is returned when a bus send fails or the peer process
	// has exited.
	ErrTransport = errors.New("transport error")

	// ErrTimeout is returned when a pending sendAndReceive exceeded its
	// deadline before a response arrived.
	ErrTimeout = errors.New("response timed out")

	// ErrConfig is returned for configuration problems: unknown mode,
	// unknown cluster, missing marshaller, cyclic resource dependency.
	ErrConfig = errors.New("configuration error")

	// ErrMarshal is returned when an envelope or reference fails to
	// encode or decode.
	ErrMarshal = errors.New("marshal error")

	// ErrActorNotFound is returned by a RoundRobinBalancer that has no
	// children left to pick from.
	ErrActorNotFound = errors.New("actor not found")

	// ErrActorAlreadyExists is returned when CreateActor is called with a
	// name that collides with an existing child.
	ErrActorAlreadyExists = errors.New("actor already exists")

	// ErrNotAChild is returned by forwardToChild when the given reference
	// is not a child of the current actor.
	ErrNotAChild = errors.New("reference is not a child of this actor")

	// ErrSystemNotStarted reports that an ActorSystem is not running.
	// ActorSystem has no Start method, and nothing in this module returns
	// it.
	ErrSystemNotStarted = errors.New("actor system has not started")

	// ErrSystemAlreadyStarted reports a second start of an ActorSystem.
	// Nothing in this module returns it.
	ErrSystemAlreadyStarted = errors.New("actor system has already started")

	// ErrCyclicDependency is returned when a resource dependency graph
	// contains a cycle.
	ErrCyclicDependency = errors.New("cyclic resource dependency")

	// ErrUnknownMarshaller names the case of an argument type with no
	// entry in the marshaller registry. Nothing in this module returns it:
	// marshal.Registry falls back to generic MessagePack for such types.
	ErrUnknownMarshaller = errors.New("no marshaller registered for type")

	// ErrHandleTransferUnsupported is returned when a caller attempts to
	// transfer a listening-socket handle over a bus that does not support
	// it (the socket bus).
	ErrHandleTransferUnsupported = errors.New("handle transfer is not supported on this bus")
)

// Is reports whether err wraps target, a thin re-export of errors.Is so
// callers do not need to import the standard library package alongside
// this one.
func Is(err, target error) bool { return errors.Is(err, target) }

// New is a thin re-export of errors.New, kept here so every sentinel in
// the runtime (including ad hoc ones defined closer to their point of use)
// reads the same way.
func New(text string) error { return errors.New(text) }
