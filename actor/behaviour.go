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

import "context"

// HandlerFunc answers one topic. It may return a plain value, or a
// *future.Future value for deferred results (§4.2 addendum); the
// dispatcher awaits either uniformly before producing a response.
type HandlerFunc func(ctx context.Context, self Ref, args []any) (any, error)

// Behaviour is the user-supplied record of handlers and lifecycle hooks a
// new actor is constructed from (§9 "Dynamic dispatch on behaviour
// objects" — a capability record, not an inheritance hierarchy).
type Behaviour struct {
	// Handlers maps topic to the function that answers it.
	Handlers map[string]HandlerFunc
	// Initialize runs once while the actor is in state `new`; its
	// completion drives the new→ready transition. May be nil.
	Initialize func(ctx context.Context, self Ref) error
	// Destroy runs once the actor enters `destroying`, after all children
	// have been destroyed but before the actor itself becomes
	// `destroyed`. May be nil.
	Destroy func(ctx context.Context, self Ref) error
	// Metrics returns this actor's own metric map, merged by Metrics()
	// with its children's. May be nil, which behaves as an empty map.
	Metrics func(ctx context.Context) (map[string]any, error)
}

// Handler returns the handler registered for topic, if any.
func (b Behaviour) Handler(topic string) (HandlerFunc, bool) {
	if b.Handlers == nil {
		return nil, false
	}
	h, ok := b.Handlers[topic]
	return h, ok
}

// BehaviourFactory builds a fresh Behaviour for a forked or remote worker
// bootstrapping itself from a create-actor envelope. Because Go cannot
// load code by an arbitrary string path the way the source's "module
// path" dispatch implies, the core instead resolves a factory out of a
// process-local Registry by a string key the caller chooses (typically
// the Go import path of the package that calls RegisterBehaviour, by
// convention) — see registry.go.
type BehaviourFactory func(customParameters map[string]any) (Behaviour, error)
