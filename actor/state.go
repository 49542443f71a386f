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

import "go.uber.org/atomic"

// State is the actor lifecycle state machine: new → ready → destroying →
// destroyed, plus the sideband terminal state crashed reachable from
// ready when a forked/remote peer dies without returning a response.
type State int32

const (
	StateNew State = iota
	StateReady
	StateDestroying
	StateDestroyed
	StateCrashed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateReady:
		return "ready"
	case StateDestroying:
		return "destroying"
	case StateDestroyed:
		return "destroyed"
	case StateCrashed:
		return "crashed"
	default:
		return "unknown"
	}
}

// stateBox is an atomically-guarded State, embedded by every Ref
// implementation that has a state machine (PID, ForkedActorParent,
// RemoteActorParent).
type stateBox struct {
	v atomic.Int32
}

func (b *stateBox) get() State      { return State(b.v.Load()) }
func (b *stateBox) set(s State)     { b.v.Store(int32(s)) }
func (b *stateBox) is(s State) bool { return b.get() == s }

// compareAndSwap transitions the state only if it currently equals from,
// keeping transitions monotonic (§4.1).
func (b *stateBox) compareAndSwap(from, to State) bool {
	return b.v.CompareAndSwap(int32(from), int32(to))
}
