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
	"time"
)

// Ref is a small value that identifies an actor across boundaries and is
// the uniform handle every caller programs against, regardless of which
// of the three modes the referenced actor actually runs in (§3 "Actor
// reference"). PID implements Ref for in-memory actors; ForkedActorParent,
// RemoteActorParent and the round-robin Balancer implement it for the
// other cases.
type Ref interface {
	// ID returns the actor's globally unique identifier.
	ID() string
	// Name returns the actor's name, which may be empty.
	Name() string
	// ModeName returns the textual mode, also satisfying
	// marshal.ActorRef so references can be marshalled without package
	// marshal importing this package.
	ModeName() string
	// Mode returns the actor's execution mode.
	Mode() Mode
	// Send delivers topic/args to the actor without waiting for a
	// response.
	Send(ctx context.Context, topic string, args ...any) error
	// SendAndReceive delivers topic/args and waits up to timeout for the
	// handler's response. On an in-memory actor a zero timeout means no
	// deadline; proxies that send over a bus (forked, remote, and refs
	// reconstructed from a marshalled token) use 30s instead.
	SendAndReceive(ctx context.Context, topic string, timeout time.Duration, args ...any) (any, error)
	// Tree returns this actor's subtree.
	Tree(ctx context.Context) (*TreeNode, error)
	// Metrics returns this actor's metrics merged with its children's.
	Metrics(ctx context.Context) (map[string]any, error)
	// Destroy tears the actor down, depth-first.
	Destroy(ctx context.Context) error
	// Parent returns the actor's parent, or nil for a root actor.
	Parent() Ref
	// State returns the current lifecycle state.
	State() State
}

// TreeNode is the depth-first tree shape produced by Tree() (§4.1).
type TreeNode struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Location string      `json:"location"`
	Children []*TreeNode `json:"children,omitempty"`
}
