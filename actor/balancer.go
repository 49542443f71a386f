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
	"sync"
	"time"

	"go.uber.org/multierr"

	gerrors "github.com/JACKJKL/comedy/errors"
)

// RoundRobinBalancer is the Ref a caller actually gets back for a
// clustered actor (ClusterSize > 1 or Cluster set): it fans Send and
// SendAndReceive out to its children in round-robin order, and exposes
// Broadcast/BroadcastAndReceive for callers that want every child to see
// a message (§4.5, §4.7).
type RoundRobinBalancer struct {
	stateBox

	actorID string
	name    string
	mode    Mode
	parent  Ref

	mu       sync.Mutex
	children []Ref
	next     int
}

var _ Ref = (*RoundRobinBalancer)(nil)

func newRoundRobinBalancer(id, name string, mode Mode, parent Ref, children []Ref) *RoundRobinBalancer {
	b := &RoundRobinBalancer{actorID: id, name: name, mode: mode, parent: parent, children: children}
	b.stateBox.set(StateReady)
	return b
}

func (b *RoundRobinBalancer) ID() string   { return b.actorID }
func (b *RoundRobinBalancer) Name() string { return b.name }

// Mode and ModeName report the cluster's declared mode label (e.g.
// "forked" or "remote"), not a distinct "cluster" mode of their own — the
// balancer is a routing strategy layered over a set of same-mode
// children, per the resolved open question in SPEC_FULL.md §9.
func (b *RoundRobinBalancer) Mode() Mode       { return b.mode }
func (b *RoundRobinBalancer) ModeName() string { return string(b.mode) }
func (b *RoundRobinBalancer) Parent() Ref      { return b.parent }

// pick returns the next child in round-robin order.
func (b *RoundRobinBalancer) pick() (Ref, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.children) == 0 {
		return nil, fmt.Errorf("%w: cluster %q has no children", gerrors.ErrActorNotFound, b.name)
	}
	child := b.children[b.next%len(b.children)]
	b.next++
	return child, nil
}

func (b *RoundRobinBalancer) Send(ctx context.Context, topic string, args ...any) error {
	child, err := b.pick()
	if err != nil {
		return err
	}
	return child.Send(ctx, topic, args...)
}

func (b *RoundRobinBalancer) SendAndReceive(ctx context.Context, topic string, timeout time.Duration, args ...any) (any, error) {
	child, err := b.pick()
	if err != nil {
		return nil, err
	}
	return child.SendAndReceive(ctx, topic, timeout, args...)
}

// Broadcast sends topic/args to every child without waiting for replies.
func (b *RoundRobinBalancer) Broadcast(ctx context.Context, topic string, args ...any) error {
	b.mu.Lock()
	children := make([]Ref, len(b.children))
	copy(children, b.children)
	b.mu.Unlock()

	var firstErr error
	for _, child := range children {
		if err := child.Send(ctx, topic, args...); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// BroadcastAndReceive sends topic/args to every child and collects each
// response, in child order, stopping at the first error.
func (b *RoundRobinBalancer) BroadcastAndReceive(ctx context.Context, topic string, timeout time.Duration, args ...any) ([]any, error) {
	b.mu.Lock()
	children := make([]Ref, len(b.children))
	copy(children, b.children)
	b.mu.Unlock()

	results := make([]any, len(children))
	for i, child := range children {
		v, err := child.SendAndReceive(ctx, topic, timeout, args...)
		if err != nil {
			return nil, err
		}
		results[i] = v
	}
	return results, nil
}

func (b *RoundRobinBalancer) Tree(ctx context.Context) (*TreeNode, error) {
	node := &TreeNode{ID: b.actorID, Name: b.name, Location: string(b.mode)}
	b.mu.Lock()
	children := make([]Ref, len(b.children))
	copy(children, b.children)
	b.mu.Unlock()
	for _, child := range children {
		childNode, err := child.Tree(ctx)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, childNode)
	}
	return node, nil
}

func (b *RoundRobinBalancer) Metrics(ctx context.Context) (map[string]any, error) {
	result := map[string]any{}
	b.mu.Lock()
	children := make([]Ref, len(b.children))
	copy(children, b.children)
	b.mu.Unlock()
	for _, child := range children {
		m, err := child.Metrics(ctx)
		if err != nil {
			return nil, err
		}
		if child.Name() != "" {
			result[child.Name()] = m
		}
	}
	return result, nil
}

func (b *RoundRobinBalancer) Destroy(ctx context.Context) error {
	if !b.stateBox.compareAndSwap(StateReady, StateDestroying) {
		return nil
	}
	b.mu.Lock()
	children := make([]Ref, len(b.children))
	copy(children, b.children)
	b.children = nil
	b.mu.Unlock()

	var destroyErr error
	for i := len(children) - 1; i >= 0; i-- {
		if err := children[i].Destroy(ctx); err != nil {
			destroyErr = multierr.Append(destroyErr, err)
		}
	}
	b.stateBox.set(StateDestroyed)
	return destroyErr
}

func (b *RoundRobinBalancer) State() State { return b.stateBox.get() }
