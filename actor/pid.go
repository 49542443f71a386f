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

	"github.com/JACKJKL/comedy/future"
	"github.com/JACKJKL/comedy/id"
	"github.com/JACKJKL/comedy/log"

	gerrors "github.com/JACKJKL/comedy/errors"
)

// PID is the in-memory actor: it invokes the user behaviour directly on
// the calling goroutine, with no internal mailbox (§4.2). It is the
// building block every other Ref implementation (forked/remote proxy,
// balancer) ultimately delegates real work to, either locally or through
// a peer process's own PID.
type PID struct {
	stateBox

	actorID string
	name    string
	mode    Mode
	parent  Ref
	system  *ActorSystem
	def     Behaviour
	logger  log.Logger

	mu                sync.RWMutex
	children          []Ref
	childrenByName    map[string]Ref
	childrenByID      map[string]Ref
	forwardList       []forwardEntry
	forwardAllUnknown Ref
	customParameters  map[string]any
}

var _ Ref = (*PID)(nil)

func newPID(system *ActorSystem, parent Ref, name string, def Behaviour, customParameters map[string]any, logger log.Logger) *PID {
	if logger == nil {
		logger = log.DefaultLogger
	}
	p := &PID{
		actorID:          id.NewActorID(),
		name:             name,
		mode:             ModeInMemory,
		parent:           parent,
		system:           system,
		def:              def,
		logger:           logger.With("actorName", name),
		childrenByName:   map[string]Ref{},
		childrenByID:     map[string]Ref{},
		customParameters: customParameters,
	}
	return p
}

// initializeSelf runs the behaviour's Initialize hook, if any, and drives
// the new→ready transition on completion (§4.1).
func (p *PID) initializeSelf(ctx context.Context) error {
	if p.def.Initialize != nil {
		if err := p.def.Initialize(ctx, p); err != nil {
			return fmt.Errorf("initialize %q: %w", p.name, err)
		}
	}
	p.stateBox.set(StateReady)
	return nil
}

func (p *PID) ID() string        { return p.actorID }
func (p *PID) Name() string      { return p.name }
func (p *PID) Mode() Mode        { return p.mode }
func (p *PID) ModeName() string  { return string(p.mode) }
func (p *PID) Parent() Ref       { return p.parent }
func (p *PID) State() State      { return p.stateBox.get() }

// notReadyErr builds the not-ready error for the actor's current state,
// matching the literal wording the invariants in §8 require for the
// pre-initialization case.
func (p *PID) notReadyErr() error {
	switch s := p.stateBox.get(); s {
	case StateNew:
		return fmt.Errorf("%w: Actor has not yet been initialized", gerrors.ErrNotReady)
	default:
		return fmt.Errorf("%w: actor is %s", gerrors.ErrNotReady, s)
	}
}

// resolveTarget applies the forwarding table (§4.1 step 2): first
// string/regex match in insertion order wins; otherwise, if the
// behaviour has no handler for topic and forwardAllUnknown is set, that
// sentinel wins.
func (p *PID) resolveTarget(topic string) (Ref, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, entry := range p.forwardList {
		if entry.matcher.Match(topic) {
			return entry.target, true
		}
	}
	if _, hasHandler := p.def.Handler(topic); !hasHandler && p.forwardAllUnknown != nil {
		return p.forwardAllUnknown, true
	}
	return nil, false
}

func (p *PID) Send(ctx context.Context, topic string, args ...any) error {
	if !p.stateBox.is(StateReady) {
		return p.notReadyErr()
	}
	if target, ok := p.resolveTarget(topic); ok {
		return target.Send(ctx, topic, args...)
	}
	_, err := p.invokeLocal(ctx, topic, args)
	if err != nil {
		p.logger.Warnf("handler error for topic %q (send, swallowed): %v", topic, err)
	}
	return nil
}

func (p *PID) SendAndReceive(ctx context.Context, topic string, timeout time.Duration, args ...any) (any, error) {
	if !p.stateBox.is(StateReady) {
		return nil, p.notReadyErr()
	}
	if target, ok := p.resolveTarget(topic); ok {
		return target.SendAndReceive(ctx, topic, timeout, args...)
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	val, err := p.invokeLocal(ctx, topic, args)
	if err != nil && ctx.Err() != nil {
		return nil, fmt.Errorf("%w", gerrors.ErrTimeout)
	}
	return val, err
}

// invokeLocal runs the registered handler for topic, if any, on the
// calling goroutine and awaits a deferred result if the handler returned
// one.
func (p *PID) invokeLocal(ctx context.Context, topic string, args []any) (result any, err error) {
	handler, ok := p.def.Handler(topic)
	if !ok {
		return nil, fmt.Errorf("%w: %s", gerrors.ErrNoHandler, topic)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", gerrors.ErrHandlerPanicked, r)
			result = nil
		}
	}()
	result, err = handler(ctx, p, args)
	if err != nil {
		return nil, err
	}
	if f, isFuture := future.IsFuture(result); isFuture {
		return f.Await(ctx)
	}
	return result, nil
}

// CreateChild creates a new child actor under p, in the mode opts.Mode
// names. Allowed while p is new or ready (§4.1).
func (p *PID) CreateChild(ctx context.Context, opts Options, def Behaviour) (Ref, error) {
	if p.stateBox.is(StateDestroying) || p.stateBox.is(StateDestroyed) || p.stateBox.is(StateCrashed) {
		return nil, p.notReadyErr()
	}
	opts = opts.withDefaults()

	p.mu.Lock()
	if opts.Name != "" {
		if _, exists := p.childrenByName[opts.Name]; exists {
			p.mu.Unlock()
			return nil, fmt.Errorf("%w: %s", gerrors.ErrActorAlreadyExists, opts.Name)
		}
	}
	p.mu.Unlock()

	var child Ref
	var err error
	if opts.ClusterSize > 1 {
		child, err = p.createCluster(ctx, opts, def)
	} else {
		child, err = p.createSingle(ctx, opts, def)
	}
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.children = append(p.children, child)
	if opts.Name != "" {
		p.childrenByName[opts.Name] = child
	}
	p.childrenByID[child.ID()] = child
	p.mu.Unlock()

	return child, nil
}

// createSingle builds exactly one child in the requested mode.
func (p *PID) createSingle(ctx context.Context, opts Options, def Behaviour) (Ref, error) {
	switch opts.Mode {
	case ModeInMemory, "":
		return p.createInMemoryChild(ctx, opts, def)
	case ModeForked:
		return newForkedActorParent(ctx, p, opts, def)
	case ModeRemote:
		return newRemoteChildRef(ctx, p, opts, def)
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", gerrors.ErrConfig, opts.Mode)
	}
}

// createCluster builds opts.ClusterSize same-mode children, unnamed
// individually, and wraps them behind a RoundRobinBalancer that becomes
// the single Ref the caller (and p's own children list) sees (§4.5).
func (p *PID) createCluster(ctx context.Context, opts Options, def Behaviour) (Ref, error) {
	memberOpts := opts
	memberOpts.Name = ""
	memberOpts.ClusterSize = 0

	members := make([]Ref, 0, opts.ClusterSize)
	for i := 0; i < opts.ClusterSize; i++ {
		member, err := p.createSingle(ctx, memberOpts, def)
		if err != nil {
			for _, m := range members {
				_ = m.Destroy(ctx)
			}
			return nil, err
		}
		members = append(members, member)
	}
	return newRoundRobinBalancer(id.NewActorID(), opts.Name, opts.Mode, p, members), nil
}

func (p *PID) createInMemoryChild(ctx context.Context, opts Options, def Behaviour) (Ref, error) {
	child := newPID(p.system, p, opts.Name, def, opts.CustomParameters, p.logger)
	if err := child.initializeSelf(ctx); err != nil {
		return nil, err
	}
	return child, nil
}

// ChildByName returns the child registered under name, if any.
func (p *PID) ChildByName(name string) (Ref, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	c, ok := p.childrenByName[name]
	return c, ok
}

// Children returns a snapshot of the actor's children.
func (p *PID) Children() []Ref {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Ref, len(p.children))
	copy(out, p.children)
	return out
}

// isChild reports whether ref is a direct child of p, by ID.
func (p *PID) isChild(ref Ref) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.childrenByID[ref.ID()]
	return ok
}

// ForwardToParent adds (topic, parent) pairs to the forward list (§4.8).
func (p *PID) ForwardToParent(topics ...string) error {
	if p.parent == nil {
		return fmt.Errorf("%w: root actor has no parent to forward to", gerrors.ErrConfig)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, m := range StringTopics(topics...) {
		p.forwardList = append(p.forwardList, forwardEntry{matcher: m, target: p.parent})
	}
	return nil
}

// ForwardAllUnknownToParent is the forwardToParent(true) sentinel: it sets
// forwardAllUnknown so any topic lacking a local handler is redirected to
// the parent.
func (p *PID) ForwardAllUnknownToParent() error {
	if p.parent == nil {
		return fmt.Errorf("%w: root actor has no parent to forward to", gerrors.ErrConfig)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.forwardAllUnknown = p.parent
	return nil
}

// ForwardToChild adds (topic, child) pairs to the forward list, after
// verifying child is actually a child of p (§4.8).
func (p *PID) ForwardToChild(child Ref, topics ...string) error {
	if !p.isChild(child) {
		return gerrors.ErrNotAChild
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, m := range StringTopics(topics...) {
		p.forwardList = append(p.forwardList, forwardEntry{matcher: m, target: child})
	}
	return nil
}

// ForwardRegexToChild forwards every topic matching re to child.
func (p *PID) ForwardRegexToChild(child Ref, re matcher) error {
	if !p.isChild(child) {
		return gerrors.ErrNotAChild
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.forwardList = append(p.forwardList, forwardEntry{matcher: re, target: child})
	return nil
}

func (p *PID) Tree(ctx context.Context) (*TreeNode, error) {
	node := &TreeNode{ID: p.actorID, Name: p.name, Location: string(p.mode)}
	for _, child := range p.Children() {
		if child.State() == StateDestroyed {
			continue
		}
		childNode, err := child.Tree(ctx)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, childNode)
	}
	return node, nil
}

func (p *PID) Metrics(ctx context.Context) (map[string]any, error) {
	result := map[string]any{}
	if p.def.Metrics != nil {
		own, err := p.def.Metrics(ctx)
		if err != nil {
			return nil, err
		}
		for k, v := range own {
			result[k] = v
		}
	}
	for _, child := range p.Children() {
		if child.State() == StateDestroyed {
			continue
		}
		cm, err := child.Metrics(ctx)
		if err != nil {
			return nil, err
		}
		if child.Name() != "" {
			result[child.Name()] = cm
		}
	}
	return result, nil
}

// Destroy destroys the actor's children depth-first, in reverse insertion
// order, then runs the behaviour's Destroy hook and transitions to
// destroyed (§4.1).
func (p *PID) Destroy(ctx context.Context) error {
	if !p.beginDestroy() {
		return nil
	}

	p.mu.Lock()
	children := make([]Ref, len(p.children))
	copy(children, p.children)
	p.children = nil
	p.childrenByName = map[string]Ref{}
	p.childrenByID = map[string]Ref{}
	p.mu.Unlock()

	var destroyErr error
	for i := len(children) - 1; i >= 0; i-- {
		if err := children[i].Destroy(ctx); err != nil {
			p.logger.Warnf("child %q failed to destroy: %v", children[i].Name(), err)
			destroyErr = multierr.Append(destroyErr, err)
		}
	}

	if p.def.Destroy != nil {
		if err := p.def.Destroy(ctx, p); err != nil {
			p.logger.Warnf("destroy hook for %q failed: %v", p.name, err)
			destroyErr = multierr.Append(destroyErr, err)
		}
	}

	p.stateBox.set(StateDestroyed)
	return destroyErr
}

// beginDestroy performs the first-call-wins ready/new/crashed→destroying
// transition; returns false if destroy has already been requested.
func (p *PID) beginDestroy() bool {
	if p.stateBox.compareAndSwap(StateReady, StateDestroying) {
		return true
	}
	if p.stateBox.compareAndSwap(StateNew, StateDestroying) {
		return true
	}
	if p.stateBox.compareAndSwap(StateCrashed, StateDestroying) {
		return true
	}
	return false
}
