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
	"fmt"
	"sync"

	gerrors "github.com/JACKJKL/comedy/errors"
)

// Registry resolves a BehaviourFactory by key for forked/remote workers
// bootstrapping themselves from a create-actor envelope (§9). It is
// process-local: a worker process registers its factories via init()-time
// calls to RegisterBehaviour before Bootstrap runs.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]BehaviourFactory
}

var defaultRegistry = &Registry{factories: map[string]BehaviourFactory{}}

// RegisterBehaviour registers factory under key in the process-global
// registry. Typically called from an init() function, by convention keyed
// on the calling package's import path.
func RegisterBehaviour(key string, factory BehaviourFactory) {
	defaultRegistry.Register(key, factory)
}

// LookupBehaviour resolves key in the process-global registry.
func LookupBehaviour(key string) (BehaviourFactory, error) {
	return defaultRegistry.Lookup(key)
}

// Register adds factory under key, overwriting any prior registration for
// the same key.
func (r *Registry) Register(key string, factory BehaviourFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[key] = factory
}

// Lookup resolves key, or returns ErrConfig if nothing is registered.
func (r *Registry) Lookup(key string) (BehaviourFactory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[key]
	if !ok {
		return nil, fmt.Errorf("%w: no behaviour registered for key %q", gerrors.ErrConfig, key)
	}
	return f, nil
}
