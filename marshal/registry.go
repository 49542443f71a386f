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

// Package marshal implements the payload-marshaller registry and the
// token codecs for the two system-supplied reference marshallers
// (InterProcessReference, InterHostReference). It deliberately knows
// nothing about actors, buses or transports — it only shapes and unshapes
// bytes — so that package actor (which does know about those things) can
// depend on it without creating an import cycle.
package marshal

import (
	"errors"
	"fmt"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	gerrors "github.com/JACKJKL/comedy/errors"
)

// Marshaller is a user-registered encoder/decoder for one or more payload
// type names, exactly as described in §4.6: {type, marshall, unmarshall,
// destroy?}.
type Marshaller interface {
	// Types returns the type name(s) this marshaller handles.
	Types() []string
	// Marshal encodes v to its wire representation.
	Marshal(v any) ([]byte, error)
	// Unmarshal decodes the wire representation back into a value.
	Unmarshal(data []byte) (any, error)
}

// Destroyer is optionally implemented by a Marshaller that holds
// resources (e.g. a connection pool) needing an explicit teardown when the
// registry, or the system that owns it, is destroyed.
type Destroyer interface {
	Destroy() error
}

// Registry is the system-wide, type-name-keyed table of marshallers. It
// is safe for concurrent use.
type Registry struct {
	mu   sync.RWMutex
	byType map[string]Marshaller
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byType: map[string]Marshaller{}}
}

// Register adds m under every type name it declares, overwriting any
// marshaller previously registered for that name.
func (r *Registry) Register(m Marshaller) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range m.Types() {
		r.byType[t] = m
	}
}

// For returns the marshaller registered for typeName, if any.
func (r *Registry) For(typeName string) (Marshaller, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byType[typeName]
	return m, ok
}

// Destroy tears down every registered marshaller that implements
// Destroyer. Errors are collected, not short-circuited, mirroring the
// teacher's "log and continue" destroy semantics for children.
func (r *Registry) Destroy() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := map[Marshaller]bool{}
	var errs []error
	for _, m := range r.byType {
		if seen[m] {
			continue
		}
		seen[m] = true
		if d, ok := m.(Destroyer); ok {
			if err := d.Destroy(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// MarshalValue encodes v using the marshaller registered for typeName, or
// falls back to generic MessagePack encoding (covering plain strings,
// numbers, slices and maps) when no marshaller has been registered for
// that type — this lets the seed scenarios pass unregistered scalar and
// slice arguments straight through the envelope pipeline.
func (r *Registry) MarshalValue(typeName string, v any) ([]byte, error) {
	if m, ok := r.For(typeName); ok {
		return m.Marshal(v)
	}
	b, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", gerrors.ErrMarshal, err)
	}
	return b, nil
}

// UnmarshalValue is the inverse of MarshalValue. When no marshaller is
// registered for typeName it decodes generically into `any`.
func (r *Registry) UnmarshalValue(typeName string, data []byte) (any, error) {
	if m, ok := r.For(typeName); ok {
		return m.Unmarshal(data)
	}
	var v any
	if err := msgpack.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", gerrors.ErrMarshal, err)
	}
	return v, nil
}
