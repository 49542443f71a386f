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

// Package future provides a minimal deferred-value type. Actor handlers
// that cannot produce their result synchronously return a *Future instead
// of a plain value; the dispatcher awaits it uniformly before emitting a
// response.
package future

import (
	"context"
	"fmt"

	gerrors "github.com/JACKJKL/comedy/errors"
)

// Future represents a value that will become available later, produced by
// a handler that needs to do asynchronous work (an RPC, a timer, a
// goroutine) before it can answer a sendAndReceive.
type Future struct {
	done chan struct{}
	val  any
	err  error
}

// New starts fn on its own goroutine and returns a Future that resolves to
// its result. A panic inside fn is recovered and reported as an error, the
// same way a panicking in-memory handler is reported (see errors.ErrHandlerPanicked
// callers).
func New(fn func(context.Context) (any, error)) *Future {
	f := &Future{done: make(chan struct{})}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				f.err = fmt.Errorf("%w: %v", gerrors.ErrHandlerPanicked, r)
			}
			close(f.done)
		}()
		f.val, f.err = fn(context.Background())
	}()
	return f
}

// Await blocks until the future resolves or ctx is cancelled, whichever
// comes first.
func (f *Future) Await(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// IsFuture reports whether v is a deferred value the dispatcher must await
// rather than a value it can return directly.
func IsFuture(v any) (*Future, bool) {
	f, ok := v.(*Future)
	return f, ok
}
