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

// Package id mints the two identifier kinds the message plane depends on:
// globally unique actor IDs, and per-bus monotonic correlation IDs.
package id

import (
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/atomic"
)

// NewActorID returns a fresh, globally unique actor identifier. Actor IDs
// are UUIDv4 strings; uniqueness across processes is what lets a reference
// minted in one process be compared for identity after crossing into
// another.
func NewActorID() string {
	return uuid.New().String()
}

// Correlator mints correlation IDs that are unique for the lifetime of a
// single bus endpoint. IDs are never reused while a response to them is
// still pending (the caller is responsible for retiring the ID from its
// pending-responses table once the correlated response, or a timeout,
// arrives).
type Correlator struct {
	counter atomic.Uint64
	prefix  string
}

// NewCorrelator creates a Correlator. prefix distinguishes IDs minted by
// different endpoints sharing a log (e.g. "parent" vs "child") and is
// purely cosmetic; uniqueness comes from the monotonic counter.
func NewCorrelator(prefix string) *Correlator {
	return &Correlator{prefix: prefix}
}

// Next returns the next correlation ID for this endpoint.
func (c *Correlator) Next() string {
	n := c.counter.Inc()
	if c.prefix == "" {
		return strconv.FormatUint(n, 10)
	}
	return c.prefix + "-" + strconv.FormatUint(n, 10)
}
