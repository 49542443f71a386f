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
	"container/heap"
	"context"
	"sync"
	"time"

	gerrors "github.com/JACKJKL/comedy/errors"
)

// pendingEntry is one in-flight request waiting for an actor-response
// envelope, or for its deadline to pass (§5 "a pending-responses table").
type pendingEntry struct {
	correlationID string
	deadline      time.Time
	resultCh      chan pendingResult
	heapIndex     int
}

type pendingResult struct {
	value any
	err   error
}

// pendingTable tracks one owning Ref's (forked/remote proxy's) in-flight
// requests. It is intentionally scoped per-proxy rather than singleton on
// ActorSystem: each proxy owns exactly the bus correlation-ID namespace it
// hands out, so cross-proxy collisions cannot occur and no global lock is
// needed on the hot path (see DESIGN.md for this resolved open question).
type pendingTable struct {
	mu      sync.Mutex
	entries map[string]*pendingEntry
	deadlines pendingHeap
	stopCh  chan struct{}
	once    sync.Once
}

func newPendingTable() *pendingTable {
	t := &pendingTable{entries: map[string]*pendingEntry{}, stopCh: make(chan struct{})}
	go t.sweepLoop()
	return t
}

// register opens a new pending entry for correlationID with the given
// absolute deadline. The caller later calls await to block for the
// result.
func (t *pendingTable) register(correlationID string, deadline time.Time) *pendingEntry {
	e := &pendingEntry{
		correlationID: correlationID,
		deadline:      deadline,
		resultCh:      make(chan pendingResult, 1),
	}
	t.mu.Lock()
	t.entries[correlationID] = e
	heap.Push(&t.deadlines, e)
	t.mu.Unlock()
	return e
}

// resolve delivers a value/err pair to the entry registered for
// correlationID, if it is still pending. Called from the bus's message
// handler when an actor-response envelope arrives.
func (t *pendingTable) resolve(correlationID string, value any, err error) {
	t.mu.Lock()
	e, ok := t.entries[correlationID]
	if ok {
		delete(t.entries, correlationID)
		t.removeFromHeapLocked(e)
	}
	t.mu.Unlock()
	if !ok {
		return
	}
	e.resultCh <- pendingResult{value: value, err: err}
}

// await blocks until e is resolved, ctx is done, or e's deadline passes.
func (t *pendingTable) await(ctx context.Context, e *pendingEntry) (any, error) {
	select {
	case r := <-e.resultCh:
		return r.value, r.err
	case <-ctx.Done():
		t.forget(e.correlationID)
		return nil, ctx.Err()
	}
}

// forget removes an entry without delivering a result, used when the
// caller gives up waiting.
func (t *pendingTable) forget(correlationID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.entries[correlationID]; ok {
		delete(t.entries, correlationID)
		t.removeFromHeapLocked(e)
	}
}

func (t *pendingTable) removeFromHeapLocked(e *pendingEntry) {
	if e.heapIndex >= 0 && e.heapIndex < t.deadlines.Len() && t.deadlines[e.heapIndex] == e {
		heap.Remove(&t.deadlines, e.heapIndex)
	}
}

// sweepLoop polls once a second for entries past their deadline and
// resolves them with ErrTimeout, matching the source's timer-based
// pending-response cleanup.
func (t *pendingTable) sweepLoop() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-t.stopCh:
			return
		case <-ticker.C:
			t.sweepOnce()
		}
	}
}

func (t *pendingTable) sweepOnce() {
	now := time.Now()
	var expired []*pendingEntry
	t.mu.Lock()
	for t.deadlines.Len() > 0 {
		e := t.deadlines[0]
		if e.deadline.After(now) {
			break
		}
		heap.Pop(&t.deadlines)
		delete(t.entries, e.correlationID)
		expired = append(expired, e)
	}
	t.mu.Unlock()
	for _, e := range expired {
		e.resultCh <- pendingResult{err: gerrors.ErrTimeout}
	}
}

// close stops the sweep goroutine and fails every still-pending entry.
func (t *pendingTable) close() {
	t.once.Do(func() {
		close(t.stopCh)
	})
	t.mu.Lock()
	remaining := make([]*pendingEntry, 0, len(t.entries))
	for _, e := range t.entries {
		remaining = append(remaining, e)
	}
	t.entries = map[string]*pendingEntry{}
	t.deadlines = nil
	t.mu.Unlock()
	for _, e := range remaining {
		e.resultCh <- pendingResult{err: gerrors.ErrTransport}
	}
}

// pendingHeap is a min-heap of *pendingEntry ordered by deadline.
type pendingHeap []*pendingEntry

func (h pendingHeap) Len() int            { return len(h) }
func (h pendingHeap) Less(i, j int) bool  { return h[i].deadline.Before(h[j].deadline) }
func (h pendingHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIndex = i
	h[j].heapIndex = j
}

func (h *pendingHeap) Push(x any) {
	e := x.(*pendingEntry)
	e.heapIndex = len(*h)
	*h = append(*h, e)
}

func (h *pendingHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.heapIndex = -1
	*h = old[:n-1]
	return e
}
