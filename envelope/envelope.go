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

// Package envelope defines the wire protocol shared by the forked (pipe)
// and remote (socket) transports: a small, closed set of envelope types
// and a canonical MessagePack/JSON encoding for them. Nothing in this
// package knows about actors, buses or processes — it is the protocol
// alone, so both bus implementations in package bus can depend on it
// without depending on each other.
package envelope

// Type enumerates the envelope kinds the parent/child proxies exchange.
// This is the complete alphabet of the protocol; no other type values are
// valid on the wire.
type Type string

const (
	TypeCreateActor       Type = "create-actor"
	TypeActorCreated      Type = "actor-created"
	TypeActorMessage      Type = "actor-message"
	TypeActorResponse     Type = "actor-response"
	TypeActorTree         Type = "actor-tree"
	TypeActorMetrics      Type = "actor-metrics"
	TypeDestroyActor      Type = "destroy-actor"
	TypeActorDestroyed    Type = "actor-destroyed"
	TypeActorDestroyedAck Type = "actor-destroyed-ack"
	TypeParentPing        Type = "parent-ping"
	TypeParentPong        Type = "parent-pong"
)

// HandleType names the kind of OS-level listening handle a message body
// carries out of band. Only meaningful on the pipe bus.
type HandleType string

const (
	HandleTypeNetServer  HandleType = "net.Server"
	HandleTypeHTTPServer HandleType = "http.Server"
)

// Envelope is the protocol unit carried over a bus, identified by
// (Type, ID, ActorID). Every envelope carries these four fields; Body
// holds the type-specific payload as a generic map so that the codec does
// not need a Go type per envelope kind.
type Envelope struct {
	ID      string         `msgpack:"id" json:"id"`
	ActorID string         `msgpack:"actorId" json:"actorId"`
	Type    Type           `msgpack:"type" json:"type"`
	Body    map[string]any `msgpack:"body,omitempty" json:"body,omitempty"`

	// HasHandle is set when this envelope is paired with an out-of-band
	// OS listening-socket handle transferred natively by the bus. The
	// handle itself never appears in Body or on the wire frame; see
	// bus.Bus.SendHandle.
	HasHandle bool `msgpack:"hasHandle,omitempty" json:"hasHandle,omitempty"`
}

// New creates an Envelope with a fresh body map, ready for callers to
// populate via the Set* helpers below.
func New(id, actorID string, typ Type) *Envelope {
	return &Envelope{ID: id, ActorID: actorID, Type: typ, Body: map[string]any{}}
}

// Get returns Body[key] and whether it was present.
func (e *Envelope) Get(key string) (any, bool) {
	if e.Body == nil {
		return nil, false
	}
	v, ok := e.Body[key]
	return v, ok
}

// GetString returns Body[key] coerced to a string, or "" if absent or of
// the wrong type.
func (e *Envelope) GetString(key string) string {
	if v, ok := e.Get(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetBool returns Body[key] coerced to a bool.
func (e *Envelope) GetBool(key string) bool {
	if v, ok := e.Get(key); ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

// Set stores key/value in the envelope body, creating the body map if
// needed.
func (e *Envelope) Set(key string, value any) *Envelope {
	if e.Body == nil {
		e.Body = map[string]any{}
	}
	e.Body[key] = value
	return e
}
