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
	"time"

	"github.com/JACKJKL/comedy/marshal"
)

// treeTopic and metricsTopic are the pseudo-topics a forked/remote proxy
// sends over its bus to ask the worker for Tree()/Metrics() instead of
// invoking the behaviour (§4.1, §4.3). They never reach a Behaviour
// handler: workerActor.dispatch intercepts them before the generic
// marshal pipeline runs.
const (
	treeTopic    = "$tree"
	metricsTopic = "$metrics"
)

// refRouter is the shape remoteRef.route expects: it resends topic/args
// over whichever bus delivered the token the Ref was reconstructed from.
// ForkedActorParent.dispatch, RemoteActorParent.dispatch and
// workerActor.routeBack all already have this exact signature, so each
// can be passed directly as a refRouter.
type refRouter func(ctx context.Context, topic string, timeout time.Duration, expectReply bool, args []any) (any, error)

// payloadTypeName picks the registry type name a value marshals under: an
// actor Ref always goes through the system's registered reference
// marshaller (InterProcessReference or InterHostReference), everything
// else is looked up by its concrete Go type name (§4.6).
func payloadTypeName(v any) string {
	if _, ok := v.(Ref); ok {
		return refTypeName
	}
	return fmt.Sprintf("%T", v)
}

// marshalValue encodes v through reg and wraps the result with the type
// name it was encoded under, so the receiving side knows which marshaller
// to invert it with without needing a shared Go type registry of its own.
func marshalValue(reg *marshal.Registry, v any) (any, error) {
	typeName := payloadTypeName(v)
	data, err := reg.MarshalValue(typeName, v)
	if err != nil {
		return nil, err
	}
	return map[string]any{"marshalledType": typeName, "data": data}, nil
}

// unmarshalValue is the inverse of marshalValue. A decoded actor.Ref
// token is reconstructed into a remoteRef that sends back through route;
// anything not shaped like a marshalValue envelope (e.g. a value that
// predates this pipeline, or one a future wire version sends bare) passes
// through unchanged rather than failing the whole call.
func unmarshalValue(reg *marshal.Registry, raw any, route refRouter) (any, error) {
	entry, ok := raw.(map[string]any)
	if !ok {
		return raw, nil
	}
	typeName, ok := entry["marshalledType"].(string)
	if !ok || typeName == "" {
		return raw, nil
	}
	data, ok := entry["data"].([]byte)
	if !ok {
		return raw, nil
	}
	v, err := reg.UnmarshalValue(typeName, data)
	if err != nil {
		return nil, err
	}
	if typeName == refTypeName {
		if tok, ok := v.(marshal.RefToken); ok {
			return newRemoteRef(tok, route), nil
		}
	}
	return v, nil
}

// marshalArgs applies marshalValue to every element of args, in order, so
// a forked/remote proxy's outbound actor-message envelope carries each
// argument's marshalledType next to its encoded bytes instead of relying
// on the envelope's blanket MessagePack framing to shape the payload for
// it (§4.6).
func marshalArgs(reg *marshal.Registry, args []any) ([]any, error) {
	out := make([]any, len(args))
	for i, a := range args {
		encoded, err := marshalValue(reg, a)
		if err != nil {
			return nil, fmt.Errorf("marshal argument %d: %w", i, err)
		}
		out[i] = encoded
	}
	return out, nil
}

// unmarshalArgs is the inverse of marshalArgs, run against the generic
// []any an envelope body decodes "args" into.
func unmarshalArgs(reg *marshal.Registry, raw []any, route refRouter) ([]any, error) {
	out := make([]any, len(raw))
	for i, a := range raw {
		v, err := unmarshalValue(reg, a, route)
		if err != nil {
			return nil, fmt.Errorf("unmarshal argument %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// treeNodeToMap flattens a TreeNode into the plain map shape treeNodeFromAny
// expects on the other end of the wire; it bypasses the marshal registry
// entirely since a tree snapshot is framework introspection, not a user
// payload subject to custom marshalling.
func treeNodeToMap(n *TreeNode) map[string]any {
	m := map[string]any{
		"id":       n.ID,
		"name":     n.Name,
		"location": n.Location,
	}
	if len(n.Children) > 0 {
		children := make([]any, len(n.Children))
		for i, c := range n.Children {
			children[i] = treeNodeToMap(c)
		}
		m["children"] = children
	}
	return m
}
