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

	gerrors "github.com/JACKJKL/comedy/errors"
	"github.com/JACKJKL/comedy/marshal"
)

// registerDefaultMarshallers installs the InterProcessReference marshaller
// (§4.6) for the Go type name "actor.Ref". Only one marshaller can be
// registered at a time for a given type name: ActorSystem.Listen replaces
// this one with an InterHostReference marshaller once it can resolve a
// host/port to advertise.
func registerDefaultMarshallers(reg *marshal.Registry) {
	reg.Register(interProcessRefMarshaller{})
}

const refTypeName = "actor.Ref"

// interProcessRefMarshaller implements the InterProcessReference strategy:
// a reference crossing a pipe bus is encoded as a bare token carrying just
// id/name/mode, to be routed back over the same bus by actorId.
type interProcessRefMarshaller struct{}

func (interProcessRefMarshaller) Types() []string { return []string{refTypeName} }

func (interProcessRefMarshaller) Marshal(v any) ([]byte, error) {
	ref, ok := v.(Ref)
	if !ok {
		return nil, fmt.Errorf("%w: expected actor.Ref, got %T", gerrors.ErrMarshal, v)
	}
	tok := marshal.EncodeInterProcessRef(ref.ID(), ref.Name(), ref.ModeName())
	return marshal.RefTokenToBytes(tok)
}

func (interProcessRefMarshaller) Unmarshal(data []byte) (any, error) {
	return marshal.RefTokenFromBytes(data)
}

// interHostRefMarshaller implements the InterHostReference strategy: a
// reference crossing a TCP bus additionally carries the host/port the
// recipient can dial directly.
type interHostRefMarshaller struct {
	host string
	port int
}

func newInterHostRefMarshaller(host string, port int) interHostRefMarshaller {
	return interHostRefMarshaller{host: host, port: port}
}

func (interHostRefMarshaller) Types() []string { return []string{refTypeName} }

func (m interHostRefMarshaller) Marshal(v any) ([]byte, error) {
	ref, ok := v.(Ref)
	if !ok {
		return nil, fmt.Errorf("%w: expected actor.Ref, got %T", gerrors.ErrMarshal, v)
	}
	tok := marshal.EncodeInterHostRef(ref.ID(), ref.Name(), ref.ModeName(), m.host, m.port)
	return marshal.RefTokenToBytes(tok)
}

func (interHostRefMarshaller) Unmarshal(data []byte) (any, error) {
	return marshal.RefTokenFromBytes(data)
}

// remoteRef is the Ref reconstructed on the receiving side of a marshalled
// reference token: sending to it routes back to the original actor over
// the bus that delivered the token (inter-process) or by dialing
// Host:Port directly (inter-host), rather than executing locally.
type remoteRef struct {
	stateBox
	token   marshal.RefToken
	route   func(ctx context.Context, topic string, timeout time.Duration, expectReply bool, args []any) (any, error)
}

var _ Ref = (*remoteRef)(nil)

func newRemoteRef(tok marshal.RefToken, route func(context.Context, string, time.Duration, bool, []any) (any, error)) *remoteRef {
	r := &remoteRef{token: tok, route: route}
	r.stateBox.set(StateReady)
	return r
}

func (r *remoteRef) ID() string       { return r.token.ID }
func (r *remoteRef) Name() string     { return r.token.Name }
func (r *remoteRef) ModeName() string { return r.token.Mode }
func (r *remoteRef) Mode() Mode       { return Mode(r.token.Mode) }
func (r *remoteRef) Parent() Ref      { return nil }
func (r *remoteRef) State() State     { return r.stateBox.get() }

func (r *remoteRef) Send(ctx context.Context, topic string, args ...any) error {
	_, err := r.route(ctx, topic, 0, false, args)
	return err
}

func (r *remoteRef) SendAndReceive(ctx context.Context, topic string, timeout time.Duration, args ...any) (any, error) {
	return r.route(ctx, topic, timeout, true, args)
}

func (r *remoteRef) Tree(ctx context.Context) (*TreeNode, error) {
	return &TreeNode{ID: r.token.ID, Name: r.token.Name, Location: r.token.Mode}, nil
}

func (r *remoteRef) Metrics(ctx context.Context) (map[string]any, error) {
	return map[string]any{}, nil
}

func (r *remoteRef) Destroy(ctx context.Context) error {
	return fmt.Errorf("%w: cannot destroy a reconstructed remote reference directly", gerrors.ErrNotAChild)
}
