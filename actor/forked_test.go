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
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const forkedTestBehaviourKey = "github.com/JACKJKL/comedy/actor_test.echo"

func init() {
	RegisterBehaviour(forkedTestBehaviourKey, func(map[string]any) (Behaviour, error) {
		return echoBehaviour(), nil
	})
}

// newForkedTestChild forks a real worker process, running this very test
// binary re-exec'd with --actor-worker (see TestMain), so the marshaller
// pipeline and the $tree/$metrics interception in bootstrap.go run for
// real rather than against an in-memory stand-in.
func newForkedTestChild(t *testing.T, sys *ActorSystem) Ref {
	t.Helper()
	ref, err := sys.CreateActor(context.Background(), Options{
		Name:         "forked-echo",
		Mode:         ModeForked,
		BehaviourKey: forkedTestBehaviourKey,
	}, Behaviour{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = ref.Destroy(context.Background()) })
	return ref
}

// TestForkedRefArgumentEchoesAcrossProcessBoundary exercises the outbound
// marshaller pipeline (forked.go dispatch -> payload.go marshalArgs ->
// bootstrap.go unmarshalArgs -> echo handler -> marshalValue -> parent
// unmarshalValue) by passing a local actor Ref as a message argument to a
// forked worker and asserting the value that comes back still identifies
// the original actor.
func TestForkedRefArgumentEchoesAcrossProcessBoundary(t *testing.T) {
	sys := newTestSystem(t)
	local, err := sys.CreateActor(context.Background(), Options{Name: "local-greeter"}, echoBehaviour())
	require.NoError(t, err)

	forked := newForkedTestChild(t, sys)

	v, err := forked.SendAndReceive(context.Background(), "echo", 10*time.Second, local)
	require.NoError(t, err)

	echoed, ok := v.(Ref)
	require.True(t, ok, "expected a reconstructed Ref, got %T", v)
	require.Equal(t, local.ID(), echoed.ID())
	require.Equal(t, local.Name(), echoed.Name())
	require.Equal(t, local.ModeName(), echoed.ModeName())
}

// TestForkedTreeAndMetricsCrossProcessBoundary exercises the $tree/$metrics
// interception in workerActor.dispatch: before the fix these always
// returned ErrNoHandler because the worker forwarded the pseudo-topics
// straight to the Behaviour dispatcher.
func TestForkedTreeAndMetricsCrossProcessBoundary(t *testing.T) {
	sys := newTestSystem(t)
	forked := newForkedTestChild(t, sys)

	tree, err := forked.Tree(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, tree.ID)
	require.Equal(t, string(ModeInMemory), tree.Location)

	metrics, err := forked.Metrics(context.Background())
	require.NoError(t, err)
	require.NotNil(t, metrics)
}
