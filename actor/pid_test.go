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
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	gerrors "github.com/JACKJKL/comedy/errors"
)

// TestMain re-execs this same test binary as a forked worker when invoked
// with workerFlag (see forked_test.go/newForkedTestChild), so forked-mode
// tests fork a real worker process instead of an in-memory stand-in; every
// other invocation runs the suite under goleak as usual.
func TestMain(m *testing.M) {
	for _, a := range os.Args {
		if a == workerFlag {
			if err := Bootstrap(context.Background(), os.Args); err != nil {
				os.Exit(1)
			}
			os.Exit(0)
		}
	}
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("github.com/JACKJKL/comedy/actor.(*pendingTable).sweepLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"))
}

func echoBehaviour() Behaviour {
	return Behaviour{
		Handlers: map[string]HandlerFunc{
			"ping": func(ctx context.Context, self Ref, args []any) (any, error) {
				return "pong", nil
			},
			"echo": func(ctx context.Context, self Ref, args []any) (any, error) {
				return args[0], nil
			},
		},
	}
}

func newTestSystem(t *testing.T) *ActorSystem {
	t.Helper()
	sys, err := NewSystem(Options{Name: "root"}, Behaviour{}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sys.Destroy(context.Background()) })
	return sys
}

func TestSendAndReceiveBeforeInitializeFails(t *testing.T) {
	sys := newTestSystem(t)
	p := newPID(sys, sys.root, "uninitialized", echoBehaviour(), nil, nil)

	_, err := p.SendAndReceive(context.Background(), "ping", time.Second)
	require.ErrorIs(t, err, gerrors.ErrNotReady)
	require.Contains(t, err.Error(), "Actor has not yet been initialized")
}

func TestSendAndReceiveRoundTrip(t *testing.T) {
	sys := newTestSystem(t)
	ref, err := sys.CreateActor(context.Background(), Options{Name: "greeter"}, echoBehaviour())
	require.NoError(t, err)

	v, err := ref.SendAndReceive(context.Background(), "ping", time.Second)
	require.NoError(t, err)
	require.Equal(t, "pong", v)

	v, err = ref.SendAndReceive(context.Background(), "echo", time.Second, "hello")
	require.NoError(t, err)
	require.Equal(t, "hello", v)
}

func TestSendSwallowsHandlerErrors(t *testing.T) {
	sys := newTestSystem(t)
	def := Behaviour{
		Handlers: map[string]HandlerFunc{
			"boom": func(ctx context.Context, self Ref, args []any) (any, error) {
				return nil, gerrors.ErrHandlerPanicked
			},
		},
	}
	ref, err := sys.CreateActor(context.Background(), Options{Name: "boomer"}, def)
	require.NoError(t, err)

	require.NoError(t, ref.Send(context.Background(), "boom"))
}

func TestHandlerPanicRecovered(t *testing.T) {
	sys := newTestSystem(t)
	def := Behaviour{
		Handlers: map[string]HandlerFunc{
			"boom": func(ctx context.Context, self Ref, args []any) (any, error) {
				panic("kaboom")
			},
		},
	}
	ref, err := sys.CreateActor(context.Background(), Options{Name: "panicker"}, def)
	require.NoError(t, err)

	_, err = ref.SendAndReceive(context.Background(), "boom", time.Second)
	require.ErrorIs(t, err, gerrors.ErrHandlerPanicked)
}

func TestForwardToParent(t *testing.T) {
	sys := newTestSystem(t)
	parentDef := Behaviour{
		Handlers: map[string]HandlerFunc{
			"greet": func(ctx context.Context, self Ref, args []any) (any, error) {
				return "hello from parent", nil
			},
		},
	}
	parent, err := sys.CreateActor(context.Background(), Options{Name: "parent"}, parentDef)
	require.NoError(t, err)
	parentPID := parent.(*PID)

	child, err := parentPID.CreateChild(context.Background(), Options{Name: "child"}, Behaviour{})
	require.NoError(t, err)
	childPID := child.(*PID)
	require.NoError(t, childPID.ForwardToParent("greet"))

	v, err := child.SendAndReceive(context.Background(), "greet", time.Second)
	require.NoError(t, err)
	require.Equal(t, "hello from parent", v)
}

func TestForwardAllUnknownToParent(t *testing.T) {
	sys := newTestSystem(t)
	parent, err := sys.CreateActor(context.Background(), Options{Name: "parent"}, echoBehaviour())
	require.NoError(t, err)
	parentPID := parent.(*PID)

	child, err := parentPID.CreateChild(context.Background(), Options{Name: "child"}, Behaviour{})
	require.NoError(t, err)
	childPID := child.(*PID)
	require.NoError(t, childPID.ForwardAllUnknownToParent())

	v, err := child.SendAndReceive(context.Background(), "ping", time.Second)
	require.NoError(t, err)
	require.Equal(t, "pong", v)
}

func TestForwardToChildRejectsNonChild(t *testing.T) {
	sys := newTestSystem(t)
	a, err := sys.CreateActor(context.Background(), Options{Name: "a"}, Behaviour{})
	require.NoError(t, err)
	b, err := sys.CreateActor(context.Background(), Options{Name: "b"}, Behaviour{})
	require.NoError(t, err)

	aPID := a.(*PID)
	require.ErrorIs(t, aPID.ForwardToChild(b, "anything"), gerrors.ErrNotAChild)
}

func TestTreeExcludesDestroyedChildren(t *testing.T) {
	sys := newTestSystem(t)
	parent, err := sys.CreateActor(context.Background(), Options{Name: "parent"}, Behaviour{})
	require.NoError(t, err)
	parentPID := parent.(*PID)

	alive, err := parentPID.CreateChild(context.Background(), Options{Name: "alive"}, Behaviour{})
	require.NoError(t, err)
	gone, err := parentPID.CreateChild(context.Background(), Options{Name: "gone"}, Behaviour{})
	require.NoError(t, err)
	require.NoError(t, gone.Destroy(context.Background()))

	tree, err := parent.Tree(context.Background())
	require.NoError(t, err)
	require.Len(t, tree.Children, 1)
	require.Equal(t, "alive", tree.Children[0].Name)
}

func TestMetricsMergeChildren(t *testing.T) {
	sys := newTestSystem(t)
	var calls int
	parentDef := Behaviour{
		Metrics: func(ctx context.Context) (map[string]any, error) {
			calls++
			return map[string]any{"calls": calls}, nil
		},
	}
	parent, err := sys.CreateActor(context.Background(), Options{Name: "parent"}, parentDef)
	require.NoError(t, err)
	parentPID := parent.(*PID)

	childDef := Behaviour{
		Metrics: func(ctx context.Context) (map[string]any, error) {
			return map[string]any{"count": 42}, nil
		},
	}
	_, err = parentPID.CreateChild(context.Background(), Options{Name: "child"}, childDef)
	require.NoError(t, err)

	m, err := parent.Metrics(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, m["calls"])
	childMetrics, ok := m["child"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, 42, childMetrics["count"])
}

func TestDestroyIsDepthFirstReverseOrder(t *testing.T) {
	sys := newTestSystem(t)
	var order []string
	mkDef := func(name string) Behaviour {
		return Behaviour{Destroy: func(ctx context.Context, self Ref) error {
			order = append(order, name)
			return nil
		}}
	}
	parent, err := sys.CreateActor(context.Background(), Options{Name: "parent"}, mkDef("parent"))
	require.NoError(t, err)
	parentPID := parent.(*PID)

	_, err = parentPID.CreateChild(context.Background(), Options{Name: "first"}, mkDef("first"))
	require.NoError(t, err)
	_, err = parentPID.CreateChild(context.Background(), Options{Name: "second"}, mkDef("second"))
	require.NoError(t, err)

	require.NoError(t, parent.Destroy(context.Background()))
	require.Equal(t, []string{"second", "first", "parent"}, order)
}

func TestDestroyIsIdempotent(t *testing.T) {
	sys := newTestSystem(t)
	var destroyCount int
	def := Behaviour{Destroy: func(ctx context.Context, self Ref) error {
		destroyCount++
		return nil
	}}
	ref, err := sys.CreateActor(context.Background(), Options{Name: "once"}, def)
	require.NoError(t, err)

	require.NoError(t, ref.Destroy(context.Background()))
	require.NoError(t, ref.Destroy(context.Background()))
	require.Equal(t, 1, destroyCount)
}

func TestCreateChildDuplicateNameFails(t *testing.T) {
	sys := newTestSystem(t)
	_, err := sys.CreateActor(context.Background(), Options{Name: "dup"}, Behaviour{})
	require.NoError(t, err)
	_, err = sys.CreateActor(context.Background(), Options{Name: "dup"}, Behaviour{})
	require.ErrorIs(t, err, gerrors.ErrActorAlreadyExists)
}

func TestClusterRoundRobin(t *testing.T) {
	sys := newTestSystem(t)
	ref, err := sys.CreateActor(context.Background(), Options{Name: "cluster", ClusterSize: 3}, echoBehaviour())
	require.NoError(t, err)

	balancer, ok := ref.(*RoundRobinBalancer)
	require.True(t, ok)
	require.Len(t, balancer.children, 3)

	for i := 0; i < 6; i++ {
		v, err := ref.SendAndReceive(context.Background(), "ping", time.Second)
		require.NoError(t, err)
		require.Equal(t, "pong", v)
	}
}
