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

package future

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAwaitReturnsValue(t *testing.T) {
	f := New(func(ctx context.Context) (any, error) {
		return 42, nil
	})
	v, err := f.Await(context.Background())
	require.NoError(t, err)
	require.Equal(t, 42, v)
}

func TestAwaitPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	f := New(func(ctx context.Context) (any, error) {
		return nil, boom
	})
	_, err := f.Await(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestAwaitRecoversPanic(t *testing.T) {
	f := New(func(ctx context.Context) (any, error) {
		panic("kaboom")
	})
	_, err := f.Await(context.Background())
	require.Error(t, err)
}

func TestAwaitRespectsContextCancellation(t *testing.T) {
	release := make(chan struct{})
	f := New(func(ctx context.Context) (any, error) {
		<-release
		return "late", nil
	})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := f.Await(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	close(release)
}

func TestIsFuture(t *testing.T) {
	f := New(func(ctx context.Context) (any, error) { return nil, nil })
	_, ok := IsFuture(f)
	require.True(t, ok)

	_, ok = IsFuture("not a future")
	require.False(t, ok)
}
