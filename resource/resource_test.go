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

package resource

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	gerrors "github.com/JACKJKL/comedy/errors"
)

type fakeDef struct {
	id        string
	dependsOn []string
	build     func(deps map[string]any) (any, error)
}

func (f fakeDef) ID() string           { return f.id }
func (f fakeDef) DependsOn() []string  { return f.dependsOn }
func (f fakeDef) Build(deps map[string]any) (any, error) {
	if f.build != nil {
		return f.build(deps)
	}
	return f.id, nil
}

func TestResolveOrdersByDependency(t *testing.T) {
	var built []string
	track := func(id string) func(map[string]any) (any, error) {
		return func(map[string]any) (any, error) {
			built = append(built, id)
			return id, nil
		}
	}
	defs := []Definition{
		fakeDef{id: "db", build: track("db")},
		fakeDef{id: "repo", dependsOn: []string{"db"}, build: track("repo")},
		fakeDef{id: "service", dependsOn: []string{"repo"}, build: track("service")},
	}

	built = nil
	result, err := Resolve(defs)
	require.NoError(t, err)
	require.Equal(t, []string{"db", "repo", "service"}, built)
	require.Equal(t, "repo", result["repo"])
}

func TestResolveDetectsCycle(t *testing.T) {
	defs := []Definition{
		fakeDef{id: "a", dependsOn: []string{"b"}},
		fakeDef{id: "b", dependsOn: []string{"a"}},
	}
	_, err := Resolve(defs)
	require.ErrorIs(t, err, gerrors.ErrCyclicDependency)
}

func TestResolvePropagatesBuildError(t *testing.T) {
	boom := fmt.Errorf("boom")
	defs := []Definition{
		fakeDef{id: "broken", build: func(map[string]any) (any, error) { return nil, boom }},
	}
	_, err := Resolve(defs)
	require.ErrorIs(t, err, boom)
}

func TestResolveUnresolvedDependency(t *testing.T) {
	defs := []Definition{
		fakeDef{id: "a", dependsOn: []string{"missing"}},
	}
	_, err := Resolve(defs)
	require.ErrorIs(t, err, gerrors.ErrConfig)
}
