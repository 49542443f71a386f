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

// Package resource defines the narrow interface the core needs from the
// (out-of-core) resource-definition loader and dependency injector named
// in §1/§9: enough to type-check a dependency graph, detect cycles and
// build the instances in dependency order. Package actor does not call
// Resolve, and a behaviour's Initialize hook does not receive resolved
// instances. The on-disk loader and the DI container themselves stay
// outside the core.
package resource

import (
	"fmt"
	"strings"

	gerrors "github.com/JACKJKL/comedy/errors"
)

// Definition is a single resource an actor's behaviour may depend on. The
// core never constructs a Definition itself; it only orders and builds
// the ones it is handed.
type Definition interface {
	// ID names this resource; dependency lists reference other resources
	// by this string.
	ID() string
	// DependsOn lists the IDs of resources that must be built first.
	DependsOn() []string
	// Build constructs the resource given its already-built
	// dependencies, keyed by ID.
	Build(deps map[string]any) (any, error)
}

// Resolve topologically sorts defs and builds each one in dependency
// order, returning the built instances keyed by ID. It fails with
// errors.ErrCyclicDependency, annotated with the offending path, if the
// dependency graph is not a DAG.
func Resolve(defs []Definition) (map[string]any, error) {
	byID := make(map[string]Definition, len(defs))
	for _, d := range defs {
		byID[d.ID()] = d
	}

	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)
	state := make(map[string]int, len(defs))
	order := make([]string, 0, len(defs))
	var path []string

	var visit func(id string) error
	visit = func(id string) error {
		switch state[id] {
		case visited:
			return nil
		case visiting:
			cyclePath := append(append([]string{}, path...), id)
			return fmt.Errorf("%w: %s", gerrors.ErrCyclicDependency, strings.Join(cyclePath, " -> "))
		}
		def, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: unresolved resource dependency %q", gerrors.ErrConfig, id)
		}
		state[id] = visiting
		path = append(path, id)
		for _, dep := range def.DependsOn() {
			if err := visit(dep); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		state[id] = visited
		order = append(order, id)
		return nil
	}

	for _, d := range defs {
		if err := visit(d.ID()); err != nil {
			return nil, err
		}
	}

	built := make(map[string]any, len(order))
	for _, id := range order {
		def := byID[id]
		deps := make(map[string]any, len(def.DependsOn()))
		for _, dep := range def.DependsOn() {
			deps[dep] = built[dep]
		}
		instance, err := def.Build(deps)
		if err != nil {
			return nil, fmt.Errorf("build resource %q: %w", id, err)
		}
		built[id] = instance
	}
	return built, nil
}
