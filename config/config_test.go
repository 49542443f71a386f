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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	f, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.NoError(t, err)
	require.Empty(t, f.Actors)
}

func TestLoadAndFor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actors.json")
	const doc = `{
		"actors": {
			"greeter": {"mode": "forked", "onCrash": "respawn", "clusterSize": 3}
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	f, err := Load(path)
	require.NoError(t, err)

	opts, ok := f.For("greeter")
	require.True(t, ok)
	require.Equal(t, "forked", opts.Mode)
	require.Equal(t, 3, opts.ClusterSize)

	opts, ok = f.For("Greeter")
	require.True(t, ok)
	require.Equal(t, "respawn", opts.OnCrash)

	_, ok = f.For("unknown")
	require.False(t, ok)
}
