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

// Package config loads the optional actors.json file named in §6: a map
// from actor name to an options record merged underneath whatever the
// caller passes to CreateActor. Like the teacher's config package, this
// stays a thin, typed decode of a small JSON document rather than growing
// into a general-purpose configuration framework.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultFile is the filename looked up in the project root when no
// explicit path is given.
const DefaultFile = "actors.json"

// ActorOptions is the subset of CreateActor options that actors.json may
// supply. A value present here fills in the matching field only where the
// caller of CreateActor left it unset; the caller's own values win (§6).
type ActorOptions struct {
	Mode        string         `json:"mode,omitempty"`
	PingTimeout int            `json:"pingTimeout,omitempty"`
	OnCrash     string         `json:"onCrash,omitempty"`
	ClusterSize int            `json:"clusterSize,omitempty"`
	Cluster     string         `json:"cluster,omitempty"`
	Host        []string       `json:"host,omitempty"`
	LogLevel    string         `json:"logLevel,omitempty"`
	Custom      map[string]any `json:"customParameters,omitempty"`
}

// File is the decoded shape of actors.json: actor name (or its
// decapitalized form) to options.
type File struct {
	Actors  map[string]ActorOptions  `json:"actors"`
	Clusters map[string][]string     `json:"clusters,omitempty"`
}

// Load reads and decodes path. A missing file is not an error — it
// returns an empty File — since actors.json is optional.
func Load(path string) (*File, error) {
	if path == "" {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &File{Actors: map[string]ActorOptions{}}, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	f := &File{}
	if err := json.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if f.Actors == nil {
		f.Actors = map[string]ActorOptions{}
	}
	return f, nil
}

// For returns the options configured for actor name, trying both the
// literal name and its decapitalized form, as §6 specifies.
func (f *File) For(name string) (ActorOptions, bool) {
	if f == nil {
		return ActorOptions{}, false
	}
	if opts, ok := f.Actors[name]; ok {
		return opts, true
	}
	if opts, ok := f.Actors[decapitalize(name)]; ok {
		return opts, true
	}
	return ActorOptions{}, false
}

func decapitalize(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}
