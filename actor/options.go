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

import "time"

// Options configures CreateActor. Only the fields relevant to the chosen
// Mode are consulted; the rest are ignored, mirroring the source's single
// options-record-for-every-mode design (§3.1).
type Options struct {
	// Name is the actor's name within its parent. May be empty.
	Name string

	// Mode selects the execution locus. Defaults to ModeInMemory.
	Mode Mode

	// BehaviourKey names a factory registered via RegisterBehaviour, used
	// by forked/remote workers to reconstruct the behaviour (§9).
	BehaviourKey string

	// Config is free-form configuration carried with the options. Entries
	// from actors.json (§6) are not merged into it, and it is not sent to
	// forked/remote workers.
	Config map[string]any

	// CustomParameters are opaque values kept on an in-memory actor and,
	// for forked/remote actors, sent in the create-actor envelope and
	// passed to the worker's BehaviourFactory. The Initialize hook does
	// not receive them.
	CustomParameters map[string]any

	// AdditionalRequires lists extra module import paths, sent in the
	// create-actor envelope of a forked/remote actor. The worker does not
	// read them: only packages already linked into the worker binary can
	// register behaviours.
	AdditionalRequires []string

	// PingTimeout is the remote heartbeat interval base; the parent pings
	// every PingTimeout/2. Defaults to 5s.
	PingTimeout time.Duration

	// OnCrash selects the crash-recovery policy for remote actors.
	// "respawn" enables heartbeat-driven respawn (§4.4); anything else
	// (including empty) disables it.
	OnCrash string

	// ClusterSize, when > 1, wraps the created children behind a
	// RoundRobinBalancer (§4.5, §4.7).
	ClusterSize int

	// Cluster names a cluster declared in actors.json's "clusters" table.
	// The core does not resolve it to a host list; remote actors are
	// reached only through Host.
	Cluster string

	// Host lists explicit "host[:port]" endpoints for remote actors.
	Host []string

	// LogLevel, Test and Debug are put on the create-actor envelope of a
	// forked actor (a remote actor's envelope carries LogLevel only). The
	// worker does not apply them, and the core does not interpret
	// Test/Debug itself.
	LogLevel string
	Test     bool
	Debug    bool
}

// withDefaults fills in the zero-value defaults documented above.
func (o Options) withDefaults() Options {
	if o.Mode == "" {
		o.Mode = ModeInMemory
	}
	if o.PingTimeout <= 0 {
		o.PingTimeout = 5 * time.Second
	}
	return o
}
