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

// Mode is the execution locus of an actor relative to its creator:
// in-memory (same process), forked (child OS process, same host) or
// remote (child OS process, different host).
type Mode string

const (
	ModeInMemory Mode = "in-memory"
	ModeForked   Mode = "forked"
	ModeRemote   Mode = "remote"
)

// String satisfies fmt.Stringer.
func (m Mode) String() string { return string(m) }

// Valid reports whether m is one of the three modes the runtime knows
// about.
func (m Mode) Valid() bool {
	switch m {
	case ModeInMemory, ModeForked, ModeRemote:
		return true
	default:
		return false
	}
}
