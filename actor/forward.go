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

import "regexp"

// matcher tests whether a forward-list entry applies to a given topic.
// String matchers equality-compare; regex matchers test (§4.1).
type matcher interface {
	Match(topic string) bool
}

type stringMatcher string

func (s stringMatcher) Match(topic string) bool { return string(s) == topic }

type regexMatcher struct{ re *regexp.Regexp }

func (r regexMatcher) Match(topic string) bool { return r.re.MatchString(topic) }

// forwardEntry pairs a matcher with the target a matching topic is
// redirected to, preserved in insertion order (first match wins).
type forwardEntry struct {
	matcher matcher
	target  Ref
}

// StringTopics builds string matchers for forwardToParent/forwardToChild
// calls that take plain topic names.
func StringTopics(topics ...string) []matcher {
	out := make([]matcher, 0, len(topics))
	for _, t := range topics {
		out = append(out, stringMatcher(t))
	}
	return out
}

// RegexTopic builds a matcher from a compiled regular expression, for
// callers that want to forward every topic matching a pattern.
func RegexTopic(re *regexp.Regexp) matcher {
	return regexMatcher{re: re}
}
