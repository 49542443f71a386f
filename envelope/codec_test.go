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

package envelope

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	env := New("corr-1", "actor-1", TypeActorMessage)
	env.Set("topic", "ping")
	env.Set("args", []any{1, "two", 3.0})

	b, err := Encode(env)
	require.NoError(t, err)

	decoded, err := Decode(b)
	require.NoError(t, err)
	require.Equal(t, env.ID, decoded.ID)
	require.Equal(t, env.ActorID, decoded.ActorID)
	require.Equal(t, env.Type, decoded.Type)
	require.Equal(t, "ping", decoded.GetString("topic"))
}

func TestEncodeDecodeJSONRoundTrip(t *testing.T) {
	env := New("corr-2", "actor-2", TypeCreateActor)
	env.Set("behaviourKey", "demo")

	b, err := EncodeJSON(env)
	require.NoError(t, err)
	require.Contains(t, string(b), "create-actor")

	decoded, err := DecodeJSON(b)
	require.NoError(t, err)
	require.Equal(t, "demo", decoded.GetString("behaviourKey"))
}

func TestWriteReadFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	env := New("corr-3", "actor-3", TypeActorResponse)
	env.Set("value", 42)

	require.NoError(t, WriteFrame(&buf, env))

	decoded, err := ReadFrame(bufio.NewReader(&buf))
	require.NoError(t, err)
	require.Equal(t, env.Type, decoded.Type)
	v, ok := decoded.Get("value")
	require.True(t, ok)
	require.EqualValues(t, 42, v)
}

func TestReadFrameRejectsOversizedLength(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0x7f, 0xff, 0xff, 0xff})
	_, err := ReadFrame(bufio.NewReader(&buf))
	require.Error(t, err)
}

func TestGetHelpers(t *testing.T) {
	env := New("", "", TypeParentPing)
	env.Set("flag", true)
	require.True(t, env.GetBool("flag"))
	require.False(t, env.GetBool("missing"))
	require.Equal(t, "", env.GetString("missing"))
}
