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

package marshal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type upperMarshaller struct{ destroyed bool }

func (upperMarshaller) Types() []string { return []string{"upper"} }
func (upperMarshaller) Marshal(v any) ([]byte, error) {
	return []byte(strings.ToUpper(v.(string))), nil
}
func (upperMarshaller) Unmarshal(data []byte) (any, error) { return string(data), nil }
func (m *upperMarshaller) Destroy() error {
	m.destroyed = true
	return nil
}

func TestRegistryMarshalValueFallsBackToGeneric(t *testing.T) {
	reg := NewRegistry()
	b, err := reg.MarshalValue("unregistered", 42)
	require.NoError(t, err)

	v, err := reg.UnmarshalValue("unregistered", b)
	require.NoError(t, err)
	require.EqualValues(t, 42, v)
}

func TestRegistryUsesRegisteredMarshaller(t *testing.T) {
	reg := NewRegistry()
	reg.Register(upperMarshaller{})

	b, err := reg.MarshalValue("upper", "hello")
	require.NoError(t, err)
	require.Equal(t, "HELLO", string(b))

	v, err := reg.UnmarshalValue("upper", b)
	require.NoError(t, err)
	require.Equal(t, "HELLO", v)
}

func TestRegistryDestroyCallsEachMarshallerOnce(t *testing.T) {
	reg := NewRegistry()
	m := &upperMarshaller{}
	reg.Register(m)
	require.NoError(t, reg.Destroy())
	require.True(t, m.destroyed)
}

func TestRefTokenRoundTrip(t *testing.T) {
	tok := EncodeInterHostRef("id-1", "worker", "remote", "10.0.0.5", 6161)
	b, err := RefTokenToBytes(tok)
	require.NoError(t, err)

	decoded, err := RefTokenFromBytes(b)
	require.NoError(t, err)
	require.Equal(t, tok, decoded)
}

func TestDecodeRefTokenFromGenericMap(t *testing.T) {
	raw := map[string]any{
		"id":   "id-2",
		"name": "child",
		"mode": "forked",
		"kind": KindInterProcess,
	}
	tok, err := DecodeRefToken(raw)
	require.NoError(t, err)
	require.Equal(t, "id-2", tok.ID)
	require.Equal(t, KindInterProcess, tok.Kind)
}

func TestDecodeRefTokenRequiresID(t *testing.T) {
	_, err := DecodeRefToken(map[string]any{"name": "no-id"})
	require.Error(t, err)
}
