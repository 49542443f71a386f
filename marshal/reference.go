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
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// RefToken is the wire shape an actor reference marshals into. Package
// actor decodes a RefToken back into a live, routable Ref; this package
// only shapes the data, per the split described in the package doc
// comment.
type RefToken struct {
	ID   string `msgpack:"id" json:"id"`
	Name string `msgpack:"name" json:"name"`
	Mode string `msgpack:"mode" json:"mode"`
	// Host/Port are set only for InterHostReference tokens.
	Host string `msgpack:"host,omitempty" json:"host,omitempty"`
	Port int    `msgpack:"port,omitempty" json:"port,omitempty"`
	// Kind distinguishes an InterProcess token from an InterHost one so
	// the receiving side knows which routing strategy to reconstruct.
	Kind string `msgpack:"kind" json:"kind"`
}

const (
	// KindInterProcess marks a token produced by InterProcessReference:
	// the peer routes back to the id over the shared pipe bus.
	KindInterProcess = "inter-process"
	// KindInterHost marks a token produced by InterHostReference: the
	// peer dials Host:Port to reach the referenced actor directly.
	KindInterHost = "inter-host"
)

// EncodeInterProcessRef builds the token an InterProcessReference
// marshaller puts on the wire for a reference that must be routed back
// through the sender's own pipe bus using actorId.
func EncodeInterProcessRef(id, name, mode string) RefToken {
	return RefToken{ID: id, Name: name, Mode: mode, Kind: KindInterProcess}
}

// EncodeInterHostRef builds the token an InterHostReference marshaller
// puts on the wire; it additionally carries the host/port the recipient
// can dial directly, independent of which bus delivered the token.
func EncodeInterHostRef(id, name, mode, host string, port int) RefToken {
	return RefToken{ID: id, Name: name, Mode: mode, Host: host, Port: port, Kind: KindInterHost}
}

// DecodeRefToken recovers a RefToken from the generic map produced by
// decoding an envelope body; msgpack/JSON round-trips structs embedded in
// map[string]any as map[string]any, so this re-hydrates field by field
// rather than assuming a concrete Go type survived the trip.
func DecodeRefToken(raw map[string]any) (RefToken, error) {
	tok := RefToken{}
	var ok bool
	if tok.ID, ok = str(raw["id"]); !ok {
		return tok, fmt.Errorf("reference token missing id")
	}
	tok.Name, _ = str(raw["name"])
	tok.Mode, _ = str(raw["mode"])
	tok.Host, _ = str(raw["host"])
	tok.Kind, _ = str(raw["kind"])
	if p, ok := raw["port"]; ok {
		tok.Port = toInt(p)
	}
	return tok, nil
}

// RefTokenToBytes encodes tok as the byte payload a Marshaller.Marshal
// implementation returns for a reference value.
func RefTokenToBytes(tok RefToken) ([]byte, error) {
	return msgpack.Marshal(tok)
}

// RefTokenFromBytes decodes the payload produced by RefTokenToBytes.
func RefTokenFromBytes(data []byte) (RefToken, error) {
	var tok RefToken
	if err := msgpack.Unmarshal(data, &tok); err != nil {
		return RefToken{}, fmt.Errorf("decode reference token: %w", err)
	}
	return tok, nil
}

func str(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
