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
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// maxFrameSize guards against a corrupt or hostile length prefix causing an
// unbounded allocation; no legitimate envelope approaches this.
const maxFrameSize = 64 << 20

// Encode serializes an envelope to MessagePack. This is the canonical
// binary encoding used by both the pipe bus and the socket bus.
func Encode(env *Envelope) ([]byte, error) {
	b, err := msgpack.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return b, nil
}

// Decode parses a MessagePack-encoded envelope.
func Decode(b []byte) (*Envelope, error) {
	env := new(Envelope)
	if err := msgpack.Unmarshal(b, env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}

// EncodeJSON and DecodeJSON provide the human-inspectable alternative
// encoding named in §6 of the spec. No bus or logger in this module calls
// them; the wire framing below always uses the binary MessagePack form.
func EncodeJSON(env *Envelope) ([]byte, error) {
	b, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode envelope as json: %w", err)
	}
	return b, nil
}

// DecodeJSON parses a JSON-encoded envelope.
func DecodeJSON(b []byte) (*Envelope, error) {
	env := new(Envelope)
	if err := json.Unmarshal(b, env); err != nil {
		return nil, fmt.Errorf("decode envelope from json: %w", err)
	}
	return env, nil
}

// WriteFrame writes env to w as a 4-byte big-endian length prefix followed
// by its MessagePack encoding. Both the pipe bus and the socket bus share
// this exact framing so the codec is transport-agnostic.
func WriteFrame(w io.Writer, env *Envelope) error {
	payload, err := Encode(env)
	if err != nil {
		return err
	}
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("write frame payload: %w", err)
	}
	return nil
}

// ReadFrame reads one length-prefixed MessagePack envelope from r. It is
// intended to be called in a loop from a single reader goroutine per bus
// endpoint.
func ReadFrame(r *bufio.Reader) (*Envelope, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	size := binary.BigEndian.Uint32(header[:])
	if size > maxFrameSize {
		return nil, fmt.Errorf("frame of %d bytes exceeds maximum %d", size, maxFrameSize)
	}
	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("read frame payload: %w", err)
	}
	return Decode(payload)
}
