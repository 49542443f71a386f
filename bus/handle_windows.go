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

//go:build windows

package bus

import (
	"net"

	"github.com/JACKJKL/comedy/log"

	gerrors "github.com/JACKJKL/comedy/errors"
)

// handleTransferer is a stub on Windows: SCM_RIGHTS file descriptor
// passing has no portable equivalent over the loopback sockets this
// runtime uses for IPC, so handle transfer is unsupported on this
// platform. Buses still work for ordinary message envelopes.
type handleTransferer struct {
	logger log.Logger
}

func newHandleTransferer(logger log.Logger) handleTransferer {
	return handleTransferer{logger: logger}
}

func (t *handleTransferer) offer(net.Listener) (string, error) {
	return "", gerrors.ErrHandleTransferUnsupported
}

func (t *handleTransferer) receive(string) (net.Listener, error) {
	return nil, gerrors.ErrHandleTransferUnsupported
}

func (t *handleTransferer) closeAll() {}
