// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package custody

import (
	"fmt"

	"github.com/luxfi/geth/common"
)

// CalldataForwarder executes opaque instructions against external targets.
// It performs no validation of its own; callers run the allow-list check
// first. A failed external call aborts the enclosing operation.
type CalldataForwarder struct {
	caller ExternalCaller
}

// NewCalldataForwarder creates a forwarder backed by [caller].
func NewCalldataForwarder(caller ExternalCaller) *CalldataForwarder {
	return &CalldataForwarder{caller: caller}
}

// Forward executes [payload] against [target] and propagates the outcome.
func (f *CalldataForwarder) Forward(target common.Address, payload []byte) ([]byte, error) {
	ret, err := f.caller.Call(target, payload)
	if err != nil {
		return nil, fmt.Errorf("forwarded call to %s failed: %w", target, err)
	}
	return ret, nil
}

// splitSelector separates the 4 byte selector from the remaining payload.
// Payloads shorter than a selector check against a zero selector.
func splitSelector(payload []byte) ([4]byte, []byte) {
	var selector [4]byte
	if len(payload) < 4 {
		return selector, nil
	}
	copy(selector[:], payload[:4])
	return selector, payload[4:]
}
