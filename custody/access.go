// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package custody

import "github.com/luxfi/geth/common"

// Role gates. Each gated operation calls its guard explicitly before any
// state is written and fails with a typed error carrying the actual and
// expected identity.

func (p *Proxy) requireFactory(caller common.Address) error {
	if caller != p.factory {
		return &UnauthorizedCallerError{Role: "factory", Caller: caller, Expected: p.factory}
	}
	return nil
}

func (p *Proxy) requireClient(caller common.Address) error {
	if caller != p.client {
		return &UnauthorizedCallerError{Role: "client", Caller: caller, Expected: p.client}
	}
	return nil
}

func validFeeRate(feeBps uint64) bool {
	return feeBps > 0 && feeBps <= BasisPoints
}

// enter sets the reentrancy flag for a guarded operation. Forwarded external
// calls re-entering a guarded operation before the outer call returns are
// rejected with ErrReentrant. exit must run on every path out.
func (p *Proxy) enter() error {
	if p.entered {
		return ErrReentrant
	}
	p.entered = true
	return nil
}

func (p *Proxy) exit() {
	p.entered = false
}
