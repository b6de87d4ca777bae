// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package custody

import (
	"math/big"
	"sync"

	"github.com/luxfi/geth/common"
)

// Ledger holds the per-asset cumulative deposit and withdrawal totals for
// one proxy. Totals only ever grow; the unrecord helpers exist solely to
// unwind a failed operation before it returns.
type Ledger struct {
	deposited map[common.Address]*big.Int
	withdrawn map[common.Address]*big.Int
	mu        sync.RWMutex
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		deposited: make(map[common.Address]*big.Int),
		withdrawn: make(map[common.Address]*big.Int),
	}
}

// TotalDeposited returns the cumulative amount deposited for [asset].
func (l *Ledger) TotalDeposited(asset common.Address) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return copyTotal(l.deposited[asset])
}

// TotalWithdrawn returns the cumulative amount withdrawn for [asset].
func (l *Ledger) TotalWithdrawn(asset common.Address) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return copyTotal(l.withdrawn[asset])
}

// RealizedProfit returns max(0, totalWithdrawn - totalDeposited) for [asset].
func (l *Ledger) RealizedProfit(asset common.Address) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	profit := new(big.Int).Sub(copyTotal(l.withdrawn[asset]), copyTotal(l.deposited[asset]))
	if profit.Sign() < 0 {
		return big.NewInt(0)
	}
	return profit
}

// RecordDeposit adds [amount] to the deposited total of [asset] and returns
// the new total.
func (l *Ledger) RecordDeposit(asset common.Address, amount *big.Int) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return addTotal(l.deposited, asset, amount)
}

// RecordWithdrawal adds [amount] to the withdrawn total of [asset] and
// returns the new total.
func (l *Ledger) RecordWithdrawal(asset common.Address, amount *big.Int) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return addTotal(l.withdrawn, asset, amount)
}

// unrecordDeposit unwinds a RecordDeposit made earlier in the same failed
// operation.
func (l *Ledger) unrecordDeposit(asset common.Address, amount *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if total, ok := l.deposited[asset]; ok {
		total.Sub(total, amount)
	}
}

// unrecordWithdrawal unwinds a RecordWithdrawal made earlier in the same
// failed operation.
func (l *Ledger) unrecordWithdrawal(asset common.Address, amount *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if total, ok := l.withdrawn[asset]; ok {
		total.Sub(total, amount)
	}
}

func addTotal(totals map[common.Address]*big.Int, asset common.Address, amount *big.Int) *big.Int {
	total, ok := totals[asset]
	if !ok {
		total = big.NewInt(0)
		totals[asset] = total
	}
	total.Add(total, amount)
	return new(big.Int).Set(total)
}

func copyTotal(total *big.Int) *big.Int {
	if total == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(total)
}
