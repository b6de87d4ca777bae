// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package custody

import "math/big"

// The fee split engine taxes profit exactly once across any sequence of
// partial withdrawals. feeBps is the client's retained share in basis
// points; the treasury takes the complement (10000 - feeBps) of new profit.

// SplitWithdrawal computes the treasury/client split for a withdrawal that
// released [amount] of an asset with cumulative totals [deposited] and
// [withdrawnBefore]. Only the band of profit newly crossed by this
// withdrawal is taxed, so principal-only withdrawals carry zero fee.
func SplitWithdrawal(deposited, withdrawnBefore, amount *big.Int, feeBps uint64) (fee, client, newProfit *big.Int) {
	withdrawnAfter := new(big.Int).Add(withdrawnBefore, amount)

	profitBefore := clampedProfit(withdrawnBefore, deposited)
	profitAfter := clampedProfit(withdrawnAfter, deposited)

	// Non-negative by construction: withdrawnAfter >= withdrawnBefore.
	newProfit = new(big.Int).Sub(profitAfter, profitBefore)

	fee = treasuryCut(newProfit, feeBps)
	client = new(big.Int).Sub(amount, fee)
	return fee, client, newProfit
}

// SplitClaim computes the flat treasury/client split for a reward claim.
// Claimed rewards have no principal basis, so the entire amount is profit
// and the fee is taken on all of it.
func SplitClaim(claimed *big.Int, feeBps uint64) (fee, client *big.Int) {
	fee = treasuryCut(claimed, feeBps)
	client = new(big.Int).Sub(claimed, fee)
	return fee, client
}

// treasuryCut returns floor(profit * (10000 - feeBps) / 10000). Flooring
// can only ever favor the client.
func treasuryCut(profit *big.Int, feeBps uint64) *big.Int {
	cut := new(big.Int).Mul(profit, new(big.Int).SetUint64(BasisPoints-feeBps))
	return cut.Div(cut, new(big.Int).SetUint64(BasisPoints))
}

func clampedProfit(withdrawn, deposited *big.Int) *big.Int {
	profit := new(big.Int).Sub(withdrawn, deposited)
	if profit.Sign() < 0 {
		return big.NewInt(0)
	}
	return profit
}
