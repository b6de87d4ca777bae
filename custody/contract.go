// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package custody

import (
	"bytes"
	"errors"
	"math/big"

	"github.com/luxfi/geth/common"

	"github.com/luxfi/custody/contract"
)

var _ contract.StatefulPrecompiledContract = (*CustodyContract)(nil)

// Function selectors
var (
	initializeSignature       = contract.CalculateFunctionSelector("initialize(address,uint256)")
	depositSignature          = contract.CalculateFunctionSelector("deposit(address,address,uint256,bytes,bytes)")
	withdrawSignature         = contract.CalculateFunctionSelector("withdraw(address,address,uint256,bytes)")
	callAnyFunctionSignature  = contract.CalculateFunctionSelector("callAnyFunction(address,bytes)")
	claimRewardSignature      = contract.CalculateFunctionSelector("claimReward(address,address,uint256,bytes32[])")
	checkCalldataSignature    = contract.CalculateFunctionSelector("checkCalldata(address,bytes4,bytes,uint8)")
	isValidSignatureSignature = contract.CalculateFunctionSelector("isValidSignature(bytes32,bytes)")
	clientSignature           = contract.CalculateFunctionSelector("client()")
	feeRateSignature          = contract.CalculateFunctionSelector("feeRate()")
	factorySignature          = contract.CalculateFunctionSelector("factory()")
	treasurySignature         = contract.CalculateFunctionSelector("treasury()")
	totalDepositedSignature   = contract.CalculateFunctionSelector("totalDeposited(address)")
	totalWithdrawnSignature   = contract.CalculateFunctionSelector("totalWithdrawn(address)")
)

// ErrProxyNotConfigured is returned when Run is invoked before Configure
// wired a proxy into the precompile.
var ErrProxyNotConfigured = errors.New("custody proxy not configured")

// CustodyContract adapts a Proxy to the stateful precompile interface.
//
// Input layouts are packed 32 byte words: addresses right-aligned in a
// word, variable byte sections trailing (see each run method).
type CustodyContract struct {
	proxy *Proxy
}

// NewCustodyContract wraps [proxy] as a precompile.
func NewCustodyContract(proxy *Proxy) *CustodyContract {
	return &CustodyContract{proxy: proxy}
}

// SetProxy installs the proxy instance this precompile serves.
func (c *CustodyContract) SetProxy(proxy *Proxy) {
	c.proxy = proxy
}

// Proxy returns the wrapped proxy instance.
func (c *CustodyContract) Proxy() *Proxy {
	return c.proxy
}

// Run executes the custody precompile.
func (c *CustodyContract) Run(
	accessibleState contract.AccessibleState,
	caller common.Address,
	addr common.Address,
	input []byte,
	suppliedGas uint64,
	readOnly bool,
) ([]byte, uint64, error) {
	if c.proxy == nil {
		return nil, suppliedGas, ErrProxyNotConfigured
	}
	if len(input) < contract.SelectorLen {
		return nil, suppliedGas, ErrInvalidInput
	}

	selector := input[:contract.SelectorLen]
	args := input[contract.SelectorLen:]

	switch {
	case bytes.Equal(selector, initializeSignature):
		return c.runInitialize(caller, args, suppliedGas, readOnly)
	case bytes.Equal(selector, depositSignature):
		return c.runDeposit(caller, args, suppliedGas, readOnly)
	case bytes.Equal(selector, withdrawSignature):
		return c.runWithdraw(caller, args, suppliedGas, readOnly)
	case bytes.Equal(selector, callAnyFunctionSignature):
		return c.runCallAnyFunction(caller, args, suppliedGas, readOnly)
	case bytes.Equal(selector, claimRewardSignature):
		return c.runClaimReward(caller, args, suppliedGas, readOnly)
	case bytes.Equal(selector, checkCalldataSignature):
		return c.runCheckCalldata(args, suppliedGas)
	case bytes.Equal(selector, isValidSignatureSignature):
		return c.runIsValidSignature(args, suppliedGas)
	case bytes.Equal(selector, clientSignature):
		return c.runAddressGetter(c.proxy.Client(), suppliedGas)
	case bytes.Equal(selector, factorySignature):
		return c.runAddressGetter(c.proxy.Factory(), suppliedGas)
	case bytes.Equal(selector, treasurySignature):
		return c.runAddressGetter(c.proxy.Treasury(), suppliedGas)
	case bytes.Equal(selector, feeRateSignature):
		return c.runFeeRate(suppliedGas)
	case bytes.Equal(selector, totalDepositedSignature):
		return c.runTotal(c.proxy.TotalDeposited, args, suppliedGas)
	case bytes.Equal(selector, totalWithdrawnSignature):
		return c.runTotal(c.proxy.TotalWithdrawn, args, suppliedGas)
	default:
		return nil, suppliedGas, ErrInvalidInput
	}
}

// RequiredGas returns the gas required for [input].
func (c *CustodyContract) RequiredGas(input []byte) uint64 {
	if len(input) < contract.SelectorLen {
		return GasLedgerRead
	}

	selector := input[:contract.SelectorLen]
	switch {
	case bytes.Equal(selector, initializeSignature):
		return GasInitialize
	case bytes.Equal(selector, depositSignature):
		return GasDeposit
	case bytes.Equal(selector, withdrawSignature):
		return GasWithdraw
	case bytes.Equal(selector, callAnyFunctionSignature):
		return GasCallAny
	case bytes.Equal(selector, claimRewardSignature):
		return GasClaimReward
	case bytes.Equal(selector, checkCalldataSignature):
		return GasCheckCalldata
	case bytes.Equal(selector, isValidSignatureSignature):
		return GasValidateSignature
	default:
		return GasLedgerRead
	}
}

// initialize input: client (32) + feeBps (32)
func (c *CustodyContract) runInitialize(
	caller common.Address,
	args []byte,
	suppliedGas uint64,
	readOnly bool,
) ([]byte, uint64, error) {
	remainingGas, err := contract.DeductGas(suppliedGas, GasInitialize)
	if err != nil {
		return nil, 0, err
	}
	if readOnly {
		return nil, remainingGas, contract.ErrWriteProtection
	}
	if len(args) < 2*common.HashLength {
		return nil, remainingGas, ErrInvalidInput
	}

	client := common.BytesToAddress(contract.PackedHash(args, 0))
	feeBps := new(big.Int).SetBytes(contract.PackedHash(args, 1))
	if !feeBps.IsUint64() {
		return nil, remainingGas, ErrInvalidFeeRate
	}

	if err := c.proxy.Initialize(caller, client, feeBps.Uint64()); err != nil {
		return nil, remainingGas, err
	}
	return nil, remainingGas, nil
}

// deposit input: target (32) + asset (32) + amount (32) + authLen (32) +
// authorization (authLen) + payload (rest)
func (c *CustodyContract) runDeposit(
	caller common.Address,
	args []byte,
	suppliedGas uint64,
	readOnly bool,
) ([]byte, uint64, error) {
	remainingGas, err := contract.DeductGas(suppliedGas, GasDeposit)
	if err != nil {
		return nil, 0, err
	}
	if readOnly {
		return nil, remainingGas, contract.ErrWriteProtection
	}
	if len(args) < 4*common.HashLength {
		return nil, remainingGas, ErrInvalidInput
	}

	target := common.BytesToAddress(contract.PackedHash(args, 0))
	asset := common.BytesToAddress(contract.PackedHash(args, 1))
	amount := new(big.Int).SetBytes(contract.PackedHash(args, 2))
	authLen := new(big.Int).SetBytes(contract.PackedHash(args, 3))

	offset := 4 * common.HashLength
	if !authLen.IsInt64() || int64(len(args)-offset) < authLen.Int64() {
		return nil, remainingGas, ErrInvalidInput
	}
	authorization := args[offset : offset+int(authLen.Int64())]
	payload := args[offset+int(authLen.Int64()):]

	if err := c.proxy.Deposit(caller, target, payload, asset, amount, authorization); err != nil {
		return nil, remainingGas, err
	}
	return nil, remainingGas, nil
}

// withdraw input: target (32) + vault (32) + shares (32) + payload (rest)
func (c *CustodyContract) runWithdraw(
	caller common.Address,
	args []byte,
	suppliedGas uint64,
	readOnly bool,
) ([]byte, uint64, error) {
	remainingGas, err := contract.DeductGas(suppliedGas, GasWithdraw)
	if err != nil {
		return nil, 0, err
	}
	if readOnly {
		return nil, remainingGas, contract.ErrWriteProtection
	}
	if len(args) < 3*common.HashLength {
		return nil, remainingGas, ErrInvalidInput
	}

	target := common.BytesToAddress(contract.PackedHash(args, 0))
	vault := common.BytesToAddress(contract.PackedHash(args, 1))
	shares := new(big.Int).SetBytes(contract.PackedHash(args, 2))
	payload := args[3*common.HashLength:]

	if err := c.proxy.Withdraw(caller, target, payload, vault, shares); err != nil {
		return nil, remainingGas, err
	}
	return nil, remainingGas, nil
}

// callAnyFunction input: target (32) + payload (rest)
func (c *CustodyContract) runCallAnyFunction(
	caller common.Address,
	args []byte,
	suppliedGas uint64,
	readOnly bool,
) ([]byte, uint64, error) {
	remainingGas, err := contract.DeductGas(suppliedGas, GasCallAny)
	if err != nil {
		return nil, 0, err
	}
	if readOnly {
		return nil, remainingGas, contract.ErrWriteProtection
	}
	if len(args) < common.HashLength {
		return nil, remainingGas, ErrInvalidInput
	}

	target := common.BytesToAddress(contract.PackedHash(args, 0))
	payload := args[common.HashLength:]

	if err := c.proxy.CallAnyFunction(caller, target, payload); err != nil {
		return nil, remainingGas, err
	}
	return nil, remainingGas, nil
}

// claimReward input: distributor (32) + reward (32) + amount (32) +
// proofLen (32) + proof nodes (32 each)
func (c *CustodyContract) runClaimReward(
	caller common.Address,
	args []byte,
	suppliedGas uint64,
	readOnly bool,
) ([]byte, uint64, error) {
	remainingGas, err := contract.DeductGas(suppliedGas, GasClaimReward)
	if err != nil {
		return nil, 0, err
	}
	if readOnly {
		return nil, remainingGas, contract.ErrWriteProtection
	}
	if len(args) < 4*common.HashLength {
		return nil, remainingGas, ErrInvalidInput
	}

	distributor := common.BytesToAddress(contract.PackedHash(args, 0))
	reward := common.BytesToAddress(contract.PackedHash(args, 1))
	amount := new(big.Int).SetBytes(contract.PackedHash(args, 2))
	proofLen := new(big.Int).SetBytes(contract.PackedHash(args, 3))

	if !proofLen.IsInt64() || int64(len(args)/common.HashLength-4) < proofLen.Int64() {
		return nil, remainingGas, ErrInvalidInput
	}
	proof := make([][32]byte, proofLen.Int64())
	for i := range proof {
		copy(proof[i][:], contract.PackedHash(args, 4+i))
	}

	if err := c.proxy.ClaimReward(caller, distributor, reward, amount, proof); err != nil {
		return nil, remainingGas, err
	}
	return nil, remainingGas, nil
}

// checkCalldata input: target (32) + kind (32) + selector (4) + remainder (rest)
func (c *CustodyContract) runCheckCalldata(args []byte, suppliedGas uint64) ([]byte, uint64, error) {
	remainingGas, err := contract.DeductGas(suppliedGas, GasCheckCalldata)
	if err != nil {
		return nil, 0, err
	}
	if len(args) < 2*common.HashLength+contract.SelectorLen {
		return nil, remainingGas, ErrInvalidInput
	}

	target := common.BytesToAddress(contract.PackedHash(args, 0))
	kind := OperationKind(new(big.Int).SetBytes(contract.PackedHash(args, 1)).Uint64())

	var selector [4]byte
	copy(selector[:], args[2*common.HashLength:])
	remainder := args[2*common.HashLength+contract.SelectorLen:]

	result := make([]byte, common.HashLength)
	if c.proxy.CheckCalldata(target, selector, remainder, kind) {
		result[common.HashLength-1] = 1
	}
	return result, remainingGas, nil
}

// isValidSignature input: hash (32) + signature (rest)
func (c *CustodyContract) runIsValidSignature(args []byte, suppliedGas uint64) ([]byte, uint64, error) {
	remainingGas, err := contract.DeductGas(suppliedGas, GasValidateSignature)
	if err != nil {
		return nil, 0, err
	}
	if len(args) < common.HashLength {
		return nil, remainingGas, ErrInvalidInput
	}

	hash := common.BytesToHash(contract.PackedHash(args, 0))
	signature := args[common.HashLength:]

	magic, err := c.proxy.ValidateSignature(hash, signature)
	if err != nil {
		return nil, remainingGas, err
	}

	// bytes4 return value, left-aligned in a 32 byte word.
	result := make([]byte, common.HashLength)
	copy(result, magic[:])
	return result, remainingGas, nil
}

func (c *CustodyContract) runAddressGetter(addr common.Address, suppliedGas uint64) ([]byte, uint64, error) {
	remainingGas, err := contract.DeductGas(suppliedGas, GasLedgerRead)
	if err != nil {
		return nil, 0, err
	}
	return common.BytesToHash(addr.Bytes()).Bytes(), remainingGas, nil
}

func (c *CustodyContract) runFeeRate(suppliedGas uint64) ([]byte, uint64, error) {
	remainingGas, err := contract.DeductGas(suppliedGas, GasLedgerRead)
	if err != nil {
		return nil, 0, err
	}
	return common.BigToHash(new(big.Int).SetUint64(c.proxy.FeeRate())).Bytes(), remainingGas, nil
}

func (c *CustodyContract) runTotal(total func(common.Address) *big.Int, args []byte, suppliedGas uint64) ([]byte, uint64, error) {
	remainingGas, err := contract.DeductGas(suppliedGas, GasLedgerRead)
	if err != nil {
		return nil, 0, err
	}
	if len(args) < common.HashLength {
		return nil, remainingGas, ErrInvalidInput
	}
	asset := common.BytesToAddress(contract.PackedHash(args, 0))
	return common.BigToHash(total(asset)).Bytes(), remainingGas, nil
}
