// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package contract defines the interfaces and helpers shared by stateful
// precompiled contracts. Precompiles receive an AccessibleState handle,
// a caller address and raw calldata, and must meter their own gas.
package contract

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
	luxcrypto "github.com/luxfi/crypto"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/core/tracing"
)

const (
	// SelectorLen is the length of a function selector in bytes
	SelectorLen = 4

	ReadGasCostPerSlot  uint64 = 5_000
	WriteGasCostPerSlot uint64 = 20_000
)

var (
	ErrOutOfGas        = errors.New("out of gas")
	ErrWriteProtection = errors.New("cannot write in read-only mode")
)

// StateDB is the subset of the EVM state database precompiles may touch.
type StateDB interface {
	GetState(common.Address, common.Hash) common.Hash
	SetState(common.Address, common.Hash, common.Hash) common.Hash

	GetBalance(common.Address) *uint256.Int
	AddBalance(common.Address, *uint256.Int, tracing.BalanceChangeReason) uint256.Int
	SubBalance(common.Address, *uint256.Int, tracing.BalanceChangeReason) uint256.Int

	GetNonce(common.Address) uint64
	SetNonce(common.Address, uint64, tracing.NonceChangeReason)

	CreateAccount(common.Address)
	Exist(common.Address) bool
}

// BlockContext exposes block-level data to a precompile.
type BlockContext interface {
	Number() *big.Int
	Timestamp() uint64
}

// ConfigurationBlockContext is the block context available while a
// precompile is being configured (activation block).
type ConfigurationBlockContext = BlockContext

// AccessibleState is the execution state handle passed into Run.
type AccessibleState interface {
	GetStateDB() StateDB
	GetBlockContext() BlockContext
}

// StatefulPrecompiledContract is the interface every precompile implements.
type StatefulPrecompiledContract interface {
	// Run executes the precompiled contract.
	Run(
		accessibleState AccessibleState,
		caller common.Address,
		addr common.Address,
		input []byte,
		suppliedGas uint64,
		readOnly bool,
	) (ret []byte, remainingGas uint64, err error)
}

// RunStatefulPrecompileFunc is the signature of a single precompile method.
type RunStatefulPrecompileFunc func(
	accessibleState AccessibleState,
	caller common.Address,
	addr common.Address,
	input []byte,
	suppliedGas uint64,
	readOnly bool,
) (ret []byte, remainingGas uint64, err error)

// CalculateFunctionSelector returns the 4 byte function selector of
// [functionSignature], e.g. "withdraw(address,uint256)".
func CalculateFunctionSelector(functionSignature string) []byte {
	hash := luxcrypto.Keccak256([]byte(functionSignature))
	return hash[:SelectorLen]
}

// DeductGas subtracts [requiredGas] from [suppliedGas] or returns ErrOutOfGas.
func DeductGas(suppliedGas uint64, requiredGas uint64) (uint64, error) {
	if suppliedGas < requiredGas {
		return 0, ErrOutOfGas
	}
	return suppliedGas - requiredGas, nil
}

// PackedHash returns the 32 byte word at [index] of [input], or nil if
// [input] is too short.
func PackedHash(input []byte, index int) []byte {
	start := common.HashLength * index
	end := start + common.HashLength
	if len(input) < end {
		return nil
	}
	return input[start:end]
}

// PackOrderedHashes packs [hashes] into [dst], which must be exactly
// len(hashes)*32 bytes.
func PackOrderedHashes(dst []byte, hashes []common.Hash) error {
	if len(dst) != len(hashes)*common.HashLength {
		return fmt.Errorf("destination length %d does not match %d hashes", len(dst), len(hashes))
	}
	for i, hash := range hashes {
		copy(dst[i*common.HashLength:], hash.Bytes())
	}
	return nil
}

// PackOrderedHashesWithSelector packs [selector] followed by [hashes] into [dst].
func PackOrderedHashesWithSelector(dst []byte, selector []byte, hashes []common.Hash) error {
	if len(dst) != len(selector)+len(hashes)*common.HashLength {
		return fmt.Errorf("destination length %d does not match selector plus %d hashes", len(dst), len(hashes))
	}
	copy(dst, selector)
	return PackOrderedHashes(dst[len(selector):], hashes)
}
