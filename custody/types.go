// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package custody implements the custody proxy precompile (LP-6110).
//
// A proxy holds one client's deposited assets, forwards deposit and
// withdrawal instructions to an external yield protocol, and splits realized
// profit between the client and the operator treasury at a fixed rate. Every
// state-mutating operation is gated by caller role, and every forwarded
// instruction is validated against the factory's allow-list first.
package custody

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/luxfi/geth/common"
)

// ContractAddress is the address of the custody proxy precompile (LP-6110)
var ContractAddress = common.HexToAddress("0x0000000000000000000000000000000000006110")

// BasisPoints is the fee rate denominator (10000 = 100%)
const BasisPoints uint64 = 10000

// MaxAllowance is the unlimited allowance granted to the permit executor.
var MaxAllowance = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// SignatureMagicValue is returned by ValidateSignature on success
// (ERC-1271 isValidSignature magic value).
var SignatureMagicValue = [4]byte{0x16, 0x26, 0xba, 0x7e}

// Gas costs
const (
	GasInitialize        uint64 = 20_000 // One-time client/fee setup
	GasDeposit           uint64 = 50_000 // Permit pull + forward
	GasWithdraw          uint64 = 60_000 // Forward + fee split + transfers
	GasCallAny           uint64 = 30_000 // Unrestricted forward
	GasClaimReward       uint64 = 50_000 // Bundled claim + flat split
	GasCheckCalldata     uint64 = 5_000  // Allow-list pass-through
	GasValidateSignature uint64 = 6_000  // ecrecover
	GasLedgerRead        uint64 = 2_000  // Accessor reads
)

// OperationKind declares the intent of a forwarded instruction so the
// allow-list engine can apply kind-specific rules.
type OperationKind uint8

const (
	KindDeposit OperationKind = iota + 1
	KindWithdrawal
	KindUnrestricted
)

// String returns the allow-list rule name of the kind.
func (k OperationKind) String() string {
	switch k {
	case KindDeposit:
		return "deposit"
	case KindWithdrawal:
		return "withdrawal"
	case KindUnrestricted:
		return "unrestricted"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// Validation errors
var (
	ErrZeroAsset          = errors.New("asset address is zero")
	ErrZeroAmount         = errors.New("deposit amount is zero")
	ErrZeroShares         = errors.New("withdrawal shares are zero")
	ErrInvalidFeeRate     = errors.New("fee rate out of (0, 10000] bounds")
	ErrAlreadyInitialized = errors.New("proxy already initialized")
	ErrNotInitialized     = errors.New("proxy not initialized")
)

// Authorization and outcome errors
var (
	ErrUnauthorized       = errors.New("unauthorized caller")
	ErrCalldataNotAllowed = errors.New("calldata rejected by allow-list")
	ErrNothingClaimed     = errors.New("nothing claimed")
	ErrInvalidSignature   = errors.New("invalid client signature")
	ErrReentrant          = errors.New("reentrancy detected")
	ErrInvalidInput       = errors.New("invalid input")
)

// UnauthorizedCallerError reports a role-gate failure with the actual and
// expected caller identities. It unwraps to ErrUnauthorized.
type UnauthorizedCallerError struct {
	Role     string // "factory" or "client"
	Caller   common.Address
	Expected common.Address
}

func (e *UnauthorizedCallerError) Error() string {
	return fmt.Sprintf("unauthorized caller %s: expected %s %s", e.Caller, e.Role, e.Expected)
}

func (e *UnauthorizedCallerError) Unwrap() error { return ErrUnauthorized }

// AllowListChecker decides whether a forwarded instruction is permitted.
// The proxy never embeds rule-matching logic itself.
type AllowListChecker interface {
	// CheckCalldata reports whether calling [selector] on [target] with
	// [payload] is permitted for the declared operation [kind].
	CheckCalldata(target common.Address, selector [4]byte, payload []byte, kind OperationKind) bool
}

// Factory is the custody factory collaborator (LP-6100): the source of truth
// for allow-list decisions and operator authorization.
type Factory interface {
	AllowListChecker

	// IsAuthorizedClaimer reports whether [caller] may claim rewards on
	// behalf of [client]. The client itself never goes through this check.
	IsAuthorizedClaimer(caller common.Address, client common.Address) bool
}

// TokenBackend moves and inspects token balances on behalf of the proxy.
type TokenBackend interface {
	BalanceOf(token common.Address, account common.Address) *big.Int
	Transfer(token common.Address, from common.Address, to common.Address, amount *big.Int) error
	Approve(token common.Address, owner common.Address, spender common.Address, amount *big.Int) error
	Allowance(token common.Address, owner common.Address, spender common.Address) *big.Int
}

// PermitTransferor pulls tokens from a holder using a signed off-chain
// authorization instead of a standing on-chain approval (LP-6130).
type PermitTransferor interface {
	// Executor returns the address that spends standing allowances when
	// executing subsequent permit transfers.
	Executor() common.Address

	// PermitTransferFrom moves [amount] of [token] from [from] to [to],
	// authorized by [authorization].
	PermitTransferFrom(token common.Address, from common.Address, to common.Address, amount *big.Int, authorization []byte) error
}

// ExternalCaller executes one opaque instruction against an external target.
type ExternalCaller interface {
	Call(target common.Address, payload []byte) ([]byte, error)
}

// Call is a single instruction inside an executor bundle.
type Call struct {
	Target  common.Address
	Payload []byte
}

// Executor runs one or more instructions atomically (LP-6140).
type Executor interface {
	Execute(calls []Call) error
}

// VaultRegistry resolves vault share tokens and their underlying assets.
type VaultRegistry interface {
	// UnderlyingAsset returns the asset a vault's shares redeem into.
	UnderlyingAsset(vault common.Address) (common.Address, error)

	// ShareToken returns the token representing shares of [vault].
	ShareToken(vault common.Address) (common.Address, error)
}

// SignatureVerifier validates that a signature over a hash was produced by
// the client's key. Pluggable so contract-style clients can be supported.
type SignatureVerifier interface {
	Verify(client common.Address, hash common.Hash, signature []byte) bool
}
