// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package custody

import (
	"encoding/binary"
	"math/big"

	"github.com/luxfi/geth/common"
	"github.com/zeebo/blake3"
)

// EventKind identifies the audit event type.
type EventKind uint8

const (
	EventInitialized EventKind = iota + 1
	EventDeposited
	EventWithdrawn
	EventCalledAsAnyFunction
	EventClaimedReward
)

// String returns the event name as it appears in logs.
func (k EventKind) String() string {
	switch k {
	case EventInitialized:
		return "Initialized"
	case EventDeposited:
		return "Deposited"
	case EventWithdrawn:
		return "Withdrawn"
	case EventCalledAsAnyFunction:
		return "CalledAsAnyFunction"
	case EventClaimedReward:
		return "ClaimedReward"
	default:
		return "Unknown"
	}
}

// Event is one append-only audit record emitted by a state-changing
// operation. Fields not listed for a kind are zero:
//
//	Initialized:         Client, FeeBps
//	Deposited:           Target, Asset, Amount, NewTotal
//	Withdrawn:           Target, Vault, Asset, Shares, Released, NewTotal,
//	                     NewProfit, Fee, ClientAmount
//	CalledAsAnyFunction: Target
//	ClaimedReward:       Distributor, Reward, Released, Fee, ClientAmount
type Event struct {
	Kind EventKind
	ID   [32]byte // blake3 over kind, sequence and addresses
	Seq  uint64

	Client      common.Address
	Target      common.Address
	Asset       common.Address
	Vault       common.Address
	Distributor common.Address
	Reward      common.Address

	FeeBps       uint64
	Amount       *big.Int
	Shares       *big.Int
	Released     *big.Int
	NewTotal     *big.Int
	NewProfit    *big.Int
	Fee          *big.Int
	ClientAmount *big.Int
}

func eventID(kind EventKind, seq uint64, addrs ...common.Address) [32]byte {
	h := blake3.New()
	h.Write([]byte{byte(kind)})

	var seqBytes [8]byte
	binary.BigEndian.PutUint64(seqBytes[:], seq)
	h.Write(seqBytes[:])

	for _, addr := range addrs {
		h.Write(addr.Bytes())
	}

	var id [32]byte
	h.Digest().Read(id[:])
	return id
}
