// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package precompileconfig defines the configuration interface implemented by
// every stateful precompile config, plus the shared activation Upgrade block.
package precompileconfig

import "math/big"

// Config is implemented by each precompile's JSON config struct.
type Config interface {
	// Key returns the unique key for this precompile in chain config json.
	Key() string
	// Timestamp returns the activation timestamp, nil if never activated.
	Timestamp() *uint64
	// IsDisabled returns true if this config disables the precompile.
	IsDisabled() bool
	// Equal reports whether [other] configures the same behavior.
	Equal(other Config) bool
	// Verify checks the config is self-consistent for [chainConfig].
	Verify(chainConfig ChainConfig) error
}

// ChainConfig is the subset of chain configuration precompiles may inspect.
type ChainConfig interface {
	ChainID() *big.Int
}

// Upgrade is embedded in every precompile Config to control activation.
type Upgrade struct {
	BlockTimestamp *uint64 `json:"blockTimestamp,omitempty"`
	Disable        bool    `json:"disable,omitempty"`
}

// Timestamp returns the timestamp this upgrade activates at.
func (u *Upgrade) Timestamp() *uint64 {
	return u.BlockTimestamp
}

// Equal reports whether [other] describes the same upgrade.
func (u *Upgrade) Equal(other *Upgrade) bool {
	if other == nil {
		return false
	}
	if u.Disable != other.Disable {
		return false
	}
	if (u.BlockTimestamp == nil) != (other.BlockTimestamp == nil) {
		return false
	}
	if u.BlockTimestamp != nil && *u.BlockTimestamp != *other.BlockTimestamp {
		return false
	}
	return true
}
