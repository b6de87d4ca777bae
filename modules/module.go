// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package modules provides registration for stateful precompile modules so
// the hosting EVM can look them up by address or config key.
package modules

import (
	"bytes"

	"github.com/luxfi/geth/common"

	"github.com/luxfi/custody/contract"
)

// Module wraps one stateful precompile with its address and configurator.
type Module struct {
	// ConfigKey is the key used in chain config json files.
	ConfigKey string
	// Address is the address where the precompile is deployed.
	Address common.Address
	// Contract is the precompile implementation.
	Contract contract.StatefulPrecompiledContract
	// Configurator creates and applies this precompile's config.
	Configurator contract.Configurator
}

type moduleArray []Module

func (m moduleArray) Len() int      { return len(m) }
func (m moduleArray) Swap(i, j int) { m[i], m[j] = m[j], m[i] }
func (m moduleArray) Less(i, j int) bool {
	return bytes.Compare(m[i].Address.Bytes(), m[j].Address.Bytes()) < 0
}
