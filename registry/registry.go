// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package registry documents the custody precompile address scheme and
// provides helpers for deriving LP-aligned addresses.
package registry

import (
	"fmt"

	"github.com/luxfi/geth/common"
)

// ============================================================================
// CUSTODY PRECOMPILE ADDRESS SCHEME - Aligned with LP Numbering
// ============================================================================
//
// All custody precompiles use trailing-significant 20-byte addresses:
//   Format: 0x0000000000000000000000000000000000PCII
//
// The address ends with the 16-bit LP number for easy identification.
// LP-61xx is the custody family:
//
//   LP-6100  Custody factory (deploys and addresses one proxy per client)
//   LP-6110  Custody proxy (accounting and authorization core)
//   LP-6120  Allow-list engine (calldata rule matching)
//   LP-6130  Permit transferor (signature-based token pulls)
//   LP-6140  Bundle executor (atomic multi-call execution)

const (
	// LPFactory is the LP number of the custody factory.
	LPFactory uint16 = 0x6100
	// LPProxy is the LP number of the custody proxy core.
	LPProxy uint16 = 0x6110
	// LPAllowList is the LP number of the allow-list engine.
	LPAllowList uint16 = 0x6120
	// LPPermit is the LP number of the permit transferor.
	LPPermit uint16 = 0x6130
	// LPExecutor is the LP number of the bundle executor.
	LPExecutor uint16 = 0x6140
)

// LPAddress derives the precompile address for LP number [lp].
func LPAddress(lp uint16) common.Address {
	var addr common.Address
	addr[18] = byte(lp >> 8)
	addr[19] = byte(lp)
	return addr
}

// LPName returns the human readable name of a custody LP number.
func LPName(lp uint16) string {
	switch lp {
	case LPFactory:
		return "CustodyFactory"
	case LPProxy:
		return "CustodyProxy"
	case LPAllowList:
		return "AllowListEngine"
	case LPPermit:
		return "PermitTransferor"
	case LPExecutor:
		return "BundleExecutor"
	default:
		return fmt.Sprintf("Unknown(0x%04x)", lp)
	}
}
