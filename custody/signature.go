// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package custody

import (
	luxcrypto "github.com/luxfi/crypto"
	"github.com/luxfi/geth/common"
)

// ecdsaVerifier is the default SignatureVerifier: a 65 byte secp256k1
// signature must recover to the client address. Contract-style clients plug
// in their own verifier instead.
type ecdsaVerifier struct{}

func (ecdsaVerifier) Verify(client common.Address, hash common.Hash, signature []byte) bool {
	if len(signature) != luxcrypto.SignatureLength {
		return false
	}

	// Accept both 0/1 and 27/28 recovery ids.
	sig := make([]byte, luxcrypto.SignatureLength)
	copy(sig, signature)
	if sig[luxcrypto.RecoveryIDOffset] >= 27 {
		sig[luxcrypto.RecoveryIDOffset] -= 27
	}

	pubkey, err := luxcrypto.SigToPub(hash.Bytes(), sig)
	if err != nil {
		return false
	}
	recovered := luxcrypto.PubkeyToAddress(*pubkey)
	return common.BytesToAddress(recovered.Bytes()) == client
}
