// Package crypto wraps the hashing and signature primitives used by the
// XRPL tooling. Nothing here implements a primitive; it only composes
// library calls into the shapes the ledger uses.
package crypto

import (
	"crypto/sha512"

	"github.com/audiotarky/xrplpers/pkg/types"
	"github.com/minio/sha256-simd"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/ripemd160"
)

// Hash computes a BLAKE3-256 hash of the input data. It is used for local
// content addressing, never for anything the ledger verifies.
func Hash(data []byte) types.Hash {
	return blake3.Sum256(data)
}

// SHA512Half returns the first 32 bytes of SHA-512(data), the ledger's
// standard hash for signing payloads and object IDs.
func SHA512Half(data []byte) types.Hash {
	sum := sha512.Sum512(data)
	var h types.Hash
	copy(h[:], sum[:types.HashSize])
	return h
}

// AccountIDFromPublicKey derives an account ID from a 33-byte public key
// (compressed secp256k1, or 0xED-prefixed ed25519).
// AccountID = RIPEMD160(SHA256(pubkey)).
func AccountIDFromPublicKey(pubKey []byte) (types.AccountID, error) {
	if _, err := parsePublicKey(pubKey); err != nil {
		return types.AccountID{}, err
	}
	inner := sha256.Sum256(pubKey)
	r := ripemd160.New()
	r.Write(inner[:])
	var id types.AccountID
	copy(id[:], r.Sum(nil))
	return id, nil
}
