package nft

import (
	"encoding/binary"
	"fmt"
)

// Taxon scrambling constants. The ledger XORs the issuer's taxon with
// Scramble(sequence) before storing it, so that sequential mints under one
// taxon do not produce visibly grouped TokenIDs.
const (
	scrambleMultiplier = 384160001
	scrambleIncrement  = 2459
)

// Taxon is the issuer-chosen 32-bit grouping tag of a token.
type Taxon uint32

// TaxonFromBytes decodes a 4-byte big-endian taxon field.
func TaxonFromBytes(b []byte) (Taxon, error) {
	if len(b) != 4 {
		return 0, fmt.Errorf("taxon must be 4 bytes, got %d: %w", len(b), ErrFormat)
	}
	return Taxon(binary.BigEndian.Uint32(b)), nil
}

// Bytes returns the big-endian encoding.
func (t Taxon) Bytes() [4]byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(t))
	return b
}

// Scramble returns (384160001*sequence + 2459) mod 2^32.
func Scramble(sequence uint32) uint32 {
	return scrambleMultiplier*sequence + scrambleIncrement
}

// Cipher XORs the taxon with Scramble(sequence). It is its own inverse:
// applied to an issuer taxon it yields the stored value, and applied to a
// stored value it yields the issuer taxon.
func (t Taxon) Cipher(sequence uint32) Taxon {
	return t ^ Taxon(Scramble(sequence))
}
