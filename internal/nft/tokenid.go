// Package nft models XRPL non-fungible tokens as they appear in ledger
// history.
//
// Tokens are identified by a 32-byte TokenID that packs flags, transfer fee,
// issuer, taxon and a ledger-assigned sequence. Ownership is not a
// per-token record: tokens live inside NFTokenPage objects, and transaction
// metadata only shows each page's token list before and after the change.
// The Reconciler diffs those snapshots and merges what it sees into an
// insert-only tracked set, so replaying overlapping history is safe.
package nft

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/audiotarky/xrplpers/pkg/types"
)

// TokenIDSize is the length of an encoded TokenID in bytes.
const TokenIDSize = 32

// Field offsets within an encoded TokenID.
//
//	[0:2]   flags        (big-endian uint16)
//	[2:4]   transfer fee (big-endian uint16)
//	[4:24]  issuer       (account ID)
//	[24:28] taxon        (big-endian uint32, stored ciphered)
//	[28:32] sequence     (big-endian uint32)
const (
	offFlags    = 0
	offFee      = 2
	offIssuer   = 4
	offTaxon    = offIssuer + types.AccountIDSize
	offSequence = offTaxon + 4
)

// TokenID is the composite identity of a token.
type TokenID struct {
	Flags       Flags
	TransferFee TransferFee
	Issuer      types.AccountID
	// Taxon is the value stored in the identifier, taken at face value.
	// See UnscrambledTaxon for the issuer-chosen value.
	Taxon    Taxon
	Sequence uint32
}

// DecodeTokenID parses a 64-character hex TokenID (either case).
func DecodeTokenID(s string) (TokenID, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return TokenID{}, fmt.Errorf("token ID %q: %v: %w", s, err, ErrFormat)
	}
	return TokenIDFromBytes(b)
}

// TokenIDFromBytes unpacks a raw 32-byte TokenID.
func TokenIDFromBytes(b []byte) (TokenID, error) {
	if len(b) != TokenIDSize {
		return TokenID{}, fmt.Errorf("token ID must be %d bytes, got %d: %w", TokenIDSize, len(b), ErrFormat)
	}

	flags, err := ParseFlags(binary.BigEndian.Uint16(b[offFlags:offFee]))
	if err != nil {
		return TokenID{}, fmt.Errorf("token ID flags: %w", err)
	}
	fee, err := TransferFeeFromBytes(b[offFee:offIssuer])
	if err != nil {
		return TokenID{}, fmt.Errorf("token ID fee: %w", err)
	}
	taxon, err := TaxonFromBytes(b[offTaxon:offSequence])
	if err != nil {
		return TokenID{}, fmt.Errorf("token ID taxon: %w", err)
	}

	id := TokenID{
		Flags:       flags,
		TransferFee: fee,
		Taxon:       taxon,
		Sequence:    binary.BigEndian.Uint32(b[offSequence:]),
	}
	copy(id.Issuer[:], b[offIssuer:offTaxon])
	return id, nil
}

// PredictTokenID builds the TokenID a mint with these parameters would get
// if the ledger assigns the given sequence. Flags are fixed to transferable.
//
// This is a best-effort guess: the ledger assigns the sequence when the mint
// applies, and it stores the taxon ciphered, so a prediction must not be
// compared against ledger-observed IDs without checking the mint's metadata.
func PredictTokenID(issuer types.AccountID, fee TransferFee, taxon Taxon, sequence uint32) TokenID {
	return TokenID{
		Flags:       FlagTransferable,
		TransferFee: fee,
		Issuer:      issuer,
		Taxon:       taxon,
		Sequence:    sequence,
	}
}

// Bytes packs the TokenID into its 32-byte wire form.
func (id TokenID) Bytes() [TokenIDSize]byte {
	var b [TokenIDSize]byte
	flags := id.Flags.Bytes()
	fee := id.TransferFee.Bytes()
	taxon := id.Taxon.Bytes()
	copy(b[offFlags:], flags[:])
	copy(b[offFee:], fee[:])
	copy(b[offIssuer:], id.Issuer[:])
	copy(b[offTaxon:], taxon[:])
	binary.BigEndian.PutUint32(b[offSequence:], id.Sequence)
	return b
}

// Encode returns the uppercase hex wire form.
func (id TokenID) Encode() string {
	b := id.Bytes()
	return strings.ToUpper(hex.EncodeToString(b[:]))
}

// String returns the uppercase hex wire form.
func (id TokenID) String() string {
	return id.Encode()
}

// UnscrambledTaxon undoes the ledger's taxon cipher. Decode and Encode never
// call it; the stored bytes stay authoritative.
func (id TokenID) UnscrambledTaxon() Taxon {
	return id.Taxon.Cipher(id.Sequence)
}

// Describe renders a human-readable summary.
func (id TokenID) Describe() string {
	return fmt.Sprintf("token %d issued by %s with a transfer fee of %s (%s)",
		id.Sequence, id.Issuer, id.TransferFee, id.Flags)
}

// MarshalJSON encodes the TokenID as uppercase hex.
func (id TokenID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.Encode())
}

// UnmarshalJSON decodes a hex TokenID.
func (id *TokenID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("token ID: %w", ErrFormat)
	}
	parsed, err := DecodeTokenID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
