package types

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/minio/sha256-simd"
	"github.com/mr-tron/base58"
)

// AccountIDSize is the length of an account identifier in bytes.
const AccountIDSize = 20

// accountIDVersion is the base58check version byte for classic addresses.
const accountIDVersion byte = 0x00

// checksumSize is the length of the base58check checksum.
const checksumSize = 4

// Alphabet is the ledger's base58 dictionary. It differs from Bitcoin's so
// that classic addresses start with 'r'.
const Alphabet = "rpshnaf39wBUDNEGHJKLM4PQRST7VWXYZ2bcdeCg65jkm8oFqi1tuvAxyz"

var xrplAlphabet = base58.NewAlphabet(Alphabet)

// AccountID is a 160-bit account identifier.
type AccountID [AccountIDSize]byte

// IsZero returns true if the account ID is all zeros.
func (a AccountID) IsZero() bool {
	return a == AccountID{}
}

// String returns the classic address (e.g. "rNCFjv8Ek5oDrNiMJ3pw6eLLFtMjZLJnf2").
func (a AccountID) String() string {
	payload := make([]byte, 0, 1+AccountIDSize+checksumSize)
	payload = append(payload, accountIDVersion)
	payload = append(payload, a[:]...)
	payload = append(payload, checksum(payload)...)
	return base58.EncodeAlphabet(payload, xrplAlphabet)
}

// Hex returns the raw account ID as uppercase hex.
func (a AccountID) Hex() string {
	return strings.ToUpper(hex.EncodeToString(a[:]))
}

// Bytes returns a copy of the account ID as a byte slice.
func (a AccountID) Bytes() []byte {
	b := make([]byte, AccountIDSize)
	copy(b, a[:])
	return b
}

// MarshalJSON encodes the account ID as a classic address.
func (a AccountID) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON decodes a classic address or raw hex string into an account ID.
func (a *AccountID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*a = AccountID{}
		return nil
	}
	parsed, err := ParseAccountID(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAccountID parses a classic address ("r...") or a raw 40-char hex
// account ID.
func ParseAccountID(s string) (AccountID, error) {
	if s == "" {
		return AccountID{}, fmt.Errorf("empty account")
	}
	if isHex40(s) {
		return HexToAccountID(s)
	}
	if s[0] != Alphabet[0] {
		return AccountID{}, fmt.Errorf("classic address must start with %q", Alphabet[0])
	}

	decoded, err := base58.DecodeAlphabet(s, xrplAlphabet)
	if err != nil {
		return AccountID{}, fmt.Errorf("invalid base58 address: %w", err)
	}
	if len(decoded) != 1+AccountIDSize+checksumSize {
		return AccountID{}, fmt.Errorf("address must decode to %d bytes, got %d",
			1+AccountIDSize+checksumSize, len(decoded))
	}
	body, sum := decoded[:len(decoded)-checksumSize], decoded[len(decoded)-checksumSize:]
	if !bytes.Equal(checksum(body), sum) {
		return AccountID{}, fmt.Errorf("address checksum mismatch")
	}
	if body[0] != accountIDVersion {
		return AccountID{}, fmt.Errorf("unexpected address version %d", body[0])
	}

	var a AccountID
	copy(a[:], body[1:])
	return a, nil
}

// HexToAccountID converts a raw hex string to an AccountID.
// Returns an error if the string is not exactly 40 hex characters.
func HexToAccountID(s string) (AccountID, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return AccountID{}, fmt.Errorf("invalid hex: %w", err)
	}
	if len(b) != AccountIDSize {
		return AccountID{}, fmt.Errorf("account must be %d bytes, got %d", AccountIDSize, len(b))
	}
	var a AccountID
	copy(a[:], b)
	return a, nil
}

// checksum returns the first four bytes of SHA256(SHA256(b)).
func checksum(b []byte) []byte {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return second[:checksumSize]
}

// isHex40 returns true if s is exactly 40 hex characters.
func isHex40(s string) bool {
	if len(s) != 40 {
		return false
	}
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
