package nft

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Flags is the 16-bit per-token settings field of a TokenID.
type Flags uint16

// Token flags, as stored in the first two bytes of a TokenID.
const (
	// FlagBurnable lets the issuer (or its authorized minter) burn the token.
	// The owner can always burn.
	FlagBurnable Flags = 0x0001
	// FlagOnlyXRP restricts offers for the token to XRP.
	FlagOnlyXRP Flags = 0x0002
	// FlagTrustLine asks for a trust line to be created automatically for
	// transfer fees.
	FlagTrustLine Flags = 0x0004
	// FlagTransferable allows transfers between non-issuer accounts.
	FlagTransferable Flags = 0x0008
	// FlagReserved is reserved for future use and must stay unset.
	FlagReserved Flags = 0x8000
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagBurnable, "burnable"},
	{FlagOnlyXRP, "only-xrp"},
	{FlagTrustLine, "trustline"},
	{FlagTransferable, "transferable"},
	{FlagReserved, "reserved"},
}

// ParseFlags validates a raw flags field.
func ParseFlags(v uint16) (Flags, error) {
	f := Flags(v)
	if f.Has(FlagReserved) {
		return 0, fmt.Errorf("flags %#04x: reserved bit set: %w", v, ErrRange)
	}
	return f, nil
}

// Has reports whether every bit of flag is set.
func (f Flags) Has(flag Flags) bool {
	return f&flag == flag
}

// Bytes returns the big-endian encoding.
func (f Flags) Bytes() [2]byte {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], uint16(f))
	return b
}

// String renders the set flags, e.g. "burnable|only-xrp|transferable".
func (f Flags) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	rest := f
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			parts = append(parts, fn.name)
			rest &^= fn.flag
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("%#04x", uint16(rest)))
	}
	return strings.Join(parts, "|")
}
