package nft

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
)

// Transfer fee bounds. One unit is 0.001%, so MaxTransferFee is 50%.
const (
	MinTransferFee = 0
	MaxTransferFee = 50000

	// feeUnitsPerPercent converts between fee units and percent.
	feeUnitsPerPercent = 1000
)

// TransferFee is the royalty the issuer takes on secondary sales, in
// thousandths of a percent. The zero value is a valid 0% fee.
type TransferFee struct {
	value uint16
}

// NewTransferFee validates v against [MinTransferFee, MaxTransferFee].
func NewTransferFee(v int) (TransferFee, error) {
	return transferFeeFromInt64(int64(v))
}

// TransferFeeFromPercent converts a percentage (e.g. 3.14) into fee units,
// rounding to the nearest unit.
func TransferFeeFromPercent(p float64) (TransferFee, error) {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return TransferFee{}, fmt.Errorf("transfer fee percent %v: %w", p, ErrType)
	}
	units := math.Round(p * feeUnitsPerPercent)
	if units < MinTransferFee || units > MaxTransferFee {
		return TransferFee{}, fmt.Errorf("transfer fee %v%% not in [%v, %v]: %w",
			p, float64(MinTransferFee)/feeUnitsPerPercent, float64(MaxTransferFee)/feeUnitsPerPercent, ErrRange)
	}
	return TransferFee{value: uint16(units)}, nil
}

// TransferFeeOf builds a fee from a dynamically typed value, such as a
// number decoded from transaction JSON. Non-integers fail with ErrType
// rather than being truncated.
func TransferFeeOf(v any) (TransferFee, error) {
	switch n := v.(type) {
	case int:
		return transferFeeFromInt64(int64(n))
	case int32:
		return transferFeeFromInt64(int64(n))
	case int64:
		return transferFeeFromInt64(n)
	case uint16:
		return transferFeeFromInt64(int64(n))
	case uint32:
		return transferFeeFromInt64(int64(n))
	case uint64:
		if n > MaxTransferFee {
			return TransferFee{}, fmt.Errorf("transfer fee %d not in [%d, %d]: %w",
				n, MinTransferFee, MaxTransferFee, ErrRange)
		}
		return transferFeeFromInt64(int64(n))
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
			return TransferFee{}, fmt.Errorf("transfer fee %v is not an integer: %w", n, ErrType)
		}
		if n < MinTransferFee || n > MaxTransferFee {
			return TransferFee{}, fmt.Errorf("transfer fee %v not in [%d, %d]: %w",
				n, MinTransferFee, MaxTransferFee, ErrRange)
		}
		return transferFeeFromInt64(int64(n))
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return TransferFee{}, fmt.Errorf("transfer fee %q is not an integer: %w", n.String(), ErrType)
		}
		return transferFeeFromInt64(i)
	default:
		return TransferFee{}, fmt.Errorf("transfer fee of type %T: %w", v, ErrType)
	}
}

// TransferFeeFromBytes decodes a 2-byte big-endian fee field.
func TransferFeeFromBytes(b []byte) (TransferFee, error) {
	if len(b) != 2 {
		return TransferFee{}, fmt.Errorf("transfer fee must be 2 bytes, got %d: %w", len(b), ErrFormat)
	}
	return NewTransferFee(int(binary.BigEndian.Uint16(b)))
}

// Value returns the fee in thousandths of a percent.
func (f TransferFee) Value() uint16 { return f.value }

// AsPercent returns the fee as a percentage.
func (f TransferFee) AsPercent() float64 {
	return float64(f.value) / feeUnitsPerPercent
}

// Bytes returns the big-endian encoding.
func (f TransferFee) Bytes() [2]byte {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], f.value)
	return b
}

func (f TransferFee) String() string {
	return fmt.Sprintf("%g%%", f.AsPercent())
}

// MarshalJSON encodes the fee as its integer unit value, like the ledger's
// TransferFee field.
func (f TransferFee) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.value)
}

// UnmarshalJSON decodes and validates an integer unit value.
func (f *TransferFee) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("transfer fee: %w", ErrType)
	}
	parsed, err := TransferFeeOf(n)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

func transferFeeFromInt64(n int64) (TransferFee, error) {
	if n < MinTransferFee || n > MaxTransferFee {
		return TransferFee{}, fmt.Errorf("transfer fee %d not in [%d, %d]: %w",
			n, MinTransferFee, MaxTransferFee, ErrRange)
	}
	return TransferFee{value: uint16(n)}, nil
}
