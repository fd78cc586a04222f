package nft

import (
	"errors"
	"fmt"
)

// Token errors.
var (
	ErrRange              = errors.New("value out of range")
	ErrType               = errors.New("wrong value type")
	ErrFormat             = errors.New("malformed encoding")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrMalformedMetadata  = errors.New("malformed transaction metadata")
	ErrExtraction         = errors.New("unexpected token page diff")
)

// MalformedMetadataError reports a transaction payload whose structure is
// missing something the page walk needs. It keeps the payload so callers can
// log or quarantine it.
type MalformedMetadataError struct {
	// Payload is the transaction as it was handed in.
	Payload []byte
	// Path names the offending location, e.g. "meta.AffectedNodes.3".
	Path string
	// Err is the underlying cause, if any.
	Err error
}

func (e *MalformedMetadataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s at %s: %v", ErrMalformedMetadata, e.Path, e.Err)
	}
	return fmt.Sprintf("%s at %s", ErrMalformedMetadata, e.Path)
}

// Unwrap returns the underlying cause.
func (e *MalformedMetadataError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrMalformedMetadata) hold.
func (e *MalformedMetadataError) Is(target error) bool {
	return target == ErrMalformedMetadata
}

func malformed(payload []byte, path string, err error) *MalformedMetadataError {
	return &MalformedMetadataError{Payload: payload, Path: path, Err: err}
}
