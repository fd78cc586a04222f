// Package verify checks who signed a serialized ledger transaction and
// whether the signature holds. The binary codec is supplied by the caller.
package verify

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/audiotarky/xrplpers/internal/log"
	"github.com/audiotarky/xrplpers/pkg/crypto"
	"github.com/audiotarky/xrplpers/pkg/types"
	"github.com/rs/zerolog"
)

// Verification errors.
var (
	ErrDecode   = errors.New("transaction decode failed")
	ErrUnsigned = errors.New("transaction carries no signature")
	ErrEncode   = errors.New("signing payload encode failed")
)

// Signer is one signature over a transaction. Account is the classic
// r-address of the signer when the blob names it.
type Signer struct {
	SigningPubKey []byte
	TxnSignature  []byte
	Account       string
}

// Decoded is a decoded transaction as the codec understands it.
type Decoded struct {
	// Fields holds every decoded field, for the codec's own use.
	Fields map[string]any
	// Account, SigningPubKey and TxnSignature are the single-sign fields.
	Account       string
	SigningPubKey []byte
	TxnSignature  []byte
	// Signers is non-nil for multi-signed transactions.
	Signers []Signer
}

// Codec is the ledger binary codec.
type Codec interface {
	Decode(blob []byte) (*Decoded, error)
	// EncodeForSigning returns the single-sign payload.
	EncodeForSigning(tx *Decoded) ([]byte, error)
	// EncodeForMultisigning returns the payload the given account signs.
	EncodeForMultisigning(tx *Decoded, signer types.AccountID) ([]byte, error)
}

// TransactionVerifier inspects one transaction blob.
type TransactionVerifier struct {
	codec     Codec
	tx        *Decoded
	signer    Signer
	multiSign bool
	verifier  crypto.Verifier
	logger    zerolog.Logger
}

// NewTransactionVerifier decodes blob. For multi-signed transactions the
// signer matching preferred (same public key and account) is checked;
// without a match, or without preferred, the first signer is.
func NewTransactionVerifier(codec Codec, blob []byte, preferred *Signer) (*TransactionVerifier, error) {
	tx, err := codec.Decode(blob)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	v := &TransactionVerifier{
		codec:    codec,
		tx:       tx,
		verifier: crypto.MessageVerifier{},
		logger:   log.Verify,
	}

	if tx.Signers != nil {
		v.multiSign = true
		if len(tx.Signers) == 0 {
			return nil, fmt.Errorf("empty signer list: %w", ErrUnsigned)
		}
		v.signer = tx.Signers[0]
		if preferred != nil {
			for _, s := range tx.Signers {
				if bytes.Equal(s.SigningPubKey, preferred.SigningPubKey) && s.Account == preferred.Account {
					v.signer = s
					break
				}
			}
		}
	} else {
		if len(tx.SigningPubKey) == 0 || len(tx.TxnSignature) == 0 {
			return nil, ErrUnsigned
		}
		v.signer = Signer{
			SigningPubKey: tx.SigningPubKey,
			TxnSignature:  tx.TxnSignature,
			Account:       tx.Account,
		}
	}
	return v, nil
}

// Signer returns the signature being checked.
func (v *TransactionVerifier) Signer() Signer { return v.signer }

// IsMultisigned reports whether the transaction carries a Signers list.
func (v *TransactionVerifier) IsMultisigned() bool { return v.multiSign }

// SignedByAccount returns the signer's classic address, deriving it from
// the public key when the blob does not name one.
func (v *TransactionVerifier) SignedByAccount() (string, error) {
	if strings.HasPrefix(v.signer.Account, "r") {
		return v.signer.Account, nil
	}
	id, err := crypto.AccountIDFromPublicKey(v.signer.SigningPubKey)
	if err != nil {
		return "", fmt.Errorf("derive signer account: %w", err)
	}
	return id.String(), nil
}

// IsValid verifies the signature over the signing payload.
func (v *TransactionVerifier) IsValid() (bool, error) {
	payload, err := v.payload()
	if err != nil {
		return false, err
	}
	ok := v.verifier.Verify(payload, v.signer.TxnSignature, v.signer.SigningPubKey)
	v.logger.Debug().
		Bool("multisign", v.multiSign).
		Bool("valid", ok).
		Msg("checked transaction signature")
	return ok, nil
}

func (v *TransactionVerifier) payload() ([]byte, error) {
	if !v.multiSign {
		p, err := v.codec.EncodeForSigning(v.tx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEncode, err)
		}
		return p, nil
	}
	addr, err := v.SignedByAccount()
	if err != nil {
		return nil, err
	}
	id, err := types.ParseAccountID(addr)
	if err != nil {
		return nil, fmt.Errorf("signer account: %w", err)
	}
	p, err := v.codec.EncodeForMultisigning(v.tx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return p, nil
}

// Report summarizes a verification.
type Report struct {
	SignedBy           string `json:"signedBy"`
	SignatureValid     bool   `json:"signatureValid"`
	SignatureMultiSign bool   `json:"signatureMultiSign"`
}

// Report runs the checks and collects their results.
func (v *TransactionVerifier) Report() (*Report, error) {
	by, err := v.SignedByAccount()
	if err != nil {
		return nil, err
	}
	valid, err := v.IsValid()
	if err != nil {
		return nil, err
	}
	return &Report{SignedBy: by, SignatureValid: valid, SignatureMultiSign: v.multiSign}, nil
}

// String renders the report as JSON, or the error that prevented it.
func (v *TransactionVerifier) String() string {
	r, err := v.Report()
	if err != nil {
		return fmt.Sprintf("verify: %v", err)
	}
	b, _ := json.Marshal(r)
	return string(b)
}
