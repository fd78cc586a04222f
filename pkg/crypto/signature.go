package crypto

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// ed25519Prefix marks an ed25519 public key in the ledger's 33-byte form.
const ed25519Prefix = 0xED

// PublicKeySize is the length of a ledger public key in bytes.
const PublicKeySize = 33

// ErrBadPublicKey is returned for keys that are neither compressed
// secp256k1 nor prefixed ed25519.
var ErrBadPublicKey = errors.New("invalid public key")

// KeyType identifies the signature scheme of a public key.
type KeyType int

const (
	KeySecp256k1 KeyType = iota
	KeyEd25519
)

// String returns the scheme name.
func (k KeyType) String() string {
	switch k {
	case KeyEd25519:
		return "ed25519"
	default:
		return "secp256k1"
	}
}

// Verifier verifies signatures over signing payloads.
type Verifier interface {
	// Verify checks a signature over message against a ledger public key.
	Verify(message, signature, publicKey []byte) bool
}

// PrivateKey wraps a secp256k1 private key for ECDSA signing.
type PrivateKey struct {
	key *secp256k1.PrivateKey
}

// GenerateKey creates a new random secp256k1 private key.
func GenerateKey() (*PrivateKey, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return &PrivateKey{key: key}, nil
}

// PrivateKeyFromBytes creates a PrivateKey from a 32-byte secret.
func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	if len(b) != 32 {
		return nil, fmt.Errorf("private key must be 32 bytes, got %d", len(b))
	}
	return &PrivateKey{key: secp256k1.PrivKeyFromBytes(b)}, nil
}

// Sign produces a DER-encoded ECDSA signature over SHA512Half(message).
func (pk *PrivateKey) Sign(message []byte) []byte {
	hash := SHA512Half(message)
	return ecdsa.Sign(pk.key, hash[:]).Serialize()
}

// PublicKey returns the compressed 33-byte public key.
func (pk *PrivateKey) PublicKey() []byte {
	return pk.key.PubKey().SerializeCompressed()
}

// KeyTypeOf reports the scheme of a ledger public key.
func KeyTypeOf(publicKey []byte) (KeyType, error) {
	return parsePublicKey(publicKey)
}

// VerifyMessage checks a signature over message. secp256k1 keys expect a
// DER signature over SHA512Half(message); ed25519 keys sign the message
// itself. Returns false on any error.
func VerifyMessage(message, signature, publicKey []byte) bool {
	kt, err := parsePublicKey(publicKey)
	if err != nil {
		return false
	}
	switch kt {
	case KeyEd25519:
		if len(signature) != ed25519.SignatureSize {
			return false
		}
		return ed25519.Verify(ed25519.PublicKey(publicKey[1:]), message, signature)
	default:
		pub, err := secp256k1.ParsePubKey(publicKey)
		if err != nil {
			return false
		}
		sig, err := ecdsa.ParseDERSignature(signature)
		if err != nil {
			return false
		}
		hash := SHA512Half(message)
		return sig.Verify(hash[:], pub)
	}
}

// MessageVerifier implements the Verifier interface.
type MessageVerifier struct{}

// Verify checks a signature over message against a ledger public key.
func (v MessageVerifier) Verify(message, signature, publicKey []byte) bool {
	return VerifyMessage(message, signature, publicKey)
}

func parsePublicKey(publicKey []byte) (KeyType, error) {
	if len(publicKey) != PublicKeySize {
		return 0, fmt.Errorf("%w: must be %d bytes, got %d", ErrBadPublicKey, PublicKeySize, len(publicKey))
	}
	if publicKey[0] == ed25519Prefix {
		return KeyEd25519, nil
	}
	if _, err := secp256k1.ParsePubKey(publicKey); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadPublicKey, err)
	}
	return KeySecp256k1, nil
}
