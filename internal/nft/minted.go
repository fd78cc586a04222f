package nft

import (
	"fmt"

	"github.com/audiotarky/xrplpers/pkg/types"
)

// MintedToken is a token as seen in the successful mint that created it.
type MintedToken struct {
	ID     TokenID    `json:"id"`
	URI    string     `json:"uri"`
	TxHash types.Hash `json:"tx_hash"`
}

// MintedTokenFromTransaction extracts the token created by a successful
// NFTokenMint.
//
// The minted token is the single descriptor present after the transaction
// but not before it. Zero or several candidates (batch mints, shapes the
// walk does not model) fail with ErrExtraction rather than guessing.
func MintedTokenFromTransaction(tx *Transaction) (*MintedToken, error) {
	if typ := tx.Type(); typ != TypeNFTokenMint {
		return nil, fmt.Errorf("transaction type %q, want %q: %w", typ, TypeNFTokenMint, ErrInvalidTransaction)
	}
	if res := tx.Result(); res != ResultSuccess {
		return nil, fmt.Errorf("transaction result %q, want %q: %w", res, ResultSuccess, ErrInvalidTransaction)
	}

	diff, err := tx.pageSnapshots()
	if err != nil {
		return nil, err
	}
	added := diff.added()
	if added.Len() != 1 {
		return nil, fmt.Errorf("%d new tokens across %d pages, want exactly 1: %w",
			added.Len(), diff.pages, ErrExtraction)
	}
	desc := added.Items()[0]

	id, err := desc.TokenID()
	if err != nil {
		return nil, fmt.Errorf("minted token: %w", err)
	}
	uri, err := DecodeURI(tx.URIHex())
	if err != nil {
		return nil, fmt.Errorf("minted token %s: %w", id, err)
	}
	hash, err := tx.Hash()
	if err != nil {
		return nil, err
	}

	return &MintedToken{ID: id, URI: uri, TxHash: hash}, nil
}

// MintedTokenFromJSON parses a transaction payload and extracts its minted
// token.
func MintedTokenFromJSON(raw []byte) (*MintedToken, error) {
	tx, err := ParseTransaction(raw)
	if err != nil {
		return nil, err
	}
	return MintedTokenFromTransaction(tx)
}

func (m *MintedToken) String() string {
	return fmt.Sprintf("%s minted in %s", m.ID.Describe(), m.TxHash)
}
