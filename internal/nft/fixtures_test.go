package nft

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/audiotarky/xrplpers/pkg/types"
)

const testTxHash = "C2DC5E2CB8C4E5A2B61A66D6DF1E6B2E3CB2B0C0D5E1AB3E0A6C7F0F5A1D2E3F"

// testTokenHex returns a token ID issued by the reference issuer with the
// given sequence.
func testTokenHex(seq uint32) string {
	issuer, err := types.ParseAccountID(refIssuer)
	if err != nil {
		panic(err)
	}
	fee, _ := NewTransferFee(500)
	id := TokenID{
		Flags:       FlagBurnable | FlagTransferable,
		TransferFee: fee,
		Issuer:      issuer,
		Taxon:       Taxon(0).Cipher(seq),
		Sequence:    seq,
	}
	return id.Encode()
}

func testURIHex(seq uint32) string {
	return strings.ToUpper(hex.EncodeToString([]byte(fmt.Sprintf("ipfs://bafy/track-%d.json", seq))))
}

// pageEntry is one element of a page token list.
func pageEntry(seq uint32) map[string]any {
	return map[string]any{
		"NonFungibleToken": map[string]any{
			"TokenID": testTokenHex(seq),
			"URI":     testURIHex(seq),
		},
	}
}

func pageList(seqs ...uint32) []any {
	out := make([]any, 0, len(seqs))
	for _, s := range seqs {
		out = append(out, pageEntry(s))
	}
	return out
}

func seqRange(from, to uint32) []uint32 {
	var out []uint32
	for s := from; s <= to; s++ {
		out = append(out, s)
	}
	return out
}

func testDescriptor(t *testing.T, seq uint32) Descriptor {
	t.Helper()
	d, err := NewDescriptor(map[string]string{
		FieldTokenID: testTokenHex(seq),
		FieldURI:     testURIHex(seq),
	})
	if err != nil {
		t.Fatalf("NewDescriptor(%d) error: %v", seq, err)
	}
	return d
}

func modifiedPage(prev, final []any) map[string]any {
	body := map[string]any{
		"LedgerEntryType": EntryNFTokenPage,
		"LedgerIndex":     "95F14B0E44F78A264E41713C64B5F89242540EE2FFFFFFFFFFFFFFFFFFFFFFFF",
		"FinalFields":     map[string]any{"Flags": 0, "NonFungibleTokens": final},
	}
	if prev != nil {
		body["PreviousFields"] = map[string]any{"NonFungibleTokens": prev}
	}
	return map[string]any{"ModifiedNode": body}
}

func createdPage(list []any) map[string]any {
	return map[string]any{"CreatedNode": map[string]any{
		"LedgerEntryType": EntryNFTokenPage,
		"LedgerIndex":     "95F14B0E44F78A264E41713C64B5F89242540EE2BC8B858E00000D6500000000",
		"NewFields":       map[string]any{"NonFungibleTokens": list},
	}}
}

func deletedPage(final []any) map[string]any {
	return map[string]any{"DeletedNode": map[string]any{
		"LedgerEntryType": EntryNFTokenPage,
		"FinalFields":     map[string]any{"NonFungibleTokens": final},
	}}
}

func accountRoot() map[string]any {
	return map[string]any{"ModifiedNode": map[string]any{
		"LedgerEntryType": "AccountRoot",
		"FinalFields":     map[string]any{"Account": refIssuer, "MintedNFTokens": 30},
		"PreviousFields":  map[string]any{"MintedNFTokens": 29},
	}}
}

// txJSON assembles a transaction payload.
func txJSON(t *testing.T, txType, result string, nodes ...any) []byte {
	t.Helper()
	doc := map[string]any{
		"Account":         refIssuer,
		"TransactionType": txType,
		"NFTokenTaxon":    0,
		"URI":             testURIHex(29),
		"hash":            testTxHash,
		"meta": map[string]any{
			"TransactionIndex":  4,
			"TransactionResult": result,
			"AffectedNodes":     nodes,
		},
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func parseTx(t *testing.T, raw []byte) *Transaction {
	t.Helper()
	tx, err := ParseTransaction(raw)
	if err != nil {
		t.Fatalf("ParseTransaction() error: %v", err)
	}
	return tx
}

// mintOnFullPage mints token 29 onto a page that already holds 1..28.
func mintOnFullPage(t *testing.T) []byte {
	return txJSON(t, TypeNFTokenMint, ResultSuccess,
		accountRoot(),
		modifiedPage(pageList(seqRange(1, 28)...), pageList(seqRange(1, 29)...)),
	)
}
