package verify

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"testing"

	"github.com/audiotarky/xrplpers/pkg/crypto"
	"github.com/audiotarky/xrplpers/pkg/types"
)

// jsonCodec stands in for the binary codec: blobs are JSON and signing
// payloads are a prefix plus the unsigned fields.
type jsonCodec struct{}

type jsonSigner struct {
	Account       string `json:"Account,omitempty"`
	SigningPubKey string `json:"SigningPubKey"`
	TxnSignature  string `json:"TxnSignature"`
}

type jsonTx struct {
	Account       string       `json:"Account"`
	Amount        string       `json:"Amount"`
	SigningPubKey string       `json:"SigningPubKey,omitempty"`
	TxnSignature  string       `json:"TxnSignature,omitempty"`
	Signers       []jsonSigner `json:"Signers,omitempty"`
}

func (jsonCodec) Decode(blob []byte) (*Decoded, error) {
	var jt jsonTx
	if err := json.Unmarshal(blob, &jt); err != nil {
		return nil, err
	}
	d := &Decoded{
		Fields:  map[string]any{"Account": jt.Account, "Amount": jt.Amount},
		Account: jt.Account,
	}
	var err error
	if d.SigningPubKey, err = hex.DecodeString(jt.SigningPubKey); err != nil {
		return nil, err
	}
	if d.TxnSignature, err = hex.DecodeString(jt.TxnSignature); err != nil {
		return nil, err
	}
	if jt.Signers != nil {
		d.Signers = []Signer{}
		for _, s := range jt.Signers {
			pub, _ := hex.DecodeString(s.SigningPubKey)
			sig, _ := hex.DecodeString(s.TxnSignature)
			d.Signers = append(d.Signers, Signer{SigningPubKey: pub, TxnSignature: sig, Account: s.Account})
		}
	}
	return d, nil
}

func (jsonCodec) EncodeForSigning(tx *Decoded) ([]byte, error) {
	body, _ := json.Marshal(tx.Fields)
	return append([]byte("STX\x00"), body...), nil
}

func (jsonCodec) EncodeForMultisigning(tx *Decoded, signer types.AccountID) ([]byte, error) {
	body, _ := json.Marshal(tx.Fields)
	out := append([]byte("SMT\x00"), body...)
	return append(out, signer[:]...), nil
}

func accountOf(t *testing.T, pub []byte) string {
	t.Helper()
	id, err := crypto.AccountIDFromPublicKey(pub)
	if err != nil {
		t.Fatal(err)
	}
	return id.String()
}

func marshalBlob(t *testing.T, jt jsonTx) []byte {
	t.Helper()
	b, err := json.Marshal(jt)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

// singleSigned returns a blob signed by key along with its account.
func singleSigned(t *testing.T, key *crypto.PrivateKey) ([]byte, string) {
	t.Helper()
	pub := key.PublicKey()
	account := accountOf(t, pub)
	jt := jsonTx{Account: account, Amount: "1000000", SigningPubKey: hex.EncodeToString(pub)}

	unsigned, _ := jsonCodec{}.Decode(marshalBlob(t, jt))
	payload, _ := jsonCodec{}.EncodeForSigning(unsigned)
	jt.TxnSignature = hex.EncodeToString(key.Sign(payload))
	return marshalBlob(t, jt), account
}

func TestSingleSign(t *testing.T) {
	key, _ := crypto.GenerateKey()
	blob, account := singleSigned(t, key)

	v, err := NewTransactionVerifier(jsonCodec{}, blob, nil)
	if err != nil {
		t.Fatalf("NewTransactionVerifier() error: %v", err)
	}
	valid, err := v.IsValid()
	if err != nil || !valid {
		t.Errorf("IsValid() = %v, %v", valid, err)
	}
	if v.IsMultisigned() {
		t.Error("IsMultisigned() = true for single-signed blob")
	}
	by, err := v.SignedByAccount()
	if err != nil || by != account {
		t.Errorf("SignedByAccount() = %q, %v, want %q", by, err, account)
	}
}

func TestSingleSign_Tampered(t *testing.T) {
	key, _ := crypto.GenerateKey()
	blob, _ := singleSigned(t, key)

	var jt jsonTx
	json.Unmarshal(blob, &jt)
	jt.Amount = "999999999"

	v, err := NewTransactionVerifier(jsonCodec{}, marshalBlob(t, jt), nil)
	if err != nil {
		t.Fatal(err)
	}
	if valid, _ := v.IsValid(); valid {
		t.Error("IsValid() = true for tampered payload")
	}
}

func TestSingleSign_Ed25519(t *testing.T) {
	pub, priv, _ := ed25519.GenerateKey(rand.Reader)
	ledgerPub := append([]byte{0xED}, pub...)
	jt := jsonTx{Account: "", Amount: "5", SigningPubKey: hex.EncodeToString(ledgerPub)}

	unsigned, _ := jsonCodec{}.Decode(marshalBlob(t, jt))
	payload, _ := jsonCodec{}.EncodeForSigning(unsigned)
	jt.TxnSignature = hex.EncodeToString(ed25519.Sign(priv, payload))

	v, err := NewTransactionVerifier(jsonCodec{}, marshalBlob(t, jt), nil)
	if err != nil {
		t.Fatal(err)
	}
	if valid, err := v.IsValid(); err != nil || !valid {
		t.Errorf("IsValid() = %v, %v", valid, err)
	}
	// No r-address in the blob: derived from the key.
	if by, _ := v.SignedByAccount(); by != accountOf(t, ledgerPub) {
		t.Errorf("SignedByAccount() = %q", by)
	}
}

// multiSigned builds a blob signed by each key in turn.
func multiSigned(t *testing.T, keys ...*crypto.PrivateKey) []byte {
	t.Helper()
	jt := jsonTx{Account: "rNCFjv8Ek5oDrNiMJ3pw6eLLFtMjZLJnf2", Amount: "42"}
	unsigned, _ := jsonCodec{}.Decode(marshalBlob(t, jt))
	for _, k := range keys {
		pub := k.PublicKey()
		id, _ := crypto.AccountIDFromPublicKey(pub)
		payload, _ := jsonCodec{}.EncodeForMultisigning(unsigned, id)
		jt.Signers = append(jt.Signers, jsonSigner{
			Account:       id.String(),
			SigningPubKey: hex.EncodeToString(pub),
			TxnSignature:  hex.EncodeToString(k.Sign(payload)),
		})
	}
	return marshalBlob(t, jt)
}

func TestMultiSign(t *testing.T) {
	k1, _ := crypto.GenerateKey()
	k2, _ := crypto.GenerateKey()
	blob := multiSigned(t, k1, k2)

	v, err := NewTransactionVerifier(jsonCodec{}, blob, nil)
	if err != nil {
		t.Fatalf("NewTransactionVerifier() error: %v", err)
	}
	if !v.IsMultisigned() {
		t.Error("IsMultisigned() = false")
	}
	if by, _ := v.SignedByAccount(); by != accountOf(t, k1.PublicKey()) {
		t.Errorf("SignedByAccount() = %q, want first signer", by)
	}
	if valid, err := v.IsValid(); err != nil || !valid {
		t.Errorf("IsValid() = %v, %v", valid, err)
	}
}

func TestMultiSign_PreferredSigner(t *testing.T) {
	k1, _ := crypto.GenerateKey()
	k2, _ := crypto.GenerateKey()
	blob := multiSigned(t, k1, k2)

	want := &Signer{SigningPubKey: k2.PublicKey(), Account: accountOf(t, k2.PublicKey())}
	v, err := NewTransactionVerifier(jsonCodec{}, blob, want)
	if err != nil {
		t.Fatal(err)
	}
	if by, _ := v.SignedByAccount(); by != want.Account {
		t.Errorf("SignedByAccount() = %q, want %q", by, want.Account)
	}
	if valid, err := v.IsValid(); err != nil || !valid {
		t.Errorf("IsValid() = %v, %v", valid, err)
	}

	// An unknown preferred signer falls back to the first.
	k3, _ := crypto.GenerateKey()
	other := &Signer{SigningPubKey: k3.PublicKey(), Account: accountOf(t, k3.PublicKey())}
	v, _ = NewTransactionVerifier(jsonCodec{}, blob, other)
	if by, _ := v.SignedByAccount(); by != accountOf(t, k1.PublicKey()) {
		t.Errorf("fallback SignedByAccount() = %q", by)
	}
}

func TestReport(t *testing.T) {
	key, _ := crypto.GenerateKey()
	blob, account := singleSigned(t, key)
	v, _ := NewTransactionVerifier(jsonCodec{}, blob, nil)

	var got map[string]any
	if err := json.Unmarshal([]byte(v.String()), &got); err != nil {
		t.Fatalf("String() is not JSON: %v", err)
	}
	if got["signedBy"] != account || got["signatureValid"] != true || got["signatureMultiSign"] != false {
		t.Errorf("String() = %v", got)
	}
}

func TestInvalidBlob(t *testing.T) {
	_, err := NewTransactionVerifier(jsonCodec{}, []byte("12000022"), nil)
	if !errors.Is(err, ErrDecode) {
		t.Errorf("error = %v, want ErrDecode", err)
	}

	_, err = NewTransactionVerifier(jsonCodec{}, []byte(`{"Account":"r","Amount":"1"}`), nil)
	if !errors.Is(err, ErrUnsigned) {
		t.Errorf("unsigned error = %v, want ErrUnsigned", err)
	}

	_, err = NewTransactionVerifier(jsonCodec{}, []byte(`{"Amount":"1","Signers":[]}`), nil)
	if !errors.Is(err, ErrUnsigned) {
		t.Errorf("empty signers error = %v, want ErrUnsigned", err)
	}
}
