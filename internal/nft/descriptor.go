package nft

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/audiotarky/xrplpers/pkg/crypto"
	"github.com/audiotarky/xrplpers/pkg/types"
	"github.com/tidwall/gjson"
)

// Descriptor field names used by NFTokenPage entries.
const (
	FieldTokenID = "TokenID"
	FieldURI     = "URI"

	// FieldNFTokenID is the spelling used since the XLS-20 amendment was
	// finalized. Both are accepted.
	FieldNFTokenID = "NFTokenID"
)

// Field is one key/value pair of a descriptor. Value holds compact JSON.
type Field struct {
	Key   string
	Value json.RawMessage
}

// Descriptor is one token entry of an NFTokenPage: the inner object of a
// {"NonFungibleToken": {...}} element. Field order in the source does not
// matter; fields are kept sorted so equal descriptors have equal canonical
// forms.
type Descriptor struct {
	fields    []Field
	canonical []byte
	key       types.Hash
}

// ParseDescriptor builds a descriptor from a JSON object. The object must
// carry a token ID.
func ParseDescriptor(raw []byte) (Descriptor, error) {
	if !gjson.ValidBytes(raw) {
		return Descriptor{}, fmt.Errorf("descriptor is not valid JSON: %w", ErrFormat)
	}
	obj := gjson.ParseBytes(raw)
	if !obj.IsObject() {
		return Descriptor{}, fmt.Errorf("descriptor must be an object, got %s: %w", obj.Type, ErrFormat)
	}

	var fields []Field
	var err error
	obj.ForEach(func(k, v gjson.Result) bool {
		var buf bytes.Buffer
		if cerr := json.Compact(&buf, []byte(v.Raw)); cerr != nil {
			err = fmt.Errorf("descriptor field %q: %v: %w", k.String(), cerr, ErrFormat)
			return false
		}
		fields = append(fields, Field{Key: k.String(), Value: buf.Bytes()})
		return true
	})
	if err != nil {
		return Descriptor{}, err
	}
	return newDescriptor(fields)
}

// NewDescriptor builds a descriptor from string-valued fields, e.g. a
// holdings snapshot of {TokenID, URI} pairs.
func NewDescriptor(fields map[string]string) (Descriptor, error) {
	fs := make([]Field, 0, len(fields))
	for k, v := range fields {
		raw, err := json.Marshal(v)
		if err != nil {
			return Descriptor{}, fmt.Errorf("descriptor field %q: %w", k, err)
		}
		fs = append(fs, Field{Key: k, Value: raw})
	}
	return newDescriptor(fs)
}

func newDescriptor(fields []Field) (Descriptor, error) {
	sort.Slice(fields, func(i, j int) bool { return fields[i].Key < fields[j].Key })
	for i := 1; i < len(fields); i++ {
		if fields[i].Key == fields[i-1].Key {
			return Descriptor{}, fmt.Errorf("descriptor has duplicate field %q: %w", fields[i].Key, ErrFormat)
		}
	}

	d := Descriptor{fields: fields}
	if _, ok := d.tokenIDField(); !ok {
		return Descriptor{}, fmt.Errorf("descriptor has no string %s: %w", FieldTokenID, ErrFormat)
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(f.Key)
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(f.Value)
	}
	buf.WriteByte('}')
	d.canonical = buf.Bytes()
	d.key = crypto.Hash(d.canonical)
	return d, nil
}

// Key returns the content hash of the canonical form. Equal descriptors
// have equal keys.
func (d Descriptor) Key() types.Hash { return d.key }

// Canonical returns the sorted-key compact JSON form.
func (d Descriptor) Canonical() []byte {
	out := make([]byte, len(d.canonical))
	copy(out, d.canonical)
	return out
}

// Equal reports whether two descriptors hold the same fields and values.
func (d Descriptor) Equal(other Descriptor) bool {
	return bytes.Equal(d.canonical, other.canonical)
}

// Fields returns a copy of the sorted fields.
func (d Descriptor) Fields() []Field {
	out := make([]Field, len(d.fields))
	copy(out, d.fields)
	return out
}

// Get returns a field's value. String values are unquoted; other values are
// returned as compact JSON.
func (d Descriptor) Get(key string) (string, bool) {
	raw, ok := d.value(key)
	if !ok {
		return "", false
	}
	v := gjson.ParseBytes(raw)
	if v.Type == gjson.String {
		return v.String(), true
	}
	return v.Raw, true
}

func (d Descriptor) value(key string) (json.RawMessage, bool) {
	i := sort.Search(len(d.fields), func(i int) bool { return d.fields[i].Key >= key })
	if i == len(d.fields) || d.fields[i].Key != key {
		return nil, false
	}
	return d.fields[i].Value, true
}

// TokenIDHex returns the raw token ID field.
func (d Descriptor) TokenIDHex() string {
	s, _ := d.tokenIDField()
	return s
}

// TokenID decodes the descriptor's token ID.
func (d Descriptor) TokenID() (TokenID, error) {
	return DecodeTokenID(d.TokenIDHex())
}

// URI hex-decodes the descriptor's URI field. A missing URI is "".
func (d Descriptor) URI() (string, error) {
	s, ok := d.Get(FieldURI)
	if !ok {
		return "", nil
	}
	return DecodeURI(s)
}

// MarshalJSON renders the descriptor as an object with sorted keys.
func (d Descriptor) MarshalJSON() ([]byte, error) {
	if len(d.canonical) == 0 {
		return []byte("null"), nil
	}
	return d.Canonical(), nil
}

// UnmarshalJSON parses a descriptor object.
func (d *Descriptor) UnmarshalJSON(data []byte) error {
	parsed, err := ParseDescriptor(data)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Descriptor) String() string {
	return string(d.canonical)
}

// tokenIDField returns the token ID, which must be a JSON string.
func (d Descriptor) tokenIDField() (string, bool) {
	raw, ok := d.value(FieldTokenID)
	if !ok {
		raw, ok = d.value(FieldNFTokenID)
	}
	if !ok {
		return "", false
	}
	v := gjson.ParseBytes(raw)
	return v.String(), v.Type == gjson.String
}

// DecodeURI turns a hex-encoded URI field into a UTF-8 string.
func DecodeURI(s string) (string, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("uri: %v: %w", err, ErrFormat)
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("uri is not valid UTF-8: %w", ErrFormat)
	}
	return string(b), nil
}
