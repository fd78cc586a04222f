package nft

import (
	"errors"
	"fmt"

	"github.com/audiotarky/xrplpers/pkg/types"
	"github.com/tidwall/gjson"
)

// Transaction and ledger names the page walk depends on.
const (
	TypeNFTokenMint  = "NFTokenMint"
	ResultSuccess    = "tesSUCCESS"
	EntryNFTokenPage = "NFTokenPage"

	nodeCreated  = "CreatedNode"
	nodeModified = "ModifiedNode"
	nodeDeleted  = "DeletedNode"
)

// Page token lists and their element wrappers. The first spelling is the
// one seen in early XLS-20 networks; the second is the finalized amendment's.
var (
	pageListKeys    = []string{"NonFungibleTokens", "NFTokens"}
	pageWrapperKeys = []string{"NonFungibleToken", "NFToken"}
)

// Transaction is a read-only view over a transaction JSON payload as
// returned by the ledger's tx and account_tx methods: transaction fields at
// the top level plus a "meta" object.
type Transaction struct {
	raw []byte
	doc gjson.Result
}

// ParseTransaction wraps a JSON payload. The payload is copied.
func ParseTransaction(raw []byte) (*Transaction, error) {
	payload := make([]byte, len(raw))
	copy(payload, raw)
	if !gjson.ValidBytes(payload) {
		return nil, malformed(payload, "$", errors.New("invalid JSON"))
	}
	doc := gjson.ParseBytes(payload)
	if !doc.IsObject() {
		return nil, malformed(payload, "$", fmt.Errorf("expected object, got %s", doc.Type))
	}
	return &Transaction{raw: payload, doc: doc}, nil
}

// Raw returns the original payload.
func (t *Transaction) Raw() []byte { return t.raw }

// Type returns the TransactionType field.
func (t *Transaction) Type() string { return t.doc.Get("TransactionType").String() }

// Account returns the sending account field.
func (t *Transaction) Account() string { return t.doc.Get("Account").String() }

// Result returns meta.TransactionResult.
func (t *Transaction) Result() string { return t.meta().Get("TransactionResult").String() }

// URIHex returns the raw hex URI field, or "" when absent.
func (t *Transaction) URIHex() string { return t.doc.Get("URI").String() }

// Hash parses the transaction hash.
func (t *Transaction) Hash() (types.Hash, error) {
	h := t.doc.Get("hash")
	if !h.Exists() {
		return types.Hash{}, malformed(t.raw, "hash", errors.New("missing"))
	}
	parsed, err := types.HexToHash(h.String())
	if err != nil {
		return types.Hash{}, malformed(t.raw, "hash", err)
	}
	return parsed, nil
}

func (t *Transaction) meta() gjson.Result {
	if m := t.doc.Get("meta"); m.Exists() {
		return m
	}
	return t.doc.Get("metaData")
}

// pageDiff is the transaction-wide view of every NFTokenPage the
// transaction touched.
type pageDiff struct {
	before *DescriptorSet
	after  *DescriptorSet
	pages  int
}

// added returns the descriptors present after but not before.
func (p *pageDiff) added() *DescriptorSet {
	return p.after.Difference(p.before)
}

// observed returns every descriptor on either side.
func (p *pageDiff) observed() *DescriptorSet {
	return p.before.Union(p.after)
}

// pageSnapshots walks meta.AffectedNodes and collects the before and after
// token lists of every NFTokenPage entry.
//
// A modified page whose PreviousFields omit the token list did not change
// its tokens, so its final list counts on both sides. Created pages only
// contribute to after; deleted pages only to before.
func (t *Transaction) pageSnapshots() (*pageDiff, error) {
	nodes := t.meta().Get("AffectedNodes")
	if !nodes.Exists() {
		return nil, malformed(t.raw, "meta.AffectedNodes", errors.New("missing"))
	}
	if !nodes.IsArray() {
		return nil, malformed(t.raw, "meta.AffectedNodes", fmt.Errorf("expected array, got %s", nodes.Type))
	}

	diff := &pageDiff{before: NewDescriptorSet(), after: NewDescriptorSet()}
	for i, node := range nodes.Array() {
		path := fmt.Sprintf("meta.AffectedNodes.%d", i)
		if !node.IsObject() {
			return nil, malformed(t.raw, path, fmt.Errorf("expected object, got %s", node.Type))
		}
		entries := node.Map()
		if len(entries) != 1 {
			return nil, malformed(t.raw, path, fmt.Errorf("expected one node kind, got %d keys", len(entries)))
		}
		var kind string
		var body gjson.Result
		for k, v := range entries {
			kind, body = k, v
		}
		path += "." + kind

		switch kind {
		case nodeCreated, nodeModified, nodeDeleted:
		default:
			return nil, malformed(t.raw, path, errors.New("unknown node kind"))
		}
		entryType := body.Get("LedgerEntryType")
		if !entryType.Exists() {
			return nil, malformed(t.raw, path+".LedgerEntryType", errors.New("missing"))
		}
		if entryType.String() != EntryNFTokenPage {
			continue
		}
		diff.pages++

		switch kind {
		case nodeCreated:
			if err := t.collect(diff.after, body, "NewFields", path); err != nil {
				return nil, err
			}
		case nodeModified:
			if _, ok := pageTokens(body.Get("PreviousFields")); ok {
				if err := t.collect(diff.before, body, "PreviousFields", path); err != nil {
					return nil, err
				}
			} else if err := t.collect(diff.before, body, "FinalFields", path); err != nil {
				return nil, err
			}
			if err := t.collect(diff.after, body, "FinalFields", path); err != nil {
				return nil, err
			}
		case nodeDeleted:
			fields := "FinalFields"
			if _, ok := pageTokens(body.Get("PreviousFields")); ok {
				fields = "PreviousFields"
			}
			if err := t.collect(diff.before, body, fields, path); err != nil {
				return nil, err
			}
		}
	}
	return diff, nil
}

// collect adds the descriptors listed under body.<fields>.<token list> to
// set. A missing list adds nothing.
func (t *Transaction) collect(set *DescriptorSet, body gjson.Result, fields, path string) error {
	list, ok := pageTokens(body.Get(fields))
	if !ok {
		return nil
	}
	path += "." + fields
	if !list.IsArray() {
		return malformed(t.raw, path, fmt.Errorf("token list is %s, expected array", list.Type))
	}
	for j, elem := range list.Array() {
		wrapper, ok := tokenWrapper(elem)
		if !ok {
			return malformed(t.raw, fmt.Sprintf("%s.%d", path, j), errors.New("missing token object"))
		}
		d, err := ParseDescriptor([]byte(wrapper.Raw))
		if err != nil {
			return malformed(t.raw, fmt.Sprintf("%s.%d", path, j), err)
		}
		set.Add(d)
	}
	return nil
}

func pageTokens(fields gjson.Result) (gjson.Result, bool) {
	for _, k := range pageListKeys {
		if v := fields.Get(k); v.Exists() {
			return v, true
		}
	}
	return gjson.Result{}, false
}

func tokenWrapper(elem gjson.Result) (gjson.Result, bool) {
	for _, k := range pageWrapperKeys {
		if v := elem.Get(k); v.Exists() && v.IsObject() {
			return v, true
		}
	}
	return gjson.Result{}, false
}
