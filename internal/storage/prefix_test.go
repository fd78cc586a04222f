package storage

import (
	"errors"
	"fmt"
	"testing"
)

func TestPrefixDB(t *testing.T) {
	testDB(t, NewPrefixDB(NewMemory(), []byte("ns/")))
}

func TestPrefixDB_Isolation(t *testing.T) {
	inner := NewMemory()
	dbA := NewPrefixDB(inner, []byte("a/"))
	dbB := NewPrefixDB(inner, []byte("b/"))

	if err := dbA.Put([]byte("key"), []byte("fromA")); err != nil {
		t.Fatal(err)
	}
	if err := dbB.Put([]byte("key"), []byte("fromB")); err != nil {
		t.Fatal(err)
	}

	got, err := dbA.Get([]byte("key"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "fromA" {
		t.Fatalf("A.Get = %q, want %q", got, "fromA")
	}
	got, err = dbB.Get([]byte("key"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "fromB" {
		t.Fatalf("B.Get = %q, want %q", got, "fromB")
	}

	// The inner DB sees both, namespaced.
	raw, err := inner.Get([]byte("a/key"))
	if err != nil || string(raw) != "fromA" {
		t.Fatalf("inner.Get(a/key) = %q, %v", raw, err)
	}
}

func TestPrefixDB_ForEachStripsPrefix(t *testing.T) {
	inner := NewMemory()
	db := NewPrefixDB(inner, []byte("pre/"))
	db.Put([]byte("hello"), []byte("world"))
	inner.Put([]byte("other"), []byte("x"))

	var keys []string
	db.ForEach(nil, func(key, value []byte) error {
		keys = append(keys, string(key))
		return nil
	})
	if len(keys) != 1 || keys[0] != "hello" {
		t.Fatalf("ForEach keys = %v, want [hello]", keys)
	}
}

func TestPrefixDB_ForEachStopEarly(t *testing.T) {
	db := NewPrefixDB(NewMemory(), []byte("p/"))
	for i := 0; i < 10; i++ {
		db.Put([]byte(fmt.Sprintf("k%d", i)), []byte("v"))
	}

	count := 0
	stopErr := errors.New("stop")
	err := db.ForEach(nil, func(key, value []byte) error {
		count++
		if count >= 3 {
			return stopErr
		}
		return nil
	})
	if !errors.Is(err, stopErr) {
		t.Fatalf("ForEach err = %v, want stopErr", err)
	}
	if count != 3 {
		t.Fatalf("ForEach called %d times, want 3", count)
	}
}

func TestPrefixDB_BatchNamespaced(t *testing.T) {
	inner := NewMemory()
	db := NewPrefixDB(inner, []byte("acct/"))

	b := db.NewBatch()
	b.Put([]byte("k1"), []byte("v1"))
	b.Put([]byte("k2"), []byte("v2"))
	if err := b.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	for _, k := range []string{"acct/k1", "acct/k2"} {
		if ok, _ := inner.Has([]byte(k)); !ok {
			t.Errorf("inner missing %q", k)
		}
	}
	if ok, _ := inner.Has([]byte("k1")); ok {
		t.Error("batch wrote an un-namespaced key")
	}
}

// plainDB hides the Batcher implementation of the wrapped DB.
type plainDB struct{ DB }

func TestPrefixDB_BatchFallback(t *testing.T) {
	inner := NewMemory()
	db := NewPrefixDB(plainDB{inner}, []byte("f/"))
	inner.Put([]byte("f/gone"), []byte("x"))

	b := db.NewBatch()
	if _, ok := b.(*sequentialBatch); !ok {
		t.Fatalf("NewBatch() = %T, want *sequentialBatch", b)
	}
	b.Put([]byte("k"), []byte("v"))
	b.Delete([]byte("gone"))
	if err := b.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	got, err := inner.Get([]byte("f/k"))
	if err != nil || string(got) != "v" {
		t.Fatalf("inner.Get(f/k) = %q, %v", got, err)
	}
	if ok, _ := inner.Has([]byte("f/gone")); ok {
		t.Error("fallback delete not applied")
	}
}

func TestPrefixDB_CloseIsNoop(t *testing.T) {
	inner := NewMemory()
	db := NewPrefixDB(inner, []byte("x/"))
	db.Put([]byte("key"), []byte("val"))

	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	got, err := inner.Get([]byte("x/key"))
	if err != nil {
		t.Fatalf("inner.Get after Close: %v", err)
	}
	if string(got) != "val" {
		t.Fatalf("inner.Get = %q, want %q", got, "val")
	}
}

func TestPrefixDB_PrefixCopied(t *testing.T) {
	p := []byte("ns/")
	db := NewPrefixDB(NewMemory(), p)
	p[0] = 'X'
	if string(db.Prefix()) != "ns/" {
		t.Errorf("Prefix() = %q, want ns/", db.Prefix())
	}
}
