package utxo

import (
	"testing"

	"chainwalk/internal/chain"
)

func hashWithByte(b byte) chain.Hash {
	var h chain.Hash
	h[0] = b
	return h
}

func TestIndexInsertRemove(t *testing.T) {
	idx := NewIndex(Config{})
	txid := hashWithByte(1)
	idx.Insert(txid, 0, OutputInfo{Value: 5000})

	info, err := idx.Remove(txid, 0)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if info.Value != 5000 {
		t.Errorf("value = %d, want 5000", info.Value)
	}
	if idx.Len() != 0 {
		t.Errorf("Len = %d, want 0", idx.Len())
	}
}

func TestIndexRemoveUnknown(t *testing.T) {
	idx := NewIndex(Config{})
	_, err := idx.Remove(hashWithByte(9), 0)
	if err == nil {
		t.Fatal("expected UnknownOutputError")
	}
	var target *UnknownOutputError
	if _, ok := err.(*UnknownOutputError); !ok {
		_ = target
		t.Fatalf("expected *UnknownOutputError, got %T", err)
	}
}

func TestIndexLookupDoesNotConsume(t *testing.T) {
	idx := NewIndex(Config{})
	txid := hashWithByte(2)
	idx.Insert(txid, 1, OutputInfo{Value: 100})

	if _, err := idx.Lookup(txid, 1); err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if idx.Len() != 1 {
		t.Errorf("Len = %d, want 1 (Lookup must not remove)", idx.Len())
	}
}

func TestIndexFullTxidKey(t *testing.T) {
	idx := NewIndex(Config{PrefixBytes: 32})
	txid := hashWithByte(3)
	idx.Insert(txid, 0, OutputInfo{Value: 1})
	if idx.Len() != 1 {
		t.Fatalf("Len = %d, want 1", idx.Len())
	}
	if _, err := idx.Remove(txid, 0); err != nil {
		t.Fatalf("Remove: %v", err)
	}
}

func TestIndexScriptsDroppedUnlessConfigured(t *testing.T) {
	idx := NewIndex(Config{})
	txid := hashWithByte(4)
	idx.Insert(txid, 0, OutputInfo{Value: 1, Script: []byte{0xab}})
	info, _ := idx.Lookup(txid, 0)
	if info.Script != nil {
		t.Error("expected script dropped when IncludeScripts is false")
	}

	idx2 := NewIndex(Config{IncludeScripts: true})
	idx2.Insert(txid, 0, OutputInfo{Value: 1, Script: []byte{0xab}})
	info2, _ := idx2.Lookup(txid, 0)
	if len(info2.Script) != 1 {
		t.Error("expected script kept when IncludeScripts is true")
	}
}
