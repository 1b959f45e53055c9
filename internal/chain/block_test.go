package chain

import (
	"encoding/binary"
	"testing"

	"chainwalk/internal/binformat"
)

// buildRawTx returns a minimal non-witness coinbase transaction.
func buildRawTx(t *testing.T) []byte {
	t.Helper()
	var buf []byte
	buf = append(buf, 0x01, 0x00, 0x00, 0x00) // version
	buf = append(buf, binformat.PutVarInt(nil, 1)...)
	buf = append(buf, make([]byte, 32)...)    // coinbase txid
	buf = append(buf, 0xff, 0xff, 0xff, 0xff) // vout
	buf = append(buf, binformat.PutVarInt(nil, 0)...)
	buf = append(buf, 0xff, 0xff, 0xff, 0xff) // sequence
	buf = append(buf, binformat.PutVarInt(nil, 1)...)
	buf = append(buf, 0x00, 0xf2, 0x05, 0x2a, 0x01, 0x00, 0x00, 0x00)
	buf = append(buf, binformat.PutVarInt(nil, 0)...)
	buf = append(buf, 0x00, 0x00, 0x00, 0x00) // locktime
	return buf
}

func buildRawBlock(t *testing.T, numTxs int) []byte {
	t.Helper()
	header := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(header[0:4], 1)
	body := binformat.PutVarInt(nil, uint64(numTxs))
	for i := 0; i < numTxs; i++ {
		body = append(body, buildRawTx(t)...)
	}
	return append(header, body...)
}

func TestParseBlockHeaderAndHash(t *testing.T) {
	raw := buildRawBlock(t, 1)
	b, err := ParseBlock(raw)
	if err != nil {
		t.Fatalf("ParseBlock: %v", err)
	}
	if b.Version() != 1 {
		t.Errorf("Version = %d, want 1", b.Version())
	}
	if b.RawSize() != len(raw) {
		t.Errorf("RawSize = %d, want %d", b.RawSize(), len(raw))
	}
	if b.BlockHash() == (Hash{}) {
		t.Error("expected non-zero block hash")
	}
	if b.Height() != -1 {
		t.Errorf("Height = %d, want -1 before assignment", b.Height())
	}
	b.SetHeight(7)
	if b.Height() != 7 {
		t.Errorf("Height = %d, want 7", b.Height())
	}
}

func TestParseBlockTooShort(t *testing.T) {
	if _, err := ParseBlock(make([]byte, 10)); err == nil {
		t.Fatal("expected error for undersized block")
	}
}

func TestBlockTxsIteration(t *testing.T) {
	raw := buildRawBlock(t, 2)
	b, err := ParseBlock(raw)
	if err != nil {
		t.Fatalf("ParseBlock: %v", err)
	}
	numTxs, err := b.NumTxs()
	if err != nil {
		t.Fatalf("NumTxs: %v", err)
	}
	if numTxs != 2 {
		t.Fatalf("NumTxs = %d, want 2", numTxs)
	}

	txs, err := b.Txs(false)
	if err != nil {
		t.Fatalf("Txs: %v", err)
	}
	count := 0
	for {
		tx, err := txs.Next()
		if err != nil {
			break
		}
		if !tx.IsCoinbase() {
			t.Errorf("tx %d: expected coinbase", count)
		}
		count++
	}
	if count != 2 {
		t.Errorf("iterated %d txs, want 2", count)
	}
}
