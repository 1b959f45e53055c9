package chain

import (
	"testing"

	"chainwalk/internal/binformat"
)

func TestParseTxNonWitnessTxidMatchesRawHash(t *testing.T) {
	raw := buildRawTx(t)
	tx, consumed, err := parseTx(raw, true)
	if err != nil {
		t.Fatalf("parseTx: %v", err)
	}
	if consumed != len(raw) {
		t.Errorf("consumed = %d, want %d", consumed, len(raw))
	}
	want := DoubleSHA256(raw)
	if tx.Txid != want {
		t.Errorf("Txid = %s, want %s", tx.Txid, want)
	}
	if string(tx.Blob) != string(raw) {
		t.Error("expected Blob to be populated when includeBlob is true")
	}
	if !tx.IsCoinbase() {
		t.Error("expected coinbase transaction")
	}
}

func TestParseTxWitnessTxidExcludesWitnessData(t *testing.T) {
	var buf []byte
	buf = append(buf, 0x01, 0x00, 0x00, 0x00) // version
	buf = append(buf, 0x00, 0x01)              // segwit marker+flag
	buf = append(buf, binformat.PutVarInt(nil, 1)...)
	buf = append(buf, make([]byte, 32)...)
	buf = append(buf, 0x00, 0x00, 0x00, 0x00)
	buf = append(buf, binformat.PutVarInt(nil, 0)...)
	buf = append(buf, 0xff, 0xff, 0xff, 0xff)
	buf = append(buf, binformat.PutVarInt(nil, 0)...) // 0 outputs
	buf = append(buf, binformat.PutVarInt(nil, 1)...) // 1 witness item
	buf = append(buf, binformat.PutVarInt(nil, 2)...)
	buf = append(buf, 0xde, 0xad)
	buf = append(buf, 0x00, 0x00, 0x00, 0x00) // locktime

	tx, _, err := parseTx(buf, false)
	if err != nil {
		t.Fatalf("parseTx: %v", err)
	}
	// The non-witness serialization is shorter than buf (no marker/flag/
	// witness stack), so hashing buf directly must give a different value.
	if tx.Txid == DoubleSHA256(buf) {
		t.Error("expected txid to exclude witness data, but it matched the full-buffer hash")
	}
	if !tx.HasWitness {
		t.Error("expected HasWitness true")
	}
	if len(tx.Inputs) != 1 || len(tx.Inputs[0].Witness) != 1 {
		t.Fatalf("expected one input with one witness item, got %+v", tx.Inputs)
	}
}

func TestTxFeeAndTotals(t *testing.T) {
	tx := &Tx{
		Inputs: []TxInput{
			{SpentOutput: &SpentOutputRef{Value: 1000}},
			{SpentOutput: &SpentOutputRef{Value: 2000}},
		},
		Outputs: []TxOutput{{Value: 2500}},
	}
	total, ok := tx.TotalInputValue()
	if !ok || total != 3000 {
		t.Fatalf("TotalInputValue = %d, %v, want 3000, true", total, ok)
	}
	fee, ok := tx.Fee()
	if !ok || fee != 500 {
		t.Fatalf("Fee = %d, %v, want 500, true", fee, ok)
	}
}

func TestTxFeeUnresolvedInput(t *testing.T) {
	tx := &Tx{Inputs: []TxInput{{SpentOutput: nil}}}
	if _, ok := tx.Fee(); ok {
		t.Error("expected Fee to report not-ok when an input is unresolved")
	}
}

func TestTxFeeCoinbaseHasNone(t *testing.T) {
	tx := &Tx{Inputs: []TxInput{{Coinbase: true}}, Outputs: []TxOutput{{Value: 5000000000}}}
	if _, ok := tx.Fee(); ok {
		t.Error("expected coinbase Fee to report not-ok")
	}
}
