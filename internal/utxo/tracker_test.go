package utxo

import (
	"testing"

	"chainwalk/internal/chain"
)

func TestTrackerProcessCoinbaseThenSpend(t *testing.T) {
	tracker := NewTracker(nil)

	coinbase := &chain.Tx{
		Txid:    hashWithByte(1),
		Inputs:  []chain.TxInput{{Coinbase: true}},
		Outputs: []chain.TxOutput{{Value: 5000000000}},
	}
	if err := tracker.Process(coinbase, 0); err != nil {
		t.Fatalf("Process(coinbase): %v", err)
	}

	spending := &chain.Tx{
		Txid: hashWithByte(2),
		Inputs: []chain.TxInput{
			{SpentTxid: coinbase.Txid, SpentOutputIdx: 0},
		},
		Outputs: []chain.TxOutput{{Value: 4999990000}},
	}
	if err := tracker.Process(spending, 1); err != nil {
		t.Fatalf("Process(spending): %v", err)
	}
	if spending.Inputs[0].SpentOutput == nil {
		t.Fatal("expected SpentOutput to be resolved")
	}
	if spending.Inputs[0].SpentOutput.Value != 5000000000 {
		t.Errorf("spent value = %d, want 5000000000", spending.Inputs[0].SpentOutput.Value)
	}
	fee, ok := spending.Fee()
	if !ok {
		t.Fatal("expected fee to be computable")
	}
	if fee != 10000 {
		t.Errorf("fee = %d, want 10000", fee)
	}

	if tracker.Index.Len() != 1 {
		t.Errorf("index len = %d, want 1 (coinbase output spent, spending output added)", tracker.Index.Len())
	}
}

func TestTrackerProcessUnknownInput(t *testing.T) {
	tracker := NewTracker(nil)
	tx := &chain.Tx{
		Txid:   hashWithByte(1),
		Inputs: []chain.TxInput{{SpentTxid: hashWithByte(9), SpentOutputIdx: 0}},
	}
	if err := tracker.Process(tx, 0); err == nil {
		t.Fatal("expected error resolving an unknown input")
	}
}
