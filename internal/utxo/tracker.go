package utxo

import "chainwalk/internal/chain"

// Tracker resolves each transaction's inputs against an Index as
// transactions are processed, and adds the transaction's own outputs to
// the index. Usable directly against any sequence of transactions, not
// only wired into a tx stream (internal/scan.NewTrackedTxStream).
type Tracker struct {
	Index *Index
}

// NewTracker wraps idx. A nil idx creates a fresh one with default config.
func NewTracker(idx *Index) *Tracker {
	if idx == nil {
		idx = NewIndex(Config{})
	}
	return &Tracker{Index: idx}
}

// Process resolves tx's inputs against the index (setting each non-
// coinbase input's SpentOutput), then adds tx's outputs to the index.
// blockHeight is recorded on each newly-added output.
func (t *Tracker) Process(tx *chain.Tx, blockHeight int) error {
	for i := range tx.Inputs {
		in := &tx.Inputs[i]
		if in.Coinbase {
			continue
		}
		info, err := t.Index.Remove(in.SpentTxid, in.SpentOutputIdx)
		if err != nil {
			return err
		}
		ref := SpentOutputRefFrom(info)
		in.SpentOutput = &ref
	}
	for i, out := range tx.Outputs {
		t.Index.Insert(tx.Txid, uint32(i), OutputInfo{
			Value:       out.Value,
			BlockHeight: blockHeight,
			Script:      out.Script,
		})
	}
	return nil
}

// SpentOutputRefFrom adapts an OutputInfo into the reference shape
// chain.TxInput carries.
func SpentOutputRefFrom(info OutputInfo) chain.SpentOutputRef {
	return chain.SpentOutputRef{
		Value:       info.Value,
		BlockHeight: info.BlockHeight,
		Script:      info.Script,
	}
}
