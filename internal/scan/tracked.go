package scan

import (
	"chainwalk/internal/chain"
	"chainwalk/internal/utxo"
)

// NewTrackedTxStream wraps blocks like NewTxStream, additionally resolving
// every input against tracker's UTXO index before each transaction is
// returned.
//
// :note: to track spending this way requires keeping every unspent
// output in memory at once, which can be very large for a full scan from
// genesis.
func NewTrackedTxStream(blocks longestChainSource, tracker *utxo.Tracker, opts ...TxStreamOption) *TxStream {
	opts = append(opts, withOnTx(func(tx *chain.Tx, blockHeight int) error {
		return tracker.Process(tx, blockHeight)
	}))
	return NewTxStream(blocks, opts...)
}
