package chain

import "io"

// BlockTxs is a block's transaction list, parsed lazily one transaction at
// a time as the caller advances through it.
type BlockTxs struct {
	block       *Block
	body        []byte
	numTxs      uint64
	includeBlob bool

	offset int
	index  int
}

// Len is the declared transaction count (not yet verified by parsing
// every transaction).
func (bt *BlockTxs) Len() uint64 { return bt.numTxs }

// Index is how many transactions have been returned by Next so far.
func (bt *BlockTxs) Index() int { return bt.index }

// Next parses and returns the next transaction, or io.EOF once every
// declared transaction has been consumed. At that point the consumed byte
// count must exactly match the tx blob's length; a mismatch means the
// block's declared transaction count didn't account for all of its
// transaction bytes, and is reported as a malformed block rather than
// silently accepted.
func (bt *BlockTxs) Next() (*Tx, error) {
	if uint64(bt.index) >= bt.numTxs {
		if bt.offset != len(bt.body) {
			return nil, &MalformedBlockError{Reason: "transaction bytes remain after declared tx count was consumed"}
		}
		return nil, io.EOF
	}
	tx, consumed, err := parseTx(bt.body[bt.offset:], bt.includeBlob)
	if err != nil {
		h := bt.block.BlockHash()
		return nil, &MalformedTxError{BlockHash: &h, Index: bt.index, Err: err}
	}
	bt.offset += consumed
	bt.index++
	return tx, nil
}

// NextInBlock is Next, wrapped with this block's context.
func (bt *BlockTxs) NextInBlock() (*TxInBlock, error) {
	index := bt.index
	tx, err := bt.Next()
	if err != nil {
		return nil, err
	}
	return &TxInBlock{Tx: tx, Block: bt.block, Index: index}, nil
}

// TxInBlock is a transaction paired with the block it was found in. It
// embeds *Tx, so every tx-level field and method is available directly on
// a *TxInBlock as well.
type TxInBlock struct {
	*Tx
	Block *Block
	Index int
}

// FilePos locates a block's raw bytes within a source file.
type FilePos struct {
	Filename string
	Offset   int64
}

// StoredBlock is a block paired with its on-disk position. It embeds
// *Block, so block-level fields and methods are available directly.
type StoredBlock struct {
	*Block
	FilePos FilePos
}
