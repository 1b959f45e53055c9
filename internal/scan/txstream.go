package scan

import (
	"io"

	"chainwalk/internal/chain"
)

// longestChainSource is the subset of LongestChainStream that TxStream
// needs.
type longestChainSource interface {
	Next() (*chain.Block, error)
}

// TxOnFunc is called once per transaction, before TxStream returns it, so
// a caller like internal/utxo.Tracker can resolve spends against a UTXO
// index without TxStream knowing anything about UTXO tracking.
type TxOnFunc func(tx *chain.Tx, blockHeight int) error

// TxStream flattens a longest-chain block stream into its transactions.
// Equivalent to iterating every LongestChainStream block and yielding its
// transactions in order.
type TxStream struct {
	blocks              longestChainSource
	includeBlockContext bool
	includeTxBlob       bool
	onTx                TxOnFunc

	curBlock *chain.Block
	curTxs   *chain.BlockTxs
}

// TxStreamOption configures a TxStream.
type TxStreamOption func(*TxStream)

// IncludeBlockContext makes Next's returned TxInBlock carry its Block and
// Index; when unset, every returned TxInBlock has a nil Block (Index is
// still set), so a block can be garbage-collected rather than held alive
// by every transaction it contained.
func IncludeBlockContext() TxStreamOption {
	return func(s *TxStream) { s.includeBlockContext = true }
}

// IncludeTxBlob makes each returned transaction retain its raw bytes.
func IncludeTxBlob() TxStreamOption {
	return func(s *TxStream) { s.includeTxBlob = true }
}

// withOnTx installs a hook invoked for every transaction before it is
// returned; used by NewTrackedTxStream.
func withOnTx(fn TxOnFunc) TxStreamOption {
	return func(s *TxStream) { s.onTx = fn }
}

// NewTxStream wraps blocks.
func NewTxStream(blocks longestChainSource, opts ...TxStreamOption) *TxStream {
	s := &TxStream{blocks: blocks}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Next returns the next transaction, wrapped with block context whenever
// IncludeBlockContext was set.
func (s *TxStream) Next() (*chain.TxInBlock, error) {
	for {
		if s.curTxs != nil {
			item, err := s.curTxs.NextInBlock()
			if err == nil {
				if s.onTx != nil {
					if err := s.onTx(item.Tx, s.curBlock.Height()); err != nil {
						return nil, err
					}
				}
				if !s.includeBlockContext {
					item.Block = nil
				}
				return item, nil
			}
			if err != io.EOF {
				return nil, err
			}
		}
		block, err := s.blocks.Next()
		if err != nil {
			return nil, err
		}
		s.curBlock = block
		txs, err := block.Txs(s.includeTxBlob)
		if err != nil {
			return nil, err
		}
		s.curTxs = txs
	}
}

// resumableLongestChain is satisfied by *LongestChainStream.
type resumableLongestChain interface {
	longestChainSource
	State() (LongestChainState, error)
	Resume(LongestChainState) error
}

// TxStreamState is a TxStream's resumable position.
type TxStreamState struct {
	Upstream   LongestChainState
	CurBlock   *blockSnapshot // nil until the first block has been read
	CurTxIndex int
}

// State captures this stream's resumable position.
func (s *TxStream) State() (TxStreamState, error) {
	rl, ok := s.blocks.(resumableLongestChain)
	if !ok {
		return TxStreamState{}, errNotResumable
	}
	upstreamState, err := rl.State()
	if err != nil {
		return TxStreamState{}, err
	}
	st := TxStreamState{Upstream: upstreamState}
	if s.curBlock != nil {
		snap := snapshotBlock(s.curBlock)
		st.CurBlock = &snap
		st.CurTxIndex = s.curTxs.Index()
	}
	return st, nil
}

// Resume restores a previously-captured state. If CurBlock is set, the
// in-progress block's transaction cursor is fast-forwarded back to
// CurTxIndex by re-parsing (not re-emitting) the transactions before it.
func (s *TxStream) Resume(st TxStreamState) error {
	rl, ok := s.blocks.(resumableLongestChain)
	if !ok {
		return errNotResumable
	}
	if err := rl.Resume(st.Upstream); err != nil {
		return err
	}
	if st.CurBlock == nil {
		s.curBlock = nil
		s.curTxs = nil
		return nil
	}
	block, err := st.CurBlock.restore()
	if err != nil {
		return err
	}
	txs, err := block.Txs(s.includeTxBlob)
	if err != nil {
		return err
	}
	for i := 0; i < st.CurTxIndex; i++ {
		if _, err := txs.Next(); err != nil {
			return err
		}
	}
	s.curBlock = block
	s.curTxs = txs
	return nil
}
