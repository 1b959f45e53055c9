package scan

import "chainwalk/internal/chain"

// ChainBuilder wraps a longest-chain block source, building a
// chain.BlockChain incrementally as it's consumed rather than requiring a
// separate pass over the same blocks.
type ChainBuilder struct {
	blocks longestChainSource
	chain  *chain.BlockChain
}

// NewChainBuilder wraps blocks, starting from an empty chain.
func NewChainBuilder(blocks longestChainSource) *ChainBuilder {
	return &ChainBuilder{blocks: blocks, chain: chain.NewBlockChain()}
}

// Next returns the next longest-chain block and appends its summary to
// the chain being built.
func (b *ChainBuilder) Next() (*chain.Block, error) {
	block, err := b.blocks.Next()
	if err != nil {
		return nil, err
	}
	info, err := chain.BlockInfoFromBlock(block)
	if err != nil {
		return nil, err
	}
	if err := b.chain.Append(info); err != nil {
		return nil, err
	}
	return block, nil
}

// Chain returns the chain built so far. The returned value is live: it
// keeps growing as Next is called.
func (b *ChainBuilder) Chain() *chain.BlockChain { return b.chain }
