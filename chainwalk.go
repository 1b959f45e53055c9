// Package chainwalk composes the lower-level internal/* streams into the
// handful of entry points most callers need, mirroring how the original
// Python implementation's utils.py bundled iter_blocks/iter_txs on top of
// its own iterator classes.
package chainwalk

import (
	"chainwalk/internal/rawfile"
	"chainwalk/internal/scan"
	"chainwalk/internal/utxo"
)

// Config controls every layer of the scanning pipeline. Zero values pick
// sensible defaults (no mmap, no refresh, default height safety margin,
// no filtering, plain Tx elements).
type Config struct {
	DataDir string
	Pattern string // default "blk*.dat"
	UseMmap bool
	Refresh bool
	OnFile  rawfile.OnFileFunc

	OrphanLimit        int // 0: unbounded
	HeightSafetyMargin int // 0: scan.DefaultHeightSafetyMargin
	Filter             *scan.Filter

	IncludeBlockContext bool
	IncludeTxBlob       bool

	TrackSpending bool
	UTXOConfig    utxo.Config
}

func (cfg Config) source() *rawfile.Source {
	return rawfile.NewSource(rawfile.Config{
		DataDir: cfg.DataDir,
		Pattern: cfg.Pattern,
		UseMmap: cfg.UseMmap,
		Refresh: cfg.Refresh,
		OnFile:  cfg.OnFile,
	})
}

// StoredBlocks iterates every block in storage order (§ not necessarily
// chronological or topological).
func StoredBlocks(cfg Config) *scan.StoredBlockStream {
	return scan.NewStoredBlockStream(cfg.source())
}

// AllBlocks iterates every block in topological order: a block never
// precedes the block it extends, but blocks from different forks may
// appear in any relative order.
func AllBlocks(cfg Config) *scan.TopologicalStream {
	return scan.NewTopologicalStream(StoredBlocks(cfg), cfg.OrphanLimit)
}

// Blocks iterates the longest chain's blocks, linearly and in order.
func Blocks(cfg Config) *scan.LongestChainStream {
	return scan.NewLongestChainStream(AllBlocks(cfg), cfg.HeightSafetyMargin, cfg.Filter)
}

// Chain wraps Blocks, incrementally building a chain.BlockChain as it's
// consumed.
func Chain(cfg Config) *scan.ChainBuilder {
	return scan.NewChainBuilder(Blocks(cfg))
}

// Txs iterates the longest chain's transactions, wiring in block
// filtering and, if requested, UTXO-spending tracking. This is the
// composition point most callers want.
func Txs(cfg Config) *scan.TxStream {
	blocks := Blocks(cfg)
	opts := txStreamOptions(cfg)
	if cfg.TrackSpending {
		tracker := utxo.NewTracker(utxo.NewIndex(cfg.UTXOConfig))
		return scan.NewTrackedTxStream(blocks, tracker, opts...)
	}
	return scan.NewTxStream(blocks, opts...)
}

func txStreamOptions(cfg Config) []scan.TxStreamOption {
	var opts []scan.TxStreamOption
	if cfg.IncludeBlockContext {
		opts = append(opts, scan.IncludeBlockContext())
	}
	if cfg.IncludeTxBlob {
		opts = append(opts, scan.IncludeTxBlob())
	}
	return opts
}
