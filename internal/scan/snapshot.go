package scan

import "chainwalk/internal/chain"

// blockSnapshot is a block captured as plain, gob-friendly data: its raw
// bytes plus the height assigned to it, enough to fully reconstruct a
// *chain.Block. TopologicalStream (orphans, ready queue) and TxStream
// (the block in progress) snapshot blocks this way to serialize their
// state; the fork tree uses forkNodeSnapshot instead.
type blockSnapshot struct {
	Blob   []byte
	Height int
}

func snapshotBlock(b *chain.Block) blockSnapshot {
	return blockSnapshot{Blob: b.Blob(), Height: b.Height()}
}

func (s blockSnapshot) restore() (*chain.Block, error) {
	b, err := chain.ParseBlock(s.Blob)
	if err != nil {
		return nil, err
	}
	b.SetHeight(s.Height)
	return b, nil
}
