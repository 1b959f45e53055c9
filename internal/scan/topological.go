package scan

import (
	"chainwalk/internal/chain"
)

// genesisPrevHash is the all-zero hash the genesis block uses as its
// "previous block" reference.
var genesisPrevHash chain.Hash

// storedBlockSource is the subset of StoredBlockStream that
// TopologicalStream needs.
type storedBlockSource interface {
	Next() (*chain.StoredBlock, error)
}

// TopologicalStream re-orders a stored-block stream so that a block never
// appears before the block it extends. Blocks from different forks may
// still appear in any relative order. Every block this stream has not yet
// placed is held in memory, either as an orphan (parent not seen yet) or
// as a ready block waiting to be released.
type TopologicalStream struct {
	upstream storedBlockSource

	heightByHash map[chain.Hash]int
	orphans      map[chain.Hash][]*chain.Block
	ready        []*chain.Block // FIFO queue

	orphanLimit   int // 0 means unbounded
	orphanCount   int
}

// NewTopologicalStream wraps upstream.
func NewTopologicalStream(upstream storedBlockSource, orphanLimit int) *TopologicalStream {
	return &TopologicalStream{
		upstream:     upstream,
		heightByHash: map[chain.Hash]int{genesisPrevHash: -1},
		orphans:      make(map[chain.Hash][]*chain.Block),
		orphanLimit:  orphanLimit,
	}
}

// Next returns the next block in topological order, or an error from the
// upstream stream (including io.EOF).
func (s *TopologicalStream) Next() (*chain.Block, error) {
	for len(s.ready) == 0 {
		if err := s.readAnother(); err != nil {
			return nil, err
		}
	}
	return s.release(), nil
}

func (s *TopologicalStream) readAnother() error {
	stored, err := s.upstream.Next()
	if err != nil {
		return err
	}
	block := stored.Block
	prevHash := block.PrevBlockHash()
	prevHeight, known := s.heightByHash[prevHash]
	if !known {
		s.orphans[prevHash] = append(s.orphans[prevHash], block)
		s.orphanCount++
		if s.orphanLimit > 0 && s.orphanCount > s.orphanLimit {
			return &OrphanOverflowError{Limit: s.orphanLimit}
		}
		return nil
	}
	s.disorphanate(block, prevHeight+1)
	return nil
}

func (s *TopologicalStream) release() *chain.Block {
	block := s.ready[0]
	s.ready = s.ready[1:]
	s.disorphanateChildrenOf(block)
	return block
}

func (s *TopologicalStream) disorphanateChildrenOf(block *chain.Block) {
	children := s.orphans[block.BlockHash()]
	delete(s.orphans, block.BlockHash())
	s.orphanCount -= len(children)
	childHeight := block.Height() + 1
	for _, child := range children {
		s.disorphanate(child, childHeight)
	}
}

func (s *TopologicalStream) disorphanate(block *chain.Block, height int) {
	block.SetHeight(height)
	s.heightByHash[block.BlockHash()] = height
	s.ready = append(s.ready, block)
	log.Debug().Str("block", block.BlockHash().String()).Int("height", height).Msg("block ready")
}

// resumableStoredBlocks is satisfied by *StoredBlockStream; TopologicalStream
// type-asserts its upstream against it to support State/Resume.
type resumableStoredBlocks interface {
	storedBlockSource
	State() StoredBlockState
	Resume(StoredBlockState) error
}

// TopologicalState is a TopologicalStream's resumable position.
type TopologicalState struct {
	Upstream     StoredBlockState
	HeightByHash map[chain.Hash]int
	Orphans      map[chain.Hash][]blockSnapshot
	Ready        []blockSnapshot
}

// State captures this stream's resumable position. Returns errNotResumable
// if the upstream stream doesn't support State/Resume itself.
func (s *TopologicalStream) State() (TopologicalState, error) {
	rs, ok := s.upstream.(resumableStoredBlocks)
	if !ok {
		return TopologicalState{}, errNotResumable
	}
	orphans := make(map[chain.Hash][]blockSnapshot, len(s.orphans))
	for h, blocks := range s.orphans {
		snaps := make([]blockSnapshot, len(blocks))
		for i, b := range blocks {
			snaps[i] = snapshotBlock(b)
		}
		orphans[h] = snaps
	}
	ready := make([]blockSnapshot, len(s.ready))
	for i, b := range s.ready {
		ready[i] = snapshotBlock(b)
	}
	heightByHash := make(map[chain.Hash]int, len(s.heightByHash))
	for h, height := range s.heightByHash {
		heightByHash[h] = height
	}
	return TopologicalState{
		Upstream:     rs.State(),
		HeightByHash: heightByHash,
		Orphans:      orphans,
		Ready:        ready,
	}, nil
}

// Resume restores a previously-captured state, including repositioning
// the upstream stored-block stream.
func (s *TopologicalStream) Resume(st TopologicalState) error {
	rs, ok := s.upstream.(resumableStoredBlocks)
	if !ok {
		return errNotResumable
	}
	if err := rs.Resume(st.Upstream); err != nil {
		return err
	}
	s.heightByHash = make(map[chain.Hash]int, len(st.HeightByHash))
	for h, height := range st.HeightByHash {
		s.heightByHash[h] = height
	}
	s.orphans = make(map[chain.Hash][]*chain.Block, len(st.Orphans))
	s.orphanCount = 0
	for h, snaps := range st.Orphans {
		blocks := make([]*chain.Block, len(snaps))
		for i, snap := range snaps {
			b, err := snap.restore()
			if err != nil {
				return err
			}
			blocks[i] = b
		}
		s.orphans[h] = blocks
		s.orphanCount += len(blocks)
	}
	s.ready = make([]*chain.Block, len(st.Ready))
	for i, snap := range st.Ready {
		b, err := snap.restore()
		if err != nil {
			return err
		}
		s.ready[i] = b
	}
	return nil
}
