package scan

import "chainwalk/internal/chain"

// DefaultHeightSafetyMargin is how many blocks a fork must lead its best
// competitor by before LongestChainStream will conclude it has won.
const DefaultHeightSafetyMargin = 6

// topologicalSource is the subset of TopologicalStream that
// LongestChainStream needs.
type topologicalSource interface {
	Next() (*chain.Block, error)
}

// forkNode is one block in the in-memory fork tree LongestChainStream
// maintains while it waits for a fork to pull far enough ahead to commit
// to. The dummy pre-genesis root uses block == nil.
type forkNode struct {
	hash     chain.Hash
	prevHash chain.Hash
	height   int
	block    *chain.Block
	children []*forkNode
}

// LongestChainStream linearly iterates the longest-chain blocks, each
// block's prev_block_hash guaranteed to equal the previous block's hash
// and its height guaranteed to be exactly one more. Genesis is height 0.
type LongestChainStream struct {
	upstream           topologicalSource
	heightSafetyMargin int
	filter             *working

	blocksByHash map[chain.Hash]*forkNode
	rootNode     *forkNode // the most recently released block
	lastNode     *forkNode // the most recently seen block (may already be released)
	leaves       *leafHeights
}

// NewLongestChainStream wraps upstream. heightSafetyMargin of 0 uses
// DefaultHeightSafetyMargin; filter may be nil.
func NewLongestChainStream(upstream topologicalSource, heightSafetyMargin int, filter *Filter) *LongestChainStream {
	if heightSafetyMargin <= 0 {
		heightSafetyMargin = DefaultHeightSafetyMargin
	}
	root := &forkNode{hash: genesisPrevHash, height: -1}
	return &LongestChainStream{
		upstream:           upstream,
		heightSafetyMargin: heightSafetyMargin,
		filter:             newWorking(filter),
		blocksByHash:       map[chain.Hash]*forkNode{root.hash: root},
		rootNode:           root,
		lastNode:           root,
		leaves:             newLeafHeights(root.height),
	}
}

// Next returns the next longest-chain block, or an error from upstream
// (io.EOF included), or io.EOF once the configured filter decides to stop.
func (s *LongestChainStream) Next() (*chain.Block, error) {
	for {
		next, err := s.nextBlockToRelease()
		if err != nil {
			return nil, err
		}
		if next != nil {
			s.rootNode = next
			include, ferr := s.checkFilter(next.block)
			if ferr != nil {
				return nil, ferr
			}
			if include {
				return next.block, nil
			}
			continue
		}
		if err := s.readAnother(); err != nil {
			return nil, err
		}
	}
}

func (s *LongestChainStream) checkFilter(block *chain.Block) (bool, error) {
	if s.filter == nil {
		return true, nil
	}
	return s.filter.check(block)
}

func (s *LongestChainStream) nextBlockToRelease() (*forkNode, error) {
	if !s.checkHeightsGap() {
		return nil, nil
	}
	next := s.findChildFrom(s.lastNode, s.rootNode)
	s.discardTree(s.rootNode, next)
	return next, nil
}

func (s *LongestChainStream) checkHeightsGap() bool {
	h1 := s.leaves.Max()
	h2 := s.leaves.SecondMax(s.rootNode.height)
	return h1-h2 >= s.heightSafetyMargin
}

// findChildFrom walks parent pointers from node up to root, returning
// root's direct child on that path: the survivor of the fork resolution.
func (s *LongestChainStream) findChildFrom(node, root *forkNode) *forkNode {
	for {
		if node.prevHash == root.hash {
			return node
		}
		node = s.blocksByHash[node.prevHash]
	}
}

// discardBlock removes node from the tree's bookkeeping and returns its
// children.
func (s *LongestChainStream) discardBlock(node *forkNode) []*forkNode {
	delete(s.blocksByHash, node.hash)
	if len(node.children) == 0 {
		s.leaves.Remove(node.height)
	}
	log.Debug().Str("block", node.hash.String()).Msg("discarding block")
	return node.children
}

// discardTree discards node and every descendant except survivor, which
// is the block kept as the new root.
func (s *LongestChainStream) discardTree(node, survivor *forkNode) {
	children := s.discardBlock(node)
	for _, child := range children {
		if child != survivor {
			s.discardTree(child, nil)
		}
	}
}

// resumableTopological is satisfied by *TopologicalStream.
type resumableTopological interface {
	topologicalSource
	State() (TopologicalState, error)
	Resume(TopologicalState) error
}

// forkNodeSnapshot is one fork-tree node captured as plain data. Blob is
// nil for the dummy pre-genesis root.
type forkNodeSnapshot struct {
	Hash     chain.Hash
	PrevHash chain.Hash
	Height   int
	Blob     []byte
}

// LongestChainState is a LongestChainStream's resumable position.
type LongestChainState struct {
	Upstream TopologicalState
	Nodes    []forkNodeSnapshot
	RootHash chain.Hash
	LastHash chain.Hash
}

// State captures this stream's resumable position, including the full
// in-memory fork tree.
func (s *LongestChainStream) State() (LongestChainState, error) {
	rt, ok := s.upstream.(resumableTopological)
	if !ok {
		return LongestChainState{}, errNotResumable
	}
	upstreamState, err := rt.State()
	if err != nil {
		return LongestChainState{}, err
	}
	nodes := make([]forkNodeSnapshot, 0, len(s.blocksByHash))
	for _, n := range s.blocksByHash {
		snap := forkNodeSnapshot{Hash: n.hash, PrevHash: n.prevHash, Height: n.height}
		if n.block != nil {
			snap.Blob = n.block.Blob()
		}
		nodes = append(nodes, snap)
	}
	return LongestChainState{
		Upstream: upstreamState,
		Nodes:    nodes,
		RootHash: s.rootNode.hash,
		LastHash: s.lastNode.hash,
	}, nil
}

// Resume restores a previously-captured state, rebuilding the fork tree
// and repositioning the upstream topological stream.
func (s *LongestChainStream) Resume(st LongestChainState) error {
	rt, ok := s.upstream.(resumableTopological)
	if !ok {
		return errNotResumable
	}
	if err := rt.Resume(st.Upstream); err != nil {
		return err
	}

	blocksByHash := make(map[chain.Hash]*forkNode, len(st.Nodes))
	for _, snap := range st.Nodes {
		node := &forkNode{hash: snap.Hash, prevHash: snap.PrevHash, height: snap.Height}
		if snap.Blob != nil {
			b, err := chain.ParseBlock(snap.Blob)
			if err != nil {
				return err
			}
			b.SetHeight(snap.Height)
			node.block = b
		}
		blocksByHash[node.hash] = node
	}
	for _, node := range blocksByHash {
		if node.hash == genesisPrevHash {
			continue // the dummy root has no parent in the map
		}
		if parent, ok := blocksByHash[node.prevHash]; ok {
			parent.children = append(parent.children, node)
		}
	}

	leaves := newEmptyLeafHeights()
	for _, node := range blocksByHash {
		if len(node.children) == 0 {
			leaves.Add(node.height)
		}
	}

	s.blocksByHash = blocksByHash
	s.rootNode = blocksByHash[st.RootHash]
	s.lastNode = blocksByHash[st.LastHash]
	s.leaves = leaves
	return nil
}

func (s *LongestChainStream) readAnother() error {
	block, err := s.upstream.Next()
	if err != nil {
		return err
	}
	prevHash := block.PrevBlockHash()
	prevNode, ok := s.blocksByHash[prevHash]
	if !ok {
		log.Info().Str("block", block.BlockHash().String()).Msg("block ignored: must be from a fork already deemed inferior")
		return nil
	}
	node := &forkNode{hash: block.BlockHash(), prevHash: prevHash, height: block.Height(), block: block}
	s.blocksByHash[node.hash] = node
	isPrevLeaf := len(prevNode.children) == 0
	prevNode.children = append(prevNode.children, node)
	if isPrevLeaf {
		s.leaves.Remove(prevNode.height)
	}
	s.leaves.Add(node.height)
	s.lastNode = node
	return nil
}
