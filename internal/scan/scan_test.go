package scan

import (
	"encoding/binary"
	"io"
	"testing"

	"chainwalk/internal/binformat"
	"chainwalk/internal/chain"
)

// buildBlock constructs a minimal raw block payload (header + zero txs)
// with the given previous-block hash and an extra-nonce byte folded into
// the header so distinct calls hash differently.
func buildBlock(prev chain.Hash, distinguisher byte) []byte {
	header := make([]byte, 80)
	binary.LittleEndian.PutUint32(header[0:4], 1)
	copy(header[4:36], prev[:])
	header[36] = distinguisher // merkle root, arbitrary for this test
	// timestamp/bits/nonce left zero
	body := binformat.PutVarInt(nil, 0) // zero transactions
	return append(header, body...)
}

// buildFrame wraps a block payload with the 8-byte magic/size frame.
func buildFrame(payload []byte) []byte {
	frame := make([]byte, 8)
	copy(frame[0:4], binformat.MainNetMagic[:])
	binary.LittleEndian.PutUint32(frame[4:8], uint32(len(payload)))
	return append(frame, payload...)
}

// fixedSource hands back a fixed sequence of *chain.StoredBlock values,
// simulating a StoredBlockStream for the tests below.
type fixedSource struct {
	blocks []*chain.StoredBlock
	i      int
}

func (f *fixedSource) Next() (*chain.StoredBlock, error) {
	if f.i >= len(f.blocks) {
		return nil, io.EOF
	}
	b := f.blocks[f.i]
	f.i++
	return b, nil
}

func mustParse(t *testing.T, payload []byte) *chain.Block {
	t.Helper()
	b, err := chain.ParseBlock(payload)
	if err != nil {
		t.Fatalf("ParseBlock: %v", err)
	}
	return b
}

func stored(b *chain.Block) *chain.StoredBlock {
	return &chain.StoredBlock{Block: b}
}

func TestTopologicalStreamOrdersOutOfOrderBlocks(t *testing.T) {
	genesis := mustParse(t, buildBlock(genesisPrevHash, 1))
	child := mustParse(t, buildBlock(genesis.BlockHash(), 2))
	grandchild := mustParse(t, buildBlock(child.BlockHash(), 3))

	// Feed them out of order: grandchild and child arrive before genesis.
	src := &fixedSource{blocks: []*chain.StoredBlock{stored(grandchild), stored(child), stored(genesis)}}
	topo := NewTopologicalStream(src, 0)

	first, err := topo.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if first.BlockHash() != genesis.BlockHash() {
		t.Fatalf("expected genesis first, got height %d", first.Height())
	}
	if first.Height() != 0 {
		t.Fatalf("genesis height = %d, want 0", first.Height())
	}

	second, err := topo.Next()
	if err != nil || second.BlockHash() != child.BlockHash() {
		t.Fatalf("expected child second, got %v err=%v", second, err)
	}
	if second.Height() != 1 {
		t.Fatalf("child height = %d, want 1", second.Height())
	}

	third, err := topo.Next()
	if err != nil || third.BlockHash() != grandchild.BlockHash() {
		t.Fatalf("expected grandchild third, got %v err=%v", third, err)
	}
}

// blockSeq wraps a []*chain.Block as a topologicalSource for
// LongestChainStream tests.
type blockSeq struct {
	blocks []*chain.Block
	i      int
}

func (s *blockSeq) Next() (*chain.Block, error) {
	if s.i >= len(s.blocks) {
		return nil, io.EOF
	}
	b := s.blocks[s.i]
	s.i++
	return b, nil
}

func TestLongestChainStreamResolvesForkByMargin(t *testing.T) {
	genesis := mustParse(t, buildBlock(genesisPrevHash, 0))
	genesis.SetHeight(0)

	// Two competing single-block forks off genesis.
	forkA := mustParse(t, buildBlock(genesis.BlockHash(), 1))
	forkA.SetHeight(1)
	forkB := mustParse(t, buildBlock(genesis.BlockHash(), 2))
	forkB.SetHeight(1)

	// forkA gets extended three more times, pulling ahead by the margin.
	a2 := mustParse(t, buildBlock(forkA.BlockHash(), 3))
	a2.SetHeight(2)
	a3 := mustParse(t, buildBlock(a2.BlockHash(), 4))
	a3.SetHeight(3)
	a4 := mustParse(t, buildBlock(a3.BlockHash(), 5))
	a4.SetHeight(4)

	seq := &blockSeq{blocks: []*chain.Block{genesis, forkA, forkB, a2, a3, a4}}
	stream := NewLongestChainStream(seq, 3, nil)

	got, err := stream.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got.BlockHash() != genesis.BlockHash() {
		t.Fatalf("expected genesis released first, got height %d", got.Height())
	}

	got, err = stream.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got.BlockHash() != forkA.BlockHash() {
		t.Fatalf("expected forkA to win (height-safety-margin reached), got block at height %d", got.Height())
	}
}

func TestFilterStopsAtHeight(t *testing.T) {
	stop := int64(2)
	f := &Filter{Height: &Range{Stop: &stop}}
	w := newWorking(f)

	genesis := mustParse(t, buildBlock(genesisPrevHash, 0))
	genesis.SetHeight(0)
	b1 := mustParse(t, buildBlock(genesis.BlockHash(), 1))
	b1.SetHeight(1)
	b2 := mustParse(t, buildBlock(b1.BlockHash(), 2))
	b2.SetHeight(2)

	if include, err := w.check(genesis); err != nil || !include {
		t.Fatalf("height 0: include=%v err=%v", include, err)
	}
	if include, err := w.check(b1); err != nil || !include {
		t.Fatalf("height 1: include=%v err=%v", include, err)
	}
	if _, err := w.check(b2); err != io.EOF {
		t.Fatalf("height 2 (== stop): expected io.EOF, got %v", err)
	}
}
