package chain

import "testing"

func TestBlockChainAppendOrder(t *testing.T) {
	bc := NewBlockChain()
	for h := 0; h < 3; h++ {
		info := BlockInfo{Height: h, BlockHash: DoubleSHA256([]byte{byte(h)})}
		if err := bc.Append(info); err != nil {
			t.Fatalf("Append(%d): %v", h, err)
		}
	}
	if bc.Height() != 2 {
		t.Fatalf("Height() = %d, want 2", bc.Height())
	}
	if _, ok := bc.ByHeight(1); !ok {
		t.Fatal("ByHeight(1) missing")
	}
	last, ok := bc.Last()
	if !ok || last.Height != 2 {
		t.Fatalf("Last() = %+v, %v", last, ok)
	}
}

func TestBlockChainRejectsGap(t *testing.T) {
	bc := NewBlockChain()
	if err := bc.Append(BlockInfo{Height: 1}); err == nil {
		t.Fatal("expected error appending at height 1 on an empty chain")
	}
}

func TestBlockChainPop(t *testing.T) {
	bc := NewBlockChain()
	h0 := DoubleSHA256([]byte{0})
	h1 := DoubleSHA256([]byte{1})
	_ = bc.Append(BlockInfo{Height: 0, BlockHash: h0})
	_ = bc.Append(BlockInfo{Height: 1, BlockHash: h1})
	popped, ok := bc.Pop()
	if !ok || popped.BlockHash != h1 {
		t.Fatalf("Pop() = %+v, %v", popped, ok)
	}
	if bc.Contains(h1) {
		t.Fatal("Contains(h1) should be false after pop")
	}
	if !bc.Contains(h0) {
		t.Fatal("Contains(h0) should still be true")
	}
}
