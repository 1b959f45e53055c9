package binformat

import "testing"

func TestSplitFrameOK(t *testing.T) {
	buf := append([]byte{0xf9, 0xbe, 0xb4, 0xd9, 0x05, 0x00, 0x00, 0x00}, []byte{1, 2, 3, 4, 5}...)
	frame, ok := SplitFrame(buf)
	if !ok {
		t.Fatal("expected ok=true")
	}
	if frame.Magic != MainNetMagic {
		t.Errorf("magic = %x, want %x", frame.Magic, MainNetMagic)
	}
	if frame.PayloadSize != 5 {
		t.Errorf("payload size = %d, want 5", frame.PayloadSize)
	}
}

func TestSplitFrameShort(t *testing.T) {
	if _, ok := SplitFrame([]byte{0xf9, 0xbe, 0xb4}); ok {
		t.Fatal("expected ok=false for short buffer")
	}
}

func TestSplitFrameZeroTail(t *testing.T) {
	buf := make([]byte, 16)
	if _, ok := SplitFrame(buf); ok {
		t.Fatal("expected ok=false for zero-filled tail")
	}
}
