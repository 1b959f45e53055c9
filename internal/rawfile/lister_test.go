package rawfile

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestListerRescanFindsNewFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "blk00000.dat")
	writeFile(t, dir, "blk00002.dat")

	l := NewLister(dir, "blk*.dat")
	fresh, err := l.Rescan()
	if err != nil {
		t.Fatal(err)
	}
	if len(fresh) != 2 || fresh[0] != "blk00000.dat" || fresh[1] != "blk00002.dat" {
		t.Fatalf("fresh = %v", fresh)
	}

	// no change: second rescan finds nothing new
	fresh, err = l.Rescan()
	if err != nil {
		t.Fatal(err)
	}
	if len(fresh) != 0 {
		t.Fatalf("expected no new files, got %v", fresh)
	}

	writeFile(t, dir, "blk00001.dat")
	fresh, err = l.Rescan()
	if err != nil {
		t.Fatal(err)
	}
	if len(fresh) != 1 || fresh[0] != "blk00001.dat" {
		t.Fatalf("fresh = %v, want [blk00001.dat]", fresh)
	}
	want := []string{"blk00000.dat", "blk00001.dat", "blk00002.dat"}
	got := l.Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Names() = %v, want %v", got, want)
		}
	}
}

func TestListerPath(t *testing.T) {
	l := NewLister("/data", "blk*.dat")
	if got := l.Path("blk00000.dat"); got != filepath.Join("/data", "blk00000.dat") {
		t.Errorf("Path = %q", got)
	}
}
