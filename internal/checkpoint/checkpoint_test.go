package checkpoint

import "testing"

type sampleState struct {
	Height int
	Name   string
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	want := sampleState{Height: 42, Name: "tip"}
	if err := store.Save("scan1", &want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	var got sampleState
	if err := store.Load("scan1", &got); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

func TestLoadMissingCheckpoint(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	var got sampleState
	if err := store.Load("nope", &got); err == nil {
		t.Fatal("expected error loading a checkpoint that was never saved")
	}
}

func TestDelete(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	if err := store.Save("scan1", &sampleState{Height: 1}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Delete("scan1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	var got sampleState
	if err := store.Load("scan1", &got); err == nil {
		t.Fatal("expected error loading a deleted checkpoint")
	}
}
