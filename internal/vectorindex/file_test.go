package vectorindex

import (
	"os"
	"path/filepath"
	"testing"
)

func writeGarbage(path string) error {
	return os.WriteFile(path, []byte("definitely not an index"), 0644)
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.bin"))
	if err == nil {
		t.Error("expected error for missing index file")
	}
}

func TestRoundTripPreservesIDs(t *testing.T) {
	idx, err := Build([][]float32{{1, 0}, {0, 1}}, []string{"deadbeef", "cafebabe"})
	if err != nil {
		t.Fatalf("failed to build index: %v", err)
	}

	path := filepath.Join(t.TempDir(), "index.bin")
	if err := idx.WriteFile(path); err != nil {
		t.Fatalf("failed to write index: %v", err)
	}

	loaded, err := ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read index: %v", err)
	}
	for slot := 0; slot < idx.Len(); slot++ {
		if loaded.ID(slot) != idx.ID(slot) {
			t.Errorf("id at slot %d = %s, want %s", slot, loaded.ID(slot), idx.ID(slot))
		}
	}
}
